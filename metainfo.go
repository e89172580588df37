package quantpool

import (
	"github.com/hupe1980/quantpool/column"
	"github.com/hupe1980/quantpool/pool"
	"github.com/hupe1980/quantpool/schema"
)

// ObjectsOrder is the caller-declared ordering of objects in the pool.
type ObjectsOrder int

const (
	// ObjectsOrderUndefined means the ordering is unknown.
	ObjectsOrderUndefined ObjectsOrder = iota
	// ObjectsOrderOrdered means objects follow a meaningful order
	// (e.g. by timestamp).
	ObjectsOrderOrdered
	// ObjectsOrderRandomShuffled means objects were shuffled upstream.
	ObjectsOrderRandomShuffled
)

func (o ObjectsOrder) String() string {
	switch o {
	case ObjectsOrderOrdered:
		return "Ordered"
	case ObjectsOrderRandomShuffled:
		return "RandomShuffled"
	default:
		return "Undefined"
	}
}

// MetaInfo describes the dataset a pool will produce.
type MetaInfo struct {
	ObjectCount   uint32
	FeatureCount  int
	BaselineCount int
	ClassNames    []string

	HasTarget       bool
	HasWeights      bool
	HasGroupWeights bool
	HasGroupID      bool
	HasSubgroupID   bool
	HasPairs        bool
}

// newMetaInfo derives dataset metadata from the pool's column roles, the
// quantization schema, and which auxiliary files were configured.
func newMetaInfo(p *pool.Pool, sch *schema.Schema, objectCount uint32, hasGroupWeightsFile, hasPairsFile bool) MetaInfo {
	meta := MetaInfo{
		ObjectCount:     objectCount,
		FeatureCount:    len(p.ColumnIndexToFlatIndex()),
		BaselineCount:   len(p.ColumnIndexToBaselineIndex()),
		ClassNames:      sch.ClassNames,
		HasGroupWeights: hasGroupWeightsFile,
		HasPairs:        hasPairsFile,
	}

	for _, local := range p.ColumnIndexToLocalIndex {
		switch p.ColumnTypes[local] {
		case column.Label:
			meta.HasTarget = true
		case column.Weight:
			meta.HasWeights = true
		case column.GroupWeight:
			meta.HasGroupWeights = true
		case column.GroupID:
			meta.HasGroupID = true
		case column.SubgroupID:
			meta.HasSubgroupID = true
		}
	}

	return meta
}
