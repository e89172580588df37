package quantpool

import (
	"github.com/hupe1980/quantpool/auxdata"
	"github.com/hupe1980/quantpool/schema"
)

// Pair is one pairwise preference loaded from an auxiliary pairs file.
type Pair = auxdata.Pair

// DataVisitor receives the decoded pool content and assembles the
// training dataset.
//
// The loader calls Start once, then zero or more Add*Part calls, then the
// Set* calls for auxiliary data, then Finish. For any one column, Add*Part
// calls arrive in non-decreasing object-offset order, and every part lies
// within [0, objectCount).
//
// # Ownership contract
//
// Slices passed to Add*Part calls may alias the pool's backing storage,
// which the loader releases before Finish. They are valid only for the
// duration of the call: a visitor that retains the data must copy it
// synchronously. The sole exception is AddBaselinePart, whose slice is
// freshly allocated (the stored 64-bit floats are narrowed to 32 bits),
// but visitors should not rely on that.
type DataVisitor interface {
	// Start announces a load of objectCount objects in the given order,
	// with the pool's metadata and quantization schema.
	Start(meta MetaInfo, objectCount uint32, order ObjectsOrder, sch *schema.Schema)

	// AddFloatFeaturePart forwards one numeric feature chunk as raw
	// quantized bytes with its fixed encoding width.
	AddFloatFeaturePart(flatFeatureIdx int, objectOffset uint32, bitsPerDoc uint8, quants []byte)

	// AddTargetPart forwards label values.
	AddTargetPart(objectOffset uint32, values []float32)

	// AddBaselinePart forwards one baseline dimension.
	AddBaselinePart(objectOffset uint32, baselineIdx int, values []float32)

	// AddWeightPart forwards object weights.
	AddWeightPart(objectOffset uint32, values []float32)

	// AddGroupWeightPart forwards group weights stored as a pool column.
	AddGroupWeightPart(objectOffset uint32, values []float32)

	// AddGroupIDPart forwards group identifiers.
	AddGroupIDPart(objectOffset uint32, values []uint64)

	// AddSubgroupIDPart forwards subgroup identifiers.
	AddSubgroupIDPart(objectOffset uint32, values []uint32)

	// SetGroupWeights replaces group weights with values from an
	// auxiliary file. Called after the streaming pass.
	SetGroupWeights(weights []float32)

	// SetPairs supplies pairwise preferences from an auxiliary file.
	SetPairs(pairs []Pair)

	// SetBaseline supplies baseline predictions from an auxiliary file,
	// indexed [dimension][object].
	SetBaseline(baseline [][]float32)

	// Finish signals that the dataset is complete.
	Finish() error
}
