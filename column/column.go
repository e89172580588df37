// Package column defines the column roles a quantized pool may contain.
package column

import "fmt"

// Type identifies the semantic role of a pool column.
type Type uint8

const (
	// Num is a quantized numeric feature column.
	Num Type = iota
	// Categ is a categorical feature column.
	Categ
	// Label is the training target column.
	Label
	// Auxiliary is a free-form column ignored by training.
	Auxiliary
	// Baseline holds per-object initial predictions.
	Baseline
	// Weight holds per-object weights.
	Weight
	// SampleID is a legacy per-object identifier column.
	SampleID
	// GroupID groups objects for ranking tasks.
	GroupID
	// GroupWeight holds per-object group weights.
	GroupWeight
	// SubgroupID subdivides groups.
	SubgroupID
	// Timestamp holds per-object timestamps.
	Timestamp
	// Sparse marks sparse columns.
	Sparse
	// Prediction holds model predictions.
	Prediction
	// Text is a raw text column.
	Text
)

var names = map[Type]string{
	Num:         "Num",
	Categ:       "Categ",
	Label:       "Label",
	Auxiliary:   "Auxiliary",
	Baseline:    "Baseline",
	Weight:      "Weight",
	SampleID:    "SampleId",
	GroupID:     "GroupId",
	GroupWeight: "GroupWeight",
	SubgroupID:  "SubgroupId",
	Timestamp:   "Timestamp",
	Sparse:      "Sparse",
	Prediction:  "Prediction",
	Text:        "Text",
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Quantizable reports whether a column of this role may appear in a
// quantized pool at all. SampleId is included because old pools carry
// it; callers skip it before decoding.
func (t Type) Quantizable() bool {
	switch t {
	case Num, Categ, Label, Baseline, Weight, GroupWeight, GroupID, SubgroupID, SampleID:
		return true
	default:
		return false
	}
}
