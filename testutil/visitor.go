// Package testutil provides testing helpers for quantpool.
//
// It is intended for use in tests only.
package testutil

import (
	"github.com/hupe1980/quantpool"
	"github.com/hupe1980/quantpool/schema"
)

// VisitorCall records one Add*Part call in arrival order.
//
// Slice fields are copies: the recording visitor honors the DataVisitor
// contract by copying synchronously, so recorded data stays valid after
// the loader releases the pool's storage.
type VisitorCall struct {
	Method         string
	FlatFeatureIdx int
	BaselineIdx    int
	ObjectOffset   uint32
	BitsPerDoc     uint8

	Bytes   []byte
	Floats  []float32
	Uint64s []uint64
	Uint32s []uint32
}

// RecordingVisitor is a DataVisitor that records every call it receives.
type RecordingVisitor struct {
	StartCalls  int
	Meta        quantpool.MetaInfo
	ObjectCount uint32
	Order       quantpool.ObjectsOrder
	Schema      *schema.Schema

	Calls []VisitorCall

	GroupWeights []float32
	Pairs        []quantpool.Pair
	Baseline     [][]float32

	Finished  bool
	FinishErr error // returned from Finish when set
}

var _ quantpool.DataVisitor = (*RecordingVisitor)(nil)

// Start implements quantpool.DataVisitor.
func (r *RecordingVisitor) Start(meta quantpool.MetaInfo, objectCount uint32, order quantpool.ObjectsOrder, sch *schema.Schema) {
	r.StartCalls++
	r.Meta = meta
	r.ObjectCount = objectCount
	r.Order = order
	r.Schema = sch
}

// AddFloatFeaturePart implements quantpool.DataVisitor.
func (r *RecordingVisitor) AddFloatFeaturePart(flatFeatureIdx int, objectOffset uint32, bitsPerDoc uint8, quants []byte) {
	r.Calls = append(r.Calls, VisitorCall{
		Method:         "AddFloatFeaturePart",
		FlatFeatureIdx: flatFeatureIdx,
		ObjectOffset:   objectOffset,
		BitsPerDoc:     bitsPerDoc,
		Bytes:          append([]byte(nil), quants...),
	})
}

// AddTargetPart implements quantpool.DataVisitor.
func (r *RecordingVisitor) AddTargetPart(objectOffset uint32, values []float32) {
	r.Calls = append(r.Calls, VisitorCall{
		Method:       "AddTargetPart",
		ObjectOffset: objectOffset,
		Floats:       append([]float32(nil), values...),
	})
}

// AddBaselinePart implements quantpool.DataVisitor.
func (r *RecordingVisitor) AddBaselinePart(objectOffset uint32, baselineIdx int, values []float32) {
	r.Calls = append(r.Calls, VisitorCall{
		Method:       "AddBaselinePart",
		BaselineIdx:  baselineIdx,
		ObjectOffset: objectOffset,
		Floats:       append([]float32(nil), values...),
	})
}

// AddWeightPart implements quantpool.DataVisitor.
func (r *RecordingVisitor) AddWeightPart(objectOffset uint32, values []float32) {
	r.Calls = append(r.Calls, VisitorCall{
		Method:       "AddWeightPart",
		ObjectOffset: objectOffset,
		Floats:       append([]float32(nil), values...),
	})
}

// AddGroupWeightPart implements quantpool.DataVisitor.
func (r *RecordingVisitor) AddGroupWeightPart(objectOffset uint32, values []float32) {
	r.Calls = append(r.Calls, VisitorCall{
		Method:       "AddGroupWeightPart",
		ObjectOffset: objectOffset,
		Floats:       append([]float32(nil), values...),
	})
}

// AddGroupIDPart implements quantpool.DataVisitor.
func (r *RecordingVisitor) AddGroupIDPart(objectOffset uint32, values []uint64) {
	r.Calls = append(r.Calls, VisitorCall{
		Method:       "AddGroupIDPart",
		ObjectOffset: objectOffset,
		Uint64s:      append([]uint64(nil), values...),
	})
}

// AddSubgroupIDPart implements quantpool.DataVisitor.
func (r *RecordingVisitor) AddSubgroupIDPart(objectOffset uint32, values []uint32) {
	r.Calls = append(r.Calls, VisitorCall{
		Method:       "AddSubgroupIDPart",
		ObjectOffset: objectOffset,
		Uint32s:      append([]uint32(nil), values...),
	})
}

// SetGroupWeights implements quantpool.DataVisitor.
func (r *RecordingVisitor) SetGroupWeights(weights []float32) {
	r.GroupWeights = weights
}

// SetPairs implements quantpool.DataVisitor.
func (r *RecordingVisitor) SetPairs(pairs []quantpool.Pair) {
	r.Pairs = pairs
}

// SetBaseline implements quantpool.DataVisitor.
func (r *RecordingVisitor) SetBaseline(baseline [][]float32) {
	r.Baseline = baseline
}

// Finish implements quantpool.DataVisitor.
func (r *RecordingVisitor) Finish() error {
	if r.FinishErr != nil {
		return r.FinishErr
	}
	r.Finished = true
	return nil
}

// CallsFor returns the recorded calls for one method, in arrival order.
func (r *RecordingVisitor) CallsFor(method string) []VisitorCall {
	var out []VisitorCall
	for _, c := range r.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}
