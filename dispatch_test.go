package quantpool

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/quantpool/column"
	"github.com/hupe1980/quantpool/pool"
	"github.com/hupe1980/quantpool/schema"
)

// partRecorder captures a single dispatched part.
type partRecorder struct {
	method      string
	flatIdx     int
	baselineIdx int
	offset      uint32
	bitsPerDoc  uint8
	bytes       []byte
	floats      []float32
	uint64s     []uint64
	uint32s     []uint32
}

func (r *partRecorder) Start(MetaInfo, uint32, ObjectsOrder, *schema.Schema) {}

func (r *partRecorder) AddFloatFeaturePart(flatFeatureIdx int, objectOffset uint32, bitsPerDoc uint8, quants []byte) {
	r.method, r.flatIdx, r.offset, r.bitsPerDoc, r.bytes = "AddFloatFeaturePart", flatFeatureIdx, objectOffset, bitsPerDoc, quants
}

func (r *partRecorder) AddTargetPart(objectOffset uint32, values []float32) {
	r.method, r.offset, r.floats = "AddTargetPart", objectOffset, values
}

func (r *partRecorder) AddBaselinePart(objectOffset uint32, baselineIdx int, values []float32) {
	r.method, r.offset, r.baselineIdx, r.floats = "AddBaselinePart", objectOffset, baselineIdx, values
}

func (r *partRecorder) AddWeightPart(objectOffset uint32, values []float32) {
	r.method, r.offset, r.floats = "AddWeightPart", objectOffset, values
}

func (r *partRecorder) AddGroupWeightPart(objectOffset uint32, values []float32) {
	r.method, r.offset, r.floats = "AddGroupWeightPart", objectOffset, values
}

func (r *partRecorder) AddGroupIDPart(objectOffset uint32, values []uint64) {
	r.method, r.offset, r.uint64s = "AddGroupIDPart", objectOffset, values
}

func (r *partRecorder) AddSubgroupIDPart(objectOffset uint32, values []uint32) {
	r.method, r.offset, r.uint32s = "AddSubgroupIDPart", objectOffset, values
}

func (r *partRecorder) SetGroupWeights([]float32) {}
func (r *partRecorder) SetPairs([]Pair)           {}
func (r *partRecorder) SetBaseline([][]float32)   {}
func (r *partRecorder) Finish() error             { return nil }

var _ DataVisitor = (*partRecorder)(nil)

func float32LE(values ...float32) []byte {
	b := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func float64LE(values ...float64) []byte {
	b := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b
}

func TestAddChunk_FeatureForwardsRawBytes(t *testing.T) {
	quants := []byte{1, 2, 3, 4, 5}
	c := &pool.ChunkDescription{DocOffset: 10, DocCount: 5, BitsPerDoc: 8, Quants: quants}
	flat := 3

	var r partRecorder
	require.NoError(t, addChunk(c, column.Num, &flat, nil, &r))

	assert.Equal(t, "AddFloatFeaturePart", r.method)
	assert.Equal(t, 3, r.flatIdx)
	assert.Equal(t, uint32(10), r.offset)
	assert.Equal(t, uint8(8), r.bitsPerDoc)
	assert.Same(t, &quants[0], &r.bytes[0], "feature quants are forwarded without copying")
}

func TestAddChunk_FeatureWithoutFlatIndex(t *testing.T) {
	c := &pool.ChunkDescription{Quants: []byte{1}}
	var r partRecorder
	require.Error(t, addChunk(c, column.Num, nil, nil, &r))
}

func TestAddChunk_LabelDecodesFloat32(t *testing.T) {
	c := &pool.ChunkDescription{DocOffset: 2, Quants: float32LE(0.5, -1, 3.25)}

	var r partRecorder
	require.NoError(t, addChunk(c, column.Label, nil, nil, &r))

	assert.Equal(t, "AddTargetPart", r.method)
	assert.Equal(t, uint32(2), r.offset)
	assert.Equal(t, []float32{0.5, -1, 3.25}, r.floats)
}

func TestAddChunk_BaselineNarrowsFloat64(t *testing.T) {
	c := &pool.ChunkDescription{DocOffset: 7, Quants: float64LE(1.5, -2.25)}
	baselineIdx := 1

	var r partRecorder
	require.NoError(t, addChunk(c, column.Baseline, nil, &baselineIdx, &r))

	assert.Equal(t, "AddBaselinePart", r.method)
	assert.Equal(t, 1, r.baselineIdx)
	assert.Equal(t, []float32{1.5, -2.25}, r.floats)
}

func TestAddChunk_GroupAndSubgroupIDs(t *testing.T) {
	group := make([]byte, 16)
	binary.LittleEndian.PutUint64(group, 42)
	binary.LittleEndian.PutUint64(group[8:], 43)

	var r partRecorder
	require.NoError(t, addChunk(&pool.ChunkDescription{Quants: group}, column.GroupID, nil, nil, &r))
	assert.Equal(t, []uint64{42, 43}, r.uint64s)

	sub := make([]byte, 8)
	binary.LittleEndian.PutUint32(sub, 7)
	binary.LittleEndian.PutUint32(sub[4:], 8)

	require.NoError(t, addChunk(&pool.ChunkDescription{Quants: sub}, column.SubgroupID, nil, nil, &r))
	assert.Equal(t, []uint32{7, 8}, r.uint32s)
}

func TestAddChunk_IllegalColumnTypes(t *testing.T) {
	var r partRecorder
	for _, typ := range []column.Type{
		column.Categ, column.Auxiliary, column.Text,
		column.Timestamp, column.Sparse, column.Prediction,
	} {
		var colErr *UnexpectedColumnError
		err := addChunk(&pool.ChunkDescription{}, typ, nil, nil, &r)
		require.ErrorAs(t, err, &colErr, typ.String())
		assert.Equal(t, typ, colErr.Type)
	}
}

func TestAddChunk_TruncatedValues(t *testing.T) {
	var r partRecorder
	require.Error(t, addChunk(&pool.ChunkDescription{Quants: []byte{1, 2, 3}}, column.Label, nil, nil, &r))
	require.Error(t, addChunk(&pool.ChunkDescription{Quants: []byte{1, 2, 3, 4, 5}}, column.GroupID, nil, nil, &r))
}

func TestFloat32sFromBytes_UnalignedFallsBackToCopy(t *testing.T) {
	aligned := float32LE(1, 2, 3, 4)

	buf := make([]byte, len(aligned)+1)
	copy(buf[1:], aligned)
	unaligned := buf[1:]
	if addrOf(unaligned)%4 == 0 {
		t.Skip("slice happens to be aligned")
	}

	values, err := float32sFromBytes(unaligned)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, values)
}

func TestFloat32sFromBytes_Empty(t *testing.T) {
	values, err := float32sFromBytes(nil)
	require.NoError(t, err)
	assert.Nil(t, values)
}
