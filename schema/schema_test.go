package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	in := &Schema{
		FloatFeatures: []FloatFeature{
			{FlatIndex: 0, Borders: []float32{0.5, 1.5, 2.5}, NanMode: "Min"},
			{FlatIndex: 1, Borders: nil},
		},
		ClassNames: []string{"cat", "dog"},
	}

	blob, err := in.Encode()
	require.NoError(t, err)

	out, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, in.ClassNames, out.ClassNames)
	require.Len(t, out.FloatFeatures, 2)
	assert.Equal(t, []float32{0.5, 1.5, 2.5}, out.FloatFeatures[0].Borders)
	assert.Equal(t, "Min", out.FloatFeatures[0].NanMode)
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrEmptySchema)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestFeature(t *testing.T) {
	s := &Schema{FloatFeatures: []FloatFeature{
		{FlatIndex: 3, Borders: []float32{1}},
	}}

	require.NotNil(t, s.Feature(3))
	assert.Nil(t, s.Feature(0))
}

func TestIgnoredFlatIndices(t *testing.T) {
	s := &Schema{FloatFeatures: []FloatFeature{
		{FlatIndex: 0, Borders: []float32{1, 2}},
		{FlatIndex: 1, Borders: nil},
		{FlatIndex: 2, Borders: []float32{}},
	}}

	assert.Equal(t, []uint32{1, 2}, s.IgnoredFlatIndices())

	empty := &Schema{}
	assert.Empty(t, empty.IgnoredFlatIndices())
}
