// Package schema models the quantization schema embedded in a pool.
//
// The schema records, per numeric feature, the border values that were used
// to quantize raw floats into bin indices, plus optional class names for
// multi-class targets. Pools store the schema as a JSON blob; this package
// only decodes and inspects it - producing a schema (quantization itself)
// happens upstream.
package schema

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// ErrEmptySchema is returned when decoding an empty blob.
var ErrEmptySchema = errors.New("schema: empty quantization schema blob")

// FloatFeature describes the quantization of one numeric feature.
type FloatFeature struct {
	// FlatIndex is the feature's position among all numeric features.
	FlatIndex int `json:"flat_index"`
	// Borders are the ascending bin boundaries. A feature with no borders
	// carried no information at quantization time and is ignored by training.
	Borders []float32 `json:"borders"`
	// NanMode records how NaN values were binned ("Min", "Max" or "Forbidden").
	NanMode string `json:"nan_mode,omitempty"`
}

// Schema is the decoded quantization schema of a pool.
type Schema struct {
	FloatFeatures []FloatFeature `json:"float_features"`
	ClassNames    []string       `json:"class_names,omitempty"`
}

// Decode parses a schema blob as produced by Encode.
func Decode(blob []byte) (*Schema, error) {
	if len(blob) == 0 {
		return nil, ErrEmptySchema
	}
	var s Schema
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	return &s, nil
}

// Encode serializes the schema to its blob form.
func (s *Schema) Encode() ([]byte, error) {
	blob, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("schema: encode: %w", err)
	}
	return blob, nil
}

// Feature returns the entry for the given flat feature index, or nil.
func (s *Schema) Feature(flatIndex int) *FloatFeature {
	for i := range s.FloatFeatures {
		if s.FloatFeatures[i].FlatIndex == flatIndex {
			return &s.FloatFeatures[i]
		}
	}
	return nil
}

// IgnoredFlatIndices lists features that quantization marked as carrying no
// information: present in the schema but with an empty border set.
func (s *Schema) IgnoredFlatIndices() []uint32 {
	var ignored []uint32
	for i := range s.FloatFeatures {
		f := &s.FloatFeatures[i]
		if len(f.Borders) == 0 && f.FlatIndex >= 0 {
			ignored = append(ignored, uint32(f.FlatIndex))
		}
	}
	return ignored
}
