package quantpool

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/hupe1980/quantpool/column"
	"github.com/hupe1980/quantpool/pool"
)

// addChunk decodes one chunk according to its column role and forwards it
// to the visitor. flatFeatureIdx is set for feature columns, baselineIdx
// for baseline columns.
//
// Apart from the baseline path (which narrows 64-bit floats into a fresh
// buffer), all forwarded slices alias the pool's backing storage.
func addChunk(c *pool.ChunkDescription, columnType column.Type, flatFeatureIdx, baselineIdx *int, v DataVisitor) error {
	switch columnType {
	case column.Num:
		if flatFeatureIdx == nil {
			return fmt.Errorf("feature column without flat index (chunk at offset %d)", c.Offset)
		}
		v.AddFloatFeaturePart(*flatFeatureIdx, c.DocOffset, c.BitsPerDoc, c.Quants)
		return nil

	case column.Label:
		values, err := float32sFromBytes(c.Quants)
		if err != nil {
			return fmt.Errorf("label chunk at offset %d: %w", c.Offset, err)
		}
		v.AddTargetPart(c.DocOffset, values)
		return nil

	case column.Baseline:
		if baselineIdx == nil {
			return fmt.Errorf("baseline column without baseline index (chunk at offset %d)", c.Offset)
		}
		values, err := float32sFromFloat64Bytes(c.Quants)
		if err != nil {
			return fmt.Errorf("baseline chunk at offset %d: %w", c.Offset, err)
		}
		v.AddBaselinePart(c.DocOffset, *baselineIdx, values)
		return nil

	case column.Weight:
		values, err := float32sFromBytes(c.Quants)
		if err != nil {
			return fmt.Errorf("weight chunk at offset %d: %w", c.Offset, err)
		}
		v.AddWeightPart(c.DocOffset, values)
		return nil

	case column.GroupWeight:
		values, err := float32sFromBytes(c.Quants)
		if err != nil {
			return fmt.Errorf("group weight chunk at offset %d: %w", c.Offset, err)
		}
		v.AddGroupWeightPart(c.DocOffset, values)
		return nil

	case column.GroupID:
		values, err := uint64sFromBytes(c.Quants)
		if err != nil {
			return fmt.Errorf("group id chunk at offset %d: %w", c.Offset, err)
		}
		v.AddGroupIDPart(c.DocOffset, values)
		return nil

	case column.SubgroupID:
		values, err := uint32sFromBytes(c.Quants)
		if err != nil {
			return fmt.Errorf("subgroup id chunk at offset %d: %w", c.Offset, err)
		}
		v.AddSubgroupIDPart(c.DocOffset, values)
		return nil

	default:
		// SampleId is skipped by the caller; Categ, Auxiliary, Text,
		// Timestamp, Sparse and Prediction cannot appear in a quantized
		// pool.
		return &UnexpectedColumnError{Type: columnType, ColumnIndex: -1}
	}
}

func addrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

// float32sFromBytes reinterprets b as packed little-endian float32s.
// Aligned input is zero-copy; unaligned input falls back to a copy.
func float32sFromBytes(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("byte length %d is not a multiple of 4", len(b))
	}
	if len(b) == 0 {
		return nil, nil
	}

	n := len(b) / 4
	if addrOf(b)%4 == 0 {
		return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), n), nil
	}

	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}

// uint32sFromBytes reinterprets b as packed little-endian uint32s.
func uint32sFromBytes(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("byte length %d is not a multiple of 4", len(b))
	}
	if len(b) == 0 {
		return nil, nil
	}

	n := len(b) / 4
	if addrOf(b)%4 == 0 {
		return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), n), nil
	}

	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out, nil
}

// uint64sFromBytes reinterprets b as packed little-endian uint64s.
func uint64sFromBytes(b []byte) ([]uint64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("byte length %d is not a multiple of 8", len(b))
	}
	if len(b) == 0 {
		return nil, nil
	}

	n := len(b) / 8
	if addrOf(b)%8 == 0 {
		return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), n), nil
	}

	out := make([]uint64, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return out, nil
}

// float32sFromFloat64Bytes narrows packed little-endian float64s to
// float32s. Always copies; the narrowing needs an owned buffer.
func float32sFromFloat64Bytes(b []byte) ([]float32, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("byte length %d is not a multiple of 8", len(b))
	}

	out := make([]float32, len(b)/8)
	for i := range out {
		out[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:])))
	}
	return out, nil
}
