package quantpool

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/quantpool/column"
)

var (
	// ErrEmptyPool is returned when constructing a loader over a pool
	// with no objects.
	ErrEmptyPool = errors.New("pool is empty")

	// ErrTooManyObjects is returned when the pool's object count exceeds
	// what a 32-bit index can address.
	ErrTooManyObjects = fmt.Errorf("datasets with more than %d objects are not supported", uint32(math.MaxUint32))

	// ErrNoFeatures is returned when the pool contains no feature columns.
	ErrNoFeatures = errors.New("pool should have at least one feature")

	// ErrAuxFileNotFound is returned when a configured auxiliary file
	// (pairs, group weights, baseline) does not exist.
	ErrAuxFileNotFound = errors.New("auxiliary file does not exist")

	// ErrAlreadyLoaded is returned when Do is called more than once.
	ErrAlreadyLoaded = errors.New("load already performed")
)

// UnexpectedColumnError indicates a column role that must not appear in a
// quantized pool (or is not supported by it). ColumnIndex is -1 when the
// logical column is unknown.
type UnexpectedColumnError struct {
	Type        column.Type
	ColumnIndex int
}

func (e *UnexpectedColumnError) Error() string {
	if e.ColumnIndex < 0 {
		return fmt.Sprintf("unexpected column type %s", e.Type)
	}
	return fmt.Sprintf("unexpected column type %s (column %d)", e.Type, e.ColumnIndex)
}

// OutOfOrderChunkError indicates chunks were pushed to the eviction
// controller out of physical storage order. This is a programming error in
// the replay logic, never a property of the input pool.
type OutOfOrderChunkError struct {
	TrackedEnd int
	ChunkStart int
}

func (e *OutOfOrderChunkError) Error() string {
	return fmt.Sprintf("chunk at offset %d starts before tracked span end %d: chunks must be visited in ascending address order",
		e.ChunkStart, e.TrackedEnd)
}
