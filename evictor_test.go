package quantpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/quantpool/pool"
)

func chunkAt(data []byte, offset, size int) *pool.ChunkDescription {
	return &pool.ChunkDescription{Offset: offset, Quants: data[offset : offset+size]}
}

func newTestEvictor(minBytes int, data []byte) (*sequentialEvictor, *int) {
	e := newSequentialEvictor(minBytes, data, NoopLogger())
	calls := 0
	e.advise = func(span []byte) error {
		calls++
		return nil
	}
	return e, &calls
}

func TestEvictor_AdoptsFirstRegion(t *testing.T) {
	data := make([]byte, 1024)
	e, _ := newTestEvictor(100, data)

	require.NoError(t, e.push(chunkAt(data, 10, 20)))
	assert.Equal(t, 10, e.start)
	assert.Equal(t, 20, e.size)
}

func TestEvictor_ExtendsForward(t *testing.T) {
	data := make([]byte, 1024)
	e, _ := newTestEvictor(1<<20, data)

	require.NoError(t, e.push(chunkAt(data, 0, 100)))
	require.NoError(t, e.push(chunkAt(data, 100, 50)))
	require.NoError(t, e.push(chunkAt(data, 200, 50))) // gaps are fine
	assert.Equal(t, 0, e.start)
	assert.Equal(t, 250, e.size)
}

func TestEvictor_RejectsOverlap(t *testing.T) {
	data := make([]byte, 1024)
	e, _ := newTestEvictor(1<<20, data)

	require.NoError(t, e.push(chunkAt(data, 0, 100)))

	var oooErr *OutOfOrderChunkError
	err := e.push(chunkAt(data, 50, 10))
	require.ErrorAs(t, err, &oooErr)
	assert.Equal(t, 100, oooErr.TrackedEnd)
	assert.Equal(t, 50, oooErr.ChunkStart)

	// A region starting exactly at the tracked end is legal.
	require.NoError(t, e.push(chunkAt(data, 100, 10)))
}

func TestEvictor_ThresholdGating(t *testing.T) {
	data := make([]byte, 1024)
	e, calls := newTestEvictor(100, data)

	require.NoError(t, e.push(chunkAt(data, 0, 99)))
	e.maybeEvict(false)
	assert.Equal(t, 0, *calls, "below threshold must be a no-op")

	require.NoError(t, e.push(chunkAt(data, 99, 1)))
	e.maybeEvict(false)
	assert.Equal(t, 1, *calls, "advisory fires once threshold is met")

	// Already evicted and not extended since: no second call.
	e.maybeEvict(false)
	e.maybeEvict(true)
	assert.Equal(t, 1, *calls)
}

func TestEvictor_ForceEvicts(t *testing.T) {
	data := make([]byte, 1024)
	e, calls := newTestEvictor(1<<20, data)

	require.NoError(t, e.push(chunkAt(data, 0, 10)))
	e.maybeEvict(true)
	assert.Equal(t, 1, *calls)
}

func TestEvictor_InactiveIsNoop(t *testing.T) {
	data := make([]byte, 16)
	e, calls := newTestEvictor(1, data)

	e.maybeEvict(true)
	assert.Equal(t, 0, *calls)
}

func TestEvictor_ResumesAfterEviction(t *testing.T) {
	data := make([]byte, 1024)
	e, calls := newTestEvictor(100, data)

	require.NoError(t, e.push(chunkAt(data, 0, 200)))
	e.maybeEvict(false)
	require.Equal(t, 1, *calls)

	// The next push starts a fresh span right after the evicted one.
	require.NoError(t, e.push(chunkAt(data, 300, 50)))
	assert.Equal(t, 200, e.start)
	assert.Equal(t, 150, e.size)

	e.maybeEvict(false)
	assert.Equal(t, 2, *calls)
}

func TestEvictor_AdvisoryFailureIsNonFatal(t *testing.T) {
	data := make([]byte, 1024)
	e := newSequentialEvictor(1, data, NoopLogger())
	e.advise = func([]byte) error { return assert.AnError }

	require.NoError(t, e.push(chunkAt(data, 0, 100)))
	e.maybeEvict(true)
	assert.True(t, e.evicted, "failed advisory still marks the span evicted")

	require.NoError(t, e.push(chunkAt(data, 100, 10)))
}

func TestAdviseDontNeed_SmallSpan(t *testing.T) {
	// Sub-page spans have no whole page to drop and must not error.
	data := make([]byte, 64)
	require.NoError(t, adviseDontNeed(data))
	require.NoError(t, adviseDontNeed(nil))
}
