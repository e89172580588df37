package quantpool

import (
	"os"

	"github.com/hupe1980/quantpool/internal/mmap"
	"github.com/hupe1980/quantpool/pool"
)

// defaultMinBytesToEvict is the span size at which the evictor starts
// advising the kernel (16 MiB). Below it, the syscall would cost more than
// the cache pressure it relieves.
const defaultMinBytesToEvict = 1 << 24

// sequentialEvictor drops already-consumed pages of a memory-mapped pool
// from the OS page cache during the forward pass.
//
// It tracks a single contiguous span of visited bytes. Chunks must be
// pushed in ascending offset order - the order the chunk reference table
// guarantees - and any violation is a fatal programming error. The
// advisory itself is best effort: a failure is logged and ignored, since
// it only affects cache residency, never the decoded bytes.
type sequentialEvictor struct {
	minBytesToEvict int
	data            []byte // the pool's data region
	logger          *Logger

	// advise issues the page advisory; replaceable in tests.
	advise func(span []byte) error

	active  bool
	evicted bool
	start   int
	size    int
}

func newSequentialEvictor(minBytesToEvict int, data []byte, logger *Logger) *sequentialEvictor {
	return &sequentialEvictor{
		minBytesToEvict: minBytesToEvict,
		data:            data,
		logger:          logger,
		advise:          adviseDontNeed,
	}
}

// adviseDontNeed tells the kernel the span will not be read again.
// madvise requires page-aligned addresses, so the span is shrunk to whole
// pages; a span smaller than one page is silently left resident.
func adviseDontNeed(span []byte) error {
	if len(span) == 0 {
		return nil
	}

	page := os.Getpagesize()
	lo := 0
	if rem := addrOf(span) % uintptr(page); rem != 0 {
		lo = page - int(rem)
	}
	hi := lo + (len(span)-lo)/page*page
	if lo >= hi {
		return nil
	}

	return mmap.Advise(span[lo:hi], mmap.AccessDontNeed)
}

// push records that the chunk's bytes have just been read.
func (e *sequentialEvictor) push(c *pool.ChunkDescription) error {
	defer func() { e.evicted = false }()

	start := c.Offset
	size := len(c.Quants)
	if e.active && e.start+e.size > start {
		return &OutOfOrderChunkError{TrackedEnd: e.start + e.size, ChunkStart: start}
	}

	switch {
	case !e.active:
		e.active = true
		e.start = start
		e.size = size
	case e.evicted:
		// Resume right after the span already handed to the kernel.
		next := e.start + e.size
		e.size = start - next + size
		e.start = next
	default:
		e.size = start - e.start + size
	}
	return nil
}

// maybeEvict advises the kernel to drop the tracked span, at most once per
// span, and only when the span reached the threshold or force is set.
func (e *sequentialEvictor) maybeEvict(force bool) {
	if !e.active || e.evicted || (!force && e.size < e.minBytesToEvict) {
		return
	}

	if err := e.advise(e.data[e.start : e.start+e.size]); err != nil {
		e.logger.Debug("page eviction advisory failed",
			"offset", e.start,
			"size", e.size,
			"error", err,
		)
	}

	e.evicted = true
}
