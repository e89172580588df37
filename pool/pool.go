package pool

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/quantpool/column"
	"github.com/hupe1980/quantpool/internal/mmap"
	"github.com/hupe1980/quantpool/internal/resource"
)

// SentinelLocalIndex marks an unused reserved string-identifier slot.
const SentinelLocalIndex = -1

// Special identifies the reserved string-identifier slots.
type Special uint8

const (
	// SpecialNone marks a regular column.
	SpecialNone Special = iota
	// SpecialStringDocID is the human-readable document id slot.
	SpecialStringDocID
	// SpecialStringGroupID is the human-readable group id slot.
	SpecialStringGroupID
	// SpecialStringSubgroupID is the human-readable subgroup id slot.
	SpecialStringSubgroupID
)

// ChunkDescription references one contiguous chunk of quantized bytes.
//
// Quants is a non-owning view into the pool's data region; it is valid
// exactly as long as the pool is not released.
type ChunkDescription struct {
	// Offset is the chunk's byte offset within the pool's data region.
	// Chunks of different columns may interleave; sorting by Offset
	// recovers physical storage order.
	Offset int
	// Quants holds the chunk's raw quantized bytes.
	Quants []byte
	// DocOffset is the index of the first object this chunk covers
	// within its column.
	DocOffset uint32
	// DocCount is the number of objects the chunk covers.
	DocCount uint32
	// BitsPerDoc is the fixed encoding width for numeric feature chunks.
	BitsPerDoc uint8
}

// Pool is an in-memory representation of a quantized pool container.
//
// It is immutable after Open and must be released exactly once, after
// which all chunk views are invalid.
type Pool struct {
	// DocCount is the number of objects in the pool.
	DocCount uint64

	// ColumnIndexToLocalIndex maps logical column indices to storage slots.
	ColumnIndexToLocalIndex map[int]int
	// ColumnTypes holds the column role per storage slot.
	ColumnTypes []column.Type
	// Chunks holds the ordered chunk descriptors per storage slot.
	Chunks [][]ChunkDescription

	// Reserved string-identifier slots; SentinelLocalIndex when unused.
	StringDocIDLocalIndex      int
	StringGroupIDLocalIndex    int
	StringSubgroupIDLocalIndex int
	HasStringColumns           bool

	// QuantizationSchema is the raw schema blob (see package schema).
	QuantizationSchema []byte

	mapping  *mmap.Mapping // nil when materialized
	dump     []byte        // owned data region when materialized
	data     []byte        // the live data region view
	mem      *resource.Controller
	released bool
}

type openOptions struct {
	materialize bool
	mem         *resource.Controller
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

// WithMaterialized forces the data region into an owned in-memory buffer
// instead of a memory mapping. Compressed pools are always materialized.
func WithMaterialized() OpenOption {
	return func(o *openOptions) {
		o.materialize = true
	}
}

// WithMemoryController accounts materialized buffers against c.
func WithMemoryController(c *resource.Controller) OpenOption {
	return func(o *openOptions) {
		o.mem = c
	}
}

// Open reads the pool container at path.
func Open(path string, opts ...OpenOption) (*Pool, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.materialize {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("pool: read %s: %w", path, err)
		}
		return parse(raw, nil, o.mem)
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pool: mmap %s: %w", path, err)
	}

	p, err := parse(m.Bytes(), m, o.mem)
	if err != nil {
		m.Close()
		return nil, err
	}
	return p, nil
}

// parse builds a Pool from the container bytes. When m is non-nil the pool
// stays backed by the mapping unless the data region is compressed, in
// which case the region is decompressed into an owned buffer and the
// mapping is closed.
func parse(raw []byte, m *mmap.Mapping, mem *resource.Controller) (*Pool, error) {
	var h fileHeader
	if err := h.unmarshal(raw); err != nil {
		return nil, err
	}

	// Section extents come straight from the header; bound them before any
	// conversion to int so hostile sizes cannot wrap the checks below.
	if h.StoredLen > uint64(len(raw)) {
		return nil, ErrTruncated
	}
	if h.DataLen > math.MaxInt {
		return nil, fmt.Errorf("%w: data region size %d", ErrCorrupted, h.DataLen)
	}
	end := h.dataOffset() + int(h.StoredLen)
	if end > len(raw) {
		return nil, ErrTruncated
	}

	p := &Pool{
		DocCount:                   h.DocCount,
		ColumnIndexToLocalIndex:    make(map[int]int, h.ColumnCount),
		ColumnTypes:                make([]column.Type, h.ColumnCount),
		Chunks:                     make([][]ChunkDescription, h.ColumnCount),
		StringDocIDLocalIndex:      SentinelLocalIndex,
		StringGroupIDLocalIndex:    SentinelLocalIndex,
		StringSubgroupIDLocalIndex: SentinelLocalIndex,
		HasStringColumns:           h.hasStringColumns(),
		mem:                        mem,
	}

	if err := p.parseColumnTable(raw[h.columnTableOffset():h.chunkTableOffset()], int(h.ColumnCount)); err != nil {
		return nil, err
	}

	// The schema blob must survive the mapping when the pool materializes,
	// so it is always copied.
	if h.SchemaLen > 0 {
		p.QuantizationSchema = append([]byte(nil), raw[h.schemaOffset():h.dataOffset()]...)
	}

	// Resolve the data region before the chunk table so chunk views can
	// subslice it directly.
	stored := raw[h.dataOffset():end]
	switch {
	case h.compressed():
		if err := p.materialize(stored, int64(h.DataLen), true); err != nil {
			return nil, err
		}
	case m == nil:
		if err := p.materialize(stored, int64(h.DataLen), false); err != nil {
			return nil, err
		}
	default:
		p.mapping = m
		p.data = stored
	}

	if err := p.parseChunkTable(raw[h.chunkTableOffset():h.schemaOffset()], int(h.ChunkCount)); err != nil {
		// A materialized dump is already accounted; give it back.
		p.Release()
		return nil, err
	}

	// The chunk table above still reads from the mapping, so a compressed
	// pool keeps it mapped until parsing is done; the pool now owns its
	// decompressed dump and the mapping can go.
	if h.compressed() && m != nil {
		m.Close()
	}

	return p, nil
}

func (p *Pool) parseColumnTable(buf []byte, count int) error {
	for local := 0; local < count; local++ {
		entry := buf[local*columnEntrySize : (local+1)*columnEntrySize]
		logical := int(int32(binary.LittleEndian.Uint32(entry[0:4])))
		p.ColumnTypes[local] = column.Type(entry[4])

		switch Special(entry[5]) {
		case SpecialNone:
			if logical < 0 {
				return fmt.Errorf("%w: negative logical index for slot %d", ErrCorrupted, local)
			}
			if _, dup := p.ColumnIndexToLocalIndex[logical]; dup {
				return fmt.Errorf("%w: duplicate column index %d", ErrCorrupted, logical)
			}
			p.ColumnIndexToLocalIndex[logical] = local
		case SpecialStringDocID:
			p.StringDocIDLocalIndex = local
		case SpecialStringGroupID:
			p.StringGroupIDLocalIndex = local
		case SpecialStringSubgroupID:
			p.StringSubgroupIDLocalIndex = local
		default:
			return fmt.Errorf("%w: unknown special tag %d", ErrCorrupted, entry[5])
		}
	}
	return nil
}

func (p *Pool) parseChunkTable(buf []byte, count int) error {
	for i := 0; i < count; i++ {
		entry := buf[i*chunkEntrySize : (i+1)*chunkEntrySize]
		local := int(binary.LittleEndian.Uint32(entry[0:4]))
		off := binary.LittleEndian.Uint64(entry[4:12])
		length := binary.LittleEndian.Uint32(entry[12:16])

		if local >= len(p.Chunks) {
			return fmt.Errorf("%w: chunk %d references slot %d of %d", ErrCorrupted, i, local, len(p.Chunks))
		}
		if off > uint64(len(p.data)) || uint64(length) > uint64(len(p.data))-off {
			return fmt.Errorf("%w: chunk %d spans past data region", ErrCorrupted, i)
		}

		p.Chunks[local] = append(p.Chunks[local], ChunkDescription{
			Offset:     int(off),
			Quants:     p.data[off : off+uint64(length)],
			DocOffset:  binary.LittleEndian.Uint32(entry[16:20]),
			DocCount:   binary.LittleEndian.Uint32(entry[20:24]),
			BitsPerDoc: entry[24],
		})
	}
	return nil
}

func (p *Pool) materialize(stored []byte, dataLen int64, compressed bool) error {
	if err := p.mem.AcquireMemory(dataLen); err != nil {
		return fmt.Errorf("pool: materialize %d bytes: %w", dataLen, err)
	}

	if !compressed {
		if int64(len(stored)) != dataLen {
			p.mem.ReleaseMemory(dataLen)
			return fmt.Errorf("%w: data region size %d, header says %d", ErrCorrupted, len(stored), dataLen)
		}
		p.dump = append([]byte(nil), stored...)
		p.data = p.dump
		return nil
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		p.mem.ReleaseMemory(dataLen)
		return fmt.Errorf("pool: zstd: %w", err)
	}
	defer dec.Close()

	dump, err := dec.DecodeAll(stored, make([]byte, 0, dataLen))
	if err != nil {
		p.mem.ReleaseMemory(dataLen)
		return fmt.Errorf("pool: decompress data region: %w", err)
	}
	if int64(len(dump)) != dataLen {
		p.mem.ReleaseMemory(dataLen)
		return fmt.Errorf("%w: decompressed size %d, header says %d", ErrCorrupted, len(dump), dataLen)
	}

	p.dump = dump
	p.data = dump
	return nil
}

// MemoryMapped reports whether the data region is backed by a file mapping.
// Page-cache eviction only applies to mapped pools.
func (p *Pool) MemoryMapped() bool {
	return p.mapping != nil
}

// Data returns the live data region. All chunk views are subslices of it.
func (p *Pool) Data() []byte {
	return p.data
}

// Release frees the pool's backing storage. Every chunk view becomes
// invalid. Release is idempotent.
func (p *Pool) Release() error {
	if p.released {
		return nil
	}
	p.released = true

	if p.dump != nil {
		p.mem.ReleaseMemory(int64(len(p.dump)))
		p.dump = nil
	}
	p.data = nil
	for local := range p.Chunks {
		p.Chunks[local] = nil
	}

	if p.mapping != nil {
		m := p.mapping
		p.mapping = nil
		return m.Close()
	}
	return nil
}

// ColumnIndexToFlatIndex maps logical column indices of feature columns to
// flat feature indices. Flat order follows ascending logical column order.
func (p *Pool) ColumnIndexToFlatIndex() map[int]int {
	logical := make([]int, 0, len(p.ColumnIndexToLocalIndex))
	for idx, local := range p.ColumnIndexToLocalIndex {
		t := p.ColumnTypes[local]
		if t == column.Num || t == column.Categ {
			logical = append(logical, idx)
		}
	}
	sort.Ints(logical)

	m := make(map[int]int, len(logical))
	for flat, idx := range logical {
		m[idx] = flat
	}
	return m
}

// ColumnIndexToBaselineIndex maps logical column indices of baseline
// columns to baseline dimensions, in ascending logical column order.
func (p *Pool) ColumnIndexToBaselineIndex() map[int]int {
	logical := make([]int, 0, 1)
	for idx, local := range p.ColumnIndexToLocalIndex {
		if p.ColumnTypes[local] == column.Baseline {
			logical = append(logical, idx)
		}
	}
	sort.Ints(logical)

	m := make(map[int]int, len(logical))
	for b, idx := range logical {
		m[idx] = b
	}
	return m
}
