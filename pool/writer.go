package pool

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/quantpool/column"
	"github.com/hupe1980/quantpool/internal/conv"
	"github.com/hupe1980/quantpool/schema"
)

// Writer assembles a pool container.
//
// Chunks are laid out in the data region in the order they are added, so a
// caller can interleave columns physically the way a streaming quantizer
// would. Writer is used by tooling and tests; training pipelines only read
// pools.
type Writer struct {
	docCount uint64
	compress bool

	columns []writerColumn
	chunks  []writerChunk
	schema  []byte
}

type writerColumn struct {
	logical int
	typ     column.Type
	special Special
}

type writerChunk struct {
	local      int
	docOffset  uint32
	docCount   uint32
	bitsPerDoc uint8
	quants     []byte
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompression zstd-compresses the data region. Compressed pools are
// materialized on open instead of memory mapped.
func WithCompression() WriterOption {
	return func(w *Writer) {
		w.compress = true
	}
}

// NewWriter creates a Writer for a pool with the given object count.
func NewWriter(docCount uint64, opts ...WriterOption) *Writer {
	w := &Writer{docCount: docCount}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// AddColumn registers a regular column and returns its storage slot.
func (w *Writer) AddColumn(logicalIndex int, t column.Type) int {
	w.columns = append(w.columns, writerColumn{logical: logicalIndex, typ: t, special: SpecialNone})
	return len(w.columns) - 1
}

// AddStringColumn registers a reserved string-identifier slot and returns it.
func (w *Writer) AddStringColumn(sp Special, t column.Type) int {
	w.columns = append(w.columns, writerColumn{logical: -1, typ: t, special: sp})
	return len(w.columns) - 1
}

// AddChunk appends a chunk for the given storage slot. quants is copied.
func (w *Writer) AddChunk(localIndex int, docOffset, docCount uint32, bitsPerDoc uint8, quants []byte) error {
	if localIndex < 0 || localIndex >= len(w.columns) {
		return fmt.Errorf("pool: chunk references unknown slot %d", localIndex)
	}
	w.chunks = append(w.chunks, writerChunk{
		local:      localIndex,
		docOffset:  docOffset,
		docCount:   docCount,
		bitsPerDoc: bitsPerDoc,
		quants:     append([]byte(nil), quants...),
	})
	return nil
}

// SetSchema attaches the quantization schema.
func (w *Writer) SetSchema(s *schema.Schema) error {
	blob, err := s.Encode()
	if err != nil {
		return err
	}
	w.schema = blob
	return nil
}

// WriteTo writes the container to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	// Data region and per-chunk offsets, in add order.
	var data bytes.Buffer
	offsets := make([]uint64, len(w.chunks))
	for i := range w.chunks {
		offsets[i] = uint64(data.Len())
		data.Write(w.chunks[i].quants)
	}

	stored := data.Bytes()
	flags := uint32(0)
	if w.compress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return 0, fmt.Errorf("pool: zstd: %w", err)
		}
		stored = enc.EncodeAll(stored, nil)
		enc.Close()
		flags |= FlagCompressed
	}
	for _, c := range w.columns {
		if c.special != SpecialNone {
			flags |= FlagHasStringColumns
		}
	}

	columnCount, err := conv.IntToUint32(len(w.columns))
	if err != nil {
		return 0, err
	}
	chunkCount, err := conv.IntToUint32(len(w.chunks))
	if err != nil {
		return 0, err
	}
	schemaLen, err := conv.IntToUint32(len(w.schema))
	if err != nil {
		return 0, err
	}

	h := fileHeader{
		Magic:       FormatMagic,
		Version:     FormatVersion,
		Flags:       flags,
		DocCount:    w.docCount,
		ColumnCount: columnCount,
		ChunkCount:  chunkCount,
		SchemaLen:   schemaLen,
		DataLen:     uint64(data.Len()),
		StoredLen:   uint64(len(stored)),
	}

	var written int64
	n, err := h.writeTo(out)
	written += n
	if err != nil {
		return written, err
	}

	entry := make([]byte, columnEntrySize)
	for _, c := range w.columns {
		binary.LittleEndian.PutUint32(entry[0:4], uint32(int32(c.logical)))
		entry[4] = uint8(c.typ)
		entry[5] = uint8(c.special)
		m, err := out.Write(entry)
		written += int64(m)
		if err != nil {
			return written, err
		}
	}

	centry := make([]byte, chunkEntrySize)
	for i, c := range w.chunks {
		binary.LittleEndian.PutUint32(centry[0:4], uint32(c.local))
		binary.LittleEndian.PutUint64(centry[4:12], offsets[i])
		length, err := conv.IntToUint32(len(c.quants))
		if err != nil {
			return written, err
		}
		binary.LittleEndian.PutUint32(centry[12:16], length)
		binary.LittleEndian.PutUint32(centry[16:20], c.docOffset)
		binary.LittleEndian.PutUint32(centry[20:24], c.docCount)
		centry[24] = c.bitsPerDoc
		m, err := out.Write(centry)
		written += int64(m)
		if err != nil {
			return written, err
		}
	}

	if len(w.schema) > 0 {
		m, err := out.Write(w.schema)
		written += int64(m)
		if err != nil {
			return written, err
		}
	}

	m, err := out.Write(stored)
	written += int64(m)
	return written, err
}

// WriteFile writes the container to path.
func (w *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
