package pool

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

const (
	// FormatMagic identifies quantized pool files (ASCII: "QPOL").
	FormatMagic = 0x51504F4C

	// FormatVersion is the current pool container version.
	FormatVersion uint32 = 1

	// HeaderSize is the size of the file header in bytes.
	HeaderSize = 64

	// columnEntrySize is the on-disk size of one column-table entry.
	columnEntrySize = 6
	// chunkEntrySize is the on-disk size of one chunk-table entry.
	chunkEntrySize = 25

	// FlagCompressed indicates that the data region is zstd-compressed.
	FlagCompressed uint32 = 1 << 0
	// FlagHasStringColumns indicates reserved string-identifier slots are present.
	FlagHasStringColumns uint32 = 1 << 1
)

var (
	// ErrInvalidMagic is returned when a file has an invalid magic number.
	ErrInvalidMagic = errors.New("pool: invalid magic number")

	// ErrInvalidVersion is returned when a file has an unsupported version.
	ErrInvalidVersion = errors.New("pool: unsupported format version")

	// ErrCorrupted is returned when a file fails checksum validation.
	ErrCorrupted = errors.New("pool: file corrupted (checksum mismatch)")

	// ErrTruncated is returned when the file is shorter than its tables claim.
	ErrTruncated = errors.New("pool: file truncated")
)

// fileHeader is the 64-byte header at the start of pool files.
//
// All multi-byte fields are little-endian.
type fileHeader struct {
	Magic       uint32
	Version     uint32
	Flags       uint32
	DocCount    uint64
	ColumnCount uint32
	ChunkCount  uint32
	SchemaLen   uint32
	DataLen     uint64 // uncompressed data region size
	StoredLen   uint64 // data region bytes as stored in the file
	Checksum    uint32
}

func (h *fileHeader) validate() error {
	if h.Magic != FormatMagic {
		return ErrInvalidMagic
	}
	if h.Version > FormatVersion {
		return ErrInvalidVersion
	}
	return nil
}

func (h *fileHeader) compressed() bool {
	return h.Flags&FlagCompressed != 0
}

func (h *fileHeader) hasStringColumns() bool {
	return h.Flags&FlagHasStringColumns != 0
}

func (h *fileHeader) marshal() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.Flags)
	binary.LittleEndian.PutUint64(buf[12:20], h.DocCount)
	binary.LittleEndian.PutUint32(buf[20:24], h.ColumnCount)
	binary.LittleEndian.PutUint32(buf[24:28], h.ChunkCount)
	binary.LittleEndian.PutUint32(buf[28:32], h.SchemaLen)
	binary.LittleEndian.PutUint64(buf[32:40], h.DataLen)
	binary.LittleEndian.PutUint64(buf[40:48], h.StoredLen)

	// Checksum covers everything before it; the tail stays zero.
	h.Checksum = crc32.ChecksumIEEE(buf[:56])
	binary.LittleEndian.PutUint32(buf[56:60], h.Checksum)

	return buf
}

func (h *fileHeader) unmarshal(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrTruncated
	}

	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
	h.Flags = binary.LittleEndian.Uint32(buf[8:12])
	h.DocCount = binary.LittleEndian.Uint64(buf[12:20])
	h.ColumnCount = binary.LittleEndian.Uint32(buf[20:24])
	h.ChunkCount = binary.LittleEndian.Uint32(buf[24:28])
	h.SchemaLen = binary.LittleEndian.Uint32(buf[28:32])
	h.DataLen = binary.LittleEndian.Uint64(buf[32:40])
	h.StoredLen = binary.LittleEndian.Uint64(buf[40:48])
	h.Checksum = binary.LittleEndian.Uint32(buf[56:60])

	if crc32.ChecksumIEEE(buf[:56]) != h.Checksum {
		return ErrCorrupted
	}

	return h.validate()
}

func (h *fileHeader) writeTo(w io.Writer) (int64, error) {
	n, err := w.Write(h.marshal())
	return int64(n), err
}

// columnTableOffset and friends locate the variable-length sections.
func (h *fileHeader) columnTableOffset() int { return HeaderSize }

func (h *fileHeader) chunkTableOffset() int {
	return h.columnTableOffset() + int(h.ColumnCount)*columnEntrySize
}

func (h *fileHeader) schemaOffset() int {
	return h.chunkTableOffset() + int(h.ChunkCount)*chunkEntrySize
}

func (h *fileHeader) dataOffset() int {
	return h.schemaOffset() + int(h.SchemaLen)
}
