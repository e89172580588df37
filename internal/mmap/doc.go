// Package mmap provides read-only memory-mapped access to pool files.
//
// A quantized pool can be several gigabytes; mapping it lets chunk data be
// handed to the dataset visitor as zero-copy views while the kernel pages
// quants in on demand. Advise exposes madvise(2) so the loader can drop
// already-consumed pages from the cache during its single sequential pass.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (advise is a no-op)
//
// # Lifetime
//
// Slices obtained from Mapping.Bytes are valid only until Close. Close is
// idempotent; callers must ensure no view outlives it.
package mmap
