// Package pool reads and writes quantized pool containers.
//
// A pool is a columnar, chunked dataset: each column's values are stored as
// one or more chunks, a chunk being a contiguous byte range covering a
// contiguous range of objects. Columns may be physically interleaved in the
// data region; chunk descriptors record where each chunk lives so the loader
// can replay them in storage order.
//
// Pools open memory mapped by default, giving zero-copy chunk views that the
// kernel pages in on demand. Compressed pools (and pools opened with
// WithMaterialized) are instead decompressed into an owned buffer; such
// pools report MemoryMapped() == false and page-cache eviction does not
// apply to them.
package pool
