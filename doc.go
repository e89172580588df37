// Package quantpool streams quantized pool files into a training dataset.
//
// A pool stores one column per feature/label/identifier, each split into
// chunks that may be physically interleaved on disk. The Loader replays all
// chunks in physical storage order - regardless of logical column order -
// so a memory-mapped pool is read strictly sequentially, and already
// consumed pages can be dropped from the OS page cache mid-pass.
//
// The Loader does not build the dataset itself; it decodes each chunk and
// forwards a typed view to a DataVisitor in a single forward pass:
//
//	p, err := pool.Open("train.qpl")
//	if err != nil { ... }
//
//	l, err := quantpool.New(ctx, p, quantpool.Args{})
//	if err != nil { ... }
//
//	if err := l.Do(ctx, visitor); err != nil { ... }
//
// Chunk views handed to the visitor alias the pool's backing storage and
// are only valid during the visitor call; see DataVisitor for the exact
// contract.
package quantpool
