package quantpool

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/quantpool/column"
	"github.com/hupe1980/quantpool/internal/conv"
	"github.com/hupe1980/quantpool/pathspec"
	"github.com/hupe1980/quantpool/pool"
	"github.com/hupe1980/quantpool/schema"
)

// Args configures what accompanies the pool during a load.
type Args struct {
	// PairsPath, GroupWeightsPath and BaselinePath reference optional
	// auxiliary files. When set, they must exist at construction time.
	PairsPath        pathspec.Path
	GroupWeightsPath pathspec.Path
	BaselinePath     pathspec.Path

	// IgnoredFeatures lists flat feature indices to drop, in addition to
	// the features the quantization schema marks as uninformative.
	IgnoredFeatures []uint32

	// ObjectsOrder declares how objects are ordered in the pool.
	ObjectsOrder ObjectsOrder
}

// Loader streams a quantized pool into a DataVisitor in a single forward
// pass over the pool's physical storage order.
//
// A Loader is single use: construct it, call Do exactly once, discard it.
// It owns the pool from construction until Do releases its storage.
type Loader struct {
	pool        *pool.Pool
	objectCount uint32
	meta        MetaInfo
	schema      *schema.Schema
	ignored     *roaring.Bitmap
	args        Args
	opts        options
	done        bool
}

// Open reads the pool container at poolPath and constructs a Loader over
// it. poolOpts are forwarded to pool.Open.
func Open(ctx context.Context, poolPath string, args Args, poolOpts []pool.OpenOption, opts ...Option) (*Loader, error) {
	p, err := pool.Open(poolPath, poolOpts...)
	if err != nil {
		return nil, err
	}

	l, err := New(ctx, p, args, opts...)
	if err != nil {
		p.Release()
		return nil, err
	}
	return l, nil
}

// New constructs a Loader over an already-opened pool.
//
// It validates the pool's object count, checks that every configured
// auxiliary file exists, derives the dataset metadata, and computes the
// ignored-feature set as the union of args.IgnoredFeatures and the
// schema-embedded ignore list. On error the caller keeps ownership of p.
func New(ctx context.Context, p *pool.Pool, args Args, opts ...Option) (*Loader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if p.DocCount == 0 {
		return nil, ErrEmptyPool
	}
	objectCount, err := conv.Uint64ToUint32(p.DocCount)
	if err != nil {
		return nil, fmt.Errorf("%w: pool has %d objects", ErrTooManyObjects, p.DocCount)
	}

	for _, ap := range []struct {
		name string
		path pathspec.Path
	}{
		{"pairs", args.PairsPath},
		{"group weights", args.GroupWeightsPath},
		{"baseline", args.BaselinePath},
	} {
		if !ap.path.Inited() {
			continue
		}
		ok, err := o.registry.Exists(ctx, ap.path)
		if err != nil {
			return nil, fmt.Errorf("check %s path %s: %w", ap.name, ap.path, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s file %s", ErrAuxFileNotFound, ap.name, ap.path)
		}
	}

	sch := &schema.Schema{}
	if len(p.QuantizationSchema) > 0 {
		sch, err = schema.Decode(p.QuantizationSchema)
		if err != nil {
			return nil, err
		}
	}

	meta := newMetaInfo(p, sch, objectCount, args.GroupWeightsPath.Inited(), args.PairsPath.Inited())
	if meta.FeatureCount == 0 {
		return nil, ErrNoFeatures
	}

	ignored := roaring.New()
	ignored.AddMany(args.IgnoredFeatures)
	ignored.AddMany(sch.IgnoredFlatIndices())

	return &Loader{
		pool:        p,
		objectCount: objectCount,
		meta:        meta,
		schema:      sch,
		ignored:     ignored,
		args:        args,
		opts:        o,
	}, nil
}

// MetaInfo returns the dataset metadata derived at construction.
func (l *Loader) MetaInfo() MetaInfo {
	return l.meta
}

// Do streams the pool into v. It must be called exactly once.
//
// Chunks are visited in physical storage order. For memory-mapped pools,
// consumed pages are advised away once enough of them accumulate. After
// the pass the pool's storage is released, auxiliary data is populated,
// and the visitor is finished. On error the visitor may have received an
// arbitrary prefix of the stream and no finish signal.
func (l *Loader) Do(ctx context.Context, v DataVisitor) error {
	if l.done {
		return ErrAlreadyLoaded
	}
	l.done = true

	logger := l.opts.logger.WithObjectCount(l.objectCount)
	logger.Debug("load started",
		"features", l.meta.FeatureCount,
		"ignored", l.ignored.GetCardinality(),
		"mapped", l.pool.MemoryMapped(),
	)

	v.Start(l.meta, l.objectCount, l.args.ObjectsOrder, l.schema)

	columnIdxToFlatIdx := l.pool.ColumnIndexToFlatIndex()
	columnIdxToBaselineIdx := l.pool.ColumnIndexToBaselineIndex()
	refs := gatherAndSortChunks(l.pool)

	evictor := newSequentialEvictor(defaultMinBytesToEvict, l.pool.Data(), l.opts.logger)
	for i := range refs {
		ref := &refs[i]
		if l.pool.MemoryMapped() {
			if err := evictor.push(ref.chunk); err != nil {
				return err
			}
		}

		if err := l.processChunk(ref, columnIdxToFlatIdx, columnIdxToBaselineIdx, v); err != nil {
			return err
		}

		evictor.maybeEvict(false)
	}
	evictor.maybeEvict(true)

	// Everything the training pipeline needs has been forwarded; drop the
	// backing storage before the auxiliary steps.
	if err := l.pool.Release(); err != nil {
		return fmt.Errorf("release pool: %w", err)
	}

	if err := l.opts.groupWeightsSetter(ctx, l.opts.registry, l.args.GroupWeightsPath, l.objectCount, v); err != nil {
		return err
	}
	if err := l.opts.pairsSetter(ctx, l.opts.registry, l.args.PairsPath, l.objectCount, v); err != nil {
		return err
	}
	if err := l.opts.baselineSetter(ctx, l.opts.registry, l.args.BaselinePath, l.objectCount, l.meta.ClassNames, v); err != nil {
		return err
	}

	if err := v.Finish(); err != nil {
		return fmt.Errorf("finish visitor: %w", err)
	}

	logger.Debug("load completed", "chunks", len(refs))
	return nil
}

// processChunk classifies one reference and dispatches it. String
// identifier slots and legacy sample-id columns are silently skipped, as
// are chunks of ignored features.
func (l *Loader) processChunk(ref *chunkRef, columnIdxToFlatIdx, columnIdxToBaselineIdx map[int]int, v DataVisitor) error {
	p := l.pool

	isStringColumn := p.HasStringColumns &&
		(ref.localIndex == p.StringDocIDLocalIndex ||
			ref.localIndex == p.StringGroupIDLocalIndex ||
			ref.localIndex == p.StringSubgroupIDLocalIndex)
	if isStringColumn {
		// String columns only exist for human-readable evaluation output.
		return nil
	}

	columnType := p.ColumnTypes[ref.localIndex]
	if columnType == column.SampleID {
		// Sample-id columns appear in old pools; never forwarded.
		return nil
	}

	if !columnType.Quantizable() {
		return &UnexpectedColumnError{Type: columnType, ColumnIndex: ref.columnIndex}
	}

	var flatFeatureIdx *int
	if flat, ok := columnIdxToFlatIdx[ref.columnIndex]; ok {
		if l.ignored.Contains(uint32(flat)) {
			return nil
		}
		flatFeatureIdx = &flat
	}

	var baselineIdx *int
	if b, ok := columnIdxToBaselineIdx[ref.columnIndex]; ok {
		baselineIdx = &b
	}

	return addChunk(ref.chunk, columnType, flatFeatureIdx, baselineIdx, v)
}
