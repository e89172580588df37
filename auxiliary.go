package quantpool

import (
	"context"
	"fmt"

	"github.com/hupe1980/quantpool/auxdata"
	"github.com/hupe1980/quantpool/pathspec"
)

// GroupWeightsSetter populates group weights on the visitor from an
// auxiliary path. Invoked after the streaming pass; a no-op when the path
// is not set.
type GroupWeightsSetter func(ctx context.Context, r *pathspec.Registry, path pathspec.Path, objectCount uint32, v DataVisitor) error

// PairsSetter populates pairwise preferences on the visitor.
type PairsSetter func(ctx context.Context, r *pathspec.Registry, path pathspec.Path, objectCount uint32, v DataVisitor) error

// BaselineSetter populates baseline predictions on the visitor.
type BaselineSetter func(ctx context.Context, r *pathspec.Registry, path pathspec.Path, objectCount uint32, classNames []string, v DataVisitor) error

func setGroupWeightsFromFile(ctx context.Context, r *pathspec.Registry, path pathspec.Path, objectCount uint32, v DataVisitor) error {
	if !path.Inited() {
		return nil
	}

	rc, err := r.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("group weights %s: %w", path, err)
	}
	defer rc.Close()

	weights, err := auxdata.ReadGroupWeights(rc, objectCount)
	if err != nil {
		return err
	}
	v.SetGroupWeights(weights)
	return nil
}

func setPairsFromFile(ctx context.Context, r *pathspec.Registry, path pathspec.Path, objectCount uint32, v DataVisitor) error {
	if !path.Inited() {
		return nil
	}

	rc, err := r.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("pairs %s: %w", path, err)
	}
	defer rc.Close()

	pairs, err := auxdata.ReadPairs(rc, objectCount)
	if err != nil {
		return err
	}
	v.SetPairs(pairs)
	return nil
}

func setBaselineFromFile(ctx context.Context, r *pathspec.Registry, path pathspec.Path, objectCount uint32, classNames []string, v DataVisitor) error {
	if !path.Inited() {
		return nil
	}

	rc, err := r.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("baseline %s: %w", path, err)
	}
	defer rc.Close()

	baseline, err := auxdata.ReadBaseline(rc, objectCount, classNames)
	if err != nil {
		return err
	}
	v.SetBaseline(baseline)
	return nil
}
