package quantpool

import "github.com/hupe1980/quantpool/pathspec"

type options struct {
	logger             *Logger
	registry           *pathspec.Registry
	groupWeightsSetter GroupWeightsSetter
	pairsSetter        PairsSetter
	baselineSetter     BaselineSetter
}

// Option configures loader construction.
type Option func(*options)

// WithLogger sets the logger. Defaults to a text logger at info level.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegistry sets the path registry used to resolve auxiliary files.
// Defaults to pathspec.DefaultRegistry (local files only).
func WithRegistry(r *pathspec.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithGroupWeightsSetter replaces the default group-weights population
// step (reading a tab-separated file through the registry).
func WithGroupWeightsSetter(s GroupWeightsSetter) Option {
	return func(o *options) {
		if s != nil {
			o.groupWeightsSetter = s
		}
	}
}

// WithPairsSetter replaces the default pairs population step.
func WithPairsSetter(s PairsSetter) Option {
	return func(o *options) {
		if s != nil {
			o.pairsSetter = s
		}
	}
}

// WithBaselineSetter replaces the default baseline population step.
func WithBaselineSetter(s BaselineSetter) Option {
	return func(o *options) {
		if s != nil {
			o.baselineSetter = s
		}
	}
}

func defaultOptions() options {
	return options{
		logger:             NewLogger(nil),
		registry:           pathspec.DefaultRegistry(),
		groupWeightsSetter: setGroupWeightsFromFile,
		pairsSetter:        setPairsFromFile,
		baselineSetter:     setBaselineFromFile,
	}
}
