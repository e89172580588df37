// Package pathspec resolves scheme-tagged paths to storage backends.
//
// Dataset options reference auxiliary files as "scheme://path" (a bare path
// defaults to the file scheme). Instead of registering backends through
// package-level side effects, callers hold an explicit Registry: the default
// one resolves local files, and remote backends (e.g. the s3 subpackage)
// are registered at process start.
package pathspec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnknownScheme is returned when no backend is registered for a scheme.
var ErrUnknownScheme = errors.New("pathspec: unknown scheme")

// DefaultScheme is assumed for paths without an explicit scheme.
const DefaultScheme = "file"

// Path is a storage location tagged with a scheme.
// The zero value means "not set".
type Path struct {
	Scheme string
	Path   string
}

// Parse splits "scheme://path". A bare path gets DefaultScheme.
func Parse(s string) Path {
	if s == "" {
		return Path{}
	}
	if scheme, rest, ok := strings.Cut(s, "://"); ok && scheme != "" {
		return Path{Scheme: scheme, Path: rest}
	}
	return Path{Scheme: DefaultScheme, Path: s}
}

// Inited reports whether the path is set.
func (p Path) Inited() bool {
	return p.Path != ""
}

func (p Path) String() string {
	if !p.Inited() {
		return ""
	}
	return p.Scheme + "://" + p.Path
}

// Backend accesses storage for one scheme.
type Backend interface {
	// Exists reports whether the path exists.
	Exists(ctx context.Context, path string) (bool, error)
	// Open opens the path for reading.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Registry maps schemes to backends. It is not safe for concurrent
// mutation; register all backends before use.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// DefaultRegistry returns a registry with the local-file schemes
// ("file" and "dsv") registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(DefaultScheme, Local{})
	r.Register("dsv", Local{})
	return r
}

// Register binds a scheme to a backend, replacing any previous binding.
func (r *Registry) Register(scheme string, b Backend) {
	r.backends[scheme] = b
}

// Lookup returns the backend for a scheme.
func (r *Registry) Lookup(scheme string) (Backend, bool) {
	b, ok := r.backends[scheme]
	return b, ok
}

// Exists reports whether p exists.
func (r *Registry) Exists(ctx context.Context, p Path) (bool, error) {
	b, ok := r.backends[p.Scheme]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownScheme, p.Scheme)
	}
	return b.Exists(ctx, p.Path)
}

// Open opens p for reading.
func (r *Registry) Open(ctx context.Context, p Path) (io.ReadCloser, error) {
	b, ok := r.backends[p.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, p.Scheme)
	}
	return b.Open(ctx, p.Path)
}

// Local is the file backend.
type Local struct{}

// Exists implements Backend.
func (Local) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Open implements Backend.
func (Local) Open(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}
