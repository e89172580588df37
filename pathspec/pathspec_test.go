package pathspec

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Path
	}{
		{"", Path{}},
		{"train.qpl", Path{Scheme: "file", Path: "train.qpl"}},
		{"file://train.qpl", Path{Scheme: "file", Path: "train.qpl"}},
		{"dsv://pairs.tsv", Path{Scheme: "dsv", Path: "pairs.tsv"}},
		{"s3://bucket/key", Path{Scheme: "s3", Path: "bucket/key"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestPathInited(t *testing.T) {
	assert.False(t, Path{}.Inited())
	assert.True(t, Parse("x").Inited())
	assert.Equal(t, "", Path{}.String())
	assert.Equal(t, "file://x", Parse("x").String())
}

func TestRegistry_Local(t *testing.T) {
	ctx := context.Background()
	r := DefaultRegistry()

	path := filepath.Join(t.TempDir(), "weights.tsv")
	require.NoError(t, os.WriteFile(path, []byte("1.0\n"), 0o600))

	ok, err := r.Exists(ctx, Parse(path))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Exists(ctx, Parse(path+".missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	rc, err := r.Open(ctx, Path{Scheme: "dsv", Path: path})
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "1.0\n", string(content))
}

func TestRegistry_UnknownScheme(t *testing.T) {
	ctx := context.Background()
	r := DefaultRegistry()

	_, err := r.Exists(ctx, Parse("s3://bucket/key"))
	assert.ErrorIs(t, err, ErrUnknownScheme)

	_, err = r.Open(ctx, Parse("s3://bucket/key"))
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup("file")
	assert.False(t, ok)

	r.Register("file", Local{})
	_, ok = r.Lookup("file")
	assert.True(t, ok)
}
