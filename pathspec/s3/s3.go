// Package s3 provides a pathspec backend for objects stored in S3.
//
// Paths use the form "s3://bucket/key". Register the backend explicitly:
//
//	backend, err := s3.NewFromDefaultConfig(ctx)
//	if err != nil { ... }
//	registry.Register("s3", backend)
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrInvalidPath is returned for paths that do not split into bucket/key.
var ErrInvalidPath = errors.New("s3: path must have the form bucket/key")

// Client is the subset of the S3 API the backend needs.
// *s3.Client satisfies it; tests supply mocks.
type Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Backend implements pathspec.Backend for S3.
type Backend struct {
	client Client
}

// New creates an S3 backend.
func New(client Client) *Backend {
	return &Backend{client: client}
}

// NewFromDefaultConfig creates an S3 backend with a client built from the
// ambient AWS configuration (environment, shared config files, IAM role).
func NewFromDefaultConfig(ctx context.Context, optFns ...func(*config.LoadOptions) error) (*Backend, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	return New(s3.NewFromConfig(cfg)), nil
}

func splitPath(path string) (bucket, key string, err error) {
	bucket, key, ok := strings.Cut(path, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return bucket, key, nil
}

// Exists reports whether the object exists.
func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	bucket, key, err := splitPath(path)
	if err != nil {
		return false, err
	}

	_, err = b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Open opens the object for reading.
func (b *Backend) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
