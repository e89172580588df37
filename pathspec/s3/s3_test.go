package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.HeadObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.GetObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestBackend_Exists(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		client := new(mockClient)
		client.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return *input.Bucket == "bucket" && *input.Key == "pools/train.qpl"
		})).Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(64)}, nil).Once()

		ok, err := New(client).Exists(ctx, "bucket/pools/train.qpl")
		require.NoError(t, err)
		assert.True(t, ok)
		client.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		client := new(mockClient)
		client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NotFound{}).Once()

		ok, err := New(client).Exists(ctx, "bucket/missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid path", func(t *testing.T) {
		client := new(mockClient)
		_, err := New(client).Exists(ctx, "no-key")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestBackend_Open(t *testing.T) {
	ctx := context.Background()
	client := new(mockClient)
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
		return *input.Bucket == "bucket" && *input.Key == "aux/pairs.tsv"
	})).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader("0\t1\n")),
	}, nil).Once()

	rc, err := New(client).Open(ctx, "bucket/aux/pairs.tsv")
	require.NoError(t, err)
	defer rc.Close()

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "0\t1\n", string(content))
}
