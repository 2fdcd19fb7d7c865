package content

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// flakyStorage fails the first failures fetches of every object, then serves
// the payload.
type flakyStorage struct {
	payload  []byte
	failures int
	attempts int
}

func (f *flakyStorage) BucketExists(context.Context, string) (bool, error) {
	return true, nil
}

func (f *flakyStorage) GetObject(context.Context, string, string, minio.GetObjectOptions) (io.ReadCloser, error) {
	f.attempts++
	if f.attempts <= f.failures {
		return nil, errors.New("connection reset")
	}
	return io.NopCloser(bytes.NewReader(f.payload)), nil
}

func TestFetchRetriesWithinBudget(t *testing.T) {
	storage := &flakyStorage{payload: []byte(`{"title":"t"}`), failures: 5}
	r := NewResolver(storage, "bucket", Config{Prefix: "content/", RetryBudget: 30}, zap.NewNop())

	payload, err := r.Fetch(context.Background(), "Qmhash")
	assert.NoError(t, err)
	assert.Equal(t, storage.payload, payload)
	assert.Equal(t, 6, storage.attempts)
}

func TestFetchExhaustsRetryBudget(t *testing.T) {
	storage := &flakyStorage{failures: 1 << 30}
	r := NewResolver(storage, "bucket", Config{Prefix: "content/", RetryBudget: 30}, zap.NewNop())

	_, err := r.Fetch(context.Background(), "Qmhash")
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, 30, storage.attempts)
}

func TestFetchStopsOnCancelledContext(t *testing.T) {
	storage := &flakyStorage{failures: 1 << 30}
	r := NewResolver(storage, "bucket", Config{Prefix: "content/", RetryBudget: 30}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Fetch(ctx, "Qmhash")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, storage.attempts)
}
