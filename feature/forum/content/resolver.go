package content

import (
	"context"
	"errors"
	"fmt"
	"io"

	"forum-indexer/core/metrics"
	"forum-indexer/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrUnreachable is returned when a content hash could not be fetched within
// the retry budget. Callers leave dependent fields at their previous values.
var ErrUnreachable = errors.New("content unreachable")

// Resolver fetches content payloads by hash from object storage.
type Resolver struct {
	client storage.Client
	bucket string
	cfg    Config
	logger *zap.Logger
}

// NewResolver creates a resolver over the given storage client.
func NewResolver(client storage.Client, bucket string, cfg Config, logger *zap.Logger) *Resolver {
	if cfg.RetryBudget <= 0 {
		cfg.RetryBudget = 30
	}
	return &Resolver{client: client, bucket: bucket, cfg: cfg, logger: logger}
}

// Fetch resolves a content hash to its raw payload, retrying up to the
// configured budget. Exhausting the budget yields ErrUnreachable; a cancelled
// context short-circuits the loop.
func (r *Resolver) Fetch(ctx context.Context, hash string) ([]byte, error) {
	objectName := r.cfg.Prefix + hash

	var lastErr error
	for attempt := 0; attempt < r.cfg.RetryBudget; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		payload, err := r.fetchOnce(ctx, objectName)
		if err == nil {
			return payload, nil
		}
		lastErr = err
	}

	metrics.ContentResolveFailures.Inc()
	r.logger.Warn("content resolution exhausted retry budget",
		zap.String("hash", hash),
		zap.Int("attempts", r.cfg.RetryBudget),
		zap.Error(lastErr),
	)
	return nil, fmt.Errorf("%w: %s", ErrUnreachable, hash)
}

func (r *Resolver) fetchOnce(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := r.client.GetObject(ctx, r.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	payload, err := io.ReadAll(obj)
	if err != nil {
		return nil, err
	}
	return payload, nil
}
