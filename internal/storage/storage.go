// Package storage writes rendered documents to their artifact location.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/quoteflow/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(New),
)

// Store persists artifacts under slash-separated keys such as
// "2026-03-14/Q260314-1A2B3C-MainCoPvtLtd.pdf".
type Store interface {
	// Put writes content and returns the artifact location.
	Put(ctx context.Context, key string, content []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

var (
	ErrInvalidKey = errors.New("invalid_artifact_key")
	ErrNotFound   = errors.New("artifact_not_found")
)

// New builds the configured backend.
func New(cfg config.Config, log *zap.Logger) (Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageLocal, "":
		return NewLocalStore(cfg.Storage.Root), nil
	case config.StorageS3:
		store, err := NewS3Store(context.Background(), cfg.Storage)
		if err != nil {
			return nil, err
		}
		log.Named("storage").Info("using s3 artifact storage",
			zap.String("bucket", cfg.Storage.S3Bucket),
			zap.String("prefix", cfg.Storage.S3Prefix),
		)
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}
