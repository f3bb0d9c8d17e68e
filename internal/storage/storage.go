// Package storage mirrors published files to a secondary location.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/orion/internal/config"
	"github.com/dmitrijs2005/orion/internal/storage/local"
	"github.com/dmitrijs2005/orion/internal/storage/s3"
)

// Storage stores objects under slash separated keys.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	// Location describes where key ends up, for logs and records.
	Location(key string) string
}

// New builds the mirror selected by cfg.Kind. It returns nil, nil when
// mirroring is disabled.
func New(ctx context.Context, cfg config.MirrorConfig) (Storage, error) {
	switch cfg.Kind {
	case "", "none":
		return nil, nil
	case "local":
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("local mirror needs a directory")
		}
		return local.New(cfg.LocalDir), nil
	case "s3":
		st, err := s3.New(ctx, s3.Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Prefix:       cfg.S3Prefix,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown mirror kind %q", cfg.Kind)
}
