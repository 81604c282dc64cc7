// internal/adapters/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"time"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/pkg/config"
)

// StorageClient defines the interface for export file storage
type StorageClient interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	GetPresignedURL(ctx context.Context, key string, duration time.Duration) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

var (
	_ StorageClient = (*S3Storage)(nil)
	_ StorageClient = (*LocalStorage)(nil)
)

// New returns the StorageClient selected by cfg.Provider.
func New(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (StorageClient, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Storage(ctx, &S3Config{
			Region:          cfg.Region,
			Bucket:          cfg.Bucket,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			Endpoint:        cfg.Endpoint,
			UsePathStyle:    cfg.UsePathStyle,
		}, logger)
	case "local", "":
		return NewLocalStorage(cfg.LocalDir, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// ExportKey names an export of kind taken at t.
func ExportKey(kind domain.ResourceKind, t time.Time) string {
	return path.Join("exports", string(kind), fmt.Sprintf("%s_export_%s.xlsx", kind, t.UTC().Format("20060102_150405")))
}

func contentTypeFor(key, contentType string) string {
	if contentType != "" {
		return contentType
	}
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
