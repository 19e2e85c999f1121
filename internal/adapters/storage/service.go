// Package storage provides S3-compatible object storage for business assets.
package storage

import (
	"context"
	"io"
	"time"

	"leadnest/platform/config"
)

// PresignedURL contains a time-limited download URL for a stored object.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStore is the subset of object storage the businesses module needs.
type ObjectStore interface {
	// Upload stores reader under folder and returns the generated key.
	Upload(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)

	// DownloadURL presigns a GET for fileKey.
	DownloadURL(ctx context.Context, fileKey string) (*PresignedURL, error)

	Delete(ctx context.Context, fileKey string) error

	// Validate checks the content type and size of an upload before it is read.
	Validate(contentType string, sizeBytes int64) error
}

// Config defines the configuration interface for storage.
type Config = config.StorageConfig
