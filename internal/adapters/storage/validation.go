package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidUpload marks uploads rejected before they reach storage.
var ErrInvalidUpload = errors.New("invalid upload")

// AllowedContentTypes are the image types accepted for business logos.
var AllowedContentTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// ValidateContentType checks if the content type is allowed.
func ValidateContentType(contentType string) error {
	// Normalize content type (remove parameters like charset)
	normalized := strings.Split(contentType, ";")[0]
	normalized = strings.TrimSpace(strings.ToLower(normalized))

	if !AllowedContentTypes[normalized] {
		return fmt.Errorf("%w: content type %q is not allowed", ErrInvalidUpload, contentType)
	}
	return nil
}

// ValidateFileSize checks if the file size is within limits.
func ValidateFileSize(sizeBytes, maxFileSize int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("%w: file size must be greater than 0", ErrInvalidUpload)
	}
	if maxFileSize > 0 && sizeBytes > maxFileSize {
		return fmt.Errorf("%w: file size %d bytes exceeds maximum allowed size of %d bytes", ErrInvalidUpload, sizeBytes, maxFileSize)
	}
	return nil
}
