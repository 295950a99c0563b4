// Package blobstore stores user-uploaded media in external object storage
// and hands back durable references. The service layer owns compensation:
// when account creation fails after an upload, it calls Delete with the
// reference's key.
package blobstore

import (
	"context"
	"io"

	"github.com/anveshm/vidtube/internal/server/models"
)

// Store is the media storage boundary consumed by the registration workflow.
type Store interface {
	// Upload streams content into storage and returns its reference.
	// Failures wrap common.ErrorUpload.
	Upload(ctx context.Context, content io.Reader, filename string) (*models.BlobRef, error)

	// Delete removes the object with the given key. Callers treat failures
	// as best-effort: they are logged, never propagated over an original
	// error.
	Delete(ctx context.Context, key string) error
}
