// Package cache keeps uploaded media for a short time so the Graph API can
// fetch it by URL. Entries are evicted once their TTL expires.
package cache

import (
	"context"
	"errors"

	"github.com/deppfellow/sovyx-backend/internal/model"
)

var ErrNotFound = errors.New("upload not found")

// UploadCache stores uploads until upload.ExpiresAt.
type UploadCache interface {
	Put(ctx context.Context, upload *model.Upload) error
	Get(ctx context.Context, id string) (*model.Upload, error)
	Delete(ctx context.Context, id string) error
}
