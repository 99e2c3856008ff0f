package model

import (
	"time"

	"github.com/deppfellow/sovyx-backend/internal/validation"
)

// Upload is a media file held in the short-lived cache so the Graph API can
// fetch it by URL.
type Upload struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Data        []byte    `json:"data"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// UploadResponse describes a stored upload without its bytes.
type UploadResponse struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Filename    string    `json:"filename,omitempty"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UploadsResponse struct {
	Uploads []UploadResponse `json:"uploads"`
}

// ------------------------------------------------------------

// CreateUploadsRequest carries no fields; files are read from the multipart form.
type CreateUploadsRequest struct{}

func (r *CreateUploadsRequest) Validate() error {
	return nil
}

type UploadIDRequest struct {
	ID string `param:"id" validate:"required"`
}

func (r *UploadIDRequest) Validate() error {
	return validation.Struct(r)
}
