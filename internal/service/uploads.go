package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/config"
	"github.com/deppfellow/sovyx-backend/internal/errs"
	"github.com/deppfellow/sovyx-backend/internal/lib/cache"
	"github.com/deppfellow/sovyx-backend/internal/lib/metrics"
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UploadService keeps uploaded media reachable at a public URL long enough
// for the Graph API to fetch it.
type UploadService struct {
	cache    cache.UploadCache
	ttl      time.Duration
	maxBytes int64
	baseURL  string
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewUploadService(cfg *config.Config, c cache.UploadCache, logger *zerolog.Logger) *UploadService {
	return &UploadService{
		cache:    c,
		ttl:      cfg.Uploads.TTL,
		maxBytes: cfg.Uploads.MaxBytes,
		baseURL:  cfg.Server.PublicBaseURL,
		logger:   logger,
		now:      time.Now,
	}
}

// URL is where the Graph API fetches the upload from.
func (s *UploadService) URL(id string) string {
	return s.baseURL + "/media/" + id
}

// StartJanitor sweeps expired entries of the in-memory cache until ctx ends.
// Redis expires keys on its own.
func (s *UploadService) StartJanitor(ctx context.Context) {
	if mem, ok := s.cache.(*cache.MemoryUploadCache); ok {
		mem.StartJanitor(ctx)
	}
}

// Store saves every file of a multipart upload.
func (s *UploadService) Store(ctx context.Context, files []*multipart.FileHeader) (*model.UploadsResponse, error) {
	if len(files) == 0 {
		return nil, errs.NewBadRequestError("no files uploaded", true, nil,
			[]errs.FieldError{{Field: "files", Error: "is required"}}, nil)
	}

	out := &model.UploadsResponse{Uploads: make([]model.UploadResponse, 0, len(files))}
	for _, fh := range files {
		upload, err := s.read(fh)
		if err != nil {
			return nil, err
		}

		if err := s.cache.Put(ctx, upload); err != nil {
			return nil, fmt.Errorf("store upload %s: %w", upload.ID, err)
		}

		metrics.UploadsStored.WithLabelValues(mediaKind(upload.ContentType)).Inc()
		metrics.UploadBytes.Observe(float64(upload.Size))

		s.logger.Info().
			Str("upload_id", upload.ID).
			Str("content_type", upload.ContentType).
			Int64("size", upload.Size).
			Time("expires_at", upload.ExpiresAt).
			Msg("upload stored")

		out.Uploads = append(out.Uploads, s.describe(upload))
	}

	return out, nil
}

func (s *UploadService) read(fh *multipart.FileHeader) (*model.Upload, error) {
	if fh.Size > s.maxBytes {
		return nil, tooLargeError(fh.Filename, s.maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, tooLargeError(fh.Filename, s.maxBytes)
	}

	// The declared part type is ignored; only sniffed formats Instagram
	// can ingest are stored.
	contentType := mimetype.Detect(data).String()
	if !mimetype.EqualsAny(contentType, allowedMediaTypes...) {
		return nil, errs.NewBadRequestError(
			fmt.Sprintf("unsupported file type %s for %s", contentType, fh.Filename), true, nil,
			[]errs.FieldError{{Field: "files", Error: "must be a JPEG or PNG image or an MP4 or QuickTime video"}}, nil)
	}

	return &model.Upload{
		ID:          uuid.NewString(),
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
		ExpiresAt:   s.now().Add(s.ttl),
	}, nil
}

var allowedMediaTypes = []string{"image/jpeg", "image/png", "video/mp4", "video/quicktime"}

func tooLargeError(filename string, limit int64) *errs.HTTPError {
	return errs.NewBadRequestError(
		fmt.Sprintf("file %s exceeds the %d byte limit", filename, limit), true, nil,
		[]errs.FieldError{{Field: "files", Error: "too large"}}, nil)
}

func (s *UploadService) describe(u *model.Upload) model.UploadResponse {
	return model.UploadResponse{
		ID:          u.ID,
		URL:         s.URL(u.ID),
		Filename:    u.Filename,
		ContentType: u.ContentType,
		Size:        u.Size,
		ExpiresAt:   u.ExpiresAt,
	}
}

// Get returns a live upload or 404.
func (s *UploadService) Get(ctx context.Context, id string) (*model.Upload, error) {
	upload, err := s.cache.Get(ctx, id)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, errs.NewNotFoundError("upload not found or expired", true, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("load upload %s: %w", id, err)
	}
	return upload, nil
}

func (s *UploadService) Delete(ctx context.Context, id string) error {
	err := s.cache.Delete(ctx, id)
	if errors.Is(err, cache.ErrNotFound) {
		return errs.NewNotFoundError("upload not found or expired", true, nil)
	}
	return err
}

// mediaKind is "image", "video" or empty for anything else.
func mediaKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return ""
	}
}
