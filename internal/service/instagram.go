package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/errs"
	"github.com/deppfellow/sovyx-backend/internal/lib/instagram"
	"github.com/deppfellow/sovyx-backend/internal/lib/job"
	"github.com/deppfellow/sovyx-backend/internal/lib/metrics"
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/rs/zerolog"
)

type InstagramService struct {
	credentials *CredentialService
	graph       *instagram.Client
	uploads     *UploadService
	job         *job.JobService
	logger      *zerolog.Logger
	now         func() time.Time
}

func NewInstagramService(credentials *CredentialService, graph *instagram.Client, uploads *UploadService, jobs *job.JobService, logger *zerolog.Logger) *InstagramService {
	return &InstagramService{
		credentials: credentials,
		graph:       graph,
		uploads:     uploads,
		job:         jobs,
		logger:      logger,
		now:         time.Now,
	}
}

// Publish posts a single image that is already reachable at image_url.
func (s *InstagramService) Publish(ctx context.Context, req *model.PublishRequest) (*model.PublishResult, error) {
	cred, err := s.credentials.ResolveComplete(ctx, req.Client)
	if err != nil {
		return nil, err
	}
	if req.ImageURL == "" {
		return nil, errs.NewBadRequestError("image_url is required", true, nil,
			[]errs.FieldError{{Field: "image_url", Error: "is required"}}, nil)
	}

	creation, err := s.graph.CreateMedia(ctx, cred.UserID, cred.AccessToken, map[string]any{
		"image_url": req.ImageURL,
		"caption":   req.Caption,
	})
	if err != nil {
		return nil, s.publishFailed(cred.Tenant, model.MediaTypeImage, err)
	}

	creationID := instagram.ID(creation)
	if creationID == "" {
		metrics.Publications.WithLabelValues(cred.Tenant, model.MediaTypeImage, "rejected").Inc()
		return nil, errs.NewBadRequestError("could not create media container", true, nil, nil, nil).WithRaw(creation)
	}

	publish, err := s.graph.PublishMedia(ctx, cred.UserID, cred.AccessToken, creationID)
	if err != nil {
		return nil, s.publishFailed(cred.Tenant, model.MediaTypeImage, err)
	}

	metrics.Publications.WithLabelValues(cred.Tenant, model.MediaTypeImage, "published").Inc()

	return &model.PublishResult{
		Status:     "published",
		CreationID: creationID,
		Publish:    publish,
	}, nil
}

// AsyncEnabled reports whether publishing can be handed to a worker.
func (s *InstagramService) AsyncEnabled() bool {
	return s.job != nil
}

// EnqueuePublishMedia validates the tenant and queues the publication.
func (s *InstagramService) EnqueuePublishMedia(ctx context.Context, req *model.PublishMediaRequest) (*model.QueuedPublication, error) {
	if s.job == nil {
		return nil, errs.NewBadRequestError("background publishing is not available", true, nil, nil, nil)
	}

	cred, err := s.credentials.ResolveComplete(ctx, req.Client)
	if err != nil {
		return nil, err
	}
	req.Client = cred.Tenant

	task, err := job.NewPublishMediaTask(req)
	if err != nil {
		return nil, err
	}

	info, err := s.job.Enqueue(ctx, task)
	if err != nil {
		return nil, err
	}

	metrics.Publications.WithLabelValues(cred.Tenant, "pending", "queued").Inc()

	return &model.QueuedPublication{
		Status: "queued",
		TaskID: info.ID,
		Queue:  info.Queue,
	}, nil
}

// PublishMedia publishes previously uploaded files as an image, a video or
// a carousel, depending on how many files there are and their type.
func (s *InstagramService) PublishMedia(ctx context.Context, req *model.PublishMediaRequest) (*model.MediaPublication, error) {
	cred, err := s.credentials.ResolveComplete(ctx, req.Client)
	if err != nil {
		return nil, err
	}

	uploads := make([]*model.Upload, 0, len(req.Files))
	for _, id := range req.Files {
		upload, err := s.uploads.Get(ctx, id)
		if err != nil {
			var httpErr *errs.HTTPError
			if errors.As(err, &httpErr) {
				return nil, errs.NewBadRequestError(fmt.Sprintf("upload %s not found or expired", id), true, nil,
					[]errs.FieldError{{Field: "files", Error: "unknown upload " + id}}, nil)
			}
			return nil, err
		}
		uploads = append(uploads, upload)
	}

	mediaType := DetermineMediaType(uploads, req.MediaType)
	caption := OptimizeCaption(req.Caption, req.Constraints)

	logger := s.logger.With().
		Str("tenant", cred.Tenant).
		Str("media_type", mediaType).
		Int("files", len(uploads)).
		Logger()
	logger.Info().Int("caption_length", len([]rune(caption))).Msg("publishing media")

	var published model.GraphPayload
	switch mediaType {
	case model.MediaTypeCarousel:
		published, err = s.publishCarousel(ctx, cred, uploads, caption)
	case model.MediaTypeVideo:
		published, err = s.publishSingle(ctx, cred, uploads[0], true, caption)
	default:
		published, err = s.publishSingle(ctx, cred, uploads[0], false, caption)
	}
	if err != nil {
		return nil, s.publishFailed(cred.Tenant, mediaType, err)
	}

	postID := instagram.ID(published)
	metrics.Publications.WithLabelValues(cred.Tenant, mediaType, "published").Inc()
	logger.Info().Str("post_id", postID).Msg("media published")

	permalink, err := s.graph.Permalink(ctx, postID, cred.AccessToken)
	if err != nil {
		logger.Warn().Err(err).Str("post_id", postID).Msg("failed to fetch permalink")
	}

	return &model.MediaPublication{
		Success:     true,
		PostID:      postID,
		Permalink:   permalink,
		MediaType:   mediaType,
		Caption:     caption,
		Client:      cred.Tenant,
		Timestamp:   s.now().UTC(),
		RawResponse: published,
	}, nil
}

func (s *InstagramService) publishSingle(ctx context.Context, cred model.Credential, upload *model.Upload, video bool, caption string) (model.GraphPayload, error) {
	params := map[string]any{"caption": caption}
	if video {
		params["media_type"] = model.MediaTypeVideo
		params["video_url"] = s.uploads.URL(upload.ID)
	} else {
		params["image_url"] = s.uploads.URL(upload.ID)
	}

	containerID, err := s.createContainer(ctx, cred, params)
	if err != nil {
		return nil, err
	}

	if video {
		if err := s.graph.WaitForProcessing(ctx, containerID, cred.AccessToken); err != nil {
			return nil, err
		}
	}

	return s.publishContainer(ctx, cred, containerID)
}

func (s *InstagramService) publishCarousel(ctx context.Context, cred model.Credential, uploads []*model.Upload, caption string) (model.GraphPayload, error) {
	children := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		params := map[string]any{"is_carousel_item": true}
		video := mediaKind(upload.ContentType) == "video"
		if video {
			params["media_type"] = model.MediaTypeVideo
			params["video_url"] = s.uploads.URL(upload.ID)
		} else {
			params["image_url"] = s.uploads.URL(upload.ID)
		}

		childID, err := s.createContainer(ctx, cred, params)
		if err != nil {
			return nil, fmt.Errorf("carousel item %s: %w", upload.ID, err)
		}
		if video {
			if err := s.graph.WaitForProcessing(ctx, childID, cred.AccessToken); err != nil {
				return nil, fmt.Errorf("carousel item %s: %w", upload.ID, err)
			}
		}
		children = append(children, childID)
	}

	containerID, err := s.createContainer(ctx, cred, map[string]any{
		"media_type": model.MediaTypeCarousel,
		"children":   strings.Join(children, ","),
		"caption":    caption,
	})
	if err != nil {
		return nil, err
	}

	return s.publishContainer(ctx, cred, containerID)
}

// graphRejection is a Graph response that lacked the expected id.
type graphRejection struct {
	step    string
	payload model.GraphPayload
}

func (e *graphRejection) Error() string {
	if msg := instagram.ErrorMessage(e.payload); msg != "" {
		return fmt.Sprintf("%s: %s", e.step, msg)
	}
	return e.step + ": response carried no id"
}

func (s *InstagramService) createContainer(ctx context.Context, cred model.Credential, params map[string]any) (string, error) {
	payload, err := s.graph.CreateMedia(ctx, cred.UserID, cred.AccessToken, params)
	if err != nil {
		return "", err
	}
	id := instagram.ID(payload)
	if id == "" {
		return "", &graphRejection{step: "could not create media container", payload: payload}
	}
	return id, nil
}

func (s *InstagramService) publishContainer(ctx context.Context, cred model.Credential, containerID string) (model.GraphPayload, error) {
	payload, err := s.graph.PublishMedia(ctx, cred.UserID, cred.AccessToken, containerID)
	if err != nil {
		return nil, err
	}
	if instagram.ID(payload) == "" {
		return nil, &graphRejection{step: "could not publish media container", payload: payload}
	}
	return payload, nil
}

func (s *InstagramService) publishFailed(tenant, mediaType string, err error) error {
	metrics.Publications.WithLabelValues(tenant, mediaType, "error").Inc()
	s.logger.Error().Err(err).Str("tenant", tenant).Str("media_type", mediaType).Msg("instagram publish failed")

	var rejection *graphRejection
	switch {
	case errors.As(err, &rejection):
		return errs.NewUpstreamError("failed to publish to Instagram: " + err.Error()).WithRaw(rejection.payload)
	case errors.Is(err, instagram.ErrProcessingFailed), errors.Is(err, instagram.ErrProcessingTimeout):
		return errs.NewUpstreamError("failed to publish to Instagram: " + err.Error())
	default:
		return errs.NewUpstreamError("failed to publish to Instagram")
	}
}

// Insights fetches media metrics. An empty metric list means the defaults.
func (s *InstagramService) Insights(ctx context.Context, req *model.InsightsRequest) (*model.Insights, error) {
	cred, err := s.credentials.Resolve(ctx, req.Client)
	if err != nil {
		return nil, err
	}
	if cred.AccessToken == "" {
		return nil, incompleteCredentialError(cred.Tenant)
	}

	payload, err := s.graph.Insights(ctx, req.MediaID, cred.AccessToken, req.Metric)
	if err != nil {
		s.logger.Error().Err(err).Str("tenant", cred.Tenant).Str("media_id", req.MediaID).Msg("insights request failed")
		return nil, errs.NewUpstreamError("failed to fetch insights")
	}

	return &model.Insights{MediaID: req.MediaID, Metrics: payload}, nil
}

// DetermineMediaType picks CAROUSEL for several files, otherwise the type of
// the single file, falling back to requested and then IMAGE.
func DetermineMediaType(uploads []*model.Upload, requested string) string {
	if len(uploads) > 1 {
		return model.MediaTypeCarousel
	}
	if len(uploads) == 1 {
		switch mediaKind(uploads[0].ContentType) {
		case "video":
			return model.MediaTypeVideo
		case "image":
			return model.MediaTypeImage
		}
	}
	if requested != "" {
		return requested
	}
	return model.MediaTypeImage
}
