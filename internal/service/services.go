package service

import (
	"time"

	"github.com/deppfellow/sovyx-backend/internal/lib/cache"
	"github.com/deppfellow/sovyx-backend/internal/lib/instagram"
	"github.com/deppfellow/sovyx-backend/internal/lib/job"
	"github.com/deppfellow/sovyx-backend/internal/repository"
	"github.com/deppfellow/sovyx-backend/internal/server"
)

type Services struct {
	Auth          *AuthService
	Credentials   *CredentialService
	Instagram     *InstagramService
	Uploads       *UploadService
	Segmentation  *SegmentationService
	Content       *ContentService
	Network       *NetworkService
	Orchestration *OrchestrationService
	Job           *job.JobService
}

// NewService wires every service against the server's backing stores.
// Uploads go to Redis when it is configured so that workers on other hosts
// can read them; otherwise they stay in process memory.
func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)

	graph := instagram.NewClient(s.Config.Instagram, s.Logger)

	var uploadCache cache.UploadCache
	if s.Redis != nil {
		uploadCache = cache.NewRedisUploadCache(s.Redis)
	} else {
		uploadCache = cache.NewMemoryUploadCache()
	}

	credentials := NewCredentialService(s.Config, repos.Credentials, graph, s.Logger)
	uploads := NewUploadService(s.Config, uploadCache, s.Logger)
	network := NewNetworkService(time.Now)

	return &Services{
		Auth:          authService,
		Credentials:   credentials,
		Instagram:     NewInstagramService(credentials, graph, uploads, s.Job, s.Logger),
		Uploads:       uploads,
		Segmentation:  NewSegmentationService(credentials, time.Now),
		Content:       NewContentService(time.Now),
		Network:       network,
		Orchestration: NewOrchestrationService(credentials, network, time.Now),
		Job:           s.Job,
	}, nil
}
