package handler

import (
	"github.com/deppfellow/sovyx-backend/internal/server"
	"github.com/deppfellow/sovyx-backend/internal/service"
)

type Handlers struct {
	Health       *HealthHandler
	OpenAPI      *OpenAPIHandler
	Instagram    *InstagramHandler
	Segmentation *SegmentationHandler
	Content      *ContentHandler
	Network      *NetworkHandler
	Upload       *UploadHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(s),
		OpenAPI:      NewOpenAPIHandler(s),
		Instagram:    NewInstagramHandler(s, services),
		Segmentation: NewSegmentationHandler(s, services.Segmentation),
		Content:      NewContentHandler(s, services.Content),
		Network:      NewNetworkHandler(s, services),
		Upload:       NewUploadHandler(s, services.Uploads),
	}
}
