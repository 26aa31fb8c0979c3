package ingestion

import (
	"github.com/aevon-lab/logagg/internal/core/dedup"
	"github.com/gin-gonic/gin"
)

type Service struct {
	engine           *dedup.Engine
	maxBodySizeBytes int
	maxBatchSize     int
}

func NewService(engine *dedup.Engine, maxBodySizeMB, maxBatchSize int) *Service {
	if engine == nil {
		panic("ingestion: engine must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	if maxBatchSize <= 0 {
		maxBatchSize = 1000
	}
	return &Service{
		engine:           engine,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
		maxBatchSize:     maxBatchSize,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/publish", s.PublishHandler)

	// Aliases kept for producers that post to the resource path.
	r.POST("/events", s.PublishHandler)
	r.POST("/v1/events", s.PublishHandler)
}
