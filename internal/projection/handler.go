package projection

import (
	"errors"
	"log/slog"
	"net/http"

	httperr "github.com/aevon-lab/logagg/internal/core/errors"
	"github.com/aevon-lab/logagg/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/events", s.HandleListEvents)
	r.GET("/stats", s.HandleStats)
	r.GET("/info", s.HandleInfo)
}

// HandleListEvents handles GET /events
// Query parameters: topic, limit, order
func (s *Service) HandleListEvents(c *gin.Context) {
	var query ListEventsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	events, err := s.ListEvents(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidQueryError,
				Message:   "Invalid events query",
				Details:   err.Error(),
			})
			return
		}
		writeStoreError(c, "Failed to list events", err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// HandleStats handles GET /stats
func (s *Service) HandleStats(c *gin.Context) {
	stats, err := s.GetStats(c.Request.Context())
	if err != nil {
		writeStoreError(c, "Failed to read statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// HandleInfo handles GET /info
func (s *Service) HandleInfo(c *gin.Context) {
	info, err := s.GetInfo(c.Request.Context())
	if err != nil {
		writeStoreError(c, "Failed to read service info", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// writeStoreError maps a read failure to 503 when the store is unreachable and 500 otherwise.
func writeStoreError(c *gin.Context, message string, err error) {
	slog.Error(message, "error", err)

	if storage.IsUnavailable(err) {
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpStoreUnavailableError,
			Message:   message,
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   message,
		Details:   err.Error(),
	})
}
