package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httperr "github.com/aevon-lab/logagg/internal/core/errors"
	"github.com/aevon-lab/logagg/internal/core/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	Engine  *gin.Engine
	Addr    string
	backend string
	health  HealthChecker
}

// HealthChecker is an interface for components that can report their health status.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Resetter clears all stored state. Implemented by the event store.
type Resetter interface {
	Reset(ctx context.Context) error
}

// New builds the HTTP server with /health and /metrics. backend names the store in
// health responses; gatherer serves /metrics (nil means the default registry).
func New(addr, mode, backend string, health HealthChecker, gatherer prometheus.Gatherer) *Server {
	// Set Gin mode based on configuration
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), requestID(), observe())

	s := &Server{
		Engine:  r,
		Addr:    addr,
		backend: backend,
		health:  health,
	}

	// Health check endpoint with store connectivity verification
	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return s
}

// RegisterAdmin exposes POST /admin/clear. Only call it when admin endpoints are enabled.
func (s *Server) RegisterAdmin(store Resetter) {
	s.Engine.POST("/admin/clear", func(c *gin.Context) {
		if err := store.Reset(c.Request.Context()); err != nil {
			slog.Error("Admin clear failed", "error", err)
			if storage.IsUnavailable(err) {
				c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
					ErrorType: httperr.HttpStoreUnavailableError,
					Message:   "Failed to clear data",
					Details:   err.Error(),
				})
				return
			}
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   "Failed to clear data",
				Details:   err.Error(),
			})
			return
		}
		slog.Warn("All events and counters cleared", "request_id", c.GetString(requestIDKey))
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "All data cleared",
		})
	})
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	// Check store connectivity
	if s.health != nil {
		if err := s.health.Ping(ctx); err != nil {
			slog.Error("Health check failed: store unreachable", "backend", s.backend, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"backend":   s.backend,
				"error":     "store unreachable",
				"timestamp": time.Now().UTC(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"backend":   s.backend,
		"database":  "connected",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Addr,
		Handler: s.Engine,
	}

	slog.Info("Starting HTTP Server...", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("Stopping HTTP Server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP Server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
