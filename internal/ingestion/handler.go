package ingestion

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	v1 "github.com/aevon-lab/logagg/internal/api/v1"
	"github.com/aevon-lab/logagg/internal/core/dedup"
	httperr "github.com/aevon-lab/logagg/internal/core/errors"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed    = "Failed to read request body"
	msgBodyTooLarge      = "Request body exceeds maximum allowed size"
	msgBatchTooLarge     = "Batch exceeds maximum allowed number of events"
	msgStoreUnavailable  = "Event store unavailable; unprocessed events may be resubmitted"
	msgIngestInterrupted = "Request canceled before all events were processed"
)

// PublishResponse reports one result per submitted event, in submission order.
type PublishResponse struct {
	Status     string          `json:"status"`
	Count      int             `json:"count"`
	Accepted   int             `json:"accepted"`
	Duplicates int             `json:"duplicates"`
	Rejected   int             `json:"rejected"`
	Results    []dedup.Outcome `json:"results"`
}

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// PublishHandler handles HTTP POST requests carrying one event, an array of events,
// or an {"events": ...} envelope.
func (s *Service) PublishHandler(c *gin.Context) {
	req, payloadSize, err := s.parseRequest(c)
	if err != nil {
		writeError(c, err)
		return
	}

	slog.Info("Received publish request",
		"events", len(req.Candidates),
		"batch", req.Batch,
		"payload_size", payloadSize)

	outcomes, ingestErr := s.engine.Ingest(c.Request.Context(), req.Candidates)
	resp := newPublishResponse(outcomes)

	if ingestErr != nil {
		writeError(c, s.interruptedError(ingestErr, resp))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// parseRequest reads the bounded request body and decodes it into candidates.
// Returns the request and the raw payload size (used for structured logging upstream).
func (s *Service) parseRequest(c *gin.Context) (*v1.PublishRequest, int, *ingestionError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpPayloadTooLargeError,
			message:    msgBodyTooLarge,
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	req, err := v1.DecodePublishRequest(bodyBytes)
	if err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    err.Error(),
		}
	}

	if len(req.Candidates) > s.maxBatchSize {
		slog.Warn("Batch exceeds maximum size", "events", len(req.Candidates), "max", s.maxBatchSize)
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpPayloadTooLargeError,
			message:    msgBatchTooLarge,
			details: map[string]interface{}{
				"max_batch_size": s.maxBatchSize,
				"events":         len(req.Candidates),
			},
		}
	}

	return req, len(bodyBytes), nil
}

// interruptedError maps an engine failure to 503. The partial results go into
// details so the producer knows which events to resubmit.
func (s *Service) interruptedError(err error, resp PublishResponse) *ingestionError {
	message := msgStoreUnavailable
	if !errors.Is(err, dedup.ErrStoreUnavailable) {
		message = msgIngestInterrupted
	}
	slog.Error("Publish request interrupted",
		"error", err,
		"accepted", resp.Accepted,
		"duplicates", resp.Duplicates,
		"count", resp.Count)

	return &ingestionError{
		statusCode: http.StatusServiceUnavailable,
		errorType:  httperr.HttpStoreUnavailableError,
		message:    message,
		details:    resp,
	}
}

func newPublishResponse(outcomes []dedup.Outcome) PublishResponse {
	summary := dedup.Summarize(outcomes)
	status := "ok"
	if summary.Unprocessed > 0 {
		status = "partial"
	}
	return PublishResponse{
		Status:     status,
		Count:      len(outcomes),
		Accepted:   summary.Accepted,
		Duplicates: summary.Duplicates,
		Rejected:   summary.Rejected,
		Results:    outcomes,
	}
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
