package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// statusForError maps the error taxonomy to an HTTP status. NotFound is checked before
// Dependency so that a missing group reads as 404 rather than a provider failure, and
// Dependency before Validation so that bad stored data is never blamed on the request.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDependency):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrInvalidTransition), errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as JSON. Server side failures hide their details behind msg.
func respondError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()), slog.Int("status", status))
		c.JSON(status, gin.H{"error": msg})
		return
	}
	logger.Warn(msg, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}

// recordBatchStatus is 200 when every entry succeeded, 207 on partial success and
// 422 when every entry was rejected as invalid. A batch that failed entirely for any
// other reason takes the status of its first non-validation failure.
func recordBatchStatus(results []domain.RecordResult) int {
	succeeded := 0
	var other error
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
			continue
		}
		if other == nil && !errors.Is(r.Err, apperrors.ErrValidation) {
			other = r.Err
		}
	}
	switch {
	case succeeded == len(results):
		return http.StatusOK
	case succeeded > 0:
		return http.StatusMultiStatus
	case other != nil:
		return statusForError(other)
	default:
		return http.StatusUnprocessableEntity
	}
}

// guarded returns a fresh chain of guards followed by handler.
func guarded(guards []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(guards)+1)
	return append(append(chain, guards...), handler)
}
