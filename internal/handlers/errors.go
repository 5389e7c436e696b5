package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// statusForError maps service errors to HTTP status codes. The unbalanced
// check comes first because it wraps its cause.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnbalancedLedger):
		return http.StatusInternalServerError
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrRange),
		errors.Is(err, apperrors.ErrTransaction), errors.Is(err, apperrors.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrAccount), errors.Is(err, apperrors.ErrLedger),
		errors.Is(err, apperrors.ErrUnmatchedReceipt), errors.Is(err, apperrors.ErrUnmatchedRefund),
		errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrMutexTimeout):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondWithError writes the mapped status. Server-side failures are
// logged at error level and their detail is not returned.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error(msg, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": msg})
		return
	}
	logger.Warn(msg, slog.String("error", err.Error()), slog.Int("status", status))
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
