package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/middleware"
	"github.com/SscSPs/acquire_ledger/internal/utils"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Verifier portssvc.AuthorisationVerifier
	Now      func() time.Time
	Sleep    func(context.Context, time.Duration) error
}

func newBaseService() BaseService {
	return BaseService{Now: time.Now, Sleep: utils.SleepWithContext}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Authorise checks that auth grants access to resource.
func (s *BaseService) Authorise(ctx context.Context, auth domain.Authorisation, resource string) error {
	if s.Verifier != nil {
		if err := s.Verifier.Verify(ctx, auth, resource); err != nil {
			s.LogError(ctx, err, "Authorisation rejected", slog.String("resource", resource))
			return err
		}
		return nil
	}
	s.LogDebug(ctx, "No authorisation verifier configured, access granted by default",
		slog.String("resource", resource))
	return nil
}

// now returns the current time in UTC.
func (s *BaseService) now() time.Time {
	return s.Now().UTC()
}

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
