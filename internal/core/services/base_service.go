package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/SscSPs/splitsettle/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
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

// nopMetrics is used when no metrics recorder is configured.
type nopMetrics struct{}

func (nopMetrics) ObserveBalanceComputation(string, time.Duration) {}
func (nopMetrics) ObservePlan(int, bool)                            {}
func (nopMetrics) ObserveSettlementRecorded(string)                 {}
func (nopMetrics) ObserveCacheLookup(bool)                          {}

// nopPublisher is used when no event broker is configured.
type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.LedgerEvent) error { return nil }
