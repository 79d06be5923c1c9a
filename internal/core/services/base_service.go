package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/access_exchange/internal/events"
	"github.com/SscSPs/access_exchange/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Publisher events.Publisher
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Publish emits an event after a commit. Delivery failures are logged and never surface to the caller,
// since the ledger state is already durable.
func (s *BaseService) Publish(ctx context.Context, topic, key string, event any) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, topic, key, event); err != nil {
		s.LogError(ctx, err, "Failed to publish event", slog.String("topic", topic), slog.String("key", key))
	}
}
