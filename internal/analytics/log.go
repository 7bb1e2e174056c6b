package analytics

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes every event to a zap logger at Info level.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("analytics")}
}

func (s *LogSink) Track(_ context.Context, e Event) error {
	fields := []zap.Field{
		zap.String("category", e.Category),
		zap.String("action", e.Action),
		zap.String("label", e.Label),
	}
	if e.Value != nil {
		fields = append(fields, zap.Int("value", *e.Value))
	}
	s.logger.Info("track", fields...)
	return nil
}
