package sinks

import (
	"context"

	"go.uber.org/zap"

	"ankisign/internal/progress"
)

// LogSink emits structured logs for the progress stream. Since the journal
// core tees the root logger, everything consumed here also lands in the run
// journal.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.logger.Info("progress event", progress.FieldsForEvent(evt)...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
