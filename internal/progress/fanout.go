package progress

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultSinkTimeout = 10 * time.Second

// Fanout delivers each event to every registered sink, in order, on the
// caller's goroutine. The pipeline emits one event at a time with long pauses
// between reads, so there is nothing to batch and no backpressure to absorb.
// A failing sink is logged and skipped for that event; it never stops the
// run.
type Fanout struct {
	sinks       []Sink
	sinkTimeout time.Duration
	logger      *zap.Logger
}

// NewFanout builds a Fanout over the supplied sinks.
func NewFanout(logger *zap.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{
		sinks:       append([]Sink(nil), sinks...),
		sinkTimeout: defaultSinkTimeout,
		logger:      logger,
	}
}

// Emit validates and delivers one event. A nil Fanout is a no-op so callers
// can run without observability wired up.
func (f *Fanout) Emit(evt Event) {
	if f == nil {
		return
	}
	if err := evt.Validate(); err != nil {
		f.logger.Debug("discarding invalid progress event", zap.Error(err))
		return
	}
	batch := []Event{evt}
	for _, sink := range f.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), f.sinkTimeout)
		if err := sink.Consume(ctx, batch); err != nil {
			f.logger.Warn("progress sink rejected event",
				zap.String("stage", string(evt.Stage)),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Close closes every sink, reporting the first failure after trying all.
func (f *Fanout) Close(ctx context.Context) error {
	if f == nil {
		return nil
	}
	var firstErr error
	for _, sink := range f.sinks {
		if err := sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FieldsForEvent renders an event as zap fields.
func FieldsForEvent(evt Event) []zapcore.Field {
	return []zapcore.Field{
		zap.String("run_id", evt.RunUUID().String()),
		zap.String("stage", string(evt.Stage)),
		zap.String("phase", string(evt.Phase)),
		zap.String("bucket", evt.Bucket),
		zap.String("item_id", evt.ItemID),
		zap.String("deck", evt.Deck),
		zap.String("reason", string(evt.Reason)),
		zap.Duration("dur", evt.Dur),
		zap.String("note", evt.Note),
	}
}
