package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestFanoutDeliversToAllSinks verifies every sink sees every valid event.
func TestFanoutDeliversToAllSinks(t *testing.T) {
	t.Parallel()

	first := newStubSink()
	second := newStubSink()
	fanout := NewFanout(nil, first, second)

	fanout.Emit(sampleEvent(StageRunStart))
	fanout.Emit(sampleEvent(StageRunDone))

	require.Len(t, first.Batches(), 2)
	require.Len(t, second.Batches(), 2)
	require.Equal(t, StageRunStart, first.Batches()[0][0].Stage)
	require.Equal(t, StageRunDone, second.Batches()[1][0].Stage)
}

// TestFanoutDropsInvalidEvents ensures malformed events never reach sinks.
func TestFanoutDropsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := newStubSink()
	fanout := NewFanout(nil, sink)

	fanout.Emit(Event{Stage: StageRunStart})

	require.Empty(t, sink.Batches())
}

// TestFanoutToleratesSinkErrors checks a failing sink does not starve the rest.
func TestFanoutToleratesSinkErrors(t *testing.T) {
	t.Parallel()

	failing := &errorSink{consumeErr: errors.New("boom")}
	healthy := newStubSink()
	fanout := NewFanout(nil, failing, healthy)

	fanout.Emit(sampleEvent(StageItemSynced))

	require.Len(t, healthy.Batches(), 1)
}

// TestFanoutNilIsNoOp allows callers to run without observability wired up.
func TestFanoutNilIsNoOp(t *testing.T) {
	t.Parallel()

	var fanout *Fanout
	fanout.Emit(sampleEvent(StageRunStart))
	require.NoError(t, fanout.Close(context.Background()))
}

// TestFanoutCloseReportsFirstError verifies Close tries all sinks and returns
// the first failure.
func TestFanoutCloseReportsFirstError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("close failed")
	failing := &errorSink{closeErr: wantErr}
	healthy := newStubSink()
	fanout := NewFanout(nil, failing, healthy)

	err := fanout.Close(context.Background())
	require.ErrorIs(t, err, wantErr)
	require.True(t, healthy.Closed())
}

type stubSink struct {
	mu      sync.Mutex
	batches [][]Event
	closed  bool
}

func newStubSink() *stubSink {
	return &stubSink{batches: [][]Event{}}
}

func (s *stubSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyBatch := append([]Event(nil), batch...)
	s.batches = append(s.batches, copyBatch)
	return nil
}

func (s *stubSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubSink) Batches() [][]Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]Event, len(s.batches))
	for i, b := range s.batches {
		out[i] = append([]Event(nil), b...)
	}
	return out
}

func (s *stubSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type errorSink struct {
	consumeErr error
	closeErr   error
}

func (s *errorSink) Consume(context.Context, []Event) error {
	return s.consumeErr
}

func (s *errorSink) Close(context.Context) error {
	return s.closeErr
}

func sampleEvent(stage Stage) Event {
	evt := Event{
		RunID: UUIDToBytes(uuid.New()),
		TS:    time.Now(),
		Stage: stage,
	}
	switch stage {
	case StageItemSynced:
		evt.Phase = PhaseWords
		evt.Bucket = "a"
		evt.ItemID = "42"
	case StageItemSkip, StageItemFail:
		evt.Phase = PhaseWords
		evt.Reason = ReasonFetch
	case StagePhaseStart, StagePhaseDone:
		evt.Phase = PhaseWords
	case StageNoteAdded:
		evt.Deck = "nonfiction::asl::words"
	}
	return evt
}
