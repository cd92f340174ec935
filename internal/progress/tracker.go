package progress

import (
	"context"
	"sync"
	"time"
)

// PhaseCounts aggregates item outcomes within one phase.
type PhaseCounts struct {
	Synced  int64 `json:"synced"`
	Skipped int64 `json:"skipped"`
	Failed  int64 `json:"failed"`
}

// Snapshot is a point-in-time view of the current (or last) run, shaped for
// the status endpoint.
type Snapshot struct {
	RunID      string                 `json:"run_id"`
	Running    bool                   `json:"running"`
	Phase      string                 `json:"phase"`
	Bucket     string                 `json:"bucket"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt *time.Time             `json:"finished_at,omitempty"`
	Result     string                 `json:"result,omitempty"`
	LastError  string                 `json:"last_error,omitempty"`
	NotesAdded int64                  `json:"notes_added"`
	Phases     map[string]PhaseCounts `json:"phases"`
}

// Tracker is a Sink that keeps the latest run state in memory for the status
// server. It holds no history: a new run start resets it.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Phases: map[string]PhaseCounts{}}}
}

// Consume folds events into the tracked state.
func (t *Tracker) Consume(_ context.Context, batch []Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, evt := range batch {
		t.apply(evt)
	}
	return nil
}

func (t *Tracker) apply(evt Event) {
	switch evt.Stage {
	case StageRunStart:
		t.snap = Snapshot{
			RunID:     evt.RunUUID().String(),
			Running:   true,
			StartedAt: evt.TS,
			Phases:    map[string]PhaseCounts{},
		}
	case StagePhaseStart:
		t.snap.Phase = string(evt.Phase)
		t.snap.Bucket = ""
	case StagePhaseDone:
		t.snap.Bucket = ""
	case StageItemSynced:
		counts := t.snap.Phases[string(evt.Phase)]
		counts.Synced++
		t.snap.Phases[string(evt.Phase)] = counts
		t.snap.Bucket = evt.Bucket
	case StageItemSkip:
		counts := t.snap.Phases[string(evt.Phase)]
		counts.Skipped++
		t.snap.Phases[string(evt.Phase)] = counts
		t.snap.Bucket = evt.Bucket
	case StageItemFail:
		counts := t.snap.Phases[string(evt.Phase)]
		counts.Failed++
		t.snap.Phases[string(evt.Phase)] = counts
		t.snap.Bucket = evt.Bucket
	case StageNoteAdded:
		t.snap.NotesAdded++
	case StageRunDone:
		ts := evt.TS
		t.snap.Running = false
		t.snap.FinishedAt = &ts
		t.snap.Result = "success"
	case StageRunError:
		ts := evt.TS
		t.snap.Running = false
		t.snap.FinishedAt = &ts
		t.snap.Result = "error"
		t.snap.LastError = evt.Note
	}
}

// Close implements the Sink interface; it performs no action.
func (t *Tracker) Close(context.Context) error {
	return nil
}

// Snapshot returns a copy of the tracked state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := t.snap
	snap.Phases = make(map[string]PhaseCounts, len(t.snap.Phases))
	for phase, counts := range t.snap.Phases {
		snap.Phases[phase] = counts
	}
	if t.snap.FinishedAt != nil {
		ts := *t.snap.FinishedAt
		snap.FinishedAt = &ts
	}
	return snap
}
