package progress

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestTrackerFollowsRunLifecycle folds a full run into the tracker and checks
// the resulting snapshot.
func TestTrackerFollowsRunLifecycle(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	runID := UUIDToBytes(uuid.New())
	start := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	batch := []Event{
		{RunID: runID, TS: start, Stage: StageRunStart},
		{RunID: runID, TS: start.Add(time.Second), Stage: StagePhaseStart, Phase: PhaseWords},
		{RunID: runID, TS: start.Add(2 * time.Second), Stage: StageItemSynced, Phase: PhaseWords, Bucket: "a", ItemID: "42"},
		{RunID: runID, TS: start.Add(3 * time.Second), Stage: StageNoteAdded, Deck: "nonfiction::asl::words"},
		{RunID: runID, TS: start.Add(4 * time.Second), Stage: StageNoteAdded, Deck: "nonfiction::asl::words"},
		{RunID: runID, TS: start.Add(5 * time.Second), Stage: StageItemSkip, Phase: PhaseWords, Bucket: "b", ItemID: "77", Reason: ReasonDedup},
		{RunID: runID, TS: start.Add(6 * time.Second), Stage: StageItemFail, Phase: PhaseWords, Bucket: "c", Reason: ReasonFetch},
		{RunID: runID, TS: start.Add(7 * time.Second), Stage: StagePhaseDone, Phase: PhaseWords},
		{RunID: runID, TS: start.Add(8 * time.Second), Stage: StageRunDone, Dur: 8 * time.Second},
	}
	require.NoError(t, tracker.Consume(context.Background(), batch))

	snap := tracker.Snapshot()
	require.Equal(t, uuid.UUID(runID).String(), snap.RunID)
	require.False(t, snap.Running)
	require.Equal(t, "success", snap.Result)
	require.Equal(t, start, snap.StartedAt)
	require.NotNil(t, snap.FinishedAt)
	require.Equal(t, start.Add(8*time.Second), *snap.FinishedAt)
	require.Equal(t, int64(2), snap.NotesAdded)
	require.Equal(t, PhaseCounts{Synced: 1, Skipped: 1, Failed: 1}, snap.Phases["words"])
}

// TestTrackerRecordsRunError keeps the last error text for the status page.
func TestTrackerRecordsRunError(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	runID := UUIDToBytes(uuid.New())
	now := time.Now()

	batch := []Event{
		{RunID: runID, TS: now, Stage: StageRunStart},
		{RunID: runID, TS: now.Add(time.Second), Stage: StageRunError, Note: "store unreachable"},
	}
	require.NoError(t, tracker.Consume(context.Background(), batch))

	snap := tracker.Snapshot()
	require.False(t, snap.Running)
	require.Equal(t, "error", snap.Result)
	require.Equal(t, "store unreachable", snap.LastError)
}

// TestTrackerResetsOnNewRun verifies a fresh run start wipes the prior state.
func TestTrackerResetsOnNewRun(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	now := time.Now()

	first := UUIDToBytes(uuid.New())
	require.NoError(t, tracker.Consume(context.Background(), []Event{
		{RunID: first, TS: now, Stage: StageRunStart},
		{RunID: first, TS: now.Add(time.Second), Stage: StageItemSynced, Phase: PhaseWords, Bucket: "a"},
		{RunID: first, TS: now.Add(2 * time.Second), Stage: StageRunDone},
	}))

	second := UUIDToBytes(uuid.New())
	require.NoError(t, tracker.Consume(context.Background(), []Event{
		{RunID: second, TS: now.Add(time.Minute), Stage: StageRunStart},
	}))

	snap := tracker.Snapshot()
	require.Equal(t, uuid.UUID(second).String(), snap.RunID)
	require.True(t, snap.Running)
	require.Empty(t, snap.Result)
	require.Nil(t, snap.FinishedAt)
	require.Empty(t, snap.Phases)
}

// TestTrackerSnapshotIsACopy guards callers against aliasing the internal map.
func TestTrackerSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	runID := UUIDToBytes(uuid.New())
	now := time.Now()
	require.NoError(t, tracker.Consume(context.Background(), []Event{
		{RunID: runID, TS: now, Stage: StageRunStart},
		{RunID: runID, TS: now.Add(time.Second), Stage: StageItemSynced, Phase: PhaseWords, Bucket: "a"},
	}))

	snap := tracker.Snapshot()
	snap.Phases["words"] = PhaseCounts{Synced: 99}

	fresh := tracker.Snapshot()
	require.Equal(t, PhaseCounts{Synced: 1}, fresh.Phases["words"])
}
