package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestEventValidate exercises the validation rules for each stage.
func TestEventValidate(t *testing.T) {
	t.Parallel()

	runID := UUIDToBytes(uuid.New())
	now := time.Now()

	tests := []struct {
		name    string
		evt     Event
		wantErr string
	}{
		{
			name: "run start ok",
			evt:  Event{RunID: runID, TS: now, Stage: StageRunStart},
		},
		{
			name: "item synced ok",
			evt:  Event{RunID: runID, TS: now, Stage: StageItemSynced, Phase: PhaseWords, Bucket: "a", ItemID: "42"},
		},
		{
			name: "item skip ok",
			evt:  Event{RunID: runID, TS: now, Stage: StageItemSkip, Phase: PhaseWords, Reason: ReasonDedup},
		},
		{
			name: "note added ok",
			evt:  Event{RunID: runID, TS: now, Stage: StageNoteAdded, Deck: "nonfiction::asl::words"},
		},
		{
			name:    "missing run id",
			evt:     Event{TS: now, Stage: StageRunStart},
			wantErr: "run id is required",
		},
		{
			name:    "missing timestamp",
			evt:     Event{RunID: runID, Stage: StageRunStart},
			wantErr: "timestamp is required",
		},
		{
			name:    "phase start without phase",
			evt:     Event{RunID: runID, TS: now, Stage: StagePhaseStart},
			wantErr: "phase events require a phase",
		},
		{
			name:    "item synced without phase",
			evt:     Event{RunID: runID, TS: now, Stage: StageItemSynced},
			wantErr: "item synced requires a phase",
		},
		{
			name:    "item fail without reason",
			evt:     Event{RunID: runID, TS: now, Stage: StageItemFail, Phase: PhaseSentences},
			wantErr: "requires a reason",
		},
		{
			name:    "note added without deck",
			evt:     Event{RunID: runID, TS: now, Stage: StageNoteAdded},
			wantErr: "requires a deck",
		},
		{
			name:    "unknown stage",
			evt:     Event{RunID: runID, TS: now, Stage: Stage("BOGUS")},
			wantErr: "unknown stage",
		},
		{
			name:    "negative duration",
			evt:     Event{RunID: runID, TS: now, Stage: StageRunDone, Dur: -time.Second},
			wantErr: "duration must be >= 0",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.evt.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

// TestRunUUIDRoundTrip covers the binary run ID helpers.
func TestRunUUIDRoundTrip(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	evt := Event{RunID: UUIDToBytes(id)}
	require.Equal(t, id, evt.RunUUID())
}
