package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart   Stage = "RUN_START"
	StageRunDone    Stage = "RUN_DONE"
	StageRunError   Stage = "RUN_ERROR"
	StagePhaseStart Stage = "PHASE_START"
	StagePhaseDone  Stage = "PHASE_DONE"
	StageItemSynced Stage = "ITEM_SYNCED"
	StageItemSkip   Stage = "ITEM_SKIPPED"
	StageItemFail   Stage = "ITEM_FAILED"
	StageNoteAdded  Stage = "NOTE_ADDED"
)

// Phase names a step of the run's state machine.
type Phase string

// Pipeline phases in execution order.
const (
	PhaseDecks     Phase = "decks"
	PhaseSnapshot  Phase = "snapshot"
	PhaseWords     Phase = "words"
	PhaseSentences Phase = "sentences"
)

// Reason groups item skips and failures for counting.
type Reason string

// Supported skip/failure reasons.
const (
	ReasonDedup Reason = "dedup"
	ReasonFetch Reason = "fetch"
	ReasonParse Reason = "parse"
	ReasonNoID  Reason = "no_id"
)

// Event captures a single milestone of sync progress.
type Event struct {
	// RunID uniquely identifies a sync run using the 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which lifecycle or item milestone occurred.
	Stage Stage
	// Phase scopes the event to a step of the run.
	Phase Phase
	// Bucket optionally scopes item events to a frontier bucket, a letter
	// for words or a category for sentences.
	Bucket string
	// ItemID is the word or sentence id the event concerns, when known.
	ItemID string
	// Deck carries the target deck for note additions.
	Deck string
	// Reason groups skips and failures.
	Reason Reason
	// Dur captures wall time for terminal run events.
	Dur time.Duration
	// Note lets emitters attach low-volume debug context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone, StageRunError:
	case StagePhaseStart, StagePhaseDone:
		if e.Phase == "" {
			return errors.New("phase events require a phase")
		}
	case StageItemSynced:
		if e.Phase == "" {
			return errors.New("item synced requires a phase")
		}
	case StageItemSkip, StageItemFail:
		if e.Phase == "" {
			return errors.New("item skip/fail requires a phase")
		}
		if e.Reason == "" {
			return errors.New("item skip/fail requires a reason")
		}
	case StageNoteAdded:
		if e.Deck == "" {
			return errors.New("note added requires a deck")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID for display.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
