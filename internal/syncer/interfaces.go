package syncer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ankisign/internal/anki"
)

// ContentFetcher reads one provider path and returns the raw payload.
type ContentFetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Store is the slice of the flashcard store the engine drives.
type Store interface {
	DeckNames(ctx context.Context) ([]string, error)
	CreateDeck(ctx context.Context, name string) error
	ListTags(ctx context.Context) ([]string, error)
	AddNote(ctx context.Context, note anki.Note) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewRawID() (uuid.UUID, error)
}
