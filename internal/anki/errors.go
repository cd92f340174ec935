package anki

import (
	"errors"
	"fmt"
)

// ErrDeckExists reports that a deck creation was skipped because the deck is
// already present in the collection.
var ErrDeckExists = errors.New("deck already exists")

// ProtocolError reports a reply that does not match the AnkiConnect envelope
// contract. The sync aborts on it: once the store misbehaves, no later
// response can be trusted.
type ProtocolError struct {
	Action string
	Reason string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("ankiconnect protocol violation on %s: %s", e.Action, e.Reason)
}

// ConnectionError reports that the AnkiConnect endpoint could not be reached
// at the transport level. Refused carries the common desktop failure mode so
// callers can print the actionable diagnostic.
type ConnectionError struct {
	URL     string
	Refused bool
	Err     error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.Refused {
		return fmt.Sprintf("connection to %s refused. Is Anki open and AnkiConnect installed?", e.URL)
	}
	return fmt.Sprintf("ankiconnect unreachable at %s: %v", e.URL, e.Err)
}

// Unwrap exposes the transport error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}
