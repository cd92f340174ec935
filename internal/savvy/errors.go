package savvy

import "fmt"

// FetchError reports a transport-level failure reading from the provider.
// It is never retried; the frontier item it belongs to is skipped and the
// run continues.
type FetchError struct {
	Path   string
	Status int
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Err)
}

// Unwrap exposes the transport error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// MalformedPayloadError reports a payload that fetched fine but cannot be
// normalized. Like FetchError it skips one frontier item only: a record that
// fails to parse produces zero cards, never a degraded card.
type MalformedPayloadError struct {
	Reason string
}

// Error implements the error interface.
func (e *MalformedPayloadError) Error() string {
	return "malformed payload: " + e.Reason
}
