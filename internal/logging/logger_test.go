// Package logging includes tests for the zap logger helpers.
package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewDevelopmentLogger confirms the development logger builds and logs.
func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	if err != nil {
		t.Fatalf("New(true) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("development logger ready")
}

// TestNewProductionLogger ensures the production logger configuration succeeds.
func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	if err != nil {
		t.Fatalf("New(false) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("production logger ready")
}

// TestNewWithJournalWritesFile verifies entries are teed into the journal file.
func TestNewWithJournalWritesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.log")
	logger, err := NewWithJournal(false, path)
	if err != nil {
		t.Fatalf("NewWithJournal error = %v", err)
	}
	logger.Info("note attempt")
	logger.Sync() //nolint:errcheck // best-effort flush

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if !strings.Contains(string(data), "note attempt") {
		t.Fatalf("journal missing entry, got %q", string(data))
	}
}

// TestNewWithJournalEmptyPath returns a plain logger when no journal is set.
func TestNewWithJournalEmptyPath(t *testing.T) {
	t.Parallel()

	logger, err := NewWithJournal(false, "")
	if err != nil {
		t.Fatalf("NewWithJournal error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
}
