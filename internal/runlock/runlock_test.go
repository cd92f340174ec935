package runlock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAcquireExcludesSecondHolder covers the single-instance guarantee.
func TestAcquireExcludesSecondHolder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sync.lock")

	first, err := Acquire(path)
	require.NoError(t, err)
	require.Equal(t, path, first.Path())

	_, err = Acquire(path)
	require.ErrorIs(t, err, ErrHeld)

	require.NoError(t, first.Release())

	second, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, second.Release())
}

// TestAcquireRequiresPath rejects an empty lock location.
func TestAcquireRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Acquire("")
	require.Error(t, err)
}

// TestReleaseNilLock allows deferred release on failed acquisition.
func TestReleaseNilLock(t *testing.T) {
	t.Parallel()

	var lock *Lock
	require.NoError(t, lock.Release())
}
