package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryLockContendedReturnsErrWouldBlock(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "map.db")

	first, err := TryLock(path)
	require.NoError(t, err)

	defer first.Close()

	_, err = TryLock(path)
	require.ErrorIs(t, err, ErrWouldBlock)
}

func TestTryLockReacquiresAfterRelease(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "map.db")

	first, err := TryLock(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := TryLock(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestTryRLockAllowsMultipleReaders(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "map.db")

	r1, err := TryRLock(path)
	require.NoError(t, err)

	defer r1.Close()

	r2, err := TryRLock(path)
	require.NoError(t, err)

	defer r2.Close()
}

func TestTryLockBlockedByExistingReader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "map.db")

	reader, err := TryRLock(path)
	require.NoError(t, err)

	defer reader.Close()

	_, err = TryLock(path)
	require.ErrorIs(t, err, ErrWouldBlock)
}

func TestTryRLockBlockedByExistingWriter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "map.db")

	writer, err := TryLock(path)
	require.NoError(t, err)

	defer writer.Close()

	_, err = TryRLock(path)
	require.ErrorIs(t, err, ErrWouldBlock)
}

func TestWriterCanAcquireAfterReaderReleases(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "map.db")

	reader, err := TryRLock(path)
	require.NoError(t, err)
	require.NoError(t, reader.Close())

	writer, err := TryLock(path)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "map.db")

	lock, err := TryLock(path)
	require.NoError(t, err)
	require.NoError(t, lock.Close())
	require.NoError(t, lock.Close())
}

func TestInodeMatchesPathDetectsReplacement(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "map.db.lock")

	require.NoError(t, os.WriteFile(lockPath, nil, 0o644))

	f, err := os.OpenFile(lockPath, os.O_RDWR, 0o644)
	require.NoError(t, err)

	defer f.Close()

	require.True(t, inodeMatchesPath(f, lockPath))

	// Replace the file at lockPath with a fresh inode, as a writer racing
	// a stale lock holder would; f now refers to an unlinked inode.
	require.NoError(t, os.Remove(lockPath))
	require.NoError(t, os.WriteFile(lockPath, nil, 0o644))

	require.False(t, inodeMatchesPath(f, lockPath))
}

func TestInodeMatchesPathMissingPathIsMismatch(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "map.db.lock")

	require.NoError(t, os.WriteFile(lockPath, nil, 0o644))

	f, err := os.OpenFile(lockPath, os.O_RDWR, 0o644)
	require.NoError(t, err)

	defer f.Close()

	require.NoError(t, os.Remove(lockPath))

	require.False(t, inodeMatchesPath(f, lockPath))
}

// TestAcquireRetriesOnceThenSucceedsAfterReplacement drives acquire's
// replacement-retry branch deterministically: checkInodeMatch is stubbed to
// report a mismatch exactly once, simulating the lock file having been
// replaced between open and flock, then report a match on the retry.
func TestAcquireRetriesOnceThenSucceedsAfterReplacement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.db")

	calls := 0
	original := checkInodeMatch

	checkInodeMatch = func(f *os.File, lockPath string) bool {
		calls++
		if calls == 1 {
			return false
		}

		return original(f, lockPath)
	}

	t.Cleanup(func() { checkInodeMatch = original })

	lock, err := TryLock(path)
	require.NoError(t, err)
	require.NoError(t, lock.Close())
	require.Equal(t, 2, calls)
}

// TestAcquireFailsAfterExceedingReplaceRetries covers the bounded-retry
// exit: when checkInodeMatch never reports a match, acquire must give up
// rather than retry forever.
func TestAcquireFailsAfterExceedingReplaceRetries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.db")

	original := checkInodeMatch
	checkInodeMatch = func(f *os.File, lockPath string) bool { return false }
	t.Cleanup(func() { checkInodeMatch = original })

	_, err := TryLock(path)
	require.ErrorContains(t, err, "repeatedly replaced")
}
