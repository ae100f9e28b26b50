// Package lockfile implements the advisory whole-file locking used to
// coordinate a single writer against many concurrent readers of a
// [github.com/Gei0r/rtags/pkg/filemap] file.
//
// Locking goes through a sibling "<path>.lock" file rather than the data
// file itself, so that a reader's shared lock and a writer's exclusive
// lock are always taken on the same, stable inode even across writes that
// truncate-and-replace the data file.
package lockfile

import (
	"errors"
	"os"
	"syscall"
)

// ErrWouldBlock is returned by TryLock when the lock is already held by
// another holder, shared or exclusive, and by TryRLock when another holder
// has it exclusively.
var ErrWouldBlock = errors.New("lockfile: would block")

// checkInodeMatch is a package-level seam over inodeMatchesPath so tests
// can force the replacement-detected branch of acquire without racing a
// real concurrent replacement of the lock file.
var checkInodeMatch = inodeMatchesPath

// Lock represents a held advisory lock. Close releases it.
type Lock struct {
	file *os.File
}

// Close releases the lock and closes the underlying file descriptor.
// Close is idempotent.
func (l *Lock) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	f := l.file
	l.file = nil

	_ = flockRetryEINTR(int(f.Fd()), syscall.LOCK_UN)

	return f.Close()
}

// TryLock acquires a non-blocking exclusive lock on path+".lock", creating
// the lock file if necessary; its parent directory must already exist. It
// returns [ErrWouldBlock] if another holder already has the lock.
func TryLock(path string) (*Lock, error) {
	return acquire(path, syscall.LOCK_EX|syscall.LOCK_NB)
}

// TryRLock acquires a non-blocking shared lock on path+".lock".
func TryRLock(path string) (*Lock, error) {
	return acquire(path, syscall.LOCK_SH|syscall.LOCK_NB)
}

// RLock acquires a blocking shared lock on path+".lock". Readers hold this
// for the lifetime of an open map file.
func RLock(path string) (*Lock, error) {
	return acquire(path, syscall.LOCK_SH)
}

func acquire(path string, how int) (*Lock, error) {
	const maxReplaceRetries = 1

	for attempt := 0; ; attempt++ {
		lockPath := path + ".lock"

		f, err := openLockFile(lockPath)
		if err != nil {
			return nil, err
		}

		if err := flockRetryEINTR(int(f.Fd()), how); err != nil {
			f.Close()

			if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
				return nil, ErrWouldBlock
			}

			return nil, err
		}

		if checkInodeMatch(f, lockPath) {
			return &Lock{file: f}, nil
		}

		// The lock file was replaced between open and flock; the lock we
		// hold is on a now-unreachable inode.
		flockRetryEINTR(int(f.Fd()), syscall.LOCK_UN)
		f.Close()

		if attempt >= maxReplaceRetries {
			return nil, errors.New("lockfile: lock file repeatedly replaced during acquire")
		}
	}
}

func openLockFile(lockPath string) (*os.File, error) {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err == nil {
		return f, nil
	}

	if !os.IsNotExist(err) {
		return nil, err
	}

	return nil, err
}

// inodeMatchesPath reports whether f's inode still matches the file
// currently at lockPath, guarding against a lock acquired on a file that
// was unlinked and replaced concurrently.
func inodeMatchesPath(f *os.File, lockPath string) bool {
	var openStat syscall.Stat_t
	if err := syscall.Fstat(int(f.Fd()), &openStat); err != nil {
		return false
	}

	var pathStat syscall.Stat_t
	if err := syscall.Stat(lockPath, &pathStat); err != nil {
		return false
	}

	return openStat.Dev == pathStat.Dev && openStat.Ino == pathStat.Ino
}

// flockRetryEINTR retries flock a bounded number of times on EINTR, unlike
// the unbounded retry loop in the standard library's internal poller.
func flockRetryEINTR(fd int, how int) error {
	const maxRetries = 10000

	var err error

	for i := 0; i < maxRetries; i++ {
		err = syscall.Flock(fd, how)
		if !errors.Is(err, syscall.EINTR) {
			return err
		}
	}

	return err
}
