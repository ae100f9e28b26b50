package filemap

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Gei0r/rtags/internal/fsx"
	"github.com/Gei0r/rtags/internal/lockfile"
)

// Write persists b to path, following the state machine:
//
//	Start -> Encode -> Open (mkdir-retry once) -> Lock -> Ftruncate -> Write -> Close
//
// A failure to take the lock closes the file and returns (0, err) without
// unlinking it; any failure from Ftruncate through Write unlinks the file
// and returns (0, err). Under [AtomicRename] the destination is never
// truncated in place, so there is nothing to unlink on failure beyond the
// temp file, which is removed directly.
//
// Unless [NoLock] or [AtomicRename] is set, Write returns [ErrBusy] if
// another writer or an open Reader holds the lock. Under [AtomicRename]
// no advisory lock is taken.
func Write[K, V any](path string, b *Builder[K, V], opts Options) (int, error) {
	image, err := Encode(b)
	if err != nil {
		return 0, err
	}

	return write(fsx.NewReal(), path, image, opts)
}

func write(fs fsx.FS, path string, image []byte, opts Options) (int, error) {
	if opts.has(AtomicRename) {
		return writeAtomic(fs, path, image)
	}

	return writeInPlace(fs, path, image, opts)
}

// writeInPlace is the default writer: open-or-create-and-truncate,
// exclusive-lock, write, unlink on any failure. It is not crash-atomic: a
// process that dies between truncation and the final write can leave a
// partially written file behind (see [AtomicRename] for the alternative).
func writeInPlace(fs fsx.FS, path string, image []byte, opts Options) (int, error) {
	f, err := openForWrite(fs, path)
	if err != nil {
		return 0, err
	}

	var lock *lockfile.Lock

	if !opts.has(NoLock) {
		lock, err = lockfile.TryLock(path)
		if err != nil {
			f.Close()

			if errors.Is(err, lockfile.ErrWouldBlock) {
				return 0, ErrBusy
			}

			return 0, err
		}
	}

	n, err := writeImageAndCleanupOnFailure(fs, path, f, lock, image)
	if err != nil {
		return 0, err
	}

	return n, nil
}

// openForWrite opens path for writing, creating and truncating it. If the
// open fails solely because the parent directory is missing, the parent is
// created recursively and the open is retried exactly once.
func openForWrite(fs fsx.FS, path string) (fsx.File, error) {
	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err == nil {
		return f, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("filemap: open %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if mkdirErr := fs.MkdirAll(dir, 0o755); mkdirErr != nil {
		return nil, fmt.Errorf("filemap: open %s: %w", path, err)
	}

	f, err = fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("filemap: open %s after creating parent: %w", path, err)
	}

	return f, nil
}

func writeImageAndCleanupOnFailure(
	fs fsx.FS, path string, f fsx.File, lock *lockfile.Lock, image []byte,
) (int, error) {
	fail := func(cause error) (int, error) {
		if lock != nil {
			lock.Close()
		}

		f.Close()
		fs.Remove(path)

		return 0, cause
	}

	if ft, ok := f.(interface{ Truncate(int64) error }); ok {
		if err := ft.Truncate(int64(len(image))); err != nil {
			return fail(fmt.Errorf("filemap: truncate %s: %w", path, err))
		}
	}

	n, err := f.Write(image)
	if err != nil {
		return fail(fmt.Errorf("filemap: write %s: %w", path, err))
	}

	if n != len(image) {
		return fail(fmt.Errorf("filemap: short write to %s: wrote %d of %d bytes", path, n, len(image)))
	}

	if lock != nil {
		if err := lock.Close(); err != nil {
			f.Close()

			return 0, fmt.Errorf("filemap: release lock on %s: %w", path, err)
		}
	}

	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("filemap: close %s: %w", path, err)
	}

	return n, nil
}

// writeAtomic implements the AtomicRename option: write the image to a
// temporary sibling file and rename it over path through fs, so a reader
// never observes a partially written destination and a crashed writer
// never leaves one in place either. Routing through fs (rather than an
// opaque atomic-write helper) is what lets the rename step be exercised
// under fault injection in tests, the same as the in-place writer's
// mkdir-retry step.
func writeAtomic(fs fsx.FS, path string, image []byte) (int, error) {
	perm := os.FileMode(0o644)
	if info, err := fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmpPath, f, err := createTempSibling(fs, path, perm)
	if err != nil {
		return 0, err
	}

	n, err := f.Write(image)
	if err != nil {
		f.Close()
		fs.Remove(tmpPath)

		return 0, fmt.Errorf("filemap: atomic write %s: %w", path, err)
	}

	if n != len(image) {
		f.Close()
		fs.Remove(tmpPath)

		return 0, fmt.Errorf("filemap: atomic write %s: short write: wrote %d of %d bytes", path, n, len(image))
	}

	if err := f.Sync(); err != nil {
		f.Close()
		fs.Remove(tmpPath)

		return 0, fmt.Errorf("filemap: atomic write %s: sync %s: %w", path, tmpPath, err)
	}

	if err := f.Close(); err != nil {
		fs.Remove(tmpPath)

		return 0, fmt.Errorf("filemap: atomic write %s: close %s: %w", path, tmpPath, err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		fs.Remove(tmpPath)

		return 0, fmt.Errorf("filemap: atomic write %s: rename from %s: %w", path, tmpPath, err)
	}

	return n, nil
}

// createTempSibling creates a uniquely named file in path's directory,
// creating the directory first if it is missing (mirroring openForWrite's
// mkdir-and-retry), and returns its path alongside the open handle.
func createTempSibling(fs fsx.FS, path string, perm os.FileMode) (string, fsx.File, error) {
	dir := filepath.Dir(path)

	tmpPath, err := randomSiblingName(path)
	if err != nil {
		return "", nil, fmt.Errorf("filemap: atomic write %s: %w", path, err)
	}

	f, err := fs.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
	if err == nil {
		return tmpPath, f, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return "", nil, fmt.Errorf("filemap: atomic write %s: create temp file: %w", path, err)
	}

	if mkdirErr := fs.MkdirAll(dir, 0o755); mkdirErr != nil {
		return "", nil, fmt.Errorf("filemap: atomic write %s: create temp file: %w", path, err)
	}

	f, err = fs.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return "", nil, fmt.Errorf("filemap: atomic write %s: create temp file after creating parent: %w", path, err)
	}

	return tmpPath, f, nil
}

// randomSiblingName returns a path alongside path with a random suffix,
// suitable for a create-then-rename temp file.
func randomSiblingName(path string) (string, error) {
	var suffix [16]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", fmt.Errorf("generate temp name: %w", err)
	}

	return path + ".tmp-" + hex.EncodeToString(suffix[:]), nil
}
