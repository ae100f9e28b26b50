package filemap

import (
	"fmt"
	"os"
	"syscall"

	"github.com/Gei0r/rtags/internal/lockfile"
)

// mmapHandle is the memory-mapped file handle collaborator from the
// component design: open(path, lockMode) maps the file read-only and,
// unless NoLock is set, holds a shared advisory lock for its lifetime.
type mmapHandle struct {
	data []byte
	lock *lockfile.Lock
}

func openMmap(path string, opts Options) (*mmapHandle, error) {
	var lock *lockfile.Lock

	if !opts.has(NoLock) {
		l, err := lockfile.RLock(path)
		if err != nil {
			return nil, fmt.Errorf("filemap: acquire read lock: %w", err)
		}

		lock = l
	}

	f, err := os.Open(path)
	if err != nil {
		if lock != nil {
			lock.Close()
		}

		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		if lock != nil {
			lock.Close()
		}

		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		if lock != nil {
			lock.Close()
		}

		return nil, fmt.Errorf("%w: empty file", ErrCorrupt)
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		if lock != nil {
			lock.Close()
		}

		return nil, fmt.Errorf("filemap: mmap: %w", err)
	}

	return &mmapHandle{data: data, lock: lock}, nil
}

func (h *mmapHandle) ptr() []byte { return h.data }

func (h *mmapHandle) len() int { return len(h.data) }

func (h *mmapHandle) Close() error {
	var err error
	if h.data != nil {
		err = syscall.Munmap(h.data)
		h.data = nil
	}

	if h.lock != nil {
		if lerr := h.lock.Close(); lerr != nil && err == nil {
			err = lerr
		}

		h.lock = nil
	}

	return err
}
