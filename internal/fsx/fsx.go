// Package fsx provides a narrow filesystem abstraction used by the writer
// in [github.com/Gei0r/rtags/pkg/filemap] so that its mkdir-and-retry and
// atomic-rename steps can run against a fault-injecting implementation in
// tests without depending on the real disk misbehaving.
package fsx

import "os"

// File is the subset of *os.File the writer needs.
type File interface {
	Fd() uintptr
	Write(p []byte) (int, error)
	Sync() error
	Close() error
}

// FS abstracts the handful of filesystem operations the writer performs.
//
// Two implementations are provided: [Real], which forwards to the os
// package, and [Chaos], which injects failures for tests.
type FS interface {
	// OpenFile opens path with the given flags/perm. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// MkdirAll creates a directory and all necessary parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Remove deletes a file. See [os.Remove].
	Remove(path string) error

	// Rename moves oldpath to newpath. See [os.Rename].
	Rename(oldpath, newpath string) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)
}

// Real implements [FS] by forwarding to the os package.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real { return &Real{} }

func (r *Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}

func (r *Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (r *Real) Remove(path string) error {
	return os.Remove(path)
}

func (r *Real) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

var _ FS = (*Real)(nil)
