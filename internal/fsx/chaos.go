package fsx

import "os"

// Chaos wraps another [FS] and injects failures at chosen call sites, for
// exercising the writer's mkdir-retry and cleanup-on-failure paths without
// depending on the real filesystem misbehaving.
//
// Each Fail* field, if non-nil, is consulted before the wrapped call; a
// non-nil return short-circuits the call with that error.
type Chaos struct {
	Inner FS

	FailOpenFile func(path string, flag int, perm os.FileMode) error
	FailMkdirAll func(path string, perm os.FileMode) error
	FailRemove   func(path string) error
	FailRename   func(oldpath, newpath string) error
	FailStat     func(path string) error

	// OpenFileCalls counts invocations, so tests can assert the mkdir-retry
	// path only opens the file twice.
	OpenFileCalls int
}

// NewChaos wraps inner with an [FS] whose failures are all disabled by
// default; set the Fail* fields to inject specific failures.
func NewChaos(inner FS) *Chaos {
	return &Chaos{Inner: inner}
}

func (c *Chaos) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	c.OpenFileCalls++

	if c.FailOpenFile != nil {
		if err := c.FailOpenFile(path, flag, perm); err != nil {
			return nil, err
		}
	}

	return c.Inner.OpenFile(path, flag, perm)
}

func (c *Chaos) MkdirAll(path string, perm os.FileMode) error {
	if c.FailMkdirAll != nil {
		if err := c.FailMkdirAll(path, perm); err != nil {
			return err
		}
	}

	return c.Inner.MkdirAll(path, perm)
}

func (c *Chaos) Remove(path string) error {
	if c.FailRemove != nil {
		if err := c.FailRemove(path); err != nil {
			return err
		}
	}

	return c.Inner.Remove(path)
}

func (c *Chaos) Rename(oldpath, newpath string) error {
	if c.FailRename != nil {
		if err := c.FailRename(oldpath, newpath); err != nil {
			return err
		}
	}

	return c.Inner.Rename(oldpath, newpath)
}

func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	if c.FailStat != nil {
		if err := c.FailStat(path); err != nil {
			return nil, err
		}
	}

	return c.Inner.Stat(path)
}

var _ FS = (*Chaos)(nil)
