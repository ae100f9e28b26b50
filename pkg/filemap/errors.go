package filemap

import "errors"

// Sentinel errors returned by the public API. Wrap with fmt.Errorf("%w: ...")
// at call sites that need more context; callers should still be able to
// unwrap to one of these.
var (
	// ErrNotFound is returned by Reader.Lookup when the key is absent.
	ErrNotFound = errors.New("filemap: key not found")

	// ErrBusy is returned by Write when its exclusive lock cannot be taken:
	// another writer holds it exclusively, or an open Reader holds it
	// shared.
	ErrBusy = errors.New("filemap: write lock busy")

	// ErrCorrupt is returned when a variable-width offset table points
	// outside the mapped file, or the header advertises a values offset
	// or entry count that does not fit the file's actual length.
	ErrCorrupt = errors.New("filemap: corrupt map file")

	// ErrUnsorted is returned by Builder.Put when a key is inserted out of
	// order. Write and Encode do not check the order again. This indicates
	// a programming error in the caller, not a runtime condition to
	// recover from.
	ErrUnsorted = errors.New("filemap: keys must be inserted in strictly increasing order")

	// ErrDuplicateKey is returned by Builder.Put for a repeated key.
	ErrDuplicateKey = errors.New("filemap: duplicate key")

	// ErrClosed is returned by Reader methods after Close has been called.
	ErrClosed = errors.New("filemap: reader closed")
)
