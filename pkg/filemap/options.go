package filemap

// Options is an additive bit-set controlling how Open and Write coordinate
// with concurrent readers/writers. New bits may be added over time; an
// implementation must never infer semantics for a bit it does not
// recognize, so future options can be introduced without breaking callers
// that pass 0.
type Options uint32

const (
	// NoLock disables advisory locking. The caller is responsible for
	// external coordination between writers and readers. Off by default.
	NoLock Options = 1 << iota

	// AtomicRename makes Write produce the file by writing to a sibling
	// temporary file, fsyncing it, and renaming it over the destination,
	// instead of truncating and writing the destination in place. This
	// trades the default's simplicity for crash-atomicity: a process that
	// dies mid-write leaves the temporary file behind but never a
	// half-written destination. Off by default.
	AtomicRename
)

func (o Options) has(bit Options) bool { return o&bit != 0 }
