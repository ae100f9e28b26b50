// Package filemap implements a persistent, memory-mapped, read-optimized
// sorted map file.
//
// A map file stores a fixed, key-sorted set of entries so that a process
// can open it, memory-map it, and binary-search it without deserializing
// the whole thing. One process (the writer) builds a complete map with
// [Builder] and persists it with [Write]; any number of other processes
// (readers) call [Open] and then [Reader.Lookup], [Reader.KeyAt],
// [Reader.ValueAt] or range over [Reader.All].
//
// Keys and values are generic over a [Codec], which may be fixed-width
// (every encoded value is the same number of bytes) or variable-width
// (values are reached through a table of absolute file offsets). See
// [Uint32Codec], [Uint64Codec], [StringCodec] and [BytesCodec] for the
// built-in codecs, and [github.com/Gei0r/rtags/pkg/symbolmap] for a
// worked domain example.
//
// A map file never mutates in place. Rebuilding means writing a fresh
// file; concurrent writers and readers are coordinated with advisory
// whole-file locks rather than in-process synchronization, because the
// whole point of the format is that independent processes share it.
package filemap
