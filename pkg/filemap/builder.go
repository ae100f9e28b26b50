package filemap

import "fmt"

// entry is one key/value pair staged in a Builder, kept in insertion order
// (which Builder enforces to already be sorted).
type entry[K, V any] struct {
	key   K
	value V
}

// Builder accumulates key/value pairs in strictly increasing key order,
// ready to be persisted by [Write] or turned into bytes by [Encode]. It is
// the in-memory sorted-map collaborator the format's invariants assume
// already exists upstream (see package doc).
//
// A Builder is not safe for concurrent use.
type Builder[K, V any] struct {
	keyCodec   Codec[K]
	valueCodec Codec[V]
	entries    []entry[K, V]
	hasLast    bool
	last       K
}

// NewBuilder returns an empty Builder using the given key and value codecs.
func NewBuilder[K, V any](keyCodec Codec[K], valueCodec Codec[V]) *Builder[K, V] {
	return &Builder[K, V]{keyCodec: keyCodec, valueCodec: valueCodec}
}

// Put appends a key/value pair. key must compare strictly greater than
// every previously inserted key under the builder's key codec; violating
// this is a programming error and Put returns [ErrUnsorted] or
// [ErrDuplicateKey] rather than silently reordering the input.
func (b *Builder[K, V]) Put(key K, value V) error {
	if b.hasLast {
		switch cmp := b.keyCodec.Compare(b.last, key); {
		case cmp == 0:
			return fmt.Errorf("%w: %v", ErrDuplicateKey, any(key))
		case cmp > 0:
			return fmt.Errorf("%w: %v after %v", ErrUnsorted, any(key), any(b.last))
		}
	}

	b.entries = append(b.entries, entry[K, V]{key: key, value: value})
	b.last = key
	b.hasLast = true

	return nil
}

// Len returns the number of entries staged so far.
func (b *Builder[K, V]) Len() int { return len(b.entries) }
