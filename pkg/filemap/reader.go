package filemap

import (
	"encoding/binary"
	"fmt"
)

// sentinelIndex is returned by LowerBound when the query key is greater
// than every key in the map, mirroring the uint32 sentinel UINT32_MAX in
// the component design.
const sentinelIndex = ^uint32(0)

// Reader opens a map file and provides binary-search lookup and ordered
// iteration over it, without deserializing more than the elements asked
// for. A Reader is safe for concurrent use by multiple goroutines, since
// all of its operations are read-only against the memory-mapped file.
type Reader[K, V any] struct {
	keyCodec   Codec[K]
	valueCodec Codec[V]

	handle *mmapHandle
	count  int

	keysBase   uint32
	valuesBase uint32

	keyFixedWidth   int
	keyIsFixed      bool
	valueFixedWidth int
	valueIsFixed    bool

	closed bool
}

// Open maps path and validates its header. opts controls locking; by
// default a shared advisory lock is held for the Reader's lifetime, unless
// [NoLock] is set.
func Open[K, V any](path string, keyCodec Codec[K], valueCodec Codec[V], opts Options) (*Reader[K, V], error) {
	h, err := openMmap(path, opts)
	if err != nil {
		return nil, err
	}

	r := &Reader[K, V]{
		keyCodec:   keyCodec,
		valueCodec: valueCodec,
		handle:     h,
	}

	r.keyFixedWidth, r.keyIsFixed = keyCodec.FixedWidth()
	r.valueFixedWidth, r.valueIsFixed = valueCodec.FixedWidth()

	if err := r.validate(); err != nil {
		h.Close()

		return nil, err
	}

	return r, nil
}

func (r *Reader[K, V]) validate() error {
	data := r.handle.ptr()

	n, err := headerCount(data)
	if err != nil {
		return err
	}

	vOff, err := headerValuesOffset(data)
	if err != nil {
		return err
	}

	if int(vOff) < keysSegmentBase || int(vOff) > r.handle.len() {
		return fmt.Errorf("%w: values offset %d out of bounds (file length %d)", ErrCorrupt, vOff, r.handle.len())
	}

	r.count = int(n)
	r.keysBase = keysSegmentBase
	r.valuesBase = vOff

	// The variable-width offset table, if any, must itself fit.
	if !r.keyIsFixed && uint64(r.keysBase)+4*uint64(n) > uint64(vOff) {
		return fmt.Errorf("%w: keys offset table overruns values segment", ErrCorrupt)
	}

	if !r.valueIsFixed && uint64(r.valuesBase)+4*uint64(n) > uint64(r.handle.len()) {
		return fmt.Errorf("%w: values offset table overruns end of file", ErrCorrupt)
	}

	if r.keyIsFixed {
		need := uint64(r.keysBase) + uint64(r.keyFixedWidth)*uint64(n)
		if need > uint64(vOff) {
			return fmt.Errorf("%w: fixed-width keys segment overruns values segment", ErrCorrupt)
		}
	}

	if r.valueIsFixed {
		need := uint64(r.valuesBase) + uint64(r.valueFixedWidth)*uint64(n)
		if need > uint64(r.handle.len()) {
			return fmt.Errorf("%w: fixed-width values segment overruns end of file", ErrCorrupt)
		}
	}

	return nil
}

// Close releases the memory mapping and any held shared lock. Close is
// idempotent; further calls to Reader methods return [ErrClosed].
func (r *Reader[K, V]) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true

	return r.handle.Close()
}

// Count returns the number of entries in the map.
func (r *Reader[K, V]) Count() int { return r.count }

// KeyAt decodes the key at position i, 0 <= i < Count().
func (r *Reader[K, V]) KeyAt(i int) (K, error) {
	var zero K

	if r.closed {
		return zero, ErrClosed
	}

	if i < 0 || i >= r.count {
		return zero, fmt.Errorf("%w: index %d out of range [0,%d)", ErrCorrupt, i, r.count)
	}

	return decodeAt(r.handle.ptr(), r.keyCodec, r.keysBase, r.keyIsFixed, r.keyFixedWidth, r.count, i)
}

// ValueAt decodes the value at position i, 0 <= i < Count().
func (r *Reader[K, V]) ValueAt(i int) (V, error) {
	var zero V

	if r.closed {
		return zero, ErrClosed
	}

	if i < 0 || i >= r.count {
		return zero, fmt.Errorf("%w: index %d out of range [0,%d)", ErrCorrupt, i, r.count)
	}

	return decodeAt(r.handle.ptr(), r.valueCodec, r.valuesBase, r.valueIsFixed, r.valueFixedWidth, r.count, i)
}

// decodeAt decodes the i-th element of a segment described by segBase/
// isFixed/fixedWidth/n, bounds-checking every offset it reads against the
// mapped file's length before touching it. Out-of-range offsets are
// reported as ErrCorrupt rather than read.
func decodeAt[T any](data []byte, codec Codec[T], segBase uint32, isFixed bool, fixedWidth, n, i int) (T, error) {
	var zero T

	if isFixed {
		start := fixedElementOffset(segBase, fixedWidth, i)
		end := start + uint64(fixedWidth)

		if end > uint64(len(data)) {
			return zero, fmt.Errorf("%w: fixed-width element %d out of bounds", ErrCorrupt, i)
		}

		return codec.Decode(data[start:end])
	}

	tableEntry := variableOffsetTableEntry(segBase, i)
	if tableEntry+4 > uint64(len(data)) {
		return zero, fmt.Errorf("%w: offset table entry %d out of bounds", ErrCorrupt, i)
	}

	off := uint64(binary.LittleEndian.Uint32(data[tableEntry : tableEntry+4]))
	if off > uint64(len(data)) {
		return zero, fmt.Errorf("%w: element %d offset %d out of bounds (file length %d)", ErrCorrupt, i, off, len(data))
	}

	return codec.Decode(data[off:])
}

// LowerBound returns the smallest index whose key is not less than key,
// and whether that key equals key exactly. If every key is less than key,
// it returns (sentinelIndex, false); sentinelIndex is the uint32 value
// with all bits set, the map file's past-the-end sentinel. It is
// unexported, so callers outside this package compare against
// ^uint32(0) or check that the index is not below Count().
func (r *Reader[K, V]) LowerBound(key K) (uint32, bool, error) {
	if r.closed {
		return sentinelIndex, false, ErrClosed
	}

	lo, hi := 0, r.count

	for lo < hi {
		mid := lo + (hi-lo)/2

		k, err := r.KeyAt(mid)
		if err != nil {
			return sentinelIndex, false, err
		}

		switch cmp := r.keyCodec.Compare(key, k); {
		case cmp == 0:
			return uint32(mid), true, nil
		case cmp < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}

	if lo == r.count {
		return sentinelIndex, false, nil
	}

	return uint32(lo), false, nil
}

// Lookup returns the value for key, or [ErrNotFound] if it is absent.
func (r *Reader[K, V]) Lookup(key K) (V, error) {
	var zero V

	idx, matched, err := r.LowerBound(key)
	if err != nil {
		return zero, err
	}

	if !matched {
		return zero, ErrNotFound
	}

	return r.ValueAt(int(idx))
}

// Entry is one decoded key/value pair yielded by [Reader.All].
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Seq mirrors the shape of Go's range-over-func iterators
// (func(yield func(V) bool)), so callers can write
// for e := range reader.All() { ... } without importing the core library's
// internal iterator plumbing, and can feed it into slices.Collect-style
// helpers.
type Seq[T any] func(yield func(T) bool)

// All returns an iterator over every entry in key order. Iteration stops
// early if yield returns false, or if a decode error is encountered (in
// which case the partial result the caller has already seen stands; All
// has no way to surface the error through the iterator shape, so callers
// that need to detect corruption mid-scan should prefer KeyAt/ValueAt in a
// plain loop).
func (r *Reader[K, V]) All() Seq[Entry[K, V]] {
	return func(yield func(Entry[K, V]) bool) {
		for i := 0; i < r.count; i++ {
			k, err := r.KeyAt(i)
			if err != nil {
				return
			}

			v, err := r.ValueAt(i)
			if err != nil {
				return
			}

			if !yield(Entry[K, V]{Key: k, Value: v}) {
				return
			}
		}
	}
}
