package filemap

import (
	"encoding/binary"
	"fmt"
)

// Encode serializes b into the complete on-disk byte image described in
// the package layout comment (layout.go). It is exposed directly so tests
// and callers that want to write the bytes themselves (e.g. to a buffer
// that is not a plain file) don't have to go through [Write].
func Encode[K, V any](b *Builder[K, V]) ([]byte, error) {
	n := b.Len()

	buf := make([]byte, headerSize, headerSize+estimateSize(b))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))

	keys := make([]K, n)
	values := make([]V, n)

	for i, e := range b.entries {
		keys[i] = e.key
		values[i] = e.value
	}

	buf = appendSegment(buf, b.keyCodec, keys)

	valuesOffset := len(buf)
	if valuesOffset != int(uint32(valuesOffset)) {
		return nil, fmt.Errorf("%w: keys segment too large to address with a uint32 offset", ErrCorrupt)
	}

	binary.LittleEndian.PutUint32(buf[4:8], uint32(valuesOffset))

	buf = appendSegment(buf, b.valueCodec, values)

	return buf, nil
}

// appendSegment appends the encoding of values (in order) to buf as a
// single segment, returning the extended buffer. For a fixed-width codec
// this is N*width contiguous bytes; for a variable-width codec it is an
// N-entry absolute-offset table followed by the concatenated encodings.
func appendSegment[T any](buf []byte, codec Codec[T], values []T) []byte {
	if _, fixed := codec.FixedWidth(); fixed {
		for _, v := range values {
			buf = codec.Encode(buf, v)
		}

		return buf
	}

	n := len(values)
	offsetTablePos := len(buf)
	buf = append(buf, make([]byte, 4*n)...)

	for i, v := range values {
		off := uint32(len(buf))
		binary.LittleEndian.PutUint32(buf[offsetTablePos+4*i:offsetTablePos+4*i+4], off)
		buf = codec.Encode(buf, v)
	}

	return buf
}

// estimateSize gives Encode's initial buffer a reasonable starting
// capacity; it does not need to be exact.
func estimateSize[K, V any](b *Builder[K, V]) int {
	n := b.Len()

	keyWidth, keyFixed := b.keyCodec.FixedWidth()
	valWidth, valFixed := b.valueCodec.FixedWidth()

	size := 0
	if keyFixed {
		size += n * keyWidth
	} else {
		size += n * 4 // offset table only; data length is unknown up front
	}

	if valFixed {
		size += n * valWidth
	} else {
		size += n * 4
	}

	return size
}
