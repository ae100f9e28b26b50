package filemap

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Uint32Codec is a fixed-width codec for uint32 keys or values, encoded
// little-endian, rather than a raw struct reinterpretation, so map files
// are portable across hosts that differ only in native endianness.
type Uint32Codec struct{}

func (Uint32Codec) FixedWidth() (int, bool) { return 4, true }

func (Uint32Codec) Encode(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)

	return append(dst, buf[:]...)
}

func (Uint32Codec) Decode(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("%w: uint32 element needs 4 bytes, got %d", ErrCorrupt, len(b))
	}

	return binary.LittleEndian.Uint32(b), nil
}

func (Uint32Codec) Compare(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Uint64Codec is a fixed-width codec for uint64 keys or values, encoded
// little-endian.
type Uint64Codec struct{}

func (Uint64Codec) FixedWidth() (int, bool) { return 8, true }

func (Uint64Codec) Encode(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)

	return append(dst, buf[:]...)
}

func (Uint64Codec) Decode(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, fmt.Errorf("%w: uint64 element needs 8 bytes, got %d", ErrCorrupt, len(b))
	}

	return binary.LittleEndian.Uint64(b), nil
}

func (Uint64Codec) Compare(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// StringCodec is a variable-width codec for strings, encoded as a 4-byte
// little-endian length prefix followed by the UTF-8 bytes. The comparator
// orders strings lexicographically by byte value.
type StringCodec struct{}

func (StringCodec) FixedWidth() (int, bool) { return 0, false }

func (StringCodec) Encode(dst []byte, v string) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(v)))
	dst = append(dst, lenBuf[:]...)

	return append(dst, v...)
}

func (StringCodec) Decode(b []byte) (string, error) {
	if len(b) < 4 {
		return "", fmt.Errorf("%w: string element missing length prefix", ErrCorrupt)
	}

	n := binary.LittleEndian.Uint32(b)
	b = b[4:]

	if uint64(n) > uint64(len(b)) {
		return "", fmt.Errorf("%w: string element length %d exceeds available %d bytes", ErrCorrupt, n, len(b))
	}

	return string(b[:n]), nil
}

func (StringCodec) Compare(a, b string) int {
	return bytes.Compare([]byte(a), []byte(b))
}

// BytesCodec is a variable-width codec for opaque byte slices, using the
// same 4-byte length-prefix encoding as StringCodec. Comparison is
// lexicographic byte order.
type BytesCodec struct{}

func (BytesCodec) FixedWidth() (int, bool) { return 0, false }

func (BytesCodec) Encode(dst []byte, v []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(v)))
	dst = append(dst, lenBuf[:]...)

	return append(dst, v...)
}

func (BytesCodec) Decode(b []byte) ([]byte, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("%w: bytes element missing length prefix", ErrCorrupt)
	}

	n := binary.LittleEndian.Uint32(b)
	b = b[4:]

	if uint64(n) > uint64(len(b)) {
		return nil, fmt.Errorf("%w: bytes element length %d exceeds available %d bytes", ErrCorrupt, n, len(b))
	}

	out := make([]byte, n)
	copy(out, b[:n])

	return out, nil
}

func (BytesCodec) Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}
