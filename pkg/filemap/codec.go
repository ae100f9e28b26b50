package filemap

// Codec encodes and decodes a single element of type T, and defines the
// total order used both to sort entries at write time and to binary-search
// them at read time. Those two uses must agree: Builder.Put rejects keys
// that are out of order under Compare, and Reader.Lookup binary-searches
// with the same Compare.
//
// A Codec is either fixed-width (FixedWidth reports a width and true) or
// variable-width (FixedWidth reports false). Fixed-width codecs encode
// every value to exactly that many bytes; variable-width codecs are free
// to use whatever self-delimiting encoding Decode understands. The layout
// stores only each element's start offset, not its length, so the
// encoding itself must say where the element ends.
type Codec[T any] interface {
	// FixedWidth returns the constant encoded width and true if every
	// value of T encodes to the same number of bytes, or (0, false) for a
	// variable-width encoding.
	FixedWidth() (width int, fixed bool)

	// Encode appends the encoding of v to dst and returns the result.
	Encode(dst []byte, v T) []byte

	// Decode reads one value of T starting at the beginning of b. For a
	// fixed-width codec b is exactly FixedWidth() bytes long. For a
	// variable-width codec b is the remainder of the file starting at the
	// value's offset; Decode must read only the bytes that belong to this
	// one value and must not assume b ends where the value does.
	Decode(b []byte) (T, error)

	// Compare returns a negative number if a < b, zero if a == b, and a
	// positive number if a > b, under the codec's total order.
	Compare(a, b T) int
}
