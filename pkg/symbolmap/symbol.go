package symbolmap

import (
	"encoding/binary"
	"fmt"

	"github.com/Gei0r/rtags/pkg/filemap"
)

// LocationSetCodec is a variable-width codec for a []Location, used as the
// value side of the symbol -> locations map: a symbol is typically
// declared once but referenced many times, so one key maps to a set of
// locations rather than a single one. Encoding is a 4-byte count followed
// by that many fixed-width Location encodings back to back.
type LocationSetCodec struct{}

func (LocationSetCodec) FixedWidth() (int, bool) { return 0, false }

func (LocationSetCodec) Encode(dst []byte, v []Location) []byte {
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(v)))
	dst = append(dst, countBuf[:]...)

	for _, loc := range v {
		dst = LocationCodec{}.Encode(dst, loc)
	}

	return dst
}

func (LocationSetCodec) Decode(b []byte) ([]Location, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("symbolmap: location set missing count prefix")
	}

	count := binary.LittleEndian.Uint32(b)
	b = b[4:]

	need := uint64(count) * locationWidth
	if need > uint64(len(b)) {
		return nil, fmt.Errorf("symbolmap: location set count %d exceeds available bytes", count)
	}

	out := make([]Location, count)

	for i := range out {
		loc, err := LocationCodec{}.Decode(b[i*locationWidth:])
		if err != nil {
			return nil, err
		}

		out[i] = loc
	}

	return out, nil
}

func (LocationSetCodec) Compare(a, b []Location) int {
	// Values are never compared; only keys are ordered. Defined for
	// Codec[T] conformance only.
	return 0
}

// SymbolLocationsBuilder accumulates a symbol -> locations map in symbol
// (lexicographic) order.
type SymbolLocationsBuilder = filemap.Builder[string, []Location]

// NewSymbolLocationsBuilder returns an empty builder for the symbol ->
// locations map.
func NewSymbolLocationsBuilder() *SymbolLocationsBuilder {
	return filemap.NewBuilder[string, []Location](filemap.StringCodec{}, LocationSetCodec{})
}

// WriteSymbolLocations persists a symbol -> locations map built with
// [NewSymbolLocationsBuilder].
func WriteSymbolLocations(path string, b *SymbolLocationsBuilder, opts filemap.Options) (int, error) {
	return filemap.Write(path, b, opts)
}

// OpenSymbolLocations opens a symbol -> locations map file for lookup.
func OpenSymbolLocations(path string, opts filemap.Options) (*filemap.Reader[string, []Location], error) {
	return filemap.Open[string, []Location](path, filemap.StringCodec{}, LocationSetCodec{}, opts)
}

// LocationSymbolBuilder accumulates a location -> symbol map in Location
// order (file, then line, then column).
type LocationSymbolBuilder = filemap.Builder[Location, string]

// NewLocationSymbolBuilder returns an empty builder for the reverse,
// location -> symbol map.
func NewLocationSymbolBuilder() *LocationSymbolBuilder {
	return filemap.NewBuilder[Location, string](LocationCodec{}, filemap.StringCodec{})
}

// WriteLocationSymbol persists a location -> symbol map built with
// [NewLocationSymbolBuilder].
func WriteLocationSymbol(path string, b *LocationSymbolBuilder, opts filemap.Options) (int, error) {
	return filemap.Write(path, b, opts)
}

// OpenLocationSymbol opens a location -> symbol map file for lookup.
func OpenLocationSymbol(path string, opts filemap.Options) (*filemap.Reader[Location, string], error) {
	return filemap.Open[Location, string](path, LocationCodec{}, filemap.StringCodec{}, opts)
}
