// Package symbolmap provides the domain codecs for the indexer's two map
// files: symbol name -> source location, and source location -> symbol
// name. Both are plain [github.com/Gei0r/rtags/pkg/filemap.Codec]
// instantiations; this package adds nothing to the core format, it only
// gives it a concrete key/value shape grounded in the kind of
// symbol/location table a source-code indexer actually stores.
package symbolmap

import (
	"encoding/binary"
	"fmt"
)

// Location identifies a byte position in a source file: which file, which
// line, which column, all 1-based as is conventional for editor-facing
// positions. It is a fixed-width composite key, ordered lexicographically
// by (FileID, Line, Column) — the same tuple order the original indexer's
// Location comparator uses so that all locations in one file sort
// together, and within a file sort by position.
type Location struct {
	FileID uint32
	Line   uint32
	Column uint32
}

// LocationCodec is a fixed-width [filemap.Codec] for [Location], encoding
// each field little-endian in FileID, Line, Column order, 12 bytes in all.
// This byte layout is this package's own; it does not reproduce the
// original indexer's Location representation.
type LocationCodec struct{}

const locationWidth = 12

func (LocationCodec) FixedWidth() (int, bool) { return locationWidth, true }

func (LocationCodec) Encode(dst []byte, v Location) []byte {
	var buf [locationWidth]byte
	binary.LittleEndian.PutUint32(buf[0:4], v.FileID)
	binary.LittleEndian.PutUint32(buf[4:8], v.Line)
	binary.LittleEndian.PutUint32(buf[8:12], v.Column)

	return append(dst, buf[:]...)
}

func (LocationCodec) Decode(b []byte) (Location, error) {
	if len(b) < locationWidth {
		return Location{}, fmt.Errorf("symbolmap: location element needs %d bytes, got %d", locationWidth, len(b))
	}

	return Location{
		FileID: binary.LittleEndian.Uint32(b[0:4]),
		Line:   binary.LittleEndian.Uint32(b[4:8]),
		Column: binary.LittleEndian.Uint32(b[8:12]),
	}, nil
}

func (LocationCodec) Compare(a, b Location) int {
	if a.FileID != b.FileID {
		if a.FileID < b.FileID {
			return -1
		}

		return 1
	}

	if a.Line != b.Line {
		if a.Line < b.Line {
			return -1
		}

		return 1
	}

	switch {
	case a.Column < b.Column:
		return -1
	case a.Column > b.Column:
		return 1
	default:
		return 0
	}
}
