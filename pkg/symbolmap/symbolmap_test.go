package symbolmap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Gei0r/rtags/pkg/filemap"
)

func TestSymbolLocationsRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "symbols.map")

	b := NewSymbolLocationsBuilder()
	require.NoError(t, b.Put("main", []Location{{FileID: 1, Line: 10, Column: 1}}))
	require.NoError(t, b.Put("printf", []Location{
		{FileID: 2, Line: 5, Column: 3},
		{FileID: 3, Line: 20, Column: 7},
	}))

	_, err := WriteSymbolLocations(path, b, filemap.NoLock)
	require.NoError(t, err)

	r, err := OpenSymbolLocations(path, filemap.NoLock)
	require.NoError(t, err)

	defer r.Close()

	locs, err := r.Lookup("printf")
	require.NoError(t, err)
	require.Equal(t, []Location{
		{FileID: 2, Line: 5, Column: 3},
		{FileID: 3, Line: 20, Column: 7},
	}, locs)

	_, err = r.Lookup("missing")
	require.ErrorIs(t, err, filemap.ErrNotFound)
}

func TestLocationSymbolRoundTripAndOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "locations.map")

	b := NewLocationSymbolBuilder()
	require.NoError(t, b.Put(Location{FileID: 1, Line: 1, Column: 1}, "foo"))
	require.NoError(t, b.Put(Location{FileID: 1, Line: 2, Column: 1}, "bar"))
	require.NoError(t, b.Put(Location{FileID: 2, Line: 1, Column: 1}, "baz"))

	_, err := WriteLocationSymbol(path, b, filemap.NoLock)
	require.NoError(t, err)

	r, err := OpenLocationSymbol(path, filemap.NoLock)
	require.NoError(t, err)

	defer r.Close()

	sym, err := r.Lookup(Location{FileID: 1, Line: 2, Column: 1})
	require.NoError(t, err)
	require.Equal(t, "bar", sym)

	var order []string
	for e := range r.All() {
		order = append(order, e.Value)
	}

	require.Equal(t, []string{"foo", "bar", "baz"}, order)
}

func TestLocationCodecOrdering(t *testing.T) {
	t.Parallel()

	c := LocationCodec{}

	require.Negative(t, c.Compare(Location{FileID: 1, Line: 1, Column: 1}, Location{FileID: 2, Line: 0, Column: 0}))
	require.Negative(t, c.Compare(Location{FileID: 1, Line: 1, Column: 1}, Location{FileID: 1, Line: 2, Column: 0}))
	require.Negative(t, c.Compare(Location{FileID: 1, Line: 1, Column: 1}, Location{FileID: 1, Line: 1, Column: 2}))
	require.Zero(t, c.Compare(Location{FileID: 1, Line: 1, Column: 1}, Location{FileID: 1, Line: 1, Column: 1}))
}
