package filemap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildFixedFixedFile(t *testing.T) string {
	t.Helper()

	b := NewBuilder[uint32, uint32](Uint32Codec{}, Uint32Codec{})
	require.NoError(t, b.Put(1, 10))
	require.NoError(t, b.Put(2, 20))
	require.NoError(t, b.Put(3, 30))

	data, err := Encode(b)
	require.NoError(t, err)

	return writeBytesToTempFile(t, data)
}

func TestReaderLowerBoundFixed(t *testing.T) {
	t.Parallel()

	path := buildFixedFixedFile(t)

	r, err := Open[uint32, uint32](path, Uint32Codec{}, Uint32Codec{}, NoLock)
	require.NoError(t, err)

	defer r.Close()

	idx, matched, err := r.LowerBound(2)
	require.NoError(t, err)
	require.True(t, matched)
	require.EqualValues(t, 1, idx)

	v, err := r.Lookup(2)
	require.NoError(t, err)
	require.EqualValues(t, 20, v)

	idx, matched, err = r.LowerBound(0)
	require.NoError(t, err)
	require.False(t, matched)
	require.EqualValues(t, 0, idx)

	idx, matched, err = r.LowerBound(4)
	require.NoError(t, err)
	require.False(t, matched)
	require.EqualValues(t, sentinelIndex, idx)
}

func TestReaderEmptyMap(t *testing.T) {
	t.Parallel()

	b := NewBuilder[uint32, uint32](Uint32Codec{}, Uint32Codec{})

	data, err := Encode(b)
	require.NoError(t, err)

	path := writeBytesToTempFile(t, data)

	r, err := Open[uint32, uint32](path, Uint32Codec{}, Uint32Codec{}, NoLock)
	require.NoError(t, err)

	defer r.Close()

	require.Equal(t, 0, r.Count())

	_, matched, err := r.LowerBound(42)
	require.NoError(t, err)
	require.False(t, matched)
}

func TestReaderVariableKeyFixedValue(t *testing.T) {
	t.Parallel()

	b := NewBuilder[string, uint32](StringCodec{}, Uint32Codec{})
	require.NoError(t, b.Put("apple", 1))
	require.NoError(t, b.Put("banana", 2))
	require.NoError(t, b.Put("cherry", 3))

	data, err := Encode(b)
	require.NoError(t, err)

	path := writeBytesToTempFile(t, data)

	r, err := Open[string, uint32](path, StringCodec{}, Uint32Codec{}, NoLock)
	require.NoError(t, err)

	defer r.Close()

	idx, matched, err := r.LowerBound("banana")
	require.NoError(t, err)
	require.True(t, matched)
	require.EqualValues(t, 1, idx)

	_, err = r.Lookup("blueberry")
	require.ErrorIs(t, err, ErrNotFound)

	idx, matched, err = r.LowerBound("blueberry")
	require.NoError(t, err)
	require.False(t, matched)
	require.EqualValues(t, 2, idx)
}

func TestReaderRejectsCorruptOffsets(t *testing.T) {
	t.Parallel()

	b := NewBuilder[string, uint32](StringCodec{}, Uint32Codec{})
	require.NoError(t, b.Put("a", 1))

	data, err := Encode(b)
	require.NoError(t, err)

	// Corrupt the values offset header field so it points past EOF.
	data[4] = 0xff
	data[5] = 0xff

	path := writeBytesToTempFile(t, data)

	_, err = Open[string, uint32](path, StringCodec{}, Uint32Codec{}, NoLock)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestReaderOrderedIteration(t *testing.T) {
	t.Parallel()

	path := buildFixedFixedFile(t)

	r, err := Open[uint32, uint32](path, Uint32Codec{}, Uint32Codec{}, NoLock)
	require.NoError(t, err)

	defer r.Close()

	var keys []uint32

	for e := range r.All() {
		keys = append(keys, e.Key)
	}

	require.Equal(t, []uint32{1, 2, 3}, keys)
}
