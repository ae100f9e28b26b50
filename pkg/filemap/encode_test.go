package filemap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestEncodeEmptyMap(t *testing.T) {
	t.Parallel()

	b := NewBuilder[uint32, uint32](Uint32Codec{}, Uint32Codec{})

	data, err := Encode(b)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0, 8, 0, 0, 0}, data)
}

func TestEncodeFixedFixed(t *testing.T) {
	t.Parallel()

	b := NewBuilder[uint32, uint32](Uint32Codec{}, Uint32Codec{})
	require.NoError(t, b.Put(1, 10))
	require.NoError(t, b.Put(2, 20))
	require.NoError(t, b.Put(3, 30))

	data, err := Encode(b)
	require.NoError(t, err)
	require.Len(t, data, 32)

	n, err := headerCount(data)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	vOff, err := headerValuesOffset(data)
	require.NoError(t, err)
	require.EqualValues(t, 8+3*4, vOff)
}

func TestEncodeVariableKeyFixedValue(t *testing.T) {
	t.Parallel()

	b := NewBuilder[string, uint32](StringCodec{}, Uint32Codec{})
	require.NoError(t, b.Put("apple", 1))
	require.NoError(t, b.Put("banana", 2))
	require.NoError(t, b.Put("cherry", 3))

	data, err := Encode(b)
	require.NoError(t, err)

	vOff, err := headerValuesOffset(data)
	require.NoError(t, err)

	wantKeysSegment := 4*3 + (4 + 5) + (4 + 6) + (4 + 6)
	require.EqualValues(t, headerSize+wantKeysSegment, vOff)
}

func TestEncodeVariableVariableRoundTrip(t *testing.T) {
	t.Parallel()

	b := NewBuilder[string, string](StringCodec{}, StringCodec{})
	require.NoError(t, b.Put("k1", "v1-longer"))
	require.NoError(t, b.Put("k2", "v2"))

	data, err := Encode(b)
	require.NoError(t, err)

	path := writeBytesToTempFile(t, data)

	r, err := Open[string, string](path, StringCodec{}, StringCodec{}, NoLock)
	require.NoError(t, err)

	defer r.Close()

	require.Equal(t, 2, r.Count())

	got := map[string]string{}

	for e := range r.All() {
		got[e.Key] = e.Value
	}

	want := map[string]string{"k1": "v1-longer", "k2": "v2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}

	v0, err := r.ValueAt(0)
	require.NoError(t, err)
	require.Equal(t, "v1-longer", v0)
}

func TestEncodeIdempotent(t *testing.T) {
	t.Parallel()

	build := func() *Builder[string, uint32] {
		b := NewBuilder[string, uint32](StringCodec{}, Uint32Codec{})
		require.NoError(t, b.Put("a", 1))
		require.NoError(t, b.Put("b", 2))

		return b
	}

	d1, err := Encode(build())
	require.NoError(t, err)

	d2, err := Encode(build())
	require.NoError(t, err)

	require.True(t, bytesEqual(d1, d2))
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
