package blob

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreWriteReadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	hash := "ab12cdef"
	require.NoError(t, store.Write(hash, []byte("payload")))

	data, err := store.Read(hash)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)
	require.True(t, store.Exists(hash))

	// The path fans out on the first two hash characters.
	require.Equal(t, "ab", filepath.Base(filepath.Dir(store.Path(hash))))
}

func TestStoreReadMissingSurfacesNotExist(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read("0000missing")
	require.True(t, errors.Is(err, fs.ErrNotExist))
	require.False(t, store.Exists("0000missing"))
}

func TestStoreWriteIsIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Write("cafe01", []byte("one")))
	require.NoError(t, store.Write("cafe01", []byte("one")))

	data, err := store.Read("cafe01")
	require.NoError(t, err)
	require.Equal(t, []byte("one"), data)
}

func TestStoreDeleteMissingIsNoError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Delete("feed00"))
}

func TestStoreRequiresBaseDir(t *testing.T) {
	_, err := NewStore("")
	require.Error(t, err)
}
