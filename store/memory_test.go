package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryPutGetDelete(t *testing.T) {
	m := NewMemory()
	_, err := m.Get([]byte("k"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Put([]byte("k"), []byte("v")))
	got, err := m.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, "v", string(got))

	has, err := m.Has([]byte("k"))
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, m.Delete([]byte("k")))
	has, err = m.Has([]byte("k"))
	require.NoError(t, err)
	require.False(t, has)
}

func TestMemoryDeleteAbsentIsNoop(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Delete([]byte("missing")))
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	m := NewMemory()
	value := []byte("original")
	require.NoError(t, m.Put([]byte("k"), value))
	got, err := m.Get([]byte("k"))
	require.NoError(t, err)
	got[0] = 'X'

	got2, err := m.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, "original", string(got2))
}

func TestMemoryClosedRejectsOps(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close())
	_, err := m.Get([]byte("k"))
	require.Error(t, err)
	require.Error(t, m.Put([]byte("k"), []byte("v")))
}
