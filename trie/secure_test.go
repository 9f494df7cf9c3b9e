package trie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecureTrieHidesRawKeyButRecoversPreimage(t *testing.T) {
	s := NewSecure()
	require.NoError(t, s.Insert([]byte("alice"), []byte("100")))

	got, err := s.At([]byte("alice"))
	require.NoError(t, err)
	require.Equal(t, "100", string(got))

	hk := hashedKey([]byte("alice"))
	preimage, ok := s.GetPreimage(hk)
	require.True(t, ok)
	require.Equal(t, "alice", string(preimage))

	raw := New()
	require.NoError(t, raw.Insert(hk.Bytes(), []byte("100")))
	require.Equal(t, raw.RootDigest(), s.RootDigest())
}

func TestSecureTrieRemoveDropsPreimage(t *testing.T) {
	s := NewSecure()
	require.NoError(t, s.Insert([]byte("bob"), []byte("1")))
	require.NoError(t, s.Remove([]byte("bob")))

	hk := hashedKey([]byte("bob"))
	_, ok := s.GetPreimage(hk)
	require.False(t, ok)

	got, err := s.At([]byte("bob"))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSecureTrieCopyIndependentPreimages(t *testing.T) {
	s := NewSecure()
	require.NoError(t, s.Insert([]byte("k1"), []byte("v1")))
	cp := s.Copy()
	require.NoError(t, s.Insert([]byte("k2"), []byte("v2")))

	_, ok := cp.GetPreimage(hashedKey([]byte("k2")))
	require.False(t, ok)
	_, ok = s.GetPreimage(hashedKey([]byte("k2")))
	require.True(t, ok)
}
