package trie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarioS2InsertAndLookup(t *testing.T) {
	tr := New()
	entries := map[string]string{
		"do":    "verb",
		"dog":   "puppy",
		"doge":  "coin",
		"horse": "stallion",
	}
	for k, v := range entries {
		require.NoError(t, tr.Insert([]byte(k), []byte(v)))
	}
	for k, v := range entries {
		got, err := tr.At([]byte(k))
		require.NoError(t, err)
		require.Equal(t, v, string(got))
	}
	got, err := tr.At([]byte("cat"))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestScenarioS3OrderIndependentDigest(t *testing.T) {
	entries := []struct{ k, v string }{
		{"do", "verb"},
		{"dog", "puppy"},
		{"doge", "coin"},
		{"horse", "stallion"},
	}
	forward := New()
	for _, e := range entries {
		require.NoError(t, forward.Insert([]byte(e.k), []byte(e.v)))
	}
	backward := New()
	for i := len(entries) - 1; i >= 0; i-- {
		require.NoError(t, backward.Insert([]byte(entries[i].k), []byte(entries[i].v)))
	}
	require.Equal(t, forward.RootDigest(), backward.RootDigest())
}

func TestScenarioS4InsertEmptyEqualsRemove(t *testing.T) {
	base := New()
	require.NoError(t, base.Insert([]byte("do"), []byte("verb")))
	require.NoError(t, base.Insert([]byte("dog"), []byte("puppy")))
	baseline := base.RootDigest()

	viaInsertEmpty := New()
	require.NoError(t, viaInsertEmpty.Insert([]byte("do"), []byte("verb")))
	require.NoError(t, viaInsertEmpty.Insert([]byte("dog"), []byte("puppy")))
	require.NoError(t, viaInsertEmpty.Insert([]byte("zzz"), []byte("temp")))
	require.NoError(t, viaInsertEmpty.Insert([]byte("zzz"), nil))
	require.Equal(t, baseline, viaInsertEmpty.RootDigest())

	viaRemove := New()
	require.NoError(t, viaRemove.Insert([]byte("do"), []byte("verb")))
	require.NoError(t, viaRemove.Insert([]byte("dog"), []byte("puppy")))
	require.NoError(t, viaRemove.Insert([]byte("zzz"), []byte("temp")))
	require.NoError(t, viaRemove.Remove([]byte("zzz")))
	require.Equal(t, baseline, viaRemove.RootDigest())
}

func TestEmptyTrieDigestIsCanonical(t *testing.T) {
	tr := New()
	require.Equal(t, EmptyRoot, tr.RootDigest())
	require.Equal(t, []byte{0x40}, tr.RootEncoding())
}

func TestInsertDeleteInverse(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Insert([]byte("alpha"), []byte("1")))
	before := tr.RootDigest()

	require.NoError(t, tr.Insert([]byte("beta"), []byte("2")))
	require.NoError(t, tr.Insert([]byte("gamma"), []byte("3")))
	require.NoError(t, tr.Remove([]byte("gamma")))
	require.NoError(t, tr.Remove([]byte("beta")))

	require.Equal(t, before, tr.RootDigest())
}

func TestRemoveAbsentKeyIsNoop(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Insert([]byte("present"), []byte("v")))
	before := tr.RootDigest()
	require.NoError(t, tr.Remove([]byte("absent")))
	require.Equal(t, before, tr.RootDigest())
}

func TestEmptyKeyRejected(t *testing.T) {
	tr := New()
	require.Error(t, tr.Insert(nil, []byte("v")))
	require.Error(t, tr.Remove(nil))
	_, err := tr.At(nil)
	require.Error(t, err)
}

func TestOverwriteExistingKey(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Insert([]byte("key"), []byte("first")))
	require.NoError(t, tr.Insert([]byte("key"), []byte("second")))
	got, err := tr.At([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, "second", string(got))
}

func TestManyKeysOrderIndependentDigest(t *testing.T) {
	keys := []string{"aa", "ab", "ac", "b", "ba", "cat", "category", "dog", "doge", "z"}
	forward := New()
	for i, k := range keys {
		require.NoError(t, forward.Insert([]byte(k), []byte{byte(i)}))
	}
	shuffled := []string{"doge", "z", "aa", "cat", "ba", "ac", "b", "category", "ab", "dog"}
	backward := New()
	for _, k := range shuffled {
		for i, kk := range keys {
			if kk == k {
				require.NoError(t, backward.Insert([]byte(k), []byte{byte(i)}))
			}
		}
	}
	require.Equal(t, forward.RootDigest(), backward.RootDigest())
}

func TestRemoveAllLeavesEmptyTrie(t *testing.T) {
	tr := New()
	keys := []string{"one", "two", "three"}
	for _, k := range keys {
		require.NoError(t, tr.Insert([]byte(k), []byte("v")))
	}
	for _, k := range keys {
		require.NoError(t, tr.Remove([]byte(k)))
	}
	require.Equal(t, EmptyRoot, tr.RootDigest())
}

func TestCopyIsIndependent(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Insert([]byte("a"), []byte("1")))
	cp := tr.Copy()
	require.NoError(t, tr.Insert([]byte("b"), []byte("2")))

	got, err := cp.At([]byte("b"))
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = tr.At([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, "2", string(got))
}

func TestRootEncodingRoundTripsThroughDecodeNode(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Insert([]byte("do"), []byte("verb")))
	require.NoError(t, tr.Insert([]byte("dog"), []byte("puppy")))
	require.NoError(t, tr.Insert([]byte("doge"), []byte("coin")))

	enc := tr.RootEncoding()
	n, err := DecodeNode(nil, enc)
	require.NoError(t, err)
	require.NotNil(t, n)

	digestOfDecoded := New()
	digestOfDecoded.root = n
	require.Equal(t, tr.RootDigest(), digestOfDecoded.RootDigest())
}
