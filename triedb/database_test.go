package triedb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/radiation-octopus/octrie/store"
	"github.com/radiation-octopus/octrie/trie"
)

func TestCommitThenOpenTriePreservesValues(t *testing.T) {
	db := New(store.NewMemory(), DefaultConfig)

	tr, err := db.OpenTrie(trie.EmptyRoot)
	require.NoError(t, err)
	require.NoError(t, tr.Insert([]byte("do"), []byte("verb")))
	require.NoError(t, tr.Insert([]byte("dog"), []byte("puppy")))
	require.NoError(t, tr.Insert([]byte("doge"), []byte("coin")))
	require.NoError(t, tr.Insert([]byte("horse"), []byte("stallion")))

	root, err := db.Commit(tr)
	require.NoError(t, err)
	require.NotEqual(t, trie.EmptyRoot, root)

	reopened, err := db.OpenTrie(root)
	require.NoError(t, err)
	for k, v := range map[string]string{
		"do": "verb", "dog": "puppy", "doge": "coin", "horse": "stallion",
	} {
		got, err := reopened.At([]byte(k))
		require.NoError(t, err)
		require.Equal(t, v, string(got))
	}
}

func TestOpenEmptyRootNeedsNoStoreRoundTrip(t *testing.T) {
	db := New(store.NewMemory(), DefaultConfig)
	tr, err := db.OpenTrie(trie.EmptyRoot)
	require.NoError(t, err)
	require.Equal(t, trie.EmptyRoot, tr.RootDigest())
}

func TestOpenUnknownRootFails(t *testing.T) {
	db := New(store.NewMemory(), DefaultConfig)
	bogus := trie.EmptyRoot
	bogus[0] ^= 0xff
	_, err := db.OpenTrie(bogus)
	require.Error(t, err)
}

func TestCommitIsIncrementalAcrossGenerations(t *testing.T) {
	backend := store.NewMemory()
	db := New(backend, DefaultConfig)

	tr, err := db.OpenTrie(trie.EmptyRoot)
	require.NoError(t, err)
	require.NoError(t, tr.Insert([]byte("alpha"), []byte("1")))
	root1, err := db.Commit(tr)
	require.NoError(t, err)

	require.NoError(t, tr.Insert([]byte("beta"), []byte("2")))
	root2, err := db.Commit(tr)
	require.NoError(t, err)
	require.NotEqual(t, root1, root2)

	reopened1, err := db.OpenTrie(root1)
	require.NoError(t, err)
	got, err := reopened1.At([]byte("beta"))
	require.NoError(t, err)
	require.Nil(t, got)

	reopened2, err := db.OpenTrie(root2)
	require.NoError(t, err)
	got, err = reopened2.At([]byte("beta"))
	require.NoError(t, err)
	require.Equal(t, "2", string(got))
}

func TestResolveCachesDecodedNode(t *testing.T) {
	backend := store.NewMemory()
	db := New(backend, DefaultConfig)

	tr, err := db.OpenTrie(trie.EmptyRoot)
	require.NoError(t, err)
	require.NoError(t, tr.Insert([]byte("a-long-enough-key-to-force-hashing"), []byte("value-1")))
	require.NoError(t, tr.Insert([]byte("another-long-enough-key"), []byte("value-2")))
	root, err := db.Commit(tr)
	require.NoError(t, err)
	require.Zero(t, db.decoded.Len())

	reopened, err := db.OpenTrie(root)
	require.NoError(t, err)
	_, err = reopened.At([]byte("a-long-enough-key-to-force-hashing"))
	require.NoError(t, err)

	require.NotZero(t, db.decoded.Len())
}

func TestCommitSecurePreservesValuesByRawKey(t *testing.T) {
	db := New(store.NewMemory(), DefaultConfig)

	st, err := db.OpenSecureTrie(trie.EmptyRoot)
	require.NoError(t, err)
	require.NoError(t, st.Insert([]byte("alice"), []byte("100")))
	require.NoError(t, st.Insert([]byte("bob"), []byte("200")))

	root, err := db.CommitSecure(st)
	require.NoError(t, err)
	require.NotEqual(t, trie.EmptyRoot, root)

	reopened, err := db.OpenSecureTrie(root)
	require.NoError(t, err)
	got, err := reopened.At([]byte("alice"))
	require.NoError(t, err)
	require.Equal(t, "100", string(got))
}
