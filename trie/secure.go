package trie

import "github.com/radiation-octopus/octrie/digest"

// SecureTrie wraps a Trie so that keys are stored hashed through
// digest.Sum rather than as raw bytes, and keeps a key-preimage side
// table so a caller can recover the original key from its hashed
// form. It composes on top of the raw, spec-mandated Trie rather than
// replacing it (teacher's SecureTrie/secKeyCache).
//
// Not safe for concurrent use, same as the Trie it wraps.
type SecureTrie struct {
	trie      *Trie
	preimages map[digest.Hash][]byte
}

// NewSecure wraps an empty trie.
func NewSecure() *SecureTrie {
	return &SecureTrie{trie: New(), preimages: make(map[digest.Hash][]byte)}
}

// NewSecureWithRoot wraps a trie rooted at root, resolving through
// resolver the same way NewWithRoot does.
func NewSecureWithRoot(root Node, resolver Resolver) *SecureTrie {
	return &SecureTrie{trie: NewWithRoot(root, resolver), preimages: make(map[digest.Hash][]byte)}
}

func hashedKey(key []byte) digest.Hash {
	return digest.Sum(key)
}

// At returns the value stored for key.
func (s *SecureTrie) At(key []byte) ([]byte, error) {
	return s.trie.At(hashedKey(key).Bytes())
}

// Insert sets key's value, recording key's preimage so GetPreimage
// can recover it later.
func (s *SecureTrie) Insert(key, value []byte) error {
	hk := hashedKey(key)
	if err := s.trie.Insert(hk.Bytes(), value); err != nil {
		return err
	}
	s.preimages[hk] = append([]byte{}, key...)
	return nil
}

// Remove deletes key, if present.
func (s *SecureTrie) Remove(key []byte) error {
	hk := hashedKey(key)
	if err := s.trie.Remove(hk.Bytes()); err != nil {
		return err
	}
	delete(s.preimages, hk)
	return nil
}

// GetPreimage returns the original key that hashes to hk, if this
// SecureTrie has seen it inserted.
func (s *SecureTrie) GetPreimage(hk digest.Hash) ([]byte, bool) {
	k, ok := s.preimages[hk]
	return k, ok
}

// RootDigest returns the underlying trie's root digest.
func (s *SecureTrie) RootDigest() digest.Hash { return s.trie.RootDigest() }

// RootEncoding returns the underlying trie's canonical root encoding.
func (s *SecureTrie) RootEncoding() []byte { return s.trie.RootEncoding() }

// Commit commits the underlying trie.
func (s *SecureTrie) Commit() (digest.Hash, []CommitNode) { return s.trie.Commit() }

// Copy returns an independent SecureTrie sharing the receiver's
// current node tree and preimage table; subsequent inserts into
// either copy's preimage table do not affect the other.
func (s *SecureTrie) Copy() *SecureTrie {
	preimages := make(map[digest.Hash][]byte, len(s.preimages))
	for k, v := range s.preimages {
		preimages[k] = v
	}
	return &SecureTrie{trie: s.trie.Copy(), preimages: preimages}
}
