// Package digest provides the collision-resistant hash collaborator
// H(bytes) -> 32 bytes that recbin and trie treat as an external
// dependency (spec.md §6.3).
package digest

import (
	"hash"
	"sync"

	"golang.org/x/crypto/sha3"
)

// Length is the size in bytes of a digest.
const Length = 32

// Hash is a 32-byte digest.
type Hash [Length]byte

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte { return h[:] }

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) String() string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, 2+len(h)*2)
	buf[0], buf[1] = '0', 'x'
	for i, b := range h {
		buf[2+i*2] = hextable[b>>4]
		buf[2+i*2+1] = hextable[b&0x0f]
	}
	return string(buf)
}

// BytesToHash sets the hash's bytes to b, left-padding with zeros or,
// when b is longer than Length, keeping only its last Length bytes
// (cropping from the left). Mirrors the teacher's
// entity.BytesToHash.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > Length {
		b = b[len(b)-Length:]
	}
	copy(h[Length-len(b):], b)
	return h
}

var hasherPool = sync.Pool{
	New: func() interface{} { return sha3.NewLegacyKeccak256() },
}

// Sum is the collision-resistant hash function H required by
// spec.md §6.3: H(bytes) -> 32 bytes. It is Keccak-256, the hash the
// teacher's crypto.Keccak256 uses throughout the trie and RecBin
// codec.
func Sum(data ...[]byte) Hash {
	h := hasherPool.Get().(hash.Hash)
	defer hasherPool.Put(h)
	h.Reset()
	for _, b := range data {
		h.Write(b)
	}
	var out Hash
	h.Sum(out[:0])
	return out
}
