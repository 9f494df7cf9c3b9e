package trie

import "fmt"

// MissingNodeError is returned when the persistent trie dereferences
// a digest not present in its node store (spec.md §7).
type MissingNodeError struct {
	NodeHash []byte
	Path     []byte
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("missing trie node %x (path %x)", e.NodeHash, e.Path)
}

// InvalidKeyError is returned for an empty key passed to a trie
// operation (spec.md §7).
type InvalidKeyError struct{}

func (e *InvalidKeyError) Error() string { return "trie: empty key" }
