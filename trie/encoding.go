package trie

import "github.com/radiation-octopus/octrie/nibble"

// hexToCompact HP-encodes a node's nibble path for on-the-wire
// serialization, delegating the actual bit-packing to the nibble
// package (spec.md §4.2).
func hexToCompact(path []byte, terminated bool) []byte {
	return nibble.Encode(path, terminated)
}

// compactToHex reverses hexToCompact, recovering both the nibble path
// and whether it terminated at a value.
func compactToHex(compact []byte) (path []byte, terminated bool) {
	return nibble.Decode(compact)
}

func keyToHex(key []byte) []byte {
	return nibble.FromBytes(key)
}

// sharedPrefixLen is the nibble package's SharedPrefixLen under the
// name the insertion/deletion algorithm uses.
func sharedPrefixLen(a, b []byte) int {
	return nibble.SharedPrefixLen(a, b)
}
