// Package trie implements the Hex-Prefix Trie: a radix tree over
// nibble-keyed byte strings whose canonical RecBin serialization
// yields a single 256-bit digest identifying the entire mapping.
package trie

import (
	"fmt"

	"github.com/radiation-octopus/octrie/recbin"
)

var indices = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "a", "b", "c", "d", "e", "f"}

// Node is the tagged union of trie node shapes: leaf, extension,
// branch, and an embedded/hashed reference to a node stored
// elsewhere. Dispatch is by type switch rather than virtual methods,
// matching the teacher's node interface in spirit.
type Node interface {
	cache() (HashNode, bool)
	encode(e *recbin.Encoder)
	fstring(string) string
}

type (
	// leafNode holds the final segment of a key and its value.
	leafNode struct {
		Key   []byte // remaining nibble path, terminated
		Val   ValueNode
		flags nodeFlag
	}
	// extensionNode shares a common nibble prefix among its descendants.
	extensionNode struct {
		Key   []byte // non-empty, non-terminated nibble path
		Val   Node   // always a branch, or a HashNode/small-node reference to one
		flags nodeFlag
	}
	// branchNode has one slot per nibble value plus an optional value
	// for a key that terminates exactly at this node.
	branchNode struct {
		Children [16]Node
		Value    ValueNode
		flags    nodeFlag
	}

	// HashNode is a 32-byte digest standing in for a node too large to
	// embed inline (spec.md §4.3 "Canonical serialization").
	HashNode []byte
	// ValueNode is a raw stored value.
	ValueNode []byte
)

// nodeFlag carries cache-related metadata: the node's digest once
// computed, and whether it has been modified since.
type nodeFlag struct {
	hash  HashNode
	dirty bool
}

func (n *leafNode) cache() (HashNode, bool)      { return n.flags.hash, n.flags.dirty }
func (n *extensionNode) cache() (HashNode, bool) { return n.flags.hash, n.flags.dirty }
func (n *branchNode) cache() (HashNode, bool)    { return n.flags.hash, n.flags.dirty }
func (n HashNode) cache() (HashNode, bool)       { return nil, true }
func (n ValueNode) cache() (HashNode, bool)      { return nil, true }

func (n *leafNode) copy() *leafNode           { cp := *n; return &cp }
func (n *extensionNode) copy() *extensionNode { cp := *n; return &cp }
func (n *branchNode) copy() *branchNode       { cp := *n; return &cp }

func (n *leafNode) String() string      { return n.fstring("") }
func (n *extensionNode) String() string { return n.fstring("") }
func (n *branchNode) String() string    { return n.fstring("") }
func (n HashNode) String() string       { return n.fstring("") }
func (n ValueNode) String() string      { return n.fstring("") }

func (n *leafNode) fstring(ind string) string {
	return fmt.Sprintf("{%x: %v} ", n.Key, n.Val.fstring(ind+"  "))
}
func (n *extensionNode) fstring(ind string) string {
	return fmt.Sprintf("{%x: %v} ", n.Key, n.Val.fstring(ind+"  "))
}
func (n *branchNode) fstring(ind string) string {
	resp := fmt.Sprintf("[\n%s  ", ind)
	for i, child := range &n.Children {
		if child == nil {
			resp += fmt.Sprintf("%s: <nil> ", indices[i])
		} else {
			resp += fmt.Sprintf("%s: %v", indices[i], child.fstring(ind+"  "))
		}
	}
	if len(n.Value) > 0 {
		resp += fmt.Sprintf("value: %x ", []byte(n.Value))
	}
	return resp + fmt.Sprintf("\n%s] ", ind)
}
func (n HashNode) fstring(string) string  { return fmt.Sprintf("<%x> ", []byte(n)) }
func (n ValueNode) fstring(string) string { return fmt.Sprintf("%x ", []byte(n)) }

// encodeRef writes a child reference into e: nil for an absent
// child, the raw digest for a HashNode (or any node already known
// from a prior hash pass to need one), or the child's own encoding
// inline for anything small enough to embed.
func encodeRef(e *recbin.Encoder, n Node) {
	if n == nil {
		e.AppendBytes(nil)
		return
	}
	if hn, ok := n.(HashNode); ok {
		e.AppendBytes(hn)
		return
	}
	if hn, dirty := n.cache(); !dirty && hn != nil {
		e.AppendBytes(hn)
		return
	}
	n.encode(e)
}

func (n *leafNode) encode(e *recbin.Encoder) {
	e.AppendList(2)
	e.AppendBytes(hexToCompact(n.Key, true))
	e.AppendBytes(n.Val)
}

func (n *extensionNode) encode(e *recbin.Encoder) {
	e.AppendList(2)
	e.AppendBytes(hexToCompact(n.Key, false))
	encodeRef(e, n.Val)
}

func (n *branchNode) encode(e *recbin.Encoder) {
	e.AppendList(17)
	for _, c := range n.Children {
		encodeRef(e, c)
	}
	e.AppendBytes(n.Value)
}

func (n HashNode) encode(e *recbin.Encoder)  { e.AppendBytes(n) }
func (n ValueNode) encode(e *recbin.Encoder) { e.AppendBytes(n) }

// EncodeNode returns n's canonical RecBin encoding, used directly
// (rather than via the embed/hash-threshold path) when a caller wants
// a node's bytes regardless of size, e.g. rootEncoding().
func EncodeNode(n Node) []byte {
	e := recbin.NewEncoder()
	if n == nil {
		e.AppendBytes(nil)
	} else {
		n.encode(e)
	}
	return e.Out()
}
