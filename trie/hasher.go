package trie

import (
	"sync"

	"github.com/radiation-octopus/octrie/digest"
	"github.com/radiation-octopus/octrie/recbin"
)

// hasher computes the canonical RecBin digest of a node tree
// bottom-up: for extension and branch nodes it builds a throwaway
// "collapsed" copy whose children have been replaced by their digest
// (or left embedded, if small enough), and returns alongside it a
// "cached" copy with the same full shape as the original but with the
// digest decision stashed on its flags, so a later hash/commit on an
// untouched subtree can skip it entirely. A leaf has no children to
// collapse and is not copied: its own flags are updated in place.
var hasherPool = sync.Pool{
	New: func() interface{} { return &hasher{} },
}

type hasher struct{}

func newHasher() *hasher {
	return hasherPool.Get().(*hasher)
}

func returnHasherToPool(h *hasher) {
	hasherPool.Put(h)
}

// hash collapses n into its hashed-or-embedded form, returning that
// alongside a structurally-intact copy with the digest cached on its
// flags.
func (h *hasher) hash(n Node) (hashed Node, cached Node) {
	if hn, dirty := n.cache(); !dirty {
		if hn != nil {
			return hn, n
		}
		return n, n
	}
	switch n := n.(type) {
	case *leafNode:
		return h.shrink(n, n)
	case *extensionNode:
		childHashed, childCached := h.hash(n.Val)
		collapsed := &extensionNode{Key: n.Key, Val: childHashed, flags: n.flags}
		cachedCopy := &extensionNode{Key: n.Key, Val: childCached, flags: n.flags}
		return h.shrink(collapsed, cachedCopy)
	case *branchNode:
		var collapsed, cachedCopy branchNode
		collapsed.flags, cachedCopy.flags = n.flags, n.flags
		collapsed.Value, cachedCopy.Value = n.Value, n.Value
		for i, c := range n.Children {
			if c != nil {
				collapsed.Children[i], cachedCopy.Children[i] = h.hash(c)
			}
		}
		return h.shrink(&collapsed, &cachedCopy)
	default:
		// HashNode and ValueNode have no children of their own.
		return n, n
	}
}

// shrink encodes collapsed and decides whether it is small enough to
// stay embedded or must be replaced by its digest, stashing the
// result on cached's flags and marking cached clean.
func (h *hasher) shrink(collapsed, cached Node) (Node, Node) {
	e := recbin.NewEncoder()
	collapsed.encode(e)
	enc := e.Out()

	if len(enc) < hashLen {
		setCachedHash(cached, nil)
		return collapsed, cached
	}
	hn := HashNode(digest.Sum(enc).Bytes())
	setCachedHash(cached, hn)
	return hn, cached
}

// setCachedHash stashes h on n's flags and marks n clean, so a future
// hash() call that reaches n unchanged can short-circuit.
func setCachedHash(n Node, h HashNode) {
	switch n := n.(type) {
	case *leafNode:
		n.flags = nodeFlag{hash: h, dirty: false}
	case *extensionNode:
		n.flags = nodeFlag{hash: h, dirty: false}
	case *branchNode:
		n.flags = nodeFlag{hash: h, dirty: false}
	}
}
