package trie

import (
	"bytes"

	"github.com/radiation-octopus/octrie/digest"
)

// EmptyRoot is the canonical digest of a trie with no entries: the
// digest of the encoding of a nil node, H(0x40) (spec.md §4.4).
var EmptyRoot = digest.Sum(EncodeNode(nil))

// Resolver loads a node by digest when a traversal reaches a HashNode
// that has not been materialized in memory. Insert and Remove never
// produce a live HashNode child, so a Trie that is never committed
// stays fully materialized and can leave resolver nil. Commit does
// replace committed non-root subtrees with their HashNode; a Trie
// without a resolver then reports a MissingNodeError for any later
// traversal into them. A persistent trie (triedb) supplies a resolver
// backed by a node store.
type Resolver interface {
	Resolve(hash HashNode, prefix []byte) (Node, error)
}

// Trie is the Hex-Prefix Trie: an ordered mapping from byte-string
// keys to byte-string values, addressed by nibble path, whose root
// digest (RootDigest) identifies the whole mapping (spec.md §4.3).
//
// A Trie is not safe for concurrent use; callers must serialize
// mutating calls, though concurrent read-only use of Copy'd tries is
// fine (spec.md §5).
type Trie struct {
	root     Node
	resolver Resolver
	tracer   *tracer
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{tracer: newTracer()}
}

// NewWithRoot returns a trie rooted at root, consulting resolver (if
// non-nil) to load any HashNode the traversal encounters that is not
// already materialized.
func NewWithRoot(root Node, resolver Resolver) *Trie {
	return &Trie{root: root, resolver: resolver, tracer: newTracer()}
}

func (t *Trie) resolveHash(n HashNode, prefix []byte) (Node, error) {
	if t.resolver == nil {
		return nil, &MissingNodeError{NodeHash: n, Path: prefix}
	}
	resolved, err := t.resolver.Resolve(n, prefix)
	if err != nil {
		return nil, &MissingNodeError{NodeHash: n, Path: prefix}
	}
	return resolved, nil
}

// At returns the value stored for key, or (nil, nil) if key is
// absent.
func (t *Trie) At(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, &InvalidKeyError{}
	}
	val, newroot, didResolve, err := t.at(t.root, keyToHex(key), 0)
	if err != nil {
		return nil, err
	}
	if didResolve {
		t.root = newroot
	}
	return val, nil
}

func (t *Trie) at(n Node, key []byte, pos int) (value []byte, newnode Node, didResolve bool, err error) {
	switch n := n.(type) {
	case nil:
		return nil, nil, false, nil
	case *leafNode:
		if bytes.Equal(n.Key, key[pos:]) {
			return n.Val, n, false, nil
		}
		return nil, n, false, nil
	case *extensionNode:
		if len(key)-pos < len(n.Key) || !bytes.Equal(n.Key, key[pos:pos+len(n.Key)]) {
			return nil, n, false, nil
		}
		value, newnode, didResolve, err = t.at(n.Val, key, pos+len(n.Key))
		if err == nil && didResolve {
			cp := n.copy()
			cp.Val = newnode
			newnode = cp
		} else {
			newnode = n
		}
		return value, newnode, didResolve, err
	case *branchNode:
		if pos == len(key) {
			return n.Value, n, false, nil
		}
		value, newnode, didResolve, err = t.at(n.Children[key[pos]], key, pos+1)
		if err == nil && didResolve {
			cp := n.copy()
			cp.Children[key[pos]] = newnode
			newnode = cp
		} else {
			newnode = n
		}
		return value, newnode, didResolve, err
	case HashNode:
		child, err := t.resolveHash(n, key[:pos])
		if err != nil {
			return nil, n, true, err
		}
		value, newnode, _, err = t.at(child, key, pos)
		return value, newnode, true, err
	default:
		panic("invalid node type")
	}
}

// Insert sets key's value to value, inserting key if absent.
// Inserting an empty value is equivalent to Remove (spec.md §4.3).
func (t *Trie) Insert(key, value []byte) error {
	if len(key) == 0 {
		return &InvalidKeyError{}
	}
	if len(value) == 0 {
		return t.Remove(key)
	}
	k := keyToHex(key)
	_, n, err := t.insert(t.root, nil, k, ValueNode(append([]byte{}, value...)))
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

// insert returns whether the subtree changed and the (possibly new)
// node to put in its place. prefix is the nibble path from the root
// to n, used for tracer bookkeeping and resolver lookups.
func (t *Trie) insert(n Node, prefix, key []byte, value ValueNode) (bool, Node, error) {
	if br, ok := n.(*branchNode); ok && len(key) == 0 {
		if bytes.Equal(br.Value, value) {
			return false, n, nil
		}
		cp := br.copy()
		cp.flags = nodeFlag{dirty: true}
		cp.Value = value
		return true, cp, nil
	}
	switch n := n.(type) {
	case nil:
		t.tracer.onInsert(prefix)
		return true, &leafNode{Key: append([]byte{}, key...), Val: value, flags: nodeFlag{dirty: true}}, nil

	case *leafNode:
		match := sharedPrefixLen(key, n.Key)
		if match == len(key) && match == len(n.Key) {
			if bytes.Equal(n.Val, value) {
				return false, n, nil
			}
			return true, &leafNode{Key: n.Key, Val: value, flags: nodeFlag{dirty: true}}, nil
		}
		branch := &branchNode{flags: nodeFlag{dirty: true}}
		var err error
		if match < len(n.Key) {
			_, branch.Children[n.Key[match]], err = t.insert(nil, concatNibbles(prefix, n.Key[:match+1]), n.Key[match+1:], n.Val)
		} else {
			branch.Value = n.Val
		}
		if err != nil {
			return false, nil, err
		}
		if match < len(key) {
			_, branch.Children[key[match]], err = t.insert(nil, concatNibbles(prefix, key[:match+1]), key[match+1:], value)
		} else {
			branch.Value = value
		}
		if err != nil {
			return false, nil, err
		}
		if match == 0 {
			return true, branch, nil
		}
		t.tracer.onInsert(prefix)
		return true, &extensionNode{Key: key[:match], Val: branch, flags: nodeFlag{dirty: true}}, nil

	case *extensionNode:
		match := sharedPrefixLen(key, n.Key)
		if match < len(n.Key) {
			branch := &branchNode{flags: nodeFlag{dirty: true}}
			if match+1 == len(n.Key) {
				branch.Children[n.Key[match]] = n.Val
			} else {
				branch.Children[n.Key[match]] = &extensionNode{Key: n.Key[match+1:], Val: n.Val, flags: nodeFlag{dirty: true}}
			}
			t.tracer.onDelete(prefix)
			var err error
			if match == len(key) {
				branch.Value = value
			} else {
				_, branch.Children[key[match]], err = t.insert(nil, concatNibbles(prefix, key[:match+1]), key[match+1:], value)
			}
			if err != nil {
				return false, nil, err
			}
			if match == 0 {
				return true, branch, nil
			}
			t.tracer.onInsert(prefix)
			return true, &extensionNode{Key: key[:match], Val: branch, flags: nodeFlag{dirty: true}}, nil
		}
		dirty, nn, err := t.insert(n.Val, concatNibbles(prefix, key[:match]), key[match:], value)
		if !dirty || err != nil {
			return false, n, err
		}
		return true, &extensionNode{Key: n.Key, Val: nn, flags: nodeFlag{dirty: true}}, nil

	case *branchNode:
		cp := n.copy()
		cp.flags = nodeFlag{dirty: true}
		dirty, nn, err := t.insert(n.Children[key[0]], concatNibbles(prefix, []byte{key[0]}), key[1:], value)
		if err != nil {
			return false, n, err
		}
		if !dirty {
			return false, n, nil
		}
		cp.Children[key[0]] = nn
		return true, cp, nil

	case HashNode:
		resolved, err := t.resolveHash(n, prefix)
		if err != nil {
			return false, n, err
		}
		dirty, nn, err := t.insert(resolved, prefix, key, value)
		if !dirty || err != nil {
			return false, resolved, err
		}
		return true, nn, nil

	default:
		panic("invalid node type")
	}
}

// Remove deletes key, if present. Removing an absent key is a no-op.
func (t *Trie) Remove(key []byte) error {
	if len(key) == 0 {
		return &InvalidKeyError{}
	}
	k := keyToHex(key)
	_, n, err := t.delete(t.root, nil, k)
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

func (t *Trie) delete(n Node, prefix, key []byte) (bool, Node, error) {
	switch n := n.(type) {
	case nil:
		return false, nil, nil

	case *leafNode:
		if !bytes.Equal(n.Key, key) {
			return false, n, nil
		}
		t.tracer.onDelete(prefix)
		return true, nil, nil

	case *extensionNode:
		match := sharedPrefixLen(key, n.Key)
		if match < len(n.Key) {
			return false, n, nil
		}
		dirty, nn, err := t.delete(n.Val, concatNibbles(prefix, key[:len(n.Key)]), key[len(n.Key):])
		if !dirty || err != nil {
			return false, n, err
		}
		switch child := nn.(type) {
		case *extensionNode:
			t.tracer.onDelete(prefix)
			return true, &extensionNode{Key: concatNibbles(n.Key, child.Key), Val: child.Val, flags: nodeFlag{dirty: true}}, nil
		case *leafNode:
			t.tracer.onDelete(prefix)
			return true, &leafNode{Key: concatNibbles(n.Key, child.Key), Val: child.Val, flags: nodeFlag{dirty: true}}, nil
		default:
			return true, &extensionNode{Key: n.Key, Val: nn, flags: nodeFlag{dirty: true}}, nil
		}

	case *branchNode:
		if len(key) == 0 {
			if len(n.Value) == 0 {
				return false, n, nil
			}
			return true, t.rejigBranch(n, prefix, -1), nil
		}
		dirty, nn, err := t.delete(n.Children[key[0]], concatNibbles(prefix, []byte{key[0]}), key[1:])
		if !dirty || err != nil {
			return false, n, err
		}
		if nn == nil {
			return true, t.rejigBranch(n, prefix, int(key[0])), nil
		}
		cp := n.copy()
		cp.flags = nodeFlag{dirty: true}
		cp.Children[key[0]] = nn
		return true, cp, nil

	case HashNode:
		resolved, err := t.resolveHash(n, prefix)
		if err != nil {
			return false, n, err
		}
		dirty, nn, err := t.delete(resolved, prefix, key)
		if !dirty || err != nil {
			return false, resolved, err
		}
		return true, nn, nil

	default:
		panic("invalid node type")
	}
}

// rejigBranch collapses a branchNode that, after removing the entry
// at removedSlot (or its own Value, if removedSlot is -1), has only
// one remaining child or value, since a branch with fewer than two
// alternatives is redundant: it folds into a leaf or extension of its
// lone remaining child, prepending the one nibble that used to select
// that child. removedSlot is already nil'd out in the returned shape;
// callers never see the branch itself in that case.
func (t *Trie) rejigBranch(n *branchNode, prefix []byte, removedSlot int) Node {
	cp := n.copy()
	if removedSlot >= 0 {
		cp.Children[removedSlot] = nil
	} else {
		cp.Value = nil
	}

	pos := -1
	count := 0
	for i, c := range cp.Children {
		if c != nil {
			pos = i
			count++
			if count > 1 {
				break
			}
		}
	}
	if count == 0 && len(cp.Value) == 0 {
		t.tracer.onDelete(prefix)
		return nil
	}
	if count == 0 {
		t.tracer.onDelete(prefix)
		return &leafNode{Key: nil, Val: cp.Value, flags: nodeFlag{dirty: true}}
	}
	if count == 1 && len(cp.Value) == 0 {
		child := cp.Children[pos]
		if hn, ok := child.(HashNode); ok {
			resolved, err := t.resolveHash(hn, concatNibbles(prefix, []byte{byte(pos)}))
			if err != nil {
				return n
			}
			child = resolved
		}
		t.tracer.onDelete(prefix)
		switch child := child.(type) {
		case *extensionNode:
			return &extensionNode{Key: concatNibbles([]byte{byte(pos)}, child.Key), Val: child.Val, flags: nodeFlag{dirty: true}}
		case *leafNode:
			return &leafNode{Key: concatNibbles([]byte{byte(pos)}, child.Key), Val: child.Val, flags: nodeFlag{dirty: true}}
		default:
			return &extensionNode{Key: []byte{byte(pos)}, Val: child, flags: nodeFlag{dirty: true}}
		}
	}
	cp.flags = nodeFlag{dirty: true}
	return cp
}

func concatNibbles(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// RootDigest returns the trie's canonical digest: the digest of its
// root node's full encoding, regardless of the root's own byte size
// (spec.md §4.4). An empty trie's digest is EmptyRoot.
func (t *Trie) RootDigest() digest.Hash {
	if t.root == nil {
		return EmptyRoot
	}
	h := newHasher()
	defer returnHasherToPool(h)
	_, cached := h.hash(t.root)
	t.root = cached
	return digest.Sum(EncodeNode(cached))
}

// RootEncoding returns the trie's canonical RecBin root encoding, the
// same bytes RootDigest hashes.
func (t *Trie) RootEncoding() []byte {
	if t.root == nil {
		return EncodeNode(nil)
	}
	h := newHasher()
	defer returnHasherToPool(h)
	_, cached := h.hash(t.root)
	t.root = cached
	return EncodeNode(cached)
}

// Copy returns an independent trie sharing the receiver's current
// node tree; subsequent mutations on either copy do not affect the
// other, since insert/delete never mutate a node in place.
func (t *Trie) Copy() *Trie {
	return &Trie{root: t.root, resolver: t.resolver, tracer: t.tracer.copy()}
}

// CommitNode is one node's canonical digest and encoding, produced by
// Commit for a node store to persist (spec.md §4.4).
type CommitNode struct {
	Path     []byte
	Hash     digest.Hash
	Encoding []byte
}

// Commit hashes every node changed since the last Commit and returns
// the new root digest alongside every CommitNode a store must write,
// in children-before-parent order (spec.md §4.4 "children are
// published before their parent"). Nodes below the root that still
// fit under the embedding threshold are folded back into their
// parent's encoding and are not recorded separately; committed
// non-root subtrees are replaced in the live tree by their HashNode,
// so memory does not grow without bound across repeated commits. A
// trie with a resolver can keep mutating past this point: a later
// traversal into a now-collapsed subtree resolves it on demand.
func (t *Trie) Commit() (digest.Hash, []CommitNode) {
	var out []CommitNode
	t.root = t.commitNode(t.root, nil, &out)
	t.tracer.reset()
	if t.root == nil {
		return EmptyRoot, out
	}
	return digest.Sum(EncodeNode(t.root)), out
}

func (t *Trie) commitNode(n Node, path []byte, out *[]CommitNode) Node {
	switch n := n.(type) {
	case nil:
		return nil
	case HashNode:
		return n
	case *leafNode:
		if !n.flags.dirty {
			return n
		}
		return shrinkAndRecord(n, path, out)
	case *extensionNode:
		if !n.flags.dirty {
			return n
		}
		n.Val = t.commitNode(n.Val, append(append([]byte{}, path...), n.Key...), out)
		return shrinkAndRecord(n, path, out)
	case *branchNode:
		if !n.flags.dirty {
			return n
		}
		for i, c := range n.Children {
			if c != nil {
				n.Children[i] = t.commitNode(c, append(append([]byte{}, path...), byte(i)), out)
			}
		}
		return shrinkAndRecord(n, path, out)
	default:
		return n
	}
}

// shrinkAndRecord encodes n and decides whether it is small enough to
// stay embedded in its parent, or must be replaced by its digest: the
// same threshold the hasher applies, except the root is always
// recorded (spec.md §4.4) and is never itself replaced by a HashNode,
// since a live Trie always needs its root's actual shape in hand.
func shrinkAndRecord(n Node, path []byte, out *[]CommitNode) Node {
	enc := EncodeNode(n)
	isRoot := len(path) == 0
	d := digest.Sum(enc)

	if len(enc) < hashLen {
		setCachedHash(n, nil)
		if isRoot {
			*out = append(*out, CommitNode{Hash: d, Encoding: enc})
		}
		return n
	}
	hn := HashNode(d.Bytes())
	setCachedHash(n, hn)
	*out = append(*out, CommitNode{Path: append([]byte{}, path...), Hash: d, Encoding: enc})
	if isRoot {
		return n
	}
	return hn
}

// DeletedPaths returns the node paths removed since the last Commit,
// so a node store can unpin/kill the digests that used to live there
// (spec.md §4.4 "old digests along the rewritten path are unpinned").
func (t *Trie) DeletedPaths() [][]byte {
	return t.tracer.deletedPaths()
}
