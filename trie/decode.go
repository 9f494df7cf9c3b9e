package trie

import (
	"fmt"
	"strings"

	"github.com/radiation-octopus/octrie/recbin"
)

const hashLen = 32

// DecodeNode parses a node's RecBin encoding. hash, if non-nil, is
// recorded on the decoded node's flags so the hasher can skip
// recomputing a digest it already knows.
func DecodeNode(hash, buf []byte) (Node, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("trie: empty node encoding")
	}
	d := recbin.NewDecoder(buf)
	if !d.IsList() {
		return nil, fmt.Errorf("trie: node encoding is not a list")
	}
	n, err := d.Len()
	if err != nil {
		return nil, err
	}
	switch n {
	case 2:
		node, err := decodeTwoList(hash, d)
		return node, wrapError(err, "two-item node")
	case 17:
		node, err := decodeBranch(hash, d)
		return node, wrapError(err, "branch")
	default:
		return nil, fmt.Errorf("trie: invalid node arity %d", n)
	}
}

func decodeTwoList(hash []byte, d recbin.Decoder) (Node, error) {
	keyItem, err := d.Elem(0)
	if err != nil {
		return nil, err
	}
	kbuf, err := keyItem.Bytes()
	if err != nil {
		return nil, err
	}
	path, terminated := compactToHex(kbuf)

	valItem, err := d.Elem(1)
	if err != nil {
		return nil, err
	}
	if terminated {
		val, err := valItem.Bytes()
		if err != nil {
			return nil, fmt.Errorf("invalid leaf value: %w", err)
		}
		return &leafNode{Key: path, Val: append(ValueNode{}, val...), flags: nodeFlag{hash: hash}}, nil
	}
	child, err := decodeRef(valItem)
	if err != nil {
		return nil, wrapError(err, "child")
	}
	return &extensionNode{Key: path, Val: child, flags: nodeFlag{hash: hash}}, nil
}

func decodeBranch(hash []byte, d recbin.Decoder) (*branchNode, error) {
	n := &branchNode{flags: nodeFlag{hash: hash}}
	for i := 0; i < 16; i++ {
		item, err := d.Elem(i)
		if err != nil {
			return n, wrapError(err, fmt.Sprintf("[%d]", i))
		}
		child, err := decodeRef(item)
		if err != nil {
			return n, wrapError(err, fmt.Sprintf("[%d]", i))
		}
		n.Children[i] = child
	}
	valItem, err := d.Elem(16)
	if err != nil {
		return n, err
	}
	val, err := valItem.Bytes()
	if err != nil {
		return n, err
	}
	if len(val) > 0 {
		n.Value = append(ValueNode{}, val...)
	}
	return n, nil
}

// decodeRef decodes a child reference: absent (empty string), an
// embedded node (a list, small enough to have been inlined), or a
// 32-byte digest.
func decodeRef(d recbin.Decoder) (Node, error) {
	switch {
	case d.IsList():
		raw := d.Raw()
		if len(raw) >= hashLen {
			return nil, fmt.Errorf("oversized embedded node (%d bytes, want < %d)", len(raw), hashLen)
		}
		return DecodeNode(nil, raw)
	case d.IsString():
		b, err := d.Bytes()
		if err != nil {
			return nil, err
		}
		switch len(b) {
		case 0:
			return nil, nil
		case hashLen:
			return append(HashNode{}, b...), nil
		default:
			return nil, fmt.Errorf("invalid reference size %d (want 0 or %d)", len(b), hashLen)
		}
	default:
		return nil, fmt.Errorf("invalid reference encoding")
	}
}

// decodeError wraps a decode failure with the path of node shapes it
// passed through, so a caller can see where a corrupt encoding was
// found (teacher's decodeError/wrapError pattern).
type decodeError struct {
	what  error
	stack []string
}

func wrapError(err error, ctx string) error {
	if err == nil {
		return nil
	}
	if de, ok := err.(*decodeError); ok {
		de.stack = append(de.stack, ctx)
		return de
	}
	return &decodeError{err, []string{ctx}}
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("%v (decode path: %s)", e.what, strings.Join(e.stack, "<-"))
}

func (e *decodeError) Unwrap() error { return e.what }
