package trie

import mapset "github.com/deckarep/golang-set"

// tracer tracks which node paths were freshly inserted or deleted
// since the last commit, so a persistent trie only has to publish or
// unpin digests that actually changed along a rewritten root-to-leaf
// path. Node paths, not node identities, are tracked: a node revived
// at the same path it was just deleted from is treated as untouched.
//
// Not safe for concurrent use; callers serialize trie mutations
// already (spec.md §5).
type tracer struct {
	insert mapset.Set // of string(path)
	delete mapset.Set
}

func newTracer() *tracer {
	return &tracer{insert: mapset.NewThreadUnsafeSet(), delete: mapset.NewThreadUnsafeSet()}
}

func (t *tracer) copy() *tracer {
	if t == nil {
		return nil
	}
	return &tracer{insert: t.insert.Clone(), delete: t.delete.Clone()}
}

func (t *tracer) reset() {
	if t == nil {
		return
	}
	t.insert = mapset.NewThreadUnsafeSet()
	t.delete = mapset.NewThreadUnsafeSet()
}

// onInsert records a freshly created node path. A path that was
// pending deletion is simply un-pended: the node was never actually
// removed from the caller's point of view.
func (t *tracer) onInsert(path []byte) {
	if t == nil {
		return
	}
	key := string(path)
	if t.delete.Contains(key) {
		t.delete.Remove(key)
		return
	}
	t.insert.Add(key)
}

// onDelete records a freshly removed node path, with the same
// cancel-out rule as onInsert.
func (t *tracer) onDelete(path []byte) {
	if t == nil {
		return
	}
	key := string(path)
	if t.insert.Contains(key) {
		t.insert.Remove(key)
		return
	}
	t.delete.Add(key)
}

// deletedPaths returns the node paths removed since the last reset,
// as the byte-path values (not the set's internal string form).
func (t *tracer) deletedPaths() [][]byte {
	if t == nil {
		return nil
	}
	out := make([][]byte, 0, t.delete.Cardinality())
	for v := range t.delete.Iter() {
		out = append(out, []byte(v.(string)))
	}
	return out
}
