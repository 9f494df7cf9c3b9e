// Package triedb implements C4, the persistent trie over a node
// store: it wraps a store.Backend with the caching layers needed to
// make repeated lookups and commits fast, and supplies trie.Trie the
// trie.Resolver it needs to dereference a HashNode it does not have
// materialized in memory.
package triedb

import (
	"fmt"

	"github.com/VictoriaMetrics/fastcache"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/radiation-octopus/octrie/digest"
	"github.com/radiation-octopus/octrie/store"
	"github.com/radiation-octopus/octrie/trie"
)

// Config mirrors the teacher's trie.Config: a plain struct, no
// flag/env parsing, since this module has no cmd/ entrypoint
// (spec.md §1 Non-goals).
type Config struct {
	// CleanCacheMB bounds the size of the clean (encoded-bytes)
	// node cache, in megabytes.
	CleanCacheMB int
	// DecodedCacheSize bounds the number of decoded node objects kept
	// in the hot LRU tier, avoiding repeated RecBin decodes of the
	// same node.
	DecodedCacheSize int
}

// DefaultConfig matches the teacher's own defaults order of magnitude
// for a small embedded deployment.
var DefaultConfig = Config{CleanCacheMB: 16, DecodedCacheSize: 4096}

// Database is the persistent counterpart to trie.Trie: a store.Backend
// plus a two-tier read cache (teacher's octopus_trie_database.go
// `cleans *fastcache.Cache`, enriched here with a second LRU tier of
// already-decoded nodes per SPEC_FULL.md's DOMAIN STACK). It
// implements trie.Resolver.
type Database struct {
	backend store.Backend
	clean   *fastcache.Cache  // digest -> encoded node bytes
	decoded *lru.Cache        // digest (string) -> trie.Node
	log     *logrus.Entry
}

// New wraps backend with the caching layers described by cfg.
func New(backend store.Backend, cfg Config) *Database {
	decoded, _ := lru.New(cfg.DecodedCacheSize)
	return &Database{
		backend: backend,
		clean:   fastcache.New(cfg.CleanCacheMB * 1024 * 1024),
		decoded: decoded,
		log:     logrus.WithField("component", "triedb"),
	}
}

// Resolve implements trie.Resolver: it loads and decodes the node
// stored under hash, consulting the decoded-object cache, then the
// clean-bytes cache, before finally falling back to the backend.
func (d *Database) Resolve(hash trie.HashNode, prefix []byte) (trie.Node, error) {
	key := string(hash)
	if v, ok := d.decoded.Get(key); ok {
		return v.(trie.Node), nil
	}
	enc, ok := d.clean.HasGet(nil, hash)
	if !ok {
		var err error
		enc, err = d.backend.Get(hash)
		if err != nil {
			return nil, fmt.Errorf("triedb: resolve %x: %w", []byte(hash), err)
		}
		d.clean.Set(append([]byte{}, hash...), enc)
	}
	n, err := trie.DecodeNode(append(trie.HashNode{}, hash...), enc)
	if err != nil {
		return nil, fmt.Errorf("triedb: decode %x: %w", []byte(hash), err)
	}
	d.decoded.Add(key, n)
	return n, nil
}

// OpenTrie returns a trie.Trie rooted at root, resolving nodes through
// d as the traversal needs them. root == the canonical empty digest
// returns a fresh empty trie with no store round-trip.
func (d *Database) OpenTrie(root digest.Hash) (*trie.Trie, error) {
	if root == trie.EmptyRoot {
		return trie.NewWithRoot(nil, d), nil
	}
	n, err := d.Resolve(trie.HashNode(root.Bytes()), nil)
	if err != nil {
		return nil, err
	}
	return trie.NewWithRoot(n, d), nil
}

// OpenSecureTrie is OpenTrie for the hashed-key wrapper (spec.md
// §4 supplemented feature "secure/hashed-key wrapper").
func (d *Database) OpenSecureTrie(root digest.Hash) (*trie.SecureTrie, error) {
	if root == trie.EmptyRoot {
		return trie.NewSecureWithRoot(nil, d), nil
	}
	n, err := d.Resolve(trie.HashNode(root.Bytes()), nil)
	if err != nil {
		return nil, err
	}
	return trie.NewSecureWithRoot(n, d), nil
}

// committer is satisfied by both *trie.Trie and *trie.SecureTrie, so
// Commit/CommitSecure share one code path.
type committer interface {
	Commit() (digest.Hash, []trie.CommitNode)
}

// Commit hashes t bottom-up, writes every node the commit touched to
// the backend, and warms the clean-bytes cache with what was just
// written (the decoded-node cache is filled only by Resolve). It
// returns t's new root digest.
//
// The trie's DeletedPaths are not consulted and nothing is deleted
// from the backend: RecBin node encodings are content-addressed and a digest
// that is no longer reachable from this root may still be shared by
// another live root, so the backend needs reference counting (not
// implemented here) before it can safely reclaim storage.
func (d *Database) Commit(t *trie.Trie) (digest.Hash, error) {
	return d.commit(t)
}

// CommitSecure is Commit for a SecureTrie.
func (d *Database) CommitSecure(s *trie.SecureTrie) (digest.Hash, error) {
	return d.commit(s)
}

func (d *Database) commit(c committer) (digest.Hash, error) {
	root, nodes := c.Commit()
	for _, n := range nodes {
		key := n.Hash.Bytes()
		if err := d.backend.Put(key, n.Encoding); err != nil {
			return digest.Hash{}, fmt.Errorf("triedb: commit %x: %w", key, err)
		}
		d.clean.Set(append([]byte{}, key...), n.Encoding)
	}
	d.log.WithFields(logrus.Fields{"nodes": len(nodes), "root": root.String()}).Debug("persisted trie nodes")
	return root, nil
}

// Close releases the backend.
func (d *Database) Close() error {
	return d.backend.Close()
}
