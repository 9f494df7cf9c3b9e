package store

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	minCache   = 16 // MB
	minHandles = 16
)

// LevelDB is a disk-backed Backend wrapping goleveldb, grounded on the
// teacher's typedb/leveldb.Database: same cache/handle floor and
// corruption-recovery fallback, trimmed of the metrics-gathering
// goroutine the teacher runs (no metrics surface is named by this
// module, spec.md Non-goals).
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if absent) a LevelDB-backed node store
// at file, with cacheMB of block/write-buffer cache and handles open
// file descriptors, both floored at the teacher's minimums.
func OpenLevelDB(file string, cacheMB, handles int) (*LevelDB, error) {
	if cacheMB < minCache {
		cacheMB = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	options := &opt.Options{
		Filter:                 filter.NewBloomFilter(10),
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cacheMB / 2 * opt.MiB,
		WriteBuffer:            cacheMB / 4 * opt.MiB,
	}
	db, err := leveldb.OpenFile(file, options)
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

func (l *LevelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *LevelDB) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}
