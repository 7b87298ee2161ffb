// Package invindex implements the inverted posting-list KV store: one
// entry per term, mapping to the set of documents (and term
// frequencies) it appears in. The config name ROCKSDB_PATH is kept for
// compatibility, but the backing engine is goleveldb (no cgo RocksDB
// binding is available — see DESIGN.md).
package invindex

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	lerr "github.com/syndtr/goleveldb/leveldb/errors"
)

// Store wraps a goleveldb handle plus the per-key locking needed
// around posting-list read-modify-write cycles.
type Store struct {
	db *leveldb.DB

	keyLocksMu sync.Mutex
	keyLocks   map[string]*sync.Mutex
}

// Open opens the posting-list database at path, recovering from
// corruption if necessary.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if lerr.IsCorrupted(err) {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, err
	}
	return &Store{db: db, keyLocks: make(map[string]*sync.Mutex)}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) lockFor(term string) *sync.Mutex {
	s.keyLocksMu.Lock()
	defer s.keyLocksMu.Unlock()
	m, ok := s.keyLocks[term]
	if !ok {
		m = &sync.Mutex{}
		s.keyLocks[term] = m
	}
	return m
}

// Get returns the posting list for term, or an empty (nil) posting if
// the term has never been indexed.
func (s *Store) Get(term string) (Posting, error) {
	data, err := s.db.Get([]byte(term), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// AddDoc performs a read-modify-write against the posting for term: if
// docID is already present with the same tf, it is a no-op
// (idempotent); if it is present with a different tf, that entry's tf
// is replaced; otherwise the posting is extended. Changed postings are
// written back. The read-modify-write is
// serialized per term key, the safe default for a single indexer
// worker per KV instance; running N workers additionally requires this
// same serialization to hold across processes, which a single
// in-process Store cannot provide by itself.
func (s *Store) AddDoc(term string, docID int64, tf uint64) error {
	lock := s.lockFor(term)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.Get(term)
	if err != nil {
		return err
	}

	updated, changed := current.Upsert(docID, tf)
	if !changed {
		return nil
	}
	return s.db.Put([]byte(term), Encode(updated), nil)
}
