// Package engine implements the persistent KeyValueStore described in
// SPEC_FULL.md §4.2: an ordered, byte-lexicographic key/value store backed
// by badger, used for TLog metadata and for spilled message blobs.
package engine

import (
	"github.com/coocood/badger"
	"github.com/pingcap/errors"
)

// Store is the persistent KeyValueStore interface from spec.md §4.2,
// backed by a single badger.DB per group.
type Store struct {
	db   *badger.DB
	path string
}

func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return errors.WithStack(s.db.Close())
}

// ReadValue returns the committed value for key, or (nil, false) if absent.
func (s *Store) ReadValue(key []byte) ([]byte, bool, error) {
	var val []byte
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		val, err = item.Value()
		return err
	})
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	return val, found, nil
}

// KV is a single key/value pair returned by ReadRange.
type KV struct {
	Key   []byte
	Value []byte
}

// ReadRange returns every committed key in [start, end) in key order.
func (s *Store) ReadRange(start, end []byte) ([]KV, error) {
	var out []KV
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(start); it.Valid(); it.Next() {
			item := it.Item()
			if ExceedEndKey(item.Key(), end) {
				break
			}
			val, err := item.Value()
			if err != nil {
				return err
			}
			out = append(out, KV{Key: item.KeyCopy(nil), Value: append([]byte{}, val...)})
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

func ExceedEndKey(current, end []byte) bool {
	if end == nil {
		return false
	}
	return compare(current, end) >= 0
}

func compare(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// WriteBatch accumulates set/clear operations for one atomic Commit. It
// mirrors the teacher's engine_util.WriteBatch: build up entries, then
// flush them to badger in a single transaction.
type WriteBatch struct {
	entries []badgerEntry
}

type badgerEntry struct {
	key    []byte
	value  []byte
	delete bool
}

func (wb *WriteBatch) Set(key, value []byte) {
	wb.entries = append(wb.entries, badgerEntry{key: key, value: value})
}

func (wb *WriteBatch) Clear(key []byte) {
	wb.entries = append(wb.entries, badgerEntry{key: key, delete: true})
}

// ClearRange deletes every key currently in [start, end).
func (wb *WriteBatch) ClearRange(s *Store, start, end []byte) error {
	kvs, err := s.ReadRange(start, end)
	if err != nil {
		return err
	}
	for _, kv := range kvs {
		wb.Clear(kv.Key)
	}
	return nil
}

func (wb *WriteBatch) Len() int { return len(wb.entries) }

func (wb *WriteBatch) Reset() { wb.entries = wb.entries[:0] }

// Commit flushes the batch to the store in one badger transaction. Commits
// are serialized by the caller via a persistentDataCommitLock (spec.md §5)
// so concurrent group actors never interleave transactions.
func (wb *WriteBatch) Commit(s *Store) error {
	if len(wb.entries) == 0 {
		return nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, e := range wb.entries {
			if e.delete {
				if err := txn.Delete(e.key); err != nil && err != badger.ErrKeyNotFound {
					return err
				}
				continue
			}
			if err := txn.SetEntry(&badger.Entry{Key: e.key, Value: e.value}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}
	wb.Reset()
	return nil
}
