package kvstore

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v2"

	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
)

// BadgerStore is the Store implementation backing persistent deployments. It
// wraps a single *badger.DB opened against --data-dir, folding the namespace
// into the key as "ns/key" so the on-disk layout matches the persisted
// layout described by the node's external interface contract.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (creating if absent) a Badger database rooted at dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %s: %v: %w", dir, err, pulseerr.ErrStorageUnavailable)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(ns, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nsKey(ns, key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapStorageErr("get", err)
	}
	return out, nil
}

func (s *BadgerStore) Put(ns, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(nsKey(ns, key), value)
	})
	return wrapStorageErr("put", err)
}

func (s *BadgerStore) Range(ns string, fn func(key string, value []byte) bool) error {
	prefix := []byte(ns + "/")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key()[len(prefix):])
			var cont bool
			err := item.Value(func(val []byte) error {
				cont = fn(key, val)
				return nil
			})
			if err != nil {
				return err
			}
			if !cont {
				break
			}
		}
		return nil
	})
	return wrapStorageErr("range", err)
}

// Flush forces all pending writes to stable storage. The block builder calls
// this exactly once at the end of each commit; only after it returns success
// are in-memory mutations considered durable.
func (s *BadgerStore) Flush() error {
	if err := s.db.Sync(); err != nil {
		return fmt.Errorf("kvstore: flush: %v: %w", err, pulseerr.ErrFlushFailed)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
