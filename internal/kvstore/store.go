// Package kvstore is the narrow persistence interface the chain engine uses.
// It deliberately exposes only get/put/range/flush (plus Close) — the on-disk database
// implementation (and its compaction, transactions, and tuning knobs) is an
// external collaborator whose contract this package describes, not owns.
package kvstore

import (
	"errors"
	"fmt"

	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
)

// ErrNotFound is returned by Get when the key does not exist in ns.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the crash-consistent single-key get/put/range/flush contract the
// chain engine depends on. Namespaces used by the core: "blocks",
// "accounts", "meta".
type Store interface {
	Get(ns, key string) ([]byte, error)
	Put(ns, key string, value []byte) error
	// Range calls fn for every key/value pair in ns, in unspecified order.
	// Iteration stops early if fn returns false.
	Range(ns string, fn func(key string, value []byte) bool) error
	Flush() error
	Close() error
}

func nsKey(ns, key string) []byte {
	return []byte(ns + "/" + key)
}

// wrapStorageErr wraps a backend error in pulseerr.ErrStorageUnavailable
// (one of the transient error kinds), matching the "KV write or flush failure aborts the block and is
// logged" contract from the block builder.
func wrapStorageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("kvstore: %s: %v: %w", op, err, pulseerr.ErrStorageUnavailable)
}
