// Package pulseerr declares the sentinel errors surfaced by the node's core,
// mirroring the error-kind taxonomy the API layer maps onto HTTP status codes.
package pulseerr

import "errors"

// Validation errors. These are reported to the caller and never mutate state.
var (
	ErrBadSignature        = errors.New("bad signature")
	ErrBadEncoding         = errors.New("bad encoding")
	ErrBadPublicKey        = errors.New("bad public key")
	ErrStaleTimestamp      = errors.New("stale timestamp")
	ErrOutOfOrder          = errors.New("heartbeat out of order")
	ErrDuplicateSignature  = errors.New("duplicate signature")
	ErrDuplicateTxId       = errors.New("duplicate transaction id")
	ErrMissingHeartbeat    = errors.New("referenced heartbeat not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrOutOfRange          = errors.New("value out of range")
)

// NotFound errors.
var (
	ErrBlockNotFound   = errors.New("block not found")
	ErrAccountNotFound = errors.New("account not found")
)

// Transient errors: the offending block is discarded, state rolls back, the
// builder retries at the next tick.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrFlushFailed        = errors.New("flush failed")
)

// Fatal errors: surfaced at startup only, the node refuses to start.
var (
	ErrCorruptLedger = errors.New("corrupt ledger")
)

// Lifecycle errors.
var (
	ErrShuttingDown = errors.New("shutting down")
)
