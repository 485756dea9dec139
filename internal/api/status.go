package api

import (
	"errors"
	"net/http"

	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
)

// statusFor maps a core error kind to the HTTP status the API layer
// responds with, per spec §7's propagation policy.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pulseerr.ErrBlockNotFound), errors.Is(err, pulseerr.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, pulseerr.ErrStorageUnavailable), errors.Is(err, pulseerr.ErrFlushFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, pulseerr.ErrShuttingDown):
		return http.StatusServiceUnavailable
	case errors.Is(err, pulseerr.ErrBadSignature),
		errors.Is(err, pulseerr.ErrBadEncoding),
		errors.Is(err, pulseerr.ErrBadPublicKey),
		errors.Is(err, pulseerr.ErrStaleTimestamp),
		errors.Is(err, pulseerr.ErrOutOfOrder),
		errors.Is(err, pulseerr.ErrDuplicateSignature),
		errors.Is(err, pulseerr.ErrDuplicateTxId),
		errors.Is(err, pulseerr.ErrMissingHeartbeat),
		errors.Is(err, pulseerr.ErrInsufficientFunds),
		errors.Is(err, pulseerr.ErrOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
