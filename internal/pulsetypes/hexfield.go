package pulsetypes

import (
	"fmt"

	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
)

// ValidateLowerHex reports ErrBadEncoding if s is empty or contains any
// byte outside [0-9a-f] — every hex field at the wire boundary (pubkeys,
// signatures, heartbeat_signature) is specified as lowercase hex, and
// encoding/hex's decoders accept uppercase too, so that leniency has to be
// rejected explicitly here.
func ValidateLowerHex(field, s string) error {
	if s == "" {
		return fmt.Errorf("%s: empty: %w", field, pulseerr.ErrBadEncoding)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%s: not lowercase hex: %w", field, pulseerr.ErrBadEncoding)
		}
	}
	return nil
}
