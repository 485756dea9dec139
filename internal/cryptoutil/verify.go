// Package cryptoutil verifies the ECDSA-over-secp256k1 signatures carried by
// heartbeats and transactions. Public keys are uncompressed SEC1 (65 bytes),
// signatures are 64-byte compact r‖s, both hex-encoded at the interface —
// exactly the encoding the device SDK produces.
package cryptoutil

import (
	"crypto/sha256"
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
)

const (
	uncompressedPubkeyLen = 65
	compactSigLen         = 64
)

// derSig is the ASN.1 shape ecdsa.Signature serializes to/parses from; it is
// used purely as a bridge between the library's DER form and the 64-byte
// compact r‖s form the wire protocol specifies.
type derSig struct {
	R, S *big.Int
}

// Verify checks that sigHex is a valid 64-byte compact ECDSA signature over
// SHA-256(signable) under pubkeyHex.
func Verify(pubkeyHex, sigHex string, signable []byte) error {
	pub, err := parsePubkey(pubkeyHex)
	if err != nil {
		return err
	}
	sig, err := parseCompactSig(sigHex)
	if err != nil {
		return err
	}
	hash := sha256.Sum256(signable)
	if !sig.Verify(hash[:], pub) {
		return pulseerr.ErrBadSignature
	}
	return nil
}

func parsePubkey(pubkeyHex string) (*btcec.PublicKey, error) {
	raw, err := hex.DecodeString(pubkeyHex)
	if err != nil {
		return nil, fmt.Errorf("device_pubkey: %w", pulseerr.ErrBadPublicKey)
	}
	if len(raw) != uncompressedPubkeyLen {
		return nil, fmt.Errorf("device_pubkey: expected %d bytes, got %d: %w", uncompressedPubkeyLen, len(raw), pulseerr.ErrBadPublicKey)
	}
	pub, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("device_pubkey: %v: %w", err, pulseerr.ErrBadPublicKey)
	}
	return pub, nil
}

func parseCompactSig(sigHex string) (*ecdsa.Signature, error) {
	raw, err := hex.DecodeString(sigHex)
	if err != nil {
		return nil, fmt.Errorf("signature: %w", pulseerr.ErrBadSignature)
	}
	if len(raw) != compactSigLen {
		return nil, fmt.Errorf("signature: expected %d bytes, got %d: %w", compactSigLen, len(raw), pulseerr.ErrBadSignature)
	}
	r := new(big.Int).SetBytes(raw[:32])
	s := new(big.Int).SetBytes(raw[32:])
	der, err := asn1.Marshal(derSig{R: r, S: s})
	if err != nil {
		return nil, fmt.Errorf("signature: %w", pulseerr.ErrBadSignature)
	}
	sig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return nil, fmt.Errorf("signature: %w", pulseerr.ErrBadSignature)
	}
	return sig, nil
}
