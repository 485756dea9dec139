package cryptoutil

import (
	"crypto/sha256"
	"encoding/asn1"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// GenerateKey returns a fresh secp256k1 keypair, used by tests and the
// device simulator.
func GenerateKey() (*btcec.PrivateKey, error) {
	return btcec.NewPrivateKey()
}

// PublicKeyHex returns the uncompressed SEC1 hex form of priv's public key.
func PublicKeyHex(priv *btcec.PrivateKey) string {
	return hex.EncodeToString(priv.PubKey().SerializeUncompressed())
}

// SignCompact signs SHA-256(signable) and returns the 64-byte r‖s signature
// as lowercase hex.
func SignCompact(priv *btcec.PrivateKey, signable []byte) (string, error) {
	hash := sha256.Sum256(signable)
	sig := ecdsa.Sign(priv, hash[:])

	der := sig.Serialize()
	var parsed derSig
	if _, err := asn1.Unmarshal(der, &parsed); err != nil {
		return "", err
	}

	out := make([]byte, compactSigLen)
	rBytes := parsed.R.Bytes()
	sBytes := parsed.S.Bytes()
	copy(out[32-len(rBytes):32], rBytes)
	copy(out[64-len(sBytes):64], sBytes)
	return hex.EncodeToString(out), nil
}
