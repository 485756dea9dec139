// Package devicesim stands in for a physical wearable: it holds a keypair
// and produces correctly-signed Heartbeat and Transaction values, so tests
// can drive the node without real hardware. The pulsenoded binary does not
// use it: --simulate only disables persistence and generates no heartbeats.
// Adapted from the teacher's empty internal/wallet package, which reserved
// this role ("key generation... transaction construction and signing") but
// never implemented it.
package devicesim

import (
	"fmt"
	"math/rand"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/google/uuid"

	"github.com/pulsenetwork/pulsenoded/internal/canonical"
	"github.com/pulsenetwork/pulsenoded/internal/cryptoutil"
	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

// Device is a simulated wearable with its own keypair.
type Device struct {
	priv   *btcec.PrivateKey
	pubkey string
}

// New generates a fresh device identity.
func New() (*Device, error) {
	priv, err := cryptoutil.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("devicesim: %w", err)
	}
	return &Device{priv: priv, pubkey: cryptoutil.PublicKeyHex(priv)}, nil
}

// Pubkey returns the device's uncompressed SEC1 public key hex.
func (d *Device) Pubkey() string { return d.pubkey }

// Heartbeat builds and signs a plausible heartbeat at the given timestamp.
// heartRate of 0 means "pick a resting value with jitter".
func (d *Device) Heartbeat(timestamp uint64, heartRate uint16) (pulsetypes.Heartbeat, error) {
	if heartRate == 0 {
		heartRate = uint16(60 + rand.Intn(40))
	}
	hb := pulsetypes.Heartbeat{
		Timestamp: timestamp,
		HeartRate: heartRate,
		Motion: pulsetypes.Motion{
			X: rand.Float64()*0.4 - 0.2,
			Y: rand.Float64()*0.4 - 0.2,
			Z: rand.Float64()*0.4 - 0.2,
		},
		Temperature:  float32(36.0 + rand.Float64()*1.5),
		DevicePubkey: d.pubkey,
	}
	signable, err := canonical.EncodeHeartbeatSignable(hb)
	if err != nil {
		return pulsetypes.Heartbeat{}, err
	}
	sig, err := cryptoutil.SignCompact(d.priv, signable)
	if err != nil {
		return pulsetypes.Heartbeat{}, err
	}
	hb.Signature = sig
	return hb, nil
}

// Transaction builds and signs a transfer from this device to recipient,
// conditioned on a heartbeat this device already submitted.
func (d *Device) Transaction(recipient string, amount float64, timestamp uint64, heartbeatSig string) (pulsetypes.Transaction, error) {
	tx := pulsetypes.Transaction{
		TxID:               uuid.NewString(),
		SenderPubkey:       d.pubkey,
		RecipientPubkey:    recipient,
		Amount:             amount,
		Timestamp:          timestamp,
		HeartbeatSignature: heartbeatSig,
	}
	signable, err := canonical.EncodeTransactionSignable(tx)
	if err != nil {
		return pulsetypes.Transaction{}, err
	}
	sig, err := cryptoutil.SignCompact(d.priv, signable)
	if err != nil {
		return pulsetypes.Transaction{}, err
	}
	tx.Signature = sig
	return tx, nil
}
