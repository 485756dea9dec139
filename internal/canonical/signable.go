// Package canonical implements the deterministic "signable" byte encoding
// that the device SDK and the node must produce byte-for-byte identically.
// It intentionally does not use encoding/json for the signable forms: a
// general-purpose encoder's float/integer rendering is not guaranteed to be
// stable across implementations, and the wire verification depends on exact
// bytes (spec Design Notes, "must be implemented from the specification, not
// by reusing a general-purpose JSON encoder").
package canonical

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

// formatFloat renders a float the way the signable encoding requires:
// always with a decimal point, shortest round-trip representation otherwise
// (so 72 renders as "72.0", 70.5 renders as "70.5").
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatFloat32(f float32) string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// EncodeHeartbeatSignable produces the compact, fixed-field-order byte
// encoding of the heartbeat fields that get signed:
//
//	{"timestamp":<u64>,"heart_rate":<u16>,"motion":{"x":<f64>,"y":<f64>,"z":<f64>},"temperature":<f32>,"device_pubkey":<qstr>}
func EncodeHeartbeatSignable(hb pulsetypes.Heartbeat) ([]byte, error) {
	if hb.DevicePubkey == "" {
		return nil, fmt.Errorf("device_pubkey: %w", pulseerr.ErrBadEncoding)
	}
	var b strings.Builder
	b.WriteString(`{"timestamp":`)
	b.WriteString(strconv.FormatUint(hb.Timestamp, 10))
	b.WriteString(`,"heart_rate":`)
	b.WriteString(strconv.FormatUint(uint64(hb.HeartRate), 10))
	b.WriteString(`,"motion":{"x":`)
	b.WriteString(formatFloat(hb.Motion.X))
	b.WriteString(`,"y":`)
	b.WriteString(formatFloat(hb.Motion.Y))
	b.WriteString(`,"z":`)
	b.WriteString(formatFloat(hb.Motion.Z))
	b.WriteString(`},"temperature":`)
	b.WriteString(formatFloat32(hb.Temperature))
	b.WriteString(`,"device_pubkey":`)
	b.WriteString(quoteString(hb.DevicePubkey))
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// EncodeTransactionSignable produces the compact, fixed-field-order byte
// encoding of the transaction fields that get signed, in the order
// tx_id, sender_pubkey, recipient_pubkey, amount, timestamp, heartbeat_signature.
func EncodeTransactionSignable(tx pulsetypes.Transaction) ([]byte, error) {
	if tx.TxID == "" || tx.SenderPubkey == "" {
		return nil, fmt.Errorf("tx_id/sender_pubkey: %w", pulseerr.ErrBadEncoding)
	}
	var b strings.Builder
	b.WriteString(`{"tx_id":`)
	b.WriteString(quoteString(tx.TxID))
	b.WriteString(`,"sender_pubkey":`)
	b.WriteString(quoteString(tx.SenderPubkey))
	b.WriteString(`,"recipient_pubkey":`)
	b.WriteString(quoteString(tx.RecipientPubkey))
	b.WriteString(`,"amount":`)
	b.WriteString(formatFloat(tx.Amount))
	b.WriteString(`,"timestamp":`)
	b.WriteString(strconv.FormatUint(tx.Timestamp, 10))
	b.WriteString(`,"heartbeat_signature":`)
	b.WriteString(quoteString(tx.HeartbeatSignature))
	b.WriteByte('}')
	return []byte(b.String()), nil
}
