package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

// EncodeBlockSignable produces the compact, fixed-field-order encoding of a
// PulseBlock with block_hash omitted, per the field order
// index, timestamp, previous_hash, heartbeats, transactions, n_live,
// total_weight, security. Heartbeats and transactions are serialized in
// their accepted order.
func EncodeBlockSignable(blk pulsetypes.PulseBlock) ([]byte, error) {
	var b strings.Builder
	b.WriteString(`{"index":`)
	b.WriteString(strconv.FormatUint(blk.Index, 10))
	b.WriteString(`,"timestamp":`)
	b.WriteString(strconv.FormatUint(blk.Timestamp, 10))
	b.WriteString(`,"previous_hash":`)
	b.WriteString(quoteString(blk.PreviousHash))
	b.WriteString(`,"heartbeats":[`)
	for i, hb := range blk.Heartbeats {
		if i > 0 {
			b.WriteByte(',')
		}
		hbBytes, err := EncodeHeartbeatSignable(hb)
		if err != nil {
			return nil, err
		}
		// The signature is part of the accepted heartbeat but not part of its
		// signable form; append it explicitly so the block commits to it too.
		b.WriteString(`{"heartbeat":`)
		b.Write(hbBytes)
		b.WriteString(`,"signature":`)
		b.WriteString(quoteString(hb.Signature))
		b.WriteByte('}')
	}
	b.WriteString(`],"transactions":[`)
	for i, tx := range blk.Transactions {
		if i > 0 {
			b.WriteByte(',')
		}
		txBytes, err := EncodeTransactionSignable(tx)
		if err != nil {
			return nil, err
		}
		b.WriteString(`{"transaction":`)
		b.Write(txBytes)
		b.WriteString(`,"signature":`)
		b.WriteString(quoteString(tx.Signature))
		b.WriteByte('}')
	}
	b.WriteString(`],"n_live":`)
	b.WriteString(strconv.Itoa(blk.NLive))
	b.WriteString(`,"total_weight":`)
	b.WriteString(formatFloat(blk.TotalWeight))
	b.WriteString(`,"security":`)
	b.WriteString(formatFloat(blk.Security))
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// HashBlock computes the SHA-256 of the block's canonical encoding and
// returns it as lowercase hex.
func HashBlock(blk pulsetypes.PulseBlock) (string, error) {
	enc, err := EncodeBlockSignable(blk)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(enc)
	return hex.EncodeToString(sum[:]), nil
}
