package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

func sampleBlock() pulsetypes.PulseBlock {
	return pulsetypes.PulseBlock{
		Index:        3,
		Timestamp:    1700000000000,
		PreviousHash: "deadbeef",
		Heartbeats: []pulsetypes.Heartbeat{
			{Timestamp: 1, HeartRate: 70, DevicePubkey: "dev1", Signature: "sig1"},
		},
		Transactions: []pulsetypes.Transaction{
			{TxID: "t1", SenderPubkey: "dev1", RecipientPubkey: "dev2", Amount: 1, Timestamp: 1, HeartbeatSignature: "sig1", Signature: "sig2"},
		},
		NLive:       1,
		TotalWeight: 0.8,
		Security:    0.8,
	}
}

func TestHashBlock_Deterministic(t *testing.T) {
	blk := sampleBlock()
	h1, err := HashBlock(blk)
	require.NoError(t, err)
	h2, err := HashBlock(blk)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // lowercase hex of a 32-byte digest
}

func TestHashBlock_MutationChangesHash(t *testing.T) {
	blk := sampleBlock()
	base, err := HashBlock(blk)
	require.NoError(t, err)

	mutated := blk
	mutated.TotalWeight = blk.TotalWeight + 0.001
	changed, err := HashBlock(mutated)
	require.NoError(t, err)

	assert.NotEqual(t, base, changed)
}

func TestHashBlock_BlockHashFieldItselfIsNotCommittedTo(t *testing.T) {
	blk := sampleBlock()
	blk.BlockHash = "whatever-was-here-before"
	h1, err := HashBlock(blk)
	require.NoError(t, err)

	blk.BlockHash = "something-else-entirely"
	h2, err := HashBlock(blk)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestHashBlock_HeartbeatSignatureIsCommittedTo(t *testing.T) {
	blk := sampleBlock()
	base, err := HashBlock(blk)
	require.NoError(t, err)

	blk.Heartbeats[0].Signature = "different-signature"
	changed, err := HashBlock(blk)
	require.NoError(t, err)

	assert.NotEqual(t, base, changed)
}
