package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

func hb(pubkey string, ts uint64) pulsetypes.Heartbeat {
	return pulsetypes.Heartbeat{DevicePubkey: pubkey, Timestamp: ts}
}

func TestTryAccept_OnePendingPerDevice(t *testing.T) {
	p := New()
	require.NoError(t, p.TryAccept(hb("dev1", 10)))
	require.NoError(t, p.TryAccept(hb("dev2", 10)))
	assert.Equal(t, 2, p.Size())

	require.NoError(t, p.TryAccept(hb("dev1", 20)))
	assert.Equal(t, 2, p.Size())
}

func TestTryAccept_RejectsOlderReplacement(t *testing.T) {
	p := New()
	require.NoError(t, p.TryAccept(hb("dev1", 20)))
	err := p.TryAccept(hb("dev1", 10))
	assert.ErrorIs(t, err, pulseerr.ErrOutOfOrder)
	assert.Equal(t, 1, p.Size())
}

func TestDrain_EmptiesPool(t *testing.T) {
	p := New()
	require.NoError(t, p.TryAccept(hb("dev1", 10)))
	require.NoError(t, p.TryAccept(hb("dev2", 10)))

	drained := p.Drain()
	assert.Len(t, drained, 2)
	assert.Equal(t, 0, p.Size())
}

func TestRestore_PutsHeartbeatsBack(t *testing.T) {
	p := New()
	require.NoError(t, p.TryAccept(hb("dev1", 10)))
	drained := p.Drain()

	p.Restore(drained)
	assert.Equal(t, 1, p.Size())
}

func TestRestore_DoesNotClobberNewerPending(t *testing.T) {
	p := New()
	require.NoError(t, p.TryAccept(hb("dev1", 10)))
	drained := p.Drain()

	// A fresher heartbeat arrives for the same device before Restore runs.
	require.NoError(t, p.TryAccept(hb("dev1", 50)))
	p.Restore(drained)

	pending := p.Drain()
	require.Len(t, pending, 1)
	assert.Equal(t, uint64(50), pending[0].Timestamp)
}
