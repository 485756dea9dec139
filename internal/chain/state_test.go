package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

func TestNewState_StartsEmpty(t *testing.T) {
	s := newState()
	assert.Equal(t, int64(-1), s.TipIndex())
	assert.Equal(t, "", s.TipHash())
	assert.Empty(t, s.Accounts())
}

func TestAccount_CreatesZeroValueOnFirstAccess(t *testing.T) {
	s := newState()
	s.mu.Lock()
	acc := s.account("dev1")
	s.mu.Unlock()

	assert.Equal(t, "dev1", acc.Pubkey)
	assert.Equal(t, 0.0, acc.Balance)

	got, ok := s.Account("dev1")
	assert.True(t, ok)
	assert.Equal(t, "dev1", got.Pubkey)
}

func TestBlocks_PaginatesAndReportsTotal(t *testing.T) {
	s := newState()
	for i := uint64(0); i < 5; i++ {
		s.blocks = append(s.blocks, pulsetypes.PulseBlock{Index: i})
	}

	page, total := s.Blocks(1, 2)
	assert.Equal(t, 5, total)
	if assert.Len(t, page, 2) {
		assert.Equal(t, uint64(1), page[0].Index)
		assert.Equal(t, uint64(2), page[1].Index)
	}
}

func TestBlocks_OffsetPastEndReturnsEmpty(t *testing.T) {
	s := newState()
	s.blocks = append(s.blocks, pulsetypes.PulseBlock{Index: 0})

	page, total := s.Blocks(5, 10)
	assert.Nil(t, page)
	assert.Equal(t, 1, total)
}

func TestHasRecentSig(t *testing.T) {
	s := newState()
	assert.False(t, s.HasRecentSig("sig1"))
	s.recentSigs["sig1"] = recentSig{DevicePubkey: "dev1", Timestamp: 100}
	assert.True(t, s.HasRecentSig("sig1"))
}
