package chain

import (
	"fmt"

	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

// Health always returns "ok"; its presence as a method (rather than a
// constant at the call site) keeps the query surface uniform and gives the
// API layer a single place to wire a future liveness check.
func (e *Engine) Health() string { return "ok" }

// ChainInfo returns height, latest hash, and current heartbeat pool size.
func (e *Engine) ChainInfo() pulsetypes.ChainInfo {
	return pulsetypes.ChainInfo{
		Height:            e.state.TipIndex(),
		LatestHash:        e.state.TipHash(),
		HeartbeatPoolSize: e.pool.Size(),
	}
}

// Stats returns the rolling-window NetworkStats.
func (e *Engine) Stats() pulsetypes.NetworkStats {
	e.state.mu.RLock()
	defer e.state.mu.RUnlock()
	return e.state.stats()
}

// GetBlock returns the block at index, or ErrBlockNotFound.
func (e *Engine) GetBlock(index uint64) (pulsetypes.PulseBlock, error) {
	blk, ok := e.state.Block(index)
	if !ok {
		return pulsetypes.PulseBlock{}, fmt.Errorf("block %d: %w", index, pulseerr.ErrBlockNotFound)
	}
	return blk, nil
}

// LatestBlock returns the tip block, or ErrBlockNotFound on an empty chain.
func (e *Engine) LatestBlock() (pulsetypes.PulseBlock, error) {
	idx := e.state.TipIndex()
	if idx < 0 {
		return pulsetypes.PulseBlock{}, fmt.Errorf("chain is empty: %w", pulseerr.ErrBlockNotFound)
	}
	return e.GetBlock(uint64(idx))
}

// ListBlocks returns blocks[offset:offset+limit] (or the whole chain, oldest
// first, when both are zero) and the total chain length.
func (e *Engine) ListBlocks(offset, limit int) ([]pulsetypes.PulseBlock, int) {
	return e.state.Blocks(offset, limit)
}

// Balance returns pubkey's balance, zero for unknown accounts.
func (e *Engine) Balance(pubkey string) float64 {
	return e.state.Balance(pubkey)
}

// Accounts returns every known account.
func (e *Engine) Accounts() []pulsetypes.Account {
	return e.state.Accounts()
}
