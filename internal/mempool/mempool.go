// Package mempool holds the bounded, freshness-governed pool of verified
// heartbeats, indexed by device public key, preserving at most one pending
// heartbeat per device. Adapted from the teacher's map-keyed-by-hex-ID
// Mempool (internal/mempool/mempool.go in the source tree), generalized from
// "hold transactions" to "hold the one freshest heartbeat per device".
package mempool

import (
	"fmt"
	"sync"

	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

// Pool holds at most one pending Heartbeat per device public key.
type Pool struct {
	mu      sync.RWMutex
	pending map[string]pulsetypes.Heartbeat // keyed by device_pubkey
}

// New returns an empty Pool.
func New() *Pool {
	return &Pool{pending: make(map[string]pulsetypes.Heartbeat)}
}

// TryAccept inserts hb, replacing any pending heartbeat for
// hb.DevicePubkey, unless that pending heartbeat has a strictly greater
// timestamp (ErrOutOfOrder); an equal timestamp replaces it. Freshness-window and signature checks
// are the caller's responsibility (they require wall-clock time and the
// shared recent-signature set respectively, both owned by the chain state —
// see the Design Notes on avoiding per-field locks). TryAccept enforces only
// the ordering invariant that is local to the mempool itself.
func (p *Pool) TryAccept(hb pulsetypes.Heartbeat) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.pending[hb.DevicePubkey]; ok && existing.Timestamp > hb.Timestamp {
		return fmt.Errorf("device %s: pending heartbeat has newer timestamp: %w", hb.DevicePubkey, pulseerr.ErrOutOfOrder)
	}
	p.pending[hb.DevicePubkey] = hb
	return nil
}

// Size returns the number of devices with a pending heartbeat.
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.pending)
}

// Drain atomically removes and returns every pending heartbeat, leaving the
// pool empty. Used by the block builder's snapshot-and-drain step.
func (p *Pool) Drain() []pulsetypes.Heartbeat {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]pulsetypes.Heartbeat, 0, len(p.pending))
	for _, hb := range p.pending {
		out = append(out, hb)
	}
	p.pending = make(map[string]pulsetypes.Heartbeat)
	return out
}

// Restore re-inserts a previously drained set, used when a build aborts
// (e.g. the Proof-of-Life gate fails) and the drained heartbeats must go
// back into the pool untouched.
func (p *Pool) Restore(hbs []pulsetypes.Heartbeat) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, hb := range hbs {
		if existing, ok := p.pending[hb.DevicePubkey]; !ok || hb.Timestamp >= existing.Timestamp {
			p.pending[hb.DevicePubkey] = hb
		}
	}
}
