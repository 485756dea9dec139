// Package chain owns the mempool, the in-memory account map, the tip
// pointer, and the block-production loop: the chain engine from spec §2.5.
// State is the single owning struct behind one sync.RWMutex, adapted from
// the teacher's StateManager/Blockchain pattern (internal/state/manager.go,
// internal/blockchain/blockchain.go) — one mutex per owning struct, never
// per-field locks, so the drain-and-commit critical section stays atomic.
package chain

import (
	"sync"

	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

const rollingWindow = 10

// State is the chain's mutable core: tip pointer, account map, pending
// transaction pool, and the recent-heartbeat-signature set transactions
// validate against. It is mirrored to the KV store on every block commit.
type State struct {
	mu sync.RWMutex

	tipIndex int64 // -1 means no block has been produced yet
	tipHash  string

	blocks []pulsetypes.PulseBlock // full in-memory chain, mirrored to kvstore

	accounts map[string]*pulsetypes.Account

	recentSigs map[string]recentSig // heartbeat signature hex -> its device and timestamp (ms)

	txPending []pulsetypes.Transaction
	txSeen    map[string]struct{} // every tx_id ever accepted, pending or included

	// Rolling windows over the last rollingWindow blocks, for NetworkStats.
	blockTimestamps []uint64
	blockTxCounts   []int
	blockSecurities []float64

	totalMinted float64
}

// recentSig is a recent-heartbeat-signature entry: which device it came
// from and when, so a transaction's heartbeat_signature reference can be
// checked against tx.SenderPubkey, not just existence in the set.
type recentSig struct {
	DevicePubkey string
	Timestamp    uint64
}

func newState() *State {
	return &State{
		tipIndex:   -1,
		accounts:   make(map[string]*pulsetypes.Account),
		recentSigs: make(map[string]recentSig),
		txSeen:     make(map[string]struct{}),
	}
}

// account returns the account for pubkey, creating a zero-value one if it
// does not exist yet. Caller must hold the write lock.
func (s *State) account(pubkey string) *pulsetypes.Account {
	acc, ok := s.accounts[pubkey]
	if !ok {
		acc = &pulsetypes.Account{Pubkey: pubkey}
		s.accounts[pubkey] = acc
	}
	return acc
}

// Balance returns pubkey's balance, zero for unknown accounts.
func (s *State) Balance(pubkey string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acc, ok := s.accounts[pubkey]; ok {
		return acc.Balance
	}
	return 0
}

// Account returns a copy of pubkey's account and whether it exists.
func (s *State) Account(pubkey string) (pulsetypes.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[pubkey]
	if !ok {
		return pulsetypes.Account{}, false
	}
	return *acc, true
}

// Accounts returns a snapshot of every known account.
func (s *State) Accounts() []pulsetypes.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pulsetypes.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, *acc)
	}
	return out
}

// TipIndex returns the current chain height, -1 if empty.
func (s *State) TipIndex() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tipIndex
}

// TipHash returns the current tip's block hash, "" if empty.
func (s *State) TipHash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tipHash
}

// Block returns a copy of the block at index.
func (s *State) Block(index uint64) (pulsetypes.PulseBlock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int64(index) > s.tipIndex || index > uint64(len(s.blocks)-1) {
		return pulsetypes.PulseBlock{}, false
	}
	return s.blocks[index], true
}

// Blocks returns a copy of the blocks in [offset, offset+limit), plus the
// total chain length. limit <= 0 means "to the end".
func (s *State) Blocks(offset, limit int) ([]pulsetypes.PulseBlock, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := len(s.blocks)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return nil, total
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]pulsetypes.PulseBlock, end-offset)
	copy(out, s.blocks[offset:end])
	return out, total
}

// HasRecentSig reports whether sig is in the recent-heartbeat-signature set.
func (s *State) HasRecentSig(sig string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.recentSigs[sig]
	return ok
}
