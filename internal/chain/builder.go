package chain

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pulsenetwork/pulsenoded/internal/canonical"
	"github.com/pulsenetwork/pulsenoded/internal/eventbus"
	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

// Builder is the single logical producer: a ticker-driven loop that drains
// the mempool and tx pool, computes the Proof-of-Life decision, mints
// rewards, applies transactions, and appends a block. Adapted from the
// teacher's ConsensusEngine.Start ticker/select loop
// (internal/consensus/engine.go), generalized from "propose a block when
// this node's slot comes up" to "drain and commit on every tick".
type Builder struct {
	engine   *Engine
	stopChan chan struct{}
	wg       sync.WaitGroup
	building atomic.Bool // true while a tick's critical section is in flight
}

func newBuilder(e *Engine) *Builder {
	return &Builder{engine: e, stopChan: make(chan struct{})}
}

func (b *Builder) start() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(b.engine.cfg.BlockInterval)
		defer ticker.Stop()
		for {
			select {
			case <-b.stopChan:
				return
			case <-ticker.C:
				b.tick()
			}
		}
	}()
}

func (b *Builder) stop() {
	close(b.stopChan)
	b.wg.Wait()
	if b.engine.store != nil {
		_ = b.engine.store.Close()
	}
	b.engine.bus.Close()
}

// tick runs one build attempt. A tick arriving while a previous build is
// still running is dropped, not queued (spec §4.5: "it must not overlap with
// itself").
func (b *Builder) tick() {
	if !b.building.CompareAndSwap(false, true) {
		return
	}
	defer b.building.Store(false)

	e := b.engine
	s := e.state

	s.mu.Lock()

	heartbeats := e.pool.Drain()
	txs := s.txPending
	s.txPending = nil

	nLive := len(heartbeats)
	if nLive < e.cfg.NThreshold {
		e.pool.Restore(heartbeats)
		s.txPending = txs
		s.mu.Unlock()
		return
	}

	sort.Slice(heartbeats, func(i, j int) bool {
		if heartbeats[i].Timestamp != heartbeats[j].Timestamp {
			return heartbeats[i].Timestamp < heartbeats[j].Timestamp
		}
		return heartbeats[i].DevicePubkey < heartbeats[j].DevicePubkey
	})

	touched := make(map[string]*pulsetypes.Account)
	getOrClone := func(pubkey string) *pulsetypes.Account {
		if acc, ok := touched[pubkey]; ok {
			return acc
		}
		var acc pulsetypes.Account
		if existing, ok := s.accounts[pubkey]; ok {
			acc = *existing
		} else {
			acc = pulsetypes.Account{Pubkey: pubkey}
		}
		touched[pubkey] = &acc
		return &acc
	}

	var totalWeight float64
	weights := make([]float64, len(heartbeats))
	for i, hb := range heartbeats {
		weights[i] = weightOf(e.cfg, hb)
		totalWeight += weights[i]
	}
	for i, hb := range heartbeats {
		acc := getOrClone(hb.DevicePubkey)
		reward := e.cfg.BaseReward * weights[i]
		acc.Balance += reward
		acc.TotalEarned += reward
		acc.BlocksParticipated++
	}

	var included []pulsetypes.Transaction
	for _, tx := range txs {
		sender := getOrClone(tx.SenderPubkey)
		if sender.Balance < tx.Amount {
			continue // dropped: not included, not re-queued
		}
		sender.Balance -= tx.Amount
		recipient := getOrClone(tx.RecipientPubkey)
		recipient.Balance += tx.Amount
		included = append(included, tx)
	}

	var index uint64
	if s.tipIndex >= 0 {
		index = uint64(s.tipIndex) + 1
	}
	blk := pulsetypes.PulseBlock{
		Index:        index,
		Timestamp:    nowMillis(),
		PreviousHash: s.tipHash,
		Heartbeats:   heartbeats,
		Transactions: included,
		NLive:        nLive,
		TotalWeight:  totalWeight,
		Security:     totalWeight,
	}
	hash, err := canonical.HashBlock(blk)
	if err != nil {
		e.log.Errorw("block hash encoding failed, discarding block", "index", index, "err", err)
		e.pool.Restore(heartbeats)
		s.txPending = txs
		s.mu.Unlock()
		return
	}
	blk.BlockHash = hash

	if err := persistBlock(e.store, blk, touched); err != nil {
		e.log.Errorw("block persistence failed, discarding block", "index", index, "err", err)
		e.pool.Restore(heartbeats)
		s.txPending = txs
		s.mu.Unlock()
		return
	}

	for pubkey, acc := range touched {
		s.accounts[pubkey] = acc
	}
	s.tipIndex = int64(blk.Index)
	s.tipHash = blk.BlockHash
	s.blocks = append(s.blocks, blk)
	s.pushRollingWindow(blk)
	s.totalMinted += e.cfg.BaseReward * totalWeight
	pruneBefore := blk.Timestamp - uint64(e.cfg.Freshness.Milliseconds())
	for sig, entry := range s.recentSigs {
		if entry.Timestamp < pruneBefore {
			delete(s.recentSigs, sig)
		}
	}

	stats := s.stats()
	s.mu.Unlock()

	e.log.Infow("committed block", "index", blk.Index, "n_live", blk.NLive, "total_weight", blk.TotalWeight, "txs", len(blk.Transactions))
	e.bus.Publish(eventbus.Event{Type: eventbus.EventNewBlock, Block: &blk})
	e.bus.Publish(eventbus.Event{Type: eventbus.EventStats, Stats: &stats})
}

// weightOf computes W_i = alpha*(HR/70) + beta*min(||motion||/0.5, 2.0) + gamma.
func weightOf(cfg Config, hb pulsetypes.Heartbeat) float64 {
	norm := math.Sqrt(hb.Motion.X*hb.Motion.X + hb.Motion.Y*hb.Motion.Y + hb.Motion.Z*hb.Motion.Z)
	motionTerm := math.Min(norm/0.5, 2.0)
	return cfg.WeightAlpha*(float64(hb.HeartRate)/70.0) + cfg.WeightBeta*motionTerm + cfg.WeightGamma
}
