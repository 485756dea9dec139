package chain

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pulsenetwork/pulsenoded/internal/canonical"
	"github.com/pulsenetwork/pulsenoded/internal/cryptoutil"
	"github.com/pulsenetwork/pulsenoded/internal/eventbus"
	"github.com/pulsenetwork/pulsenoded/internal/kvstore"
	"github.com/pulsenetwork/pulsenoded/internal/mempool"
	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

const (
	minHeartRate = 30
	maxHeartRate = 220
)

// Engine is the chain's public façade: it owns the State, the heartbeat
// Pool, the persistence Store, and the event Bus, and exposes the
// submission and query operations described in spec §4.7. Adapted from the
// teacher's pattern of a top-level orchestrator (ConsensusEngine) wrapping
// narrower collaborators (internal/consensus/engine.go).
type Engine struct {
	cfg   Config
	state *State
	pool  *mempool.Pool
	store kvstore.Store
	bus   *eventbus.Bus
	log   *zap.SugaredLogger

	shuttingDown atomic.Bool

	builder *Builder
}

// New wires an Engine around an already-loaded or bootstrapped State. store
// may be nil under --simulate.
func New(cfg Config, state *State, store kvstore.Store, log *zap.SugaredLogger) *Engine {
	e := &Engine{
		cfg:   cfg,
		state: state,
		pool:  mempool.New(),
		store: store,
		bus:   eventbus.New(cfg.EventBacklog),
		log:   log,
	}
	e.builder = newBuilder(e)
	return e
}

// Start begins the periodic block-production loop.
func (e *Engine) Start() { e.builder.start() }

// BeginShutdown makes every subsequent SubmitHeartbeat/SubmitTransaction
// call fail fast with ErrShuttingDown. Callers should invoke this before
// draining the HTTP layer, so in-flight requests during that drain see a
// structured rejection instead of being accepted into a pool that is about
// to stop producing blocks.
func (e *Engine) BeginShutdown() { e.shuttingDown.Store(true) }

// Stop completes or aborts any in-progress block, flushes, and returns.
func (e *Engine) Stop() {
	e.shuttingDown.Store(true)
	e.builder.stop()
}

// Subscribe registers a new event subscriber.
func (e *Engine) Subscribe() *eventbus.Subscription { return e.bus.Subscribe() }

func nowMillis() uint64 { return uint64(time.Now().UnixMilli()) }

// SubmitHeartbeat validates and, on success, admits hb into the mempool.
func (e *Engine) SubmitHeartbeat(hb pulsetypes.Heartbeat) error {
	if e.shuttingDown.Load() {
		return pulseerr.ErrShuttingDown
	}

	if hb.HeartRate < minHeartRate || hb.HeartRate > maxHeartRate {
		return fmt.Errorf("heart_rate %d outside [%d,%d]: %w", hb.HeartRate, minHeartRate, maxHeartRate, pulseerr.ErrOutOfRange)
	}
	if err := pulsetypes.ValidateLowerHex("device_pubkey", hb.DevicePubkey); err != nil {
		return err
	}
	if err := pulsetypes.ValidateLowerHex("signature", hb.Signature); err != nil {
		return err
	}

	now := nowMillis()
	age := int64(now) - int64(hb.Timestamp)
	if age < 0 {
		age = -age
	}
	if age > e.cfg.Freshness.Milliseconds() {
		return fmt.Errorf("timestamp %d: %w", hb.Timestamp, pulseerr.ErrStaleTimestamp)
	}

	signable, err := canonical.EncodeHeartbeatSignable(hb)
	if err != nil {
		return err
	}
	if err := cryptoutil.Verify(hb.DevicePubkey, hb.Signature, signable); err != nil {
		return err
	}

	e.state.mu.Lock()
	if _, dup := e.state.recentSigs[hb.Signature]; dup {
		e.state.mu.Unlock()
		return fmt.Errorf("signature %s: %w", hb.Signature, pulseerr.ErrDuplicateSignature)
	}
	if err := e.pool.TryAccept(hb); err != nil {
		e.state.mu.Unlock()
		return err
	}
	e.state.recentSigs[hb.Signature] = recentSig{DevicePubkey: hb.DevicePubkey, Timestamp: hb.Timestamp}
	e.state.account(hb.DevicePubkey).LastHeartbeat = hb.Timestamp
	e.state.mu.Unlock()

	e.bus.Publish(eventbus.Event{Type: eventbus.EventHeartbeatCount, HeartbeatCount: uint64(e.pool.Size())})
	return nil
}

// SubmitTransaction validates and, on success, enqueues tx for the next
// block. No balance change happens at submission time.
func (e *Engine) SubmitTransaction(tx pulsetypes.Transaction) error {
	if e.shuttingDown.Load() {
		return pulseerr.ErrShuttingDown
	}

	if err := pulsetypes.ValidateLowerHex("sender_pubkey", tx.SenderPubkey); err != nil {
		return err
	}
	if err := pulsetypes.ValidateLowerHex("recipient_pubkey", tx.RecipientPubkey); err != nil {
		return err
	}
	if err := pulsetypes.ValidateLowerHex("heartbeat_signature", tx.HeartbeatSignature); err != nil {
		return err
	}
	if err := pulsetypes.ValidateLowerHex("signature", tx.Signature); err != nil {
		return err
	}
	if math.IsNaN(tx.Amount) || tx.Amount < 0 {
		return fmt.Errorf("amount %v: %w", tx.Amount, pulseerr.ErrOutOfRange)
	}

	signable, err := canonical.EncodeTransactionSignable(tx)
	if err != nil {
		return err
	}
	if err := cryptoutil.Verify(tx.SenderPubkey, tx.Signature, signable); err != nil {
		return err
	}

	e.state.mu.Lock()
	defer e.state.mu.Unlock()

	hbSig, ok := e.state.recentSigs[tx.HeartbeatSignature]
	if !ok || hbSig.DevicePubkey != tx.SenderPubkey {
		return fmt.Errorf("heartbeat_signature %s: %w", tx.HeartbeatSignature, pulseerr.ErrMissingHeartbeat)
	}
	if _, dup := e.state.txSeen[tx.TxID]; dup {
		return fmt.Errorf("tx_id %s: %w", tx.TxID, pulseerr.ErrDuplicateTxId)
	}
	if tx.Amount > e.state.account(tx.SenderPubkey).Balance {
		return fmt.Errorf("sender %s: %w", tx.SenderPubkey, pulseerr.ErrInsufficientFunds)
	}

	e.state.txSeen[tx.TxID] = struct{}{}
	e.state.txPending = append(e.state.txPending, tx)
	return nil
}
