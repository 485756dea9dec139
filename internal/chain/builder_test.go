package chain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulsenetwork/pulsenoded/internal/devicesim"
	"github.com/pulsenetwork/pulsenoded/internal/kvstore"
	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
)

func testEngine(t *testing.T, store kvstore.Store) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.NThreshold = 1
	return New(cfg, Bootstrap(), store, zap.NewNop().Sugar())
}

func TestBuilder_FirstBlockProducedOnceThresholdMet(t *testing.T) {
	e := testEngine(t, nil)
	dev, err := devicesim.New()
	require.NoError(t, err)

	hb, err := dev.Heartbeat(nowMillis(), 72)
	require.NoError(t, err)
	require.NoError(t, e.SubmitHeartbeat(hb))

	e.builder.tick()

	blk, err := e.LatestBlock()
	require.NoError(t, err)
	assert.Equal(t, 1, blk.NLive)
	assert.Equal(t, 0, e.pool.Size())

	acc, ok := e.state.Account(dev.Pubkey())
	require.True(t, ok)
	assert.Greater(t, acc.Balance, 0.0)
}

func TestBuilder_TickBelowThresholdProducesNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NThreshold = 2
	e := New(cfg, Bootstrap(), nil, zap.NewNop().Sugar())

	dev, err := devicesim.New()
	require.NoError(t, err)
	hb, err := dev.Heartbeat(nowMillis(), 72)
	require.NoError(t, err)
	require.NoError(t, e.SubmitHeartbeat(hb))

	heightBefore := e.state.TipIndex()
	e.builder.tick()
	assert.Equal(t, heightBefore, e.state.TipIndex())
	// The heartbeat must be restored to the pool, not lost.
	assert.Equal(t, 1, e.pool.Size())
}

func TestSubmitHeartbeat_RejectsReplayedSignature(t *testing.T) {
	e := testEngine(t, nil)
	dev, err := devicesim.New()
	require.NoError(t, err)

	hb, err := dev.Heartbeat(nowMillis(), 72)
	require.NoError(t, err)
	require.NoError(t, e.SubmitHeartbeat(hb))
	e.builder.tick()

	// Same signed heartbeat submitted again after it was already committed.
	err = e.SubmitHeartbeat(hb)
	assert.ErrorIs(t, err, pulseerr.ErrDuplicateSignature)
}

func TestSubmitTransaction_RejectsWithoutLiveHeartbeat(t *testing.T) {
	e := testEngine(t, nil)
	dev, err := devicesim.New()
	require.NoError(t, err)

	recipient, err := devicesim.New()
	require.NoError(t, err)
	const neverSubmitted = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef" // well-formed hex, but not in recentSigs

	tx, err := dev.Transaction(recipient.Pubkey(), 1, nowMillis(), neverSubmitted)
	require.NoError(t, err)

	err = e.SubmitTransaction(tx)
	assert.ErrorIs(t, err, pulseerr.ErrMissingHeartbeat)
}

func TestSubmitTransaction_RejectsHeartbeatFromDifferentDevice(t *testing.T) {
	e := testEngine(t, nil)
	sender, err := devicesim.New()
	require.NoError(t, err)
	other, err := devicesim.New()
	require.NoError(t, err)
	recipient, err := devicesim.New()
	require.NoError(t, err)

	// other's heartbeat is live, but sender is citing it, not their own.
	otherHb, err := other.Heartbeat(nowMillis(), 72)
	require.NoError(t, err)
	require.NoError(t, e.SubmitHeartbeat(otherHb))

	tx, err := sender.Transaction(recipient.Pubkey(), 0, nowMillis(), otherHb.Signature)
	require.NoError(t, err)

	err = e.SubmitTransaction(tx)
	assert.ErrorIs(t, err, pulseerr.ErrMissingHeartbeat)
}

func TestSubmitTransaction_RejectsNegativeAmount(t *testing.T) {
	e := testEngine(t, nil)
	sender, err := devicesim.New()
	require.NoError(t, err)
	victim, err := devicesim.New()
	require.NoError(t, err)

	hb, err := sender.Heartbeat(nowMillis(), 70)
	require.NoError(t, err)
	require.NoError(t, e.SubmitHeartbeat(hb))

	tx, err := sender.Transaction(victim.Pubkey(), -5, nowMillis(), hb.Signature)
	require.NoError(t, err)

	err = e.SubmitTransaction(tx)
	assert.ErrorIs(t, err, pulseerr.ErrOutOfRange)
}

func TestSubmitTransaction_BalanceConditionedOnEarnedReward(t *testing.T) {
	e := testEngine(t, nil)
	sender, err := devicesim.New()
	require.NoError(t, err)
	recipient, err := devicesim.New()
	require.NoError(t, err)

	hb, err := sender.Heartbeat(nowMillis(), 100)
	require.NoError(t, err)
	require.NoError(t, e.SubmitHeartbeat(hb))
	e.builder.tick()

	acc, ok := e.state.Account(sender.Pubkey())
	require.True(t, ok)
	require.Greater(t, acc.Balance, 0.0)

	tx, err := sender.Transaction(recipient.Pubkey(), acc.Balance/2, nowMillis(), hb.Signature)
	require.NoError(t, err)
	require.NoError(t, e.SubmitTransaction(tx))

	// A second live heartbeat is needed to clear the PoL gate for the next block.
	hb2, err := sender.Heartbeat(nowMillis(), 100)
	require.NoError(t, err)
	require.NoError(t, e.SubmitHeartbeat(hb2))
	e.builder.tick()

	got, _ := e.state.Account(recipient.Pubkey())
	assert.Equal(t, tx.Amount, got.Balance)
}

func TestSubmitTransaction_RejectsOverdraft(t *testing.T) {
	e := testEngine(t, nil)
	sender, err := devicesim.New()
	require.NoError(t, err)
	recipient, err := devicesim.New()
	require.NoError(t, err)

	hb, err := sender.Heartbeat(nowMillis(), 70)
	require.NoError(t, err)
	require.NoError(t, e.SubmitHeartbeat(hb))

	tx, err := sender.Transaction(recipient.Pubkey(), 1_000_000, nowMillis(), hb.Signature)
	require.NoError(t, err)

	err = e.SubmitTransaction(tx)
	assert.ErrorIs(t, err, pulseerr.ErrInsufficientFunds)
}

func TestBuilder_CommitTimeOverdraftIsDroppedNotIncluded(t *testing.T) {
	e := testEngine(t, nil)
	sender, err := devicesim.New()
	require.NoError(t, err)
	recipient, err := devicesim.New()
	require.NoError(t, err)

	hb, err := sender.Heartbeat(nowMillis(), 220)
	require.NoError(t, err)
	require.NoError(t, e.SubmitHeartbeat(hb))
	e.builder.tick() // mints the sender's first reward (at least 1.45 at HR 220)

	acc, ok := e.state.Account(sender.Pubkey())
	require.True(t, ok)
	balance := acc.Balance

	// Both transactions pass the submit-time check against the same
	// unspent balance; only the first can actually clear at commit time,
	// because the next block's reward at HR 70 (at most about 0.88) is
	// credited first and stays below that balance.
	tx1, err := sender.Transaction(recipient.Pubkey(), balance, nowMillis(), hb.Signature)
	require.NoError(t, err)
	require.NoError(t, e.SubmitTransaction(tx1))

	tx2, err := sender.Transaction(recipient.Pubkey(), balance, nowMillis(), hb.Signature)
	require.NoError(t, err)
	require.NoError(t, e.SubmitTransaction(tx2))

	hb2, err := sender.Heartbeat(nowMillis(), 70)
	require.NoError(t, err)
	require.NoError(t, e.SubmitHeartbeat(hb2))

	e.builder.tick()
	blk, err := e.LatestBlock()
	require.NoError(t, err)
	assert.Len(t, blk.Transactions, 1)
}

func TestBuilder_RestartRoundTripThroughBadger(t *testing.T) {
	dir := t.TempDir()
	store, err := kvstore.OpenBadger(dir)
	require.NoError(t, err)

	initial, err := Load(store)
	require.NoError(t, err)
	e := New(DefaultConfig(), initial, store, zap.NewNop().Sugar())
	dev, err := devicesim.New()
	require.NoError(t, err)
	hb, err := dev.Heartbeat(nowMillis(), 80)
	require.NoError(t, err)
	require.NoError(t, e.SubmitHeartbeat(hb))
	e.builder.tick()

	wantHeight := e.state.TipIndex()
	wantHash := e.state.TipHash()
	require.NoError(t, store.Close())

	reopened, err := kvstore.OpenBadger(dir)
	require.NoError(t, err)
	defer reopened.Close()

	restored, err := Load(reopened)
	require.NoError(t, err)
	assert.Equal(t, wantHeight, restored.TipIndex())
	assert.Equal(t, wantHash, restored.TipHash())
}

func TestBuilder_NoOverlappingTicks(t *testing.T) {
	e := testEngine(t, nil)
	e.builder.building.Store(true)
	heightBefore := e.state.TipIndex()
	e.builder.tick() // should be a no-op: building already true
	assert.Equal(t, heightBefore, e.state.TipIndex())
	e.builder.building.Store(false)
}

func TestEngine_StartAndStopProducesBlocksOnTicker(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NThreshold = 1
	cfg.BlockInterval = 20 * time.Millisecond
	e := New(cfg, Bootstrap(), nil, zap.NewNop().Sugar())

	dev, err := devicesim.New()
	require.NoError(t, err)
	hb, err := dev.Heartbeat(nowMillis(), 72)
	require.NoError(t, err)
	require.NoError(t, e.SubmitHeartbeat(hb))

	heightBefore := e.state.TipIndex() // the Bootstrap genesis block
	e.Start()
	defer e.Stop()

	require.Eventually(t, func() bool {
		return e.state.TipIndex() > heightBefore
	}, time.Second, 5*time.Millisecond)
}
