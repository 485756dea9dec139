package chain

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pulsenetwork/pulsenoded/internal/canonical"
	"github.com/pulsenetwork/pulsenoded/internal/kvstore"
	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
	"github.com/pulsenetwork/pulsenoded/internal/pulsetypes"
)

const (
	nsBlocks   = "blocks"
	nsAccounts = "accounts"
	nsMeta     = "meta"
	metaTipKey = "tip"
)

// blockKey renders a block index as the 8-byte-big-endian hex string the
// persisted layout calls for: blocks/<8-byte big-endian index>.
func blockKey(index uint64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return hex.EncodeToString(b[:])
}

type tipRecord struct {
	Index int64  `json:"index"`
	Hash  string `json:"hash"`
}

// persistBlock writes the block, every touched account, and the tip
// pointer, then flushes exactly once. Returns an error wrapping
// pulseerr.ErrStorageUnavailable or pulseerr.ErrFlushFailed on any failure;
// no in-memory state is mutated by this function.
func persistBlock(store kvstore.Store, blk pulsetypes.PulseBlock, touched map[string]*pulsetypes.Account) error {
	if store == nil {
		return nil
	}
	blockBytes, err := json.Marshal(blk)
	if err != nil {
		return fmt.Errorf("marshal block: %w", pulseerr.ErrStorageUnavailable)
	}
	if err := store.Put(nsBlocks, blockKey(blk.Index), blockBytes); err != nil {
		return err
	}
	for pubkey, acc := range touched {
		accBytes, err := json.Marshal(acc)
		if err != nil {
			return fmt.Errorf("marshal account %s: %w", pubkey, pulseerr.ErrStorageUnavailable)
		}
		if err := store.Put(nsAccounts, pubkey, accBytes); err != nil {
			return err
		}
	}
	tipBytes, err := json.Marshal(tipRecord{Index: int64(blk.Index), Hash: blk.BlockHash})
	if err != nil {
		return fmt.Errorf("marshal tip: %w", pulseerr.ErrStorageUnavailable)
	}
	if err := store.Put(nsMeta, metaTipKey, tipBytes); err != nil {
		return err
	}
	if err := store.Flush(); err != nil {
		return err
	}
	return nil
}

// Load reconstructs chain state from store: every block (verifying the hash
// chain and recomputed block hashes), the account map, and the tip pointer.
// A hash mismatch or a tip referencing an absent block is ErrCorruptLedger,
// which callers must treat as fatal at startup.
func Load(store kvstore.Store) (*State, error) {
	s := newState()

	var blocks []pulsetypes.PulseBlock
	var decodeErr error
	err := store.Range(nsBlocks, func(key string, value []byte) bool {
		var blk pulsetypes.PulseBlock
		if jsonErr := json.Unmarshal(value, &blk); jsonErr != nil {
			decodeErr = fmt.Errorf("decode block %s: %v: %w", key, jsonErr, pulseerr.ErrCorruptLedger)
			return false
		}
		blocks = append(blocks, blk)
		return true
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Index < blocks[j].Index })

	prevHash := ""
	for i, blk := range blocks {
		if blk.Index != uint64(i) {
			return nil, fmt.Errorf("block index gap at %d: %w", i, pulseerr.ErrCorruptLedger)
		}
		if blk.PreviousHash != prevHash {
			return nil, fmt.Errorf("block %d: previous_hash mismatch: %w", blk.Index, pulseerr.ErrCorruptLedger)
		}
		recomputed, err := canonical.HashBlock(blk)
		if err != nil {
			return nil, fmt.Errorf("block %d: %v: %w", blk.Index, err, pulseerr.ErrCorruptLedger)
		}
		if recomputed != blk.BlockHash {
			return nil, fmt.Errorf("block %d: hash mismatch: %w", blk.Index, pulseerr.ErrCorruptLedger)
		}
		prevHash = blk.BlockHash
	}

	tipBytes, err := store.Get(nsMeta, metaTipKey)
	switch {
	case err == kvstore.ErrNotFound:
		if len(blocks) != 0 {
			return nil, fmt.Errorf("tip record missing but %d blocks present: %w", len(blocks), pulseerr.ErrCorruptLedger)
		}
	case err != nil:
		return nil, err
	default:
		var tip tipRecord
		if jsonErr := json.Unmarshal(tipBytes, &tip); jsonErr != nil {
			return nil, fmt.Errorf("decode tip: %v: %w", jsonErr, pulseerr.ErrCorruptLedger)
		}
		if tip.Index < 0 || tip.Index >= int64(len(blocks)) {
			return nil, fmt.Errorf("tip references absent block %d: %w", tip.Index, pulseerr.ErrCorruptLedger)
		}
		if blocks[tip.Index].BlockHash != tip.Hash {
			return nil, fmt.Errorf("tip hash mismatch at block %d: %w", tip.Index, pulseerr.ErrCorruptLedger)
		}
		s.tipIndex = tip.Index
		s.tipHash = tip.Hash
	}

	s.blocks = blocks
	for _, blk := range blocks {
		s.pushRollingWindow(blk)
	}

	err = store.Range(nsAccounts, func(key string, value []byte) bool {
		var acc pulsetypes.Account
		if jsonErr := json.Unmarshal(value, &acc); jsonErr != nil {
			return true
		}
		acc.Pubkey = key
		s.accounts[key] = &acc
		s.totalMinted += acc.TotalEarned
		return true
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Bootstrap synthesizes an empty genesis block in memory without touching
// the store, used under --simulate (spec §9 Open Questions: "--simulate
// means no writes and no reads to/from the KV store, genesis synthesized in
// memory").
func Bootstrap() *State {
	s := newState()
	genesis := pulsetypes.PulseBlock{
		Index:        0,
		Timestamp:    0,
		PreviousHash: "",
		Heartbeats:   []pulsetypes.Heartbeat{},
		Transactions: []pulsetypes.Transaction{},
		NLive:        0,
		TotalWeight:  0,
		Security:     0,
	}
	hash, err := canonical.HashBlock(genesis)
	if err != nil {
		// The genesis block's fields are all zero values; encoding cannot fail.
		panic(fmt.Sprintf("bootstrap: hash genesis: %v", err))
	}
	genesis.BlockHash = hash
	s.tipIndex = 0
	s.tipHash = hash
	s.blocks = []pulsetypes.PulseBlock{genesis}
	s.pushRollingWindow(genesis)
	return s
}
