// Package pulsetypes holds the wire-level data model shared by the mempool,
// the chain engine, and the API surface: Heartbeat, Transaction, Account, and
// PulseBlock.
package pulsetypes

// Motion is a three-component accelerometer/gyroscope sample reported by a
// device alongside its heart rate.
type Motion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Heartbeat is a verified contribution of liveness from one device in one
// block interval. DevicePubkey and Signature are lowercase hex.
type Heartbeat struct {
	Timestamp    uint64  `json:"timestamp"`
	HeartRate    uint16  `json:"heart_rate"`
	Motion       Motion  `json:"motion"`
	Temperature  float32 `json:"temperature"`
	DevicePubkey string  `json:"device_pubkey"`
	Signature    string  `json:"signature"`
}

// Transaction is a value transfer conditioned on the sender's recent
// liveness. SenderPubkey, RecipientPubkey, HeartbeatSignature, and Signature
// are lowercase hex; TxID is an opaque identifier chosen by the client.
type Transaction struct {
	TxID               string  `json:"tx_id"`
	SenderPubkey       string  `json:"sender_pubkey"`
	RecipientPubkey    string  `json:"recipient_pubkey"`
	Amount             float64 `json:"amount"`
	Timestamp          uint64  `json:"timestamp"`
	HeartbeatSignature string  `json:"heartbeat_signature"`
	Signature          string  `json:"signature"`
}

// Account is derived state keyed by public key hex. Created on first accepted
// heartbeat or first receipt; LastHeartbeat is set when a heartbeat is
// accepted, every other field changes only at block commit; never destroyed.
type Account struct {
	Pubkey             string  `json:"pubkey"`
	Balance            float64 `json:"balance"`
	LastHeartbeat      uint64  `json:"last_heartbeat"`
	TotalEarned        float64 `json:"total_earned"`
	BlocksParticipated uint64  `json:"blocks_participated"`
}

// PulseBlock is an immutable record produced at each block tick.
type PulseBlock struct {
	Index         uint64        `json:"index"`
	Timestamp     uint64        `json:"timestamp"`
	PreviousHash  string        `json:"previous_hash"`
	Heartbeats    []Heartbeat   `json:"heartbeats"`
	Transactions  []Transaction `json:"transactions"`
	NLive         int           `json:"n_live"`
	TotalWeight   float64       `json:"total_weight"`
	Security      float64       `json:"security"`
	BlockHash     string        `json:"block_hash"`
}

// ChainInfo is the summary exposed by the chain-info query.
type ChainInfo struct {
	Height            int64  `json:"height"`
	LatestHash        string `json:"latest_hash"`
	HeartbeatPoolSize int    `json:"heartbeat_pool_size"`
}

// NetworkStats is the rolling-window summary exposed by the stats query.
type NetworkStats struct {
	ChainLength    int64   `json:"chain_length"`
	TotalMinted    float64 `json:"total_minted"`
	ActiveAccounts int     `json:"active_accounts"`
	CurrentTPS     float64 `json:"current_tps"`
	AvgBlockTime   float64 `json:"avg_block_time"`
	TotalSecurity  float64 `json:"total_security"`
}
