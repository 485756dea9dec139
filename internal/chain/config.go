package chain

import "time"

// Config holds the tunable constants from spec §4.5/§4.3, bound at startup
// from CLI flags (see internal/config).
type Config struct {
	BlockInterval   time.Duration // T_block, default 5s
	Freshness       time.Duration // W_fresh, default 60s
	NThreshold      int           // PoL gate, default 1
	BaseReward      float64       // r_base, default 1.0
	WeightAlpha     float64       // default 0.4
	WeightBeta      float64       // default 0.4
	WeightGamma     float64       // default 0.2
	EventBacklog    int           // per-subscriber event queue capacity, default 64
}

// DefaultConfig returns the spec's default constants.
func DefaultConfig() Config {
	return Config{
		BlockInterval: 5 * time.Second,
		Freshness:     60 * time.Second,
		NThreshold:    1,
		BaseReward:    1.0,
		WeightAlpha:   0.4,
		WeightBeta:    0.4,
		WeightGamma:   0.2,
		EventBacklog:  64,
	}
}
