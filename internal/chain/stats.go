package chain

import "github.com/pulsenetwork/pulsenoded/internal/pulsetypes"

// stats computes NetworkStats from the rolling windows. Caller must hold at
// least a read lock.
func (s *State) stats() pulsetypes.NetworkStats {
	n := len(s.blockTimestamps)
	var totalSecurity float64
	for _, sec := range s.blockSecurities {
		totalSecurity += sec
	}

	var avgBlockTime, tps float64
	if n >= 2 {
		span := float64(s.blockTimestamps[n-1]-s.blockTimestamps[0]) / 1000.0 // seconds
		if span > 0 {
			avgBlockTime = span / float64(n-1)
			var txs int
			for _, c := range s.blockTxCounts[1:] {
				txs += c
			}
			tps = float64(txs) / span
		}
	}

	return pulsetypes.NetworkStats{
		ChainLength:    s.tipIndex + 1,
		TotalMinted:    s.totalMinted,
		ActiveAccounts: len(s.accounts),
		CurrentTPS:     tps,
		AvgBlockTime:   avgBlockTime,
		TotalSecurity:  totalSecurity,
	}
}

// pushRollingWindow records a freshly committed block's timestamp, tx count,
// and security into the last-10-blocks rolling window. Caller must hold the
// write lock.
func (s *State) pushRollingWindow(blk pulsetypes.PulseBlock) {
	s.blockTimestamps = append(s.blockTimestamps, blk.Timestamp)
	s.blockTxCounts = append(s.blockTxCounts, len(blk.Transactions))
	s.blockSecurities = append(s.blockSecurities, blk.Security)
	if len(s.blockTimestamps) > rollingWindow {
		s.blockTimestamps = s.blockTimestamps[1:]
		s.blockTxCounts = s.blockTxCounts[1:]
		s.blockSecurities = s.blockSecurities[1:]
	}
}
