// Package config binds the node's CLI flags (spec §6) through pflag and
// viper, grounded in the pack's flag/config idiom (see go.mod).
package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pulsenetwork/pulsenoded/internal/chain"
)

// Flags holds the raw CLI-facing values before they are translated into a
// chain.Config and node-level options.
type Flags struct {
	Port          uint16
	DataDir       string
	Simulate      bool
	BlockTimeMs   uint64
	NThreshold    uint32
	FreshnessMs   uint64
}

// Bind registers the node's CLI flags on fs and returns the bound Flags.
// Callers call fs.Parse(os.Args[1:]) themselves so tests can bind against a
// throwaway FlagSet.
func Bind(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.Uint16Var(&f.Port, "port", 8080, "HTTP/WebSocket listen port")
	fs.StringVar(&f.DataDir, "data-dir", "./data", "on-disk data directory (ignored with --simulate)")
	fs.BoolVar(&f.Simulate, "simulate", false, "disable persistence; in-memory only, genesis synthesized at start")
	fs.Uint64Var(&f.BlockTimeMs, "block-time-ms", 5000, "block production interval in milliseconds")
	fs.Uint32Var(&f.NThreshold, "n-threshold", 1, "minimum live heartbeats required to produce a block")
	fs.Uint64Var(&f.FreshnessMs, "freshness-ms", 60000, "heartbeat freshness window in milliseconds")
	return f
}

// LoadViper binds fs into a viper.Viper instance so flags can later be
// overridden by environment variables or a config file, following the
// pack's viper+pflag idiom.
func LoadViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("PULSE")
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	return v, nil
}

// ApplyViper overwrites f's fields with v's resolved values, so a
// PULSE_PORT-style environment variable (or a config file viper was told to
// read) takes effect even though pflag already parsed argv.
func (f *Flags) ApplyViper(v *viper.Viper) {
	f.Port = uint16(v.GetUint32("port"))
	f.DataDir = v.GetString("data-dir")
	f.Simulate = v.GetBool("simulate")
	f.BlockTimeMs = v.GetUint64("block-time-ms")
	f.NThreshold = uint32(v.GetUint32("n-threshold"))
	f.FreshnessMs = v.GetUint64("freshness-ms")
}

// ChainConfig translates Flags into a chain.Config, keeping the spec's
// default reward/weight constants (not exposed as flags).
func (f *Flags) ChainConfig() chain.Config {
	cfg := chain.DefaultConfig()
	cfg.BlockInterval = time.Duration(f.BlockTimeMs) * time.Millisecond
	cfg.Freshness = time.Duration(f.FreshnessMs) * time.Millisecond
	cfg.NThreshold = int(f.NThreshold)
	return cfg
}
