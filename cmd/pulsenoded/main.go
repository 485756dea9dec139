// Command pulsenoded runs a single Pulse Network node: it verifies
// device-signed heartbeats and transactions, produces blocks on a fixed
// interval, and exposes the result over HTTP and WebSocket. Adapted from the
// teacher's cmd/empower1d/main.go (runNode()/main() split, signal-driven
// graceful shutdown).
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/pulsenetwork/pulsenoded/internal/api"
	"github.com/pulsenetwork/pulsenoded/internal/chain"
	"github.com/pulsenetwork/pulsenoded/internal/config"
	"github.com/pulsenetwork/pulsenoded/internal/kvstore"
	"github.com/pulsenetwork/pulsenoded/internal/pulseerr"
)

// node bundles the running engine and HTTP server so main can shut both
// down in order.
type node struct {
	engine *chain.Engine
	srv    *http.Server
	log    *zap.SugaredLogger
}

func runNode(args []string) (*node, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.Sugar()

	fs := pflag.NewFlagSet("pulsenoded", pflag.ContinueOnError)
	flags := config.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	v, err := config.LoadViper(fs)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags.ApplyViper(v)

	cfg := flags.ChainConfig()

	var store kvstore.Store
	var state *chain.State

	if flags.Simulate {
		log.Info("simulate mode: in-memory genesis, no persistence")
		state = chain.Bootstrap()
	} else {
		log.Infow("opening persistent store", "data_dir", flags.DataDir)
		bstore, err := kvstore.OpenBadger(flags.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open data dir: %w", err)
		}
		store = bstore
		state, err = chain.Load(store)
		if err != nil {
			if errors.Is(err, pulseerr.ErrCorruptLedger) {
				log.Fatalw("ledger corrupt, refusing to start", "err", err)
			}
			return nil, fmt.Errorf("load ledger: %w", err)
		}
		log.Infow("ledger loaded", "height", state.TipIndex())
	}

	engine := chain.New(cfg, state, store, log)
	engine.Start()
	log.Infow("block builder started", "interval", cfg.BlockInterval)

	router := api.NewRouter(engine, log)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", flags.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("http server stopped", "err", err)
		}
	}()
	log.Infow("listening", "port", flags.Port)

	return &node{engine: engine, srv: srv, log: log}, nil
}

// shutdown rejects new submissions first, then drains the HTTP layer, and
// only then stops the builder and closes the store — so a request that
// arrives mid-drain sees a structured ErrShuttingDown response instead of
// racing the engine's own teardown.
func (n *node) shutdown() {
	n.engine.BeginShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.srv.Shutdown(ctx); err != nil {
		n.log.Warnw("http server shutdown", "err", err)
	}
	n.engine.Stop()
}

func main() {
	n, err := runNode(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "pulsenoded:", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	n.log.Infow("caught signal, shutting down", "signal", sig.String())

	n.shutdown()
	n.log.Info("pulsenoded shut down cleanly")
}
