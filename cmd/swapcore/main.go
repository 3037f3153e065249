// Command swapcore wires the swap engine's components together for a
// single configured coin and backend. Flag/config-file parsing is a
// collaborator's job (out of scope, see SPEC_FULL.md §1); this entrypoint
// only demonstrates the wiring a real deployment would do: build a
// backend client, a keypair, and a swap.Engine, then log readiness.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kgcdream2019/utxoswap/internal/coinconfig"
	"github.com/kgcdream2019/utxoswap/internal/logging"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient/electrum"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient/noderpc"
	"github.com/kgcdream2019/utxoswap/internal/script"
	"github.com/kgcdream2019/utxoswap/internal/swap"
)

const version = "0.1.0"

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "version" || os.Args[1] == "--version") {
		fmt.Printf("swapcore v%s\n", version)
		return
	}

	logger := logging.New(os.Stderr, envOr("SWAPCORE_LOG_LEVEL", "info"))

	params := coinconfig.NewParams()
	if err := params.Validate(); err != nil {
		logger.Errorf("invalid coin configuration: %v", err)
		os.Exit(1)
	}

	seed := os.Getenv("SWAPCORE_SEED")
	if seed == "" {
		logger.Errorf("SWAPCORE_SEED is required")
		os.Exit(1)
	}
	keyPair, err := script.KeyPairFromSeed([]byte(seed))
	if err != nil {
		logger.Errorf("derive keypair: %v", err)
		os.Exit(1)
	}

	client := newClient(logger)
	engine := swap.New(client, params, keyPair, logger)
	_ = engine

	logger.Infof("swapcore ready: address_hash=%x backend=%s", keyPair.AddrHash, os.Getenv("SWAPCORE_BACKEND"))
}

func newClient(logger logging.Logger) rpcclient.Client {
	if os.Getenv("SWAPCORE_BACKEND") == "electrum" {
		servers := []electrum.ServerConfig{{Addr: os.Getenv("SWAPCORE_ELECTRUM_ADDR"), TLS: true}}
		return electrum.New(context.Background(), servers, logger)
	}
	return noderpc.New(noderpc.Config{
		URL:      envOr("SWAPCORE_NODERPC_URL", "http://127.0.0.1:8332"),
		User:     os.Getenv("SWAPCORE_NODERPC_USER"),
		Password: os.Getenv("SWAPCORE_NODERPC_PASSWORD"),
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
