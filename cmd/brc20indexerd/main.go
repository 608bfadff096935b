// Command brc20indexerd runs the token indexer: fetch blocks, decode
// OP_RETURN payloads, route and apply operations, commit, and handle
// reorgs. It exposes two subcommands, grounded on the cobra-based
// cmd/synnergy layout of the orbas1-Synnergy example: `run` drives the live
// engine loop, `verify` prints a read-only supply report for one ticker from
// the store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brc20x/indexer/blockproc"
	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/config"
	"github.com/brc20x/indexer/indexlog"
	"github.com/brc20x/indexer/legacybridge"
	"github.com/brc20x/indexer/legacyoracle"
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/nodeclient"
	"github.com/brc20x/indexer/opi"
	"github.com/brc20x/indexer/opi/processors"
	"github.com/brc20x/indexer/payload"
	"github.com/brc20x/indexer/store"
	"github.com/brc20x/indexer/supply"
)

func main() {
	root := &cobra.Command{Use: "brc20indexerd"}
	root.AddCommand(runCmd())
	root.AddCommand(verifyCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the indexing loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			indexlog.Init(cfg.Log.Level, cfg.Log.JSON)

			st, node, oracle, router, err := wire(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			engine := blockproc.Engine{
				Node:  node,
				Store: st,
				Deps: blockproc.Deps{
					Oracle: oracle,
					Store:  st,
					Router: router,
					Policy: legacybridge.Policy{RequireLegacy: cfg.RequireLegacy},
					Limits: payload.Limits{MaxPayloadBytes: cfg.PayloadMaxBytes, MaxOpsPerTx: cfg.PayloadMaxOps},
				},
				Retry: blockproc.RetryPolicy{
					InitialBackoff: cfg.RetryInitialBackoff(),
					MaxBackoff:     cfg.RetryMaxBackoff(),
					MaxAttempts:    cfg.RetryMaxAttempts,
				},
				ReorgMax: cfg.ReorgDepthLimit,
			}

			indexlog.Logger.Info().Str("network", cfg.Network).Int("prefetch_depth", cfg.PrefetchDepth).Msg("starting indexer")
			if runErr := engine.Run(ctx, cfg.PrefetchDepth); runErr != nil {
				indexlog.Logger.Error().Str("code", string(runErr.Code)).Msg(runErr.Error())
				return runErr
			}
			indexlog.Logger.Info().Msg("indexer stopped")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	return cmd
}

func verifyCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "verify [ticker]",
		Short: "print the current supply rollup for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			indexlog.Init(cfg.Log.Level, cfg.Log.JSON)

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ticker := model.Ticker(args[0])
			ctx := context.Background()
			summary, err := supply.Get(ctx, st, ticker)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", ticker, err)
			}
			fmt.Printf("ticker:           %s\n", summary.Deploy.Ticker)
			fmt.Printf("max_supply:       %d\n", summary.Deploy.MaxSupply)
			fmt.Printf("decimals:         %d\n", summary.Deploy.Decimals)
			fmt.Printf("universal_minted: %d\n", summary.State.UniversalMinted)
			fmt.Printf("legacy_minted:    %d\n", summary.State.LegacyMinted)
			fmt.Printf("burned:           %d\n", summary.State.Burned)
			fmt.Printf("total:            %d\n", summary.Total)
			fmt.Printf("remaining:        %d\n", summary.Remaining)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	return cmd
}

// wire builds every collaborator the engine needs from cfg. The node
// client and legacy oracle are fakes for now: production deployments
// inject real implementations by swapping this function, the rest of the
// engine is already written against the Client/Oracle interfaces.
func wire(cfg config.Config) (store.Store, nodeclient.Client, legacyoracle.Oracle, *opi.Router, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	registry := opi.NewRegistry()
	if err := registerEnabledOps(registry, cfg.EnabledOps); err != nil {
		return nil, nil, nil, nil, err
	}
	router := opi.NewRouter(registry)

	return st, nodeclient.NewFake(), legacyoracle.NewFake(), router, nil
}

func openStore(cfg config.Config) (store.Store, error) {
	path := cfg.DataDir + "/indexer.db"
	st, err := store.OpenBolt(path)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", path, err)
	}
	return st, nil
}

// registerEnabledOps registers the built-in processors, skipping any whose
// tag is absent from enabled when enabled is non-empty (spec.md §6,
// "enabled_ops" restricts which operations this instance will act on;
// unlisted tags still decode but are routed as UnknownOp).
func registerEnabledOps(reg *opi.Registry, enabled []string) error {
	if len(enabled) == 0 {
		return processors.RegisterBuiltins(reg)
	}
	allow := make(map[string]bool, len(enabled))
	for _, tag := range enabled {
		allow[tag] = true
	}
	builtins := map[model.Op]opi.Processor{
		model.OpDeploy:   processors.Deploy{},
		model.OpMint:     processors.Mint{},
		model.OpTransfer: processors.Transfer{},
		model.OpNoReturn: processors.NoReturn{},
	}
	for tag, p := range builtins {
		if !allow[string(tag)] {
			continue
		}
		if err := reg.Register(string(tag), p); err != nil {
			return chainerr.New(chainerr.ConfigInvalid, "%v", err)
		}
	}
	return nil
}
