package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/0xRobin/data-misc/pkg/config"
	"github.com/0xRobin/data-misc/pkg/dune"
	"github.com/0xRobin/data-misc/pkg/format"
	"github.com/0xRobin/data-misc/pkg/networks"
	"github.com/0xRobin/data-misc/pkg/persist"
	"github.com/0xRobin/data-misc/pkg/reconcile"
	"github.com/0xRobin/data-misc/pkg/source"
	"github.com/0xRobin/data-misc/pkg/tokens"
	"github.com/0xRobin/data-misc/pkg/types"
)

var logger *zap.SugaredLogger

func init() {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	logger = l.Sugar()
}

var (
	flagNetworks []string
	flagOut      string
	flagWorkers  int
	flagV1CSV    string
	flagV2CSV    string
)

var rootCmd = &cobra.Command{
	Use:   "missingtokens",
	Short: "Enrich Dune's missing-token lists with on-chain metadata",
	Long: `missingtokens reconciles the "missing tokens" lists of the Dune V1 and
V2 query engines, fetches symbol and decimals for every distinct token
once, and writes the rows used to patch the engines' reference tables:

	missing-tokens-v1.txt  rows in the network specific V1 table format
	missing-tokens-v2.txt  rows in the V2 token seed format

Tokens whose metadata reads fail are logged and dropped from both files,
they never abort a run. Requires DUNE_API_KEY, and INFURA_KEY for
networks whose node needs an access key.`,
	SilenceUsage: true,
	RunE:         run,
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, cmd); err != nil {
		return err
	}

	// Any CSV flag switches the whole run offline; lists without an
	// export stay empty, mirroring how the deprecated engine is phased
	// out.
	offline := flagV1CSV != "" || flagV2CSV != ""
	if !offline {
		if err := cfg.RequireDuneAPIKey(); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	var failed []string
	for _, network := range cfg.Networks {
		logger.Infow("executing on network", "network", network.GetName())
		if err := runNetwork(ctx, cfg, network); err != nil {
			var fatal *source.SourceQueryError
			if errors.As(err, &fatal) || errors.Is(err, context.Canceled) {
				return err
			}
			// Unsupported network and the like only condemn this
			// network, the remaining ones still run.
			logger.Errorw("network run failed", "network", network.GetName(), "error", err)
			failed = append(failed, network.GetName())
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("run failed on networks %v", failed)
	}
	return nil
}

func applyFlags(cfg *config.Config, cmd *cobra.Command) error {
	if cmd.Flags().Changed("network") {
		cfg.Networks = cfg.Networks[:0]
		for _, name := range flagNetworks {
			n, err := networks.FindNetwork(name)
			if err != nil {
				return err
			}
			cfg.Networks = append(cfg.Networks, n)
		}
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir = flagOut
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = flagWorkers
	}
	return nil
}

func runNetwork(ctx context.Context, cfg *config.Config, network networks.Network) error {
	batch, err := fetchBatch(ctx, cfg, network)
	if err != nil {
		return err
	}

	if batch.IsEmpty() {
		logger.Infow("no missing tokens detected, have a good day", "network", network.GetName())
		return nil
	}
	logger.Infow("found missing tokens, fetching token details",
		"network", network.GetName(), "v1", len(batch.V1), "v2", len(batch.V2))

	if err := cfg.RequireNodeAPIKey(); err != nil {
		return err
	}
	rpcClient, err := rpc.DialContext(ctx, network.NodeURL(cfg.NodeAPIKey))
	if err != nil {
		return fmt.Errorf("dial node: %w", err)
	}
	defer rpcClient.Close()

	engine := reconcile.NewEngine(
		tokens.NewResolver(ethclient.NewClient(rpcClient)),
		reconcile.WithWorkers(cfg.Workers),
	)

	stop := progressSpinner(engine, "resolving tokens")
	result, err := engine.Run(ctx, batch)
	stop()
	if err != nil {
		return err
	}

	v1Lines := make([]string, 0, len(result.V1))
	for _, record := range result.V1 {
		line, err := format.FormatV1(record, network)
		if err != nil {
			return err
		}
		v1Lines = append(v1Lines, line)
	}
	v2Lines := make([]string, 0, len(result.V2))
	for _, record := range result.V2 {
		v2Lines = append(v2Lines, format.FormatV2(record))
	}

	if err := persist.WriteLines(cfg.OutDir, "missing-tokens-v1.txt", v1Lines); err != nil {
		return err
	}
	if err := persist.WriteLines(cfg.OutDir, "missing-tokens-v2.txt", v2Lines); err != nil {
		return err
	}

	skipped := make([]string, 0, len(result.Skipped))
	for _, addr := range result.Skipped {
		skipped = append(skipped, addr.Hex())
	}
	logger.Infow("run finished",
		"network", network.GetName(),
		"processed", result.Processed,
		"skipped", len(skipped),
		"skippedTokens", skipped,
	)
	return nil
}

func fetchBatch(ctx context.Context, cfg *config.Config, network networks.Network) (types.MissingTokenBatch, error) {
	var batch types.MissingTokenBatch

	if flagV1CSV != "" || flagV2CSV != "" {
		var err error
		if flagV1CSV != "" {
			if batch.V1, err = source.ReadAddressesFromCSV(flagV1CSV); err != nil {
				return batch, err
			}
		}
		if flagV2CSV != "" {
			if batch.V2, err = source.ReadAddressesFromCSV(flagV2CSV); err != nil {
				return batch, err
			}
		}
		return batch, nil
	}

	src := source.NewSource(dune.NewClient(cfg.DuneAPIKey))
	v1, err := src.FetchLegacy(ctx, network)
	if err != nil {
		return batch, err
	}
	v2, err := src.Fetch(ctx, network)
	if err != nil {
		return batch, err
	}
	return types.MissingTokenBatch{V1: v1, V2: v2}, nil
}

// progressSpinner animates resolution progress on terminals and stays
// quiet everywhere else. It returns a stop function.
func progressSpinner(engine *reconcile.Engine, msg string) func() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		engine.Progress = func(done, total int) {
			if done == total {
				logger.Infow("resolution finished", "total", total)
			}
		}
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond)
	s.Suffix = " " + msg
	engine.Progress = func(done, total int) {
		s.Suffix = fmt.Sprintf(" %s %d/%d", msg, done, total)
	}
	s.Start()
	return func() {
		s.Stop()
		// the spinner clears its line with \r only, force a fresh line
		fmt.Println()
	}
}

func init() {
	rootCmd.Flags().StringSliceVar(&flagNetworks, "network", []string{"mainnet"}, "networks to run against (mainnet, gnosis)")
	rootCmd.Flags().StringVar(&flagOut, "out", "./out", "output directory for the generated files")
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 1, "size of the resolution worker pool")
	rootCmd.Flags().StringVar(&flagV1CSV, "v1-csv", "", "read the V1 list from a Dune CSV export instead of the API")
	rootCmd.Flags().StringVar(&flagV2CSV, "v2-csv", "", "read the V2 list from a Dune CSV export instead of the API")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
