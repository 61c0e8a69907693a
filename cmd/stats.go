package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oddstream/oddstream-agent/internal/ledger"
	"github.com/oddstream/oddstream-agent/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ledger node statistics",
	Long: `Queries chain and application statistics from the ledger node.

Prints once by default. Use --interval to poll continuously until
interrupted.

Example:
  oddstream-agent stats --interval 5s`,
	RunE: runStats,
}

//nolint:gochecknoglobals // Cobra boilerplate
var statsInterval time.Duration

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().DurationVarP(&statsInterval, "interval", "i", 0,
		"Polling interval; 0 prints once and exits")
}

func runStats(cmd *cobra.Command, args []string) error {
	// Load .env file
	envErr := godotenv.Load()
	if envErr != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	// Load config
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create logger
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Read queries need no wallet
	client, err := ledger.NewClient(&ledger.Config{
		RPCURL:  cfg.NodeRPCURL,
		Timeout: cfg.NodeRequestTimeout,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("create node client: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if statsInterval <= 0 {
		return printStats(ctx, client)
	}

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	// First poll immediately, then on the ticker
	err = printStats(ctx, client)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
	}

	for {
		select {
		case <-sigChan:
			fmt.Println("\nShutting down...")
			return nil
		case <-ticker.C:
			err = printStats(ctx, client)
			if err != nil {
				fmt.Printf("❌ %v\n", err)
			}
		}
	}
}

func printStats(ctx context.Context, client *ledger.Client) error {
	queryCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	stats, err := client.Stats(queryCtx)
	if err != nil {
		return fmt.Errorf("query stats: %w", err)
	}

	fmt.Printf("[%s] Transactions: %d  Block time: %.2fs  Active applications: %d\n",
		time.Now().Format("15:04:05"), stats.TxCount, stats.BlockTime, stats.ActiveApplications)

	return nil
}
