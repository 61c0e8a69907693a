package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oddstream/oddstream-agent/internal/app"
	"github.com/oddstream/oddstream-agent/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the trading agent",
	Long: `Starts the OddStream trading agent, which will:
1. Claim a user chain and register it with the registry chain
2. Subscribe to live odds for the configured markets
3. Quote both sides of each market on a fixed interval
4. Route order batches to the chains that own their markets

Use --market to quote a fixed market list and skip discovery.`,
	RunE: runAgent,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSliceP("market", "m", nil, "Quote only these markets (repeatable, skips discovery)")
}

func runAgent(cmd *cobra.Command, args []string) error {
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

	// Get flags
	fixedMarkets, _ := cmd.Flags().GetStringSlice("market")

	// Create app with options
	opts := &app.Options{
		Markets: fixedMarkets,
	}

	application, err := app.New(cfg, logger, opts)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	// Run app
	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
