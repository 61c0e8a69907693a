package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oddstream/oddstream-agent/internal/ledger"
	"github.com/oddstream/oddstream-agent/pkg/config"
	"github.com/oddstream/oddstream-agent/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var watchCmd = &cobra.Command{
	Use:   "watch <market-id>...",
	Short: "Watch live odds updates for markets",
	Long: `Connects to the node websocket and displays live odds updates for the
given markets. Useful for debugging and understanding market dynamics.

Example:
  oddstream-agent watch market-rain-tomorrow market-snow-friday`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

//nolint:gochecknoglobals // Cobra boilerplate
var watchJSON bool

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVarP(&watchJSON, "json", "j", false, "Output raw JSON updates")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	subscriber, err := ledger.NewSubscriber(ledger.SubscriberConfig{
		WSURL:  cfg.NodeWSURL,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}

	subscriber.Subscribe(args...)

	go subscriber.Run(ctx)

	fmt.Printf("Watching %d markets on %s...\n\n", len(args), cfg.NodeWSURL)

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Create tabwriter for formatted output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	updates := subscriber.Updates()

	for {
		select {
		case <-sigChan:
			fmt.Println("\nShutting down...")
			return nil
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("update channel closed")
			}

			if watchJSON {
				jsonBytes, _ := json.MarshalIndent(update, "", "  ")
				fmt.Println(string(jsonBytes))
			} else {
				printUpdate(w, &update)
			}
		}
	}
}

func printUpdate(w *tabwriter.Writer, update *types.MarketUpdate) {
	timestamp := update.Timestamp.Format("15:04:05")

	fmt.Fprintf(w, "[%s] %s\tYES %.4f\tNO %.4f\tVol %.0f\t%s\n",
		timestamp, update.MarketID, update.YesOdds, update.NoOdds, update.Volume, update.Status)

	w.Flush()
}
