package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oddstream/oddstream-agent/internal/ledger"
	"github.com/oddstream/oddstream-agent/pkg/config"
	"github.com/oddstream/oddstream-agent/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List markets from the node catalog",
	Long:  `Fetches and displays markets known to the ledger node for debugging purposes.`,
	RunE:  runMarkets,
}

//nolint:gochecknoglobals // Cobra boilerplate
var (
	marketsStatus    string
	marketsMinVolume float64
	marketsLimit     int
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(marketsCmd)

	marketsCmd.Flags().StringVarP(&marketsStatus, "status", "s", "",
		"Filter by status: Active, Closed, Resolved")
	marketsCmd.Flags().Float64VarP(&marketsMinVolume, "min-volume", "v", 0,
		"Minimum traded volume")
	marketsCmd.Flags().IntVarP(&marketsLimit, "limit", "l", 20,
		"Maximum number of markets to fetch")
}

func runMarkets(cmd *cobra.Command, args []string) error {
	// Load .env file
	envErr := godotenv.Load()
	if envErr != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

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

	// Validate status option
	switch marketsStatus {
	case "", types.MarketStatusActive, types.MarketStatusClosed, types.MarketStatusResolved:
	default:
		return fmt.Errorf("invalid status: %s. Valid options: Active, Closed, Resolved", marketsStatus)
	}

	// Read queries need no wallet
	client, err := ledger.NewClient(&ledger.Config{
		RPCURL:  cfg.NodeRPCURL,
		Timeout: cfg.NodeRequestTimeout,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("create node client: %w", err)
	}

	fmt.Printf("Fetching up to %d markets from %s...\n\n", marketsLimit, cfg.NodeRPCURL)

	marketList, err := client.Markets(ctx, ledger.MarketFilters{
		MinVolume: marketsMinVolume,
		Status:    marketsStatus,
		Limit:     marketsLimit,
	})
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	if len(marketList) == 0 {
		fmt.Println("No markets found.")
		return nil
	}

	// Display markets
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tDESCRIPTION\tYES\tNO\tVOLUME\tSTATUS\tCHAIN\n")
	fmt.Fprintf(w, "--\t-----------\t---\t--\t------\t------\t-----\n")

	for i := range marketList {
		m := &marketList[i]

		description := m.Description
		if len(description) > 48 {
			description = description[:45] + "..."
		}

		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.0f\t%s\t%s\n",
			m.ID, description, m.YesOdds, m.NoOdds, m.Volume, m.Status, m.ChainID)
	}

	w.Flush()

	fmt.Printf("\nTotal: %d markets\n", len(marketList))

	return nil
}
