package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oddstream/oddstream-agent/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var orderCmd = &cobra.Command{
	Use:   "order <market-id> <side> <amount>",
	Short: "Place a single order through the batch router",
	Long: `Claims a user chain, registers it with the registry chain, and routes one
order to the chain that owns its market.

Side must be YES or NO. Amount is the stake in collateral units. Use
--max-price to cap the probability price you are willing to pay.

Example:
  oddstream-agent order market-rain-tomorrow YES 25 --max-price 0.6`,
	Args: cobra.ExactArgs(3),
	RunE: runOrder,
}

//nolint:gochecknoglobals // Cobra boilerplate
var orderMaxPrice float64

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(orderCmd)

	orderCmd.Flags().Float64VarP(&orderMaxPrice, "max-price", "p", 0,
		"Cap on the probability price in [0,1]")
}

func runOrder(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}

	order := types.Order{
		MarketID: args[0],
		Side:     types.Side(strings.ToUpper(args[1])),
		Amount:   amount,
	}
	if cmd.Flags().Changed("max-price") {
		order = order.PriceCap(orderMaxPrice)
	}

	err = order.Validate()
	if err != nil {
		return fmt.Errorf("invalid order: %w", err)
	}

	fmt.Printf("=== OddStream Order Submission ===\n\n")

	stack, err := newSubmitStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	fmt.Printf("Market: %s\n", order.MarketID)
	fmt.Printf("Side: %s\n", order.Side)
	fmt.Printf("Amount: %.2f\n", order.Amount)
	if order.MaxPrice != nil {
		fmt.Printf("Max Price: %.4f\n", *order.MaxPrice)
	}
	fmt.Printf("\n")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Printf("Claiming user chain...\n")
	err = stack.agent.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("initialize agent: %w", err)
	}

	userChain, err := stack.agent.UserChainID()
	if err != nil {
		return fmt.Errorf("user chain: %w", err)
	}
	fmt.Printf("User chain: %s\n\n", userChain)

	outcomes, err := stack.agent.PlaceBatchOrder(ctx, []types.Order{order})
	if err != nil {
		return fmt.Errorf("place order: %w", err)
	}

	printOutcomes(outcomes)

	failed := types.FailedOutcomes(outcomes)
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d batches failed", len(failed), len(outcomes))
	}

	return nil
}
