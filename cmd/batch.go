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
var batchCmd = &cobra.Command{
	Use:   "batch <market:side:amount[:max-price]>...",
	Short: "Place several orders in one routed call",
	Long: `Routes a set of orders in one call. Orders for the same market chain are
bundled into one message; distinct destination chains are dispatched
concurrently. A batch that fails leaves its siblings untouched.

Each argument is one order spec of the form market:side:amount with an
optional fourth max-price component.

Example:
  oddstream-agent batch market-rain:YES:25 market-rain:NO:25:0.45 market-snow:YES:10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	orders := make([]types.Order, 0, len(args))
	for _, spec := range args {
		order, err := parseOrderSpec(spec)
		if err != nil {
			return fmt.Errorf("order spec %q: %w", spec, err)
		}
		orders = append(orders, order)
	}

	fmt.Printf("=== OddStream Batch Submission ===\n\n")

	stack, err := newSubmitStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	fmt.Printf("Orders: %d\n", len(orders))
	for i := range orders {
		o := &orders[i]
		if o.MaxPrice != nil {
			fmt.Printf("  %s %s %.2f @ max %.4f\n", o.MarketID, o.Side, o.Amount, *o.MaxPrice)
		} else {
			fmt.Printf("  %s %s %.2f\n", o.MarketID, o.Side, o.Amount)
		}
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

	outcomes, err := stack.agent.PlaceBatchOrder(ctx, orders)
	if err != nil {
		return fmt.Errorf("place batch: %w", err)
	}

	printOutcomes(outcomes)

	failed := types.FailedOutcomes(outcomes)
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d batches failed", len(failed), len(outcomes))
	}

	fmt.Printf("All %d batches accepted\n", len(outcomes))
	return nil
}

// parseOrderSpec parses one market:side:amount[:max-price] argument.
func parseOrderSpec(spec string) (types.Order, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return types.Order{}, fmt.Errorf("want market:side:amount[:max-price], got %d parts", len(parts))
	}

	amount, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return types.Order{}, fmt.Errorf("parse amount: %w", err)
	}

	order := types.Order{
		MarketID: parts[0],
		Side:     types.Side(strings.ToUpper(parts[1])),
		Amount:   amount,
	}

	if len(parts) == 4 {
		maxPrice, parseErr := strconv.ParseFloat(parts[3], 64)
		if parseErr != nil {
			return types.Order{}, fmt.Errorf("parse max price: %w", parseErr)
		}
		order = order.PriceCap(maxPrice)
	}

	err = order.Validate()
	if err != nil {
		return types.Order{}, err
	}

	return order, nil
}
