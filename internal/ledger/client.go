package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/pkg/types"
	"github.com/oddstream/oddstream-agent/pkg/wallet"
)

const userAgent = "oddstream-agent/1.0"

// GraphQL documents accepted by the node.
const (
	mutationOpenChain = `mutation OpenChain($owner: String!) {
  openChain(owner: $owner) { chainId }
}`

	mutationSubmitMessage = `mutation SubmitMessage($chainId: String!, $payload: String!, $owner: String!, $signature: String!) {
  submitMessage(chainId: $chainId, payload: $payload, owner: $owner, signature: $signature) { transactionId }
}`

	queryMarketChain = `query MarketChain($marketId: String!) {
  marketChain(marketId: $marketId)
}`

	queryMarketState = `query MarketState($id: String!) {
  market(id: $id) { yesOdds noOdds }
}`

	queryMarkets = `query Markets($minVolume: Float, $status: String, $limit: Int) {
  markets(minVolume: $minVolume, status: $status, limit: $limit) {
    id description yesOdds noOdds volume liquidity status oracleType resolutionTime chainId
  }
}`

	queryNodeStats = `query NodeStats {
  chainStats { txCount blockTime }
  applicationStats { activeApplications }
}`
)

// Config holds node client configuration.
type Config struct {
	RPCURL  string
	Timeout time.Duration
	Wallet  *wallet.Wallet // optional; required only for mutating calls
	Logger  *zap.Logger
}

// Client talks GraphQL over HTTP to a ledger node. Read queries work
// without a wallet; chain creation and message submission require one.
type Client struct {
	baseURL    string
	httpClient *http.Client
	wallet     *wallet.Wallet
	logger     *zap.Logger
}

// NewClient creates a new node client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("rpc url cannot be empty")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: cfg.RPCURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		wallet: cfg.Wallet,
		logger: cfg.Logger,
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

// do posts one GraphQL document and decodes the data envelope into out.
func (c *Client) do(ctx context.Context, op, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		RequestsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		RequestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
		return fmt.Errorf("node returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var gqlResp graphQLResponse
	err = json.NewDecoder(resp.Body).Decode(&gqlResp)
	if err != nil {
		RequestsTotal.WithLabelValues(op, "decode_error").Inc()
		return fmt.Errorf("decode response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		RequestsTotal.WithLabelValues(op, "graphql_error").Inc()
		return fmt.Errorf("node returned error: %s", gqlResp.Errors[0].Message)
	}

	if out != nil {
		err = json.Unmarshal(gqlResp.Data, out)
		if err != nil {
			RequestsTotal.WithLabelValues(op, "decode_error").Inc()
			return fmt.Errorf("decode data: %w", err)
		}
	}

	RequestsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}

// CreateChain claims a new user chain from the node, owned by the wallet.
func (c *Client) CreateChain(ctx context.Context) (string, error) {
	if c.wallet == nil {
		return "", errors.New("wallet required to create a chain")
	}

	var out struct {
		OpenChain struct {
			ChainID string `json:"chainId"`
		} `json:"openChain"`
	}

	err := c.do(ctx, "open_chain", mutationOpenChain, map[string]any{
		"owner": c.wallet.Address(),
	}, &out)
	if err != nil {
		return "", fmt.Errorf("create chain: %w", err)
	}
	if out.OpenChain.ChainID == "" {
		return "", errors.New("node returned empty chain id")
	}

	c.logger.Info("chain-created",
		zap.String("chain-id", out.OpenChain.ChainID),
		zap.String("owner", c.wallet.Address()))

	return out.OpenChain.ChainID, nil
}

// SendMessage validates, signs, and submits a payload to the destination
// chain. Returns the transaction id assigned by the node.
func (c *Client) SendMessage(ctx context.Context, destination string, payload Payload) (string, error) {
	if destination == "" {
		return "", errors.New("destination chain id cannot be empty")
	}
	if c.wallet == nil {
		return "", errors.New("wallet required to send a message")
	}

	err := payload.Validate()
	if err != nil {
		return "", fmt.Errorf("validate payload: %w", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	signature, err := c.wallet.SignPayload(raw)
	if err != nil {
		return "", fmt.Errorf("sign payload: %w", err)
	}

	var out struct {
		SubmitMessage struct {
			TransactionID string `json:"transactionId"`
		} `json:"submitMessage"`
	}

	err = c.do(ctx, "submit_message", mutationSubmitMessage, map[string]any{
		"chainId":   destination,
		"payload":   string(raw),
		"owner":     c.wallet.Address(),
		"signature": signature,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("submit message: %w", err)
	}

	c.logger.Debug("message-submitted",
		zap.String("destination", destination),
		zap.String("transaction-id", out.SubmitMessage.TransactionID))

	return out.SubmitMessage.TransactionID, nil
}

// ResolveMarket queries the registry for the chain that owns a market.
func (c *Client) ResolveMarket(ctx context.Context, marketID string) (string, error) {
	if marketID == "" {
		return "", &types.UnknownMarketError{MarketID: marketID}
	}

	var out struct {
		MarketChain *string `json:"marketChain"`
	}

	err := c.do(ctx, "market_chain", queryMarketChain, map[string]any{
		"marketId": marketID,
	}, &out)
	if err != nil {
		return "", &types.RegistryUnavailableError{Err: err}
	}

	if out.MarketChain == nil || *out.MarketChain == "" {
		return "", &types.UnknownMarketError{MarketID: marketID}
	}

	return *out.MarketChain, nil
}

// MarketState queries the current two-sided odds of a market.
func (c *Client) MarketState(ctx context.Context, marketID string) (types.MarketState, error) {
	var out struct {
		Market *struct {
			YesOdds float64 `json:"yesOdds"`
			NoOdds  float64 `json:"noOdds"`
		} `json:"market"`
	}

	err := c.do(ctx, "market_state", queryMarketState, map[string]any{
		"id": marketID,
	}, &out)
	if err != nil {
		return types.MarketState{}, fmt.Errorf("query market state: %w", err)
	}

	if out.Market == nil {
		return types.MarketState{}, &types.UnknownMarketError{MarketID: marketID}
	}

	return types.MarketState{
		YesOdds: out.Market.YesOdds,
		NoOdds:  out.Market.NoOdds,
	}, nil
}

// MarketFilters narrow the catalog listing.
type MarketFilters struct {
	MinVolume float64
	Status    string
	Limit     int
}

// Markets lists catalog records matching the filters.
func (c *Client) Markets(ctx context.Context, filters MarketFilters) ([]types.Market, error) {
	variables := map[string]any{}
	if filters.MinVolume > 0 {
		variables["minVolume"] = filters.MinVolume
	}
	if filters.Status != "" {
		variables["status"] = filters.Status
	}
	if filters.Limit > 0 {
		variables["limit"] = filters.Limit
	}

	var out struct {
		Markets []types.Market `json:"markets"`
	}

	err := c.do(ctx, "markets", queryMarkets, variables, &out)
	if err != nil {
		return nil, fmt.Errorf("query markets: %w", err)
	}

	return out.Markets, nil
}

// NodeStats is the node health snapshot polled by the monitor.
type NodeStats struct {
	TxCount            int64
	BlockTime          float64
	ActiveApplications int
}

// Stats queries chain and application statistics from the node.
func (c *Client) Stats(ctx context.Context) (NodeStats, error) {
	var out struct {
		ChainStats struct {
			TxCount   int64   `json:"txCount"`
			BlockTime float64 `json:"blockTime"`
		} `json:"chainStats"`
		ApplicationStats struct {
			ActiveApplications int `json:"activeApplications"`
		} `json:"applicationStats"`
	}

	err := c.do(ctx, "node_stats", queryNodeStats, nil, &out)
	if err != nil {
		return NodeStats{}, fmt.Errorf("query node stats: %w", err)
	}

	return NodeStats{
		TxCount:            out.ChainStats.TxCount,
		BlockTime:          out.ChainStats.BlockTime,
		ActiveApplications: out.ApplicationStats.ActiveApplications,
	}, nil
}
