// Package testutil provides a mock ledger node and shared fixtures for
// integration-style tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/oddstream/oddstream-agent/internal/ledger"
	"github.com/oddstream/oddstream-agent/pkg/types"
)

// SubmittedMessage is one message accepted by the mock node.
type SubmittedMessage struct {
	ChainID   string
	Owner     string
	Signature string
	Payload   string
}

// MockNode is a mock HTTP server that simulates a ledger node's GraphQL
// endpoint. Chains, market registrations and submitted messages are held
// in memory so tests can assert on them.
type MockNode struct {
	*httptest.Server

	mu           sync.Mutex
	chainSeq     int
	marketChains map[string]string
	marketStates map[string]types.MarketState
	markets      []types.Market
	stats        ledger.NodeStats
	messages     []SubmittedMessage
	submitErr    string
}

// NewMockNode creates a mock node with an empty catalog.
func NewMockNode() *MockNode {
	mock := &MockNode{
		marketChains: make(map[string]string),
		marketStates: make(map[string]types.MarketState),
		stats: ledger.NodeStats{
			TxCount:            1000,
			BlockTime:          2.0,
			ActiveApplications: 1,
		},
	}

	mock.Server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func (m *MockNode) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/graphql" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.writeErrors(w, "malformed request")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case strings.Contains(req.Query, "openChain"):
		m.handleOpenChain(w)
	case strings.Contains(req.Query, "submitMessage"):
		m.handleSubmitMessage(w, req.Variables)
	case strings.Contains(req.Query, "marketChain"):
		m.handleMarketChain(w, req.Variables)
	case strings.Contains(req.Query, "chainStats"):
		m.handleStats(w)
	case strings.Contains(req.Query, "markets("):
		m.handleMarkets(w, req.Variables)
	case strings.Contains(req.Query, "market("):
		m.handleMarketState(w, req.Variables)
	default:
		m.writeErrors(w, "unknown operation")
	}
}

func (m *MockNode) handleOpenChain(w http.ResponseWriter) {
	m.chainSeq++
	chainID := "chain-user-" + strconv.Itoa(m.chainSeq)

	m.writeData(w, map[string]any{
		"openChain": map[string]any{"chainId": chainID},
	})
}

func (m *MockNode) handleSubmitMessage(w http.ResponseWriter, vars map[string]any) {
	if m.submitErr != "" {
		m.writeErrors(w, m.submitErr)
		return
	}

	msg := SubmittedMessage{
		ChainID:   stringVar(vars, "chainId"),
		Owner:     stringVar(vars, "owner"),
		Signature: stringVar(vars, "signature"),
		Payload:   stringVar(vars, "payload"),
	}
	m.messages = append(m.messages, msg)

	m.writeData(w, map[string]any{
		"submitMessage": map[string]any{
			"transactionId": "tx-" + strconv.Itoa(len(m.messages)),
		},
	})
}

func (m *MockNode) handleMarketChain(w http.ResponseWriter, vars map[string]any) {
	chainID, ok := m.marketChains[stringVar(vars, "marketId")]
	if !ok {
		m.writeData(w, map[string]any{"marketChain": nil})
		return
	}
	m.writeData(w, map[string]any{"marketChain": chainID})
}

func (m *MockNode) handleMarketState(w http.ResponseWriter, vars map[string]any) {
	state, ok := m.marketStates[stringVar(vars, "id")]
	if !ok {
		m.writeData(w, map[string]any{"market": nil})
		return
	}
	m.writeData(w, map[string]any{
		"market": map[string]any{
			"yesOdds": state.YesOdds,
			"noOdds":  state.NoOdds,
		},
	})
}

func (m *MockNode) handleMarkets(w http.ResponseWriter, vars map[string]any) {
	minVolume, _ := vars["minVolume"].(float64)
	status, _ := vars["status"].(string)

	matched := make([]types.Market, 0, len(m.markets))
	for _, market := range m.markets {
		if minVolume > 0 && market.Volume < minVolume {
			continue
		}
		if status != "" && market.Status != status {
			continue
		}
		matched = append(matched, market)
	}

	if limit, ok := vars["limit"].(float64); ok && int(limit) < len(matched) {
		matched = matched[:int(limit)]
	}

	m.writeData(w, map[string]any{"markets": matched})
}

func (m *MockNode) handleStats(w http.ResponseWriter) {
	m.writeData(w, map[string]any{
		"chainStats": map[string]any{
			"txCount":   m.stats.TxCount,
			"blockTime": m.stats.BlockTime,
		},
		"applicationStats": map[string]any{
			"activeApplications": m.stats.ActiveApplications,
		},
	})
}

func (m *MockNode) writeData(w http.ResponseWriter, data map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (m *MockNode) writeErrors(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]any{{"message": message}},
	})
}

// RegisterMarket adds a market to the catalog and maps it to a chain.
func (m *MockNode) RegisterMarket(market types.Market) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.markets = append(m.markets, market)
	if market.ChainID != "" {
		m.marketChains[market.ID] = market.ChainID
	}
	m.marketStates[market.ID] = market.State()
}

// SetMarketState updates the odds returned for a market.
func (m *MockNode) SetMarketState(marketID string, yesOdds, noOdds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marketStates[marketID] = types.MarketState{YesOdds: yesOdds, NoOdds: noOdds}
}

// SetStats overrides the node statistics snapshot.
func (m *MockNode) SetStats(stats ledger.NodeStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = stats
}

// SetSubmitError makes every subsequent submitMessage fail with message.
// Pass the empty string to clear.
func (m *MockNode) SetSubmitError(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitErr = message
}

// Messages returns a copy of every message accepted so far.
func (m *MockNode) Messages() []SubmittedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]SubmittedMessage, len(m.messages))
	copy(result, m.messages)
	return result
}

// MessagesTo returns the messages accepted for one destination chain, in
// arrival order.
func (m *MockNode) MessagesTo(chainID string) []SubmittedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []SubmittedMessage
	for _, msg := range m.messages {
		if msg.ChainID == chainID {
			result = append(result, msg)
		}
	}
	return result
}

// NoncesTo returns the batch nonces delivered to one destination chain, in
// arrival order. Registration messages carry no nonce and are skipped.
func (m *MockNode) NoncesTo(chainID string) []uint64 {
	var nonces []uint64
	for _, batch := range m.BatchesTo(chainID) {
		nonces = append(nonces, batch.Nonce)
	}
	return nonces
}

// BatchesTo decodes the batched-order payloads delivered to one destination
// chain, in arrival order.
func (m *MockNode) BatchesTo(chainID string) []ledger.BatchedOrdersPayload {
	var batches []ledger.BatchedOrdersPayload
	for _, msg := range m.MessagesTo(chainID) {
		var payload ledger.BatchedOrdersPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			continue
		}
		if payload.Type == ledger.MessageTypeBatchedOrders {
			batches = append(batches, payload)
		}
	}
	return batches
}

// Registrations decodes the user chain registrations delivered to one
// destination chain.
func (m *MockNode) Registrations(chainID string) []ledger.RegisterUserChainPayload {
	var regs []ledger.RegisterUserChainPayload
	for _, msg := range m.MessagesTo(chainID) {
		var payload ledger.RegisterUserChainPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			continue
		}
		if payload.Operation == ledger.OperationRegisterUserChain {
			regs = append(regs, payload)
		}
	}
	return regs
}

func stringVar(vars map[string]any, key string) string {
	s, _ := vars[key].(string)
	return s
}
