package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/pkg/types"
)

const subscriptionMarketUpdates = `subscription MarketUpdates($marketIds: [String!]) {
  marketUpdates(marketIds: $marketIds) { marketId yesOdds noOdds volume status timestamp }
}`

// SubscriberConfig holds websocket subscriber configuration.
type SubscriberConfig struct {
	WSURL            string
	DialTimeout      time.Duration
	PongTimeout      time.Duration
	PingInterval     time.Duration
	ReconnectInitial time.Duration
	ReconnectMax     time.Duration
	UpdateBufferSize int
	Logger           *zap.Logger
}

// Subscriber streams live market updates from the node's websocket endpoint.
// It reconnects with capped exponential backoff and fans updates out on a
// single buffered channel; a full channel drops the update rather than
// blocking the read loop.
type Subscriber struct {
	cfg       SubscriberConfig
	logger    *zap.Logger
	updates   chan types.MarketUpdate
	connected atomic.Bool

	mu      sync.Mutex
	conn    *websocket.Conn
	markets map[string]struct{}
}

// NewSubscriber creates a websocket subscriber. Defaults: 10s dial timeout,
// 15s pong timeout, 10s ping interval, 1s..30s reconnect backoff, 256
// buffered updates.
func NewSubscriber(cfg SubscriberConfig) (*Subscriber, error) {
	if cfg.WSURL == "" {
		return nil, errors.New("ws url cannot be empty")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 15 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 10 * time.Second
	}
	if cfg.ReconnectInitial <= 0 {
		cfg.ReconnectInitial = 1 * time.Second
	}
	if cfg.ReconnectMax <= 0 {
		cfg.ReconnectMax = 30 * time.Second
	}
	if cfg.UpdateBufferSize <= 0 {
		cfg.UpdateBufferSize = 256
	}

	return &Subscriber{
		cfg:     cfg,
		logger:  cfg.Logger,
		updates: make(chan types.MarketUpdate, cfg.UpdateBufferSize),
		markets: make(map[string]struct{}),
	}, nil
}

// Updates returns the stream of market updates. The channel is closed when
// Run returns.
func (s *Subscriber) Updates() <-chan types.MarketUpdate {
	return s.updates
}

// IsConnected reports whether the subscriber currently holds a live
// connection.
func (s *Subscriber) IsConnected() bool {
	return s.connected.Load()
}

// Subscribe adds market ids to the subscription set. When connected, the
// new set is pushed to the node immediately; otherwise it is sent on the
// next (re)connect.
func (s *Subscriber) Subscribe(marketIDs ...string) {
	s.mu.Lock()
	added := false
	for _, id := range marketIDs {
		if id == "" {
			continue
		}
		if _, ok := s.markets[id]; !ok {
			s.markets[id] = struct{}{}
			added = true
		}
	}
	conn := s.conn
	ids := s.marketList()
	s.mu.Unlock()

	if !added || conn == nil {
		return
	}

	err := s.sendSubscribe(conn, ids)
	if err != nil {
		s.logger.Warn("subscribe-push-failed", zap.Error(err))
	}
}

// marketList returns the subscription set; callers must hold s.mu.
func (s *Subscriber) marketList() []string {
	ids := make([]string, 0, len(s.markets))
	for id := range s.markets {
		ids = append(ids, id)
	}
	return ids
}

type subscribeRequest struct {
	Type      string `json:"type"`
	Query     string `json:"query"`
	Variables struct {
		MarketIDs []string `json:"marketIds"`
	} `json:"variables"`
}

type wsEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Run connects and consumes updates until ctx is cancelled. The updates
// channel is closed on return.
func (s *Subscriber) Run(ctx context.Context) {
	defer close(s.updates)

	backoff := s.cfg.ReconnectInitial

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := s.connectAndRead(ctx)
		if ctx.Err() != nil {
			return
		}

		WSReconnectsTotal.Inc()
		s.logger.Warn("ws-connection-lost",
			zap.Error(err),
			zap.Duration("backoff", backoff))

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}

		backoff *= 2
		if backoff > s.cfg.ReconnectMax {
			backoff = s.cfg.ReconnectMax
		}
	}
}

// connectAndRead dials, subscribes, and reads until the connection drops or
// ctx is cancelled.
func (s *Subscriber) connectAndRead(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: s.cfg.DialTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, s.cfg.WSURL, nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conn = conn
	ids := s.marketList()
	s.mu.Unlock()

	s.connected.Store(true)
	WSConnectedGauge.Set(1)
	s.logger.Info("ws-connected", zap.String("url", s.cfg.WSURL))

	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		s.connected.Store(false)
		WSConnectedGauge.Set(0)
		conn.Close()
	}()

	if len(ids) > 0 {
		err = s.sendSubscribe(conn, ids)
		if err != nil {
			return err
		}
	}

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	})

	// Close the connection when ctx ends so the blocked read returns.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(s.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.DialTimeout))
				if err != nil {
					return
				}
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))

		s.handleMessage(raw)
	}
}

// sendSubscribe pushes the subscription document for the given markets.
func (s *Subscriber) sendSubscribe(conn *websocket.Conn, marketIDs []string) error {
	req := subscribeRequest{
		Type:  "subscribe",
		Query: subscriptionMarketUpdates,
	}
	req.Variables.MarketIDs = marketIDs

	raw, err := json.Marshal(req)
	if err != nil {
		return err
	}

	return conn.WriteMessage(websocket.TextMessage, raw)
}

// handleMessage decodes one frame and forwards market updates.
func (s *Subscriber) handleMessage(raw []byte) {
	WSMessagesTotal.Inc()

	var envelope wsEnvelope
	err := json.Unmarshal(raw, &envelope)
	if err != nil {
		s.logger.Warn("ws-malformed-frame", zap.Error(err))
		return
	}

	if envelope.Type != "market_update" {
		return
	}

	var update types.MarketUpdate
	err = json.Unmarshal(envelope.Payload, &update)
	if err != nil {
		s.logger.Warn("ws-malformed-update", zap.Error(err))
		return
	}

	select {
	case s.updates <- update:
	default:
		WSDroppedUpdatesTotal.Inc()
		s.logger.Warn("ws-update-dropped",
			zap.String("market-id", update.MarketID))
	}
}
