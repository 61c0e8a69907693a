package agent

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/internal/ledger"
	"github.com/oddstream/oddstream-agent/pkg/types"
)

// MessageSender submits one signed payload to a destination chain.
type MessageSender interface {
	SendMessage(ctx context.Context, destination string, payload ledger.Payload) (string, error)
}

// DispatcherConfig holds dispatcher configuration.
type DispatcherConfig struct {
	Sender  MessageSender
	Timeout time.Duration
	Logger  *zap.Logger
}

// Dispatcher fans batches out to their destination chains concurrently.
// Sends to distinct destinations run in parallel; sends to the same
// destination are admitted in nonce order, so a destination sorting its
// inbox by arrival sees strictly increasing nonces even when callers
// overlap. Every batch runs to completion; one failure never short-circuits
// its siblings.
type Dispatcher struct {
	sender  MessageSender
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending map[string][]uint64
}

// NewDispatcher creates a dispatcher. Default send timeout is 15s.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	d := &Dispatcher{
		sender:  cfg.Sender,
		timeout: timeout,
		logger:  cfg.Logger,
		pending: make(map[string][]uint64),
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// Reserve queues a nonce for a destination. Reservations for one
// destination must be made in increasing nonce order; the caller serializes
// allocation and reservation under its own lock.
func (d *Dispatcher) Reserve(destination string, nonce uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[destination] = append(d.pending[destination], nonce)
}

// Release drops a reservation without sending, for callers that abort
// between reservation and dispatch. Waiters behind it are re-admitted.
func (d *Dispatcher) Release(destination string, nonce uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	queue := d.pending[destination]
	for i, n := range queue {
		if n == nonce {
			d.pending[destination] = append(queue[:i], queue[i+1:]...)
			break
		}
	}
	if len(d.pending[destination]) == 0 {
		delete(d.pending, destination)
	}
	d.cond.Broadcast()
}

// waitTurn blocks until nonce is at the head of the destination's queue.
func (d *Dispatcher) waitTurn(destination string, nonce uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.pending[destination]) == 0 || d.pending[destination][0] != nonce {
		d.cond.Wait()
	}
}

// Dispatch sends every batch and waits for all of them. Each batch must
// hold a reservation made by Reserve. The returned slice is indexed like
// batches; inspect each outcome rather than assuming shared success.
func (d *Dispatcher) Dispatch(ctx context.Context, batches []types.Batch) []types.BatchOutcome {
	outcomes := make([]types.BatchOutcome, len(batches))

	var wg sync.WaitGroup
	for i := range batches {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = d.send(ctx, batches[i])
		}(i)
	}
	wg.Wait()

	return outcomes
}

// send delivers one batch once its turn comes up, then releases the slot.
func (d *Dispatcher) send(ctx context.Context, batch types.Batch) types.BatchOutcome {
	d.waitTurn(batch.Destination, batch.Nonce)
	defer d.Release(batch.Destination, batch.Nonce)

	ActiveDispatches.Inc()
	defer ActiveDispatches.Dec()

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	payload := ledger.NewBatchedOrdersPayload(batch)
	txID, err := d.sender.SendMessage(sendCtx, batch.Destination, payload)
	elapsed := time.Since(start)

	DispatchDurationSeconds.Observe(elapsed.Seconds())

	if err != nil {
		BatchesDispatchedTotal.WithLabelValues("failure").Inc()
		d.logger.Error("batch-dispatch-failed",
			zap.String("destination", batch.Destination),
			zap.Uint64("nonce", batch.Nonce),
			zap.Int("order-count", len(batch.Orders)),
			zap.Error(err))

		return types.BatchOutcome{
			Batch: batch,
			Err: &types.DispatchError{
				Destination: batch.Destination,
				Nonce:       batch.Nonce,
				Err:         err,
			},
			Elapsed: elapsed,
		}
	}

	BatchesDispatchedTotal.WithLabelValues("success").Inc()
	d.logger.Info("batch-dispatched",
		zap.String("destination", batch.Destination),
		zap.Uint64("nonce", batch.Nonce),
		zap.Int("order-count", len(batch.Orders)),
		zap.String("transaction-id", txID))

	return types.BatchOutcome{
		Batch:         batch,
		TransactionID: txID,
		Elapsed:       elapsed,
	}
}
