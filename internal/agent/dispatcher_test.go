package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/internal/ledger"
	"github.com/oddstream/oddstream-agent/pkg/types"
)

// fakeSender records sends in arrival order and can fail or stall per
// destination.
type fakeSender struct {
	mu      sync.Mutex
	perDest map[string][]uint64
	failOn  map[string]error
	delayOn map[string]time.Duration
	calls   int
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		perDest: make(map[string][]uint64),
		failOn:  make(map[string]error),
		delayOn: make(map[string]time.Duration),
	}
}

func (f *fakeSender) SendMessage(ctx context.Context, destination string, payload ledger.Payload) (string, error) {
	f.mu.Lock()
	f.calls++
	txID := fmt.Sprintf("tx-%d", f.calls)
	if p, ok := payload.(ledger.BatchedOrdersPayload); ok {
		f.perDest[destination] = append(f.perDest[destination], p.Nonce)
	}
	delay := f.delayOn[destination]
	failErr := f.failOn[destination]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if failErr != nil {
		return "", failErr
	}
	return txID, nil
}

func (f *fakeSender) noncesFor(destination string) []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.perDest[destination]...)
}

func newTestDispatcher(sender MessageSender, timeout time.Duration) *Dispatcher {
	return NewDispatcher(DispatcherConfig{
		Sender:  sender,
		Timeout: timeout,
		Logger:  zap.NewNop(),
	})
}

func testBatch(dest string, nonce uint64) types.Batch {
	return types.Batch{
		Destination: dest,
		Origin:      "chain-user",
		Orders:      []types.Order{{MarketID: "market-a", Side: types.SideYes, Amount: 1}},
		Nonce:       nonce,
	}
}

func TestDispatch_AllBatchesComplete(t *testing.T) {
	sender := newFakeSender()
	sender.failOn["chain-bad"] = errors.New("chain rejected message")
	sender.delayOn["chain-slow"] = 50 * time.Millisecond

	d := newTestDispatcher(sender, time.Second)

	batches := []types.Batch{
		testBatch("chain-bad", 1),
		testBatch("chain-slow", 2),
	}
	for _, b := range batches {
		d.Reserve(b.Destination, b.Nonce)
	}

	outcomes := d.Dispatch(context.Background(), batches)

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	// The instant failure must not cancel the slow sibling.
	if outcomes[0].Succeeded() {
		t.Error("expected chain-bad batch to fail")
	}
	if !outcomes[1].Succeeded() {
		t.Errorf("expected chain-slow batch to succeed, got %v", outcomes[1].Err)
	}
	if outcomes[1].TransactionID == "" {
		t.Error("expected transaction id on success")
	}

	var de *types.DispatchError
	if !errors.As(outcomes[0].Err, &de) {
		t.Fatalf("expected DispatchError, got %T", outcomes[0].Err)
	}
	if de.Destination != "chain-bad" || de.Nonce != 1 {
		t.Errorf("unexpected dispatch error fields: %+v", de)
	}
}

func TestDispatch_SameDestinationNonceOrder(t *testing.T) {
	sender := newFakeSender()
	sender.delayOn["chain-1"] = 20 * time.Millisecond

	d := newTestDispatcher(sender, time.Second)

	// Reservations are registered 1 then 2, as the allocation section
	// would. The later nonce starts dispatching first but must not be
	// sent first.
	d.Reserve("chain-1", 1)
	d.Reserve("chain-1", 2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		d.Dispatch(context.Background(), []types.Batch{testBatch("chain-1", 2)})
	}()
	time.Sleep(10 * time.Millisecond)
	go func() {
		defer wg.Done()
		d.Dispatch(context.Background(), []types.Batch{testBatch("chain-1", 1)})
	}()
	wg.Wait()

	nonces := sender.noncesFor("chain-1")
	if len(nonces) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(nonces))
	}
	if nonces[0] != 1 || nonces[1] != 2 {
		t.Errorf("expected send order [1 2], got %v", nonces)
	}
}

func TestDispatch_FailureReleasesSlot(t *testing.T) {
	sender := newFakeSender()
	sender.failOn["chain-1"] = errors.New("first send rejected")

	d := newTestDispatcher(sender, time.Second)

	d.Reserve("chain-1", 1)
	d.Reserve("chain-1", 2)

	outcomes := d.Dispatch(context.Background(), []types.Batch{testBatch("chain-1", 1)})
	if outcomes[0].Succeeded() {
		t.Fatal("expected first batch to fail")
	}

	// The failed slot is released; the next nonce goes through.
	sender.mu.Lock()
	delete(sender.failOn, "chain-1")
	sender.mu.Unlock()

	done := make(chan []types.BatchOutcome, 1)
	go func() {
		done <- d.Dispatch(context.Background(), []types.Batch{testBatch("chain-1", 2)})
	}()

	select {
	case outcomes := <-done:
		if !outcomes[0].Succeeded() {
			t.Errorf("expected second batch to succeed, got %v", outcomes[0].Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second batch never dispatched; failed slot not released")
	}
}

func TestRelease_UnblocksWaiters(t *testing.T) {
	sender := newFakeSender()
	d := newTestDispatcher(sender, time.Second)

	d.Reserve("chain-1", 1)
	d.Reserve("chain-1", 2)

	done := make(chan []types.BatchOutcome, 1)
	go func() {
		done <- d.Dispatch(context.Background(), []types.Batch{testBatch("chain-1", 2)})
	}()

	// Nonce 2 is parked behind the unsent reservation for nonce 1.
	select {
	case <-done:
		t.Fatal("batch dispatched before its turn")
	case <-time.After(50 * time.Millisecond):
	}

	d.Release("chain-1", 1)

	select {
	case outcomes := <-done:
		if !outcomes[0].Succeeded() {
			t.Errorf("expected success after release, got %v", outcomes[0].Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("release did not unblock the waiting batch")
	}
}

func TestDispatch_Timeout(t *testing.T) {
	sender := newFakeSender()
	sender.delayOn["chain-1"] = time.Second

	d := newTestDispatcher(sender, 50*time.Millisecond)

	d.Reserve("chain-1", 1)
	outcomes := d.Dispatch(context.Background(), []types.Batch{testBatch("chain-1", 1)})

	if outcomes[0].Succeeded() {
		t.Fatal("expected timeout failure")
	}
	if !errors.Is(outcomes[0].Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", outcomes[0].Err)
	}
	if outcomes[0].Elapsed <= 0 {
		t.Error("expected positive elapsed time")
	}
}

func TestDispatch_CrossDestinationConcurrency(t *testing.T) {
	sender := newFakeSender()
	sender.delayOn["chain-1"] = 80 * time.Millisecond
	sender.delayOn["chain-2"] = 80 * time.Millisecond
	sender.delayOn["chain-3"] = 80 * time.Millisecond

	d := newTestDispatcher(sender, time.Second)

	batches := []types.Batch{
		testBatch("chain-1", 1),
		testBatch("chain-2", 2),
		testBatch("chain-3", 3),
	}
	for _, b := range batches {
		d.Reserve(b.Destination, b.Nonce)
	}

	start := time.Now()
	outcomes := d.Dispatch(context.Background(), batches)
	elapsed := time.Since(start)

	for i, o := range outcomes {
		if !o.Succeeded() {
			t.Errorf("batch %d failed: %v", i, o.Err)
		}
	}

	// Serial execution would take at least 240ms.
	if elapsed > 200*time.Millisecond {
		t.Errorf("expected concurrent dispatch, took %v", elapsed)
	}
}
