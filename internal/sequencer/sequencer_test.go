package sequencer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/internal/storage"
)

type failingStore struct {
	err error
}

func (f *failingStore) Next(ctx context.Context, origin string) (uint64, error) {
	return 0, f.err
}

func (f *failingStore) Close() error {
	return nil
}

func newTestSequencer(t *testing.T) *Sequencer {
	t.Helper()

	logger := zap.NewNop()
	seq, err := New(storage.NewMemoryNonceStore(logger), logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return seq
}

func TestNew_Validation(t *testing.T) {
	logger := zap.NewNop()

	_, err := New(nil, logger)
	if err == nil {
		t.Error("expected error for nil store")
	}

	_, err = New(storage.NewMemoryNonceStore(logger), nil)
	if err == nil {
		t.Error("expected error for nil logger")
	}
}

func TestNext_StrictlyIncreasing(t *testing.T) {
	seq := newTestSequencer(t)
	ctx := context.Background()

	var prev uint64
	for i := 0; i < 10; i++ {
		nonce, err := seq.Next(ctx, "chain-user-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if nonce != prev+1 {
			t.Fatalf("expected nonce %d, got %d", prev+1, nonce)
		}
		prev = nonce
	}
}

func TestNext_EmptyOrigin(t *testing.T) {
	seq := newTestSequencer(t)

	_, err := seq.Next(context.Background(), "")
	if err == nil {
		t.Error("expected error for empty origin")
	}
}

func TestNext_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("counter unavailable")
	seq, err := New(&failingStore{err: storeErr}, zap.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, err = seq.Next(context.Background(), "chain-user-1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestNext_ConcurrentAllocations(t *testing.T) {
	seq := newTestSequencer(t)
	ctx := context.Background()

	const goroutines = 16
	const perGoroutine = 100

	var wg sync.WaitGroup
	results := make(chan uint64, goroutines*perGoroutine)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				nonce, err := seq.Next(ctx, "chain-user-1")
				if err != nil {
					t.Errorf("expected no error, got %v", err)
					return
				}
				results <- nonce
			}
		}()
	}

	wg.Wait()
	close(results)

	seen := make(map[uint64]bool, goroutines*perGoroutine)
	var nonces []uint64
	for n := range results {
		if seen[n] {
			t.Fatalf("nonce %d issued twice", n)
		}
		seen[n] = true
		nonces = append(nonces, n)
	}

	if len(nonces) != goroutines*perGoroutine {
		t.Fatalf("expected %d nonces, got %d", goroutines*perGoroutine, len(nonces))
	}

	sort.Slice(nonces, func(i, j int) bool { return nonces[i] < nonces[j] })
	for i, n := range nonces {
		if n != uint64(i+1) {
			t.Fatalf("expected contiguous sequence, position %d holds %d", i, n)
		}
	}
}

func TestNext_OriginsIndependent(t *testing.T) {
	seq := newTestSequencer(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := seq.Next(ctx, "chain-a"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	nonce, err := seq.Next(ctx, "chain-b")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if nonce != 1 {
		t.Errorf("expected fresh origin to start at 1, got %d", nonce)
	}
}

func TestClose(t *testing.T) {
	seq := newTestSequencer(t)

	if err := seq.Close(); err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}
}
