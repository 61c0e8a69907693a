package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/oddstream/oddstream-agent/internal/ledger"
)

type fakeStatsReader struct {
	stats ledger.NodeStats
	err   error
	calls atomic.Int64
}

func (f *fakeStatsReader) Stats(_ context.Context) (ledger.NodeStats, error) {
	f.calls.Add(1)
	if f.err != nil {
		return ledger.NodeStats{}, f.err
	}
	return f.stats, nil
}

func TestNew(t *testing.T) {
	logger := zap.NewNop()
	reader := &fakeStatsReader{}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name: "valid_config",
			cfg: &Config{
				Client:       reader,
				PollInterval: 1 * time.Minute,
				Logger:       logger,
			},
			wantErr: false,
		},
		{
			name:    "nil_config",
			cfg:     nil,
			wantErr: true,
		},
		{
			name: "nil_client",
			cfg: &Config{
				Client:       nil,
				PollInterval: 1 * time.Minute,
				Logger:       logger,
			},
			wantErr: true,
		},
		{
			name: "zero_poll_interval",
			cfg: &Config{
				Client:       reader,
				PollInterval: 0,
				Logger:       logger,
			},
			wantErr: true,
		},
		{
			name: "negative_poll_interval",
			cfg: &Config{
				Client:       reader,
				PollInterval: -1 * time.Second,
				Logger:       logger,
			},
			wantErr: true,
		},
		{
			name: "nil_logger",
			cfg: &Config{
				Client:       reader,
				PollInterval: 1 * time.Minute,
				Logger:       nil,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && m == nil {
				t.Error("New() returned nil monitor")
			}
		})
	}
}

func TestMonitor_Run_PollsOnInterval(t *testing.T) {
	reader := &fakeStatsReader{
		stats: ledger.NodeStats{
			TxCount:            12345,
			BlockTime:          2.5,
			ActiveApplications: 42,
		},
	}

	m, err := New(&Config{
		Client:       reader,
		PollInterval: 20 * time.Millisecond,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err = m.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}

	// Initial poll plus at least a few ticks.
	if got := reader.calls.Load(); got < 3 {
		t.Errorf("Stats() called %d times, want at least 3", got)
	}
}

func TestMonitor_Run_ContinuesAfterPollError(t *testing.T) {
	reader := &fakeStatsReader{err: errors.New("node unreachable")}

	m, err := New(&Config{
		Client:       reader,
		PollInterval: 20 * time.Millisecond,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = m.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}

	// Failed polls must not stop the loop.
	if got := reader.calls.Load(); got < 2 {
		t.Errorf("Stats() called %d times after errors, want at least 2", got)
	}
}

func TestMonitor_Run_ImmediateCancellation(t *testing.T) {
	reader := &fakeStatsReader{}

	m, err := New(&Config{
		Client:       reader,
		PollInterval: 1 * time.Minute,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not exit after context cancellation")
	}
}
