package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	werrors "github.com/lugondev/solmint/internal/errors"
	"github.com/lugondev/solmint/internal/metrics"
)

// scriptedBalances returns readings in order, repeating the last one.
type scriptedBalances struct {
	mu       sync.Mutex
	readings []uint64
	err      error
	calls    int
}

func (s *scriptedBalances) GetBalance(ctx context.Context, _ solana.PublicKey) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	i := min(s.calls-1, len(s.readings)-1)
	return s.readings[i], nil
}

func (s *scriptedBalances) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestWatcherPollsUntilThreshold(t *testing.T) {
	source := &scriptedBalances{readings: []uint64{0, 1_000_000, 2_500_000}}
	m := metrics.NewLogMetrics(nil)
	w := NewWatcher(source, WithPollInterval(time.Millisecond), WithWatcherMetrics(m))

	var seen []PollProgress
	w.OnProgress(func(p PollProgress) { seen = append(seen, p) })

	got, err := w.Wait(context.Background(), solana.NewWallet().PublicKey(), 2_000_000)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if got != 2_500_000 {
		t.Errorf("balance = %d, want 2500000", got)
	}
	if source.Calls() != 3 {
		t.Errorf("polls = %d, want 3", source.Calls())
	}
	if m.Counter(metrics.MetricDepositPolls) != 3 {
		t.Errorf("deposit_polls = %d", m.Counter(metrics.MetricDepositPolls))
	}
	if m.Gauge(metrics.MetricDepositBalanceLamports) != 2_500_000 {
		t.Errorf("deposit_balance_lamports = %v", m.Gauge(metrics.MetricDepositBalanceLamports))
	}
	if len(seen) != 3 || seen[2].Poll != 3 || seen[0].Target != 2_000_000 {
		t.Errorf("progress = %+v", seen)
	}
}

func TestWatcherThresholdIsInclusive(t *testing.T) {
	source := &scriptedBalances{readings: []uint64{2_000_000}}
	w := NewWatcher(source, WithPollInterval(time.Hour))

	got, err := w.Wait(context.Background(), solana.NewWallet().PublicKey(), 2_000_000)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if got != 2_000_000 || source.Calls() != 1 {
		t.Errorf("balance=%d polls=%d, want 2000000 after 1 poll", got, source.Calls())
	}
}

func TestWatcherCanceled(t *testing.T) {
	source := &scriptedBalances{readings: []uint64{0}}
	w := NewWatcher(source, WithPollInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	w.OnProgress(func(p PollProgress) {
		if p.Poll == 2 {
			cancel()
		}
	})

	_, err := w.Wait(ctx, solana.NewWallet().PublicKey(), 1)
	if !werrors.Is(err, werrors.ErrCanceled) {
		t.Fatalf("expected CANCELED, got %v", err)
	}
	if source.Calls() != 2 {
		t.Errorf("polls = %d, want 2", source.Calls())
	}
}

func TestWatcherDepositTimeout(t *testing.T) {
	source := &scriptedBalances{readings: []uint64{0}}
	w := NewWatcher(source, WithPollInterval(5*time.Millisecond), WithDepositTimeout(30*time.Millisecond))

	_, err := w.Wait(context.Background(), solana.NewWallet().PublicKey(), 1)
	if !werrors.Is(err, werrors.ErrCanceled) {
		t.Fatalf("expected CANCELED, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline cause, got %v", err)
	}
}

func TestWatcherBalanceErrorEndsWait(t *testing.T) {
	boom := werrors.RPCFailed("getBalance", errors.New("connection refused"))
	source := &scriptedBalances{err: boom}
	w := NewWatcher(source, WithPollInterval(time.Millisecond))

	_, err := w.Wait(context.Background(), solana.NewWallet().PublicKey(), 1)
	if !werrors.Is(err, werrors.ErrRPCFailed) {
		t.Fatalf("expected RPC_FAILED, got %v", err)
	}
	if source.Calls() != 1 {
		t.Errorf("polls = %d, want 1", source.Calls())
	}
}
