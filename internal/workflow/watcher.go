package workflow

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/solmint/internal/common"
	werrors "github.com/lugondev/solmint/internal/errors"
	"github.com/lugondev/solmint/internal/metrics"
)

// DefaultPollInterval is the pause between balance checks.
const DefaultPollInterval = time.Second

// BalanceSource reads an account balance in lamports.
type BalanceSource interface {
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
}

// PollProgress is reported after every balance check.
type PollProgress struct {
	Poll     int
	Lamports uint64
	Target   uint64
}

// Watcher polls a balance until it reaches a threshold.
type Watcher struct {
	common.LoggerMixin

	source   BalanceSource
	interval time.Duration
	timeout  time.Duration
	metrics  metrics.Metrics
	progress func(PollProgress)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithDepositTimeout gives up after d. Zero waits until ctx is done.
func WithDepositTimeout(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.timeout = d
	}
}

// WithWatcherMetrics attaches a metrics sink.
func WithWatcherMetrics(m metrics.Metrics) WatcherOption {
	return func(w *Watcher) {
		if m != nil {
			w.metrics = m
		}
	}
}

// NewWatcher creates a Watcher reading from source.
func NewWatcher(source BalanceSource, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		LoggerMixin: common.NewLoggerMixin(),
		source:      source,
		interval:    DefaultPollInterval,
		metrics:     metrics.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// OnProgress sets a callback run after every poll. It replaces any earlier
// callback; nil removes it.
func (w *Watcher) OnProgress(fn func(PollProgress)) {
	w.progress = fn
}

// Wait blocks until the balance of pubkey is at least minLamports and
// returns that balance. The first check happens immediately. A failed
// balance read ends the wait.
func (w *Watcher) Wait(ctx context.Context, pubkey solana.PublicKey, minLamports uint64) (uint64, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	w.GetLogger().Info("waiting for deposit",
		"pubkey", pubkey.String(),
		"min_lamports", minLamports,
		"poll_interval", w.interval,
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for poll := 1; ; poll++ {
		if err := ctx.Err(); err != nil {
			return 0, werrors.Canceled("deposit wait", err)
		}

		lamports, err := w.source.GetBalance(ctx, pubkey)
		if err != nil {
			if ctx.Err() != nil {
				return 0, werrors.Canceled("deposit wait", ctx.Err())
			}
			return 0, err
		}

		_ = w.metrics.IncrementCounter(ctx, metrics.MetricDepositPolls, 1)
		_ = w.metrics.UpdateGauge(ctx, metrics.MetricDepositBalanceLamports, float64(lamports))
		if w.progress != nil {
			w.progress(PollProgress{Poll: poll, Lamports: lamports, Target: minLamports})
		}

		if lamports >= minLamports {
			w.GetLogger().Info("deposit received",
				"pubkey", pubkey.String(),
				"lamports", lamports,
				"polls", poll,
			)
			return lamports, nil
		}

		w.GetLogger().Debug("balance below threshold",
			"lamports", lamports,
			"min_lamports", minLamports,
			"poll", poll,
		)

		select {
		case <-ctx.Done():
			return 0, werrors.Canceled("deposit wait", ctx.Err())
		case <-ticker.C:
		}
	}
}
