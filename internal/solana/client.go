package solana

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/lugondev/solmint/internal/common"
	werrors "github.com/lugondev/solmint/internal/errors"
	"github.com/lugondev/solmint/internal/metrics"
)

// DefaultSignatureLimit is how many signatures RecentSignatures asks for when
// the caller passes a non-positive limit.
const DefaultSignatureLimit = 10

// DefaultConfirmInterval is how often SendAndConfirm polls signature status.
const DefaultConfirmInterval = 500 * time.Millisecond

// DefaultConfirmTimeout bounds SendAndConfirm; a blockhash expires well
// before this.
const DefaultConfirmTimeout = 90 * time.Second

// Client wraps the Solana RPC client
type Client struct {
	common.LoggerMixin

	rpc             *rpc.Client
	commitment      rpc.CommitmentType
	timeout         time.Duration
	confirmInterval time.Duration
	confirmTimeout  time.Duration
	metrics         metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithCommitment sets the commitment used for reads and preflight.
func WithCommitment(c rpc.CommitmentType) Option {
	return func(cl *Client) {
		if c != "" {
			cl.commitment = c
		}
	}
}

// WithTimeout applies a deadline to every request. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// WithConfirmInterval overrides how often SendAndConfirm polls.
func WithConfirmInterval(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.confirmInterval = d
		}
	}
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m metrics.Metrics) Option {
	return func(cl *Client) {
		if m != nil {
			cl.metrics = m
		}
	}
}

// NewClient creates a new Solana client
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		LoggerMixin:     common.NewLoggerMixin(),
		rpc:             rpc.New(endpoint),
		commitment:      rpc.CommitmentConfirmed,
		confirmInterval: DefaultConfirmInterval,
		confirmTimeout:  DefaultConfirmTimeout,
		metrics:         metrics.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call runs fn under the request timeout and records metrics. Errors come
// back as RPC_FAILED.
func (c *Client) call(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	_ = c.metrics.IncrementCounter(ctx, metrics.MetricRPCRequests, 1)
	err := fn(ctx)
	_ = c.metrics.RecordHistogram(ctx, metrics.MetricRPCLatencyMilliseconds, float64(time.Since(start).Milliseconds()))
	if err != nil {
		_ = c.metrics.IncrementCounter(ctx, metrics.MetricRPCFailures, 1)
		c.GetLogger().Debug("rpc request failed", "method", method, "error", err)
		return werrors.RPCFailed(method, err)
	}
	c.GetLogger().Debug("rpc request", "method", method, "elapsed", time.Since(start))
	return nil
}

// GetBalance returns the balance of an account in lamports
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	var lamports uint64
	err := c.call(ctx, "getBalance", func(ctx context.Context) error {
		result, err := c.rpc.GetBalance(ctx, pubkey, c.commitment)
		if err != nil {
			return err
		}
		lamports = result.Value
		return nil
	})
	if err != nil {
		return 0, err
	}
	return lamports, nil
}

// GetBalanceSOL returns the balance in SOL (not lamports), for display.
func (c *Client) GetBalanceSOL(ctx context.Context, pubkey solana.PublicKey) (float64, error) {
	lamports, err := c.GetBalance(ctx, pubkey)
	if err != nil {
		return 0, err
	}
	return float64(lamports) / float64(solana.LAMPORTS_PER_SOL), nil
}

// RecentSignatures returns up to limit signatures involving pubkey, newest first.
func (c *Client) RecentSignatures(ctx context.Context, pubkey solana.PublicKey, limit int) ([]solana.Signature, error) {
	if limit <= 0 {
		limit = DefaultSignatureLimit
	}

	var sigs []solana.Signature
	err := c.call(ctx, "getSignaturesForAddress", func(ctx context.Context) error {
		result, err := c.rpc.GetSignaturesForAddressWithOpts(ctx, pubkey, &rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: c.readCommitment(),
		})
		if err != nil {
			return err
		}
		sigs = make([]solana.Signature, 0, len(result))
		for _, s := range result {
			if s == nil {
				continue
			}
			sigs = append(sigs, s.Signature)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sigs, nil
}

// GetTransaction returns transaction details
func (c *Client) GetTransaction(ctx context.Context, sig solana.Signature) (*rpc.GetTransactionResult, error) {
	var tx *rpc.GetTransactionResult
	err := c.call(ctx, "getTransaction", func(ctx context.Context) error {
		maxVersion := uint64(0)
		result, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			Commitment:                     c.readCommitment(),
			MaxSupportedTransactionVersion: &maxVersion,
		})
		if err != nil {
			return err
		}
		tx = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// RecentTransactions fetches the newest signatures for pubkey and the
// transaction behind each, in the same order.
func (c *Client) RecentTransactions(ctx context.Context, pubkey solana.PublicKey, limit int) ([]TransactionRecord, error) {
	sigs, err := c.RecentSignatures(ctx, pubkey, limit)
	if err != nil {
		return nil, err
	}

	records := make([]TransactionRecord, 0, len(sigs))
	for _, sig := range sigs {
		tx, err := c.GetTransaction(ctx, sig)
		if err != nil {
			return nil, err
		}
		record, err := RecordFromTransaction(sig, tx)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// GetMinimumBalanceForRentExemption returns the lamports an account of size
// bytes needs to be rent exempt.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	var lamports uint64
	err := c.call(ctx, "getMinimumBalanceForRentExemption", func(ctx context.Context) error {
		result, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, size, c.commitment)
		if err != nil {
			return err
		}
		lamports = result
		return nil
	})
	if err != nil {
		return 0, err
	}
	return lamports, nil
}

// GetLatestBlockhash returns the latest blockhash
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var hash solana.Hash
	err := c.call(ctx, "getLatestBlockhash", func(ctx context.Context) error {
		result, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
		if err != nil {
			return err
		}
		if result == nil || result.Value == nil {
			return fmt.Errorf("empty blockhash response")
		}
		hash = result.Value.Blockhash
		return nil
	})
	return hash, err
}

// SendAndConfirm submits tx and blocks until the cluster reports it at the
// client's commitment level or better.
func (c *Client) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	var sig solana.Signature
	err := c.call(ctx, "sendTransaction", func(ctx context.Context) error {
		s, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			PreflightCommitment: c.commitment,
		})
		if err != nil {
			return err
		}
		sig = s
		return nil
	})
	if err != nil {
		return solana.Signature{}, err
	}

	c.GetLogger().Info("transaction sent", "signature", sig.String())
	return sig, c.waitForConfirmation(ctx, sig)
}

func (c *Client) waitForConfirmation(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.confirmInterval)
	defer ticker.Stop()

	for {
		var status *rpc.SignatureStatusesResult
		err := c.call(ctx, "getSignatureStatuses", func(ctx context.Context) error {
			result, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
			if err != nil {
				return err
			}
			if len(result.Value) > 0 {
				status = result.Value[0]
			}
			return nil
		})
		if err != nil {
			return err
		}

		if status != nil {
			if status.Err != nil {
				return werrors.TxFailed(sig.String(), fmt.Errorf("%v", status.Err))
			}
			if c.reached(status.ConfirmationStatus) {
				c.GetLogger().Info("transaction confirmed", "signature", sig.String(), "status", status.ConfirmationStatus)
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return werrors.Canceled("confirmation of "+sig.String(), ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) reached(status rpc.ConfirmationStatusType) bool {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return c.commitment != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return c.commitment == rpc.CommitmentProcessed
	default:
		return false
	}
}

// readCommitment maps processed to confirmed for methods that reject it.
func (c *Client) readCommitment() rpc.CommitmentType {
	if c.commitment == rpc.CommitmentProcessed {
		return rpc.CommitmentConfirmed
	}
	return c.commitment
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.rpc.Close()
}
