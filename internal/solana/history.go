package solana

import (
	"fmt"
	"math"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/lugondev/solmint/internal/common"
	werrors "github.com/lugondev/solmint/internal/errors"
)

// TransactionRecord is one row of a wallet's recent history.
type TransactionRecord struct {
	Signature solana.Signature
	Slot      uint64
	// BlockTime is nil while the block is not yet finalized.
	BlockTime *time.Time
	// NetLamports is the balance change of the first account (the fee payer).
	NetLamports int64
	Failed      bool
}

// NetSOL returns the balance change in SOL, for display.
func (r TransactionRecord) NetSOL() float64 {
	return common.LamportsToSOLFloat(r.NetLamports)
}

// NetSOLString returns the balance change as an exact decimal string.
func (r TransactionRecord) NetSOLString() string {
	return common.SignedLamportsToSOL(r.NetLamports)
}

// RecordFromTransaction derives a TransactionRecord from a getTransaction result.
func RecordFromTransaction(sig solana.Signature, tx *rpc.GetTransactionResult) (TransactionRecord, error) {
	if tx == nil {
		return TransactionRecord{}, werrors.DecodeFailed("transaction "+sig.String(), fmt.Errorf("transaction not found"))
	}
	if tx.Meta == nil {
		return TransactionRecord{}, werrors.DecodeFailed("transaction "+sig.String(), fmt.Errorf("missing meta"))
	}

	net, err := NetLamports(tx.Meta.PreBalances, tx.Meta.PostBalances)
	if err != nil {
		return TransactionRecord{}, werrors.DecodeFailed("transaction "+sig.String(), err)
	}

	record := TransactionRecord{
		Signature:   sig,
		Slot:        tx.Slot,
		NetLamports: net,
		Failed:      tx.Meta.Err != nil,
	}
	if tx.BlockTime != nil {
		t := tx.BlockTime.Time().UTC()
		record.BlockTime = &t
	}
	return record, nil
}

// NetLamports returns post[0] - pre[0].
func NetLamports(pre, post []uint64) (int64, error) {
	if len(pre) == 0 || len(post) == 0 {
		return 0, fmt.Errorf("missing balances (pre=%d post=%d)", len(pre), len(post))
	}
	before, after := pre[0], post[0]
	if before > math.MaxInt64 || after > math.MaxInt64 {
		return 0, fmt.Errorf("balance out of range")
	}
	return int64(after) - int64(before), nil
}
