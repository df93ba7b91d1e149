package stellar

import (
	"errors"
	"fmt"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"
)

// ErrNoChanges is returned when reconciliation produced nothing to submit.
// An empty transaction is invalid on the ledger, so assembly refuses it.
var ErrNoChanges = errors.New("no changes to submit")

// SequenceSource provides the current account state for sequence numbers.
// *horizonclient.Client satisfies it.
type SequenceSource interface {
	AccountDetail(request horizonclient.AccountRequest) (horizon.Account, error)
}

// Assembler wraps an operation list into an unsigned transaction envelope.
type Assembler struct {
	Source SequenceSource

	// BaseFee is the per-operation fee in stroops.
	BaseFee int64

	// TimeoutMinutes bounds the envelope's validity window. Zero means no
	// expiry.
	TimeoutMinutes int
}

// Assemble fetches a fresh sequence number for the account and builds an
// unsigned envelope carrying one manage-data instruction per operation, in
// order. The sequence is fetched immediately before building to keep the
// race window against concurrent submissions small. No partial envelope is
// ever returned.
func (a *Assembler) Assemble(accountID string, ops []Operation) (*txnbuild.Transaction, error) {
	if len(ops) == 0 {
		return nil, ErrNoChanges
	}
	for _, op := range ops {
		if err := ValidateEntry(op.Key, op.Value); err != nil {
			return nil, fmt.Errorf("invalid operation: %w", err)
		}
	}

	account, err := a.Source.AccountDetail(horizonclient.AccountRequest{AccountID: accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}

	txOps := make([]txnbuild.Operation, len(ops))
	for i, op := range ops {
		txOps[i] = &txnbuild.ManageData{Name: op.Key, Value: op.Value}
	}

	timebounds := txnbuild.NewInfiniteTimeout()
	if a.TimeoutMinutes > 0 {
		timebounds = txnbuild.NewTimeout(int64(a.TimeoutMinutes) * 60)
	}

	baseFee := a.BaseFee
	if baseFee <= 0 {
		baseFee = txnbuild.MinBaseFee
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: account.AccountID,
			Sequence:  account.Sequence,
		},
		IncrementSequenceNum: true,
		Operations:           txOps,
		BaseFee:              baseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: timebounds},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	return tx, nil
}
