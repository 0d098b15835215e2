package negotiation

import "github.com/palengke-ph/backend/internal/models"

// TransactionState is a tagged view of a conversation's transaction record.
// A transaction may be absent even when an offer exists (the offer is still
// pending, or the data is inconsistent), so callers branch on the variant
// instead of nil-checking fields.
type TransactionState interface {
	transactionState()
}

// NoTransaction means the conversation has no transaction record.
type NoTransaction struct{}

// ActiveTransaction wraps a transaction whose status is active.
type ActiveTransaction struct {
	Transaction *models.Transaction
}

// TerminalTransaction wraps a cancelled or completed transaction.
type TerminalTransaction struct {
	Transaction *models.Transaction
}

func (NoTransaction) transactionState()       {}
func (ActiveTransaction) transactionState()   {}
func (TerminalTransaction) transactionState() {}

// StateOf classifies a transaction record, which may be nil.
func StateOf(tx *models.Transaction) TransactionState {
	switch {
	case tx == nil:
		return NoTransaction{}
	case tx.Status == models.TransactionActive:
		return ActiveTransaction{Transaction: tx}
	default:
		return TerminalTransaction{Transaction: tx}
	}
}
