package ledger

import (
	"context"

	"github.com/gymledger/gymledger/internal/types"
)

// Repository defines the interface for ledger persistence operations
type Repository interface {
	// Transaction operations. Transactions are append-only; the only
	// permitted mutation is the completed -> refunded status move.
	CreateTransaction(ctx context.Context, t *Transaction) error
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	ListTransactions(ctx context.Context, filter *types.LedgerTransactionFilter) ([]*Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id string, status types.TransactionStatus) error

	// Daily aggregate operations. GetDailyCash returns a not found error for
	// a day with no movements yet.
	GetDailyCash(ctx context.Context, date string) (*DailyCash, error)
	// SaveDailyCash persists the aggregate with an optimistic version check,
	// creating it on first write.
	SaveDailyCash(ctx context.Context, d *DailyCash) error
}
