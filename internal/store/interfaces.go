// Package store defines the persistence contracts of the ledger: a durable
// local key-value fallback and a remote relational backend. Concrete
// implementations live in the localfile and postgres subpackages.
package store

import (
	"context"

	"github.com/dvloznov/jarvis-ledger/internal/domain"
)

// Local persisted keys. Each record kind is one textual blob; the migration
// flag is a dedicated key so the one-time check survives restarts.
const (
	TransactionsKey  = "jarvis_transactions"
	BudgetsKey       = "jarvis_budgets"
	MigrationFlagKey = "jarvis_finances_migrated_to_supabase"
)

// LocalStore is the on-device fallback backend. Operations are synchronous
// and never fail on reads: a missing or corrupt blob loads as empty.
type LocalStore interface {
	LoadTransactions() []domain.Transaction
	SaveTransactions([]domain.Transaction) error
	LoadBudgets() []domain.Budget
	SaveBudgets([]domain.Budget) error
	Clear(key string) error

	MigrationDone() bool
	MarkMigrationDone() error
}

// RemoteStore is the remote relational backend. ListIDs calls are the cheap
// existence checks used by reconciliation; Upsert operations are idempotent
// (rows with a matching id are fully replaced).
type RemoteStore interface {
	ListTransactionIDs(ctx context.Context) ([]string, error)
	LoadTransactions(ctx context.Context) ([]domain.Transaction, error)
	UpsertTransactions(ctx context.Context, txs []domain.Transaction) error
	DeleteTransactionsByIDs(ctx context.Context, ids []string) error
	DeleteAllTransactions(ctx context.Context) error

	ListBudgetIDs(ctx context.Context) ([]string, error)
	LoadBudgets(ctx context.Context) ([]domain.Budget, error)
	UpsertBudgets(ctx context.Context, budgets []domain.Budget) error
	DeleteBudgetsByIDs(ctx context.Context, ids []string) error
	DeleteAllBudgets(ctx context.Context) error
}
