package reconcile

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/dvloznov/jarvis-ledger/internal/domain"
)

// mockRemote records reconciliation calls and can fail individual steps.
type mockRemote struct {
	txIDs     []string
	budgetIDs []string

	listTxErr     error
	deleteTxErr   error
	upsertTxErr   error
	listBudgetErr error

	deletedTxIDs     []string
	deletedBudgetIDs []string
	upsertedTxs      []domain.Transaction
	upsertedBudgets  []domain.Budget
	deleteAllTxCalls int
	deleteAllBCalls  int
	upsertTxCalls    int
}

func (m *mockRemote) ListTransactionIDs(ctx context.Context) ([]string, error) {
	if m.listTxErr != nil {
		return nil, m.listTxErr
	}
	return m.txIDs, nil
}

func (m *mockRemote) LoadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return nil, nil
}

func (m *mockRemote) UpsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	m.upsertTxCalls++
	if m.upsertTxErr != nil {
		return m.upsertTxErr
	}
	m.upsertedTxs = append(m.upsertedTxs, txs...)
	return nil
}

func (m *mockRemote) DeleteTransactionsByIDs(ctx context.Context, ids []string) error {
	if m.deleteTxErr != nil {
		return m.deleteTxErr
	}
	m.deletedTxIDs = append(m.deletedTxIDs, ids...)
	return nil
}

func (m *mockRemote) DeleteAllTransactions(ctx context.Context) error {
	m.deleteAllTxCalls++
	return nil
}

func (m *mockRemote) ListBudgetIDs(ctx context.Context) ([]string, error) {
	if m.listBudgetErr != nil {
		return nil, m.listBudgetErr
	}
	return m.budgetIDs, nil
}

func (m *mockRemote) LoadBudgets(ctx context.Context) ([]domain.Budget, error) {
	return nil, nil
}

func (m *mockRemote) UpsertBudgets(ctx context.Context, budgets []domain.Budget) error {
	m.upsertedBudgets = append(m.upsertedBudgets, budgets...)
	return nil
}

func (m *mockRemote) DeleteBudgetsByIDs(ctx context.Context, ids []string) error {
	m.deletedBudgetIDs = append(m.deletedBudgetIDs, ids...)
	return nil
}

func (m *mockRemote) DeleteAllBudgets(ctx context.Context) error {
	m.deleteAllBCalls++
	return nil
}

func txs(ids ...string) []domain.Transaction {
	out := make([]domain.Transaction, len(ids))
	for i, id := range ids {
		out[i] = domain.Transaction{ID: id}
	}
	return out
}

func TestReconciler_SyncTransactions_DeletesOrphansAndUpserts(t *testing.T) {
	remote := &mockRemote{txIDs: []string{"a", "b", "stale-1", "stale-2"}}
	r := New(remote)

	ok := r.SyncTransactions(context.Background(), txs("a", "b", "c"))
	if !ok {
		t.Fatal("SyncTransactions() = false, want true")
	}

	sort.Strings(remote.deletedTxIDs)
	if len(remote.deletedTxIDs) != 2 || remote.deletedTxIDs[0] != "stale-1" || remote.deletedTxIDs[1] != "stale-2" {
		t.Errorf("deleted IDs = %v, want [stale-1 stale-2]", remote.deletedTxIDs)
	}
	if len(remote.upsertedTxs) != 3 {
		t.Errorf("upserted %d transactions, want 3", len(remote.upsertedTxs))
	}
}

func TestReconciler_SyncTransactions_EmptyDeletesAll(t *testing.T) {
	remote := &mockRemote{txIDs: []string{"a", "b"}}
	r := New(remote)

	if ok := r.SyncTransactions(context.Background(), nil); !ok {
		t.Fatal("SyncTransactions(nil) = false, want true")
	}
	if remote.deleteAllTxCalls != 1 {
		t.Errorf("DeleteAllTransactions called %d times, want 1", remote.deleteAllTxCalls)
	}
	if remote.upsertTxCalls != 0 {
		t.Error("upsert ran for an empty collection")
	}
}

func TestReconciler_SyncTransactions_ListFailureSkipsCleanupButUpserts(t *testing.T) {
	remote := &mockRemote{listTxErr: errors.New("connection reset")}
	r := New(remote)

	ok := r.SyncTransactions(context.Background(), txs("a"))
	if ok {
		t.Error("SyncTransactions() = true despite list failure")
	}
	if len(remote.deletedTxIDs) != 0 {
		t.Errorf("orphan cleanup ran despite list failure: deleted %v", remote.deletedTxIDs)
	}
	if remote.upsertTxCalls != 1 {
		t.Errorf("upsert ran %d times, want 1: a failed listing never blocks the upsert", remote.upsertTxCalls)
	}
}

func TestReconciler_SyncTransactions_DeleteFailureStillUpserts(t *testing.T) {
	remote := &mockRemote{
		txIDs:       []string{"stale"},
		deleteTxErr: errors.New("permission denied"),
	}
	r := New(remote)

	ok := r.SyncTransactions(context.Background(), txs("a"))
	if ok {
		t.Error("SyncTransactions() = true despite delete failure")
	}
	if remote.upsertTxCalls != 1 {
		t.Errorf("upsert ran %d times, want 1", remote.upsertTxCalls)
	}
}

func TestReconciler_SyncTransactions_UpsertFailure(t *testing.T) {
	remote := &mockRemote{upsertTxErr: errors.New("constraint violation")}
	r := New(remote)

	if ok := r.SyncTransactions(context.Background(), txs("a")); ok {
		t.Error("SyncTransactions() = true despite upsert failure")
	}
}

func TestReconciler_SyncTransactions_Idempotent(t *testing.T) {
	remote := &mockRemote{}
	r := New(remote)
	current := txs("a", "b")

	if ok := r.SyncTransactions(context.Background(), current); !ok {
		t.Fatal("first sync failed")
	}
	remote.txIDs = []string{"a", "b"}

	if ok := r.SyncTransactions(context.Background(), current); !ok {
		t.Fatal("second sync failed")
	}
	if len(remote.deletedTxIDs) != 0 {
		t.Errorf("repeat sync deleted %v, want nothing", remote.deletedTxIDs)
	}
	if len(remote.upsertedTxs) != 4 {
		t.Errorf("upserted %d rows across two syncs, want 4 idempotent upserts", len(remote.upsertedTxs))
	}
}

func TestReconciler_SyncBudgets(t *testing.T) {
	remote := &mockRemote{budgetIDs: []string{"old"}}
	r := New(remote)

	ok := r.SyncBudgets(context.Background(), []domain.Budget{{ID: "new"}})
	if !ok {
		t.Fatal("SyncBudgets() = false, want true")
	}
	if len(remote.deletedBudgetIDs) != 1 || remote.deletedBudgetIDs[0] != "old" {
		t.Errorf("deleted budget IDs = %v, want [old]", remote.deletedBudgetIDs)
	}
	if len(remote.upsertedBudgets) != 1 || remote.upsertedBudgets[0].ID != "new" {
		t.Errorf("upserted budgets = %v, want [new]", remote.upsertedBudgets)
	}

	if ok := r.SyncBudgets(context.Background(), nil); !ok {
		t.Fatal("SyncBudgets(nil) = false, want true")
	}
	if remote.deleteAllBCalls != 1 {
		t.Errorf("DeleteAllBudgets called %d times, want 1", remote.deleteAllBCalls)
	}
}
