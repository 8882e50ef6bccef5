package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/jarvis-ledger/internal/domain"
)

type mockLocal struct {
	txs     []domain.Transaction
	budgets []domain.Budget
	done    bool
	markErr error
}

func (m *mockLocal) LoadTransactions() []domain.Transaction      { return m.txs }
func (m *mockLocal) SaveTransactions([]domain.Transaction) error { return nil }
func (m *mockLocal) LoadBudgets() []domain.Budget                { return m.budgets }
func (m *mockLocal) SaveBudgets([]domain.Budget) error           { return nil }
func (m *mockLocal) Clear(string) error                          { return nil }
func (m *mockLocal) MigrationDone() bool                         { return m.done }

func (m *mockLocal) MarkMigrationDone() error {
	if m.markErr != nil {
		return m.markErr
	}
	m.done = true
	return nil
}

type mockRemote struct {
	txs     []domain.Transaction
	budgets []domain.Budget
	loadErr error

	upsertedTxs     []domain.Transaction
	upsertedBudgets []domain.Budget
	upsertTxErr     error
}

func (m *mockRemote) ListTransactionIDs(ctx context.Context) ([]string, error) { return nil, nil }

func (m *mockRemote) LoadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.txs, nil
}

func (m *mockRemote) UpsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	if m.upsertTxErr != nil {
		return m.upsertTxErr
	}
	m.upsertedTxs = append(m.upsertedTxs, txs...)
	return nil
}

func (m *mockRemote) DeleteTransactionsByIDs(ctx context.Context, ids []string) error { return nil }
func (m *mockRemote) DeleteAllTransactions(ctx context.Context) error                 { return nil }
func (m *mockRemote) ListBudgetIDs(ctx context.Context) ([]string, error)             { return nil, nil }

func (m *mockRemote) LoadBudgets(ctx context.Context) ([]domain.Budget, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.budgets, nil
}

func (m *mockRemote) UpsertBudgets(ctx context.Context, budgets []domain.Budget) error {
	m.upsertedBudgets = append(m.upsertedBudgets, budgets...)
	return nil
}

func (m *mockRemote) DeleteBudgetsByIDs(ctx context.Context, ids []string) error { return nil }
func (m *mockRemote) DeleteAllBudgets(ctx context.Context) error                 { return nil }

func TestController_Run_LocalOnlyIsNoOp(t *testing.T) {
	local := &mockLocal{txs: []domain.Transaction{{ID: "tx-1"}}}

	res := New(local, nil).Run(context.Background())
	if res.Attempted {
		t.Error("Attempted = true without a remote store")
	}
	if local.done {
		t.Error("migration flag set without a remote store")
	}
}

func TestController_Run_CopiesLocalData(t *testing.T) {
	local := &mockLocal{
		txs:     []domain.Transaction{{ID: "tx-1"}, {ID: "tx-2"}},
		budgets: []domain.Budget{{ID: "b-1"}},
	}
	remote := &mockRemote{}

	res := New(local, remote).Run(context.Background())
	if !res.Attempted || !res.Migrated {
		t.Fatalf("Result = %+v, want attempted and migrated", res)
	}
	if res.Transactions != 2 || res.Budgets != 1 {
		t.Errorf("copied %d/%d records, want 2/1", res.Transactions, res.Budgets)
	}
	if len(remote.upsertedTxs) != 2 || len(remote.upsertedBudgets) != 1 {
		t.Errorf("remote received %d/%d records, want 2/1", len(remote.upsertedTxs), len(remote.upsertedBudgets))
	}
	if !local.done {
		t.Error("migration flag not set after the attempt")
	}
}

func TestController_Run_AtMostOnce(t *testing.T) {
	local := &mockLocal{txs: []domain.Transaction{{ID: "tx-1"}}}
	remote := &mockRemote{}
	c := New(local, remote)

	first := c.Run(context.Background())
	if !first.Attempted {
		t.Fatal("first run did not attempt")
	}

	second := c.Run(context.Background())
	if second.Attempted {
		t.Error("second run attempted again despite the flag")
	}
	if len(remote.upsertedTxs) != 1 {
		t.Errorf("remote received %d transactions across two runs, want 1", len(remote.upsertedTxs))
	}
}

func TestController_Run_NeverOverwritesRemoteData(t *testing.T) {
	local := &mockLocal{txs: []domain.Transaction{{ID: "local-tx"}}}
	remote := &mockRemote{txs: []domain.Transaction{{ID: "remote-tx"}}}

	res := New(local, remote).Run(context.Background())
	if !res.Attempted {
		t.Fatal("Attempted = false, want true")
	}
	if res.Migrated {
		t.Error("Migrated = true despite existing remote data")
	}
	if len(remote.upsertedTxs) != 0 {
		t.Errorf("remote received %d transactions, want 0", len(remote.upsertedTxs))
	}
	if !local.done {
		t.Error("migration flag not set after the skip")
	}
}

func TestController_Run_EmptyLocalMarksDone(t *testing.T) {
	local := &mockLocal{}
	remote := &mockRemote{}

	res := New(local, remote).Run(context.Background())
	if res.Attempted {
		t.Error("Attempted = true with nothing to move")
	}
	if !local.done {
		t.Error("migration flag not set for an empty local store")
	}
}

func TestController_Run_RemoteReadFailureStillMarksDone(t *testing.T) {
	local := &mockLocal{txs: []domain.Transaction{{ID: "tx-1"}}}
	remote := &mockRemote{loadErr: errors.New("timeout")}

	res := New(local, remote).Run(context.Background())
	if !res.Attempted {
		t.Fatal("Attempted = false, want true")
	}
	if res.Migrated {
		t.Error("Migrated = true despite the read failure")
	}
	if !local.done {
		t.Error("migration flag not set after the failed attempt")
	}
}

func TestController_Run_FlagWriteFailureDoesNotAbort(t *testing.T) {
	local := &mockLocal{
		txs:     []domain.Transaction{{ID: "tx-1"}},
		markErr: errors.New("read-only filesystem"),
	}
	remote := &mockRemote{}

	res := New(local, remote).Run(context.Background())
	if !res.Attempted || !res.Migrated {
		t.Fatalf("Result = %+v, want a completed attempt despite the flag write failing", res)
	}
	if local.done {
		t.Error("flag reported set despite the write error")
	}
}

func TestController_Run_PartialCopyIsNotRetried(t *testing.T) {
	local := &mockLocal{
		txs:     []domain.Transaction{{ID: "tx-1"}},
		budgets: []domain.Budget{{ID: "b-1"}},
	}
	remote := &mockRemote{upsertTxErr: errors.New("constraint violation")}
	c := New(local, remote)

	res := c.Run(context.Background())
	if res.Migrated {
		t.Error("Migrated = true despite the transaction copy failing")
	}
	if res.Budgets != 1 {
		t.Errorf("Budgets = %d, want 1: budget copy proceeds past the failure", res.Budgets)
	}

	if second := c.Run(context.Background()); second.Attempted {
		t.Error("partial copy was retried on the next run")
	}
}
