// Package ledger is the single entry point for the financial ledger. It
// owns the authoritative in-memory collections of transactions and budgets
// and decides which backend mirrors them: the remote relational store when
// one is configured, otherwise the local fallback store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/jarvis-ledger/internal/csvimport"
	"github.com/dvloznov/jarvis-ledger/internal/domain"
	"github.com/dvloznov/jarvis-ledger/internal/logger"
	"github.com/dvloznov/jarvis-ledger/internal/migrate"
	"github.com/dvloznov/jarvis-ledger/internal/reconcile"
	"github.com/dvloznov/jarvis-ledger/internal/store"
)

// ErrNotFound is returned when a delete names an id the ledger does not hold.
var ErrNotFound = errors.New("record not found")

// ErrNotPersisted is returned when the in-memory mutation succeeded but the
// backend write did not. The record stays in the collection; re-triggering
// any save reconciles idempotently.
var ErrNotPersisted = errors.New("backend write failed")

// Ledger is safe for concurrent use: a mutex serializes mutations so a
// late-arriving write can never overwrite state it did not see. Collections
// are swapped copy-on-write, never mutated in place, and every swap bumps a
// version counter so stale-write hazards are observable in tests.
type Ledger struct {
	mu         sync.RWMutex
	local      store.LocalStore
	remote     store.RemoteStore // nil in local-only mode
	rec        *reconcile.Reconciler
	categories *domain.CategoryMapper

	txs     []domain.Transaction
	budgets []domain.Budget
	version uint64
}

// New creates a ledger over the given backends. remote may be nil, which
// selects local-only mode for the process lifetime; the choice is made once
// here and never re-evaluated per call.
func New(local store.LocalStore, remote store.RemoteStore) *Ledger {
	l := &Ledger{
		local:      local,
		remote:     remote,
		categories: domain.NewCategoryMapper(),
	}
	if remote != nil {
		l.rec = reconcile.New(remote)
	}
	return l
}

// WithCategoryMapper overrides the default import category mapper.
func (l *Ledger) WithCategoryMapper(m *domain.CategoryMapper) *Ledger {
	l.categories = m
	return l
}

// Load runs the one-time migration check and then fills the in-memory
// collections from the active backend.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := migrate.New(l.local, l.remote).Run(ctx)
	if res.Attempted {
		log := logger.FromContext(ctx)
		log.Info().
			Bool("migrated", res.Migrated).
			Int("transactions", res.Transactions).
			Int("budgets", res.Budgets).
			Msg("One-time local data migration ran")
	}

	if l.remote != nil {
		txs, err := l.remote.LoadTransactions(ctx)
		if err != nil {
			return fmt.Errorf("Load: remote transactions: %w", err)
		}
		budgets, err := l.remote.LoadBudgets(ctx)
		if err != nil {
			return fmt.Errorf("Load: remote budgets: %w", err)
		}
		l.swapTransactions(txs)
		l.swapBudgets(budgets)
		return nil
	}

	l.swapTransactions(l.local.LoadTransactions())
	l.swapBudgets(l.local.LoadBudgets())
	return nil
}

// Version returns the collection version. It increments on every swap of
// either collection and exists so tests can detect lost updates.
func (l *Ledger) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Transactions returns a copy of the in-memory transaction collection.
func (l *Ledger) Transactions() []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

// Budgets returns a copy of the in-memory budget collection.
func (l *Ledger) Budgets() []domain.Budget {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Budget, len(l.budgets))
	copy(out, l.budgets)
	return out
}

// NewTransaction holds the caller-supplied fields of a transaction; the
// ledger assigns the id and timestamps.
type NewTransaction struct {
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Description string
	Category    domain.Category
	Date        string
	Tags        []string
}

// AddTransaction validates, records and persists one transaction. A failed
// backend write keeps the record in memory and returns ErrNotPersisted.
func (l *Ledger) AddTransaction(ctx context.Context, req NewTransaction) (domain.Transaction, error) {
	txs, err := l.AddTransactions(ctx, []NewTransaction{req})
	if err != nil && !errors.Is(err, ErrNotPersisted) {
		return domain.Transaction{}, err
	}
	return txs[0], err
}

// AddTransactions appends a batch through one collection swap and one
// backend write. This is the path CSV imports take. The whole batch is
// rejected when any request fails validation.
func (l *Ledger) AddTransactions(ctx context.Context, reqs []NewTransaction) ([]domain.Transaction, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	now := time.Now()
	added := make([]domain.Transaction, len(reqs))
	for i, req := range reqs {
		t := domain.Transaction{
			ID:          uuid.NewString(),
			Type:        req.Type,
			Amount:      req.Amount,
			Description: req.Description,
			Category:    req.Category,
			Date:        req.Date,
			Tags:        req.Tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("AddTransactions: %w", err)
		}
		added[i] = t
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.Transaction, 0, len(l.txs)+len(added))
	next = append(next, l.txs...)
	next = append(next, added...)
	l.swapTransactions(next)

	if !l.persistTransactions(ctx) {
		return added, fmt.Errorf("AddTransactions: %w", ErrNotPersisted)
	}
	return added, nil
}

// DeleteTransaction removes the transaction with the given id.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.Transaction, 0, len(l.txs))
	found := false
	for _, t := range l.txs {
		if t.ID == id {
			found = true
			continue
		}
		next = append(next, t)
	}
	if !found {
		return fmt.Errorf("DeleteTransaction: %s: %w", id, ErrNotFound)
	}
	l.swapTransactions(next)

	if !l.persistTransactions(ctx) {
		return fmt.Errorf("DeleteTransaction: %w", ErrNotPersisted)
	}
	return nil
}

// ClearTransactions empties the transaction collection and its backend.
func (l *Ledger) ClearTransactions(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.swapTransactions(nil)

	if l.remote != nil {
		if !l.rec.SyncTransactions(ctx, nil) {
			return fmt.Errorf("ClearTransactions: %w", ErrNotPersisted)
		}
		return nil
	}
	if err := l.local.Clear(store.TransactionsKey); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Failed to clear local transactions")
		return fmt.Errorf("ClearTransactions: %w", ErrNotPersisted)
	}
	return nil
}

// NewBudget holds the caller-supplied fields of a budget.
type NewBudget struct {
	Category  domain.Category
	Limit     decimal.Decimal
	Period    domain.BudgetPeriod
	StartDate string
	EndDate   string
}

// AddBudget validates, records and persists one budget.
func (l *Ledger) AddBudget(ctx context.Context, req NewBudget) (domain.Budget, error) {
	b := domain.Budget{
		ID:        uuid.NewString(),
		Category:  req.Category,
		Limit:     req.Limit,
		Period:    req.Period,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := b.Validate(); err != nil {
		return domain.Budget{}, fmt.Errorf("AddBudget: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.Budget, 0, len(l.budgets)+1)
	next = append(next, l.budgets...)
	next = append(next, b)
	l.swapBudgets(next)

	if !l.persistBudgets(ctx) {
		return b, fmt.Errorf("AddBudget: %w", ErrNotPersisted)
	}
	return b, nil
}

// DeleteBudget removes the budget with the given id.
func (l *Ledger) DeleteBudget(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.Budget, 0, len(l.budgets))
	found := false
	for _, b := range l.budgets {
		if b.ID == id {
			found = true
			continue
		}
		next = append(next, b)
	}
	if !found {
		return fmt.Errorf("DeleteBudget: %s: %w", id, ErrNotFound)
	}
	l.swapBudgets(next)

	if !l.persistBudgets(ctx) {
		return fmt.Errorf("DeleteBudget: %w", ErrNotPersisted)
	}
	return nil
}

// ClearBudgets empties the budget collection and its backend.
func (l *Ledger) ClearBudgets(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.swapBudgets(nil)

	if l.remote != nil {
		if !l.rec.SyncBudgets(ctx, nil) {
			return fmt.Errorf("ClearBudgets: %w", ErrNotPersisted)
		}
		return nil
	}
	if err := l.local.Clear(store.BudgetsKey); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Failed to clear local budgets")
		return fmt.Errorf("ClearBudgets: %w", ErrNotPersisted)
	}
	return nil
}

// ImportResult reports the outcome of a CSV import batch.
type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportCSV parses raw CSV text and appends every valid row through the
// normal batch mutation path. Bad rows are reported per row and never
// abort the batch; a failed backend write still counts the rows as
// imported (they are in memory) and is wrapped as ErrNotPersisted.
func (l *Ledger) ImportCSV(ctx context.Context, raw string) (*ImportResult, error) {
	rows, rowErrs := csvimport.Parse(raw, l.categories)

	res := &ImportResult{Errors: rowErrs}
	if len(rows) == 0 {
		return res, nil
	}

	reqs := make([]NewTransaction, len(rows))
	for i, row := range rows {
		reqs[i] = NewTransaction{
			Type:        row.Type,
			Amount:      row.Amount,
			Description: row.Description,
			Category:    row.Category,
			Date:        row.Date,
			Tags:        row.Tags,
		}
	}

	added, err := l.AddTransactions(ctx, reqs)
	if err != nil && !errors.Is(err, ErrNotPersisted) {
		// Parsed rows are already validated field by field, so the batch
		// itself should never be rejected; surface it without dropping
		// the result.
		return res, fmt.Errorf("ImportCSV: %w", err)
	}
	res.Imported = len(added)
	return res, err
}

// swapTransactions and swapBudgets replace a collection and bump the
// version. Callers hold the write lock.
func (l *Ledger) swapTransactions(txs []domain.Transaction) {
	l.txs = txs
	l.version++
}

func (l *Ledger) swapBudgets(budgets []domain.Budget) {
	l.budgets = budgets
	l.version++
}

// persistTransactions mirrors the in-memory collection into the active
// backend and reports success. Failures are logged, never thrown; the
// in-memory state is not rolled back.
func (l *Ledger) persistTransactions(ctx context.Context) bool {
	if l.remote != nil {
		return l.rec.SyncTransactions(ctx, l.txs)
	}
	if err := l.local.SaveTransactions(l.txs); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Failed to save local transactions")
		return false
	}
	return true
}

func (l *Ledger) persistBudgets(ctx context.Context) bool {
	if l.remote != nil {
		return l.rec.SyncBudgets(ctx, l.budgets)
	}
	if err := l.local.SaveBudgets(l.budgets); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Failed to save local budgets")
		return false
	}
	return true
}
