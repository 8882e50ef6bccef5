package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/jarvis-ledger/internal/domain"
)

const upsertBudgetSQL = `
	INSERT INTO finance_budgets
		(id, category, limit_amount, period, start_date, end_date)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		category     = EXCLUDED.category,
		limit_amount = EXCLUDED.limit_amount,
		period       = EXCLUDED.period,
		start_date   = EXCLUDED.start_date,
		end_date     = EXCLUDED.end_date
`

// ListBudgetIDs returns the ids of every stored budget.
func (s *Store) ListBudgetIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM finance_budgets`)
	if err != nil {
		return nil, fmt.Errorf("ListBudgetIDs: query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ListBudgetIDs: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListBudgetIDs: rows: %w", err)
	}
	return ids, nil
}

// LoadBudgets reads every stored budget into domain form.
func (s *Store) LoadBudgets(ctx context.Context) ([]domain.Budget, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, limit_amount::text, period,
		       to_char(start_date, 'YYYY-MM-DD'),
		       COALESCE(to_char(end_date, 'YYYY-MM-DD'), '')
		FROM finance_budgets
		ORDER BY start_date, id
	`)
	if err != nil {
		return nil, fmt.Errorf("LoadBudgets: query: %w", err)
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		var (
			b        domain.Budget
			category string
			limit    string
			period   string
		)
		if err := rows.Scan(&b.ID, &category, &limit, &period, &b.StartDate, &b.EndDate); err != nil {
			return nil, fmt.Errorf("LoadBudgets: scan: %w", err)
		}
		b.Category = domain.Category(category)
		b.Period = domain.BudgetPeriod(period)
		b.Limit, err = decimal.NewFromString(limit)
		if err != nil {
			return nil, fmt.Errorf("LoadBudgets: budget %s: bad limit %q: %w", b.ID, limit, err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadBudgets: rows: %w", err)
	}
	return budgets, nil
}

// UpsertBudgets inserts or fully replaces the given rows in one batch.
func (s *Store) UpsertBudgets(ctx context.Context, budgets []domain.Budget) error {
	if len(budgets) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, b := range budgets {
		var endDate interface{}
		if b.EndDate != "" {
			endDate = b.EndDate
		}
		batch.Queue(upsertBudgetSQL,
			b.ID,
			string(b.Category),
			b.Limit.String(),
			string(b.Period),
			b.StartDate,
			endDate,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range budgets {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("UpsertBudgets: %w", err)
		}
	}
	return nil
}

// DeleteBudgetsByIDs removes the rows with the given ids.
func (s *Store) DeleteBudgetsByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM finance_budgets WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("DeleteBudgetsByIDs: %w", err)
	}
	return nil
}

// DeleteAllBudgets empties the budgets table.
func (s *Store) DeleteAllBudgets(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM finance_budgets`); err != nil {
		return fmt.Errorf("DeleteAllBudgets: %w", err)
	}
	return nil
}
