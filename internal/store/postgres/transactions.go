package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/jarvis-ledger/internal/domain"
)

const upsertTransactionSQL = `
	INSERT INTO finance_transactions
		(id, type, amount, description, category, date, tags, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		type        = EXCLUDED.type,
		amount      = EXCLUDED.amount,
		description = EXCLUDED.description,
		category    = EXCLUDED.category,
		date        = EXCLUDED.date,
		tags        = EXCLUDED.tags,
		updated_at  = EXCLUDED.updated_at
`

// ListTransactionIDs returns the ids of every stored transaction. It is the
// cheap existence check reconciliation uses to find orphan rows.
func (s *Store) ListTransactionIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM finance_transactions`)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionIDs: query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ListTransactionIDs: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTransactionIDs: rows: %w", err)
	}
	return ids, nil
}

// LoadTransactions reads every stored transaction into domain form. Rows
// that do not decode cleanly fail the whole load rather than being coerced.
func (s *Store) LoadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, type, amount::text, description, COALESCE(category, ''),
		       to_char(date, 'YYYY-MM-DD'), COALESCE(tags, '{}'), created_at, updated_at
		FROM finance_transactions
		ORDER BY date, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("LoadTransactions: query: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var (
			t         domain.Transaction
			typ       string
			amount    string
			category  string
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&t.ID, &typ, &amount, &t.Description, &category, &t.Date, &t.Tags, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("LoadTransactions: scan: %w", err)
		}
		t.Type = domain.TransactionType(typ)
		t.Category = domain.Category(category)
		t.CreatedAt = createdAt
		t.UpdatedAt = updatedAt
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("LoadTransactions: transaction %s: bad amount %q: %w", t.ID, amount, err)
		}
		if len(t.Tags) == 0 {
			t.Tags = nil
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadTransactions: rows: %w", err)
	}
	return txs, nil
}

// UpsertTransactions inserts or fully replaces the given rows in one batch.
// It is idempotent: re-sending the same records leaves the table unchanged.
func (s *Store) UpsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range txs {
		batch.Queue(upsertTransactionSQL,
			t.ID,
			string(t.Type),
			t.Amount.String(),
			t.Description,
			string(t.Category),
			t.Date,
			t.Tags,
			t.CreatedAt,
			t.UpdatedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range txs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("UpsertTransactions: %w", err)
		}
	}
	return nil
}

// DeleteTransactionsByIDs removes the rows with the given ids. Missing ids
// are ignored, so the call is safe to repeat.
func (s *Store) DeleteTransactionsByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM finance_transactions WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("DeleteTransactionsByIDs: %w", err)
	}
	return nil
}

// DeleteAllTransactions empties the transactions table.
func (s *Store) DeleteAllTransactions(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM finance_transactions`); err != nil {
		return fmt.Errorf("DeleteAllTransactions: %w", err)
	}
	return nil
}
