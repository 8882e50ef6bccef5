package postgres

import (
	"context"
	"fmt"
)

// Wire contract for interoperability with other tools reading the same
// database: table and column names here must not change without migrating
// every consumer.
const schemaSQL = `
	CREATE TABLE IF NOT EXISTS finance_transactions (
		id          TEXT PRIMARY KEY,
		type        TEXT NOT NULL,
		amount      NUMERIC(14,2) NOT NULL,
		description TEXT NOT NULL,
		category    TEXT,
		date        DATE NOT NULL,
		tags        TEXT[],
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS finance_budgets (
		id           TEXT PRIMARY KEY,
		category     TEXT NOT NULL,
		limit_amount NUMERIC(14,2) NOT NULL,
		period       TEXT NOT NULL,
		start_date   DATE NOT NULL,
		end_date     DATE
	);
`

// EnsureSchema creates the ledger tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("EnsureSchema: %w", err)
	}
	return nil
}
