// Package postgres is the remote relational backend of the ledger. It maps
// domain records onto the finance_transactions and finance_budgets tables
// and exposes the list/upsert/delete operations reconciliation needs.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dvloznov/jarvis-ledger/internal/store"
)

const connectTimeout = 30 * time.Second

// Store holds a shared connection pool. It is safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Connect opens a pool against databaseURL and verifies connectivity with
// exponential backoff, since the database may still be starting up. The
// service key, when set, overrides the password in the URL.
func Connect(ctx context.Context, databaseURL, serviceKey string, log zerolog.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("Connect: parsing database URL: %w", err)
	}
	if serviceKey != "" {
		cfg.ConnConfig.Password = serviceKey
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("Connect: creating pool: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = connectTimeout
	ping := func() error {
		if err := pool.Ping(ctx); err != nil {
			log.Debug().Err(err).Msg("Database not ready, retrying")
			return err
		}
		return nil
	}
	if err := backoff.Retry(ping, backoff.WithContext(bo, ctx)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("Connect: pinging database: %w", err)
	}

	return &Store{pool: pool, log: log}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ensure Store implements the RemoteStore interface.
var _ store.RemoteStore = (*Store)(nil)
