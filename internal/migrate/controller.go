// Package migrate moves pre-existing locally stored ledger data into the
// remote store exactly once per device. The controller is try-once, not
// retry-until-success: after the first attempt the flag is set and the
// check never fires again, even when the copy only partially succeeded.
package migrate

import (
	"context"

	"github.com/dvloznov/jarvis-ledger/internal/logger"
	"github.com/dvloznov/jarvis-ledger/internal/store"
)

// Controller runs the one-time migration check at ledger startup.
type Controller struct {
	local  store.LocalStore
	remote store.RemoteStore
}

// Result describes what the startup check did.
type Result struct {
	// Attempted is true when local data existed and the copy was tried.
	Attempted bool
	// Migrated is true when every local record was copied successfully.
	Migrated bool
	// Transactions and Budgets count the records copied.
	Transactions int
	Budgets      int
}

// New creates a controller. remote may be nil (local-only mode), in which
// case Run is a no-op that leaves the flag untouched.
func New(local store.LocalStore, remote store.RemoteStore) *Controller {
	return &Controller{local: local, remote: remote}
}

// Run evaluates the first-run conditions and migrates at most once. It
// never fails startup: every error is logged and folded into the result.
func (c *Controller) Run(ctx context.Context) Result {
	log := logger.FromContext(ctx)

	if c.remote == nil {
		return Result{}
	}
	if c.local.MigrationDone() {
		return Result{}
	}

	txs := c.local.LoadTransactions()
	budgets := c.local.LoadBudgets()
	if len(txs) == 0 && len(budgets) == 0 {
		// Nothing to move. Mark done anyway so the check never runs again.
		c.markDone(ctx)
		return Result{}
	}

	res := Result{Attempted: true}

	remoteTxs, err := c.remote.LoadTransactions(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Migration: failed to read remote transactions, skipping copy")
		c.markDone(ctx)
		return res
	}
	remoteBudgets, err := c.remote.LoadBudgets(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Migration: failed to read remote budgets, skipping copy")
		c.markDone(ctx)
		return res
	}

	// Never overwrite remote data that already exists.
	if len(remoteTxs) > 0 || len(remoteBudgets) > 0 {
		log.Info().
			Int("remote_transactions", len(remoteTxs)).
			Int("remote_budgets", len(remoteBudgets)).
			Msg("Migration: remote store already holds ledger data, skipping copy")
		c.markDone(ctx)
		return res
	}

	res.Migrated = true
	if len(txs) > 0 {
		if err := c.remote.UpsertTransactions(ctx, txs); err != nil {
			log.Warn().Err(err).Msg("Migration: failed to copy transactions")
			res.Migrated = false
		} else {
			res.Transactions = len(txs)
		}
	}
	if len(budgets) > 0 {
		if err := c.remote.UpsertBudgets(ctx, budgets); err != nil {
			log.Warn().Err(err).Msg("Migration: failed to copy budgets")
			res.Migrated = false
		} else {
			res.Budgets = len(budgets)
		}
	}

	log.Info().
		Bool("migrated", res.Migrated).
		Int("transactions", res.Transactions).
		Int("budgets", res.Budgets).
		Msg("Migration attempt finished")

	c.markDone(ctx)
	return res
}

func (c *Controller) markDone(ctx context.Context) {
	if err := c.local.MarkMigrationDone(); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Failed to set migration flag")
	}
}
