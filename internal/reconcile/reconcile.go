// Package reconcile makes the remote store's row set for a record kind
// exactly equal to the in-memory authoritative sequence: orphan rows are
// deleted, then every authoritative record is upserted. The engine is best
// effort, not transactional; every step is idempotent, so a caller that
// sees a false outcome may simply re-invoke it.
package reconcile

import (
	"context"

	"github.com/dvloznov/jarvis-ledger/internal/domain"
	"github.com/dvloznov/jarvis-ledger/internal/logger"
	"github.com/dvloznov/jarvis-ledger/internal/store"
)

// Reconciler syncs authoritative sequences into a RemoteStore.
type Reconciler struct {
	remote store.RemoteStore
}

// New creates a reconciler writing to the given remote store.
func New(remote store.RemoteStore) *Reconciler {
	return &Reconciler{remote: remote}
}

// remoteSet is one record kind's slice of the remote store.
type remoteSet struct {
	kind        string
	listIDs     func(ctx context.Context) ([]string, error)
	deleteByIDs func(ctx context.Context, ids []string) error
	deleteAll   func(ctx context.Context) error
	upsert      func(ctx context.Context) error
}

// SyncTransactions replaces the remote transaction row set with txs.
// The returned flag is the logical AND of the sub-step outcomes.
func (r *Reconciler) SyncTransactions(ctx context.Context, txs []domain.Transaction) bool {
	ids := make([]string, len(txs))
	for i, t := range txs {
		ids[i] = t.ID
	}
	return r.sync(ctx, ids, remoteSet{
		kind:        "transactions",
		listIDs:     r.remote.ListTransactionIDs,
		deleteByIDs: r.remote.DeleteTransactionsByIDs,
		deleteAll:   r.remote.DeleteAllTransactions,
		upsert: func(ctx context.Context) error {
			return r.remote.UpsertTransactions(ctx, txs)
		},
	})
}

// SyncBudgets replaces the remote budget row set with budgets.
func (r *Reconciler) SyncBudgets(ctx context.Context, budgets []domain.Budget) bool {
	ids := make([]string, len(budgets))
	for i, b := range budgets {
		ids[i] = b.ID
	}
	return r.sync(ctx, ids, remoteSet{
		kind:        "budgets",
		listIDs:     r.remote.ListBudgetIDs,
		deleteByIDs: r.remote.DeleteBudgetsByIDs,
		deleteAll:   r.remote.DeleteAllBudgets,
		upsert: func(ctx context.Context) error {
			return r.remote.UpsertBudgets(ctx, budgets)
		},
	})
}

func (r *Reconciler) sync(ctx context.Context, currentIDs []string, set remoteSet) bool {
	log := logger.FromContext(ctx)

	if len(currentIDs) == 0 {
		if err := set.deleteAll(ctx); err != nil {
			log.Warn().Err(err).Str("kind", set.kind).Msg("Failed to clear remote rows")
			return false
		}
		return true
	}

	ok := true
	current := make(map[string]bool, len(currentIDs))
	for _, id := range currentIDs {
		current[id] = true
	}

	existing, err := set.listIDs(ctx)
	if err != nil {
		log.Warn().Err(err).Str("kind", set.kind).Msg("Failed to list remote ids, skipping orphan cleanup")
		ok = false
	} else {
		var orphans []string
		for _, id := range existing {
			if !current[id] {
				orphans = append(orphans, id)
			}
		}
		if len(orphans) > 0 {
			if err := set.deleteByIDs(ctx, orphans); err != nil {
				log.Warn().Err(err).Str("kind", set.kind).Int("orphans", len(orphans)).
					Msg("Failed to delete orphan rows")
				ok = false
			} else {
				log.Info().Str("kind", set.kind).Int("orphans", len(orphans)).
					Msg("Deleted orphan remote rows")
			}
		}
	}

	// A failed orphan cleanup never aborts the upsert.
	if err := set.upsert(ctx); err != nil {
		log.Warn().Err(err).Str("kind", set.kind).Int("records", len(currentIDs)).
			Msg("Failed to upsert remote rows")
		ok = false
	}

	return ok
}
