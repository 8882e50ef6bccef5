// Package localfile persists ledger collections as one JSON blob per key
// under a data directory. It is the fallback backend when no remote store
// is configured and also holds the one-time migration flag.
package localfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dvloznov/jarvis-ledger/internal/domain"
	"github.com/dvloznov/jarvis-ledger/internal/store"
)

// Store writes each key to <dir>/<key>.json.
type Store struct {
	dir string
	log zerolog.Logger
}

// New creates a store rooted at dir. The directory is created lazily on the
// first save.
func New(dir string, log zerolog.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// LoadTransactions returns the stored transactions. A missing or corrupt
// blob is treated as no data: it is logged and an empty slice is returned,
// never an error.
func (s *Store) LoadTransactions() []domain.Transaction {
	var txs []domain.Transaction
	if !s.loadBlob(store.TransactionsKey, &txs) {
		return nil
	}
	return txs
}

// SaveTransactions overwrites the stored transaction blob.
func (s *Store) SaveTransactions(txs []domain.Transaction) error {
	return s.saveBlob(store.TransactionsKey, txs)
}

// LoadBudgets returns the stored budgets, empty on missing or corrupt data.
func (s *Store) LoadBudgets() []domain.Budget {
	var budgets []domain.Budget
	if !s.loadBlob(store.BudgetsKey, &budgets) {
		return nil
	}
	return budgets
}

// SaveBudgets overwrites the stored budget blob.
func (s *Store) SaveBudgets(budgets []domain.Budget) error {
	return s.saveBlob(store.BudgetsKey, budgets)
}

// Clear removes the blob stored under key. Clearing an absent key is not an
// error.
func (s *Store) Clear(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("Clear: removing %s: %w", key, err)
	}
	return nil
}

// MigrationDone reports whether the one-time migration flag is set.
func (s *Store) MigrationDone() bool {
	data, err := os.ReadFile(s.path(store.MigrationFlagKey))
	if err != nil {
		return false
	}
	return len(data) > 0
}

// MarkMigrationDone sets the migration flag. Once set it is never cleared
// by the ledger itself.
func (s *Store) MarkMigrationDone() error {
	return s.saveBlob(store.MigrationFlagKey, true)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// loadBlob reports whether the blob was read and decoded; callers discard
// any partially decoded value on false.
func (s *Store) loadBlob(key string, out interface{}) bool {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to read local blob, treating as empty")
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Corrupt local blob, treating as empty")
		return false
	}
	return true
}

func (s *Store) saveBlob(key string, v interface{}) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("saveBlob: creating data dir: %w", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("saveBlob: encoding %s: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("saveBlob: writing %s: %w", key, err)
	}
	return nil
}

// Ensure Store implements the LocalStore interface.
var _ store.LocalStore = (*Store)(nil)
