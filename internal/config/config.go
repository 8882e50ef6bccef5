// Package config resolves the process configuration from the environment.
package config

import (
	"os"
	"path/filepath"
)

const (
	envDatabaseURL = "SUPABASE_DB_URL"
	envServiceKey  = "SUPABASE_SERVICE_KEY"
	envDataDir     = "JARVIS_DATA_DIR"
)

// Config holds everything the ledger needs to pick and reach its backends.
type Config struct {
	// RemoteDatabaseURL is the Supabase Postgres connection string.
	RemoteDatabaseURL string
	// RemoteServiceKey authenticates against the remote store; it
	// overrides the password in the connection string. Remote mode
	// requires both values, otherwise the process runs local-only.
	RemoteServiceKey string
	// DataDir is where the local fallback store keeps its files.
	DataDir string
}

// Load reads the configuration from the environment. The data directory
// defaults to ~/.jarvis when JARVIS_DATA_DIR is unset.
func Load() Config {
	cfg := Config{
		RemoteDatabaseURL: os.Getenv(envDatabaseURL),
		RemoteServiceKey:  os.Getenv(envServiceKey),
		DataDir:           os.Getenv(envDataDir),
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.DataDir = filepath.Join(home, ".jarvis")
	}
	return cfg
}

// RemoteEnabled reports whether a remote backend is configured. Both values
// must be present; a partial configuration runs local-only rather than
// attempting a connection that cannot be authorized.
func (c Config) RemoteEnabled() bool {
	return c.RemoteDatabaseURL != "" && c.RemoteServiceKey != ""
}
