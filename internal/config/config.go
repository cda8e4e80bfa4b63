// Package config loads process-wide configuration for the indexer and
// query engine from the environment, defaulting values the way the rest
// of the system expects them.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration.
type Config struct {
	// StorePath is the backing store DSN: a filesystem path for local
	// SQLite, or a libsql:// / https:// URL for a remote store.
	StorePath string

	// Workers bounds the indexer's per-file worker pool.
	Workers int

	// WALAutoCheckpointMB is the WAL size threshold, in megabytes, above
	// which the store issues a checkpoint.
	WALAutoCheckpointMB int

	// EncryptionMode selects at-rest encryption of node symbol blobs when
	// passed to store.NewCipher: "off" disables it; any other value, such
	// as "auto" or "blob", enables it whenever MasterKey is set.
	EncryptionMode string
	MasterKey      string
	EncryptionAlgo string
}

const (
	defaultStorePath  = ".csgraph/graph.db"
	defaultWorkers    = 32
	defaultWALMB      = 128
	defaultEncMode    = "off"
	defaultEncAlgo    = "xchacha20poly1305"
	envPrefix         = "CSGRAPH_"
	envStorePath      = envPrefix + "STORE_PATH"
	envWorkers        = envPrefix + "WORKERS"
	envWALMB          = envPrefix + "DB_WAL_AUTOCHECKPOINT_MB"
	envEncryptionMode = envPrefix + "ENCRYPTION_MODE"
	envMasterKey      = envPrefix + "MASTER_KEY"
	envEncryptionAlgo = envPrefix + "ENCRYPTION_ALGO"
)

// Load loads configuration from a .env file (if present) and the
// environment. Missing or malformed values fall back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		StorePath:           os.Getenv(envStorePath),
		Workers:             defaultWorkers,
		WALAutoCheckpointMB: defaultWALMB,
		EncryptionMode:      os.Getenv(envEncryptionMode),
		MasterKey:           os.Getenv(envMasterKey),
		EncryptionAlgo:      os.Getenv(envEncryptionAlgo),
	}

	if cfg.StorePath == "" {
		cfg.StorePath = defaultStorePath
	}
	if cfg.EncryptionMode == "" {
		cfg.EncryptionMode = defaultEncMode
	}
	if cfg.EncryptionAlgo == "" {
		cfg.EncryptionAlgo = defaultEncAlgo
	}

	if v := os.Getenv(envWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}

	if v := os.Getenv(envWALMB); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WALAutoCheckpointMB = n
		}
	}

	return cfg
}
