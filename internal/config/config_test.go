package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultValues(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	cfg := Load()

	if cfg.StorePath != defaultStorePath {
		t.Errorf("Expected StorePath %q, got %q", defaultStorePath, cfg.StorePath)
	}
	if cfg.Workers != defaultWorkers {
		t.Errorf("Expected Workers %d, got %d", defaultWorkers, cfg.Workers)
	}
	if cfg.WALAutoCheckpointMB != defaultWALMB {
		t.Errorf("Expected WALAutoCheckpointMB %d, got %d", defaultWALMB, cfg.WALAutoCheckpointMB)
	}
	if cfg.EncryptionMode != defaultEncMode {
		t.Errorf("Expected EncryptionMode %q, got %q", defaultEncMode, cfg.EncryptionMode)
	}
	if cfg.EncryptionAlgo != defaultEncAlgo {
		t.Errorf("Expected EncryptionAlgo %q, got %q", defaultEncAlgo, cfg.EncryptionAlgo)
	}
	if cfg.MasterKey != "" {
		t.Errorf("Expected empty MasterKey, got %q", cfg.MasterKey)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv(envStorePath, "/var/lib/csgraph/graph.db")
	os.Setenv(envWorkers, "8")
	os.Setenv(envWALMB, "256")
	os.Setenv(envEncryptionMode, "blob")
	os.Setenv(envMasterKey, "test-key-123")
	os.Setenv(envEncryptionAlgo, "aes256")

	cfg := Load()

	if cfg.StorePath != "/var/lib/csgraph/graph.db" {
		t.Errorf("Expected StorePath override, got %q", cfg.StorePath)
	}
	if cfg.Workers != 8 {
		t.Errorf("Expected Workers 8, got %d", cfg.Workers)
	}
	if cfg.WALAutoCheckpointMB != 256 {
		t.Errorf("Expected WALAutoCheckpointMB 256, got %d", cfg.WALAutoCheckpointMB)
	}
	if cfg.EncryptionMode != "blob" {
		t.Errorf("Expected EncryptionMode 'blob', got %q", cfg.EncryptionMode)
	}
	if cfg.MasterKey != "test-key-123" {
		t.Errorf("Expected MasterKey 'test-key-123', got %q", cfg.MasterKey)
	}
	if cfg.EncryptionAlgo != "aes256" {
		t.Errorf("Expected EncryptionAlgo 'aes256', got %q", cfg.EncryptionAlgo)
	}
}

func TestLoad_InvalidIntegerValues(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv(envWorkers, "not-a-number")
	os.Setenv(envWALMB, "abc")

	cfg := Load()

	if cfg.Workers != defaultWorkers {
		t.Errorf("Expected Workers %d (default), got %d", defaultWorkers, cfg.Workers)
	}
	if cfg.WALAutoCheckpointMB != defaultWALMB {
		t.Errorf("Expected WALAutoCheckpointMB %d (default), got %d", defaultWALMB, cfg.WALAutoCheckpointMB)
	}
}

func TestLoad_NegativeValues(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv(envWorkers, "-1")
	os.Setenv(envWALMB, "-10")

	cfg := Load()

	if cfg.Workers != defaultWorkers {
		t.Errorf("Expected Workers %d (default for negative), got %d", defaultWorkers, cfg.Workers)
	}
	if cfg.WALAutoCheckpointMB != defaultWALMB {
		t.Errorf("Expected WALAutoCheckpointMB %d (default for negative), got %d", defaultWALMB, cfg.WALAutoCheckpointMB)
	}
}

func TestLoad_ZeroValues(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv(envWorkers, "0")
	os.Setenv(envWALMB, "0")

	cfg := Load()

	if cfg.Workers != defaultWorkers {
		t.Errorf("Expected Workers %d (default for zero), got %d", defaultWorkers, cfg.Workers)
	}
	if cfg.WALAutoCheckpointMB != defaultWALMB {
		t.Errorf("Expected WALAutoCheckpointMB %d (default for zero), got %d", defaultWALMB, cfg.WALAutoCheckpointMB)
	}
}

func TestLoad_EmptyStringValues(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv(envEncryptionMode, "")
	os.Setenv(envEncryptionAlgo, "")
	os.Setenv(envMasterKey, "")

	cfg := Load()

	if cfg.EncryptionMode != defaultEncMode {
		t.Errorf("Expected EncryptionMode %q (default for empty), got %q", defaultEncMode, cfg.EncryptionMode)
	}
	if cfg.EncryptionAlgo != defaultEncAlgo {
		t.Errorf("Expected EncryptionAlgo %q (default for empty), got %q", defaultEncAlgo, cfg.EncryptionAlgo)
	}
	if cfg.MasterKey != "" {
		t.Errorf("Expected empty MasterKey, got %q", cfg.MasterKey)
	}
}

func TestLoad_LargeValues(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv(envWorkers, "100000")
	os.Setenv(envWALMB, "10000")

	cfg := Load()

	if cfg.Workers != 100000 {
		t.Errorf("Expected Workers 100000, got %d", cfg.Workers)
	}
	if cfg.WALAutoCheckpointMB != 10000 {
		t.Errorf("Expected WALAutoCheckpointMB 10000, got %d", cfg.WALAutoCheckpointMB)
	}
}

func clearConfigEnvVars() {
	envVars := []string{
		envStorePath,
		envWorkers,
		envWALMB,
		envEncryptionMode,
		envMasterKey,
		envEncryptionAlgo,
	}
	for _, envVar := range envVars {
		os.Unsetenv(envVar)
	}
}
