package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.HistoryLimit != 50 {
		t.Errorf("Expected default history limit 50, got %d", config.HistoryLimit)
	}

	if config.Backend != BackendSQLite {
		t.Errorf("Expected default backend sqlite, got %s", config.Backend)
	}

	if config.Font != "sans" {
		t.Errorf("Expected default font sans, got %s", config.Font)
	}

	if config.DBPath != "" {
		t.Errorf("Expected default db path empty, got %s", config.DBPath)
	}
}

func TestConfigManager_LoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	cm := NewConfigManagerWithPath(configPath)

	config, err := cm.Load()
	if err != nil {
		t.Fatalf("Expected no error loading non-existent config, got: %v", err)
	}

	expectedDefault := DefaultConfig()
	if config.HistoryLimit != expectedDefault.HistoryLimit {
		t.Errorf("Expected default history limit %d, got %d", expectedDefault.HistoryLimit, config.HistoryLimit)
	}
}

func TestConfigManager_SaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	cm := NewConfigManagerWithPath(configPath)

	testConfig := &Config{
		HistoryLimit: 100,
		Backend:      BackendRedis,
		RedisURI:     "redis://localhost:6379/2",
		Font:         "serif",
		Listen:       ":9000",
	}
	testConfig.S3.Bucket = "exports"

	if err := cm.Save(testConfig); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected config file mode 0600, got %v", info.Mode().Perm())
	}

	loadedConfig, err := cm.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if *loadedConfig != *testConfig {
		t.Errorf("Expected %+v, got %+v", testConfig, loadedConfig)
	}
}

func TestConfigManager_LoadPartialFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("history_limit: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := NewConfigManagerWithPath(configPath).Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.HistoryLimit != 10 {
		t.Errorf("Expected history limit 10, got %d", config.HistoryLimit)
	}
	if config.Backend != BackendSQLite || config.Font != "sans" || config.Listen == "" {
		t.Errorf("Expected defaults for missing fields, got %+v", config)
	}
}

func TestConfigManager_Validation(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	tests := []struct {
		name        string
		config      *Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			config:      &Config{HistoryLimit: 50},
			expectError: false,
		},
		{
			name:        "zero history limit",
			config:      &Config{HistoryLimit: 0},
			expectError: true,
			errorMsg:    "history_limit must be greater than 0",
		},
		{
			name:        "negative history limit",
			config:      &Config{HistoryLimit: -5},
			expectError: true,
			errorMsg:    "history_limit must be greater than 0",
		},
		{
			name:        "excessive history limit",
			config:      &Config{HistoryLimit: 1500},
			expectError: true,
			errorMsg:    "history_limit cannot exceed 1000 items",
		},
		{
			name:        "unknown backend",
			config:      &Config{HistoryLimit: 50, Backend: "mongo"},
			expectError: true,
		},
		{
			name:        "redis without uri",
			config:      &Config{HistoryLimit: 50, Backend: BackendRedis},
			expectError: true,
			errorMsg:    "redis_uri is required for the redis backend",
		},
		{
			name:        "unknown font",
			config:      &Config{HistoryLimit: 50, Font: "comic"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cm.Save(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %s, but got none", tt.name)
				} else if tt.errorMsg != "" && err.Error() != "invalid configuration: "+tt.errorMsg {
					t.Errorf("Expected error message '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error for %s: %v", tt.name, err)
				}
			}
		})
	}
}

func TestConfigManager_Update(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	tests := []struct {
		name        string
		key         string
		value       string
		expectError bool
	}{
		{"valid history-limit", "history-limit", "100", false},
		{"valid font", "font", "serif", false},
		{"valid backend", "backend", "memory", false},
		{"valid export-dir", "export-dir", "/tmp/exports", false},
		{"valid model", "model", "gemini-2.5-pro", false},
		{"valid s3-bucket", "s3-bucket", "my-bucket", false},
		{"invalid key", "invalid-key", "value", true},
		{"invalid history-limit", "history-limit", "not-a-number", true},
		{"invalid font", "font", "comic", true},
		{"invalid backend", "backend", "mongo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cm.Update(tt.key, tt.value)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %s, but got none", tt.name)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error for %s: %v", tt.name, err)
				}

				retrievedValue, err := cm.Get(tt.key)
				if err != nil {
					t.Errorf("Failed to get value after update: %v", err)
				} else if retrievedValue != tt.value {
					t.Errorf("Expected retrieved value %s, got %s", tt.value, retrievedValue)
				}
			}
		})
	}
}

func TestConfigManager_SecretsAreMasked(t *testing.T) {
	cm := NewConfigManagerWithPath(filepath.Join(t.TempDir(), "config.yaml"))

	if err := cm.Update("api-key", "AIza-secret"); err != nil {
		t.Fatalf("Failed to set api-key: %v", err)
	}

	value, err := cm.Get("api-key")
	if err != nil {
		t.Fatalf("Failed to get api-key: %v", err)
	}
	if value != "[set]" {
		t.Errorf("Expected masked api-key, got %s", value)
	}

	config, err := cm.Load()
	if err != nil {
		t.Fatal(err)
	}
	if config.APIKey != "AIza-secret" {
		t.Errorf("Expected stored api-key, got %s", config.APIKey)
	}
}

func TestConfigManager_List(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	values, err := cm.List()
	if err != nil {
		t.Fatalf("Failed to list default config: %v", err)
	}

	for _, key := range Keys {
		if _, exists := values[key]; !exists {
			t.Errorf("Expected key %s to exist in list output", key)
		}
	}
	if len(values) != len(Keys) {
		t.Errorf("Expected %d keys, got %d", len(Keys), len(values))
	}

	if values["history-limit"] != "50" {
		t.Errorf("Expected default history-limit 50, got %s", values["history-limit"])
	}

	if values["db-path"] != "[default]" {
		t.Errorf("Expected default db-path [default], got %s", values["db-path"])
	}
}

func TestConfigManager_LoadWithEnv(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	if err := cm.Save(&Config{HistoryLimit: 30, Font: "serif"}); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PROBOOST_HISTORY_LIMIT", "10")
	t.Setenv("PROBOOST_S3_BUCKET", "env-bucket")
	t.Setenv("GOOGLE_API_KEY", "env-key")

	config, err := cm.LoadWithEnv()
	if err != nil {
		t.Fatalf("Failed to load with env: %v", err)
	}

	if config.HistoryLimit != 10 {
		t.Errorf("Expected env history limit 10, got %d", config.HistoryLimit)
	}
	if config.Font != "serif" {
		t.Errorf("Expected file font serif, got %s", config.Font)
	}
	if config.S3.Bucket != "env-bucket" {
		t.Errorf("Expected env bucket, got %s", config.S3.Bucket)
	}
	if config.APIKey != "env-key" {
		t.Errorf("Expected GOOGLE_API_KEY to be picked up, got %s", config.APIKey)
	}

	// Environment overrides are never written back.
	saved, err := cm.Load()
	if err != nil {
		t.Fatal(err)
	}
	if saved.HistoryLimit != 30 {
		t.Errorf("Expected saved history limit 30, got %d", saved.HistoryLimit)
	}
}

func TestConfigManager_LoadWithEnvInvalid(t *testing.T) {
	cm := NewConfigManagerWithPath(filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv("PROBOOST_HISTORY_LIMIT", "5000")

	if _, err := cm.LoadWithEnv(); err == nil {
		t.Error("Expected error for out of range env history limit")
	}
}

func TestConfigManager_Resolve(t *testing.T) {
	cm := NewConfigManagerWithPath("/home/me/.config/proboost/config.yaml")

	if got := cm.ResolveDBPath(&Config{}); got != "/home/me/.config/proboost/proboost.db" {
		t.Errorf("Unexpected default db path %s", got)
	}
	if got := cm.ResolveDBPath(&Config{DBPath: "/data/p.db"}); got != "/data/p.db" {
		t.Errorf("Unexpected db path %s", got)
	}
	if got := cm.ResolveExportDir(&Config{}); got != "." {
		t.Errorf("Unexpected default export dir %s", got)
	}
}

func TestConfigManager_GetConfigPath(t *testing.T) {
	configPath := "/test/config/path.yaml"
	cm := NewConfigManagerWithPath(configPath)

	if cm.GetConfigPath() != configPath {
		t.Errorf("Expected config path %s, got %s", configPath, cm.GetConfigPath())
	}
}

func TestNewConfigManager(t *testing.T) {
	cm, err := NewConfigManager()
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	configPath := cm.GetConfigPath()
	if !filepath.IsAbs(configPath) {
		t.Errorf("Expected absolute config path, got %s", configPath)
	}

	if !strings.HasSuffix(configPath, ".config/proboost/config.yaml") {
		t.Errorf("Expected config path to end with .config/proboost/config.yaml, got %s", configPath)
	}
}

func TestConfigManager_Validate(t *testing.T) {
	cm := NewConfigManagerWithPath(filepath.Join(t.TempDir(), "config.yaml"))

	config := DefaultConfig()
	config.Backend = ""
	config.Listen = ""
	if err := cm.Validate(config); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if config.Backend != BackendSQLite || config.Listen == "" {
		t.Errorf("Expected defaults to be filled, got backend=%q listen=%q", config.Backend, config.Listen)
	}

	config.Backend = BackendRedis
	if err := cm.Validate(config); err == nil {
		t.Error("Expected error for redis backend without uri")
	}
}
