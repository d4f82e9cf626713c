package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/yiblet/proboost/internal/sink"
)

// EnvPrefix prefixes environment overrides, e.g. PROBOOST_HISTORY_LIMIT.
const EnvPrefix = "PROBOOST"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config represents the proboost configuration
type Config struct {
	HistoryLimit int           `yaml:"history_limit" envconfig:"HISTORY_LIMIT"`
	Backend      string        `yaml:"backend" envconfig:"BACKEND"`
	DBPath       string        `yaml:"db_path,omitempty" envconfig:"DB_PATH"`
	RedisURI     string        `yaml:"redis_uri,omitempty" envconfig:"REDIS_URI"`
	ExportDir    string        `yaml:"export_dir,omitempty" envconfig:"EXPORT_DIR"`
	Font         string        `yaml:"font" envconfig:"FONT"`
	Model        string        `yaml:"model,omitempty" envconfig:"MODEL"`
	APIKey       string        `yaml:"api_key,omitempty" envconfig:"GOOGLE_API_KEY"`
	Listen       string        `yaml:"listen" envconfig:"LISTEN"`
	S3           sink.S3Config `yaml:"s3,omitempty" envconfig:"S3"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		HistoryLimit: 50,
		Backend:      BackendSQLite,
		Font:         "sans",
		Listen:       "127.0.0.1:8787",
	}
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a manager for ~/.config/proboost/config.yaml
func NewConfigManager() (*ConfigManager, error) {
	configDir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return &ConfigManager{
		configPath: filepath.Join(configDir, "config.yaml"),
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// DefaultDir returns ~/.config/proboost.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "proboost"), nil
}

// Load reads the configuration from file, or returns default if file doesn't exist
func (cm *ConfigManager) Load() (*Config, error) {
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cm.validateAndSetDefaults(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadWithEnv loads the file and applies PROBOOST_* environment overrides.
// The result is never saved back.
func (cm *ConfigManager) LoadWithEnv() (*Config, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cm.validateAndSetDefaults(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := cm.validateAndSetDefaults(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold API credentials.
	if err := os.WriteFile(cm.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks a configuration that was changed after loading, such as
// by command-line flags.
func (cm *ConfigManager) Validate(config *Config) error {
	if err := cm.validateAndSetDefaults(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// validateAndSetDefaults validates configuration and sets defaults for missing fields
func (cm *ConfigManager) validateAndSetDefaults(config *Config) error {
	if config.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be greater than 0")
	}

	if config.HistoryLimit > 1000 {
		return fmt.Errorf("history_limit cannot exceed 1000 items")
	}

	if config.Backend == "" {
		config.Backend = BackendSQLite
	}
	switch config.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("backend must be one of %s, %s, %s (got %q)", BackendSQLite, BackendRedis, BackendMemory, config.Backend)
	}
	if config.Backend == BackendRedis && config.RedisURI == "" {
		return fmt.Errorf("redis_uri is required for the redis backend")
	}

	if config.Font == "" {
		config.Font = "sans"
	}
	if config.Font != "sans" && config.Font != "serif" {
		return fmt.Errorf("font must be 'sans' or 'serif' (got %q)", config.Font)
	}

	if config.Listen == "" {
		config.Listen = DefaultConfig().Listen
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// ResolveDBPath returns the SQLite path, defaulting to proboost.db beside
// the config file.
func (cm *ConfigManager) ResolveDBPath(config *Config) string {
	if config.DBPath != "" {
		return config.DBPath
	}
	return filepath.Join(filepath.Dir(cm.configPath), "proboost.db")
}

// ResolveExportDir returns the export directory, defaulting to the
// working directory.
func (cm *ConfigManager) ResolveExportDir(config *Config) string {
	if config.ExportDir != "" {
		return config.ExportDir
	}
	return "."
}

// Keys lists the configuration keys accepted by Get and Update.
var Keys = []string{
	"history-limit", "backend", "db-path", "redis-uri", "export-dir", "font",
	"model", "api-key", "listen", "s3-bucket", "s3-prefix", "s3-region",
	"s3-endpoint", "s3-access-key", "s3-secret-key",
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	config, err := cm.Load()
	if err != nil {
		return err
	}

	switch key {
	case "history-limit":
		historyLimit, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid integer value for history-limit: %s", value)
		}
		config.HistoryLimit = historyLimit
	case "backend":
		config.Backend = value
	case "db-path":
		config.DBPath = value
	case "redis-uri":
		config.RedisURI = value
	case "export-dir":
		config.ExportDir = value
	case "font":
		config.Font = value
	case "model":
		config.Model = value
	case "api-key":
		config.APIKey = value
	case "listen":
		config.Listen = value
	case "s3-bucket":
		config.S3.Bucket = value
	case "s3-prefix":
		config.S3.Prefix = value
	case "s3-region":
		config.S3.Region = value
	case "s3-endpoint":
		config.S3.Endpoint = value
	case "s3-access-key":
		config.S3.AccessKey = value
	case "s3-secret-key":
		config.S3.SecretKey = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	config, err := cm.Load()
	if err != nil {
		return "", err
	}
	values := cm.values(config)
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return v, nil
}

// List returns all configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}
	return cm.values(config), nil
}

func (cm *ConfigManager) values(config *Config) map[string]string {
	orDefault := func(v string) string {
		if v == "" {
			return "[default]"
		}
		return v
	}
	secret := func(v string) string {
		if v == "" {
			return ""
		}
		return "[set]"
	}
	return map[string]string{
		"history-limit": strconv.Itoa(config.HistoryLimit),
		"backend":       config.Backend,
		"db-path":       orDefault(config.DBPath),
		"redis-uri":     config.RedisURI,
		"export-dir":    orDefault(config.ExportDir),
		"font":          config.Font,
		"model":         orDefault(config.Model),
		"api-key":       secret(config.APIKey),
		"listen":        config.Listen,
		"s3-bucket":     config.S3.Bucket,
		"s3-prefix":     config.S3.Prefix,
		"s3-region":     config.S3.Region,
		"s3-endpoint":   config.S3.Endpoint,
		"s3-access-key": secret(config.S3.AccessKey),
		"s3-secret-key": secret(config.S3.SecretKey),
	}
}
