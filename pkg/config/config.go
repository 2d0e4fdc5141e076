package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "nowtask"
	configFile = "config.yaml"
)

type Config struct {
	DataDir            string        `yaml:"data_dir" mapstructure:"data_dir" env:"NOWTASK_DATA_DIR"`
	TrashRetentionDays int           `yaml:"trash_retention_days" mapstructure:"trash_retention_days" env:"NOWTASK_TRASH_RETENTION_DAYS"`
	Storage            StorageConfig `yaml:"storage" mapstructure:"storage"`
	Log                LogConfig     `yaml:"log" mapstructure:"log"`
	Server             ServerConfig  `yaml:"server" mapstructure:"server"`
	Mirror             MirrorConfig  `yaml:"mirror" mapstructure:"mirror"`
}

type StorageConfig struct {
	// Backend is "file", "sqlite" or "memory".
	Backend    string `yaml:"backend" mapstructure:"backend" env:"NOWTASK_STORAGE_BACKEND"`
	QuotaBytes int    `yaml:"quota_bytes" mapstructure:"quota_bytes" env:"NOWTASK_STORAGE_QUOTA_BYTES"`
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path" env:"NOWTASK_SQLITE_PATH"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" env:"NOWTASK_LOG_LEVEL"`
	Format string `yaml:"format" mapstructure:"format" env:"NOWTASK_LOG_FORMAT"`
	Output string `yaml:"output" mapstructure:"output" env:"NOWTASK_LOG_OUTPUT"`
	File   string `yaml:"file" mapstructure:"file" env:"NOWTASK_LOG_FILE"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr" mapstructure:"addr" env:"NOWTASK_SERVER_ADDR"`
	AllowOrigins []string `yaml:"allow_origins" mapstructure:"allow_origins" env:"NOWTASK_SERVER_ALLOW_ORIGINS" env-separator:","`
}

type MirrorConfig struct {
	RedisURL  string        `yaml:"redis_url" mapstructure:"redis_url" env:"NOWTASK_REDIS_URL"`
	Namespace string        `yaml:"namespace" mapstructure:"namespace" env:"NOWTASK_REDIS_NAMESPACE"`
	Calendar  string        `yaml:"calendar" mapstructure:"calendar" env:"NOWTASK_CALENDAR"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout" env:"NOWTASK_MIRROR_TIMEOUT"`
}

func Default() *Config {
	dir, err := DefaultDataDir()
	if err != nil {
		dir = "." + xdgAppName
	}
	return &Config{
		DataDir:            dir,
		TrashRetentionDays: 30,
		Storage: StorageConfig{
			Backend:    "file",
			QuotaBytes: 5 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			AllowOrigins: []string{"http://localhost:5173"},
		},
		Mirror: MirrorConfig{
			Timeout: 10 * time.Second,
		},
	}
}

func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

// DefaultPath is the config file inside the default data directory.
func DefaultPath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load builds the configuration from defaults, an optional .env file in
// the working directory, the YAML file at path (the default location when
// path is empty) and NOWTASK_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if path == "" {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := cleanenv.UpdateEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.DataDir, "nowtask.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.TrashRetentionDays <= 0 {
		return fmt.Errorf("trash_retention_days must be positive, got %d", c.TrashRetentionDays)
	}
	if c.Storage.QuotaBytes < 0 {
		return fmt.Errorf("quota_bytes must not be negative")
	}
	return nil
}

// TrashRetention is the retention window as a duration.
func (c *Config) TrashRetention() time.Duration {
	return time.Duration(c.TrashRetentionDays) * 24 * time.Hour
}

// Save writes the configuration as YAML.
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, b, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
