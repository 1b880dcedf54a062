package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spendlens/spendlens/internal/database"
)

// FileName is the config file spendlens looks for in the working directory.
const FileName = "spendlens.yaml"

// Config represents the top-level spendlens.yaml configuration.
type Config struct {
	Database  database.Config `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Import    ImportConfig    `yaml:"import"`
	Log       LogConfig       `yaml:"log"`
	ImportLog ImportLogConfig `yaml:"import_log"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	UploadDir      string   `yaml:"upload_dir"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// ImportConfig controls how files are imported.
type ImportConfig struct {
	DefaultImporter     string `yaml:"default_importer"`
	AutoApplyCategories bool   `yaml:"auto_apply_categories"`
	ChaseAccount        string `yaml:"chase_account,omitempty"`
	InboxDir            string `yaml:"inbox_dir,omitempty"`
	InboxSchedule       string `yaml:"inbox_schedule,omitempty"` // cron spec, e.g. "@every 5m"
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// ImportLogConfig locates the import run log. An empty path disables it.
type ImportLogConfig struct {
	Path string `yaml:"path"`
}

// Load reads a spendlens.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads path, falling back to defaults when it does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new install.
func Default() *Config {
	return &Config{
		Database: database.Config{
			Driver: database.DriverSQLite,
			DSN:    "data/spendlens.db",
		},
		Server: ServerConfig{
			Port:      8080,
			UploadDir: "data/uploads",
		},
		Import: ImportConfig{
			DefaultImporter:     "aib",
			AutoApplyCategories: true,
			InboxSchedule:       "@every 5m",
		},
		Log: LogConfig{
			Level: "info",
		},
		ImportLog: ImportLogConfig{
			Path: "data/import-log.csv",
		},
	}
}

// ApplyEnv loads .env if present and overlays SPENDLENS_* variables.
func ApplyEnv(cfg *Config) {
	_ = godotenv.Load()

	cfg.Database.Driver = getEnv("SPENDLENS_DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("SPENDLENS_DB_DSN", cfg.Database.DSN)
	cfg.Server.Port = getEnvAsInt("SPENDLENS_PORT", cfg.Server.Port)
	cfg.Server.UploadDir = getEnv("SPENDLENS_UPLOAD_DIR", cfg.Server.UploadDir)
	cfg.Import.DefaultImporter = getEnv("SPENDLENS_DEFAULT_IMPORTER", cfg.Import.DefaultImporter)
	cfg.Import.AutoApplyCategories = getEnvAsBool("SPENDLENS_AUTO_APPLY", cfg.Import.AutoApplyCategories)
	cfg.Import.InboxDir = getEnv("SPENDLENS_INBOX_DIR", cfg.Import.InboxDir)
	cfg.Log.Level = getEnv("SPENDLENS_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Pretty = getEnvAsBool("SPENDLENS_LOG_PRETTY", cfg.Log.Pretty)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
