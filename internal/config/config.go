package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name inside a project directory.
const FileName = "bankimport.yaml"

// Environment overrides, also read from a .env file next to the config.
const (
	EnvDatabase = "BANKIMPORT_DB"
	EnvLogLevel = "BANKIMPORT_LOG_LEVEL"
)

// Config represents the top-level bankimport.yaml configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Import   ImportConfig   `yaml:"import"`
	Log      LogConfig      `yaml:"log"`
	Sources  []Source       `yaml:"sources,omitempty"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"` // relative paths resolve against the project directory
}

// ImportConfig controls batch imports.
type ImportConfig struct {
	Concurrency   int  `yaml:"concurrency"`
	MarkProcessed bool `yaml:"mark_processed"`
}

// LogConfig sets the log level (debug, info, warn, error).
type LogConfig struct {
	Level string `yaml:"level"`
}

// Source maps statement files in the import directory to an institution and account.
type Source struct {
	Pattern     string `yaml:"pattern"` // filepath.Match pattern on the file name
	Institution string `yaml:"institution"`
	AccountID   int64  `yaml:"account_id"`
	Category    string `yaml:"category,omitempty"`
}

// Load reads a bankimport.yaml file from disk and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.ApplyEnv(filepath.Dir(path))
	return &cfg, nil
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

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "bankimport.db"},
		Import: ImportConfig{
			Concurrency:   4,
			MarkProcessed: true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// SourceFor returns the first source whose pattern matches fileName.
func (c *Config) SourceFor(fileName string) (Source, bool) {
	for _, s := range c.Sources {
		if ok, err := filepath.Match(s.Pattern, fileName); err == nil && ok {
			return s, true
		}
	}
	return Source{}, false
}

// DatabasePath resolves the database path against the project directory.
func (c *Config) DatabasePath(projectDir string) string {
	if filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(projectDir, c.Database.Path)
}

// ApplyEnv loads <dir>/.env into the environment, then applies the environment overrides.
// Variables already set win over .env. Load calls it; callers starting from Default must.
func (c *Config) ApplyEnv(dir string) {
	// A missing .env is fine.
	_ = godotenv.Load(filepath.Join(dir, ".env"))
	c.applyEnv()
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvDatabase); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}
