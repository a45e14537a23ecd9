package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "PUBINDEX_CONFIG"
	dbPathEnv         = "PUBINDEX_DB_PATH"
	logLevelEnv       = "PUBINDEX_LOG_LEVEL"
	repairStrategyEnv = "PUBINDEX_REPAIR_STRATEGY"
	outputFormatEnv   = "PUBINDEX_OUTPUT_FORMAT"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Query    QueryConfig    `yaml:"query"`
}

// DatabaseConfig describes the SQLite file and how hard to try opening it.
type DatabaseConfig struct {
	Path            string        `yaml:"path"`
	ConnectAttempts uint          `yaml:"connectAttempts"`
	ConnectDelay    time.Duration `yaml:"connectDelay"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// IngestConfig controls corpus loading.
type IngestConfig struct {
	CorpusPath     string `yaml:"corpusPath"`
	RepairStrategy string `yaml:"repairStrategy"`
	// ProgressSteps is how many progress lines an ingestion logs.
	ProgressSteps int `yaml:"progressSteps"`
}

// QueryConfig holds read defaults.
type QueryConfig struct {
	Format   string `yaml:"format"`
	PageSize int    `yaml:"pageSize"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// An empty path falls back to the PUBINDEX_CONFIG variable.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dbPathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(repairStrategyEnv); v != "" {
		c.Ingest.RepairStrategy = v
	}

	if v := os.Getenv(outputFormatEnv); v != "" {
		c.Query.Format = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database.Path = override.Database.Path
	}
	if override.Database.ConnectAttempts != 0 {
		base.Database.ConnectAttempts = override.Database.ConnectAttempts
	}
	if override.Database.ConnectDelay != 0 {
		base.Database.ConnectDelay = override.Database.ConnectDelay
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Ingest.CorpusPath != "" {
		base.Ingest.CorpusPath = override.Ingest.CorpusPath
	}
	if override.Ingest.RepairStrategy != "" {
		base.Ingest.RepairStrategy = override.Ingest.RepairStrategy
	}
	if override.Ingest.ProgressSteps != 0 {
		base.Ingest.ProgressSteps = override.Ingest.ProgressSteps
	}

	if override.Query.Format != "" {
		base.Query.Format = override.Query.Format
	}
	if override.Query.PageSize != 0 {
		base.Query.PageSize = override.Query.PageSize
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Path:            "publications.db",
			ConnectAttempts: 3,
			ConnectDelay:    500 * time.Millisecond,
		},
		Logging: LoggingConfig{Level: "info"},
		Ingest: IngestConfig{
			CorpusPath:     "dblp.xml",
			RepairStrategy: "heuristic",
			ProgressSteps:  10,
		},
		Query: QueryConfig{Format: "json", PageSize: 20},
	}
}
