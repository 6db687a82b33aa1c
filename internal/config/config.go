package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/memberbridge/internal/member"
	"github.com/roach88/memberbridge/internal/migrate"
)

// Config is the full process configuration. It is constructed once at
// startup and treated as immutable afterwards.
type Config struct {
	Migration  MigrationConfig  `yaml:"migration" json:"migration"`
	Database   DatabaseConfig   `yaml:"database" json:"database"`
	DualWrite  DualWriteConfig  `yaml:"dual_write" json:"dual_write"`
	Relational RelationalConfig `yaml:"relational" json:"relational"`
	Document   DocumentConfig   `yaml:"document" json:"document"`
	HTTP       HTTPConfig       `yaml:"http" json:"http"`
	Log        LogConfig        `yaml:"log" json:"log"`
}

// MigrationConfig selects the overall strategy.
type MigrationConfig struct {
	// Strategy is "direct" (single store) or "dual-write".
	Strategy string `yaml:"strategy" json:"strategy"`
}

// DatabaseConfig selects which store is authoritative.
type DatabaseConfig struct {
	// Primary is the store used for single-store strategies.
	Primary string `yaml:"primary" json:"primary"`

	// ReadSource is the store consulted for reads in dual-write mode.
	ReadSource string `yaml:"read_source" json:"read_source"`
}

// DualWriteConfig tunes the dual-write strategy.
type DualWriteConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Compare enables best-effort divergence detection on reads.
	Compare bool `yaml:"compare" json:"compare"`
}

// RelationalConfig locates the SQLite database.
type RelationalConfig struct {
	Path string `yaml:"path" json:"path"`
}

// DocumentConfig locates the Badger directory.
type DocumentConfig struct {
	Path string `yaml:"path" json:"path"`
}

// HTTPConfig configures the REST surface.
type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	JSON  bool   `yaml:"json" json:"json"`
}

// Default returns the configuration used when keys are omitted:
// direct strategy against the relational store, local data paths.
func Default() Config {
	return Config{
		Migration:  MigrationConfig{Strategy: "direct"},
		Database:   DatabaseConfig{Primary: "relational", ReadSource: "relational"},
		DualWrite:  DualWriteConfig{Enabled: false, Compare: false},
		Relational: RelationalConfig{Path: "data/members.db"},
		Document:   DocumentConfig{Path: "data/documents"},
		HTTP:       HTTPConfig{Addr: ":8080"},
		Log:        LogConfig{Level: "info", JSON: false},
	}
}

// Load reads the YAML file at path, applies environment overrides, and
// validates the result against the embedded CUE schema.
// An empty path loads defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		// Strict decoding catches typos like "dual_write:" vs "dualwrite:".
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Strategy maps the configuration onto the orchestrator's immutable
// strategy value. Dual-write is active only when both the strategy key
// and the enable flag agree, mirroring the two-key activation the
// migration runbook uses.
func (c *Config) Strategy() migrate.Strategy {
	primary := storeKind(c.Database.Primary)

	if c.Migration.Strategy == "dual-write" && c.DualWrite.Enabled {
		return migrate.Strategy{
			Primary:       primary,
			DualWrite:     true,
			ReadSource:    storeKind(c.Database.ReadSource),
			CompareOnRead: c.DualWrite.Compare,
		}
	}

	return migrate.Strategy{
		Primary:    primary,
		ReadSource: primary,
	}
}

// storeKind converts a config string to a StoreKind, defaulting to the
// relational store for anything unrecognized (validation has already
// rejected such values when Load was used).
func storeKind(s string) member.StoreKind {
	if s == string(member.StoreDocument) {
		return member.StoreDocument
	}
	return member.StoreRelational
}

// applyEnv overrides fields from MEMBERBRIDGE_* environment variables.
func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("MEMBERBRIDGE_MIGRATION_STRATEGY", &cfg.Migration.Strategy)
	setString("MEMBERBRIDGE_DATABASE_PRIMARY", &cfg.Database.Primary)
	setString("MEMBERBRIDGE_DATABASE_READ_SOURCE", &cfg.Database.ReadSource)
	setBool("MEMBERBRIDGE_DUAL_WRITE_ENABLED", &cfg.DualWrite.Enabled)
	setBool("MEMBERBRIDGE_DUAL_WRITE_COMPARE", &cfg.DualWrite.Compare)
	setString("MEMBERBRIDGE_RELATIONAL_PATH", &cfg.Relational.Path)
	setString("MEMBERBRIDGE_DOCUMENT_PATH", &cfg.Document.Path)
	setString("MEMBERBRIDGE_HTTP_ADDR", &cfg.HTTP.Addr)
	setString("MEMBERBRIDGE_LOG_LEVEL", &cfg.Log.Level)
}
