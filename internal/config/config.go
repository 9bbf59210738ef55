// Package config provides Viper-based configuration loading for the room importer.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File, when set, receives a copy of every log entry next to stderr.
	File string `mapstructure:"file"`
}

// ExtractionConfig holds the defaults applied to every extraction batch.
type ExtractionConfig struct {
	// Extension is the required level file extension, dot included.
	Extension string `mapstructure:"extension"`
	// GridCellSize is the world-unit length of a tile edge.
	GridCellSize float64 `mapstructure:"grid_cell_size"`
	// Workers bounds the number of files processed concurrently.
	Workers int `mapstructure:"workers"`

	MaxItemValue int  `mapstructure:"max_item_value"`
	MinItemValue int  `mapstructure:"min_item_value"`
	SpawnWeight  int  `mapstructure:"spawn_weight"`
	OffLimits    bool `mapstructure:"off_limits"`

	SecretRoom    bool   `mapstructure:"secret_room"`
	KeepTextures  bool   `mapstructure:"keep_textures"`
	SquareShape   bool   `mapstructure:"square_shape"`
	AllCellsLight bool   `mapstructure:"all_cells_light"`
	LightPrefab   string `mapstructure:"light_prefab"`
	// MapBackground is the map texture drawn behind every room; empty disables it.
	MapBackground string `mapstructure:"map_background"`
}

// OutputConfig controls where emitted assets are written.
type OutputConfig struct {
	// Dir receives one <name>.yaml file per asset.
	Dir string `mapstructure:"dir"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// CatalogConfig controls the Postgres room catalog sink.
type CatalogConfig struct {
	// Enabled turns on upserting every emitted asset into the catalog.
	Enabled  bool           `mapstructure:"enabled"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ScriptingConfig controls Lua-backed function containers.
type ScriptingConfig struct {
	// BehaviorDir holds <behavior>.lua scripts. Empty selects in-memory containers.
	BehaviorDir string `mapstructure:"behavior_dir"`
	// InstructionLimit caps the VM instructions of one script run; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
	// Behaviors are attached to every container the importer creates.
	Behaviors []string `mapstructure:"behaviors"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Output     OutputConfig     `mapstructure:"output"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateExtraction(c.Extraction); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Output.Dir == "" {
		errs = append(errs, "output.dir must not be empty")
	}
	if c.Catalog.Enabled {
		if err := validateDatabase(c.Catalog.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateScripting(c.Scripting); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateExtraction(e ExtractionConfig) error {
	var errs []string
	if !strings.HasPrefix(e.Extension, ".") || len(e.Extension) < 2 {
		errs = append(errs, fmt.Sprintf("extraction.extension must start with '.', got %q", e.Extension))
	}
	if e.GridCellSize <= 0 {
		errs = append(errs, fmt.Sprintf("extraction.grid_cell_size must be > 0, got %g", e.GridCellSize))
	}
	if e.Workers < 1 {
		errs = append(errs, fmt.Sprintf("extraction.workers must be >= 1, got %d", e.Workers))
	}
	if e.MinItemValue < 0 {
		errs = append(errs, fmt.Sprintf("extraction.min_item_value must be >= 0, got %d", e.MinItemValue))
	}
	if e.MinItemValue > e.MaxItemValue {
		errs = append(errs, "extraction.min_item_value must not exceed extraction.max_item_value")
	}
	if e.SpawnWeight < 0 {
		errs = append(errs, fmt.Sprintf("extraction.spawn_weight must be >= 0, got %d", e.SpawnWeight))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "catalog.database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("catalog.database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "catalog.database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "catalog.database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("catalog.database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("catalog.database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("catalog.database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "catalog.database.min_conns must not exceed catalog.database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	if len(s.Behaviors) > 0 && s.BehaviorDir == "" {
		return errors.New("scripting.behaviors requires scripting.behavior_dir")
	}
	for _, b := range s.Behaviors {
		if b == "" {
			return errors.New("scripting.behaviors must not contain empty names")
		}
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with ROOMKIT_ prefix
	v.SetEnvPrefix("ROOMKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")

	v.SetDefault("extraction.extension", ".cbld")
	v.SetDefault("extraction.grid_cell_size", 10.0)
	v.SetDefault("extraction.workers", 4)
	v.SetDefault("extraction.max_item_value", 100)
	v.SetDefault("extraction.min_item_value", 0)
	v.SetDefault("extraction.spawn_weight", 50)
	v.SetDefault("extraction.off_limits", false)
	v.SetDefault("extraction.secret_room", false)
	v.SetDefault("extraction.keep_textures", false)
	v.SetDefault("extraction.square_shape", false)
	v.SetDefault("extraction.all_cells_light", false)
	v.SetDefault("extraction.light_prefab", "")
	v.SetDefault("extraction.map_background", "")

	v.SetDefault("output.dir", "rooms")

	v.SetDefault("catalog.enabled", false)
	v.SetDefault("catalog.database.host", "localhost")
	v.SetDefault("catalog.database.port", 5432)
	v.SetDefault("catalog.database.user", "roomkit")
	v.SetDefault("catalog.database.password", "roomkit")
	v.SetDefault("catalog.database.name", "roomkit")
	v.SetDefault("catalog.database.sslmode", "disable")
	v.SetDefault("catalog.database.max_conns", 10)
	v.SetDefault("catalog.database.min_conns", 2)
	v.SetDefault("catalog.database.max_conn_lifetime", "1h")

	v.SetDefault("scripting.behavior_dir", "")
	v.SetDefault("scripting.instruction_limit", 100000)
	v.SetDefault("scripting.behaviors", []string{})
}
