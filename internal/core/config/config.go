package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tse-eval/resampler/internal/core/aggregation"
	"github.com/tse-eval/resampler/internal/ingestion"
	"github.com/tse-eval/resampler/internal/resample"
)

// Input types.
const (
	InputSQLite   = "sqlite"
	InputPostgres = "postgres"
	InputEdge     = "edge"
	InputLoop     = "loop"
)

// Config represents the top-level application config plus resolved pipeline options.
type Config struct {
	Input    InputConfig    `koanf:"input"`
	Resample ResampleConfig `koanf:"resample"`
	Output   OutputConfig   `koanf:"output"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`

	// Options is populated by Load from Resample.
	Options resample.Options `koanf:"-"`
}

type InputConfig struct {
	Type      string `koanf:"type"` // sqlite | postgres | edge | loop
	Path      string `koanf:"path"`
	DSN       string `koanf:"dsn"`
	Query     string `koanf:"query"`
	Table     string `koanf:"table"` // used when query is empty
	CachePath string `koanf:"cache_path"`
}

type ResampleConfig struct {
	Preset        string            `koanf:"preset"` // traversal | edge | custom
	Grouper       map[string]string `koanf:"grouper"`
	Window        string            `koanf:"window"`
	TimeFrame     []float64         `koanf:"time_frame"`
	Reindex       bool              `koanf:"reindex"`
	FillMethod    string            `koanf:"fill_method"`
	RollingWindow string            `koanf:"rolling_window"`
	PerEdge       bool              `koanf:"per_edge"`
	EntityColumn  string            `koanf:"entity_column"`
	Workers       int               `koanf:"workers"`
}

type OutputConfig struct {
	CSVPath  string `koanf:"csv_path"`
	XLSXPath string `koanf:"xlsx_path"`
}

type DatabaseConfig struct {
	Enabled      bool   `koanf:"enabled"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type ServerConfig struct {
	Enabled bool   `koanf:"enabled"`
	Port    int    `koanf:"port"`
	Host    string `koanf:"host"`
	Mode    string `koanf:"mode"` // debug | release
}

// EffectiveQuery returns the configured query or the default query of the
// configured table.
func (c InputConfig) EffectiveQuery() string {
	if strings.TrimSpace(c.Query) != "" {
		return c.Query
	}
	return ingestion.QueryFor(c.Table)
}

// Options resolves the resample section into pipeline options.
func (c ResampleConfig) Options() (resample.Options, error) {
	spec, err := aggregation.Preset(c.Preset, c.Grouper, nil)
	if err != nil {
		return resample.Options{}, fmt.Errorf("invalid resample aggregation: %w", err)
	}
	if len(c.TimeFrame) != 2 {
		return resample.Options{}, fmt.Errorf("resample.time_frame must have exactly 2 hours, got %d", len(c.TimeFrame))
	}
	fill, err := resample.ParseFillMethod(c.FillMethod)
	if err != nil {
		return resample.Options{}, fmt.Errorf("invalid resample.fill_method: %w", err)
	}
	opts := resample.Options{
		Spec:          spec,
		Window:        c.Window,
		TimeFrame:     &resample.TimeFrame{Start: c.TimeFrame[0], End: c.TimeFrame[1]},
		Reindex:       c.Reindex,
		FillMethod:    fill,
		RollingWindow: c.RollingWindow,
		EntityColumn:  c.EntityColumn,
		Workers:       c.Workers,
	}
	if err := opts.Validate(); err != nil {
		return resample.Options{}, fmt.Errorf("invalid resample options: %w", err)
	}
	return opts, nil
}

func (c *Config) Validate() error {
	switch c.Input.Type {
	case InputSQLite, InputEdge, InputLoop:
		if strings.TrimSpace(c.Input.Path) == "" {
			return fmt.Errorf("input.path is required for input.type %q", c.Input.Type)
		}
		if _, err := os.Stat(c.Input.Path); err != nil {
			return fmt.Errorf("input.path %q is not accessible: %w", c.Input.Path, err)
		}
	case InputPostgres:
		if strings.TrimSpace(c.Input.DSN) == "" {
			return fmt.Errorf("input.dsn is required for input.type %q", c.Input.Type)
		}
	default:
		return fmt.Errorf("unsupported input.type %q (must be sqlite, postgres, edge or loop)", c.Input.Type)
	}
	if c.Input.Type == InputSQLite || c.Input.Type == InputPostgres {
		if strings.TrimSpace(c.Input.Query) == "" && strings.TrimSpace(c.Input.Table) == "" {
			return fmt.Errorf("input.query or input.table is required for database input")
		}
	}

	if c.Resample.Workers < 0 {
		return fmt.Errorf("resample.workers must be >= 0")
	}
	if _, err := c.Resample.Options(); err != nil {
		return err
	}

	if c.Database.Enabled {
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required")
		}
		if c.Database.MaxOpenConns <= 0 {
			return fmt.Errorf("database.max_open_conns must be > 0")
		}
		if c.Database.MaxIdleConns <= 0 {
			return fmt.Errorf("database.max_idle_conns must be > 0")
		}
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
		}
		if strings.TrimSpace(c.Server.Host) == "" {
			return fmt.Errorf("server.host is required")
		}
		if c.Server.Mode != "debug" && c.Server.Mode != "release" {
			return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
		}
	}

	return nil
}

// Load parses config from defaults, file and env, validates it, then resolves
// the pipeline options.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"input.type":              InputSQLite,
		"input.table":             ingestion.TraversalMetricsTable,
		"resample.preset":         aggregation.PresetTraversal,
		"resample.window":         resample.DefaultWindow,
		"resample.time_frame":     []float64{0, 24},
		"resample.reindex":        false,
		"resample.fill_method":    string(resample.FillForward),
		"resample.rolling_window": "",
		"resample.per_edge":       false,
		"resample.entity_column":  resample.EntityColumn,
		"resample.workers":        0,
		"database.enabled":        false,
		"database.max_open_conns": 10,
		"database.max_idle_conns": 10,
		"database.auto_migrate":   true,
		"server.enabled":          false,
		"server.port":             8080,
		"server.host":             "0.0.0.0",
		"server.mode":             "release",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("RESAMPLER_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "RESAMPLER_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts, err := cfg.Resample.Options()
	if err != nil {
		return nil, err
	}
	cfg.Options = opts
	return &cfg, nil
}
