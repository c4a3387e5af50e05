package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"space-matchmaker/internal/model"
	"space-matchmaker/pkg/utils"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when --config is not given; a missing file means defaults.
const DefaultPath = "matchmaker.yaml"

// Config holds all matchmaker configuration.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Columns ColumnsConfig `yaml:"columns"`
	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig points at the input tables.
type DataConfig struct {
	Operators string `yaml:"operators"`
	Buildings string `yaml:"buildings"`
}

// ColumnsConfig names the interpreted columns.
type ColumnsConfig struct {
	Operator string `yaml:"operator"`
	MinSize  string `yaml:"min_size"`
	MaxSize  string `yaml:"max_size"`
	Size     string `yaml:"size"`
}

// OutputConfig configures where and how matches are written.
type OutputConfig struct {
	Path        string   `yaml:"path"`         // fixed output file
	PerOperator bool     `yaml:"per_operator"` // name the file after the operator instead
	Dir         string   `yaml:"dir"`          // directory for per-operator files
	Pattern     string   `yaml:"pattern"`      // {operator} is replaced by the sanitized name
	Preview     []string `yaml:"preview"`      // columns printed after a match
	GroupBy     string   `yaml:"group_by"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	JobTimeout string `yaml:"job_timeout"`
	OutputDir  string `yaml:"output_dir"` // per-run output directories live here
}

// StoreConfig configures the run history database.
type StoreConfig struct {
	Path    string `yaml:"path"`
	History bool   `yaml:"history"` // record CLI runs too; the server always records
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the defaults for the data/ and results/ layout.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Operators: "data/requirements_cleaned.xlsx",
			Buildings: "data/Data Workshop office spreadsheet.xlsx",
		},
		Columns: ColumnsConfig{
			Operator: "Operator",
			MinSize:  "MinSize",
			MaxSize:  "MaxSize",
			Size:     "size",
		},
		Output: OutputConfig{
			Path:    "results/matched_buildings.xlsx",
			Dir:     "results",
			Pattern: "Matches_for_" + utils.OperatorPlaceholder + ".xlsx",
			Preview: []string{"city", "post code", "size"},
		},
		Server: ServerConfig{
			Addr:       ":8080",
			JobTimeout: "5m",
			OutputDir:  "exports",
		},
		Store: StoreConfig{
			Path: "matchmaker.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. When path is empty DefaultPath is tried and may
// be absent; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields that have no sensible fallback.
func (c *Config) Validate() error {
	var problems []string
	if c.Columns.Operator == "" || c.Columns.MinSize == "" || c.Columns.MaxSize == "" || c.Columns.Size == "" {
		problems = append(problems, "columns.operator, columns.min_size, columns.max_size and columns.size are required")
	}
	if c.Output.PerOperator && !strings.Contains(c.Output.Pattern, utils.OperatorPlaceholder) {
		problems = append(problems, fmt.Sprintf("output.pattern must contain %s when output.per_operator is set", utils.OperatorPlaceholder))
	}
	if err := utils.CheckFilePattern(c.Output.Pattern); err != nil {
		problems = append(problems, fmt.Sprintf("output.pattern: %v", err))
	}
	if c.Server.JobTimeout != "" {
		if _, err := time.ParseDuration(c.Server.JobTimeout); err != nil {
			problems = append(problems, fmt.Sprintf("server.job_timeout: %v", err))
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ModelColumns converts the column config for the pipeline.
func (c *Config) ModelColumns() model.Columns {
	return model.Columns{
		Operator: c.Columns.Operator,
		MinSize:  c.Columns.MinSize,
		MaxSize:  c.Columns.MaxSize,
		Size:     c.Columns.Size,
	}
}

// ModelInputs converts the data config for the pipeline.
func (c *Config) ModelInputs() model.Inputs {
	return model.Inputs{Operators: c.Data.Operators, Buildings: c.Data.Buildings}
}

// ModelOutput converts the output config for the pipeline.
func (c *Config) ModelOutput() model.Output {
	return model.Output{
		Path:        c.Output.Path,
		PerOperator: c.Output.PerOperator,
		Dir:         c.Output.Dir,
		Pattern:     c.Output.Pattern,
	}
}

// JobTimeout returns the server job timeout, 5m when unset.
func (c *Config) JobTimeout() time.Duration {
	return utils.ParseDuration(c.Server.JobTimeout)
}
