// Package config loads the biotreebridge.yaml configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "biotreebridge.yaml"

// Defaults applied to missing settings.
const (
	DefaultOutputDir = "."
	DefaultProjectID = "HTAN2_BForePC"
	DefaultProgram   = "HTAN_BForePC"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the settings shared by all commands. Command-line flags
// take precedence over values read from the file.
type Config struct {
	// Schema is the JSON-LD schema document.
	Schema string `yaml:"schema,omitempty"`

	// Mappings is a YAML mapping file or an annotated JSON-LD export.
	Mappings string `yaml:"mappings,omitempty"`

	// OutputDir receives generated files.
	OutputDir string `yaml:"output_dir,omitempty"`

	// ProjectID scopes minted resource ids.
	ProjectID string `yaml:"project_id,omitempty"`

	// Program names the sub-program the data belongs to.
	Program string `yaml:"program,omitempty"`

	// SubjectField is the record column holding the patient identifier.
	SubjectField string `yaml:"subject_field,omitempty"`

	// Validate enables resource validation before writing.
	Validate bool `yaml:"validate,omitempty"`

	Log LogConfig `yaml:"log,omitempty"`

	// Systems adds or overrides controlled-vocabulary systems.
	Systems map[string]string `yaml:"systems,omitempty"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)

	return cfg
}

// Load reads the configuration at path. An empty path reads DefaultFile
// if it exists and returns defaults otherwise.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}

	cfg, err := LoadFile(DefaultFile)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// LoadFile loads and parses a YAML configuration file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if cfg.ProjectID == "" {
		cfg.ProjectID = DefaultProjectID
	}

	if cfg.Program == "" {
		cfg.Program = DefaultProgram
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
