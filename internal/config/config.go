// Package config loads hyde.yaml, applies defaults and validates the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "github.com/hydessg/hyde/internal/foundation/errors"
)

// DefaultFilename is looked up in the site root when no explicit config file is given.
const DefaultFilename = "hyde.yaml"

// Reserved directory defaults.
const (
	DefaultDataDir    = "_data"
	DefaultLayoutsDir = "_layouts"
	DefaultOutputDir  = "_site"
)

// DefaultMaxLayoutDepth bounds layout chains.
const DefaultMaxLayoutDepth = 8

// Config represents the site configuration.
type Config struct {
	// Root is the site source directory. It is not read from the file.
	Root string `yaml:"-"`
	// File is the configuration file that was loaded, empty when none existed.
	File string `yaml:"-"`

	Paths        PathsConfig       `yaml:"paths"`
	Templates    TemplatesConfig   `yaml:"templates"`
	Markdown     MarkdownConfig    `yaml:"markdown"`
	Build        BuildConfig       `yaml:"build"`
	Log          LogConfig         `yaml:"log"`
	ContentTypes map[string]string `yaml:"content_types,omitempty"`
}

// PathsConfig locates the reserved directories, relative to the root unless absolute.
type PathsConfig struct {
	Data    string `yaml:"data"`
	Layouts string `yaml:"layouts"`
	Output  string `yaml:"output"`
}

// TemplatesConfig controls template resolution and evaluation.
type TemplatesConfig struct {
	StrictFrontMatter bool `yaml:"strict_front_matter"`
	MaxLayoutDepth    int  `yaml:"max_layout_depth"`
	Autoescape        bool `yaml:"autoescape"`
	TrimBlocks        bool `yaml:"trim_blocks"`
	LStripBlocks      bool `yaml:"lstrip_blocks"`
}

// MarkdownConfig controls conversion of rendered Markdown pages.
type MarkdownConfig struct {
	Enabled     bool `yaml:"enabled"`
	GFM         bool `yaml:"gfm"`
	Typographer bool `yaml:"typographer"`
	UnsafeHTML  bool `yaml:"unsafe_html"`
	HeadingIDs  bool `yaml:"heading_ids"`
}

// BuildConfig holds defaults for the build command.
type BuildConfig struct {
	KeepGoing   bool   `yaml:"keep_going"`
	Clean       bool   `yaml:"clean"`
	Report      string `yaml:"report,omitempty"`
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Defaults returns the configuration used when hyde.yaml is absent.
func Defaults(root string) *Config {
	return &Config{
		Root: root,
		Paths: PathsConfig{
			Data:    DefaultDataDir,
			Layouts: DefaultLayoutsDir,
			Output:  DefaultOutputDir,
		},
		Templates: TemplatesConfig{MaxLayoutDepth: DefaultMaxLayoutDepth},
		Markdown: MarkdownConfig{
			GFM:        true,
			UnsafeHTML: true,
			HeadingIDs: true,
		},
		Log: LogConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
}

// Load reads the configuration for the site at root. An empty configPath
// means root/hyde.yaml, which may be missing; an explicit path must exist.
// A .env file in root is loaded first so that ${VAR} references in the file
// can use it.
func Load(root, configPath string) (*Config, error) {
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.ConfigError("resolve site root").WithCause(err).
			WithContext("root", root).Build()
	}

	if err := loadEnvFile(absRoot); err != nil {
		slog.Debug("No .env loaded", slog.String("root", absRoot), slog.String("reason", err.Error()))
	}

	cfg := Defaults(absRoot)

	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(absRoot, DefaultFilename)
	}

	// #nosec G304 - the config path is chosen by the operator
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, ferrors.ConfigError("parse configuration").WithCause(err).
				WithContext("path", configPath).Build()
		}
		cfg.File = configPath
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults only
	case errors.Is(err, os.ErrNotExist):
		return nil, ferrors.ConfigError("configuration file not found").
			WithContext("path", configPath).Build()
	default:
		return nil, ferrors.ConfigError("read configuration").WithCause(err).
			WithContext("path", configPath).Build()
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) normalize() error {
	level, err := ParseLogLevel(string(c.Log.Level))
	if err != nil {
		return ferrors.ConfigError("invalid log level").WithCause(err).Build()
	}
	format, err := ParseLogFormat(string(c.Log.Format))
	if err != nil {
		return ferrors.ConfigError("invalid log format").WithCause(err).Build()
	}
	c.Log.Level = level
	c.Log.Format = format
	return nil
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}

// DataDir returns the absolute dataset directory.
func (c *Config) DataDir() string { return c.resolve(c.Paths.Data) }

// LayoutsDir returns the absolute layouts directory.
func (c *Config) LayoutsDir() string { return c.resolve(c.Paths.Layouts) }

// OutputDir returns the absolute output directory.
func (c *Config) OutputDir() string { return c.resolve(c.Paths.Output) }

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
