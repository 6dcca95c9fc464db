package internal

import (
	"log/slog"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Store    StoreConfig       `yaml:"store"`
	Defaults DefaultsConfig    `yaml:"defaults"`
	Index    IndexConfig       `yaml:"index"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Defaults.Validate(); err != nil {
		return err
	}
	return c.Index.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// StoreConfig describes where records live on disk and how the store
// subdirectories are named.
type StoreConfig struct {
	Path         string `yaml:"path"`
	WorkingDir   string `yaml:"working_dir"`
	ArchiveDir   string `yaml:"archive_dir"`
	TemplatesDir string `yaml:"templates_dir"`
	Extension    string `yaml:"extension"`
	UseGit       bool   `yaml:"use_git"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.WorkingDir, validation.Required),
		validation.Field(&c.ArchiveDir, validation.Required),
		validation.Field(&c.TemplatesDir, validation.Required),
		validation.Field(&c.Extension, validation.Required),
	)
}

// DefaultsConfig holds values substituted into fresh records when the
// template placeholders are not filled explicitly.
type DefaultsConfig struct {
	Tax     float64 `yaml:"tax"`
	Salary  float64 `yaml:"salary"`
	Manager string  `yaml:"manager"`
}

// Validate validates the defaults configuration.
func (c *DefaultsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Tax, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.Salary, validation.Min(0.0)),
	)
}

// IndexConfig holds the search index database configuration.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Store: StoreConfig{
			Path:         filepath.Join(home, "projekte"),
			WorkingDir:   "working",
			ArchiveDir:   "archive",
			TemplatesDir: "templates",
			Extension:    "yml",
			UseGit:       true,
		},
		Defaults: DefaultsConfig{
			Tax:    0.19,
			Salary: 0.0,
		},
		Index: IndexConfig{
			Path: filepath.Join(home, "projekte", ".projektor.db"),
		},
	}
}

// ConfigPaths returns the layered config file locations, lowest precedence
// first: the per-user file, then a project-local override.
func ConfigPaths() []string {
	paths := []string{}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "projektor", "config.yml"))
	}
	paths = append(paths, ".projektor.yml")
	return paths
}
