// Package projectconfig provides the ProjectConfig struct and loader for
// .benchboard.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".benchboard.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultTasksDir    = "tasks"
	DefaultEvalRunsDir = "eval_runs"
	DefaultCacheDir    = ".benchboard-cache"

	DefaultServerHost = "127.0.0.1"
	DefaultServerPort = 5000
)

// PathsConfig holds the data directories. Relative paths are resolved
// against the directory holding the config file.
type PathsConfig struct {
	Tasks    string `yaml:"tasks,omitempty"`
	EvalRuns string `yaml:"eval_runs,omitempty"`
	Cache    string `yaml:"cache,omitempty"`
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Host           string   `yaml:"host,omitempty"`
	Port           int      `yaml:"port,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
	Watch          *bool    `yaml:"watch,omitempty"`
}

// BlobConfig points at an Azure Blob Storage container holding a data tree.
type BlobConfig struct {
	AccountURL string `yaml:"account_url,omitempty"`
	Container  string `yaml:"container,omitempty"`
	Prefix     string `yaml:"prefix,omitempty"`
}

// ValidationConfig controls how bad data files are treated.
type ValidationConfig struct {
	Strict *bool `yaml:"strict,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .benchboard.yaml.
type ProjectConfig struct {
	Paths      PathsConfig      `yaml:"paths,omitempty"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	Blob       BlobConfig       `yaml:"blob,omitempty"`
	Validation ValidationConfig `yaml:"validation,omitempty"`

	// Dir is the directory the config was loaded from, or the start
	// directory when no file was found.
	Dir string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Tasks:    DefaultTasksDir,
			EvalRuns: DefaultEvalRunsDir,
			Cache:    DefaultCacheDir,
		},
		Server: ServerConfig{
			Host:  DefaultServerHost,
			Port:  DefaultServerPort,
			Watch: boolPtr(false),
		},
		Validation: ValidationConfig{
			Strict: boolPtr(false),
		},
		Dir: ".",
	}
}

// Load finds .benchboard.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()
	cfg.Dir = startDir

	data, dir, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Dir = dir
	return cfg, nil
}

// findConfigFile walks up from dir looking for .benchboard.yaml (max 10
// levels) and returns its contents and directory. Returns os.ErrNotExist
// if no config file is found.
func findConfigFile(dir string) ([]byte, string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, dir, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Tasks != "" {
		dst.Paths.Tasks = src.Paths.Tasks
	}
	if src.Paths.EvalRuns != "" {
		dst.Paths.EvalRuns = src.Paths.EvalRuns
	}
	if src.Paths.Cache != "" {
		dst.Paths.Cache = src.Paths.Cache
	}

	// Server
	if src.Server.Host != "" {
		dst.Server.Host = src.Server.Host
	}
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}
	if src.Server.Watch != nil {
		dst.Server.Watch = src.Server.Watch
	}

	// Blob
	if src.Blob.AccountURL != "" {
		dst.Blob.AccountURL = src.Blob.AccountURL
	}
	if src.Blob.Container != "" {
		dst.Blob.Container = src.Blob.Container
	}
	if src.Blob.Prefix != "" {
		dst.Blob.Prefix = src.Blob.Prefix
	}

	// Validation
	if src.Validation.Strict != nil {
		dst.Validation.Strict = src.Validation.Strict
	}
}

// ResolvePath makes p absolute relative to the config directory.
func (c *ProjectConfig) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// TasksDir returns the resolved task definitions directory.
func (c *ProjectConfig) TasksDir() string { return c.ResolvePath(c.Paths.Tasks) }

// EvalRunsDir returns the resolved evaluation runs directory.
func (c *ProjectConfig) EvalRunsDir() string { return c.ResolvePath(c.Paths.EvalRuns) }

// CacheDir returns the resolved cache directory.
func (c *ProjectConfig) CacheDir() string { return c.ResolvePath(c.Paths.Cache) }

// Strict reports whether invalid data files should fail loading.
func (c *ProjectConfig) Strict() bool {
	return c.Validation.Strict != nil && *c.Validation.Strict
}

// WatchEnabled reports whether the server should reload on file changes.
func (c *ProjectConfig) WatchEnabled() bool {
	return c.Server.Watch != nil && *c.Server.Watch
}

func boolPtr(b bool) *bool {
	return &b
}
