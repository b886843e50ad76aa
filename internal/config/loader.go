package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"genaid/internal/registry"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are filled from Default by Merge.
type Config struct {
	Addr         string           `json:"addr" yaml:"addr" toml:"addr"`
	StorageDir   string           `json:"storage_dir" yaml:"storage_dir" toml:"storage_dir"`
	LogLevel     string           `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat    string           `json:"log_format" yaml:"log_format" toml:"log_format"`
	MaxBodyBytes int64            `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORSEnabled  bool             `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins  []string         `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	LlamaCtx     int              `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads int              `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
	HTTPTimeout  string           `json:"http_timeout" yaml:"http_timeout" toml:"http_timeout"`
	Models       []registry.Entry `json:"models" yaml:"models" toml:"models"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:         ":8080",
		StorageDir:   "~/.genaid/models",
		LogLevel:     "info",
		LogFormat:    "console",
		MaxBodyBytes: 1 << 20,
		LlamaCtx:     2048,
		LlamaThreads: 4,
		HTTPTimeout:  "30s",
		Models:       registry.Default(),
	}
}

// Merge returns c with every unspecified field taken from def.
// CORSEnabled is a plain bool and is never overridden.
func (c Config) Merge(def Config) Config {
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.StorageDir == "" {
		c.StorageDir = def.StorageDir
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = def.MaxBodyBytes
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = def.CORSOrigins
	}
	if c.LlamaCtx <= 0 {
		c.LlamaCtx = def.LlamaCtx
	}
	if c.LlamaThreads <= 0 {
		c.LlamaThreads = def.LlamaThreads
	}
	if c.HTTPTimeout == "" {
		c.HTTPTimeout = def.HTTPTimeout
	}
	if len(c.Models) == 0 {
		c.Models = def.Models
	}
	return c
}

// Timeout parses HTTPTimeout. Empty means no timeout.
func (c Config) Timeout() (time.Duration, error) {
	if c.HTTPTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0, fmt.Errorf("http_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("http_timeout: must not be negative")
	}
	return d, nil
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
