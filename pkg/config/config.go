// Package config loads interpreter and playground settings from YAML, JSON or BCL files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oarkflow/bcl"
	"github.com/oarkflow/json"
	"gopkg.in/yaml.v3"

	"github.com/oarkflow/spl/interpreter"
)

type ServerConfig struct {
	Address      string `json:"address" yaml:"address"`
	CacheSize    int64  `json:"cache_size" yaml:"cache_size"`
	MaxBodyBytes int    `json:"max_body_bytes" yaml:"max_body_bytes"`
	TimeoutMs    int    `json:"timeout_ms" yaml:"timeout_ms"`
}

type Config struct {
	Entry        string       `json:"entry" yaml:"entry"`
	MaxCallDepth int          `json:"max_call_depth" yaml:"max_call_depth"`
	LogExecution bool         `json:"log_execution" yaml:"log_execution"`
	AllowNetwork bool         `json:"allow_network" yaml:"allow_network"`
	Server       ServerConfig `json:"server" yaml:"server"`
}

// Default mirrors interpreter.DefaultRuntimeConfig and adds playground settings.
func Default() *Config {
	rt := interpreter.DefaultRuntimeConfig()
	return &Config{
		Entry:        rt.Entry,
		MaxCallDepth: rt.MaxCallDepth,
		LogExecution: rt.LogExecution,
		AllowNetwork: rt.AllowNetwork,
		Server: ServerConfig{
			Address:      ":8080",
			CacheSize:    1000,
			MaxBodyBytes: 1 << 20,
			TimeoutMs:    5000,
		},
	}
}

// Load reads a config file based on its extension. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return load(path, yaml.Unmarshal)
	case ".json":
		return load(path, func(data []byte, v any) error {
			return json.Unmarshal(data, v)
		})
	case ".bcl":
		return load(path, func(data []byte, v any) error {
			_, err := bcl.Unmarshal(data, v)
			return err
		})
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// LoadFromString decodes raw config text in the named format.
func LoadFromString(content, format string) (*Config, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return decode([]byte(content), yaml.Unmarshal)
	case "json":
		return decode([]byte(content), func(data []byte, v any) error {
			return json.Unmarshal(data, v)
		})
	case "bcl":
		return decode([]byte(content), func(data []byte, v any) error {
			_, err := bcl.Unmarshal(data, v)
			return err
		})
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Entry == "" {
		return fmt.Errorf("entry function must be set")
	}
	if interpreter.IsBuiltin(cfg.Entry) {
		return fmt.Errorf("entry function %s is a built-in", cfg.Entry)
	}
	if cfg.MaxCallDepth <= 0 {
		return fmt.Errorf("max_call_depth must be positive, got %d", cfg.MaxCallDepth)
	}
	if cfg.Server.CacheSize < 0 {
		return fmt.Errorf("server.cache_size must not be negative")
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if cfg.Server.TimeoutMs <= 0 {
		return fmt.Errorf("server.timeout_ms must be positive")
	}
	return nil
}

// RuntimeConfig extracts the interpreter settings.
func (cfg *Config) RuntimeConfig() interpreter.RuntimeConfig {
	return interpreter.RuntimeConfig{
		Entry:        cfg.Entry,
		MaxCallDepth: cfg.MaxCallDepth,
		LogExecution: cfg.LogExecution,
		AllowNetwork: cfg.AllowNetwork,
	}
}

func load(path string, fn func([]byte, any) error) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(raw, fn)
}

func decode(data []byte, fn func([]byte, any) error) (*Config, error) {
	cfg := Default()
	if err := fn(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}
