// Package config loads and saves ~/.hnterm/config.json. The file is read
// as JSONC (comments and trailing commas allowed) and written as plain
// indented JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// DirEnv overrides the config directory (keeps tests away from ~/.hnterm).
const DirEnv = "HNTERM_CONFIG_DIR"

type Config struct {
	// BaseURL is the site root; empty means the public host.
	BaseURL string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	// UserCookie is the value of the site's "user" session cookie.
	UserCookie string `json:"userCookie,omitempty" yaml:"userCookie,omitempty"`

	Backend *BackendConfig `json:"backend,omitempty" yaml:"backend,omitempty"`

	// DebounceMs is the action store's persist debounce window.
	DebounceMs int `json:"debounceMs,omitempty" yaml:"debounceMs,omitempty"`

	LogPath  string `json:"logPath,omitempty" yaml:"logPath,omitempty"`
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	TUI *TUIConfig `json:"tui,omitempty" yaml:"tui,omitempty"`
}

type BackendConfig struct {
	// Kind is "file" (default), "sqlite", "redis" or "memory".
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
	// Dir holds file and sqlite data; defaults to the config dir.
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"`
	RedisURL string `json:"redisUrl,omitempty" yaml:"redisUrl,omitempty"`
}

type TUIConfig struct {
	// Glyphs selects the glyph set ("unicode", "ascii").
	Glyphs string `json:"glyphs,omitempty" yaml:"glyphs,omitempty"`
	// Profile forces a color profile ("truecolor", "ansi256", "ansi", "ascii").
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`
}

func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(DirEnv)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hnterm"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file. A missing file yields an empty config.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(b), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to Path().
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg atomically and keeps the previous file as <path>.bak.
func SaveFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, filepath.Base(path)+".bak.*.tmp", path+".bak", prev, 0o644)
	}
	// The file holds the session cookie.
	return atomicWriteFile(dir, filepath.Base(path)+".*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// BackendKind returns the configured backend kind, "file" when unset.
func (c *Config) BackendKind() string {
	if c == nil || c.Backend == nil || strings.TrimSpace(c.Backend.Kind) == "" {
		return "file"
	}
	return strings.ToLower(strings.TrimSpace(c.Backend.Kind))
}

// DataDir is where file and sqlite backends keep their data.
func (c *Config) DataDir() (string, error) {
	if c != nil && c.Backend != nil && strings.TrimSpace(c.Backend.Dir) != "" {
		return c.Backend.Dir, nil
	}
	return Dir()
}

// Redacted returns a copy safe to print: the session cookie is masked.
func (c *Config) Redacted() *Config {
	if c == nil {
		return &Config{}
	}
	cp := *c
	if cp.UserCookie != "" {
		name, _, _ := strings.Cut(cp.UserCookie, "&")
		cp.UserCookie = name + "&…"
	}
	return &cp
}
