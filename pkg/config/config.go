// Package config holds the stacks configuration: where the library lives,
// how to reach the classification collaborator, and the handful of tunable
// constants for rendering and reorganization cadence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

const (
	// DefaultReorganizeEvery triggers an automatic reorganization pass on
	// every Nth successful filing. Deliberately a tunable constant, not a
	// value derived from tree size.
	DefaultReorganizeEvery = 5

	// DefaultClassifyTimeoutSecs bounds each collaborator round trip.
	DefaultClassifyTimeoutSecs = 30

	// DefaultPageSize is the folder-view page size.
	DefaultPageSize = 10

	// DefaultDisplayBudget is the display-length ceiling for rendered
	// views, sized to fit a single chat message.
	DefaultDisplayBudget = 4000

	// DefaultModel is the collaborator model used when none is configured.
	DefaultModel = "gpt-4o"
)

// ShowRule pins every item from shows matching Pattern (a glob) straight
// into the named root folder, skipping the collaborator round trip.
type ShowRule struct {
	Pattern string `json:"pattern"`
	Folder  string `json:"folder"`
}

// Config is the persisted configuration document.
type Config struct {
	LibraryDir          string     `json:"library_dir"`
	APIKey              string     `json:"api_key,omitempty"`
	BaseURL             string     `json:"base_url,omitempty"`
	Model               string     `json:"model"`
	ClassifyTimeoutSecs int        `json:"classify_timeout_secs"`
	ReorganizeEvery     int        `json:"reorganize_every"`
	PageSize            int        `json:"page_size"`
	DisplayBudget       int        `json:"display_budget"`
	ShowRules           []ShowRule `json:"show_rules,omitempty"`
}

// DefaultPath returns ~/.stacks/config.json.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".stacks", "config.json"), nil
}

// Default returns a configuration populated with the built-in defaults.
// The library directory defaults to ~/.stacks/library.
func Default() *Config {
	c := &Config{
		Model:               DefaultModel,
		ClassifyTimeoutSecs: DefaultClassifyTimeoutSecs,
		ReorganizeEvery:     DefaultReorganizeEvery,
		PageSize:            DefaultPageSize,
		DisplayBudget:       DefaultDisplayBudget,
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		c.LibraryDir = filepath.Join(homeDir, ".stacks", "library")
	}
	return c
}

// Load reads the configuration from path. A missing file yields the
// defaults; unset numeric fields fall back to their defaults so older
// config files keep working.
func Load(path string) (*Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.ClassifyTimeoutSecs <= 0 {
		c.ClassifyTimeoutSecs = DefaultClassifyTimeoutSecs
	}
	if c.ReorganizeEvery <= 0 {
		c.ReorganizeEvery = DefaultReorganizeEvery
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.DisplayBudget <= 0 {
		c.DisplayBudget = DefaultDisplayBudget
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes the configuration to path atomically via a temp file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename temp config file: %w", err)
	}
	return nil
}

// Validate checks that every show rule carries a destination folder and a
// compilable glob pattern.
func (c *Config) Validate() error {
	for i, rule := range c.ShowRules {
		if rule.Folder == "" {
			return fmt.Errorf("show rule %d has no destination folder", i)
		}
		if _, err := glob.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("show rule %d has invalid pattern %q: %w", i, rule.Pattern, err)
		}
	}
	return nil
}

// CompiledRule is a ShowRule with its glob pattern compiled.
type CompiledRule struct {
	Pattern glob.Glob
	Folder  string
}

// CompiledRules compiles every show rule. Call Validate first if you need
// per-rule error positions.
func (c *Config) CompiledRules() ([]CompiledRule, error) {
	out := make([]CompiledRule, 0, len(c.ShowRules))
	for _, rule := range c.ShowRules {
		g, err := glob.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid show rule pattern %q: %w", rule.Pattern, err)
		}
		out = append(out, CompiledRule{Pattern: g, Folder: rule.Folder})
	}
	return out, nil
}
