// Package config handles configuration loading and validation for roster.
package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Built-in action names for keybindings.
const (
	ActionNew       = "new"
	ActionEdit      = "edit"
	ActionDelete    = "delete"
	ActionSelect    = "select"
	ActionSelectAll = "select-all"
	ActionExport    = "export"
	ActionRefresh   = "refresh"
	ActionSort      = "sort"
	ActionPageSize  = "page-size"
	ActionHistory   = "history"
	ActionLogout    = "logout"
)

// defaultKeybindings provides built-in keybindings that users can override.
var defaultKeybindings = map[string]Keybinding{
	"n":     {Action: ActionNew, Help: "new"},
	"e":     {Action: ActionEdit, Help: "edit"},
	"d":     {Action: ActionDelete, Help: "delete", Confirm: "Delete the selected students?"},
	"space": {Action: ActionSelect, Help: "select"},
	"a":     {Action: ActionSelectAll, Help: "select page"},
	"x":     {Action: ActionExport, Help: "export"},
	"r":     {Action: ActionRefresh, Help: "refresh"},
	"s":     {Action: ActionSort, Help: "sort"},
	"z":     {Action: ActionPageSize, Help: "page size"},
	"H":     {Action: ActionHistory, Help: "history"},
	"L":     {Action: ActionLogout, Help: "logout"},
}

// Export scopes.
const (
	ScopePage = "page"
	ScopeAll  = "all"
)

// Config holds the application configuration.
type Config struct {
	API         APIConfig             `yaml:"api"`
	Auth        AuthConfig            `yaml:"auth"`
	TUI         TUIConfig             `yaml:"tui"`
	Export      ExportConfig          `yaml:"export"`
	Database    DatabaseConfig        `yaml:"database"`
	Keybindings map[string]Keybinding `yaml:"keybindings"`
	DataDir     string                `yaml:"-"` // set by caller, not from config file
}

// APIConfig configures the students REST API client.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url"           env:"ROSTER_API_URL"`
	Timeout           time.Duration `yaml:"timeout"            env:"ROSTER_API_TIMEOUT"`
	SendAuthToken     bool          `yaml:"send_auth_token"    env:"ROSTER_API_SEND_AUTH_TOKEN"`
	DeleteConcurrency int           `yaml:"delete_concurrency" env:"ROSTER_API_DELETE_CONCURRENCY"`
}

// AuthConfig configures the identity provider.
type AuthConfig struct {
	APIKey      string        `yaml:"api_key"      env:"ROSTER_FIREBASE_API_KEY"`
	IdentityURL string        `yaml:"identity_url" env:"ROSTER_FIREBASE_IDENTITY_URL"`
	TokenURL    string        `yaml:"token_url"    env:"ROSTER_FIREBASE_TOKEN_URL"`
	Timeout     time.Duration `yaml:"timeout"      env:"ROSTER_AUTH_TIMEOUT"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme     string        `yaml:"theme"      env:"ROSTER_THEME"`
	PageSize  int           `yaml:"page_size"`
	PageSizes []int         `yaml:"page_sizes"`
	ToastTTL  time.Duration `yaml:"toast_ttl"`
}

// ExportConfig controls where and how records are exported.
type ExportConfig struct {
	Dir           string `yaml:"dir"            env:"ROSTER_EXPORT_DIR"`
	DefaultFormat string `yaml:"default_format"`
	Scope         string `yaml:"scope"`
}

// DatabaseConfig holds local state database settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// Keybinding defines a TUI keybinding action.
type Keybinding struct {
	Action  string `yaml:"action"`  // built-in action name
	Help    string `yaml:"help"`    // help text shown in TUI
	Confirm string `yaml:"confirm"` // confirmation prompt (empty = no confirm)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:           "http://localhost:3000",
			Timeout:           10 * time.Second,
			DeleteConcurrency: 4,
		},
		Auth: AuthConfig{
			IdentityURL: "https://identitytoolkit.googleapis.com/v1",
			TokenURL:    "https://securetoken.googleapis.com/v1",
			Timeout:     10 * time.Second,
		},
		TUI: TUIConfig{
			Theme:     "tokyo-night",
			PageSize:  5,
			PageSizes: []int{5, 10, 20, 50},
			ToastTTL:  4 * time.Second,
		},
		Export: ExportConfig{
			Dir:           ".",
			DefaultFormat: "csv",
			Scope:         ScopePage,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 2,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		Keybindings: map[string]Keybinding{},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
// Environment variables are applied after the file.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.DataDir = dataDir

	cfg.Keybindings = mergeKeybindings(defaultKeybindings, cfg.Keybindings)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.API.DeleteConcurrency == 0 {
		c.API.DeleteConcurrency = defaults.API.DeleteConcurrency
	}
	if c.Auth.IdentityURL == "" {
		c.Auth.IdentityURL = defaults.Auth.IdentityURL
	}
	if c.Auth.TokenURL == "" {
		c.Auth.TokenURL = defaults.Auth.TokenURL
	}
	if c.Auth.Timeout == 0 {
		c.Auth.Timeout = defaults.Auth.Timeout
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if len(c.TUI.PageSizes) == 0 {
		c.TUI.PageSizes = defaults.TUI.PageSizes
	}
	if c.TUI.PageSize == 0 {
		c.TUI.PageSize = c.TUI.PageSizes[0]
	}
	if c.TUI.ToastTTL == 0 {
		c.TUI.ToastTTL = defaults.TUI.ToastTTL
	}
	if c.Export.Dir == "" {
		c.Export.Dir = defaults.Export.Dir
	}
	if c.Export.DefaultFormat == "" {
		c.Export.DefaultFormat = defaults.Export.DefaultFormat
	}
	if c.Export.Scope == "" {
		c.Export.Scope = defaults.Export.Scope
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// mergeKeybindings merges user keybindings into defaults.
// User keybindings override defaults for the same key.
func mergeKeybindings(defaults, user map[string]Keybinding) map[string]Keybinding {
	result := make(map[string]Keybinding, len(defaults)+len(user))
	for k, v := range defaults {
		result[k] = v
	}
	for k, v := range user {
		result[k] = v
	}
	return result
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url cannot be empty")
	}

	if c.API.Timeout < 0 || c.Auth.Timeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}

	if c.API.DeleteConcurrency < 1 {
		return fmt.Errorf("api.delete_concurrency must be at least 1")
	}

	for _, size := range c.TUI.PageSizes {
		if size < 1 {
			return fmt.Errorf("tui.page_sizes must be positive, got %d", size)
		}
	}

	if !slices.Contains(c.TUI.PageSizes, c.TUI.PageSize) {
		return fmt.Errorf("tui.page_size %d is not one of %v", c.TUI.PageSize, c.TUI.PageSizes)
	}

	switch c.Export.Scope {
	case ScopePage, ScopeAll:
	default:
		return fmt.Errorf("export.scope must be %q or %q, got %q", ScopePage, ScopeAll, c.Export.Scope)
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	for key, kb := range c.Keybindings {
		if kb.Action == "" {
			return fmt.Errorf("keybinding %q must have an action", key)
		}
		if !isValidAction(kb.Action) {
			return fmt.Errorf("keybinding %q has invalid action %q", key, kb.Action)
		}
	}

	return nil
}

func isValidAction(action string) bool {
	switch action {
	case ActionNew, ActionEdit, ActionDelete, ActionSelect, ActionSelectAll,
		ActionExport, ActionRefresh, ActionSort, ActionPageSize, ActionHistory, ActionLogout:
		return true
	default:
		return false
	}
}
