package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/roster/internal/core/export"
	"github.com/colonyops/roster/internal/core/styles"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// URL syntax, theme names and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateEndpoints(),
		c.validatePresentation(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Auth.APIKey == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Auth",
			Item:     "api_key",
			Message:  "no identity provider API key; sign in will fail",
		})
	}

	if c.API.SendAuthToken {
		if u, err := url.Parse(c.API.BaseURL); err == nil && u.Scheme == "http" && u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
			warnings = append(warnings, ValidationWarning{
				Category: "API",
				Item:     "base_url",
				Message:  "auth tokens are sent over plain http",
			})
		}
	}

	return warnings
}

// validateFileAccess checks config file, data directory, and export directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("export.dir", c.Export.Dir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func isHTTPURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func (c *Config) validateEndpoints() error {
	return criterio.ValidateStruct(
		criterio.Run("api.base_url", c.API.BaseURL, isHTTPURL),
		criterio.Run("auth.identity_url", c.Auth.IdentityURL, isHTTPURL),
		criterio.Run("auth.token_url", c.Auth.TokenURL, isHTTPURL),
	)
}

func (c *Config) validatePresentation() error {
	var errs criterio.FieldErrorsBuilder

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		errs = errs.Append("tui.theme", fmt.Errorf("unknown theme %q, available: %v", c.TUI.Theme, styles.ThemeNames()))
	}

	if _, err := export.ParseFormat(c.Export.DefaultFormat); err != nil {
		errs = errs.Append("export.default_format", err)
	}

	seen := make(map[int]bool, len(c.TUI.PageSizes))
	for i, size := range c.TUI.PageSizes {
		if seen[size] {
			errs = errs.Append(fmt.Sprintf("tui.page_sizes[%d]", i), fmt.Errorf("duplicate page size %d", size))
		}
		seen[size] = true
	}
	if !slices.IsSorted(c.TUI.PageSizes) {
		errs = errs.Append("tui.page_sizes", fmt.Errorf("page sizes must be ascending"))
	}

	return errs.ToError()
}
