package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Export.Dir = t.TempDir()
	return &cfg
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		names = append(names, fe.Field)
	}
	return names
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_BadURLs(t *testing.T) {
	cfg := validConfig(t)
	cfg.API.BaseURL = "ftp://students"
	cfg.Auth.TokenURL = "https://"

	err := cfg.ValidateDeep("")
	names := fieldNames(t, err)
	assert.Contains(t, names, "api.base_url")
	assert.Contains(t, names, "auth.token_url")
	assert.NotContains(t, names, "auth.identity_url")
}

func TestValidateDeep_ExportDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	cfg.Export.Dir = file

	assert.Contains(t, fieldNames(t, cfg.ValidateDeep("")), "export.dir")
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	cfg := validConfig(t)
	assert.Contains(t, fieldNames(t, cfg.ValidateDeep(t.TempDir())), "config_file")
}

func TestValidateDeep_Presentation(t *testing.T) {
	cfg := validConfig(t)
	cfg.TUI.Theme = "neon"
	cfg.Export.DefaultFormat = "docx"
	cfg.TUI.PageSizes = []int{10, 5, 10}
	cfg.TUI.PageSize = 5

	names := fieldNames(t, cfg.ValidateDeep(""))
	assert.Contains(t, names, "tui.theme")
	assert.Contains(t, names, "export.default_format")
	assert.Contains(t, names, "tui.page_sizes[2]")
	assert.Contains(t, names, "tui.page_sizes")
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	cfg.API.BaseURL = "http://students.example.com"
	cfg.API.SendAuthToken = true

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "Auth", warnings[0].Category)
	assert.Equal(t, "API", warnings[1].Category)

	cfg.Auth.APIKey = "k"
	cfg.API.BaseURL = "http://localhost:3000"
	assert.Empty(t, cfg.Warnings())
}
