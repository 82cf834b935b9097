package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestConfigFileCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit path missing", func(t *testing.T) {
		check := &ConfigFileCheck{ConfigPath: filepath.Join(t.TempDir(), "nonexistent.toml")}
		result := check.Run(ctx)

		assert.Equal(t, StatusFail, result.Status)
		assert.Contains(t, result.Message, "not found")
		assert.Equal(t, "Check the path is correct", result.Suggestion)
	})

	t.Run("explicit path found", func(t *testing.T) {
		path := writeConfig(t, "[theme]\nname = \"mono\"\n")
		result := (&ConfigFileCheck{ConfigPath: path}).Run(ctx)

		assert.Equal(t, StatusPass, result.Status)
		assert.Contains(t, result.Message, path)
	})

	t.Run("defaults in use then fixed", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		check := &ConfigFileCheck{}

		result := check.Run(ctx)
		assert.Equal(t, StatusWarn, result.Status)
		assert.True(t, result.Fixable)
		assert.Contains(t, result.Suggestion, "pulse init")

		require.NoError(t, check.Fix())
		assert.Equal(t, StatusPass, check.Run(ctx).Status)
	})

	t.Run("name and category", func(t *testing.T) {
		check := &ConfigFileCheck{}
		assert.Equal(t, "config_file", check.Name())
		assert.Equal(t, CategoryConfig, check.Category())
	})
}

func TestConfigSchemaCheck(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		body       string
		status     CheckStatus
		message    string
		suggestion string
	}{
		{
			name:    "valid",
			body:    "[general]\nrefresh = \"2s\"\n\n[theme]\nname = \"synthwave\"\n",
			status:  StatusPass,
			message: "Schema valid",
		},
		{
			name:       "broken toml",
			body:       "[general\nrefresh = ",
			status:     StatusFail,
			message:    "Failed to read config file",
			suggestion: "valid TOML",
		},
		{
			name:       "unknown theme",
			body:       "[theme]\nname = \"neon\"\n",
			status:     StatusFail,
			message:    "Unknown theme 'neon'",
			suggestion: "Use one of: default, synthwave, mono",
		},
		{
			name:       "inverted thresholds",
			body:       "[theme]\nwarning = 95\ncritical = 80\n",
			status:     StatusFail,
			message:    "needs to be lower than",
			suggestion: "Warning should trigger before critical",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := (&ConfigSchemaCheck{ConfigPath: writeConfig(t, tt.body)}).Run(ctx)
			assert.Equal(t, tt.status, result.Status, result.Message)
			assert.Contains(t, result.Message, tt.message)
			assert.Contains(t, result.Suggestion, tt.suggestion)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		result := (&ConfigSchemaCheck{}).Run(ctx)
		assert.Equal(t, StatusPass, result.Status)
		assert.Equal(t, "Defaults valid", result.Message)
	})
}

func TestNewConfigChecks(t *testing.T) {
	checks := NewConfigChecks("x.toml")
	require.Len(t, checks, 2)
	for _, c := range checks {
		assert.Equal(t, CategoryConfig, c.Category())
	}
}
