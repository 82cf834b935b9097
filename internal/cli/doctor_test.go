package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/prompt-pulse-tui/internal/config"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
)

func writeCaches(t *testing.T, dir string) {
	t.Helper()
	for name, body := range map[string]string{
		"tailscale.json":       `{"tailnet_name":"example.ts.net"}`,
		"k8s.json":             `{"clusters":[]}`,
		"billing.json":         `{}`,
		"claude.json":          `{}`,
		"claude-personal.json": `{"messages":[]}`,
	} {
		writeFile(t, filepath.Join(dir, name), body)
	}
}

func terminalOpts() doctorOptions {
	return doctorOptions{IsTerminal: true, Profile: termenv.TrueColor}
}

func TestDoctorJSONHealthy(t *testing.T) {
	_, cacheDir := isolate(t)
	writeCaches(t, cacheDir)

	opts := terminalOpts()
	opts.JSON = true
	var out bytes.Buffer
	require.NoError(t, doctorCommand(context.Background(), &out, opts))

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Categories []struct {
				Name    string `json:"name"`
				Results []struct {
					Name   string `json:"name"`
					Status string `json:"status"`
				} `json:"results"`
			} `json:"categories"`
			Summary SummaryOutput `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, jsoniter.Unmarshal(out.Bytes(), &env))
	assert.True(t, env.Success)

	var cats []string
	for _, c := range env.Data.Categories {
		cats = append(cats, c.Name)
	}
	assert.Equal(t, []string{"CONFIG", "CACHE", "TERMINAL"}, cats)

	// Only the missing config file is worth a warning.
	assert.Equal(t, 0, env.Data.Summary.Fail)
	assert.Equal(t, 1, env.Data.Summary.Warn)
	assert.Equal(t, 1, env.Data.Summary.Fixable)
	assert.False(t, env.Data.Summary.AllClear)
	assert.Equal(t, "warn", env.Data.Categories[0].Results[0].Status)
}

func TestDoctorTextFailures(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	err := doctorCommand(context.Background(), &out, doctorOptions{})
	code, ok := errors.GetExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 1, code)

	s := out.String()
	assert.Contains(t, s, "pulse diagnostic report")
	assert.Contains(t, s, "✗ Cache directory missing")
	assert.Contains(t, s, "✗ stdout is not a terminal")
	assert.Contains(t, s, "⚠ No data: tailscale.json not found")
	assert.Contains(t, s, "can be fixed with 'pulse doctor --fix'")
}

func TestDoctorFix(t *testing.T) {
	configDir, cacheDir := isolate(t)

	opts := terminalOpts()
	opts.Fix = true
	var out bytes.Buffer
	require.NoError(t, doctorCommand(context.Background(), &out, opts))

	_, err := os.Stat(filepath.Join(configDir, config.ConfigFileName))
	assert.NoError(t, err, "default config written")
	info, err := os.Stat(cacheDir)
	require.NoError(t, err, "cache dir created")
	assert.True(t, info.IsDir())
	assert.Contains(t, out.String(), "✓ Cache directory: "+cacheDir)
}

func TestDoctorBrokenConfigStillChecksCaches(t *testing.T) {
	_, cacheDir := isolate(t)
	writeCaches(t, cacheDir)
	path := writeFile(t, filepath.Join(t.TempDir(), "config.toml"), "[theme]\nwarning = 95\ncritical = 10\n")

	opts := terminalOpts()
	opts.ConfigPath = path
	var out bytes.Buffer
	err := doctorCommand(context.Background(), &out, opts)
	require.Error(t, err)

	s := out.String()
	assert.Contains(t, s, "needs to be lower than theme.critical")
	assert.Contains(t, s, "✓ tailscale updated")
}
