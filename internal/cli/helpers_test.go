package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points the XDG config and cache roots at fresh temp dirs and
// returns the prompt-pulse config and cache directories beneath them.
func isolate(t *testing.T) (configDir, cacheDir string) {
	t.Helper()
	cfgRoot, cacheRoot := t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgRoot)
	t.Setenv("XDG_CACHE_HOME", cacheRoot)
	return filepath.Join(cfgRoot, "prompt-pulse"), filepath.Join(cacheRoot, "prompt-pulse")
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
