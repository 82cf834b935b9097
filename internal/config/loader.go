package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
)

const (
	// AppDirName is the directory name used under the XDG config and cache roots.
	AppDirName = "prompt-pulse"
	// ConfigFileName is the config file name inside the config directory.
	ConfigFileName = "config.toml"
)

// DefaultConfigPath returns $XDG_CONFIG_HOME/prompt-pulse/config.toml,
// falling back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultConfigPath() string {
	root := os.Getenv("XDG_CONFIG_HOME")
	if root == "" {
		home, _ := os.UserHomeDir()
		root = filepath.Join(home, ".config")
	}
	return filepath.Join(root, AppDirName, ConfigFileName)
}

// DefaultCacheDir returns $XDG_CACHE_HOME/prompt-pulse, falling back to
// ~/.cache when XDG_CACHE_HOME is unset.
func DefaultCacheDir() string {
	root := os.Getenv("XDG_CACHE_HOME")
	if root == "" {
		home, _ := os.UserHomeDir()
		root = filepath.Join(home, ".cache")
	}
	return filepath.Join(root, AppDirName)
}

// Find locates the config file. An explicit path must exist; otherwise the
// default path is returned if present. Returns "" when no file is found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

// Load reads config from the specified path. Missing keys take their defaults.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'pulse init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid TOML")
	}

	return parseConfig(v, path)
}

// LoadOrDefault loads the config found by Find(explicit), or returns defaults
// when no config file exists. The returned path is "" when defaults are used.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// Watch reloads the config at path whenever it changes on disk and hands the
// result to onChange. Reload failures are passed as err with a nil config;
// the caller keeps its previous config in that case.
func Watch(path string, onChange func(cfg *Config, err error)) error {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file for watching",
			"Check the file exists and is valid TOML")
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(parseConfig(v, path))
	})
	v.WatchConfig()
	return nil
}

// Write saves cfg as TOML at path, creating parent directories.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create config directory",
			"Check permissions on "+filepath.Dir(path))
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("general.cache_dir", cfg.General.CacheDir)
	v.Set("general.refresh", cfg.General.Refresh.String())
	for key, on := range map[string]bool{
		"sysmetrics": cfg.Collectors.Sysmetrics.Enabled,
		"tailscale":  cfg.Collectors.Tailscale.Enabled,
		"kubernetes": cfg.Collectors.Kubernetes.Enabled,
		"claude":     cfg.Collectors.Claude.Enabled,
		"billing":    cfg.Collectors.Billing.Enabled,
		"quota":      cfg.Collectors.Quota.Enabled,
	} {
		v.Set("collectors."+key+".enabled", on)
	}
	v.Set("collectors.waifu.enabled", cfg.Collectors.Waifu.Enabled)
	v.Set("collectors.waifu.endpoint", cfg.Collectors.Waifu.Endpoint)
	v.Set("collectors.waifu.category", cfg.Collectors.Waifu.Category)
	v.Set("image.protocol", cfg.Image.Protocol)
	v.Set("image.waifu_enabled", cfg.Image.WaifuEnabled)
	v.Set("image.waifu_category", cfg.Image.WaifuCategory)
	v.Set("theme.name", cfg.Theme.Name)
	v.Set("theme.warning", cfg.Theme.Warning)
	v.Set("theme.critical", cfg.Theme.Critical)

	if err := v.WriteConfigAs(path); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file",
			"Check permissions on "+path)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the TOML syntax in "+path)
	}

	cfg.General.CacheDir = expandHome(cfg.General.CacheDir)
	if cfg.General.CacheDir == "" {
		cfg.General.CacheDir = DefaultCacheDir()
	}
	cfg.Image.Protocol = strings.ToLower(strings.TrimSpace(cfg.Image.Protocol))
	cfg.Theme.Name = strings.ToLower(strings.TrimSpace(cfg.Theme.Name))

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	cfg.General.Refresh = ClampRefresh(cfg.General.Refresh)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("general.cache_dir", d.General.CacheDir)
	v.SetDefault("general.refresh", d.General.Refresh.String())
	v.SetDefault("collectors.sysmetrics.enabled", true)
	v.SetDefault("collectors.tailscale.enabled", true)
	v.SetDefault("collectors.kubernetes.enabled", true)
	v.SetDefault("collectors.claude.enabled", true)
	v.SetDefault("collectors.billing.enabled", true)
	v.SetDefault("collectors.quota.enabled", true)
	v.SetDefault("collectors.waifu.enabled", false)
	v.SetDefault("image.protocol", d.Image.Protocol)
	v.SetDefault("theme.name", d.Theme.Name)
	v.SetDefault("theme.warning", d.Theme.Warning)
	v.SetDefault("theme.critical", d.Theme.Critical)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return os.ExpandEnv(p)
}
