package config

import "time"

// Refresh interval bounds and defaults. The dashboard clamps runtime changes to
// the same bounds.
const (
	MinRefresh     = 250 * time.Millisecond
	MaxRefresh     = 5 * time.Second
	DefaultRefresh = time.Second
)

// Image protocol override values accepted in image.protocol.
const (
	ProtocolAuto       = "auto"
	ProtocolHalfblocks = "halfblocks"
	ProtocolSixel      = "sixel"
	ProtocolKitty      = "kitty"
	ProtocolITerm2     = "iterm2"
)

// Theme names accepted in theme.name.
const (
	ThemeDefault   = "default"
	ThemeSynthwave = "synthwave"
	ThemeMono      = "mono"
)

// DefaultImageCategory is used when neither collectors.waifu.category nor
// image.waifu_category is set.
const DefaultImageCategory = "sfw"

// Config represents the complete config.toml shared with the prompt-pulse daemon.
// Sections the TUI does not understand (shell, daemon intervals) are ignored.
type Config struct {
	General    GeneralConfig    `yaml:"general" mapstructure:"general"`
	Collectors CollectorsConfig `yaml:"collectors" mapstructure:"collectors"`
	Image      ImageConfig      `yaml:"image" mapstructure:"image"`
	Theme      ThemeConfig      `yaml:"theme" mapstructure:"theme"`
}

// GeneralConfig holds paths and loop timing.
type GeneralConfig struct {
	// CacheDir is where the daemon writes its JSON cache files.
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`

	// Refresh is the initial tick interval.
	Refresh time.Duration `yaml:"refresh" mapstructure:"refresh"`
}

// CollectorsConfig toggles each data source.
type CollectorsConfig struct {
	Sysmetrics CollectorToggle    `yaml:"sysmetrics" mapstructure:"sysmetrics"`
	Tailscale  CollectorToggle    `yaml:"tailscale" mapstructure:"tailscale"`
	Kubernetes CollectorToggle    `yaml:"kubernetes" mapstructure:"kubernetes"`
	Claude     CollectorToggle    `yaml:"claude" mapstructure:"claude"`
	Billing    CollectorToggle    `yaml:"billing" mapstructure:"billing"`
	Quota      CollectorToggle    `yaml:"quota" mapstructure:"quota"`
	Waifu      ImageFeedCollector `yaml:"waifu" mapstructure:"waifu"`
}

// CollectorToggle enables or disables a single collector.
type CollectorToggle struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// ImageFeedCollector configures the live image endpoint.
type ImageFeedCollector struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Category string `yaml:"category" mapstructure:"category"`
}

// ImageConfig controls the image panel.
type ImageConfig struct {
	// Protocol is "auto" or one of the named rendering protocols.
	Protocol string `yaml:"protocol" mapstructure:"protocol"`

	// WaifuEnabled shows the image panel.
	WaifuEnabled bool `yaml:"waifu_enabled" mapstructure:"waifu_enabled"`

	// WaifuCategory is the fallback category when the collector sets none.
	WaifuCategory string `yaml:"waifu_category" mapstructure:"waifu_category"`
}

// ThemeConfig selects colors and metric thresholds.
type ThemeConfig struct {
	Name     string `yaml:"name" mapstructure:"name"`
	Warning  int    `yaml:"warning" mapstructure:"warning"`
	Critical int    `yaml:"critical" mapstructure:"critical"`
}

// DefaultConfig returns a configuration with every field populated.
// CacheDir is resolved from the environment at call time.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			CacheDir: DefaultCacheDir(),
			Refresh:  DefaultRefresh,
		},
		Collectors: CollectorsConfig{
			Sysmetrics: CollectorToggle{Enabled: true},
			Tailscale:  CollectorToggle{Enabled: true},
			Kubernetes: CollectorToggle{Enabled: true},
			Claude:     CollectorToggle{Enabled: true},
			Billing:    CollectorToggle{Enabled: true},
			Quota:      CollectorToggle{Enabled: true},
		},
		Image: ImageConfig{
			Protocol: ProtocolAuto,
		},
		Theme: ThemeConfig{
			Name:     ThemeDefault,
			Warning:  70,
			Critical: 90,
		},
	}
}

// ImageEndpoint returns the live image endpoint, or "" when none is configured.
func (c *Config) ImageEndpoint() string {
	return c.Collectors.Waifu.Endpoint
}

// ImageCategory returns the effective image category: the collector setting,
// then the image section setting, then DefaultImageCategory.
func (c *Config) ImageCategory() string {
	if c.Collectors.Waifu.Category != "" {
		return c.Collectors.Waifu.Category
	}
	if c.Image.WaifuCategory != "" {
		return c.Image.WaifuCategory
	}
	return DefaultImageCategory
}

// ImagesEnabled reports whether the image panel should be shown.
func (c *Config) ImagesEnabled() bool {
	return c.Image.WaifuEnabled || c.Collectors.Waifu.Enabled
}

// ClampRefresh bounds d to [MinRefresh, MaxRefresh].
func ClampRefresh(d time.Duration) time.Duration {
	if d < MinRefresh {
		return MinRefresh
	}
	if d > MaxRefresh {
		return MaxRefresh
	}
	return d
}
