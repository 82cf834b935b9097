package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/config"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
)

var (
	initForce    bool
	initDefaults bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config.toml",
	Long: `Create a prompt-pulse config file with the settings pulse reads.

The file is shared with the prompt-pulse daemon; sections pulse doesn't know
about are left to the daemon.

Examples:
  pulse init
  pulse init --defaults
  pulse init --config ./config.toml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(cmd.OutOrStdout(), InitOptions{
			Path:           cfgFile,
			Overwrite:      initForce,
			NonInteractive: initDefaults,
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config without asking")
	initCmd.Flags().BoolVar(&initDefaults, "defaults", false, "skip prompts and write the defaults")
}

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string // Target path; empty means config.DefaultConfigPath()
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

// Init writes a new config file.
func Init(w io.Writer, opts InitOptions) error {
	path := opts.Path
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("'%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := config.Write(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s Created %s\n", successStyle.Render(symbolPass), path)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next: 'pulse doctor' checks the daemon caches, 'pulse' starts the dashboard.")
	return nil
}

// promptConfig asks for the handful of settings worth choosing up front and
// applies the answers to cfg.
func promptConfig(cfg *config.Config) error {
	theme := cfg.Theme.Name
	refresh := cfg.General.Refresh.String()
	cacheDir := cfg.General.CacheDir
	images := cfg.Image.WaifuEnabled
	protocol := cfg.Image.Protocol
	endpoint := cfg.Collectors.Waifu.Endpoint

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions(config.ThemeDefault, config.ThemeSynthwave, config.ThemeMono)...).
				Value(&theme),
			huh.NewSelect[string]().
				Title("Refresh interval").
				Description("How often system metrics update").
				Options(huh.NewOptions("250ms", "500ms", "1s", "2s", "5s")...).
				Value(&refresh),
			huh.NewInput().
				Title("Cache directory").
				Description("Where the prompt-pulse daemon writes its JSON caches").
				Value(&cacheDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("cache directory is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Show the image panel?").
				Value(&images),
			huh.NewSelect[string]().
				Title("Image protocol").
				Description("auto asks the terminal what it supports").
				Options(huh.NewOptions(
					config.ProtocolAuto,
					config.ProtocolKitty,
					config.ProtocolITerm2,
					config.ProtocolSixel,
					config.ProtocolHalfblocks,
				)...).
				Value(&protocol),
			huh.NewInput().
				Title("Image endpoint (optional)").
				Description("Base URL of a waifu.pics compatible API; empty keeps the gallery offline").
				Placeholder("https://api.waifu.pics").
				Value(&endpoint),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --defaults")
	}

	d, err := time.ParseDuration(refresh)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid refresh interval", refresh),
			"Try something like 1s or 500ms")
	}

	cfg.Theme.Name = theme
	cfg.General.Refresh = d
	cfg.General.CacheDir = strings.TrimSpace(cacheDir)
	cfg.Image.WaifuEnabled = images
	cfg.Image.Protocol = protocol
	cfg.Collectors.Waifu.Endpoint = strings.TrimSpace(endpoint)
	cfg.Collectors.Waifu.Enabled = images && cfg.Collectors.Waifu.Endpoint != ""
	return nil
}
