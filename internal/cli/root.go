package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/config"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/layout"
)

// Global flags
var (
	cfgFile     string
	expandFlag  string
	tabFlag     string
	refreshFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Terminal dashboard for this machine and the prompt-pulse caches",
	Long: `pulse shows CPU, memory, disks, temperatures, network and processes for
this machine alongside panels fed by the prompt-pulse daemon caches
(Tailscale, Kubernetes, cloud billing, Claude usage and quota).

Press ? inside the dashboard for keyboard shortcuts.

Examples:
  pulse
  pulse --tab system --refresh 500ms
  pulse --expand image
  pulse doctor`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parseLaunch(cfgFile, tabFlag, expandFlag, refreshFlag)
		if err != nil {
			return err
		}
		return runDashboard(opts)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/prompt-pulse/config.toml)")
	rootCmd.Flags().StringVar(&expandFlag, "expand", "", "start with a panel expanded to full screen (image)")
	rootCmd.Flags().StringVar(&tabFlag, "tab", "", "initial tab (dashboard, system, network, billing)")
	rootCmd.Flags().DurationVar(&refreshFlag, "refresh", 0, "refresh interval, 250ms to 5s (default from config)")

	_ = rootCmd.RegisterFlagCompletionFunc("tab", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(layout.Tabs))
		for i, t := range layout.Tabs {
			names[i] = strings.ToLower(t.String())
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("expand", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"image"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// launchOptions are the validated root command flags.
type launchOptions struct {
	ConfigPath string
	Tab        layout.Tab
	Expanded   bool
	// Refresh overrides general.refresh when non-zero. Always clamped.
	Refresh time.Duration
}

func parseLaunch(configPath, tab, expand string, refresh time.Duration) (launchOptions, error) {
	opts := launchOptions{ConfigPath: configPath, Tab: layout.Dashboard}

	if tab != "" {
		t, ok := layout.ParseTab(tab)
		if !ok {
			return opts, errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown tab '%s'", tab),
				"Use one of: dashboard, system, network, billing")
		}
		opts.Tab = t
	}

	switch strings.ToLower(expand) {
	case "":
	case "image":
		opts.Expanded = true
	default:
		return opts, errors.New(errors.ErrConfig,
			fmt.Sprintf("Can't expand '%s'", expand),
			"Only the image panel can be expanded: --expand image")
	}

	if refresh < 0 {
		return opts, errors.New(errors.ErrConfig,
			fmt.Sprintf("Refresh interval can't be negative (got %s)", refresh),
			"Use a duration like 1s or 500ms")
	}
	if refresh > 0 {
		opts.Refresh = config.ClampRefresh(refresh)
	}
	return opts, nil
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := errors.GetExitCode(err); ok {
			os.Exit(code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
