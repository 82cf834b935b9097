// Package cli implements the pulse command-line interface.
//
// The root command starts the dashboard. Everything else is a short-lived
// helper around it:
//
//	pulse                 - Start the dashboard
//	pulse init            - Create config.toml
//	pulse config show     - Print the effective config
//	pulse config path     - Print which config file is used
//	pulse doctor          - Diagnose config, caches and terminal support
//	pulse version         - Print build information
//	pulse completion      - Generate shell completion scripts
//
// # Startup
//
// runDashboard refuses to start without a terminal on stdin and stdout,
// loads the config (falling back to defaults when no file exists), points
// the default logger at pulse.log in the cache directory and wires the
// collectors the config enables. Image protocol negotiation happens here too,
// before bubbletea takes over the terminal. Once running, config file edits
// are pushed to the dashboard as theme changes.
//
// # Flag Handling
//
// --config is persistent and shared by every subcommand. --tab, --expand and
// --refresh only apply to the dashboard and are validated by parseLaunch
// before anything touches the terminal.
//
// # Error Handling
//
// Commands return structured errors from the internal/errors package.
// Execute prints them to stderr and exits 1, except for ExitError values,
// which carry their own status and have already reported their problem.
package cli
