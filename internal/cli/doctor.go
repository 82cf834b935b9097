package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/config"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/doctor"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/imaging"
)

var (
	doctorJSON bool
	doctorFix  bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, daemon caches and terminal support",
	Long: `Run diagnostics and report anything that would leave dashboard panels
empty: a broken config, a missing cache directory, daemon caches that are
missing or stale, and terminal color and image support.

Exits with status 1 when any check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout(), doctorOptions{
			ConfigPath: cfgFile,
			JSON:       doctorJSON,
			Fix:        doctorFix,
			IsTerminal: isTerminal(os.Stdout),
			Profile:    lipgloss.ColorProfile(),
			Query: func() (string, error) {
				return imaging.QueryTerminal(os.Stdin, os.Stdout, terminalQueryTimeout)
			},
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
}

type doctorOptions struct {
	ConfigPath string
	JSON       bool
	Fix        bool
	IsTerminal bool
	Profile    termenv.Profile
	// Query asks the terminal for graphics support. Only used on a terminal.
	Query func() (string, error)
	Now   func() time.Time
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []doctor.Group `json:"categories"`
	Summary    SummaryOutput  `json:"summary"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// collectChecks builds every check. A config that fails to load still gets
// cache and terminal checks against the defaults.
func collectChecks(opts doctorOptions) []doctor.Check {
	cfg, _, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	checks := doctor.NewConfigChecks(opts.ConfigPath)
	checks = append(checks, doctor.NewCacheChecks(cfg, now)...)

	probe := imaging.Probe{Override: cfg.Image.Protocol}
	if opts.IsTerminal && !opts.JSON {
		probe.Query = opts.Query
	}
	checks = append(checks,
		&doctor.TerminalCheck{IsTerminal: opts.IsTerminal, Profile: opts.Profile},
		&doctor.ImageProtocolCheck{Probe: probe, Enabled: cfg.ImagesEnabled()},
	)
	return checks
}

func doctorCommand(ctx context.Context, w io.Writer, opts doctorOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	checks := collectChecks(opts)
	results := doctor.RunAllParallel(ctx, checks)

	if opts.Fix {
		results = doctor.ApplyFixes(ctx, checks, results)
	}

	var err error
	if opts.JSON {
		err = outputDoctorJSON(w, checks, results)
	} else {
		err = outputDoctorText(w, checks, results)
	}
	if err != nil {
		return err
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}

func outputDoctorJSON(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	counts := doctor.CountByStatus(results)
	return WriteJSONSuccess(w, DoctorOutput{
		Categories: doctor.GroupResults(checks, results),
		Summary: SummaryOutput{
			Pass:     counts[doctor.StatusPass],
			Warn:     counts[doctor.StatusWarn],
			Fail:     counts[doctor.StatusFail],
			Fixable:  doctor.FixableCount(results),
			AllClear: !doctor.HasIssues(results),
		},
	})
}

func outputDoctorText(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("pulse diagnostic report"))
	fmt.Fprintln(w)

	for _, g := range doctor.GroupResults(checks, results) {
		fmt.Fprintln(w, headerStyle.Render(g.Name))
		for _, r := range g.Results {
			renderCheckResult(w, r)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	summary := doctor.Summary(results)
	switch {
	case doctor.HasFailures(results):
		fmt.Fprintln(w, errorStyle.Render(symbolFail+" "+summary))
	case doctor.HasIssues(results):
		fmt.Fprintln(w, warnStyle.Render(symbolWarn+" "+summary))
	default:
		fmt.Fprintln(w, successStyle.Render(symbolPass+" "+summary))
	}

	if n := doctor.FixableCount(results); n > 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  %d can be fixed with 'pulse doctor --fix'", n)))
	}
	return nil
}

func renderCheckResult(w io.Writer, r doctor.CheckResult) {
	var symbol string
	switch r.Status {
	case doctor.StatusPass:
		symbol = successStyle.Render(symbolPass)
	case doctor.StatusWarn:
		symbol = warnStyle.Render(symbolWarn)
	default:
		symbol = errorStyle.Render(symbolFail)
	}
	fmt.Fprintf(w, "  %s %s\n", symbol, r.Message)
	if r.Suggestion != "" && r.Status != doctor.StatusPass {
		fmt.Fprintf(w, "    %s\n", mutedStyle.Render(r.Suggestion))
	}
}
