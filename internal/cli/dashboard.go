package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/tinyland-inc/prompt-pulse-tui/internal/collector"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/config"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/dashboard"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/imaging"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/logger"
)

// terminalQueryTimeout bounds the graphics capability query at startup.
const terminalQueryTimeout = 150 * time.Millisecond

// LogFileName is written inside the cache directory while the dashboard runs.
const LogFileName = "pulse.log"

// imageDirName holds fetched images so the gallery survives restarts.
const imageDirName = "waifu"

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// runDashboard loads config, wires every collector and runs the bubbletea
// program until the user quits.
func runDashboard(opts launchOptions) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errors.New(errors.ErrStartup,
			"pulse needs an interactive terminal",
			"Run it directly in a terminal, or try 'pulse doctor' to see what's wrong")
	}

	cfg, cfgPath, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Refresh > 0 {
		cfg.General.Refresh = opts.Refresh
	}

	log, closeLog, err := logger.NewFile(filepath.Join(cfg.General.CacheDir, LogFileName), "pulse")
	if err != nil {
		// Nothing may reach stderr once the alt screen is up.
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		log, closeLog = logger.Noop(), func() error { return nil }
	}
	defer func() { _ = closeLog() }()
	logger.SetDefault(log)
	log.Info("starting, config=%q cache_dir=%q", cfgPath, cfg.General.CacheDir)

	model := dashboard.NewModel(buildOptions(cfg, opts, log))

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if cfgPath != "" {
		err := config.Watch(cfgPath, func(c *config.Config, err error) {
			if err != nil {
				log.Warn("config reload: %s", errors.Summary(err))
				return
			}
			p.Send(dashboard.ThemeMsg{Theme: c.Theme})
		})
		if err != nil {
			log.Warn("config watch: %s", errors.Summary(err))
		}
	}

	if _, err := p.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrStartup,
			"Dashboard exited with an error",
			"See "+filepath.Join(cfg.General.CacheDir, LogFileName)+" for details")
	}
	log.Info("exiting")
	return nil
}

// buildOptions turns config into dashboard options. It probes the terminal
// for image support, so it must run before the program takes over stdin.
func buildOptions(cfg *config.Config, opts launchOptions, log logger.Logger) dashboard.Options {
	procs := collector.NewOSProcesses()

	var system collector.Collector
	if cfg.Collectors.Sysmetrics.Enabled {
		system = collector.NewSystem(procs, time.Now)
	}

	var images *imaging.Pipeline
	if cfg.ImagesEnabled() || opts.Expanded {
		images = newImagePipeline(cfg, logger.Named(log, "imaging"))
	}

	return dashboard.Options{
		Config:   cfg,
		System:   system,
		Caches:   collector.EnabledCaches(cfg, time.Now),
		Signaler: procs,
		Images:   images,
		Tab:      opts.Tab,
		Expanded: opts.Expanded,
		Profile:  lipgloss.ColorProfile(),
		Logger:   logger.Named(log, "dashboard"),
	}
}

func newImagePipeline(cfg *config.Config, log logger.Logger) *imaging.Pipeline {
	session := imaging.NewSession(imaging.Probe{
		Override: cfg.Image.Protocol,
		Query: func() (string, error) {
			return imaging.QueryTerminal(os.Stdin, os.Stdout, terminalQueryTimeout)
		},
	})
	log.Info("image protocol %s (from %s)", session.Protocol(), session.Source())

	saveDir := filepath.Join(cfg.General.CacheDir, imageDirName)
	p := imaging.NewPipeline(imaging.Options{
		Fetcher:  imaging.NewHTTPFetcher(),
		Endpoint: cfg.ImageEndpoint(),
		Category: cfg.ImageCategory(),
		SaveDir:  saveDir,
		Protocol: session.Protocol(),
		Cell:     imaging.CellSizeOf(os.Stdout),
		Capacity: imaging.DefaultGalleryCapacity,
		Logger:   log,
	})
	p.Seed(append([]*imaging.Entry{imaging.Placeholder()}, imaging.LoadDir(saveDir)...)...)
	return p
}
