package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/miosa/vscroll/app"
	"github.com/miosa/vscroll/config"
	"github.com/miosa/vscroll/deferred"
	"github.com/miosa/vscroll/logging"
	"github.com/miosa/vscroll/msg"
	"github.com/miosa/vscroll/procstat"
	"github.com/miosa/vscroll/session"
	"github.com/miosa/vscroll/style"
)

var version = "dev"

var (
	profileDir string
	verbose    bool
	noColor    bool
	repoPath   string
)

var rootCmd = &cobra.Command{
	Use:   "vscroll",
	Short: "Browse a very large list through a virtualized window",
	Long: `vscroll renders a large synthetic dataset by drawing only the rows that
fall inside the terminal, plus a few rows of overscan. Typing in the search box
updates immediately while the fuzzy filter catches up after a short delay.

Settings live in <profile>/vscroll.yaml and are reloaded while running.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if profileDir != "" {
			return nil
		}
		if env := os.Getenv("VSCROLL_PROFILE"); env != "" {
			profileDir = env
			return nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locate home directory: %w", err)
		}
		profileDir = filepath.Join(home, ".vscroll")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vscroll %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profileDir, "profile", "", "Profile directory (default $VSCROLL_PROFILE or ~/.vscroll)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors")
	rootCmd.Flags().StringVar(&repoPath, "repo", "", "Browse this git repository's commit log instead of generated items")

	rootCmd.AddCommand(versionCmd, rangeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "vscroll: %v\n", err)
		os.Exit(1)
	}
}

// runInteractive starts the TUI and the config watcher and saves the session
// once the program exits.
func runInteractive(ctx context.Context) error {
	if noColor {
		os.Setenv("NO_COLOR", "1")
	}

	cfg, cfgErr := config.Load(profileDir)
	logger, err := logging.New(cfg.Log, profileDir, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if cfgErr != nil {
		// Defaults are in effect; keep going so a bad file can be fixed live.
		logger.Warn("config not loaded", zap.Error(cfgErr))
	}
	if repoPath != "" {
		abs, err := filepath.Abs(repoPath)
		if err != nil {
			return fmt.Errorf("resolve repo path: %w", err)
		}
		cfg.Items.Repo = abs
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("profile", profileDir),
		zap.Int("items", cfg.Items.Count),
		zap.String("repo", cfg.Items.Repo),
	)

	// Auto-detect terminal background when no theme is configured.
	if cfg.Theme == "" {
		if lipgloss.HasDarkBackground(os.Stdin, os.Stdout) {
			style.SetTheme("dark")
		} else {
			style.SetTheme("light")
		}
	}

	sampler, err := procstat.New(ctx)
	if err != nil {
		logger.Warn("process stats unavailable", zap.Error(err))
		sampler = nil
	}

	m := app.New(app.Options{
		Config:  cfg,
		Logger:  logger,
		Session: session.Load(profileDir),
		Sampler: sampler,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	p := tea.NewProgram(m, tea.WithContext(gctx))

	sched := deferred.NewTimerScheduler()
	defer sched.Close()
	watcher, err := config.NewWatcher(config.Path(profileDir), sched,
		func(c config.Config, err error) {
			if repoPath != "" {
				c.Items.Repo = cfg.Items.Repo // --repo wins over the file
			}
			p.Send(msg.ConfigReloaded{Config: c, Err: err})
		},
		config.WithLogger(logger.Named("config")),
	)
	if err != nil {
		return err
	}

	g.Go(func() error {
		return watcher.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		final, err := p.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("run program: %w", err)
		}
		if fm, ok := final.(app.Model); ok {
			if err := session.Save(profileDir, fm.Session()); err != nil {
				logger.Warn("session not saved", zap.Error(err))
			}
		}
		return nil
	})
	return g.Wait()
}
