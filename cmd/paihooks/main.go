package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/schaermu/paihooks/internal/api"
	"github.com/schaermu/paihooks/internal/config"
	"github.com/schaermu/paihooks/internal/docs"
	"github.com/schaermu/paihooks/internal/git"
	"github.com/schaermu/paihooks/internal/hashcache"
	"github.com/schaermu/paihooks/internal/prompthook"
	"github.com/schaermu/paihooks/internal/sync"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
	dryRun    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "paihooks",
	Short: "Session hooks for a personal AI assistant setup",
	Long: `paihooks bundles the hooks run by the assistant host and by git:

  pull     on session start, fetch context documents from the API
  push     on session end, send locally edited documents back
  docs     on pre-commit, refresh documentation for the staged changes
  prompt   on prompt submit, inject minimal context and retitle the tab

Hooks never block the host: failures, including a broken config file, are
logged to stderr and the process exits successfully.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull context documents from the API",
	Long: `Pull fetches every configured document concurrently and writes it locally.

A document with local edits that have not been pushed yet (its content no
longer matches the hash recorded at the last sync) is never overwritten.
Empty responses are rejected.`,
	Args: cobra.NoArgs,
	RunE: runPull,
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push locally changed context documents to the API",
	Long: `Push sends every document whose content differs from the hash recorded at
the last sync. Unchanged documents cause no network traffic. A failed push
is retried on the next run.`,
	Args: cobra.NoArgs,
	RunE: runPush,
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Update documentation for staged changes (pre-commit)",
	Long: `Docs inspects the staged files, maps them to documentation areas, stamps
the affected documentation files and the README version line with today's
date and re-stages them. It never commits.`,
	Args: cobra.NoArgs,
	RunE: runDocs,
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Prompt-submit hook: inject context and set the tab title",
	Long: `Prompt reads the host's JSON payload from stdin, prints the minimal context
file wrapped in <user-prompt-submit-hook> tags, sets the terminal tab title
from the prompt and launches the richer title command in the background.`,
	Args: cobra.NoArgs,
	RunE: runPrompt,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "paihooks %s\n", version)
		_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
		_, _ = fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/paihooks/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	pushCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be pushed without making changes")
	docsCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be updated without making changes")

	// Add commands
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(versionCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	logger := setupLogger(cmd.ErrOrStderr())
	cfg, ok := loadHookConfig(logger)
	if !ok {
		return nil
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "🔄 Syncing context from API...")

	summary, err := newEngine(cfg, logger, false).Pull(ctx)
	if errors.Is(err, sync.ErrMissingToken) {
		logger.Warn(err.Error())
		return nil
	}
	if err != nil {
		// Never block the session start
		logger.Error("pull failed", "error", err)
		return nil
	}

	printLines(out, summary.Lines())
	return nil
}

func runPush(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	logger := setupLogger(cmd.ErrOrStderr())
	cfg, ok := loadHookConfig(logger)
	if !ok {
		return nil
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "🔄 Checking for local changes to sync...")

	summary, err := newEngine(cfg, logger, dryRun).Push(ctx)
	if errors.Is(err, sync.ErrMissingToken) {
		logger.Warn(err.Error())
		return nil
	}
	if err != nil {
		logger.Error("push failed", "error", err)
		return nil
	}

	printLines(out, summary.Lines())
	return nil
}

func runDocs(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	logger := setupLogger(cmd.ErrOrStderr())
	cfg, ok := loadHookConfig(logger)
	if !ok {
		return nil
	}

	updater := docs.NewUpdater(cfg.Docs, git.NewShellClient(""), cmd.OutOrStdout(), logger, dryRun)
	if _, err := updater.Run(ctx); err != nil {
		// The commit goes ahead without documentation updates
		logger.Error("documentation update failed", "error", err)
	}
	return nil
}

// runPrompt is the host-facing boundary of the prompt hook. Errors from the
// pipeline are reported on stderr and deliberately dropped so the host's
// prompt flow is never interrupted.
func runPrompt(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	stderr := cmd.ErrOrStderr()
	logger := setupLogger(stderr)
	cfg, ok := loadHookConfig(logger)
	if !ok {
		return nil
	}

	hook := prompthook.New(cfg.Prompt, prompthook.NewLauncher(cfg.Prompt.TitleCommand), logger)
	hook.Stdin = cmd.InOrStdin()
	hook.StdinIsTerminal = isTerminal(hook.Stdin)
	hook.Stdout = cmd.OutOrStdout()
	hook.Terminal = stderr

	if err := hook.Run(ctx); err != nil {
		logger.Error("context loader error", "error", err)
	}
	return nil
}

func newEngine(cfg *config.Config, logger *slog.Logger, dryRun bool) *sync.Engine {
	client := api.NewClient(cfg.API.BaseURL, cfg.API.Token,
		api.WithTimeout(cfg.API.Timeout),
		api.WithVersion(version))
	return sync.NewEngine(cfg, client, hashcache.New(cfg.CacheDir()), logger, dryRun)
}

func printLines(w io.Writer, lines []string) {
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, line)
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// loadHookConfig loads the configuration for a hook. A broken config must not
// block the host either, so the error is logged and the hook does nothing.
func loadHookConfig(logger *slog.Logger) (*config.Config, bool) {
	cfg, err := loadConfig(logger)
	if err != nil {
		logger.Error("failed to load config, skipping hook", "error", err)
		return nil, false
	}
	return cfg, true
}

// setupLogger builds the logger from the global flags. Logs go to w, which
// is stderr in practice: stdout is read by the host.
func setupLogger(w io.Writer) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Create handler based on format
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if logFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// loadConfig loads the config file and overlays the environment. The
// default config file is optional; an explicit --config must exist.
func loadConfig(logger *slog.Logger) (*config.Config, error) {
	configPath := cfgFile
	optional := false
	if configPath == "" {
		optional = true
		if home, err := os.UserHomeDir(); err == nil {
			configPath = filepath.Join(home, ".config", "paihooks", "config.yaml")
		}
	}

	logger.Debug("loading configuration", "path", configPath, "optional", optional)

	cfg, err := config.Load(configPath, optional, os.Getenv)
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded",
		"api", cfg.API.BaseURL,
		"base_dir", cfg.Paths.BaseDir,
		"documents", len(cfg.Documents),
		"token_set", cfg.HasToken())

	return cfg, nil
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
