package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/app"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/config"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/logging"
)

var (
	version = "dev"
	commit  = "unknown"
)

type rootOptions struct {
	configPath string
	verbose    bool
	baseURL    string

	// stdin feeds confirmation prompts; tests replace it.
	stdin       io.Reader
	interactive func() bool
}

// NewRootCommand assembles the sdmdesk command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{
		stdin:       os.Stdin,
		interactive: stdinIsTerminal,
	})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "sdmdesk",
		Short: "Support desk client for thread summaries",
		Long: `sdmdesk browses customer email threads, generates draft summaries,
edits and approves them, and posts approved text to the CRM.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default is $SDMDESK_CONFIG)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "summary store API root (overrides config)")

	root.AddCommand(
		newThreadsCommand(opts),
		newShowCommand(opts),
		newGenerateCommand(opts),
		newEditCommand(opts),
		newApproveCommand(opts),
		newPostCommand(opts),
		newResetCommand(opts),
		newBrowseCommand(opts),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	config.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (o *rootOptions) config() config.Config {
	var cfg config.Config
	if o.configPath != "" {
		cfg = config.LoadFrom(o.configPath)
	} else {
		cfg = config.Load()
	}
	if o.baseURL != "" {
		cfg.Store.BaseURL = o.baseURL
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg
}

// application builds the app for one-shot commands, logging to stderr.
func (o *rootOptions) application(ctx context.Context) (*app.Application, error) {
	cfg := o.config()
	return o.applicationWith(ctx, cfg, logging.New(cfg.Logging.Level))
}

func (o *rootOptions) applicationWith(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app.Application, error) {
	a, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return a, nil
}
