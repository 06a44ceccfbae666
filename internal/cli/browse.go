package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/logging"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/tui"
)

func newBrowseCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive summary desk",
		Long: `browse opens a full-screen desk: the thread list on the left, the
selected thread and its summary editor on the right. Logs go to the file
named by logging.file so they never draw over the screen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := opts.config()

			logger, closer, err := logging.NewFile(cfg.Logging.File, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer closer.Close()

			a, err := opts.applicationWith(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			return tui.Run(ctx, tui.Deps{
				Browser:          a.Browser,
				Admin:            a.Admin,
				Dialog:           a.Dialog,
				Notices:          a.Notices,
				Bodies:           a.Bodies,
				LLMToken:         cfg.Agent.LLMToken,
				DefaultApprover:  a.DefaultApprover(ctx),
				RememberApprover: a.RememberApprover,
				Logger:           logger.With("component", "tui"),
			})
		},
	}
}
