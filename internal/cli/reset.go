package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/usecase"
)

func newResetCommand(opts *rootOptions) *cobra.Command {
	var (
		all bool
		yes bool
	)
	cmd := &cobra.Command{
		Use:   "reset [thread-id]",
		Short: "Clear a thread summary, or all of them with --all",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("pass a thread id or --all, not both")
			}
			if !all && len(args) != 1 {
				return errors.New("pass a thread id or --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			title, message := usecase.ResetAllTitle, usecase.ResetAllText
			var threadID string
			if !all {
				threadID = args[0]
				title, message = usecase.ResetOneTitle, fmt.Sprintf("Reset ONLY %s?", threadID)
			}

			if !yes {
				if !opts.interactive() {
					return errors.New("refusing to reset without confirmation (use --yes)")
				}
				ok, err := confirm(cmd.ErrOrStderr(), opts.stdin, title, message)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			ctx := cmd.Context()
			a, err := opts.application(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if all {
				err = a.Admin.ResetAll(ctx)
			} else {
				err = a.Admin.ResetOne(ctx, threadID)
			}
			if err != nil {
				return fmt.Errorf("reset failed: %s", domain.Describe(err))
			}
			if n, ok := a.Notices.Latest(); ok {
				fmt.Fprintln(cmd.OutOrStdout(), n.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "reset every thread and truncate output files")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(w io.Writer, r io.Reader, title, message string) (bool, error) {
	fmt.Fprintf(w, "%s\n%s [y/N]: ", title, message)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
