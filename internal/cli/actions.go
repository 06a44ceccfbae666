package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/app"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/usecase"
)

type sessionAction func(ctx context.Context, a *app.Application, sess *usecase.Session) error

// runOnSession loads threadID, runs action and reports the outcome.
func runOnSession(cmd *cobra.Command, opts *rootOptions, threadID string, action sessionAction) error {
	ctx := cmd.Context()
	a, err := opts.application(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.OpenSession(ctx, threadID)
	if err != nil {
		return errors.New(domain.Describe(err))
	}
	if err := action(ctx, a, sess); err != nil {
		return errors.New(domain.Describe(err))
	}

	if n, ok := a.Notices.Latest(); ok {
		fmt.Fprintln(cmd.OutOrStdout(), n.Text)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", threadID, sess.Resolution().State)
	return nil
}

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "generate <thread-id>",
		Short: "Generate a draft summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnSession(cmd, opts, args[0], func(ctx context.Context, a *app.Application, sess *usecase.Session) error {
				if token == "" {
					token = a.Config.Agent.LLMToken
				}
				return sess.Generate(ctx, token)
			})
		},
	}
	cmd.Flags().StringVar(&token, "llm-token", "", "credential for the AI generator (default: rule-based fallback)")
	return cmd
}

func newEditCommand(opts *rootOptions) *cobra.Command {
	var (
		text     string
		textFile string
		status   string
	)
	cmd := &cobra.Command{
		Use:   "edit <thread-id>",
		Short: "Save an edited summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			textSet := cmd.Flags().Changed("text")
			if textFile != "" {
				if textSet {
					return errors.New("use either --text or --text-file")
				}
				loaded, err := readTextFile(textFile, opts.stdin)
				if err != nil {
					return err
				}
				text = loaded
				textSet = true
			}
			statusSet := cmd.Flags().Changed("status")
			if !textSet && !statusSet {
				return errors.New("nothing to save: pass --text, --text-file or --status")
			}

			return runOnSession(cmd, opts, args[0], func(ctx context.Context, _ *app.Application, sess *usecase.Session) error {
				if textSet {
					sess.SetText(text)
				}
				if statusSet {
					sess.SetCurrentStatus(status)
				}
				return sess.SaveLocalEdit(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "summary text")
	cmd.Flags().StringVar(&textFile, "text-file", "", "read summary text from a file (- for stdin)")
	cmd.Flags().StringVar(&status, "status", "", "current status")
	return cmd
}

func newApproveCommand(opts *rootOptions) *cobra.Command {
	var approver string
	cmd := &cobra.Command{
		Use:   "approve <thread-id>",
		Short: "Approve the summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnSession(cmd, opts, args[0], func(ctx context.Context, a *app.Application, sess *usecase.Session) error {
				if err := sess.Approve(ctx, approver); err != nil {
					return err
				}
				a.RememberApprover(ctx, approver)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&approver, "approver", "", "approver id (default: remembered or configured approver)")
	return cmd
}

func newPostCommand(opts *rootOptions) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "post <thread-id>",
		Short: "Post the summary to the CRM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnSession(cmd, opts, args[0], func(ctx context.Context, _ *app.Application, sess *usecase.Session) error {
				return sess.PostToCRM(ctx, note)
			})
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "note text (default: current summary text)")
	return cmd
}

func readTextFile(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
