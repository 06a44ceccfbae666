package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/present"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/usecase"
)

func newThreadsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "threads",
		Short: "List customer threads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.application(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Browser.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("load threads: %s", domain.Describe(err))
			}

			threads := a.Browser.Threads()
			if len(threads) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No threads.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "ID\tSUBJECT\tTOPIC\tORDER\n")
			for _, t := range threads {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ThreadID, orDash(t.Subject), orDash(t.Topic), orDash(t.OrderID))
			}
			return tw.Flush()
		},
	}
}

func newShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <thread-id>",
		Short: "Show a thread with its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.application(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.OpenSession(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", domain.Describe(err))
			}
			renderSession(cmd, sess.View(), a.Bodies.Render, time.Now())
			return nil
		},
	}
}

func renderSession(cmd *cobra.Command, view usecase.View, render func(string) string, now time.Time) {
	out := cmd.OutOrStdout()
	t := view.Thread

	fmt.Fprintf(out, "%s\n", orDash(t.Title()))
	fmt.Fprintf(out, "Thread:  %s\n", view.ThreadID)
	fmt.Fprintf(out, "Order:   %s   Product: %s\n", orDash(t.OrderID), orDash(t.Product))

	fmt.Fprintf(out, "\nMessages (%d)\n", len(t.Messages))
	for _, m := range t.Messages {
		fmt.Fprintf(out, "\n  %s  %s\n", m.Sender, present.MessageTime(m, now))
		for _, line := range strings.Split(render(m.Body), "\n") {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}

	res := view.Resolution
	fmt.Fprintf(out, "\nSummary [%s]\n", res.State)
	if res.State == domain.StateNone {
		fmt.Fprintf(out, "  No summary yet.\n")
	} else {
		if warnings := res.Fields.FaithfulnessWarnings; len(warnings) > 0 {
			fmt.Fprintf(out, "  Check before approval:\n")
			for _, w := range warnings {
				fmt.Fprintf(out, "    ! %s\n", w)
			}
		}
		for _, line := range strings.Split(res.Text, "\n") {
			fmt.Fprintf(out, "  %s\n", line)
		}
		fmt.Fprintf(out, "\n  Issue Type:      %s\n", present.Field(res.Fields, domain.KeyIssueType))
		fmt.Fprintf(out, "  Current Status:  %s\n", view.Edit.CurrentStatus)
		fmt.Fprintf(out, "  Recommended:     %s\n", present.Field(res.Fields, domain.KeyRecommendedDisposition))
		fmt.Fprintf(out, "  CRM:             %s\n", present.CRMLine(res.Fields))
		if view.Record != nil && view.Record.Approver != nil && res.State == domain.StateApproved {
			fmt.Fprintf(out, "  Approver:        %s\n", *view.Record.Approver)
		}
	}
	fmt.Fprintf(out, "\nActions: %s\n", strings.Join(present.Actions(res), ", "))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
