package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/present"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/summary"
)

const (
	minListWidth   = 24
	minDetailWidth = 30
	headerHeight   = 3
	statusHeight   = 1
)

func (model Model) listWidth() int {
	return max(minListWidth, model.width*3/10)
}

func (model Model) detailWidth() int {
	return max(minDetailWidth, model.width-model.listWidth()-3)
}

// layout sizes the inputs and the message viewport after a resize.
func (model *Model) layout() {
	width := model.detailWidth()
	model.text.SetWidth(width)
	model.status.Width = max(10, width-20)
	model.approver.Width = max(10, width-20)
	model.detail.Width = width
	model.detail.Height = max(3, model.height-headerHeight-statusHeight-model.summaryHeight())
	model.refreshDetail()
}

// summaryHeight estimates the summary panel height so the message
// viewport gets the rest of the screen.
func (model Model) summaryHeight() int {
	return lipgloss.Height(model.renderSummary())
}

// refreshDetail rebuilds the message viewport content from the session.
func (model *Model) refreshDetail() {
	if model.session == nil {
		model.detail.SetContent("")
		return
	}
	view := model.session.View()
	now := model.deps.Now()
	width := model.detailWidth()

	sender := lipgloss.NewStyle().Bold(true).Foreground(model.theme.NormalText)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	body := lipgloss.NewStyle().Width(width).Foreground(model.theme.NormalText)

	var b strings.Builder
	if len(view.Thread.Messages) == 0 {
		b.WriteString(faint.Render("No messages."))
	}
	for i, msg := range view.Thread.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(sender.Render(orDash(msg.Sender)))
		b.WriteString("  ")
		b.WriteString(faint.Render(present.MessageTime(msg, now)))
		b.WriteString("\n")
		text := msg.Body
		if model.deps.Bodies != nil {
			text = model.deps.Bodies.Render(msg.Body)
		}
		b.WriteString(body.Render(text))
	}
	model.detail.SetContent(b.String())
}

// View renders the whole screen.
func (model Model) View() string {
	if model.width == 0 {
		return "Loading…"
	}

	list := model.renderList()
	detail := model.renderDetail()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		list,
		lipgloss.NewStyle().
			Foreground(model.theme.BorderColor).
			Render(strings.Repeat("│\n", max(1, model.height-statusHeight-1))+"│"),
		" ",
		detail,
	)

	screen := lipgloss.JoinVertical(lipgloss.Left, body, model.renderStatusBar())
	if prompt, open := model.deps.Dialog.Current(); open {
		return lipgloss.Place(model.width, model.height, lipgloss.Center, lipgloss.Center,
			model.renderDialog(prompt.Title, prompt.Message))
	}
	return screen
}

func (model Model) renderList() string {
	width := model.listWidth()
	height := max(1, model.height-statusHeight)

	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render("Threads")
	lines := []string{title, ""}

	if model.loadErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(model.theme.NoticeError).Width(width)
		lines = append(lines,
			errStyle.Render("Failed to load threads: "+domain.Describe(model.loadErr)),
			lipgloss.NewStyle().Foreground(model.theme.HelpText).Render("F5 to retry"),
			"",
		)
	}
	if len(model.threads) == 0 && model.loadErr == nil {
		text := "No threads."
		if model.pendingOp == opSelect {
			text = model.spinner.View() + " loading"
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(text))
	}

	normal := lipgloss.NewStyle().Foreground(model.theme.NormalText).Width(width).MaxHeight(1)
	cursor := normal.
		Background(model.theme.SelectedBackground).
		Foreground(model.theme.SelectedForeground)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	for i, thread := range model.threads {
		marker := "  "
		if thread.ThreadID == model.selected {
			marker = "▸ "
		}
		line := marker + truncate(thread.Title(), width-len(thread.ThreadID)-4) + " " + faint.Render(thread.ThreadID)
		if i == model.cursor && model.focus == FocusList {
			lines = append(lines, cursor.Render(line))
			continue
		}
		lines = append(lines, normal.Render(line))
	}

	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).
		Render(strings.Join(lines, "\n"))
}

func (model Model) renderDetail() string {
	width := model.detailWidth()
	height := max(1, model.height-statusHeight)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	if model.selected == "" {
		return lipgloss.NewStyle().Width(width).Height(height).
			Render(faint.Render("Select a thread."))
	}
	if model.session == nil {
		return lipgloss.NewStyle().Width(width).Height(height).
			Render(model.spinner.View() + " loading " + model.selected)
	}
	view := model.session.View()
	if model.detailErr != nil && !view.Loaded {
		errStyle := lipgloss.NewStyle().Foreground(model.theme.NoticeError).Width(width)
		return lipgloss.NewStyle().Width(width).Height(height).
			Render(errStyle.Render(domain.Describe(model.detailErr)))
	}

	thread := view.Thread
	header := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Width(width).MaxHeight(1).
			Render(orDash(thread.Title())),
		faint.Render(fmt.Sprintf("%s · Order %s · %s", thread.ThreadID, orDash(thread.OrderID), orDash(thread.Product))),
		"",
	)

	panel := model.renderSummary()
	messages := model.detail
	messages.Height = max(1, height-lipgloss.Height(header)-lipgloss.Height(panel))

	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, messages.View(), panel))
}

// renderSummary draws the summary panel; inputs are shown only when the
// state allows editing.
func (model Model) renderSummary() string {
	if model.session == nil {
		return ""
	}
	width := model.detailWidth()
	view := model.session.View()
	res := view.Resolution

	label := lipgloss.NewStyle().Foreground(model.theme.FaintText).Width(18)
	value := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	chip := lipgloss.NewStyle().Bold(true).Padding(0, 1).
		Foreground(lipgloss.Color("0")).
		Background(model.theme.StateColor(res.State)).
		Render(string(res.State))

	head := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render("Summary") + " " + chip
	if model.pendingOp != "" {
		head += " " + model.spinner.View() + " " + lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(model.pendingOp+"…")
	}
	lines := []string{
		lipgloss.NewStyle().Foreground(model.theme.BorderColor).Render(strings.Repeat("─", width)),
		head,
	}

	if warnings := res.Fields.FaithfulnessWarnings; len(warnings) > 0 {
		warn := lipgloss.NewStyle().Foreground(model.theme.NoticeWarning).Width(width)
		for _, w := range warnings {
			lines = append(lines, warn.Render("⚠ "+w))
		}
	}

	if res.CanEdit {
		lines = append(lines, model.text.View())
	} else {
		text := res.Text
		if text == "" {
			text = lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("No summary yet.")
		}
		lines = append(lines, lipgloss.NewStyle().Width(width).Foreground(model.theme.NormalText).Render(text))
	}

	status := value.Render(summary.CurrentStatus(res.Fields))
	if res.CanEdit {
		status = model.status.View()
	}
	approver := value.Render(model.approver.Value())
	if res.CanApprove {
		approver = model.approver.View()
	} else if approved, ok := res.Summary.(summary.Approved); ok {
		approver = value.Render(orDash(approved.Approver))
	}

	lines = append(lines,
		label.Render("Issue Type")+value.Render(present.Field(res.Fields, domain.KeyIssueType)),
		label.Render("Current Status")+status,
		label.Render("Recommended")+value.Render(present.Field(res.Fields, domain.KeyRecommendedDisposition)),
		label.Render("CRM")+value.Render(present.CRMLine(res.Fields)),
		label.Render("Approver")+approver,
	)

	actions := present.Actions(res)
	if view.Pending || model.pendingOp != "" {
		actions = nil
	}
	if len(actions) > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.HelpText).
			Render("Actions: "+strings.Join(actions, " · ")))
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderStatusBar() string {
	if len(model.notices) > 0 {
		latest := model.notices[len(model.notices)-1]
		text := latest.Text
		if extra := len(model.notices) - 1; extra > 0 {
			text += fmt.Sprintf("  (+%d)", extra)
		}
		return lipgloss.NewStyle().Bold(true).
			Foreground(model.theme.NoticeColor(latest.Level)).
			Width(model.width).MaxHeight(1).
			Render(text)
	}

	var bindings []key.Binding
	switch model.focus {
	case FocusList:
		bindings = append(model.keys.listHelp(), model.keys.detailHelp()...)
	default:
		bindings = []key.Binding{model.keys.Leave, model.keys.Save}
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		help := b.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Width(model.width).MaxHeight(1).
		Render(strings.Join(parts, "  "))
}

func (model Model) renderDialog(title, message string) string {
	width := min(60, max(30, model.width-10))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.NoticeWarning).
		Padding(1, 2).
		Width(width)
	help := model.keys.Confirm.Help()
	cancel := model.keys.Cancel.Help()
	return box.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render(title),
		"",
		lipgloss.NewStyle().Foreground(model.theme.NormalText).Width(width-4).Render(message),
		"",
		lipgloss.NewStyle().Foreground(model.theme.HelpText).
			Render(help.Key+" "+help.Desc+"   "+cancel.Key+" "+cancel.Desc),
	))
}

func truncate(s string, width int) string {
	if width <= 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
