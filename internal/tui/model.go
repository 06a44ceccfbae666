// Package tui is the interactive desk: a thread list on the left and the
// selected thread with its summary editor on the right.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/notify"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/ports"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/summary"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/usecase"
)

// Deps wires the model to the application.
type Deps struct {
	Browser          *usecase.Browser
	Admin            *usecase.Admin
	Dialog           *notify.Dialog
	Notices          *notify.Center
	Bodies           ports.BodyRenderer
	LLMToken         string
	DefaultApprover  string
	RememberApprover func(ctx context.Context, approver string)
	Logger           *slog.Logger
	Now              func() time.Time
}

// FocusRegion identifies which part of the screen receives keys.
type FocusRegion int

const (
	// FocusList means navigation keys move the thread cursor.
	FocusList FocusRegion = iota
	// FocusText means keys go to the summary text editor.
	FocusText
	// FocusStatus means keys go to the current status input.
	FocusStatus
	// FocusApprover means keys go to the approver input.
	FocusApprover
)

const (
	opSelect = "load"
	opReset  = "reset"
)

type threadsLoadedMsg struct {
	err       error
	preferred string
	reselect  bool
}

type selectedMsg struct {
	epoch   uint64
	id      string
	session *usecase.Session
	err     error
}

type actionDoneMsg struct {
	session *usecase.Session
	op      string
	err     error
}

type resetDoneMsg struct {
	err error
}

type noticeMsg struct {
	event notify.Event
}

// Model is the bubbletea model for the desk.
type Model struct {
	ctx    context.Context
	deps   Deps
	keys   KeyMap
	theme  Theme
	events <-chan notify.Event

	width  int
	height int

	threads []domain.Thread
	loadErr error
	cursor  int

	// epoch increases with every selection; late messages carrying an
	// older epoch belong to a thread that is no longer shown.
	epoch     uint64
	selected  string
	session   *usecase.Session
	detailErr error
	pendingOp string

	focus    FocusRegion
	text     textarea.Model
	status   textinput.Model
	approver textinput.Model
	detail   viewport.Model
	spinner  spinner.Model

	notices []notify.Notice
}

// NewModel builds the initial model. events should come from
// deps.Notices.Subscribe; a nil channel disables live notice updates.
func NewModel(ctx context.Context, deps Deps, events <-chan notify.Event) Model {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Dialog == nil {
		deps.Dialog = notify.NewDialog()
	}

	text := textarea.New()
	text.Placeholder = "No summary yet"
	text.ShowLineNumbers = false
	text.CharLimit = 0
	text.SetHeight(6)

	status := textinput.New()
	status.Prompt = ""
	status.Placeholder = summary.DefaultCurrentStatus

	approver := textinput.New()
	approver.Prompt = ""
	approver.Placeholder = usecase.FallbackApprover
	approver.SetValue(deps.DefaultApprover)

	return Model{
		ctx:       ctx,
		deps:      deps,
		keys:      DefaultKeyMap,
		theme:     DefaultTheme,
		events:    events,
		pendingOp: opSelect,
		text:      text,
		status:    status,
		approver:  approver,
		detail:    viewport.New(0, 0),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init starts loading the thread list and listening for notices.
func (model Model) Init() tea.Cmd {
	return tea.Batch(model.loadThreads(false), model.waitForNotice(), model.spinner.Tick)
}

// Update handles one message.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.layout()
		return model, nil

	case threadsLoadedMsg:
		return model.handleThreadsLoaded(message)

	case selectedMsg:
		return model.handleSelected(message)

	case actionDoneMsg:
		return model.handleActionDone(message)

	case resetDoneMsg:
		return model.handleResetDone(message)

	case noticeMsg:
		model.notices = model.deps.Notices.Active()
		return model, model.waitForNotice()

	case spinner.TickMsg:
		if !model.busy() {
			return model, nil
		}
		var cmd tea.Cmd
		model.spinner, cmd = model.spinner.Update(message)
		return model, cmd

	case tea.KeyMsg:
		return model.handleKey(message)
	}
	return model, nil
}

func (model Model) handleThreadsLoaded(message threadsLoadedMsg) (tea.Model, tea.Cmd) {
	browser := model.deps.Browser
	model.threads = browser.Threads()
	model.loadErr = message.err
	if model.pendingOp == opSelect {
		model.pendingOp = ""
	}

	if model.selected == "" {
		if id := browser.InitialSelection(message.preferred); id != "" {
			return model.selectThread(id)
		}
		return model, nil
	}
	if message.reselect {
		return model.selectThread(model.selected)
	}
	model.cursor = model.indexOf(model.selected)
	return model, nil
}

func (model Model) handleSelected(message selectedMsg) (tea.Model, tea.Cmd) {
	if message.epoch != model.epoch || errors.Is(message.err, usecase.ErrSuperseded) {
		model.deps.Logger.Debug("ignored stale selection", "thread_id", message.id)
		return model, nil
	}
	model.pendingOp = ""
	model.session = message.session
	model.detailErr = message.err
	model.syncInputs()
	model.refreshDetail()
	model.detail.GotoTop()
	// A thread left mid-action comes back with that action still running;
	// its actionDoneMsg clears the flag.
	if message.session != nil {
		if op := message.session.PendingOp(); op != "" {
			model.pendingOp = op
			return model, model.spinner.Tick
		}
	}
	return model, nil
}

func (model Model) handleActionDone(message actionDoneMsg) (tea.Model, tea.Cmd) {
	if message.session != model.session {
		return model, nil
	}
	model.pendingOp = ""
	if message.err != nil {
		model.deps.Logger.Warn("action failed", "op", message.op, "err", message.err)
		model.refreshDetail()
		return model, nil
	}
	if message.op == "approve" && model.deps.RememberApprover != nil {
		model.deps.RememberApprover(model.ctx, model.approver.Value())
	}
	model.leaveInput()
	model.syncInputs()
	model.refreshDetail()
	return model, nil
}

// handleResetDone picks up the list and selection the reset refresh left
// in the browser.
func (model Model) handleResetDone(message resetDoneMsg) (tea.Model, tea.Cmd) {
	model.pendingOp = ""
	if message.err != nil {
		model.deps.Logger.Warn("reset dialog", "err", message.err)
	}
	browser := model.deps.Browser
	model.threads = browser.Threads()
	model.loadErr = browser.LoadError()
	if current := browser.Current(); current != nil && current != model.session {
		model.epoch++
		model.session = current
		model.selected = current.ThreadID()
		model.detailErr = nil
		model.leaveInput()
	}
	model.cursor = model.indexOf(model.selected)
	model.syncInputs()
	model.refreshDetail()
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.Type == tea.KeyCtrlC || (key.Matches(message, model.keys.Quit) && model.focus == FocusList) {
		return model, tea.Quit
	}
	if model.deps.Dialog.IsOpen() {
		return model.handleDialogKey(message)
	}
	switch model.focus {
	case FocusText, FocusStatus, FocusApprover:
		return model.handleInputKey(message)
	}

	switch {
	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}
		return model, nil
	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.threads)-1 {
			model.cursor++
		}
		return model, nil
	case key.Matches(message, model.keys.Select):
		if model.cursor >= len(model.threads) {
			return model, nil
		}
		id := model.threads[model.cursor].ThreadID
		if id == model.selected && model.busy() {
			return model, nil
		}
		return model.selectThread(id)
	case key.Matches(message, model.keys.ScrollUp):
		model.detail.LineUp(max(1, model.detail.Height/2))
		return model, nil
	case key.Matches(message, model.keys.ScrollDown):
		model.detail.LineDown(max(1, model.detail.Height/2))
		return model, nil
	case key.Matches(message, model.keys.Refresh):
		if model.busy() {
			return model, nil
		}
		model.pendingOp = opSelect
		return model, tea.Batch(model.loadThreads(true), model.spinner.Tick)
	case key.Matches(message, model.keys.ResetOne):
		if !model.busy() {
			model.deps.Admin.RequestResetOne(model.selected)
		}
		return model, nil
	case key.Matches(message, model.keys.ResetAll):
		if !model.busy() {
			model.deps.Admin.RequestResetAll()
		}
		return model, nil
	case key.Matches(message, model.keys.Dismiss):
		if latest, ok := model.deps.Notices.Latest(); ok {
			model.deps.Notices.Dismiss(latest.ID)
		}
		model.notices = model.deps.Notices.Active()
		return model, nil
	}

	return model.handleActionKey(message)
}

// handleActionKey runs summary actions. Every action is gated by the
// resolution and by the pending flag.
func (model Model) handleActionKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !model.ready() {
		return model, nil
	}
	res := model.session.Resolution()

	switch {
	case key.Matches(message, model.keys.Generate) && res.CanGenerate:
		token := model.deps.LLMToken
		return model.runAction("generate", func(ctx context.Context, sess *usecase.Session) error {
			return sess.Generate(ctx, token)
		})
	case key.Matches(message, model.keys.EditText) && res.CanEdit:
		model.focus = FocusText
		return model, model.text.Focus()
	case key.Matches(message, model.keys.EditStatus) && res.CanEdit:
		model.focus = FocusStatus
		return model, model.status.Focus()
	case key.Matches(message, model.keys.EditApprover) && res.CanApprove:
		model.focus = FocusApprover
		return model, model.approver.Focus()
	case key.Matches(message, model.keys.Save) && res.CanEdit:
		return model.save()
	case key.Matches(message, model.keys.Approve) && res.CanApprove:
		approver := model.approver.Value()
		return model.runAction("approve", func(ctx context.Context, sess *usecase.Session) error {
			return sess.Approve(ctx, approver)
		})
	case key.Matches(message, model.keys.Post) && res.CanPost:
		return model.runAction("post", func(ctx context.Context, sess *usecase.Session) error {
			return sess.PostToCRM(ctx, "")
		})
	}
	return model, nil
}

func (model Model) handleInputKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Leave):
		model.pushEdits()
		model.leaveInput()
		model.refreshDetail()
		return model, nil
	case key.Matches(message, model.keys.Save) && model.focus != FocusApprover:
		return model.save()
	case message.Type == tea.KeyEnter && model.focus != FocusText:
		model.pushEdits()
		model.leaveInput()
		model.refreshDetail()
		return model, nil
	}

	var cmd tea.Cmd
	switch model.focus {
	case FocusText:
		model.text, cmd = model.text.Update(message)
	case FocusStatus:
		model.status, cmd = model.status.Update(message)
	case FocusApprover:
		model.approver, cmd = model.approver.Update(message)
	}
	return model, cmd
}

func (model Model) handleDialogKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Confirm):
		dialog := model.deps.Dialog
		ctx := model.ctx
		model.pendingOp = opReset
		return model, tea.Batch(func() tea.Msg {
			return resetDoneMsg{err: dialog.Confirm(ctx)}
		}, model.spinner.Tick)
	case key.Matches(message, model.keys.Cancel):
		model.deps.Dialog.Cancel()
	}
	return model, nil
}

func (model Model) save() (tea.Model, tea.Cmd) {
	model.pushEdits()
	return model.runAction("save edit", func(ctx context.Context, sess *usecase.Session) error {
		return sess.SaveLocalEdit(ctx)
	})
}

// selectThread drops the current session and starts loading id. Results
// of earlier selections are ignored once they arrive.
func (model Model) selectThread(id string) (Model, tea.Cmd) {
	model.epoch++
	model.selected = id
	model.session = nil
	model.detailErr = nil
	model.pendingOp = opSelect
	model.cursor = model.indexOf(id)
	model.leaveInput()

	epoch := model.epoch
	browser := model.deps.Browser
	ctx := model.ctx
	load := func() tea.Msg {
		sess, err := browser.Select(ctx, id)
		return selectedMsg{epoch: epoch, id: id, session: sess, err: err}
	}
	return model, tea.Batch(load, model.spinner.Tick)
}

func (model Model) runAction(op string, action func(ctx context.Context, sess *usecase.Session) error) (tea.Model, tea.Cmd) {
	sess := model.session
	model.pendingOp = op
	ctx := model.ctx
	run := func() tea.Msg {
		return actionDoneMsg{session: sess, op: op, err: action(ctx, sess)}
	}
	return model, tea.Batch(run, model.spinner.Tick)
}

func (model Model) loadThreads(reselect bool) tea.Cmd {
	browser := model.deps.Browser
	ctx := model.ctx
	return func() tea.Msg {
		err := browser.Reload(ctx)
		return threadsLoadedMsg{err: err, preferred: browser.RememberedThread(ctx), reselect: reselect}
	}
}

func (model Model) waitForNotice() tea.Cmd {
	events := model.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return noticeMsg{event: event}
	}
}

// ready reports whether a loaded session can take an action.
func (model Model) ready() bool {
	return model.session != nil && model.pendingOp == "" && !model.session.Pending() && model.detailErr == nil
}

func (model Model) busy() bool {
	return model.pendingOp != ""
}

// pushEdits copies the inputs into the session's local edit buffer.
func (model *Model) pushEdits() {
	if model.session == nil {
		return
	}
	model.session.SetText(model.text.Value())
	model.session.SetCurrentStatus(model.status.Value())
}

// syncInputs resets the inputs from the session's local edit buffer.
func (model *Model) syncInputs() {
	if model.session == nil {
		model.text.SetValue("")
		model.status.SetValue("")
		return
	}
	view := model.session.View()
	model.text.SetValue(view.Edit.Text)
	model.status.SetValue(view.Edit.CurrentStatus)
	if approved, ok := view.Resolution.Summary.(summary.Approved); ok && approved.Approver != "" {
		model.approver.SetValue(approved.Approver)
	} else if model.approver.Value() == "" {
		model.approver.SetValue(model.deps.DefaultApprover)
	}
}

func (model *Model) leaveInput() {
	model.focus = FocusList
	model.text.Blur()
	model.status.Blur()
	model.approver.Blur()
}

func (model Model) indexOf(id string) int {
	for i, t := range model.threads {
		if t.ThreadID == id {
			return i
		}
	}
	if model.cursor < len(model.threads) {
		return model.cursor
	}
	return 0
}

// Focus reports the region receiving keys.
func (model Model) Focus() FocusRegion {
	return model.focus
}

// SelectedThread is the thread shown in the detail pane.
func (model Model) SelectedThread() string {
	return model.selected
}
