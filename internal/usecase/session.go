package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/ports"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/summary"
)

const (
	// FallbackApprover is used when neither the caller nor configuration
	// names an approver.
	FallbackApprover = "reviewer"
	// FallbackNote is posted when there is no summary text at all.
	FallbackNote = "Posted approved summary from UI"
	// NoteSource tags CRM notes written by this client.
	NoteSource = "sdmdesk"

	opLoad = "load"
)

var (
	// ErrBusy rejects an action while another one on the same session is in flight.
	ErrBusy = errors.New("another operation is pending")
	// ErrPrecondition rejects an action the current summary state does not allow.
	ErrPrecondition = fmt.Errorf("action not allowed in current state: %w", domain.ErrValidation)
)

// SessionDeps wires the driven adapters a session needs.
type SessionDeps struct {
	Store           ports.SummaryStore
	Notifier        ports.Notifier
	Notes           ports.NoteRenderer
	Logger          *slog.Logger
	DefaultApprover string
}

// LocalEdit is the agent's unsaved buffer.
type LocalEdit struct {
	Text          string
	CurrentStatus string
}

// View is a consistent copy of a session's state for rendering.
type View struct {
	ThreadID   string
	Thread     domain.Thread
	Loaded     bool
	Record     *domain.SummaryRecord
	Resolution summary.Resolution
	Edit       LocalEdit
	Pending    bool
	PendingOp  string
}

// Session controls the summary lifecycle of one selected thread. The
// store response of every successful action replaces local state in full.
type Session struct {
	threadID        string
	store           ports.SummaryStore
	notifier        ports.Notifier
	notes           ports.NoteRenderer
	logger          *slog.Logger
	defaultApprover string

	mu        sync.Mutex
	thread    domain.Thread
	loaded    bool
	record    *domain.SummaryRecord
	res       summary.Resolution
	edit      LocalEdit
	pendingOp string
}

// NewSession prepares a session for threadID. Call Load before acting.
func NewSession(threadID string, deps SessionDeps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = discardNotifier{}
	}
	s := &Session{
		threadID:        threadID,
		store:           deps.Store,
		notifier:        notifier,
		notes:           deps.Notes,
		logger:          logger.With("component", "session", "thread_id", threadID),
		defaultApprover: strings.TrimSpace(deps.DefaultApprover),
	}
	s.applyLocked(nil)
	return s
}

// ThreadID returns the thread this session controls.
func (s *Session) ThreadID() string {
	return s.threadID
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		ThreadID:   s.threadID,
		Thread:     s.thread,
		Loaded:     s.loaded,
		Record:     s.record.Clone(),
		Resolution: s.res,
		Edit:       s.edit,
		Pending:    s.pendingOp != "",
		PendingOp:  s.pendingOp,
	}
}

// Resolution returns the derived state of the last confirmed record.
func (s *Session) Resolution() summary.Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res
}

// Pending reports whether an action is in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingOp != ""
}

// PendingOp names the action in flight, or "".
func (s *Session) PendingOp() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingOp
}

// SetText updates the local text buffer.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit.Text = text
}

// SetCurrentStatus updates the local current_status buffer.
func (s *Session) SetCurrentStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit.CurrentStatus = status
}

// Load fetches the thread and its summary concurrently. A missing summary
// means NONE; any other summary failure also yields NONE with a warning.
func (s *Session) Load(ctx context.Context) error {
	if err := s.begin(opLoad); err != nil {
		return err
	}
	defer s.end()

	var (
		thread     domain.Thread
		record     *domain.SummaryRecord
		summaryErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.store.GetThread(gctx, s.threadID)
		if err != nil {
			return fmt.Errorf("load thread %s: %w", s.threadID, err)
		}
		thread = t
		return nil
	})
	g.Go(func() error {
		rec, err := s.store.GetSummary(gctx, s.threadID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				summaryErr = err
			}
			return nil
		}
		record = rec
		return nil
	})

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		s.logger.Warn("load failed", "err", err)
		s.notifier.Error(domain.Describe(err))
		return err
	}

	s.mu.Lock()
	s.thread = thread
	s.loaded = true
	s.applyLocked(record)
	state := s.res.State
	s.mu.Unlock()

	s.logger.Debug("loaded", "state", state)
	if summaryErr != nil {
		s.logger.Warn("summary unavailable", "err", summaryErr)
		s.notifier.Warn("Summary unavailable: " + domain.Describe(summaryErr))
	}
	return nil
}

// Generate requests a draft. Allowed while no draft text exists.
func (s *Session) Generate(ctx context.Context, credentialToken string) error {
	return s.mutate(ctx, "generate", func(r summary.Resolution) bool { return r.CanGenerate },
		func(ctx context.Context) (*domain.SummaryRecord, error) {
			return s.store.GenerateSummary(ctx, s.threadID, credentialToken)
		}, "Draft generated")
}

// SaveEdit stores text and the full effective field set. Callers merge
// their overrides into fields beforehand.
func (s *Session) SaveEdit(ctx context.Context, text string, fields domain.Fields) error {
	return s.mutate(ctx, "save edit", func(r summary.Resolution) bool { return r.CanEdit },
		func(ctx context.Context) (*domain.SummaryRecord, error) {
			return s.store.SaveEdit(ctx, s.threadID, text, fields)
		}, "Saved edit")
}

// SaveLocalEdit saves the local buffer, merging its current_status into
// the effective fields.
func (s *Session) SaveLocalEdit(ctx context.Context) error {
	s.mu.Lock()
	text := s.edit.Text
	fields := summary.WithCurrentStatus(s.res.Fields, s.edit.CurrentStatus)
	s.mu.Unlock()

	return s.SaveEdit(ctx, text, fields)
}

// Approve freezes the summary. An empty approver falls back to the
// session default, then to FallbackApprover.
func (s *Session) Approve(ctx context.Context, approver string) error {
	approver = s.approverOrDefault(approver)
	return s.mutate(ctx, "approve", func(r summary.Resolution) bool { return r.CanApprove },
		func(ctx context.Context) (*domain.SummaryRecord, error) {
			return s.store.Approve(ctx, s.threadID, approver)
		}, "Approved")
}

// DefaultApprover reports the approver used when none is given.
func (s *Session) DefaultApprover() string {
	return s.approverOrDefault("")
}

// PostToCRM sends note to the CRM. It has no state precondition and never
// changes the summary record.
func (s *Session) PostToCRM(ctx context.Context, note string) error {
	s.mu.Lock()
	if s.pendingOp != "" {
		s.mu.Unlock()
		return ErrBusy
	}
	s.pendingOp = "post"
	res := s.res
	var approver string
	if s.record != nil && s.record.Approver != nil {
		approver = *s.record.Approver
	}
	s.mu.Unlock()
	defer s.end()

	if strings.TrimSpace(note) == "" {
		note = res.Text
	}
	if strings.TrimSpace(note) == "" {
		note = FallbackNote
	}

	metadata := map[string]any{
		"summary_state": string(res.State),
		"source":        NoteSource,
	}
	if res.State == domain.StateApproved && approver != "" {
		metadata["approver"] = approver
	}
	if s.notes != nil {
		html, err := s.notes.RenderHTML(note)
		if err != nil {
			s.logger.Warn("render note", "err", err)
		} else {
			metadata["html"] = html
		}
	}

	if err := s.store.PostCRMNote(ctx, s.threadID, note, metadata); err != nil {
		s.logger.Warn("post crm note failed", "err", err)
		s.notifier.Error("Post to CRM failed: " + domain.Describe(err))
		return fmt.Errorf("post crm note: %w", err)
	}

	s.logger.Info("posted crm note", "state", res.State)
	s.notifier.Success("Posted to CRM (simulated)")
	return nil
}

func (s *Session) mutate(
	ctx context.Context,
	op string,
	allowed func(summary.Resolution) bool,
	call func(ctx context.Context) (*domain.SummaryRecord, error),
	success string,
) error {
	s.mu.Lock()
	if s.pendingOp != "" {
		s.mu.Unlock()
		return ErrBusy
	}
	if !allowed(s.res) {
		state := s.res.State
		s.mu.Unlock()
		return fmt.Errorf("%s in state %s: %w", op, state, ErrPrecondition)
	}
	s.pendingOp = op
	s.mu.Unlock()
	defer s.end()

	rec, err := call(ctx)
	if err == nil && rec == nil {
		err = &domain.StoreError{Kind: domain.ErrTransport, Op: op, Message: "store returned no summary"}
	}
	if err != nil {
		s.logger.Warn("action failed", "op", op, "err", err)
		s.notifier.Error(failureText(op, err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.applyLocked(rec)
	state := s.res.State
	s.mu.Unlock()

	s.logger.Info("action applied", "op", op, "state", state)
	s.notifier.Success(success)
	return nil
}

func (s *Session) begin(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingOp != "" {
		return ErrBusy
	}
	s.pendingOp = op
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingOp = ""
}

// applyLocked replaces the record and resets the local buffer to it.
func (s *Session) applyLocked(rec *domain.SummaryRecord) {
	s.record = rec.Clone()
	s.res = summary.Resolve(s.record)
	s.edit = LocalEdit{
		Text:          s.res.Text,
		CurrentStatus: summary.CurrentStatus(s.res.Fields),
	}
}

func (s *Session) approverOrDefault(approver string) string {
	if a := strings.TrimSpace(approver); a != "" {
		return a
	}
	if s.defaultApprover != "" {
		return s.defaultApprover
	}
	return FallbackApprover
}

func failureText(op string, err error) string {
	if op == "" {
		return domain.Describe(err)
	}
	return strings.ToUpper(op[:1]) + op[1:] + " failed: " + domain.Describe(err)
}

type discardNotifier struct{}

func (discardNotifier) Info(string)    {}
func (discardNotifier) Success(string) {}
func (discardNotifier) Warn(string)    {}
func (discardNotifier) Error(string)   {}
