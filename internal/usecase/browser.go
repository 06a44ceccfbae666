package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/ports"
)

// PrefLastThread is the preference key holding the last selected thread.
const PrefLastThread = "last_thread"

// ErrSuperseded is returned by Select when a newer selection replaced it
// before its load finished. Its result was discarded.
var ErrSuperseded = errors.New("selection superseded")

// Browser lists threads and owns the single active session.
type Browser struct {
	deps   SessionDeps
	prefs  ports.PreferenceRepository
	logger *slog.Logger

	mu      sync.Mutex
	threads []domain.Thread
	loadErr error
	current *Session
	epoch   uint64
	cancel  context.CancelFunc

	// sessions holds the newest session per thread so a reselect finds
	// an action that is still running.
	sessions map[string]*Session
}

// NewBrowser builds a browser. prefs may be nil.
func NewBrowser(deps SessionDeps, prefs ports.PreferenceRepository) *Browser {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Browser{
		deps:     deps,
		prefs:    prefs,
		logger:   logger.With("component", "browser"),
		sessions: map[string]*Session{},
	}
}

// Reload fetches the thread list. On failure the previous list is kept
// and the error is available from LoadError until the next success.
func (b *Browser) Reload(ctx context.Context) error {
	threads, err := b.deps.Store.ListThreads(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.loadErr = err
		b.logger.Warn("list threads failed", "err", err)
		return fmt.Errorf("list threads: %w", err)
	}
	b.threads = threads
	b.loadErr = nil
	b.logger.Debug("threads loaded", "count", len(threads))
	return nil
}

// Threads returns the list in display order.
func (b *Browser) Threads() []domain.Thread {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Thread(nil), b.threads...)
}

// LoadError is the last thread-list failure, if any.
func (b *Browser) LoadError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadErr
}

// Current is the newest selected session, or nil.
func (b *Browser) Current() *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Select discards the current session with its unsaved edits, cancels its
// in-flight load and loads threadID in a fresh session. A thread whose
// action is still running gets its existing session back instead, so the
// action cannot be submitted twice.
func (b *Browser) Select(ctx context.Context, threadID string) (*Session, error) {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.epoch++
	if prev := b.sessions[threadID]; prev != nil {
		if op := prev.PendingOp(); op != "" && op != opLoad {
			b.current = prev
			b.mu.Unlock()
			b.logger.Debug("reselected thread with pending action", "thread_id", threadID, "op", op)
			return prev, nil
		}
	}
	epoch := b.epoch
	loadCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	sess := NewSession(threadID, b.deps)
	b.current = sess
	b.sessions[threadID] = sess
	b.mu.Unlock()

	err := sess.Load(loadCtx)

	b.mu.Lock()
	superseded := epoch != b.epoch
	b.mu.Unlock()
	if superseded {
		b.logger.Debug("discarded stale selection", "thread_id", threadID)
		return nil, ErrSuperseded
	}
	if err != nil {
		return sess, err
	}

	b.remember(ctx, threadID)
	return sess, nil
}

// InitialSelection picks preferred when it is listed, else the first
// thread. It returns "" for an empty list.
func (b *Browser) InitialSelection(preferred string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.threads) == 0 {
		return ""
	}
	if preferred != "" {
		for _, t := range b.threads {
			if t.ThreadID == preferred {
				return preferred
			}
		}
	}
	return b.threads[0].ThreadID
}

// RememberedThread returns the last thread selected in a previous run.
func (b *Browser) RememberedThread(ctx context.Context) string {
	if b.prefs == nil {
		return ""
	}
	id, ok, err := b.prefs.Get(ctx, PrefLastThread)
	if err != nil {
		b.logger.Warn("read preference", "key", PrefLastThread, "err", err)
		return ""
	}
	if !ok {
		return ""
	}
	return id
}

func (b *Browser) remember(ctx context.Context, threadID string) {
	if b.prefs == nil {
		return
	}
	if err := b.prefs.Set(ctx, PrefLastThread, threadID); err != nil {
		b.logger.Warn("store preference", "key", PrefLastThread, "err", err)
	}
}

// Close cancels any in-flight load.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}
