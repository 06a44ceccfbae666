package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/config"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/infrastructure/markdown"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/infrastructure/parser"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/infrastructure/storage"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/infrastructure/storeapi"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/logging"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/notify"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/ports"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/usecase"
)

// PrefApprover is the preference key remembering the last approver.
const PrefApprover = "approver"

// Application wires configuration to adapters and use cases.
type Application struct {
	Config  config.Config
	Logger  *slog.Logger
	Store   ports.SummaryStore
	Notices *notify.Center
	Dialog  *notify.Dialog
	Bodies  ports.BodyRenderer
	Prefs   ports.PreferenceRepository
	Browser *usecase.Browser
	Admin   *usecase.Admin

	deps  usecase.SessionDeps
	close func() error
}

// Options replaces adapters, mainly for tests.
type Options struct {
	Store ports.SummaryStore
	Prefs ports.PreferenceRepository
}

// New builds the application. A preferences database that cannot be
// opened is logged and skipped.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store := opts.Store
	if store == nil {
		if _, err := url.ParseRequestURI(cfg.Store.BaseURL); err != nil {
			return nil, fmt.Errorf("store base url: %w", err)
		}
		store = storeapi.NewClient(cfg.Store.BaseURL, cfg.Store.Timeout, baseLogger.With("component", "store"))
	}

	a := &Application{
		Config: cfg,
		Logger: baseLogger,
		Store:  store,
		Notices: notify.NewCenter(
			notify.WithTTL(cfg.Notifications.ToastDuration),
			notify.WithLogger(baseLogger.With("component", "notify")),
		),
		Dialog: notify.NewDialog(),
		Bodies: parser.NewBodyRenderer(),
		close:  func() error { return nil },
	}

	a.Prefs = opts.Prefs
	if a.Prefs == nil && cfg.Preferences.Path != "" {
		prefs, err := storage.OpenPreferences(ctx, cfg.Preferences.Path)
		if err != nil {
			baseLogger.Warn("preferences disabled", "path", cfg.Preferences.Path, "err", err)
		} else {
			a.Prefs = prefs
			a.close = prefs.Close
		}
	}

	a.deps = usecase.SessionDeps{
		Store:           store,
		Notifier:        a.Notices,
		Notes:           markdown.NewNoteRenderer(),
		Logger:          baseLogger,
		DefaultApprover: a.DefaultApprover(ctx),
	}
	a.Browser = usecase.NewBrowser(a.deps, a.Prefs)
	a.Admin = usecase.NewAdmin(store, a.Notices, a.Dialog, a.refreshAfterReset, baseLogger)

	return a, nil
}

// OpenSession loads one thread outside the browser, for one-shot commands.
func (a *Application) OpenSession(ctx context.Context, threadID string) (*usecase.Session, error) {
	sess := usecase.NewSession(threadID, a.deps)
	if err := sess.Load(ctx); err != nil {
		return nil, fmt.Errorf("open %s: %w", threadID, err)
	}
	return sess, nil
}

// DefaultApprover resolves the stored approver, then the configured one.
func (a *Application) DefaultApprover(ctx context.Context) string {
	if a.Prefs != nil {
		value, ok, err := a.Prefs.Get(ctx, PrefApprover)
		if err != nil {
			a.Logger.Warn("read preference", "key", PrefApprover, "err", err)
		} else if ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	if a.Config.Agent.DefaultApprover != "" {
		return a.Config.Agent.DefaultApprover
	}
	return usecase.FallbackApprover
}

// RememberApprover stores approver for later runs.
func (a *Application) RememberApprover(ctx context.Context, approver string) {
	approver = strings.TrimSpace(approver)
	if a.Prefs == nil || approver == "" {
		return
	}
	if err := a.Prefs.Set(ctx, PrefApprover, approver); err != nil {
		a.Logger.Warn("store preference", "key", PrefApprover, "err", err)
	}
}

// Close releases local resources.
func (a *Application) Close() error {
	a.Browser.Close()
	return a.close()
}

func (a *Application) refreshAfterReset(ctx context.Context, threadID string) {
	if err := a.Browser.Reload(ctx); err != nil {
		a.Logger.Warn("reload after reset", "err", err)
	}
	current := a.Browser.Current()
	if current == nil {
		return
	}
	if threadID != "" && current.ThreadID() != threadID {
		return
	}
	if _, err := a.Browser.Select(ctx, current.ThreadID()); err != nil {
		a.Logger.Warn("reselect after reset", "thread_id", current.ThreadID(), "err", err)
	}
}
