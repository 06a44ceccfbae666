package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/notify"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/ports"
)

// Reset dialog copy.
const (
	ResetOneTitle = "Reset Current Thread"
	ResetAllTitle = "Reset ALL Threads"
	ResetAllText  = "Reset ALL threads and truncate output files? This clears drafts/edits/approvals."
)

// RefreshFunc runs after a successful reset. threadID is empty after a
// full reset.
type RefreshFunc func(ctx context.Context, threadID string)

// Admin drives the confirm-then-reset flow.
type Admin struct {
	store    ports.SummaryStore
	notifier ports.Notifier
	dialog   *notify.Dialog
	refresh  RefreshFunc
	logger   *slog.Logger
}

// NewAdmin wires the reset flow. refresh may be nil.
func NewAdmin(store ports.SummaryStore, notifier ports.Notifier, dialog *notify.Dialog, refresh RefreshFunc, logger *slog.Logger) *Admin {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &Admin{
		store:    store,
		notifier: notifier,
		dialog:   dialog,
		refresh:  refresh,
		logger:   logger.With("component", "admin"),
	}
}

// RequestResetOne asks for confirmation before clearing threadID. With no
// selection it only tells the agent to pick a thread.
func (a *Admin) RequestResetOne(threadID string) bool {
	if threadID == "" {
		a.notifier.Info("Select a thread first.")
		return false
	}
	a.dialog.Open(ResetOneTitle, fmt.Sprintf("Reset ONLY %s?", threadID), func(ctx context.Context) error {
		return a.ResetOne(ctx, threadID)
	})
	return true
}

// RequestResetAll asks for confirmation before clearing every thread.
func (a *Admin) RequestResetAll() bool {
	a.dialog.Open(ResetAllTitle, ResetAllText, func(ctx context.Context) error {
		return a.ResetAll(ctx)
	})
	return true
}

// ResetOne clears one summary without asking.
func (a *Admin) ResetOne(ctx context.Context, threadID string) error {
	if err := a.store.ResetOne(ctx, threadID); err != nil {
		a.logger.Warn("reset failed", "thread_id", threadID, "err", err)
		a.notifier.Error("Reset failed: " + domain.Describe(err))
		return fmt.Errorf("reset %s: %w", threadID, err)
	}
	a.logger.Info("reset thread", "thread_id", threadID)
	a.notifier.Success(fmt.Sprintf("Summary cleared for %s.", threadID))
	if a.refresh != nil {
		a.refresh(ctx, threadID)
	}
	return nil
}

// ResetAll clears every summary without asking.
func (a *Admin) ResetAll(ctx context.Context) error {
	if err := a.store.ResetAll(ctx); err != nil {
		a.logger.Warn("reset all failed", "err", err)
		a.notifier.Error("Reset failed: " + domain.Describe(err))
		return fmt.Errorf("reset all: %w", err)
	}
	a.logger.Info("reset all threads")
	a.notifier.Success("All summaries cleared. Output files truncated.")
	if a.refresh != nil {
		a.refresh(ctx, "")
	}
	return nil
}
