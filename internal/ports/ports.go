package ports

import (
	"context"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
)

// SummaryStore is the remote source of truth for threads and summaries.
type SummaryStore interface {
	ListThreads(ctx context.Context) ([]domain.Thread, error)
	GetThread(ctx context.Context, threadID string) (domain.Thread, error)
	// GetSummary returns nil, nil when the thread has no summary yet.
	GetSummary(ctx context.Context, threadID string) (*domain.SummaryRecord, error)
	// GenerateSummary asks the backend generator for a draft. An empty
	// token selects the deterministic fallback generator.
	GenerateSummary(ctx context.Context, threadID, credentialToken string) (*domain.SummaryRecord, error)
	SaveEdit(ctx context.Context, threadID, summaryText string, fields domain.Fields) (*domain.SummaryRecord, error)
	Approve(ctx context.Context, threadID, approverID string) (*domain.SummaryRecord, error)
	PostCRMNote(ctx context.Context, threadID, note string, metadata map[string]any) error
	ResetOne(ctx context.Context, threadID string) error
	ResetAll(ctx context.Context) error
}

// PreferenceRepository remembers small per-agent settings between runs.
type PreferenceRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// BodyRenderer turns a raw email body (often HTML) into display text.
type BodyRenderer interface {
	Render(body string) string
}

// NoteRenderer produces the rich rendition attached to CRM notes.
type NoteRenderer interface {
	RenderHTML(note string) (string, error)
}

// Notifier surfaces transient feedback to the agent.
type Notifier interface {
	Info(text string)
	Success(text string)
	Warn(text string)
	Error(text string)
}
