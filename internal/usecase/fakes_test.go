package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
)

type fakeStore struct {
	listThreadsFn     func(context.Context) ([]domain.Thread, error)
	getThreadFn       func(context.Context, string) (domain.Thread, error)
	getSummaryFn      func(context.Context, string) (*domain.SummaryRecord, error)
	generateSummaryFn func(context.Context, string, string) (*domain.SummaryRecord, error)
	saveEditFn        func(context.Context, string, string, domain.Fields) (*domain.SummaryRecord, error)
	approveFn         func(context.Context, string, string) (*domain.SummaryRecord, error)
	postCRMNoteFn     func(context.Context, string, string, map[string]any) error
	resetOneFn        func(context.Context, string) error
	resetAllFn        func(context.Context) error
}

func (f *fakeStore) ListThreads(ctx context.Context) ([]domain.Thread, error) {
	if f.listThreadsFn != nil {
		return f.listThreadsFn(ctx)
	}
	return nil, nil
}
func (f *fakeStore) GetThread(ctx context.Context, threadID string) (domain.Thread, error) {
	if f.getThreadFn != nil {
		return f.getThreadFn(ctx, threadID)
	}
	return domain.Thread{ThreadID: threadID, Subject: "Subject " + threadID}, nil
}
func (f *fakeStore) GetSummary(ctx context.Context, threadID string) (*domain.SummaryRecord, error) {
	if f.getSummaryFn != nil {
		return f.getSummaryFn(ctx, threadID)
	}
	return nil, nil
}
func (f *fakeStore) GenerateSummary(ctx context.Context, threadID, token string) (*domain.SummaryRecord, error) {
	if f.generateSummaryFn != nil {
		return f.generateSummaryFn(ctx, threadID, token)
	}
	return nil, nil
}
func (f *fakeStore) SaveEdit(ctx context.Context, threadID, text string, fields domain.Fields) (*domain.SummaryRecord, error) {
	if f.saveEditFn != nil {
		return f.saveEditFn(ctx, threadID, text, fields)
	}
	return nil, nil
}
func (f *fakeStore) Approve(ctx context.Context, threadID, approver string) (*domain.SummaryRecord, error) {
	if f.approveFn != nil {
		return f.approveFn(ctx, threadID, approver)
	}
	return nil, nil
}
func (f *fakeStore) PostCRMNote(ctx context.Context, threadID, note string, metadata map[string]any) error {
	if f.postCRMNoteFn != nil {
		return f.postCRMNoteFn(ctx, threadID, note, metadata)
	}
	return nil
}
func (f *fakeStore) ResetOne(ctx context.Context, threadID string) error {
	if f.resetOneFn != nil {
		return f.resetOneFn(ctx, threadID)
	}
	return nil
}
func (f *fakeStore) ResetAll(ctx context.Context) error {
	if f.resetAllFn != nil {
		return f.resetAllFn(ctx)
	}
	return nil
}

type noticeRecord struct {
	level string
	text  string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []noticeRecord
}

func (n *recordingNotifier) add(level, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, noticeRecord{level: level, text: text})
}

func (n *recordingNotifier) Info(text string)    { n.add("info", text) }
func (n *recordingNotifier) Success(text string) { n.add("success", text) }
func (n *recordingNotifier) Warn(text string)    { n.add("warn", text) }
func (n *recordingNotifier) Error(text string)   { n.add("error", text) }

func (n *recordingNotifier) last() noticeRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return noticeRecord{}
	}
	return n.notices[len(n.notices)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

type memoryPrefs struct {
	mu     sync.Mutex
	values map[string]string
}

func (p *memoryPrefs) Get(_ context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok, nil
}

func (p *memoryPrefs) Set(_ context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.values == nil {
		p.values = map[string]string{}
	}
	p.values[key] = value
	return nil
}

type htmlNotes struct{}

func (htmlNotes) RenderHTML(note string) (string, error) { return "<p>" + note + "</p>", nil }

func record(t *testing.T, raw string) *domain.SummaryRecord {
	t.Helper()
	var rec domain.SummaryRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return &rec
}

const (
	draftJSON = `{
		"draft_summary":"Customer reports a late parcel.",
		"draft_fields":{"issue_type":"delivery","current_status":"Waiting on carrier","recommended_disposition":"reship",
			"crm_snapshot":{"policy":"standard","order_status":"shipped","stock_available":true}}
	}`
	editedJSON = `{
		"draft_summary":"Customer reports a late parcel.",
		"draft_fields":{"issue_type":"delivery","current_status":"Waiting on carrier","recommended_disposition":"reship"},
		"edited_summary":"Parcel lost; reship approved.",
		"edited_fields":{"current_status":"Resolved"}
	}`
	approvedJSON = `{
		"draft_summary":"Customer reports a late parcel.",
		"edited_summary":"Parcel lost; reship approved.",
		"approved_summary":"Parcel lost; reship approved.",
		"approved_fields":{"issue_type":"delivery","current_status":"Resolved"},
		"approver":"santosh.b"
	}`
)
