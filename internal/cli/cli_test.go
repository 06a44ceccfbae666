package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/app"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/infrastructure/storage"
)

// deskServer serves one thread and keeps its summary in memory.
type deskServer struct {
	mu      sync.Mutex
	summary map[string]any
	posted  []map[string]any
}

func (d *deskServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	thread := map[string]any{
		"thread_id": "T-1",
		"subject":   "Refund request",
		"topic":     "refund",
		"order_id":  "O-9",
		"product":   "Kettle",
		"messages": []map[string]any{
			{"id": "m1", "sender": "customer@example.com", "timestamp": "2025-03-01T10:00:00Z", "body": "<p>Hello <b>team</b></p>"},
		},
	}
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	readJSON := func(r *http.Request) map[string]any {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode %s body: %v", r.URL.Path, err)
		}
		d.mu.Lock()
		d.posted = append(d.posted, body)
		d.mu.Unlock()
		return body
	}

	mux.HandleFunc("GET /api/threads/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{thread})
	})
	mux.HandleFunc("GET /api/threads/T-1/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, thread)
	})
	mux.HandleFunc("GET /api/threads/T-1/summary/", func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.summary == nil {
			http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
			return
		}
		writeJSON(w, d.summary)
	})
	mux.HandleFunc("POST /api/summarize/", func(w http.ResponseWriter, r *http.Request) {
		readJSON(r)
		d.mu.Lock()
		d.summary = map[string]any{
			"thread_id":     "T-1",
			"draft_summary": "Customer wants a refund.",
			"draft_fields":  map[string]any{"issue_type": "refund"},
		}
		out := d.summary
		d.mu.Unlock()
		writeJSON(w, out)
	})
	mux.HandleFunc("POST /api/threads/T-1/approve/", func(w http.ResponseWriter, r *http.Request) {
		body := readJSON(r)
		d.mu.Lock()
		d.summary["approved_summary"] = d.summary["draft_summary"]
		d.summary["approved_fields"] = d.summary["draft_fields"]
		d.summary["approver"] = body["approver"]
		out := d.summary
		d.mu.Unlock()
		writeJSON(w, out)
	})
	mux.HandleFunc("POST /api/admin-reset/", func(w http.ResponseWriter, r *http.Request) {
		readJSON(r)
		d.mu.Lock()
		d.summary = nil
		d.mu.Unlock()
		writeJSON(w, map[string]any{"ok": true})
	})
	return mux
}

func (d *deskServer) lastPosted() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.posted) == 0 {
		return nil
	}
	return d.posted[len(d.posted)-1]
}

type harness struct {
	server    *deskServer
	baseURL   string
	prefsPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	d := &deskServer{}
	srv := httptest.NewServer(d.handler(t))
	t.Cleanup(srv.Close)

	prefsPath := filepath.Join(t.TempDir(), "prefs.db")
	t.Setenv("SDMDESK_CONFIG", "")
	t.Setenv("SDM_PREFERENCES_PATH", prefsPath)
	t.Setenv("SDM_APPROVER", "")
	t.Setenv("SDM_LLM_TOKEN", "")
	t.Setenv("SDM_LOG_LEVEL", "error")
	return &harness{server: d, baseURL: srv.URL, prefsPath: prefsPath}
}

// run executes one command line. stdin answers confirmation prompts.
func (h *harness) run(t *testing.T, stdin string, interactive bool, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(&rootOptions{
		stdin:       strings.NewReader(stdin),
		interactive: func() bool { return interactive },
	})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--base-url", h.baseURL}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestThreadsCommand(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", false, "threads")
	if err != nil {
		t.Fatalf("threads: %v", err)
	}
	for _, want := range []string{"ID", "SUBJECT", "T-1", "Refund request", "O-9"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShowCommandRendersBodyAndState(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", false, "show", "T-1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Refund request", "Hello team", "Summary [NONE]", "Actions: generate"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateAndApprove(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", false, "generate", "T-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "Draft generated") || !strings.Contains(out, "T-1: DRAFT") {
		t.Fatalf("generate output:\n%s", out)
	}
	if body := h.server.lastPosted(); body["thread_id"] != "T-1" {
		t.Fatalf("summarize body = %v", body)
	}
	if _, ok := h.server.lastPosted()["llm_token"]; ok {
		t.Fatalf("llm_token sent without a token")
	}

	out, err = h.run(t, "", false, "approve", "T-1", "--approver", "alice")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !strings.Contains(out, "T-1: APPROVED") {
		t.Fatalf("approve output:\n%s", out)
	}
	if got := h.server.lastPosted()["approver"]; got != "alice" {
		t.Fatalf("approver sent = %v, want alice", got)
	}

	prefs, err := storage.OpenPreferences(context.Background(), h.prefsPath)
	if err != nil {
		t.Fatalf("open preferences: %v", err)
	}
	defer prefs.Close()
	got, ok, err := prefs.Get(context.Background(), app.PrefApprover)
	if err != nil || !ok || got != "alice" {
		t.Fatalf("remembered approver = %q, %v, %v", got, ok, err)
	}

	if _, err := h.run(t, "", false, "approve", "T-1"); err == nil {
		t.Fatalf("second approve succeeded, want precondition error")
	}
}

func TestEditRequiresInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", false, "edit", "T-1")
	if err == nil || !strings.Contains(err.Error(), "nothing to save") {
		t.Fatalf("edit without flags = %v", err)
	}
}

func TestResetNeedsConfirmation(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run(t, "", false, "reset", "T-1"); err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("non-interactive reset = %v, want refusal", err)
	}
	if h.server.lastPosted() != nil {
		t.Fatalf("store called without confirmation")
	}

	out, err := h.run(t, "n\n", true, "reset", "T-1")
	if err != nil || !strings.Contains(out, "Cancelled.") {
		t.Fatalf("declined reset = %q, %v", out, err)
	}

	out, err = h.run(t, "y\n", true, "reset", "T-1")
	if err != nil {
		t.Fatalf("confirmed reset: %v", err)
	}
	if !strings.Contains(out, "Summary cleared for T-1.") {
		t.Fatalf("reset output:\n%s", out)
	}
	if got := h.server.lastPosted()["thread_id"]; got != "T-1" {
		t.Fatalf("reset body thread_id = %v", got)
	}

	out, err = h.run(t, "", false, "reset", "--all", "--yes")
	if err != nil {
		t.Fatalf("reset all: %v", err)
	}
	if !strings.Contains(out, "All summaries cleared.") {
		t.Fatalf("reset all output:\n%s", out)
	}
	if body := h.server.lastPosted(); len(body) != 0 {
		t.Fatalf("reset all body = %v, want {}", body)
	}
}
