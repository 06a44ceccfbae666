package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/ports"
)

const (
	userAgent       = "sdmdesk/1.0"
	maxResponseSize = 8 << 20

	opGenerate = "generate summary"
)

// Client implements ports.SummaryStore over the summary desk HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var _ ports.SummaryStore = (*Client)(nil)

// NewClient builds a client for baseURL. A zero timeout means requests
// wait until the context is done.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout}, logger)
}

// NewClientWithHTTP reuses an existing http.Client (tests pass httptest's).
func NewClientWithHTTP(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// BaseURL reports the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListThreads returns threads in display order.
func (c *Client) ListThreads(ctx context.Context) ([]domain.Thread, error) {
	var threads []domain.Thread
	if err := c.do(ctx, "list threads", http.MethodGet, "/api/threads/", nil, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// GetThread fetches one thread with its messages.
func (c *Client) GetThread(ctx context.Context, threadID string) (domain.Thread, error) {
	var thread domain.Thread
	if err := c.do(ctx, "get thread", http.MethodGet, threadPath(threadID, ""), nil, &thread); err != nil {
		return domain.Thread{}, err
	}
	return thread, nil
}

// GetSummary fetches the summary record; a missing record is not an error.
func (c *Client) GetSummary(ctx context.Context, threadID string) (*domain.SummaryRecord, error) {
	var raw json.RawMessage
	err := c.do(ctx, "get summary", http.MethodGet, threadPath(threadID, "summary/"), nil, &raw)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord("get summary", raw)
}

// GenerateSummary asks the backend for a fresh draft.
func (c *Client) GenerateSummary(ctx context.Context, threadID, credentialToken string) (*domain.SummaryRecord, error) {
	payload := map[string]any{"thread_id": threadID}
	if credentialToken != "" {
		payload["llm_token"] = credentialToken
	}
	return c.mutate(ctx, opGenerate, "/api/summarize/", payload)
}

// SaveEdit stores agent text and the full effective field set.
func (c *Client) SaveEdit(ctx context.Context, threadID, summaryText string, fields domain.Fields) (*domain.SummaryRecord, error) {
	payload := map[string]any{
		"edited_summary": summaryText,
		"edited_fields":  fields,
	}
	return c.mutate(ctx, "save edit", threadPath(threadID, "save-edit/"), payload)
}

// Approve freezes the summary under approverID.
func (c *Client) Approve(ctx context.Context, threadID, approverID string) (*domain.SummaryRecord, error) {
	return c.mutate(ctx, "approve", threadPath(threadID, "approve/"), map[string]any{"approver": approverID})
}

// PostCRMNote sends a note to the CRM; the summary record is untouched.
func (c *Client) PostCRMNote(ctx context.Context, threadID, note string, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}
	payload := map[string]any{
		"thread_id": threadID,
		"note":      note,
		"metadata":  metadata,
	}
	return c.do(ctx, "post crm note", http.MethodPost, "/api/crm-note/", payload, nil)
}

// ResetOne clears the summary of one thread.
func (c *Client) ResetOne(ctx context.Context, threadID string) error {
	return c.do(ctx, "reset thread", http.MethodPost, "/api/admin-reset/", map[string]any{"thread_id": threadID}, nil)
}

// ResetAll clears every summary on the backend.
func (c *Client) ResetAll(ctx context.Context) error {
	return c.do(ctx, "reset all", http.MethodPost, "/api/admin-reset/", map[string]any{}, nil)
}

func (c *Client) mutate(ctx context.Context, op, path string, payload any) (*domain.SummaryRecord, error) {
	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodPost, path, payload, &raw); err != nil {
		return nil, err
	}
	rec, err := decodeRecord(op, raw)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &domain.StoreError{Kind: domain.ErrTransport, Op: op, Message: "empty summary in response"}
	}
	return rec, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any, v any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return &domain.StoreError{Kind: domain.ErrValidation, Op: op, Message: fmt.Sprintf("marshal payload: %v", err)}
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &domain.StoreError{Kind: domain.ErrTransport, Op: op, Message: fmt.Sprintf("new request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.StoreError{Kind: domain.ErrTransport, Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &domain.StoreError{Kind: domain.ErrTransport, Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err)}
	}

	c.debug("store call", "op", op, "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.StoreError{
			Kind:    classify(op, resp.StatusCode),
			Op:      op,
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, text),
		}
	}

	if v == nil {
		return nil
	}
	if len(bytes.TrimSpace(text)) == 0 {
		text = []byte("null")
	}
	if err := json.Unmarshal(text, v); err != nil {
		return &domain.StoreError{
			Kind:    domain.ErrTransport,
			Op:      op,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("decode response: %v", err),
		}
	}
	return nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func decodeRecord(op string, raw json.RawMessage) (*domain.SummaryRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var rec domain.SummaryRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return nil, &domain.StoreError{Kind: domain.ErrTransport, Op: op, Message: fmt.Sprintf("decode summary: %v", err)}
	}
	return &rec, nil
}

func threadPath(threadID, suffix string) string {
	return "/api/threads/" + url.PathEscape(threadID) + "/" + suffix
}

func classify(op string, status int) error {
	switch {
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case op == opGenerate && status >= http.StatusBadRequest:
		return domain.ErrGenerationFailure
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return domain.ErrValidation
	default:
		return domain.ErrTransport
	}
}

// errorMessage prefers a structured "detail" (or "error") from a JSON
// payload, then the raw body, then the bare status.
func errorMessage(status int, body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "error"} {
			raw, ok := payload[key]
			if !ok {
				continue
			}
			var text string
			if err := json.Unmarshal(raw, &text); err == nil && strings.TrimSpace(text) != "" {
				return strings.TrimSpace(text)
			}
			if compact := strings.TrimSpace(string(raw)); compact != "" && compact != "null" {
				return compact
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}
