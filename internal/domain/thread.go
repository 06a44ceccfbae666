package domain

import (
	"strings"
	"time"
)

// Message is a single email inside a thread. Slice order is arrival order.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
	Body      string `json:"body"`
}

// ParsedTime interprets the server timestamp; ok is false when it is not RFC 3339.
func (m Message) ParsedTime() (time.Time, bool) {
	ts := strings.TrimSpace(m.Timestamp)
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, ts); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Thread is a customer support conversation with its order context.
type Thread struct {
	ThreadID string    `json:"thread_id"`
	Subject  string    `json:"subject"`
	Topic    string    `json:"topic"`
	OrderID  string    `json:"order_id"`
	Product  string    `json:"product"`
	Messages []Message `json:"messages"`
}

// Title returns the subject, falling back to the topic.
func (t Thread) Title() string {
	if s := strings.TrimSpace(t.Subject); s != "" {
		return s
	}
	return t.Topic
}
