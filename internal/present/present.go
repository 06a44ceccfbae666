// Package present formats summaries and threads for people.
package present

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
	"github.com/santoshbammigatti/ce-sdm-frontend/internal/summary"
)

// CRMLine renders the CRM snapshot as "Policy: … · Order: … · <stock>".
func CRMLine(fields domain.Fields) string {
	var snap domain.CRMSnapshot
	if fields.CRMSnapshot != nil {
		snap = *fields.CRMSnapshot
	}

	policy := "No policy"
	if snap.Policy != nil && *snap.Policy != "" {
		policy = "Policy: " + *snap.Policy
	}
	order := "Order: n/a"
	if snap.OrderStatus != nil && *snap.OrderStatus != "" {
		order = "Order: " + *snap.OrderStatus
	}
	return policy + " · " + order + " · " + snap.StockLabel()
}

// MessageTime shows the server timestamp with a relative hint when it
// parses, e.g. "2025-03-01T10:00:00Z (2 hours ago)".
func MessageTime(msg domain.Message, now time.Time) string {
	t, ok := msg.ParsedTime()
	if !ok {
		return msg.Timestamp
	}
	return msg.Timestamp + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}

// Actions lists the actions the resolution allows, in button order.
func Actions(res summary.Resolution) []string {
	var out []string
	if res.CanGenerate {
		out = append(out, "generate")
	}
	if res.CanEdit {
		out = append(out, "edit")
	}
	if res.CanApprove {
		out = append(out, "approve")
	}
	if res.CanPost {
		out = append(out, "post")
	}
	return out
}

// Field returns a display value for a text field, or "-".
func Field(fields domain.Fields, key string) string {
	if v := strings.TrimSpace(fields.Text(key)); v != "" {
		return v
	}
	return "-"
}
