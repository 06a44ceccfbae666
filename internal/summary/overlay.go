package summary

import (
	"encoding/json"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
)

// Overlay layers overrides on top of base at the key level: every key the
// overrides define replaces the base value whole, every other base key is
// kept. Nested values such as crm_snapshot are never merged. The result
// shares no memory with either argument.
func Overlay(base, overrides domain.Fields) domain.Fields {
	out := base.Clone()
	over := overrides.Clone()

	for key, value := range over.Extra {
		out.ClearKey(key)
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage, len(over.Extra))
		}
		out.Extra[key] = value
	}
	if over.IssueType != nil {
		out.ClearKey(domain.KeyIssueType)
		out.IssueType = over.IssueType
	}
	if over.CurrentStatus != nil {
		out.ClearKey(domain.KeyCurrentStatus)
		out.CurrentStatus = over.CurrentStatus
	}
	if over.RecommendedDisposition != nil {
		out.ClearKey(domain.KeyRecommendedDisposition)
		out.RecommendedDisposition = over.RecommendedDisposition
	}
	if over.CRMSnapshot != nil {
		out.ClearKey(domain.KeyCRMSnapshot)
		out.CRMSnapshot = over.CRMSnapshot
	}
	if over.FaithfulnessWarnings != nil {
		out.ClearKey(domain.KeyFaithfulnessWarnings)
		out.FaithfulnessWarnings = over.FaithfulnessWarnings
	}
	return out
}

// WithCurrentStatus is the caller-side merge an agent UI performs before
// saving: the effective fields with current_status replaced.
func WithCurrentStatus(fields domain.Fields, status string) domain.Fields {
	out := fields.Clone()
	out.ClearKey(domain.KeyCurrentStatus)
	out.CurrentStatus = domain.StringPtr(status)
	return out
}

// CurrentStatus returns the status an edit form should start from.
func CurrentStatus(fields domain.Fields) string {
	if fields.CurrentStatus != nil && *fields.CurrentStatus != "" {
		return *fields.CurrentStatus
	}
	return DefaultCurrentStatus
}

// DefaultCurrentStatus is shown when no status has been recorded yet.
const DefaultCurrentStatus = "Unresolved"
