package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Known structured summary keys.
const (
	KeyIssueType              = "issue_type"
	KeyCurrentStatus          = "current_status"
	KeyRecommendedDisposition = "recommended_disposition"
	KeyCRMSnapshot            = "crm_snapshot"
	KeyFaithfulnessWarnings   = "faithfulness_warnings"
)

// Fields is the structured part of a summary. Known keys are typed; any
// other key the backend sends is kept verbatim in Extra. A nil pointer (or
// nil slice) means the key is absent. A known key whose value has an
// unexpected JSON type is kept in Extra instead of failing the decode.
type Fields struct {
	IssueType              *string
	CurrentStatus          *string
	RecommendedDisposition *string
	CRMSnapshot            *CRMSnapshot
	FaithfulnessWarnings   []string
	Extra                  map[string]json.RawMessage
}

// CRMSnapshot is the CRM context captured by the generator. It is replaced
// as a whole by overlays, never merged key by key.
type CRMSnapshot struct {
	Policy         *string
	OrderStatus    *string
	StockAvailable *bool
	Extra          map[string]json.RawMessage
}

// Len reports how many keys are present.
func (f Fields) Len() int {
	n := len(f.Extra)
	if f.IssueType != nil {
		n++
	}
	if f.CurrentStatus != nil {
		n++
	}
	if f.RecommendedDisposition != nil {
		n++
	}
	if f.CRMSnapshot != nil {
		n++
	}
	if f.FaithfulnessWarnings != nil {
		n++
	}
	return n
}

// Clone returns a deep copy that shares no memory with f.
func (f Fields) Clone() Fields {
	out := Fields{
		IssueType:              cloneString(f.IssueType),
		CurrentStatus:          cloneString(f.CurrentStatus),
		RecommendedDisposition: cloneString(f.RecommendedDisposition),
		Extra:                  cloneRawMap(f.Extra),
	}
	if f.CRMSnapshot != nil {
		snap := f.CRMSnapshot.Clone()
		out.CRMSnapshot = &snap
	}
	if f.FaithfulnessWarnings != nil {
		out.FaithfulnessWarnings = append([]string{}, f.FaithfulnessWarnings...)
	}
	return out
}

// ClearKey removes a key whether it is stored typed or in Extra.
func (f *Fields) ClearKey(key string) {
	switch key {
	case KeyIssueType:
		f.IssueType = nil
	case KeyCurrentStatus:
		f.CurrentStatus = nil
	case KeyRecommendedDisposition:
		f.RecommendedDisposition = nil
	case KeyCRMSnapshot:
		f.CRMSnapshot = nil
	case KeyFaithfulnessWarnings:
		f.FaithfulnessWarnings = nil
	}
	delete(f.Extra, key)
}

// Text returns the string value of a typed key, or "" when absent.
func (f Fields) Text(key string) string {
	var p *string
	switch key {
	case KeyIssueType:
		p = f.IssueType
	case KeyCurrentStatus:
		p = f.CurrentStatus
	case KeyRecommendedDisposition:
		p = f.RecommendedDisposition
	}
	if p == nil {
		return ""
	}
	return *p
}

// MarshalJSON writes known and extra keys as one flat object.
func (f Fields) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, f.Len())
	for k, v := range f.Extra {
		out[k] = v
	}
	if f.IssueType != nil {
		out[KeyIssueType] = *f.IssueType
	}
	if f.CurrentStatus != nil {
		out[KeyCurrentStatus] = *f.CurrentStatus
	}
	if f.RecommendedDisposition != nil {
		out[KeyRecommendedDisposition] = *f.RecommendedDisposition
	}
	if f.CRMSnapshot != nil {
		out[KeyCRMSnapshot] = f.CRMSnapshot
	}
	if f.FaithfulnessWarnings != nil {
		out[KeyFaithfulnessWarnings] = f.FaithfulnessWarnings
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts any JSON object; null yields empty Fields.
func (f *Fields) UnmarshalJSON(data []byte) error {
	*f = Fields{}
	if isNull(data) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}

	f.IssueType = takeString(raw, KeyIssueType)
	f.CurrentStatus = takeString(raw, KeyCurrentStatus)
	f.RecommendedDisposition = takeString(raw, KeyRecommendedDisposition)

	if v, ok := raw[KeyCRMSnapshot]; ok {
		if isNull(v) {
			delete(raw, KeyCRMSnapshot)
		} else {
			var snap CRMSnapshot
			if err := json.Unmarshal(v, &snap); err == nil {
				f.CRMSnapshot = &snap
				delete(raw, KeyCRMSnapshot)
			}
		}
	}

	if v, ok := raw[KeyFaithfulnessWarnings]; ok {
		if isNull(v) {
			delete(raw, KeyFaithfulnessWarnings)
		} else {
			var warnings []string
			if err := json.Unmarshal(v, &warnings); err == nil {
				if warnings == nil {
					warnings = []string{}
				}
				f.FaithfulnessWarnings = warnings
				delete(raw, KeyFaithfulnessWarnings)
			}
		}
	}

	for k, v := range raw {
		if isNull(v) {
			continue
		}
		if f.Extra == nil {
			f.Extra = make(map[string]json.RawMessage, len(raw))
		}
		f.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return nil
}

// Clone returns a deep copy of the snapshot.
func (s CRMSnapshot) Clone() CRMSnapshot {
	out := CRMSnapshot{
		Policy:      cloneString(s.Policy),
		OrderStatus: cloneString(s.OrderStatus),
		Extra:       cloneRawMap(s.Extra),
	}
	if s.StockAvailable != nil {
		v := *s.StockAvailable
		out.StockAvailable = &v
	}
	return out
}

// MarshalJSON writes the snapshot as a flat object.
func (s CRMSnapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+3)
	for k, v := range s.Extra {
		out[k] = v
	}
	if s.Policy != nil {
		out["policy"] = *s.Policy
	}
	if s.OrderStatus != nil {
		out["order_status"] = *s.OrderStatus
	}
	if s.StockAvailable != nil {
		out["stock_available"] = *s.StockAvailable
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a snapshot object, keeping unknown keys in Extra.
func (s *CRMSnapshot) UnmarshalJSON(data []byte) error {
	*s = CRMSnapshot{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode crm snapshot: %w", err)
	}
	s.Policy = takeString(raw, "policy")
	s.OrderStatus = takeString(raw, "order_status")
	if v, ok := raw["stock_available"]; ok {
		var b bool
		if isNull(v) {
			delete(raw, "stock_available")
		} else if err := json.Unmarshal(v, &b); err == nil {
			s.StockAvailable = &b
			delete(raw, "stock_available")
		}
	}
	for k, v := range raw {
		if isNull(v) {
			continue
		}
		if s.Extra == nil {
			s.Extra = make(map[string]json.RawMessage, len(raw))
		}
		s.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return nil
}

// StockLabel renders stock availability the way the agent UI shows it.
func (s CRMSnapshot) StockLabel() string {
	if s.StockAvailable != nil {
		if *s.StockAvailable {
			return "true"
		}
		return "false"
	}
	if v, ok := s.Extra["stock_available"]; ok {
		var text string
		if err := json.Unmarshal(v, &text); err == nil {
			return text
		}
		return string(v)
	}
	return "unknown"
}

// StringPtr is a small helper for building optional fields.
func StringPtr(s string) *string {
	return &s
}

// takeString removes key from raw when it holds a JSON string or null.
// Values of any other type stay in raw and end up in Extra.
func takeString(raw map[string]json.RawMessage, key string) *string {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	if isNull(v) {
		delete(raw, key)
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil
	}
	delete(raw, key)
	return &s
}

func isNull(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneRawMap(in map[string]json.RawMessage) map[string]json.RawMessage {
	if in == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
