package domain

// State enumerates the summary lifecycle.
type State string

const (
	StateNone     State = "NONE"
	StateDraft    State = "DRAFT"
	StateEdited   State = "EDITED"
	StateApproved State = "APPROVED"
)

// SummaryRecord is the store's representation of a thread summary. Which
// lifecycle state it is in is derived from the populated fields, never
// from ServerState.
type SummaryRecord struct {
	ThreadID        string  `json:"thread_id,omitempty"`
	ServerState     string  `json:"state,omitempty"`
	DraftSummary    *string `json:"draft_summary,omitempty"`
	DraftFields     *Fields `json:"draft_fields,omitempty"`
	EditedSummary   *string `json:"edited_summary,omitempty"`
	EditedFields    *Fields `json:"edited_fields,omitempty"`
	ApprovedSummary *string `json:"approved_summary,omitempty"`
	ApprovedFields  *Fields `json:"approved_fields,omitempty"`
	Approver        *string `json:"approver,omitempty"`
}

// HasDraftSummary reports whether generated text is present.
func (r *SummaryRecord) HasDraftSummary() bool {
	return r != nil && present(r.DraftSummary)
}

// HasEditedSummary reports whether agent-edited text is present.
func (r *SummaryRecord) HasEditedSummary() bool {
	return r != nil && present(r.EditedSummary)
}

// HasEditedFields reports whether agent field overrides are present.
func (r *SummaryRecord) HasEditedFields() bool {
	return r != nil && r.EditedFields != nil && r.EditedFields.Len() > 0
}

// HasApprovedSummary reports whether the record has been approved.
func (r *SummaryRecord) HasApprovedSummary() bool {
	return r != nil && present(r.ApprovedSummary)
}

// Clone returns a deep copy of r; nil stays nil.
func (r *SummaryRecord) Clone() *SummaryRecord {
	if r == nil {
		return nil
	}
	out := &SummaryRecord{
		ThreadID:        r.ThreadID,
		ServerState:     r.ServerState,
		DraftSummary:    cloneString(r.DraftSummary),
		EditedSummary:   cloneString(r.EditedSummary),
		ApprovedSummary: cloneString(r.ApprovedSummary),
		Approver:        cloneString(r.Approver),
	}
	out.DraftFields = cloneFields(r.DraftFields)
	out.EditedFields = cloneFields(r.EditedFields)
	out.ApprovedFields = cloneFields(r.ApprovedFields)
	return out
}

// present treats only null and "" as absent; whitespace is still text.
func present(s *string) bool {
	return s != nil && *s != ""
}

func cloneFields(f *Fields) *Fields {
	if f == nil {
		return nil
	}
	c := f.Clone()
	return &c
}
