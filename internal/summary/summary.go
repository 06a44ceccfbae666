// Package summary derives the lifecycle state of a thread summary and the
// values the agent UI is allowed to show and act on. Everything here is
// pure: the same record always resolves to the same Resolution.
package summary

import "github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"

// Summary is the lifecycle state together with the data valid in it.
// Implementations are None, Draft, Edited and Approved.
type Summary interface {
	State() domain.State
	sealed()
}

// None is a thread without a usable summary.
type None struct{}

// Draft is generator output that nobody has touched yet.
type Draft struct {
	Text   string
	Fields domain.Fields
}

// Edited is a draft with agent overrides layered on top.
type Edited struct {
	Draft     Draft
	Text      string
	Overrides domain.Fields
}

// Approved is the frozen snapshot taken at approval time.
type Approved struct {
	Text     string
	Fields   domain.Fields
	Approver string
}

func (None) State() domain.State     { return domain.StateNone }
func (Draft) State() domain.State    { return domain.StateDraft }
func (Edited) State() domain.State   { return domain.StateEdited }
func (Approved) State() domain.State { return domain.StateApproved }

func (None) sealed()     {}
func (Draft) sealed()    {}
func (Edited) sealed()   {}
func (Approved) sealed() {}

// Resolution is everything derived from one record.
type Resolution struct {
	Summary Summary
	State   domain.State
	Text    string
	Fields  domain.Fields

	CanGenerate bool
	CanEdit     bool
	CanApprove  bool
	CanPost     bool
}

// Resolve computes the lifecycle view of rec. A nil record is NONE.
func Resolve(rec *domain.SummaryRecord) Resolution {
	variant := classify(rec)

	res := Resolution{
		Summary: variant,
		State:   variant.State(),
		Text:    effectiveText(rec),
		Fields:  effectiveFields(variant),
	}

	hasDraft := rec.HasDraftSummary()
	res.CanGenerate = res.State == domain.StateNone || !hasDraft
	res.CanEdit = res.State != domain.StateApproved && hasDraft
	res.CanApprove = res.State != domain.StateApproved && (rec.HasEditedSummary() || hasDraft)
	res.CanPost = res.Text != ""
	return res
}

func classify(rec *domain.SummaryRecord) Summary {
	switch {
	case rec.HasApprovedSummary():
		return Approved{
			Text:     *rec.ApprovedSummary,
			Fields:   fieldsOf(rec.ApprovedFields),
			Approver: stringOf(rec.Approver),
		}
	case rec.HasEditedSummary() || rec.HasEditedFields():
		return Edited{
			Draft:     Draft{Text: stringOf(rec.DraftSummary), Fields: fieldsOf(rec.DraftFields)},
			Text:      stringOf(rec.EditedSummary),
			Overrides: fieldsOf(rec.EditedFields),
		}
	case rec.HasDraftSummary():
		return Draft{Text: *rec.DraftSummary, Fields: fieldsOf(rec.DraftFields)}
	default:
		return None{}
	}
}

// effectiveText follows approved > edited > draft > "".
func effectiveText(rec *domain.SummaryRecord) string {
	switch {
	case rec.HasApprovedSummary():
		return *rec.ApprovedSummary
	case rec.HasEditedSummary():
		return *rec.EditedSummary
	case rec.HasDraftSummary():
		return *rec.DraftSummary
	default:
		return ""
	}
}

func effectiveFields(s Summary) domain.Fields {
	switch v := s.(type) {
	case Approved:
		return v.Fields.Clone()
	case Edited:
		return Overlay(v.Draft.Fields, v.Overrides)
	case Draft:
		return v.Fields.Clone()
	default:
		return domain.Fields{}
	}
}

func fieldsOf(f *domain.Fields) domain.Fields {
	if f == nil {
		return domain.Fields{}
	}
	return f.Clone()
}

func stringOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
