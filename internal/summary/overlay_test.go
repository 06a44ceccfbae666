package summary

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/domain"
)

func decodeFields(t *testing.T, raw string) domain.Fields {
	t.Helper()
	var f domain.Fields
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	return f
}

func TestOverlayEditedKeysWin(t *testing.T) {
	t.Parallel()

	base := decodeFields(t, `{"issue_type": "refund", "current_status": "Open", "channel": "email"}`)
	over := decodeFields(t, `{"current_status": "In Progress", "channel": "phone"}`)

	got := Overlay(base, over)
	want := decodeFields(t, `{"issue_type": "refund", "current_status": "In Progress", "channel": "phone"}`)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("overlay mismatch (-want +got):\n%s", diff)
	}
}

func TestOverlayReplacesSnapshotWhole(t *testing.T) {
	t.Parallel()

	base := decodeFields(t, `{"crm_snapshot": {"policy": "30-day", "order_status": "shipped", "stock_available": true}}`)
	over := decodeFields(t, `{"crm_snapshot": {"order_status": "delivered"}}`)

	got := Overlay(base, over)
	if got.CRMSnapshot == nil {
		t.Fatalf("snapshot missing")
	}
	if got.CRMSnapshot.Policy != nil || got.CRMSnapshot.StockAvailable != nil {
		t.Fatalf("snapshot must not be merged sub-key by sub-key: %+v", got.CRMSnapshot)
	}
	if got.CRMSnapshot.OrderStatus == nil || *got.CRMSnapshot.OrderStatus != "delivered" {
		t.Fatalf("unexpected order status: %+v", got.CRMSnapshot)
	}
}

func TestOverlayIsIdempotent(t *testing.T) {
	t.Parallel()

	base := decodeFields(t, `{
		"issue_type": "refund",
		"recommended_disposition": "refund",
		"faithfulness_warnings": ["amount not in thread"],
		"crm_snapshot": {"policy": "30-day"}
	}`)
	over := decodeFields(t, `{"current_status": "In Progress", "faithfulness_warnings": [], "priority": 2}`)

	once := Overlay(base, over)
	twice := Overlay(once, over)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("overlay is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestOverlayDoesNotAliasInputs(t *testing.T) {
	t.Parallel()

	base := decodeFields(t, `{"issue_type": "refund", "crm_snapshot": {"policy": "30-day"}}`)
	over := decodeFields(t, `{"current_status": "Open"}`)

	got := Overlay(base, over)
	*got.IssueType = "changed"
	*got.CRMSnapshot.Policy = "changed"
	*got.CurrentStatus = "changed"

	if *base.IssueType != "refund" || *base.CRMSnapshot.Policy != "30-day" {
		t.Fatalf("base was mutated: %+v", base)
	}
	if *over.CurrentStatus != "Open" {
		t.Fatalf("overrides were mutated: %+v", over)
	}
}

func TestOverlayTypedOverrideClearsMistypedBase(t *testing.T) {
	t.Parallel()

	base := decodeFields(t, `{"issue_type": 7}`)
	if base.IssueType != nil || base.Extra["issue_type"] == nil {
		t.Fatalf("mistyped known key should stay in Extra: %+v", base)
	}
	got := Overlay(base, decodeFields(t, `{"issue_type": "refund"}`))
	if _, ok := got.Extra["issue_type"]; ok {
		t.Fatalf("stale extra value survived overlay: %+v", got.Extra)
	}
	if got.Text(domain.KeyIssueType) != "refund" {
		t.Fatalf("unexpected issue type %q", got.Text(domain.KeyIssueType))
	}
}

func TestWithCurrentStatus(t *testing.T) {
	t.Parallel()

	effective := decodeFields(t, `{"issue_type": "refund", "current_status": "Open"}`)
	got := WithCurrentStatus(effective, "Escalated")
	if got.Text(domain.KeyCurrentStatus) != "Escalated" || got.Text(domain.KeyIssueType) != "refund" {
		t.Fatalf("unexpected merge result: %+v", got)
	}
	if effective.Text(domain.KeyCurrentStatus) != "Open" {
		t.Fatalf("input was mutated")
	}
}

func TestCurrentStatusDefault(t *testing.T) {
	t.Parallel()

	if got := CurrentStatus(domain.Fields{}); got != DefaultCurrentStatus {
		t.Fatalf("expected default status, got %q", got)
	}
	if got := CurrentStatus(domain.Fields{CurrentStatus: strp("Open")}); got != "Open" {
		t.Fatalf("expected Open, got %q", got)
	}
}
