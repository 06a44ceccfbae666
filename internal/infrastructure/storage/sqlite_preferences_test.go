package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openTestPreferences(t *testing.T) *SQLitePreferences {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "preferences.db")
	prefs, err := OpenPreferences(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenPreferences: %v", err)
	}
	t.Cleanup(func() { _ = prefs.Close() })
	return prefs
}

func TestPreferencesRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	prefs := openTestPreferences(t)

	if _, ok, err := prefs.Get(ctx, "approver"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	if err := prefs.Set(ctx, "approver", "santosh.b"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := prefs.Set(ctx, "approver", "lead.agent"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if err := prefs.Set(ctx, "last_thread", "T-4"); err != nil {
		t.Fatalf("Set last_thread: %v", err)
	}

	value, ok, err := prefs.Get(ctx, "approver")
	if err != nil || !ok || value != "lead.agent" {
		t.Fatalf("unexpected value %q ok=%v err=%v", value, ok, err)
	}

	all, err := prefs.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	want := map[string]string{"approver": "lead.agent", "last_thread": "T-4"}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Fatalf("preferences mismatch (-want +got):\n%s", diff)
	}
}

func TestPreferencesPersistAcrossOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "preferences.db")

	first, err := OpenPreferences(ctx, path)
	if err != nil {
		t.Fatalf("OpenPreferences: %v", err)
	}
	if err := first.Set(ctx, "last_thread", "T-2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := OpenPreferences(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	value, ok, err := second.Get(ctx, "last_thread")
	if err != nil || !ok || value != "T-2" {
		t.Fatalf("unexpected value %q ok=%v err=%v", value, ok, err)
	}
}

func TestOpenPreferencesRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := OpenPreferences(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
