package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sdmdesk.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{configPathEnv, baseURLEnv, legacyBaseURLEnv, llmTokenEnv, approverEnv, logLevelEnv, preferencesPathEnv} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadFrom("")
	if cfg.Store.BaseURL != defaultBaseURL {
		t.Fatalf("unexpected base url %q", cfg.Store.BaseURL)
	}
	if cfg.Store.Timeout != 0 {
		t.Fatalf("expected no default timeout, got %s", cfg.Store.Timeout)
	}
	if cfg.Notifications.ToastDuration != 3*time.Second {
		t.Fatalf("unexpected toast duration %s", cfg.Notifications.ToastDuration)
	}
	if cfg.Agent.DefaultApprover != "santosh.b" {
		t.Fatalf("unexpected default approver %q", cfg.Agent.DefaultApprover)
	}
	if filepath.Base(cfg.Preferences.Path) != "preferences.db" {
		t.Fatalf("unexpected preferences path %q", cfg.Preferences.Path)
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
store:
  baseUrl: https://desk.example.com/
  timeout: 20s
agent:
  defaultApprover: lead.agent
notifications:
  toastDuration: 5s
logging:
  file: /tmp/sdmdesk.log
`)

	cfg := LoadFrom(path)
	want := Config{
		Store:         StoreConfig{BaseURL: "https://desk.example.com", Timeout: 20 * time.Second},
		Agent:         AgentConfig{DefaultApprover: "lead.agent"},
		Notifications: NotificationConfig{ToastDuration: 5 * time.Second},
		Preferences:   PreferencesConfig{Path: defaultPreferencesPath()},
		Logging:       LoggingConfig{Level: defaultLogLevel, File: "/tmp/sdmdesk.log"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "store:\n  baseUrl: https://file.example.com\n")
	t.Setenv(configPathEnv, path)
	t.Setenv(legacyBaseURLEnv, "http://legacy:8000")
	t.Setenv(llmTokenEnv, "sk-env")
	t.Setenv(approverEnv, "env.approver")
	t.Setenv(preferencesPathEnv, "/var/lib/sdmdesk/prefs.db")

	cfg := Load()
	if cfg.Store.BaseURL != "http://legacy:8000" {
		t.Fatalf("legacy env should override file, got %q", cfg.Store.BaseURL)
	}

	t.Setenv(baseURLEnv, "http://primary:9000")
	cfg = Load()
	if cfg.Store.BaseURL != "http://primary:9000" {
		t.Fatalf("primary env should win over legacy, got %q", cfg.Store.BaseURL)
	}
	if cfg.Agent.LLMToken != "sk-env" || cfg.Agent.DefaultApprover != "env.approver" {
		t.Fatalf("agent overrides not applied: %+v", cfg.Agent)
	}
	if cfg.Preferences.Path != "/var/lib/sdmdesk/prefs.db" {
		t.Fatalf("preferences override not applied: %q", cfg.Preferences.Path)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "store:\n  baseUrl: localhost:8000\n  timeout: -1s\nnotifications:\n  toastDuration: -2s\n")
	cfg := LoadFrom(path)

	if cfg.Store.BaseURL != defaultBaseURL {
		t.Fatalf("expected default base url, got %q", cfg.Store.BaseURL)
	}
	if cfg.Store.Timeout != 0 {
		t.Fatalf("expected disabled timeout, got %s", cfg.Store.Timeout)
	}
	if cfg.Notifications.ToastDuration != defaultToastDuration {
		t.Fatalf("expected default toast duration, got %s", cfg.Notifications.ToastDuration)
	}
}

func TestUnreadableFileFallsBack(t *testing.T) {
	clearEnv(t)

	cfg := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if cfg.Store.BaseURL != defaultBaseURL {
		t.Fatalf("expected defaults, got %+v", cfg.Store)
	}
}
