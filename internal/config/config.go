package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultBaseURL       = "http://localhost:8000"
	defaultToastDuration = 3 * time.Second
	defaultLogLevel      = "info"

	configPathEnv      = "SDMDESK_CONFIG"
	baseURLEnv         = "SDM_API_BASE_URL"
	legacyBaseURLEnv   = "VITE_API_BASE_URL"
	llmTokenEnv        = "SDM_LLM_TOKEN"
	approverEnv        = "SDM_APPROVER"
	logLevelEnv        = "SDM_LOG_LEVEL"
	preferencesPathEnv = "SDM_PREFERENCES_PATH"
)

// Config holds every setting the desk needs.
type Config struct {
	Store         StoreConfig        `yaml:"store"`
	Agent         AgentConfig        `yaml:"agent"`
	Notifications NotificationConfig `yaml:"notifications"`
	Preferences   PreferencesConfig  `yaml:"preferences"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// StoreConfig describes the summary store HTTP API.
type StoreConfig struct {
	BaseURL string `yaml:"baseUrl"`
	// Timeout of zero leaves requests bounded only by their context.
	Timeout time.Duration `yaml:"timeout"`
}

// AgentConfig carries per-agent defaults.
type AgentConfig struct {
	DefaultApprover string `yaml:"defaultApprover"`
	LLMToken        string `yaml:"llmToken"`
}

// NotificationConfig controls transient notices.
type NotificationConfig struct {
	ToastDuration time.Duration `yaml:"toastDuration"`
}

// PreferencesConfig points at the local preferences database.
type PreferencesConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig selects level and, for the terminal UI, a log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LoadDotEnv loads .env from the working directory without overriding
// variables that are already set. A missing file is fine.
func LoadDotEnv() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load .env: %v", err)
	}
}

// Load reads the file named by SDMDESK_CONFIG (if any) and applies
// environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom reads YAML configuration from path (if non-empty), merges it
// over the defaults and applies environment overrides.
func LoadFrom(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.validate()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(legacyBaseURLEnv); v != "" {
		c.Store.BaseURL = v
	}
	if v := os.Getenv(baseURLEnv); v != "" {
		c.Store.BaseURL = v
	}

	if v := os.Getenv(llmTokenEnv); v != "" {
		c.Agent.LLMToken = v
	}

	if v := os.Getenv(approverEnv); v != "" {
		c.Agent.DefaultApprover = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(preferencesPathEnv); v != "" {
		c.Preferences.Path = v
	}
}

func (c *Config) validate() {
	c.Store.BaseURL = strings.TrimRight(strings.TrimSpace(c.Store.BaseURL), "/")
	if c.Store.BaseURL == "" {
		c.Store.BaseURL = defaultBaseURL
	}
	if !strings.HasPrefix(c.Store.BaseURL, "http://") && !strings.HasPrefix(c.Store.BaseURL, "https://") {
		log.Printf("config: base url %q has no http scheme, reverting to %s", c.Store.BaseURL, defaultBaseURL)
		c.Store.BaseURL = defaultBaseURL
	}

	if c.Store.Timeout < 0 {
		log.Printf("config: negative store timeout %s, disabling", c.Store.Timeout)
		c.Store.Timeout = 0
	}

	if c.Notifications.ToastDuration <= 0 {
		log.Printf("config: invalid toast duration %s, reverting to %s", c.Notifications.ToastDuration, defaultToastDuration)
		c.Notifications.ToastDuration = defaultToastDuration
	}
}

func mergeConfig(base, override Config) Config {
	if override.Store.BaseURL != "" {
		base.Store.BaseURL = override.Store.BaseURL
	}
	if override.Store.Timeout != 0 {
		base.Store.Timeout = override.Store.Timeout
	}

	if override.Agent.DefaultApprover != "" {
		base.Agent.DefaultApprover = override.Agent.DefaultApprover
	}
	if override.Agent.LLMToken != "" {
		base.Agent.LLMToken = override.Agent.LLMToken
	}

	if override.Notifications.ToastDuration != 0 {
		base.Notifications.ToastDuration = override.Notifications.ToastDuration
	}

	if override.Preferences.Path != "" {
		base.Preferences.Path = override.Preferences.Path
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.File != "" {
		base.Logging.File = override.Logging.File
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Store:         StoreConfig{BaseURL: defaultBaseURL},
		Agent:         AgentConfig{DefaultApprover: "santosh.b"},
		Notifications: NotificationConfig{ToastDuration: defaultToastDuration},
		Preferences:   PreferencesConfig{Path: defaultPreferencesPath()},
		Logging:       LoggingConfig{Level: defaultLogLevel},
	}
}

func defaultPreferencesPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".sdmdesk", "preferences.db")
	}
	return filepath.Join(dir, "sdmdesk", "preferences.db")
}
