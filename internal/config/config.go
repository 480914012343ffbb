package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the portal configuration.
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Backend     BackendConfig   `toml:"backend"`
	Identity    IdentityConfig  `toml:"identity"`
	Auth        AuthConfig      `toml:"auth"`
	Assistant   AssistantConfig `toml:"assistant"`
	Analysis    AnalysisConfig  `toml:"analysis"`
	Market      MarketConfig    `toml:"market"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
	// AllowedOrigins may open websocket feeds besides the portal's own host.
	AllowedOrigins []string `toml:"allowed_origins"`
}

// BackendConfig locates the chat and analysis services.
type BackendConfig struct {
	ChatURL        string `toml:"chat_url"`
	AnalysisURL    string `toml:"analysis_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	ReplyPath      string `toml:"reply_path"`
}

// IdentityConfig selects the identity and profile document backend.
// Provider is "local" (badger) or "firebase".
type IdentityConfig struct {
	Provider     string `toml:"provider"`
	APIKey       string `toml:"api_key"`
	ProjectID    string `toml:"project_id"`
	IdentityURL  string `toml:"identity_url"`
	FirestoreURL string `toml:"firestore_url"`
}

// AuthConfig contains session cookie settings.
type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	SessionTTLHours int    `toml:"session_ttl_hours"`
}

// AssistantConfig selects the FinBot backend. Provider is "remote" or "ark".
type AssistantConfig struct {
	Provider    string  `toml:"provider"`
	ArkBaseURL  string  `toml:"ark_base_url"`
	ArkRegion   string  `toml:"ark_region"`
	ArkAPIKey   string  `toml:"ark_api_key"`
	ArkModel    string  `toml:"ark_model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// AnalysisConfig selects the analyzer. Mode is "remote" or "mock".
type AnalysisConfig struct {
	Mode            string `toml:"mode"`
	DefaultPeriod   string `toml:"default_period"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
}

// MarketConfig contains sample market settings.
type MarketConfig struct {
	RotateIntervalSeconds int `toml:"rotate_interval_seconds"`
	NewsLimit             int `toml:"news_limit"`
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// IsDevMode reports whether the portal runs in the dev environment.
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// BaseURL returns the portal's own URL.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// Validate returns human-readable issues with mandatory or invalid settings.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be 1-65535 (got %d)", c.Server.Port))
	}
	if c.Backend.ChatURL == "" {
		issues = append(issues, "backend.chat_url is required (PORTFI_CHAT_URL)")
	}
	if c.Backend.AnalysisURL == "" && c.Analysis.Mode != "mock" {
		issues = append(issues, "backend.analysis_url is required unless analysis.mode is mock (PORTFI_ANALYSIS_URL)")
	}
	if !c.IsDevMode() && c.Auth.JWTSecret == "" {
		issues = append(issues, "auth.jwt_secret is required outside dev (PORTFI_JWT_SECRET)")
	}

	switch c.Identity.Provider {
	case "local":
	case "firebase":
		if c.Identity.APIKey == "" {
			issues = append(issues, "identity.api_key is required for the firebase provider (PORTFI_IDENTITY_API_KEY)")
		}
		if c.Identity.ProjectID == "" {
			issues = append(issues, "identity.project_id is required for the firebase provider (PORTFI_IDENTITY_PROJECT_ID)")
		}
	default:
		issues = append(issues, fmt.Sprintf("identity.provider must be local or firebase (got %q)", c.Identity.Provider))
	}

	switch c.Assistant.Provider {
	case "remote":
	case "ark":
		if c.Assistant.ArkAPIKey == "" {
			issues = append(issues, "assistant.ark_api_key is required for the ark provider (PORTFI_ARK_API_KEY)")
		}
		if c.Assistant.ArkModel == "" {
			issues = append(issues, "assistant.ark_model is required for the ark provider (PORTFI_ARK_MODEL)")
		}
	default:
		issues = append(issues, fmt.Sprintf("assistant.provider must be remote or ark (got %q)", c.Assistant.Provider))
	}

	if c.Analysis.Mode != "remote" && c.Analysis.Mode != "mock" {
		issues = append(issues, fmt.Sprintf("analysis.mode must be remote or mock (got %q)", c.Analysis.Mode))
	}

	return issues
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration with priority:
// defaults -> file1 -> file2 -> ... -> env.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies PORTFI_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("PORTFI_ENV", &config.Environment)
	setInt("PORTFI_SERVER_PORT", &config.Server.Port)
	setString("PORTFI_SERVER_HOST", &config.Server.Host)

	setString("PORTFI_CHAT_URL", &config.Backend.ChatURL)
	setString("PORTFI_ANALYSIS_URL", &config.Backend.AnalysisURL)
	setInt("PORTFI_BACKEND_TIMEOUT", &config.Backend.TimeoutSeconds)
	setString("PORTFI_REPLY_PATH", &config.Backend.ReplyPath)

	setString("PORTFI_IDENTITY_PROVIDER", &config.Identity.Provider)
	setString("PORTFI_IDENTITY_API_KEY", &config.Identity.APIKey)
	setString("PORTFI_IDENTITY_PROJECT_ID", &config.Identity.ProjectID)

	setString("PORTFI_JWT_SECRET", &config.Auth.JWTSecret)

	setString("PORTFI_ASSISTANT_PROVIDER", &config.Assistant.Provider)
	setString("PORTFI_ARK_API_KEY", &config.Assistant.ArkAPIKey)
	setString("PORTFI_ARK_MODEL", &config.Assistant.ArkModel)
	setString("PORTFI_ARK_BASE_URL", &config.Assistant.ArkBaseURL)

	setString("PORTFI_ANALYSIS_MODE", &config.Analysis.Mode)
	setInt("PORTFI_ANALYSIS_CACHE_TTL", &config.Analysis.CacheTTLSeconds)

	setString("PORTFI_BADGER_PATH", &config.Storage.Badger.Path)
	setString("PORTFI_LOG_LEVEL", &config.Logging.Level)
	setString("PORTFI_LOG_FORMAT", &config.Logging.Format)
	setList("PORTFI_LOG_OUTPUTS", &config.Logging.Outputs)
	setList("PORTFI_ALLOWED_ORIGINS", &config.Server.AllowedOrigins)
}

// setList overrides dst with the comma-separated value of key, if set.
func setList(key string, dst *[]string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var list []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	*dst = list
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
