package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 4300,
			Host: "localhost",
		},
		Backend: BackendConfig{
			ChatURL:        "http://localhost:5000",
			AnalysisURL:    "http://localhost:5000",
			TimeoutSeconds: 10,
			ReplyPath:      "$.reply",
		},
		Identity: IdentityConfig{
			Provider:     "local",
			IdentityURL:  "https://identitytoolkit.googleapis.com/v1",
			FirestoreURL: "https://firestore.googleapis.com/v1",
		},
		Auth: AuthConfig{
			SessionTTLHours: 24,
		},
		Assistant: AssistantConfig{
			Provider:    "remote",
			ArkRegion:   "cn-beijing",
			MaxTokens:   512,
			Temperature: 0.7,
		},
		Analysis: AnalysisConfig{
			Mode:            "remote",
			DefaultPeriod:   "1y",
			CacheTTLSeconds: 300,
		},
		Market: MarketConfig{
			RotateIntervalSeconds: 5,
			NewsLimit:             5,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/portfi",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
