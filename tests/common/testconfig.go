package common

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// TestConfig holds UI test settings read from test_config.toml.
type TestConfig struct {
	Results struct {
		Dir string `toml:"dir"`
	} `toml:"results"`
	Server struct {
		URL string `toml:"url"`
	} `toml:"server"`
	Browser struct {
		Headless    bool `toml:"headless"`
		TimeoutSecs int  `toml:"timeout_seconds"`
	} `toml:"browser"`
}

var (
	globalConfig     *TestConfig
	globalConfigOnce sync.Once
	resultsDir       string
	resultsDirOnce   sync.Once
)

// LoadTestConfig returns defaults overridden by the first readable test_config.toml.
func LoadTestConfig() *TestConfig {
	globalConfigOnce.Do(func() {
		globalConfig = &TestConfig{}
		globalConfig.Results.Dir = "tests/results"
		globalConfig.Server.URL = "http://localhost:4300"
		globalConfig.Browser.Headless = true
		globalConfig.Browser.TimeoutSecs = 30

		for _, path := range []string{"test_config.toml", "tests/ui/test_config.toml"} {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if err := toml.Unmarshal(data, globalConfig); err == nil {
				return
			}
		}
	})
	return globalConfig
}

// BrowserSettings converts the loaded config into a BrowserConfig.
func BrowserSettings() *BrowserConfig {
	cfg := LoadTestConfig()
	return &BrowserConfig{
		Headless: cfg.Browser.Headless,
		Timeout:  time.Duration(cfg.Browser.TimeoutSecs) * time.Second,
	}
}

// ResultsDir returns a timestamped directory for screenshots and logs.
func ResultsDir() string {
	if dir := os.Getenv("PORTFI_TEST_RESULTS_DIR"); dir != "" {
		return dir
	}
	resultsDirOnce.Do(func() {
		base := LoadTestConfig().Results.Dir
		if !filepath.IsAbs(base) {
			base = filepath.Join(FindProjectRoot(), base)
		}
		resultsDir = filepath.Join(base, time.Now().Format("2006-01-02-15-04-05"))
		os.MkdirAll(resultsDir, 0755)
	})
	return resultsDir
}

// FindProjectRoot walks up from the working directory to the go.mod.
func FindProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
