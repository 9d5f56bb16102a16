package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"dev/bravebird/dashboard-verifier/pkg/models"
)

// Default check constants, matching the canonical dashboard verification.
const (
	DefaultTargetURL           = "http://localhost:3000"
	DefaultStartupDelaySeconds = 10
	DefaultWaitSelector        = "h1"
	DefaultWaitTimeoutSeconds  = 30
	DefaultScreenshotDir       = "verification"
	DefaultSuccessScreenshot   = "dashboard.png"
	DefaultErrorScreenshot     = "error.png"
)

// Config holds service settings and the check suite
type Config struct {
	Port          string         `yaml:"port"`
	MySQLDSN      string         `yaml:"mysql_dsn"`
	TemporalHost  string         `yaml:"temporal_host"`
	ScreenshotDir string         `yaml:"screenshot_dir"`
	Headless      bool           `yaml:"headless"`
	Checks        []models.Check `yaml:"checks"`
}

// Load reads a YAML suite file and applies defaults and environment
// overrides. An empty path yields the default configuration.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if len(cfg.Checks) == 0 {
		cfg.Checks = []models.Check{DefaultCheck()}
	}
	for i := range cfg.Checks {
		fillCheckDefaults(&cfg.Checks[i])
	}

	return cfg, nil
}

// DefaultCheck returns the canonical dashboard check
func DefaultCheck() models.Check {
	return models.Check{
		Name:                "dashboard",
		TargetURL:           DefaultTargetURL,
		StartupDelaySeconds: DefaultStartupDelaySeconds,
		WaitSelector:        DefaultWaitSelector,
		WaitTimeoutSeconds:  DefaultWaitTimeoutSeconds,
		SuccessScreenshot:   DefaultSuccessScreenshot,
		ErrorScreenshot:     DefaultErrorScreenshot,
	}
}

// FindCheck returns the named check, or nil if not configured
func (c *Config) FindCheck(name string) *models.Check {
	for i := range c.Checks {
		if c.Checks[i].Name == name {
			return &c.Checks[i]
		}
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Port:          "8080",
		MySQLDSN:      "verifier:verifier@tcp(localhost:3306)/verifier?parseTime=true",
		TemporalHost:  "localhost:7233",
		ScreenshotDir: DefaultScreenshotDir,
		Headless:      true,
	}
}

func (c *Config) applyEnv() {
	c.Port = getEnvOrDefault("PORT", c.Port)
	c.MySQLDSN = getEnvOrDefault("MYSQL_DSN", c.MySQLDSN)
	c.TemporalHost = getEnvOrDefault("TEMPORAL_HOST", c.TemporalHost)
	c.ScreenshotDir = getEnvOrDefault("SCREENSHOT_DIR", c.ScreenshotDir)

	if v := os.Getenv("HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Headless = b
		}
	}
}

func fillCheckDefaults(check *models.Check) {
	if check.TargetURL == "" {
		check.TargetURL = DefaultTargetURL
	}
	if check.StartupDelaySeconds == 0 {
		check.StartupDelaySeconds = DefaultStartupDelaySeconds
	}
	if check.WaitSelector == "" {
		check.WaitSelector = DefaultWaitSelector
	}
	if check.WaitTimeoutSeconds == 0 {
		check.WaitTimeoutSeconds = DefaultWaitTimeoutSeconds
	}
	if check.SuccessScreenshot == "" {
		check.SuccessScreenshot = DefaultSuccessScreenshot
	}
	if check.ErrorScreenshot == "" {
		check.ErrorScreenshot = DefaultErrorScreenshot
	}
	if check.BaselineThreshold == 0 {
		check.BaselineThreshold = 0.01
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
