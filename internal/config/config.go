// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the service settings read from the environment
type Config struct {
	// Server
	Port           string   `envconfig:"PORT" default:"8080"`
	DebugMode      bool     `envconfig:"DEBUG_MODE" default:"false"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// Logging
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	LogDir      string `envconfig:"LOG_DIR"`

	// Content
	ScenarioDir string `envconfig:"SCENARIO_DIR"`

	// Simulation
	DecisionSeconds        int           `envconfig:"DECISION_SECONDS" default:"600"`
	PacingThresholdSeconds int           `envconfig:"PACING_THRESHOLD_SECONDS" default:"300"`
	SessionIdleTTL         time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`

	// Rate limiting
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"40"`
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges that envconfig cannot express
func (c *Config) Validate() error {
	var problems []string

	if c.Port == "" {
		problems = append(problems, "PORT must not be empty")
	}
	if c.DecisionSeconds <= 0 {
		problems = append(problems, "DECISION_SECONDS must be positive")
	}
	if c.PacingThresholdSeconds < 0 || c.PacingThresholdSeconds > c.DecisionSeconds {
		problems = append(problems, "PACING_THRESHOLD_SECONDS must be within [0, DECISION_SECONDS]")
	}
	if c.SessionIdleTTL < time.Minute {
		problems = append(problems, "SESSION_IDLE_TTL must be at least 1m")
	}
	if c.DecisionSeconds > 0 && c.SessionIdleTTL <= c.DecisionDuration() {
		problems = append(problems, "SESSION_IDLE_TTL must be longer than DECISION_SECONDS")
	}
	if c.RateLimitRPS <= 0 {
		problems = append(problems, "RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimitBurst < 1 {
		problems = append(problems, "RATE_LIMIT_BURST must be at least 1")
	}
	switch strings.ToLower(c.LogEncoding) {
	case "json", "console":
	default:
		problems = append(problems, "LOG_ENCODING must be json or console")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DecisionDuration is the length of the decision window
func (c *Config) DecisionDuration() time.Duration {
	return time.Duration(c.DecisionSeconds) * time.Second
}

// Address returns the listen address for the HTTP server
func (c *Config) Address() string {
	return ":" + c.Port
}
