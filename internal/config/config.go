package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Service    SvcConfig
	Agent      AgentConfig
	Classifier ClassifierConfig
	Jobs       JobsConfig
}

type SvcConfig struct {
	Address  string `envconfig:"VELOCITY_ADDRESS" default:":8080"`
	LogLevel string `envconfig:"VELOCITY_LOG_LEVEL" default:"info"`
}

type AgentConfig struct {
	BaseURL        string        `envconfig:"SCRAPER_AGENT_URL" default:"http://localhost:7001"`
	APIToken       string        `envconfig:"SCRAPER_AGENT_TOKEN" default:""`
	Timeout        time.Duration `envconfig:"SCRAPER_AGENT_TIMEOUT" default:"5m"`
	MaxRetries     int           `envconfig:"SCRAPER_MAX_RETRIES" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"SCRAPER_RETRY_BASE_DELAY" default:"5s"`
}

type ClassifierConfig struct {
	BaseURL string        `envconfig:"CLASSIFIER_URL" default:"http://localhost:7002"`
	Timeout time.Duration `envconfig:"CLASSIFIER_TIMEOUT" default:"10s"`
}

type JobsConfig struct {
	TTL           time.Duration `envconfig:"JOB_TTL" default:"1h"`
	SweepInterval time.Duration `envconfig:"JOB_SWEEP_INTERVAL" default:"10m"`
}

func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
