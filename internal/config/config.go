package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Host string `yaml:"host" json:"host"`
		Port int    `yaml:"port" json:"port"`
	} `yaml:"app" json:"app"`

	LogStore struct {
		// URL is the full send-logs endpoint, e.g. https://host/expArr/send_logs
		URL      string `yaml:"url" json:"url"`
		Username string `yaml:"username" json:"username"`
		// Password is a fallback for environments without a keyring.
		// The OS keychain entry wins when present.
		Password string `yaml:"password,omitempty" json:"password,omitempty"`
	} `yaml:"logstore" json:"logstore"`

	WordPress struct {
		// BaseURL up to and including /wp-json/wp/v2
		BaseURL          string `yaml:"base_url" json:"base_url"`
		FreshnessSeconds int    `yaml:"freshness_seconds" json:"freshness_seconds"`
	} `yaml:"wordpress" json:"wordpress"`

	HTTP struct {
		TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		MaxRetries     int     `yaml:"max_retries" json:"max_retries"`
		RetryDelayMS   int     `yaml:"retry_delay_ms" json:"retry_delay_ms"`
		ReqPerSec      float64 `yaml:"req_per_sec" json:"req_per_sec"`
		Burst          int     `yaml:"burst" json:"burst"`
	} `yaml:"http" json:"http"`

	Cache struct {
		Enabled bool   `yaml:"enabled" json:"enabled"`
		Path    string `yaml:"path" json:"path"`
	} `yaml:"cache" json:"cache"`

	Pipeline struct {
		MaxConcurrent   int `yaml:"max_concurrent" json:"max_concurrent"`
		DefaultPageSize int `yaml:"default_page_size" json:"default_page_size"`
	} `yaml:"pipeline" json:"pipeline"`

	Filters struct {
		// TypesAllow drops enriched posts whose type is outside the list.
		// Empty means keep everything.
		TypesAllow []string `yaml:"types_allow" json:"types_allow"`
	} `yaml:"filters" json:"filters"`

	Refresh struct {
		Enabled         bool `yaml:"enabled" json:"enabled"`
		IntervalSeconds int  `yaml:"interval_seconds" json:"interval_seconds"`
	} `yaml:"refresh" json:"refresh"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.HTTP.RetryDelayMS) * time.Millisecond
}

func (c Config) WordPressFreshness() time.Duration {
	return time.Duration(c.WordPress.FreshnessSeconds) * time.Second
}

func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalSeconds) * time.Second
}
