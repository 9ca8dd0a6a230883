package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Monitor struct {
		TargetProduct          string        `yaml:"target_product"`
		Products               []string      `yaml:"products"`
		ZThreshold             float64       `yaml:"z_threshold"`
		MinAbsoluteIncrease    int           `yaml:"min_absolute_increase"`
		ForecastHorizon        int           `yaml:"forecast_horizon"`
		ChangepointSensitivity float64       `yaml:"changepoint_sensitivity"`
		Confidence             float64       `yaml:"confidence"`
		UpdateInterval         time.Duration `yaml:"update_interval"`
	} `yaml:"monitor"`
	Sources struct {
		OpenFDAURL        string        `yaml:"openfda_url"`
		ClinicalTrialsURL string        `yaml:"clinicaltrials_url"`
		StartYear         int           `yaml:"start_year"`
		EndYear           int           `yaml:"end_year"`
		Timeout           time.Duration `yaml:"timeout"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
	} `yaml:"sources"`
	Forecast struct {
		Mode       string        `yaml:"mode"` // builtin or http
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"forecast"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		AlertTopic   string   `yaml:"alert_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
	} `yaml:"kafka"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("TARGET_PRODUCT"); v != "" {
		c.Monitor.TargetProduct = v
	}
	if v := os.Getenv("PRODUCTS"); v != "" {
		c.Monitor.Products = strings.Split(v, ",")
	}
	if v := os.Getenv("OPENFDA_URL"); v != "" {
		c.Sources.OpenFDAURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}

	return c, nil
}

// applyDefaults fills the analytic tuning with its operational defaults so a
// minimal config file stays valid.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Monitor.ZThreshold == 0 {
		c.Monitor.ZThreshold = 2.0
	}
	if c.Monitor.MinAbsoluteIncrease == 0 {
		c.Monitor.MinAbsoluteIncrease = 10
	}
	if c.Monitor.ForecastHorizon == 0 {
		c.Monitor.ForecastHorizon = 4
	}
	if c.Monitor.ChangepointSensitivity == 0 {
		c.Monitor.ChangepointSensitivity = 0.05
	}
	if c.Monitor.Confidence == 0 {
		c.Monitor.Confidence = 0.95
	}
	if c.Monitor.UpdateInterval == 0 {
		c.Monitor.UpdateInterval = 24 * time.Hour
	}
	if c.Forecast.Mode == "" {
		c.Forecast.Mode = "builtin"
	}
	if c.Sources.StartYear == 0 {
		c.Sources.StartYear = 2014
	}
	if c.Sources.EndYear == 0 {
		c.Sources.EndYear = time.Now().UTC().Year() + 1
	}
	if c.Sources.RequestsPerSecond == 0 {
		c.Sources.RequestsPerSecond = 2
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 48 * time.Hour
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Monitor.TargetProduct == "" && len(c.Monitor.Products) == 0 {
		return fmt.Errorf("monitor.target_product or monitor.products is required")
	}
	if c.Monitor.ZThreshold <= 0 {
		return fmt.Errorf("monitor.z_threshold must be positive")
	}
	if c.Monitor.MinAbsoluteIncrease < 0 {
		return fmt.Errorf("monitor.min_absolute_increase cannot be negative")
	}
	if c.Monitor.ForecastHorizon < 0 {
		return fmt.Errorf("monitor.forecast_horizon cannot be negative")
	}
	if c.Monitor.ChangepointSensitivity <= 0 || c.Monitor.ChangepointSensitivity > 1 {
		return fmt.Errorf("monitor.changepoint_sensitivity must be in (0,1]")
	}
	if c.Monitor.Confidence <= 0 || c.Monitor.Confidence >= 1 {
		return fmt.Errorf("monitor.confidence must be in (0,1)")
	}
	if c.Forecast.Mode != "builtin" && c.Forecast.Mode != "http" {
		return fmt.Errorf("forecast.mode must be 'builtin' or 'http', got '%s'", c.Forecast.Mode)
	}
	if c.Forecast.Mode == "http" && c.Forecast.ServiceURL == "" {
		return fmt.Errorf("forecast.service_url is required for http mode")
	}
	if c.Sources.OpenFDAURL == "" {
		return fmt.Errorf("sources.openfda_url is required")
	}
	return nil
}

// AllProducts returns the deduplicated monitoring set: the target product
// plus every configured variant.
func (c *Config) AllProducts() []string {
	seen := make(map[string]bool, len(c.Monitor.Products)+1)
	out := make([]string, 0, len(c.Monitor.Products)+1)
	for _, p := range append([]string{c.Monitor.TargetProduct}, c.Monitor.Products...) {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
