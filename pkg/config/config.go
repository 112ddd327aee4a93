package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"OpenFOF/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"http://localhost:3000\"]"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
		// Collector aggregates error logs and ships them to Kafka when enabled.
		Collector struct {
			Enabled        bool          `yaml:"enabled"`
			FlushInterval  time.Duration `yaml:"flush_interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100"`
			MinLevel       string        `yaml:"min_level" default:"error"`
		} `yaml:"collector"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled" default:"true"`
		RPS     float64 `yaml:"rps" default:"20"`
		Burst   int     `yaml:"burst" default:"40"`
	} `yaml:"rate_limit"`
	Catalog struct {
		// Path to a YAML asset list; empty selects the built-in catalog.
		Path string `yaml:"path"`
	} `yaml:"catalog"`
	Prices struct {
		Backend    string `yaml:"backend" default:"csv"`
		CSVDir     string `yaml:"csv_dir" default:"assets"`
		ClickHouse struct {
			Host             string        `yaml:"host" default:"localhost"`
			Port             int           `yaml:"port" default:"9000"`
			Database         string        `yaml:"database" default:"openfof"`
			User             string        `yaml:"user" default:"default"`
			Password         string        `yaml:"password"`
			Table            string        `yaml:"table" default:"daily_closes"`
			UseHTTP          bool          `yaml:"use_http"`
			DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
			WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
			MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
		} `yaml:"clickhouse"`
		SQLite struct {
			Path  string `yaml:"path" default:"data/prices.db"`
			Table string `yaml:"table" default:"daily_closes"`
		} `yaml:"sqlite"`
	} `yaml:"prices"`
	Cache struct {
		Backend       string        `yaml:"backend" default:"none"`
		TTL           time.Duration `yaml:"ttl" default:"10m"`
		MemoryMaxSize int           `yaml:"memory_max_size" default:"256"`
		Redis         struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size" default:"10"`
			Prefix   string `yaml:"prefix" default:"openfof"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		EventsTopic  string        `yaml:"events_topic" default:"openfof.analytics"`
		LogsTopic    string        `yaml:"logs_topic" default:"openfof.logs"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	Analytics struct {
		Paths      int `yaml:"paths" default:"1000"`
		MinOverlap int `yaml:"min_overlap" default:"5"`
		FillLimit  int `yaml:"fill_limit" default:"3"`
		// Seed makes projections reproducible; unset draws from the process-wide generator.
		Seed *uint64 `yaml:"seed"`
	} `yaml:"analytics"`
}

// Default returns a configuration holding only default values.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file over the defaults.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("OPENFOF_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("PRICES_BACKEND"); v != "" {
		c.Prices.Backend = v
	}
	if v := getenv("PRICES_CSV_DIR"); v != "" {
		c.Prices.CSVDir = v
	}
	if v := getenv("CATALOG_PATH"); v != "" {
		c.Catalog.Path = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		host, port, err := net.SplitHostPort(v)
		if err != nil {
			return fmt.Errorf("REDIS_ADDR: %w", err)
		}
		c.Cache.Redis.Host = host
		c.Cache.Redis.Port = util.ParseIntDefault(port, c.Cache.Redis.Port)
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
		c.Kafka.Enabled = len(c.Kafka.Brokers) > 0
	}
	if v := getenv("ANALYTICS_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ANALYTICS_SEED: %w", err)
		}
		c.Analytics.Seed = &seed
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("logger.format must be 'json' or 'console', got '%s'", c.Logger.Format)
	}
	switch c.Prices.Backend {
	case "csv":
		if c.Prices.CSVDir == "" {
			return fmt.Errorf("prices.csv_dir is required for the csv backend")
		}
	case "clickhouse":
		if c.Prices.ClickHouse.Host == "" {
			return fmt.Errorf("prices.clickhouse.host is required")
		}
	case "sqlite":
		if c.Prices.SQLite.Path == "" {
			return fmt.Errorf("prices.sqlite.path is required")
		}
	default:
		return fmt.Errorf("prices.backend must be 'csv', 'clickhouse' or 'sqlite', got '%s'", c.Prices.Backend)
	}
	switch c.Cache.Backend {
	case "none", "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'none', 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Logger.Collector.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("logger.collector requires kafka to be enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit.rps and rate_limit.burst must be positive")
	}
	if c.Analytics.Paths < 1 {
		return fmt.Errorf("analytics.paths must be positive, got %d", c.Analytics.Paths)
	}
	if c.Analytics.MinOverlap < 1 {
		return fmt.Errorf("analytics.min_overlap must be positive, got %d", c.Analytics.MinOverlap)
	}
	if c.Analytics.FillLimit < 0 {
		return fmt.Errorf("analytics.fill_limit cannot be negative, got %d", c.Analytics.FillLimit)
	}
	return nil
}
