package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		// CORSOrigins also gates websocket upgrades; empty allows any origin.
		CORSOrigins []string `yaml:"cors_origins"`
		RateLimit   struct {
			Enabled bool    `yaml:"enabled"`
			RPS     float64 `yaml:"rps"`
			Burst   int     `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Engine    EngineConfig    `yaml:"engine"`
	Ephemeris EphemerisConfig `yaml:"ephemeris"`
	Kafka     struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequestTopic string   `yaml:"request_topic"`
		ResultTopic  string   `yaml:"result_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchTimeout time.Duration `yaml:"batch_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
}

// EngineConfig holds the defaults applied to requests that omit a field.
type EngineConfig struct {
	Step        time.Duration `yaml:"step"`
	Orb         float64       `yaml:"orb"`
	Bodies      []string      `yaml:"bodies"`
	Policy      string        `yaml:"policy"`
	Key         string        `yaml:"key"`
	Reference   string        `yaml:"reference"`
	Timezone    string        `yaml:"timezone"`
	Conjunction string        `yaml:"conjunction"`
	Workers     int           `yaml:"workers"`
	// MaxWorkers caps the worker count any single request may ask for.
	MaxWorkers int `yaml:"max_workers"`
	MaxSamples int `yaml:"max_samples"`
	// Triggers maps a sentiment class to the bodies allowed to produce it
	// under the trigger-bodies policy.
	Triggers map[string][]string `yaml:"triggers"`
	// Catalog overrides the default aspect catalog when non-empty.
	Catalog []struct {
		Name      string  `yaml:"name"`
		Angle     float64 `yaml:"angle"`
		Sentiment string  `yaml:"sentiment"`
	} `yaml:"catalog"`
}

// JobsConfig enables asynchronous timelines over a Redis list queue.
type JobsConfig struct {
	Enabled bool `yaml:"enabled"`
	Redis   struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	KeyPrefix  string        `yaml:"key_prefix"`
	Workers    int           `yaml:"workers"`
	RetryLimit int           `yaml:"retry_limit"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	ResultTTL  time.Duration `yaml:"result_ttl"`
}

type EphemerisConfig struct {
	Backend string `yaml:"backend"` // analytic, almanac, clickhouse
	Zodiac  string `yaml:"zodiac"`  // tropical or sidereal (Lahiri)
	Almanac struct {
		URL         string        `yaml:"url"`
		Timeout     time.Duration `yaml:"timeout"`
		RPS         float64       `yaml:"rps"`
		Burst       int           `yaml:"burst"`
		MaxAttempts int           `yaml:"max_attempts"`
		Breaker     struct {
			MaxFailures uint32        `yaml:"max_failures"`
			OpenTimeout time.Duration `yaml:"open_timeout"`
		} `yaml:"breaker"`
	} `yaml:"almanac"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		Table        string        `yaml:"table"`
		Tolerance    time.Duration `yaml:"tolerance"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		CreateSchema bool          `yaml:"create_schema"`
	} `yaml:"clickhouse"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		Type    string        `yaml:"type"` // memory, redis, layered
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Default returns a configuration built from defaults and environment
// overrides only, for tools that run without a config file.
func Default() *Config {
	c := &Config{Environment: "cli"}
	c.applyDefaults()
	c.applyEnv()
	return c
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ASTRO_EPHEMERIS_BACKEND"); v != "" {
		c.Ephemeris.Backend = v
	}
	if v := os.Getenv("ASTRO_TIMEZONE"); v != "" {
		c.Engine.Timezone = v
	}
	if v := os.Getenv("ASTRO_POLICY"); v != "" {
		c.Engine.Policy = v
	}
	if v := os.Getenv("ASTRO_ORB"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Engine.Orb = f
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Ephemeris.Cache.Redis.Addr = v
		c.Jobs.Redis.Addr = v
	}
	if v := os.Getenv("ALMANAC_URL"); v != "" {
		c.Ephemeris.Almanac.URL = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.Ephemeris.ClickHouse.Host = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Engine.Step == 0 {
		c.Engine.Step = 5 * time.Minute
	}
	if c.Engine.Orb == 0 {
		c.Engine.Orb = 2.0
	}
	if c.Engine.Policy == "" {
		c.Engine.Policy = "bearish-first"
	}
	if c.Engine.Key == "" {
		c.Engine.Key = "sentiment"
	}
	if c.Engine.Timezone == "" {
		c.Engine.Timezone = "UTC"
	}
	if c.Engine.Conjunction == "" {
		c.Engine.Conjunction = "include"
	}
	if c.Engine.Workers == 0 {
		c.Engine.Workers = 1
	}
	if c.Engine.MaxWorkers == 0 {
		c.Engine.MaxWorkers = 16
	}
	if c.Jobs.KeyPrefix == "" {
		c.Jobs.KeyPrefix = "astrosignal:jobs"
	}
	if c.Jobs.Workers == 0 {
		c.Jobs.Workers = 2
	}
	if c.Jobs.RetryLimit == 0 {
		c.Jobs.RetryLimit = 3
	}
	if c.Jobs.RetryDelay == 0 {
		c.Jobs.RetryDelay = 5 * time.Second
	}
	if c.Jobs.ResultTTL == 0 {
		c.Jobs.ResultTTL = 24 * time.Hour
	}
	if c.Ephemeris.Backend == "" {
		c.Ephemeris.Backend = "analytic"
	}
	if c.Ephemeris.Zodiac == "" {
		c.Ephemeris.Zodiac = "tropical"
	}
	if c.Ephemeris.Almanac.Timeout == 0 {
		c.Ephemeris.Almanac.Timeout = 3 * time.Second
	}
	if c.Ephemeris.Almanac.MaxAttempts == 0 {
		c.Ephemeris.Almanac.MaxAttempts = 3
	}
	if c.Ephemeris.ClickHouse.Table == "" {
		c.Ephemeris.ClickHouse.Table = "ephemeris_longitudes"
	}
	if c.Ephemeris.ClickHouse.Tolerance == 0 {
		c.Ephemeris.ClickHouse.Tolerance = time.Hour
	}
	if c.Ephemeris.Cache.Type == "" {
		c.Ephemeris.Cache.Type = "memory"
	}
	if c.Ephemeris.Cache.TTL == 0 {
		c.Ephemeris.Cache.TTL = 24 * time.Hour
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Ephemeris.Backend {
	case "analytic":
	case "almanac":
		if c.Ephemeris.Almanac.URL == "" {
			return fmt.Errorf("ephemeris.almanac.url is required for the almanac backend")
		}
	case "clickhouse":
		if c.Ephemeris.ClickHouse.Host == "" {
			return fmt.Errorf("ephemeris.clickhouse.host is required for the clickhouse backend")
		}
	default:
		return fmt.Errorf("ephemeris.backend must be 'analytic', 'almanac' or 'clickhouse', got '%s'", c.Ephemeris.Backend)
	}
	if c.Ephemeris.Zodiac != "tropical" && c.Ephemeris.Zodiac != "sidereal" {
		return fmt.Errorf("ephemeris.zodiac must be 'tropical' or 'sidereal', got '%s'", c.Ephemeris.Zodiac)
	}
	if c.Ephemeris.Cache.Enabled {
		switch c.Ephemeris.Cache.Type {
		case "memory":
		case "redis", "layered":
			if c.Ephemeris.Cache.Redis.Addr == "" {
				return fmt.Errorf("ephemeris.cache.redis.addr is required for cache type '%s'", c.Ephemeris.Cache.Type)
			}
		default:
			return fmt.Errorf("ephemeris.cache.type must be 'memory', 'redis' or 'layered', got '%s'", c.Ephemeris.Cache.Type)
		}
	}
	if c.Engine.Orb < 0 || c.Engine.Orb > 180 {
		return fmt.Errorf("engine.orb must be within [0,180], got %v", c.Engine.Orb)
	}
	if c.Engine.Step <= 0 {
		return fmt.Errorf("engine.step must be positive")
	}
	if _, err := time.LoadLocation(c.Engine.Timezone); err != nil {
		return fmt.Errorf("engine.timezone: %w", err)
	}
	if c.Jobs.Enabled && c.Jobs.Redis.Addr == "" {
		return fmt.Errorf("jobs.redis.addr is required when jobs are enabled")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.RequestTopic == "" || c.Kafka.ResultTopic == "" {
			return fmt.Errorf("kafka.request_topic and kafka.result_topic are required")
		}
	}
	return nil
}

// Location resolves the configured display timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
