package config

import (
	"fmt"
	"os"
	"strconv"
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
		SlowRequest     time.Duration `yaml:"slow_request"`
		AllowOrigins    []string      `yaml:"allow_origins"`
		PredictBurst    float64       `yaml:"predict_burst"`
		PredictRate     float64       `yaml:"predict_rate"`
	} `yaml:"server"`
	Logger struct {
		Level   string `yaml:"level"`
		Format  string `yaml:"format"`
		Output  string `yaml:"output"`
		Collect struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic"`
			Interval       time.Duration `yaml:"interval"`
			CountThreshold int           `yaml:"count_threshold"`
		} `yaml:"collect"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Data struct {
		BaseURL   string        `yaml:"base_url"`
		Range     string        `yaml:"range"`
		Interval  string        `yaml:"interval"`
		Timeout   time.Duration `yaml:"timeout"`
		UserAgent string        `yaml:"user_agent"`
		CacheTTL  time.Duration `yaml:"cache_ttl"`
		Retries   int           `yaml:"retries"`
		Backoff   time.Duration `yaml:"backoff"`
	} `yaml:"data"`
	Forecast struct {
		Folds               int      `yaml:"folds"`
		Rounds              int      `yaml:"rounds"`
		LearningRate        float64  `yaml:"learning_rate"`
		NumLeaves           int      `yaml:"num_leaves"`
		MinDataInLeaf       int      `yaml:"min_data_in_leaf"`
		FeatureFraction     float64  `yaml:"feature_fraction"`
		EarlyStoppingRounds int      `yaml:"early_stopping_rounds"`
		Seed                int64    `yaml:"seed"`
		HorizonDays         int      `yaml:"horizon_days"`
		Decay               float64  `yaml:"decay"`
		TopAttributions     int      `yaml:"top_attributions"`
		Features            []string `yaml:"features"`
		ChartBars           int      `yaml:"chart_bars"`
	} `yaml:"forecast"`
	Cache struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size"`
		} `yaml:"redis"`
		MemoryMaxSize int `yaml:"memory_max_size"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		Table            string        `yaml:"table"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
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
	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v, err := strconv.Atoi(getenv("SERVER_PORT")); err == nil {
		c.Server.Port = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := getenv("YAHOO_BASE_URL"); v != "" {
		c.Data.BaseURL = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.SlowRequest == 0 {
		c.Server.SlowRequest = 5 * time.Second
	}
	if c.Server.PredictBurst == 0 {
		c.Server.PredictBurst = 5
	}
	if c.Server.PredictRate == 0 {
		c.Server.PredictRate = 0.5
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
	}
	if c.Logger.Output == "" {
		c.Logger.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Data.BaseURL == "" {
		c.Data.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.Data.Range == "" {
		c.Data.Range = "2y"
	}
	if c.Data.Interval == "" {
		c.Data.Interval = "1d"
	}
	if c.Data.Timeout == 0 {
		c.Data.Timeout = 15 * time.Second
	}
	if c.Data.CacheTTL == 0 {
		c.Data.CacheTTL = time.Hour
	}
	if c.Data.Retries == 0 {
		c.Data.Retries = 3
	}
	if c.Data.Backoff == 0 {
		c.Data.Backoff = 250 * time.Millisecond
	}

	f := &c.Forecast
	if f.Folds == 0 {
		f.Folds = 5
	}
	if f.Rounds == 0 {
		f.Rounds = 100
	}
	if f.LearningRate == 0 {
		f.LearningRate = 0.05
	}
	if f.NumLeaves == 0 {
		f.NumLeaves = 31
	}
	if f.MinDataInLeaf == 0 {
		f.MinDataInLeaf = 20
	}
	if f.FeatureFraction == 0 {
		f.FeatureFraction = 0.9
	}
	if f.EarlyStoppingRounds == 0 {
		f.EarlyStoppingRounds = 10
	}
	if f.Seed == 0 {
		f.Seed = 42
	}
	if f.HorizonDays == 0 {
		f.HorizonDays = 7
	}
	if f.Decay == 0 {
		f.Decay = 0.9
	}
	if f.TopAttributions == 0 {
		f.TopAttributions = 5
	}
	if f.ChartBars == 0 {
		f.ChartBars = 100
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "stockcast.forecasts"
	}
	if c.ClickHouse.Table == "" {
		c.ClickHouse.Table = "forecasts"
	}
	if c.Logger.Collect.Topic == "" {
		c.Logger.Collect.Topic = "stockcast.logs"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Forecast.Folds < 2 {
		return fmt.Errorf("forecast.folds must be >= 2, got %d", c.Forecast.Folds)
	}
	if c.Forecast.Decay <= 0 || c.Forecast.Decay > 1 {
		return fmt.Errorf("forecast.decay must be in (0,1], got %v", c.Forecast.Decay)
	}
	if c.Forecast.FeatureFraction <= 0 || c.Forecast.FeatureFraction > 1 {
		return fmt.Errorf("forecast.feature_fraction must be in (0,1], got %v", c.Forecast.FeatureFraction)
	}
	if c.Forecast.HorizonDays < 1 {
		return fmt.Errorf("forecast.horizon_days must be >= 1")
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Logger.Collect.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("logger.collect requires kafka")
	}
	return nil
}
