package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Analytics AnalyticsConfig
	Insights  InsightsConfig
	Scheduler SchedulerConfig
	Worker    WorkerConfig
	S3        S3Config
}

type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	FrontendURL string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	RateLimit    int
	RateWindow   time.Duration
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool
}

// DSN renders the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "mysql" {
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name,
		)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AnalyticsConfig points at the analytics provider reporting API.
type AnalyticsConfig struct {
	BaseURL    string
	APIKey     string
	PropertyID string
	Timeout    time.Duration
	RateLimit  float64
	Burst      int
	MaxRetries int
	RetryDelay time.Duration
}

type InsightsConfig struct {
	HourlyCost     float64
	AutomationCost float64
	TrendDays      int
	DefaultRange   time.Duration
	EventPageSize  int
	CacheTTL       time.Duration
	Rules          []insights.RuleDefinition
}

// ROI returns the cost constants as an engine config.
func (c *InsightsConfig) ROI() insights.ROIConfig {
	return insights.ROIConfig{HourlyCost: c.HourlyCost, AutomationCost: c.AutomationCost}
}

type SchedulerConfig struct {
	AlertsCron   string
	AlertsWindow time.Duration
	LeaderKey    string
	LockTTL      time.Duration
	LockRefresh  time.Duration
	MaxPending   int64
}

type WorkerConfig struct {
	Concurrency int
	Queues      map[string]int
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config

	// App
	cfg.App.Name = viper.GetString("app.name")
	cfg.App.Environment = viper.GetString("app.environment")
	cfg.App.Debug = viper.GetBool("app.debug")
	cfg.App.FrontendURL = viper.GetString("app.frontend_url")

	// Server
	cfg.Server.Host = viper.GetString("server.host")
	cfg.Server.Port = viper.GetInt("server.port")
	cfg.Server.ReadTimeout = viper.GetDuration("server.read_timeout")
	cfg.Server.WriteTimeout = viper.GetDuration("server.write_timeout")
	cfg.Server.IdleTimeout = viper.GetDuration("server.idle_timeout")
	cfg.Server.RateLimit = viper.GetInt("server.rate_limit")
	cfg.Server.RateWindow = viper.GetDuration("server.rate_window")

	// Database
	cfg.Database.Driver = viper.GetString("database.driver")
	cfg.Database.Host = viper.GetString("database.host")
	cfg.Database.Port = viper.GetInt("database.port")
	cfg.Database.User = viper.GetString("database.user")
	cfg.Database.Password = viper.GetString("database.password")
	cfg.Database.Name = viper.GetString("database.name")
	cfg.Database.SSLMode = viper.GetString("database.sslmode")
	cfg.Database.MaxOpenConns = viper.GetInt("database.max_open_conns")
	cfg.Database.MaxIdleConns = viper.GetInt("database.max_idle_conns")
	cfg.Database.ConnMaxLifetime = viper.GetDuration("database.conn_max_lifetime")
	cfg.Database.LogQueries = viper.GetBool("database.log_queries")

	// Redis
	cfg.Redis.Host = viper.GetString("redis.host")
	cfg.Redis.Port = viper.GetInt("redis.port")
	cfg.Redis.Password = viper.GetString("redis.password")
	cfg.Redis.DB = viper.GetInt("redis.db")

	// Analytics
	cfg.Analytics.BaseURL = viper.GetString("analytics.base_url")
	cfg.Analytics.APIKey = viper.GetString("analytics.api_key")
	cfg.Analytics.PropertyID = viper.GetString("analytics.property_id")
	cfg.Analytics.Timeout = viper.GetDuration("analytics.timeout")
	cfg.Analytics.RateLimit = viper.GetFloat64("analytics.rate_limit")
	cfg.Analytics.Burst = viper.GetInt("analytics.burst")
	cfg.Analytics.MaxRetries = viper.GetInt("analytics.max_retries")
	cfg.Analytics.RetryDelay = viper.GetDuration("analytics.retry_delay")

	// Insights
	cfg.Insights.HourlyCost = viper.GetFloat64("insights.hourly_cost")
	cfg.Insights.AutomationCost = viper.GetFloat64("insights.automation_cost")
	cfg.Insights.TrendDays = viper.GetInt("insights.trend_days")
	cfg.Insights.DefaultRange = viper.GetDuration("insights.default_range")
	cfg.Insights.EventPageSize = viper.GetInt("insights.event_page_size")
	cfg.Insights.CacheTTL = viper.GetDuration("insights.cache_ttl")
	if err := viper.UnmarshalKey("insights.rules", &cfg.Insights.Rules); err != nil {
		return nil, fmt.Errorf("failed to read insights.rules: %w", err)
	}

	// Scheduler
	cfg.Scheduler.AlertsCron = viper.GetString("scheduler.alerts_cron")
	cfg.Scheduler.LockTTL = viper.GetDuration("scheduler.lock_ttl")
	cfg.Scheduler.LockRefresh = viper.GetDuration("scheduler.lock_refresh")
	cfg.Scheduler.AlertsWindow = viper.GetDuration("scheduler.alerts_window")
	cfg.Scheduler.LeaderKey = viper.GetString("scheduler.leader_key")
	cfg.Scheduler.MaxPending = viper.GetInt64("scheduler.max_pending")

	// Worker
	cfg.Worker.Concurrency = viper.GetInt("worker.concurrency")
	cfg.Worker.Queues = map[string]int{}
	for name, weight := range viper.GetStringMap("worker.queues") {
		if w, ok := weight.(int); ok {
			cfg.Worker.Queues[name] = w
		}
	}
	if len(cfg.Worker.Queues) == 0 {
		cfg.Worker.Queues = map[string]int{"critical": 6, "default": 3, "low": 1}
	}

	// S3
	cfg.S3.Endpoint = viper.GetString("s3.endpoint")
	cfg.S3.Region = viper.GetString("s3.region")
	cfg.S3.Bucket = viper.GetString("s3.bucket")
	cfg.S3.AccessKeyID = viper.GetString("s3.access_key_id")
	cfg.S3.SecretAccessKey = viper.GetString("s3.secret_access_key")
	cfg.S3.Prefix = viper.GetString("s3.prefix")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Insights.HourlyCost < 0 || c.Insights.AutomationCost < 0 {
		return fmt.Errorf("insights costs must not be negative")
	}
	return nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "insights")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.frontend_url", "http://localhost:3000")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.rate_limit", 300)
	viper.SetDefault("server.rate_window", "1m")

	// Database defaults
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.name", "insights")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.log_queries", false)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Analytics defaults
	viper.SetDefault("analytics.timeout", "10s")
	viper.SetDefault("analytics.rate_limit", 5.0)
	viper.SetDefault("analytics.burst", 10)
	viper.SetDefault("analytics.max_retries", 2)
	viper.SetDefault("analytics.retry_delay", "500ms")

	// Insights defaults
	viper.SetDefault("insights.hourly_cost", insights.DefaultHourlyCost)
	viper.SetDefault("insights.automation_cost", insights.DefaultAutomationCost)
	viper.SetDefault("insights.trend_days", insights.DefaultTrendDays)
	viper.SetDefault("insights.default_range", "720h")
	viper.SetDefault("insights.event_page_size", 1000)
	viper.SetDefault("insights.cache_ttl", "10m")

	// Scheduler defaults
	viper.SetDefault("scheduler.alerts_cron", "*/5 * * * *")
	viper.SetDefault("scheduler.lock_ttl", "30s")
	viper.SetDefault("scheduler.lock_refresh", "10s")
	viper.SetDefault("scheduler.alerts_window", "24h")
	viper.SetDefault("scheduler.leader_key", "insights:scheduler:leader")
	viper.SetDefault("scheduler.max_pending", 10000)

	// Worker defaults
	viper.SetDefault("worker.concurrency", 10)
	viper.SetDefault("worker.queues", map[string]int{"critical": 6, "default": 3, "low": 1})

	// S3 defaults
	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("s3.prefix", "exports")
}
