package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/care-portal/pkg/retry"
)

// EnvPrefix namespaces environment overrides, e.g. PORTAL_DATABASE_HOST.
const EnvPrefix = "PORTAL"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Redis      RedisConfig      `mapstructure:"redis"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Outbox     OutboxConfig     `mapstructure:"outbox"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Security   SecurityConfig   `mapstructure:"security"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" split_words:"true"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" split_words:"true"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" split_words:"true"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" split_words:"true"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" split_words:"true"`
}

// DataSource returns the driver DSN, building a libpq keyword string for postgres
// when no explicit DSN is configured.
func (c DatabaseConfig) DataSource() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	Issuer      string        `mapstructure:"issuer"`
	TokenExpiry time.Duration `mapstructure:"token_expiry" split_words:"true"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Enabled reports whether confirmation mail should be sent.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type OutboxConfig struct {
	BatchSize       int           `mapstructure:"batch_size" split_words:"true"`
	PollInterval    time.Duration `mapstructure:"poll_interval" split_words:"true"`
	MaxRetries      int           `mapstructure:"max_retries" split_words:"true"`
	RetentionPeriod time.Duration `mapstructure:"retention_period" split_words:"true"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" split_words:"true"`
	Burst             int     `mapstructure:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" split_words:"true"`
}

type SchedulingConfig struct {
	Timezone          string        `mapstructure:"timezone"`
	StorageRetries    int           `mapstructure:"storage_retries" split_words:"true"`
	RetryInitialDelay time.Duration `mapstructure:"retry_initial_delay" split_words:"true"`
}

// Location resolves the clinic time zone.
func (c SchedulingConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduling timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ToRetryPolicy is the policy services use for transient storage failures.
func (c SchedulingConfig) ToRetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	if c.StorageRetries >= 0 {
		p.MaxRetries = uint64(c.StorageRetries)
	}
	if c.RetryInitialDelay > 0 {
		p.InitialInterval = c.RetryInitialDelay
	}
	return p
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 5*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "care_portal")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("jwt.issuer", "care-portal")
	v.SetDefault("jwt.token_expiry", 24*time.Hour)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("smtp.port", 587)

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 5*time.Second)
	v.SetDefault("outbox.max_retries", 5)
	v.SetDefault("outbox.retention_period", 7*24*time.Hour)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("security.allowed_origins", []string{"*"})

	v.SetDefault("scheduling.timezone", "UTC")
	v.SetDefault("scheduling.storage_retries", 3)
	v.SetDefault("scheduling.retry_initial_delay", 50*time.Millisecond)

	v.SetDefault("logging.level", "info")
}

// LoadConfig reads config.yml from the usual locations (or CONFIG_FILE), then
// applies PORTAL_* environment overrides. A missing file is not an error.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if _, err := c.Scheduling.Location(); err != nil {
		return err
	}
	return nil
}
