// Package config loads the marketplace settings from config.toml and
// KRISI_ environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Database drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const envProduction = "production"

// Config is the decoded form of config.toml. Every key can be overridden
// with KRISI_<SECTION>_<KEY>, e.g. KRISI_DATABASE_DRIVER.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Log          LogConfig          `mapstructure:"log"`
	Escrow       EscrowConfig       `mapstructure:"escrow"`
	Order        OrderConfig        `mapstructure:"order"`
	Notification NotificationConfig `mapstructure:"notification"`
	Event        EventConfig        `mapstructure:"event"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

// DatabaseConfig selects the repository backend. Host and credentials
// apply to postgres, Path to sqlite.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	Path            string `mapstructure:"path"` // ":memory:" for an in-process database
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// RedisConfig backs the shared idempotency store when Enabled.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

// EscrowConfig sets how long a held payment waits before its release
// deadline.
type EscrowConfig struct {
	HoldWindow time.Duration `mapstructure:"hold_window"`
}

type OrderConfig struct {
	MaxConflictRetries int `mapstructure:"max_conflict_retries"`
}

// NotificationConfig sizes the dispatcher pool. FailureRate makes the log
// sender fail that share of sends so the FAILED path can be exercised.
type NotificationConfig struct {
	Workers     int           `mapstructure:"workers"`
	QueueSize   int           `mapstructure:"queue_size"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
	FailureRate float64       `mapstructure:"failure_rate"`
}

type EventConfig struct {
	IdempotencyEnabled bool          `mapstructure:"idempotency_enabled"`
	IdempotencyTTL     time.Duration `mapstructure:"idempotency_ttl"`
}

type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

type HTTPConfig struct {
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
}

// TelemetryConfig toggles each OTLP signal. Enabled covers traces.
type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"` // defaults to app.name
	Insecure          bool          `mapstructure:"insecure"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
}

// defaults lists every key. A key must be known to viper for its
// environment override to apply.
var defaults = map[string]any{
	"app.name": "krisi",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             DriverMemory,
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "krisi",
	"database.sslmode":            "disable",
	"database.path":               "krisi.db",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"escrow.hold_window": "48h",

	"order.max_conflict_retries": 5,

	"notification.workers":      4,
	"notification.queue_size":   256,
	"notification.send_timeout": "5s",
	"notification.failure_rate": 0.0,

	"event.idempotency_enabled": true,
	"event.idempotency_ttl":     "24h",

	"kafka.enabled":       false,
	"kafka.brokers":       []string{},
	"kafka.topic":         "krisi.domain-events",
	"kafka.batch_timeout": "100ms",

	"http.read_timeout":     "15s",
	"http.write_timeout":    "15s",
	"http.idle_timeout":     "60s",
	"http.max_header_bytes": 1 << 20,
	"http.trusted_proxies":  []string{},

	"telemetry.enabled":            false,
	"telemetry.metrics_enabled":    false,
	"telemetry.logs_enabled":       false,
	"telemetry.collector_endpoint": "localhost:4317",
	"telemetry.sampling_ratio":     1.0,
	"telemetry.service_name":       "",
	"telemetry.insecure":           true,
	"telemetry.db_trace_enabled":   false,
	"telemetry.metrics_interval":   "60s",
}

// Load reads config.toml from ".", "./configs" or "/app" when present,
// applies KRISI_ environment overrides and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("KRISI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	db := c.Database
	switch db.Driver {
	case DriverMemory, DriverPostgres, DriverSQLite:
	default:
		check(false, "database.driver must be one of memory, postgres, sqlite, got %q", db.Driver)
	}
	check(db.MaxOpenConns > 0, "database.max_open_conns must be positive")
	check(db.MaxIdleConns >= 0, "database.max_idle_conns cannot be negative")
	check(db.MaxIdleConns <= db.MaxOpenConns,
		"database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)

	check(c.Escrow.HoldWindow >= 0, "escrow.hold_window cannot be negative")
	check(c.Order.MaxConflictRetries >= 1, "order.max_conflict_retries must be at least 1")
	check(c.Notification.Workers >= 1, "notification.workers must be at least 1")
	check(c.Notification.QueueSize >= 1, "notification.queue_size must be at least 1")
	check(c.Notification.FailureRate >= 0 && c.Notification.FailureRate <= 1,
		"notification.failure_rate must be between 0.0 and 1.0, got %f", c.Notification.FailureRate)
	check(!c.Kafka.Enabled || len(c.Kafka.Brokers) > 0, "kafka.brokers is required when kafka is enabled")
	check(c.Telemetry.SamplingRatio >= 0 && c.Telemetry.SamplingRatio <= 1,
		"telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)

	if c.IsProduction() {
		check(db.Driver != DriverMemory, "database.driver cannot be 'memory' in production")
		if db.Driver == DriverPostgres {
			check(db.Password != "", "database.password is required in production")
			check(db.SSLMode != "disable", "database.sslmode cannot be 'disable' in production")
		}
		check(c.Notification.FailureRate == 0, "notification.failure_rate must be 0 in production")
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == envProduction
}

// DSN renders a postgres URL with credentials escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}
