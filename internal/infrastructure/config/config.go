// Package config loads service configuration from config.toml, a local .env
// file and LEDGER_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. LEDGER_DATABASE_PASSWORD
const EnvPrefix = "LEDGER"

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Port    string `mapstructure:"port"`
	Version string `mapstructure:"version"`
}

// IsProduction reports whether the stricter production checks apply
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"`
}

// DSN returns the postgres URL with user and password escaped
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return r.Host + ":" + strconv.Itoa(r.Port)
}

// JWTConfig holds the shared secret used to verify access tokens issued by
// the identity service
type JWTConfig struct {
	Secret                string        `mapstructure:"secret"`
	Issuer                string        `mapstructure:"issuer"`
	AccessTokenExpiration time.Duration `mapstructure:"access_token_expiration"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes   int           `mapstructure:"max_header_bytes"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`
	// HSTSMaxAge > 0 sends Strict-Transport-Security
	HSTSMaxAge time.Duration `mapstructure:"hsts_max_age"`
}

// CacheConfig selects the order balance cache backend
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // redis, memory, none
	BalanceTTL time.Duration `mapstructure:"balance_ttl"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
}

type LedgerConfig struct {
	HardDeleteEnabled bool   `mapstructure:"hard_delete_enabled"`
	PaymentCodePrefix string `mapstructure:"payment_code_prefix"`
	PaymentCodeDigits int    `mapstructure:"payment_code_digits"`
	DefaultPageSize   int    `mapstructure:"default_page_size"`
	MaxPageSize       int    `mapstructure:"max_page_size"`
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"` // defaults to app.name
	Insecure          bool          `mapstructure:"insecure"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	LogsLevel         string        `mapstructure:"logs_level"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
}

type SentryConfig struct {
	DSN              string  `mapstructure:"dsn"` // empty disables reporting
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

// defaults registers every key with viper. A key must be listed here for a
// LEDGER_ variable to override it.
var defaults = map[string]any{
	"app.name":    "laundry-ledger",
	"app.env":     "development",
	"app.port":    "8080",
	"app.version": "dev",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "laundry",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  time.Hour,
	"database.conn_max_idle_time": 30 * time.Minute,
	"database.log_level":          "warn",

	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                  "",
	"jwt.issuer":                  "laundry-ledger",
	"jwt.access_token_expiration": 15 * time.Minute,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":       15 * time.Second,
	"http.write_timeout":      15 * time.Second,
	"http.idle_timeout":       time.Minute,
	"http.shutdown_timeout":   30 * time.Second,
	"http.max_header_bytes":   1 << 20,
	"http.max_body_size":      1 << 20,
	"http.cors_allow_origins": []string{},
	"http.trusted_proxies":    []string{},
	"http.hsts_max_age":       time.Duration(0),

	"cache.type":        "memory",
	"cache.balance_ttl": 5 * time.Minute,
	"cache.key_prefix":  "ledger:",

	"ledger.hard_delete_enabled": false,
	"ledger.payment_code_prefix": "PAY",
	"ledger.payment_code_digits": 6,
	"ledger.default_page_size":   20,
	"ledger.max_page_size":       100,

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "",
	"telemetry.insecure":                false,
	"telemetry.metrics_enabled":         false,
	"telemetry.metrics_interval":        time.Minute,
	"telemetry.logs_enabled":            false,
	"telemetry.logs_level":              "info",
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,

	"sentry.dsn":                "",
	"sentry.traces_sample_rate": 0.2,
}

// newViper returns a viper instance with the defaults and the LEDGER_
// environment binding applied
func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load loads configuration. Priority (highest to lowest):
//  1. LEDGER_ environment variables, including those loaded from .env
//  2. config.toml in the working directory or /app
//  3. defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
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

	check(c.Database.MaxOpenConns > 0, "database.max_open_conns must be positive")
	check(c.Database.MaxIdleConns >= 0 && c.Database.MaxIdleConns <= c.Database.MaxOpenConns,
		"database.max_idle_conns must be between 0 and database.max_open_conns (%d)", c.Database.MaxOpenConns)
	check(slices.Contains([]string{"redis", "memory", "none"}, c.Cache.Type),
		"cache.type must be one of redis, memory, none; got %q", c.Cache.Type)
	check(c.Ledger.PaymentCodeDigits >= 1 && c.Ledger.PaymentCodeDigits <= 18,
		"ledger.payment_code_digits must be between 1 and 18")
	check(c.Ledger.DefaultPageSize >= 1 && c.Ledger.DefaultPageSize <= c.Ledger.MaxPageSize,
		"ledger.default_page_size must be between 1 and ledger.max_page_size (%d)", c.Ledger.MaxPageSize)
	check(c.Telemetry.SamplingRatio >= 0 && c.Telemetry.SamplingRatio <= 1,
		"telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)

	if c.App.IsProduction() {
		check(len(c.JWT.Secret) >= 32, "jwt.secret must be at least 32 characters in production")
		check(c.Database.Password != "", "database.password is required in production")
		check(c.Database.SSLMode != "disable", "database.sslmode cannot be 'disable' in production")
		check(!slices.Contains(c.HTTP.CORSAllowOrigins, "*"), "http.cors_allow_origins cannot contain '*' in production")
		check(!c.Telemetry.DBLogFullSQL, "telemetry.db_log_full_sql must be false in production")
	} else {
		check(c.JWT.Secret != "", "jwt.secret is required")
	}

	return errors.Join(errs...)
}
