// Package config provides configuration loading and validation for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration constants.
const (
	DefaultHost            = "0.0.0.0"
	DefaultThemeAPIPort    = 8080
	DefaultActivityAPIPort = 8081
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultMongoDBTimeout     = 10 * time.Second
	DefaultMongoDBMaxPoolSize = 100

	DefaultRedisPoolSize = 10

	DefaultOutboxPollInterval    = 100 * time.Millisecond
	DefaultOutboxBatchSize       = 100
	DefaultOutboxMaxRetries      = 5
	DefaultOutboxCleanupAge      = 7 * 24 * time.Hour
	DefaultOutboxCleanupInterval = 1 * time.Hour
)

// Config holds the complete application configuration. The theme and
// activity services share the file; each binary reads only its sections.
type Config struct {
	App         AppConfig      `yaml:"app"`
	ThemeAPI    ServerConfig   `yaml:"theme_api"`
	ActivityAPI ServerConfig   `yaml:"activity_api"`
	ThemeDB     MongoDBConfig  `yaml:"theme_db"`
	ActivityDB  MongoDBConfig  `yaml:"activity_db"`
	Redis       RedisConfig    `yaml:"redis"`
	EventBus    EventBusConfig `yaml:"eventbus"`
	Outbox      OutboxConfig   `yaml:"outbox"`
	Log         LogConfig      `yaml:"log"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	// Name is the application name used in logs and metrics.
	Name string `yaml:"name" env:"APP_NAME"`
}

// ServerConfig holds HTTP server configuration. The two API sections share
// the shape, so server settings come from the file rather than env vars.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns the full server address (host:port).
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MongoDBConfig holds MongoDB connection configuration.
type MongoDBConfig struct {
	URI         string        `yaml:"uri"`
	Database    string        `yaml:"database"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxPoolSize uint64        `yaml:"max_pool_size"`
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
}

// EventBusConfig holds event bus configuration.
type EventBusConfig struct {
	StreamPrefix  string `yaml:"stream_prefix" env:"EVENTBUS_STREAM_PREFIX"`
	ConsumerGroup string `yaml:"consumer_group" env:"EVENTBUS_CONSUMER_GROUP"`
	ConsumerName  string `yaml:"consumer_name" env:"EVENTBUS_CONSUMER_NAME"`
	DeadLetterKey string `yaml:"dead_letter_key" env:"EVENTBUS_DEAD_LETTER_KEY"`
	MaxRetries    int    `yaml:"max_retries" env:"EVENTBUS_MAX_RETRIES"`
}

// OutboxConfig holds outbox relay configuration.
type OutboxConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval" env:"OUTBOX_POLL_INTERVAL"`
	BatchSize       int           `yaml:"batch_size" env:"OUTBOX_BATCH_SIZE"`
	MaxRetries      int           `yaml:"max_retries" env:"OUTBOX_MAX_RETRIES"`
	CleanupAge      time.Duration `yaml:"cleanup_age" env:"OUTBOX_CLEANUP_AGE"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"OUTBOX_CLEANUP_INTERVAL"`
	Enabled         bool          `yaml:"enabled" env:"OUTBOX_ENABLED"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // debug | info | warn | error
	Format string `yaml:"format" env:"LOG_FORMAT"` // json | text
}

// Configuration errors.
var (
	ErrConfigNotFound      = errors.New("configuration file not found")
	ErrConfigInvalid       = errors.New("invalid configuration")
	ErrInvalidDuration     = errors.New("invalid duration format")
	ErrInvalidLogLevel     = errors.New("invalid log level: must be debug, info, warn, or error")
	ErrInvalidLogFormat    = errors.New("invalid log format: must be json or text")
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name: "themery",
		},
		ThemeAPI: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultThemeAPIPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		ActivityAPI: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultActivityAPIPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		ThemeDB: MongoDBConfig{
			URI:         "mongodb://localhost:27017",
			Database:    "themery_theme",
			Timeout:     DefaultMongoDBTimeout,
			MaxPoolSize: DefaultMongoDBMaxPoolSize,
		},
		ActivityDB: MongoDBConfig{
			URI:         "mongodb://localhost:27017",
			Database:    "themery_activity",
			Timeout:     DefaultMongoDBTimeout,
			MaxPoolSize: DefaultMongoDBMaxPoolSize,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: DefaultRedisPoolSize,
		},
		EventBus: EventBusConfig{
			StreamPrefix:  "events:",
			ConsumerGroup: "activity-service",
			ConsumerName:  "",
			DeadLetterKey: "events:dead_letter",
			MaxRetries:    3,
		},
		Outbox: OutboxConfig{
			PollInterval:    DefaultOutboxPollInterval,
			BatchSize:       DefaultOutboxBatchSize,
			MaxRetries:      DefaultOutboxMaxRetries,
			CleanupAge:      DefaultOutboxCleanupAge,
			CleanupInterval: DefaultOutboxCleanupInterval,
			Enabled:         true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []error

	errs = c.validateServer("theme_api", c.ThemeAPI, errs)
	errs = c.validateServer("activity_api", c.ActivityAPI, errs)
	errs = c.validateMongoDB("theme_db", c.ThemeDB, errs)
	errs = c.validateMongoDB("activity_db", c.ActivityDB, errs)
	errs = c.validateRedis(errs)
	errs = c.validateEventBus(errs)
	errs = c.validateOutbox(errs)
	errs = c.validateLog(errs)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
	}

	return nil
}

func (c *Config) validateServer(name string, server ServerConfig, errs []error) []error {
	if server.Port <= 0 || server.Port > 65535 {
		errs = append(errs, fmt.Errorf("%s.port must be between 1 and 65535, got %d", name, server.Port))
	}
	if server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s.read_timeout must be positive", name))
	}
	if server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s.write_timeout must be positive", name))
	}
	return errs
}

func (c *Config) validateMongoDB(name string, db MongoDBConfig, errs []error) []error {
	if db.URI == "" {
		errs = append(errs, fmt.Errorf("%s.uri is required", name))
	}
	if db.Database == "" {
		errs = append(errs, fmt.Errorf("%s.database is required", name))
	}
	return errs
}

func (c *Config) validateRedis(errs []error) []error {
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	return errs
}

func (c *Config) validateEventBus(errs []error) []error {
	if c.EventBus.ConsumerGroup == "" {
		errs = append(errs, errors.New("eventbus.consumer_group is required"))
	}
	if c.EventBus.MaxRetries < 0 {
		errs = append(errs, errors.New("eventbus.max_retries must be non-negative"))
	}
	return errs
}

func (c *Config) validateOutbox(errs []error) []error {
	if c.Outbox.PollInterval <= 0 {
		errs = append(errs, errors.New("outbox.poll_interval must be positive"))
	}
	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, errors.New("outbox.batch_size must be positive"))
	}
	if c.Outbox.MaxRetries < 0 {
		errs = append(errs, errors.New("outbox.max_retries must be non-negative"))
	}
	return errs
}

func (c *Config) validateLog(errs []error) []error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ErrInvalidLogLevel)
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, ErrInvalidLogFormat)
	}
	return errs
}

// Load loads configuration from the default config file and environment variables.
func Load() (*Config, error) {
	return LoadFromPath("")
}

// LoadFromPath loads configuration from a specific file path.
// If path is empty, it tries to find the config file in standard locations.
func LoadFromPath(path string) (*Config, error) {
	loader := NewLoader()
	return loader.Load(path)
}

// Loader handles configuration loading from files and environment variables.
type Loader struct {
	configPaths []string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		configPaths: []string{
			"configs/config.yaml",
			"config.yaml",
			"/etc/themery/config.yaml",
		},
	}
}

// WithConfigPaths sets custom config paths to search.
func (l *Loader) WithConfigPaths(paths []string) *Loader {
	l.configPaths = paths
	return l
}

// Load loads configuration from file and environment variables.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := path
	if configPath == "" {
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			configPath = envPath
		} else {
			for _, p := range l.configPaths {
				if _, err := os.Stat(p); err == nil {
					configPath = p
					break
				}
			}
		}
	}

	if configPath != "" {
		if err := l.loadFromFile(cfg, configPath); err != nil {
			// Only return error if path was explicitly specified
			if path != "" || os.Getenv("CONFIG_PATH") != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func (l *Loader) loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.loadEnvToStruct(reflect.ValueOf(cfg).Elem())
}

// loadEnvToStruct recursively loads environment variables into a struct.
func (l *Loader) loadEnvToStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := l.loadEnvToStruct(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}

		if err := l.setFieldFromEnv(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s from env %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

// setFieldFromEnv sets a struct field value from an environment variable string.
//
//nolint:exhaustive // We only support a subset of reflect.Kind for config values
func (l *Loader) setFieldFromEnv(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidDuration, value)
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %s", value)
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value: %s", value)
		}
		field.SetUint(u)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		field.SetBool(b)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		field.SetFloat(f)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// IsDevelopment returns true if the log level indicates a development environment.
func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.Log.Level) == "debug"
}
