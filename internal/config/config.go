// Package config loads the service configuration: built-in defaults, then an
// optional YAML file named by STUDY_CONFIG, then STUDY_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"exposure-platform/internal/validation"
	"exposure-platform/pkg/database"
	"exposure-platform/pkg/logging"
)

// Config is the complete service configuration
type Config struct {
	Server   ServerConfig      `yaml:"server"`
	Database DatabaseConfig    `yaml:"database"`
	Logging  LoggingConfig     `yaml:"logging"`
	Metrics  MetricsConfig     `yaml:"metrics"`
	Events   EventsConfig      `yaml:"events"`
	Messages map[string]string `yaml:"messages"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	Path            string        `yaml:"path"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// EventsConfig tunes the websocket event stream.
type EventsConfig struct {
	// BufferSize is the number of events queued per subscriber before it is
	// dropped as too slow.
	BufferSize   int           `yaml:"buffer_size"`
	PingInterval time.Duration `yaml:"ping_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          string(database.DriverPostgres),
			Host:            "localhost",
			Port:            5432,
			User:            "study",
			Database:        "exposure",
			SSLMode:         "disable",
			Path:            "data/exposure.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: time.Minute,
			AutoMigrate:     true,
		},
		Logging: LoggingConfig{Level: "info"},
		Metrics: MetricsConfig{Namespace: "exposure_platform"},
		Events: EventsConfig{
			BufferSize:   64,
			PingInterval: 30 * time.Second,
		},
	}
}

// EnvConfigFile names the optional YAML configuration file
const EnvConfigFile = "STUDY_CONFIG"

// LoadConfig builds the configuration from defaults, the YAML file named by
// STUDY_CONFIG and the environment.
func LoadConfig() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from environment variables read through getenv.
func (c *Config) applyEnv(getenv func(string) string) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	flag := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("STUDY_SERVER_HOST", &c.Server.Host)
	num("STUDY_SERVER_PORT", &c.Server.Port)
	dur("STUDY_SERVER_READ_TIMEOUT", &c.Server.ReadTimeout)
	dur("STUDY_SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeout)

	str("STUDY_DB_DRIVER", &c.Database.Driver)
	str("STUDY_DB_HOST", &c.Database.Host)
	num("STUDY_DB_PORT", &c.Database.Port)
	str("STUDY_DB_USER", &c.Database.User)
	str("STUDY_DB_PASSWORD", &c.Database.Password)
	str("STUDY_DB_NAME", &c.Database.Database)
	str("STUDY_DB_SSLMODE", &c.Database.SSLMode)
	str("STUDY_DB_PATH", &c.Database.Path)
	num("STUDY_DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	num("STUDY_DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	flag("STUDY_DB_AUTO_MIGRATE", &c.Database.AutoMigrate)

	str("STUDY_LOG_LEVEL", &c.Logging.Level)
	str("STUDY_METRICS_NAMESPACE", &c.Metrics.Namespace)
	num("STUDY_EVENTS_BUFFER_SIZE", &c.Events.BufferSize)

	return errors.Join(errs...)
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}

	driver, err := database.ParseDriver(c.Database.Driver)
	if err != nil {
		errs = append(errs, err)
	}
	switch driver {
	case database.DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database path is required for sqlite"))
		}
	case database.DriverPostgres, database.DriverPgx:
		if c.Database.Host == "" || c.Database.Database == "" {
			errs = append(errs, errors.New("database host and name are required"))
		}
		if c.Database.MaxOpenConns <= 0 {
			errs = append(errs, errors.New("database max_open_conns must be positive"))
		}
		if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
			errs = append(errs, errors.New("database max_idle_conns exceeds max_open_conns"))
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Events.BufferSize <= 0 {
		errs = append(errs, errors.New("events buffer_size must be positive"))
	}
	for key := range c.Messages {
		if !validation.KnownMessage(validation.MessageKey(key)) {
			errs = append(errs, fmt.Errorf("unknown message key %q", key))
		}
	}

	return errors.Join(errs...)
}

// DatabaseConfig converts the database section for pkg/database.
func (c *Config) DatabaseConfig() *database.Config {
	driver, _ := database.ParseDriver(c.Database.Driver)
	return &database.Config{
		Driver:          driver,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		SSLMode:         c.Database.SSLMode,
		Path:            c.Database.Path,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
	}
}

// Catalog returns the validation messages with the configured overrides.
func (c *Config) Catalog() validation.Catalog {
	if len(c.Messages) == 0 {
		return validation.DefaultCatalog
	}
	cat := make(validation.MapCatalog, len(c.Messages))
	for k, v := range c.Messages {
		cat[validation.MessageKey(k)] = v
	}
	return cat
}
