package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	once     sync.Once
	instance *Config
)

// Config holds all application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	SQLite  SQLiteConfig  `mapstructure:"sqlite"`
	Redis   RedisConfig   `mapstructure:"redis"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Logging LoggingConfig `mapstructure:"logging"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Brew    BrewConfig    `mapstructure:"brew"`
}

type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// Storage drivers
const (
	DriverMongoDB = "mongodb"
	DriverSQLite  = "sqlite"
	DriverRedis   = "redis"
	DriverMemory  = "memory"
)

type StorageConfig struct {
	Driver      string        `mapstructure:"driver"`
	SettingsDB  string        `mapstructure:"settings_db"`
	LogsDB      string        `mapstructure:"logs_db"`
	InitTimeout time.Duration `mapstructure:"init_timeout"`
}

type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	MinPoolSize    uint64        `mapstructure:"min_pool_size"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type JWTConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

type BrewConfig struct {
	DefaultRegion string `mapstructure:"default_region"`
}

// Initialize sets up Viper with default configuration paths and environment bindings
func Initialize() error {
	// A missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/sba")
	viper.AddConfigPath("$HOME/.sba")

	viper.SetEnvPrefix("SBA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("app.name", "sba")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.max_body_bytes", 1<<20)

	viper.SetDefault("storage.driver", DriverSQLite)
	viper.SetDefault("storage.settings_db", "sba-settings")
	viper.SetDefault("storage.logs_db", "sba-logs")
	viper.SetDefault("storage.init_timeout", "10s")

	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.database", "sba")
	viper.SetDefault("mongodb.max_pool_size", 20)
	viper.SetDefault("mongodb.min_pool_size", 1)
	viper.SetDefault("mongodb.connect_timeout", "10s")

	viper.SetDefault("sqlite.path", "sba.db")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.key_prefix", "sba")

	viper.SetDefault("jwt.enabled", false)
	viper.SetDefault("jwt.secret", "change-this-secret-in-production")
	viper.SetDefault("jwt.access_token_ttl", "720h")
	viper.SetDefault("jwt.issuer", "sba")

	viper.SetDefault("logging.level", "debug")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.output", "stdout")

	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type", "X-Request-ID"})

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("metrics.namespace", "sba")

	viper.SetDefault("brew.default_region", "GLOBAL")
}

// Load returns the singleton config instance
func Load() (*Config, error) {
	var err error
	once.Do(func() {
		if err = Initialize(); err != nil {
			return
		}
		cfg := &Config{}
		if err = viper.Unmarshal(cfg); err != nil {
			err = fmt.Errorf("failed to unmarshal config: %w", err)
			return
		}
		if err = cfg.Validate(); err != nil {
			return
		}
		instance = cfg
	})
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, errors.New("config failed to load")
	}
	return instance, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongoDB, DriverSQLite, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.SettingsDB == "" || c.Storage.LogsDB == "" {
		return errors.New("storage.settings_db and storage.logs_db are required")
	}
	if c.Storage.SettingsDB == c.Storage.LogsDB {
		return errors.New("storage.settings_db and storage.logs_db must differ")
	}
	if c.JWT.Enabled && c.JWT.Secret == "" {
		return errors.New("jwt.secret is required when jwt is enabled")
	}
	return nil
}

// GetAddress returns the server address string
func (c *Config) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
