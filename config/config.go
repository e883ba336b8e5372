// Package config loads runtime configuration from the environment and an
// optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds every setting the server and worker need.
type Config struct {
	ServerPort string

	RedisHost string
	RedisPort int
	RedisDB   int

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	HandoffTTL time.Duration

	RunnerInterval  time.Duration
	RunnerBatchSize int

	StorageType string // local | s3
	StoragePath string // directory or bucket

	MessengerType string // webhook | mailbox
	WebhookURL    string

	DirectoryURL     string
	DirectoryTimeout time.Duration

	LogLevel  string
	LogFormat string

	XRayEnabled bool
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// DSN returns the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "remindme")
	v.SetDefault("DB_PASSWORD", "remindme")
	v.SetDefault("DB_NAME", "remindme")

	v.SetDefault("HANDOFF_TTL", time.Hour)

	v.SetDefault("RUNNER_INTERVAL", time.Second)
	v.SetDefault("RUNNER_BATCH_SIZE", 20)

	v.SetDefault("STORAGE_TYPE", "local")
	v.SetDefault("STORAGE_PATH", "/data/mailbox")

	v.SetDefault("MESSENGER_TYPE", "mailbox")
	v.SetDefault("WEBHOOK_URL", "")

	v.SetDefault("DIRECTORY_URL", "http://localhost:9000")
	v.SetDefault("DIRECTORY_TIMEOUT", 5*time.Second)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("XRAY_ENABLED", false)
}

// Load reads configuration. Environment variables override values from
// configFile, which may be empty.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", configFile)
		}
	}

	cfg := &Config{
		ServerPort:       v.GetString("SERVER_PORT"),
		RedisHost:        v.GetString("REDIS_HOST"),
		RedisPort:        v.GetInt("REDIS_PORT"),
		RedisDB:          v.GetInt("REDIS_DB"),
		DBHost:           v.GetString("DB_HOST"),
		DBPort:           v.GetInt("DB_PORT"),
		DBUser:           v.GetString("DB_USER"),
		DBPassword:       v.GetString("DB_PASSWORD"),
		DBName:           v.GetString("DB_NAME"),
		HandoffTTL:       v.GetDuration("HANDOFF_TTL"),
		RunnerInterval:   v.GetDuration("RUNNER_INTERVAL"),
		RunnerBatchSize:  v.GetInt("RUNNER_BATCH_SIZE"),
		StorageType:      strings.ToLower(v.GetString("STORAGE_TYPE")),
		StoragePath:      v.GetString("STORAGE_PATH"),
		MessengerType:    strings.ToLower(v.GetString("MESSENGER_TYPE")),
		WebhookURL:       v.GetString("WEBHOOK_URL"),
		DirectoryURL:     strings.TrimRight(v.GetString("DIRECTORY_URL"), "/"),
		DirectoryTimeout: v.GetDuration("DIRECTORY_TIMEOUT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
		XRayEnabled:      v.GetBool("XRAY_ENABLED"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HandoffTTL <= 0 {
		return errors.New("HANDOFF_TTL must be positive")
	}
	if c.RunnerInterval <= 0 {
		return errors.New("RUNNER_INTERVAL must be positive")
	}
	switch c.MessengerType {
	case "mailbox":
	case "webhook":
		if c.WebhookURL == "" {
			return errors.New("WEBHOOK_URL is required when MESSENGER_TYPE=webhook")
		}
	default:
		return errors.Errorf("unknown messenger type: %s", c.MessengerType)
	}
	return nil
}
