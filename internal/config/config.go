package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mail-ingress/")
	v.AddConfigPath("$HOME/.mail-ingress")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("MAIL_INGRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration instance from an explicit config file path
func NewFromFile(path string) (*Config, error) {
	v := NewEmptyViper()
	v.SetConfigFile(path)

	v.AutomaticEnv()
	v.SetEnvPrefix("MAIL_INGRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.ingress_type", "http")
	v.SetDefault("server.listen_address", "0.0.0.0:3000")
	v.SetDefault("server.max_body_bytes", 30*1024*1024)
	v.SetDefault("server.smtp.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.smtp.domain", "localhost")
	v.SetDefault("server.smtp.max_message_bytes", 30*1024*1024)
	v.SetDefault("server.smtp.max_recipients", 50)
	v.SetDefault("server.allowed_sender_domains", []string{})

	// Ingestion defaults
	v.SetDefault("ingestion.api_token", "")

	// S3 defaults
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.profile_name", "")
	v.SetDefault("s3.endpoint_url", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("s3.acl", "public-read")
	v.SetDefault("s3.public_url", "https://pub.rwx.im")
	v.SetDefault("s3.key_prefix", "~meta/mails/v2")

	// Webhook defaults
	v.SetDefault("webhook.url", "https://meta-webhook.infra.rwx.im/trigger")
	v.SetDefault("webhook.token", "")
	v.SetDefault("webhook.network", "irc.rwx.im:6697")
	v.SetDefault("webhook.channel", "#uplink")
	v.SetDefault("webhook.timeout", "10s")

	// Notification defaults
	v.SetDefault("notify.enabled", true)
	v.SetDefault("notify.policy", "new")

	// Post-processing defaults
	v.SetDefault("postprocess.processors", []string{"exiftran", "exiftool"})
	v.SetDefault("postprocess.scratch_dir", "")

	// Ledger defaults
	v.SetDefault("ledger.enabled", true)
	v.SetDefault("ledger.type", "memory")
	v.SetDefault("ledger.retention", "720h")
	v.SetDefault("ledger.cleanup_frequency", "1h")
	v.SetDefault("ledger.sqlite_path", "/data/archive_ledger.db")
	v.SetDefault("ledger.mysql_dsn", "user:password@tcp(localhost:3306)/mail_ingress")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
