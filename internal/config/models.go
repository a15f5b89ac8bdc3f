package config

// ServerConfig represents the configuration of the ingress transports
type ServerConfig struct {
	IngressType          string
	ListenAddress        string
	MaxBodyBytes         int64
	SMTPListenAddress    string
	SMTPDomain           string
	SMTPMaxMessageBytes  int64
	SMTPMaxRecipients    int
	AllowedSenderDomains []string
}

// IngestionConfig represents the configuration of the HTTP ingestion API
type IngestionConfig struct {
	APIToken string
}

// S3Config represents the configuration for the content-addressed bucket
type S3Config struct {
	BucketName   string
	Region       string
	ProfileName  string
	EndpointURL  string
	UsePathStyle bool
	ACL          string
	PublicURL    string
	KeyPrefix    string
}

// WebhookConfig represents the configuration for the chat notifier
type WebhookConfig struct {
	URL     string
	Token   string
	Network string
	Channel string
	Timeout string
}

// NotifyConfig represents the notification policy
type NotifyConfig struct {
	Enabled bool
	Policy  string
}

// PostProcessConfig represents the post-processor chain configuration
type PostProcessConfig struct {
	Processors []string
	ScratchDir string
}

// LedgerConfig represents the archive ledger configuration
type LedgerConfig struct {
	Enabled          bool
	Type             string
	Retention        string
	CleanupFrequency string
	SQLitePath       string
	MySQLDSN         string
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		IngressType:          c.GetString("server.ingress_type"),
		ListenAddress:        c.GetString("server.listen_address"),
		MaxBodyBytes:         c.GetInt64("server.max_body_bytes"),
		SMTPListenAddress:    c.GetString("server.smtp.listen_address"),
		SMTPDomain:           c.GetString("server.smtp.domain"),
		SMTPMaxMessageBytes:  c.GetInt64("server.smtp.max_message_bytes"),
		SMTPMaxRecipients:    c.GetInt("server.smtp.max_recipients"),
		AllowedSenderDomains: c.GetStringSlice("server.allowed_sender_domains"),
	}
}

// GetIngestion returns the ingestion API configuration
func (c *Config) GetIngestion() IngestionConfig {
	return IngestionConfig{
		APIToken: c.GetString("ingestion.api_token"),
	}
}

// GetS3 returns the S3 configuration
func (c *Config) GetS3() S3Config {
	return S3Config{
		BucketName:   c.GetString("s3.bucket_name"),
		Region:       c.GetString("s3.region"),
		ProfileName:  c.GetString("s3.profile_name"),
		EndpointURL:  c.GetString("s3.endpoint_url"),
		UsePathStyle: c.GetBool("s3.use_path_style"),
		ACL:          c.GetString("s3.acl"),
		PublicURL:    c.GetString("s3.public_url"),
		KeyPrefix:    c.GetString("s3.key_prefix"),
	}
}

// GetWebhook returns the webhook configuration
func (c *Config) GetWebhook() WebhookConfig {
	return WebhookConfig{
		URL:     c.GetString("webhook.url"),
		Token:   c.GetString("webhook.token"),
		Network: c.GetString("webhook.network"),
		Channel: c.GetString("webhook.channel"),
		Timeout: c.GetString("webhook.timeout"),
	}
}

// GetNotify returns the notification configuration
func (c *Config) GetNotify() NotifyConfig {
	return NotifyConfig{
		Enabled: c.GetBool("notify.enabled"),
		Policy:  c.GetString("notify.policy"),
	}
}

// GetPostProcess returns the post-processor configuration
func (c *Config) GetPostProcess() PostProcessConfig {
	return PostProcessConfig{
		Processors: c.GetStringSlice("postprocess.processors"),
		ScratchDir: c.GetString("postprocess.scratch_dir"),
	}
}

// GetLedger returns the archive ledger configuration
func (c *Config) GetLedger() LedgerConfig {
	return LedgerConfig{
		Enabled:          c.GetBool("ledger.enabled"),
		Type:             c.GetString("ledger.type"),
		Retention:        c.GetString("ledger.retention"),
		CleanupFrequency: c.GetString("ledger.cleanup_frequency"),
		SQLitePath:       c.GetString("ledger.sqlite_path"),
		MySQLDSN:         c.GetString("ledger.mysql_dsn"),
	}
}
