package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Log           LogConfig           `yaml:"log"`
	CORS          CORSConfig          `yaml:"cors"`
	Site          SiteConfig          `yaml:"site"`
	Mail          MailConfig          `yaml:"mail"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Archive       ArchiveConfig       `yaml:"archive"`
	Discord       DiscordConfig       `yaml:"discord"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Redis         RedisConfig         `yaml:"redis"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Security      SecurityConfig      `yaml:"security"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"15s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"SERVER_MAX_BODY_BYTES"   env-default:"65536"`
}

// DatabaseConfig holds submission store settings.
// Driver "postgres" requires DSN; "memory" keeps submissions in process (development only).
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"             env:"DATABASE_DRIVER"             env-default:"postgres"`
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"0"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"5m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"    env:"DATABASE_CONNECT_TIMEOUT"    env-default:"10s"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"   env:"DATABASE_MIGRATE_ON_START"   env-default:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SiteConfig describes the public site used in email copy and links.
type SiteConfig struct {
	Name      string `yaml:"name"       env:"SITE_NAME"       env-default:"Spring Lane Nursery"`
	PublicURL string `yaml:"public_url" env:"SITE_PUBLIC_URL" env-default:"http://localhost:8080"`
	Phone     string `yaml:"phone"      env:"SITE_PHONE"`
}

// MailConfig holds email provider settings.
type MailConfig struct {
	Enabled     bool          `yaml:"enabled"      env:"MAIL_ENABLED"      env-default:"true"`
	APIURL      string        `yaml:"api_url"      env:"MAIL_API_URL"      env-default:"https://api.postmarkapp.com/email"`
	ServerToken string        `yaml:"server_token" env:"MAIL_SERVER_TOKEN"`
	From        string        `yaml:"from"         env:"MAIL_FROM"         env-default:"no-reply@springlanenursery.co.uk"`
	AdminEmail  string        `yaml:"admin_email"  env:"MAIL_ADMIN_EMAIL"  env-default:"office@springlanenursery.co.uk"`
	HREmail     string        `yaml:"hr_email"     env:"MAIL_HR_EMAIL"`
	Timeout     time.Duration `yaml:"timeout"      env:"MAIL_TIMEOUT"      env-default:"10s"`
}

// NotificationsConfig controls the background notification queue.
type NotificationsConfig struct {
	Workers      int           `yaml:"workers"       env:"NOTIFY_WORKERS"       env-default:"2"`
	QueueSize    int           `yaml:"queue_size"    env:"NOTIFY_QUEUE_SIZE"    env-default:"100"`
	MaxAttempts  int           `yaml:"max_attempts"  env:"NOTIFY_MAX_ATTEMPTS"  env-default:"3"`
	RetryBackoff time.Duration `yaml:"retry_backoff" env:"NOTIFY_RETRY_BACKOFF" env-default:"2s"`
	JobTimeout   time.Duration `yaml:"job_timeout"   env:"NOTIFY_JOB_TIMEOUT"   env-default:"45s"`
}

// ArchiveConfig holds S3-compatible storage settings for rendered PDFs.
// Archiving is disabled when Endpoint is empty.
type ArchiveConfig struct {
	Endpoint  string        `yaml:"endpoint"   env:"ARCHIVE_ENDPOINT"`
	AccessKey string        `yaml:"access_key" env:"ARCHIVE_ACCESS_KEY"`
	SecretKey string        `yaml:"secret_key" env:"ARCHIVE_SECRET_KEY"`
	Bucket    string        `yaml:"bucket"     env:"ARCHIVE_BUCKET"     env-default:"submissions"`
	Region    string        `yaml:"region"     env:"ARCHIVE_REGION"     env-default:"us-east-1"`
	UseSSL    bool          `yaml:"use_ssl"    env:"ARCHIVE_USE_SSL"    env-default:"true"`
	LinkTTL   time.Duration `yaml:"link_ttl"   env:"ARCHIVE_LINK_TTL"   env-default:"720h"`
}

// DiscordConfig holds the optional staff-channel webhook that mirrors admin alerts.
type DiscordConfig struct {
	WebhookID    string `yaml:"webhook_id"    env:"DISCORD_WEBHOOK_ID"`
	WebhookToken string `yaml:"webhook_token" env:"DISCORD_WEBHOOK_TOKEN"`
}

// KafkaConfig holds the optional submission event stream.
type KafkaConfig struct {
	Brokers string        `yaml:"brokers" env:"KAFKA_BROKERS"`
	Topic   string        `yaml:"topic"   env:"KAFKA_TOPIC"   env-default:"nursery.submissions"`
	Timeout time.Duration `yaml:"timeout" env:"KAFKA_TIMEOUT" env-default:"2s"`
}

// RedisConfig holds the optional shared rate-limit store.
type RedisConfig struct {
	URL          string        `yaml:"url"            env:"REDIS_URL"`
	PoolSize     int           `yaml:"pool_size"      env:"REDIS_POOL_SIZE"      env-default:"10"`
	DialTimeout  time.Duration `yaml:"dial_timeout"   env:"REDIS_DIAL_TIMEOUT"   env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout"   env:"REDIS_READ_TIMEOUT"   env-default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout"  env:"REDIS_WRITE_TIMEOUT"  env-default:"3s"`
}

// RateLimitConfig bounds requests to the public form endpoints per client IP.
type RateLimitConfig struct {
	FormsPerMinute  int           `yaml:"forms_per_minute" env:"RATE_LIMIT_FORMS_PER_MINUTE" env-default:"20"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"5m"`
}

// SecurityConfig holds shared secrets.
type SecurityConfig struct {
	// CronSecret guards the scheduled keep-alive endpoint.
	CronSecret string `yaml:"cron_secret" env:"CRON_SECRET"`
	// LinkSecret is the master secret document download links are derived from.
	LinkSecret string `yaml:"link_secret" env:"LINK_SECRET"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Enabled reports whether rendered PDFs are archived to object storage.
func (c ArchiveConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Enabled reports whether the Discord mirror is configured.
func (c DiscordConfig) Enabled() bool {
	return c.WebhookID != "" && c.WebhookToken != ""
}

// BrokerList splits the comma-separated broker list. Empty means disabled.
func (c KafkaConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
