package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	SessionSecret       string
	JWTSecret           string
	JWTTTL              time.Duration
	DatabaseURL         string // postgres URL, or sqlite://<path> for local runs
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	AppBaseURL          string // base URL for accept-invitation links and portal links in emails
	SSOEnabled          bool   // invitees sign in through the identity provider; no password step
	SendinblueAPIKey    string // SENDINBLUE_API_KEY for transactional email (Brevo)
	MailFrom            string
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	PasswordHashCost    int
	InviteTokenHashCost int
	PublicRateLimit     int // requests per minute per IP on public invitation routes
	OutboxInterval      time.Duration
	OutboxBatchSize     int
	OutboxMaxAttempts   int
	OutboxRetention     time.Duration
	OTLPEndpoint        string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_BASE_URL", "http://localhost:4200")
	v.SetDefault("MAIL_FROM", "noreply@easyshifthq.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("JWT_TTL", "12h")
	v.SetDefault("PASSWORD_HASH_COST", 10)
	v.SetDefault("INVITE_TOKEN_HASH_COST", 4)
	v.SetDefault("PUBLIC_RATE_LIMIT", 30)
	v.SetDefault("OUTBOX_INTERVAL", "30s")
	v.SetDefault("OUTBOX_BATCH_SIZE", 50)
	v.SetDefault("OUTBOX_MAX_ATTEMPTS", 8)
	v.SetDefault("OUTBOX_RETENTION_DAYS", 14)

	env := v.GetString("APP_ENV")
	return &Config{
		Env:                 env,
		Port:                v.GetString("PORT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTTTL:              v.GetDuration("JWT_TTL"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   v.GetBool("ALLOW_CROSS_SITE_DEV"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		AppBaseURL:          strings.TrimRight(strings.TrimSpace(v.GetString("APP_BASE_URL")), "/"),
		SSOEnabled:          v.GetBool("SSO_ENABLED"),
		SendinblueAPIKey:    v.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            v.GetString("MAIL_FROM"),
		SMTPHost:            v.GetString("SMTP_HOST"),
		SMTPPort:            v.GetInt("SMTP_PORT"),
		SMTPUsername:        v.GetString("SMTP_USERNAME"),
		SMTPPassword:        v.GetString("SMTP_PASSWORD"),
		PasswordHashCost:    v.GetInt("PASSWORD_HASH_COST"),
		InviteTokenHashCost: v.GetInt("INVITE_TOKEN_HASH_COST"),
		PublicRateLimit:     v.GetInt("PUBLIC_RATE_LIMIT"),
		OutboxInterval:      v.GetDuration("OUTBOX_INTERVAL"),
		OutboxBatchSize:     v.GetInt("OUTBOX_BATCH_SIZE"),
		OutboxMaxAttempts:   v.GetInt("OUTBOX_MAX_ATTEMPTS"),
		OutboxRetention:     time.Duration(v.GetInt("OUTBOX_RETENTION_DAYS")) * 24 * time.Hour,
		OTLPEndpoint:        v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
