// Package config loads the site configuration from the environment (and a
// .env file, when present) using viper, then validates it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Environment is the running environment of the site.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

const (
	ProviderEmailJS = "emailjs"
	ProviderResend  = "resend"
)

// ResendTemplateID is the built-in template the resend provider renders.
// It is the MAIL_TEMPLATE_ID default for that provider.
const ResendTemplateID = "contact_default"

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" validate:"oneof=development production"`
	Port           string      `mapstructure:"PORT" validate:"required,numeric"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS"`
}

// MailConfig holds the outbound message-send client settings. ServiceID,
// TemplateID and PublicKey may be empty: the contact form then reports a
// configuration error instead of refusing to boot.
type MailConfig struct {
	Provider    string `mapstructure:"PROVIDER" validate:"oneof=emailjs resend"`
	ServiceID   string `mapstructure:"SERVICE_ID"`
	TemplateID  string `mapstructure:"TEMPLATE_ID"`
	PublicKey   string `mapstructure:"PUBLIC_KEY"`
	PrivateKey  string `mapstructure:"PRIVATE_KEY"`
	BaseURL     string `mapstructure:"BASE_URL" validate:"omitempty,url"`
	FromAddress string `mapstructure:"FROM_ADDRESS" validate:"omitempty,email"`
	FromName    string `mapstructure:"FROM_NAME"`
}

// Configured reports whether all three client identifiers are present.
func (m MailConfig) Configured() bool {
	return m.ServiceID != "" && m.TemplateID != "" && m.PublicKey != ""
}

// ContactConfig holds the contact form settings.
type ContactConfig struct {
	RecipientName  string        `mapstructure:"RECIPIENT_NAME" validate:"required"`
	RecipientEmail string        `mapstructure:"RECIPIENT_EMAIL" validate:"required,email"`
	SendTimeout    time.Duration `mapstructure:"SEND_TIMEOUT" validate:"gt=0"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL" validate:"gt=0"`
	RateLimit      int           `mapstructure:"RATE_LIMIT" validate:"gte=0"`
	RateWindow     time.Duration `mapstructure:"RATE_WINDOW" validate:"gt=0"`
}

// RedisConfig holds the rate limiter's redis connection. An empty Address
// disables rate limiting.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS"`
	Password string `mapstructure:"PASSWORD"`
	DB       int    `mapstructure:"DB" validate:"gte=0"`
}

// DatabaseConfig points at the sqlite file.
type DatabaseConfig struct {
	Path string `mapstructure:"PATH" validate:"required"`
}

// AdminConfig holds the admin area credentials.
type AdminConfig struct {
	Username string `mapstructure:"USERNAME"`
	Password string `mapstructure:"PASSWORD"`
}

// Config aggregates all sections.
type Config struct {
	Server   ServerConfig   `mapstructure:"SERVER"`
	Mail     MailConfig     `mapstructure:"MAIL"`
	Contact  ContactConfig  `mapstructure:"CONTACT"`
	Redis    RedisConfig    `mapstructure:"REDIS"`
	Database DatabaseConfig `mapstructure:"DATABASE"`
	Admin    AdminConfig    `mapstructure:"ADMIN"`
}

// IsProduction reports whether the site runs in production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds config keys to environment variables.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig reads defaults and environment variables into a Config and
// validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", string(EnvDevelopment))
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("MAIL.PROVIDER", ProviderEmailJS)
	v.SetDefault("MAIL.BASE_URL", "https://api.emailjs.com")
	v.SetDefault("MAIL.FROM_NAME", "Portfolio Contact Form")
	v.SetDefault("CONTACT.RECIPIENT_NAME", "Rahul")
	v.SetDefault("CONTACT.RECIPIENT_EMAIL", "rahuldoty@gmail.com")
	v.SetDefault("CONTACT.SEND_TIMEOUT", "10s")
	v.SetDefault("CONTACT.SESSION_TTL", "30m")
	v.SetDefault("CONTACT.RATE_LIMIT", 5)
	v.SetDefault("CONTACT.RATE_WINDOW", "1h")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("DATABASE.PATH", "portfolio.db")

	// Mail keys are declared even when unset so Unmarshal sees them.
	v.SetDefault("MAIL.SERVICE_ID", "")
	v.SetDefault("MAIL.TEMPLATE_ID", "")
	v.SetDefault("MAIL.PUBLIC_KEY", "")
	v.SetDefault("MAIL.PRIVATE_KEY", "")
	v.SetDefault("MAIL.FROM_ADDRESS", "")
	v.SetDefault("REDIS.ADDRESS", "")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("ADMIN.USERNAME", "")
	v.SetDefault("ADMIN.PASSWORD", "")

	err := bindEnvVars(v, [][2]string{
		{"SERVER.ENVIRONMENT", "ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"MAIL.PROVIDER", "MAIL_PROVIDER"},
		{"MAIL.SERVICE_ID", "MAIL_SERVICE_ID"},
		{"MAIL.TEMPLATE_ID", "MAIL_TEMPLATE_ID"},
		{"MAIL.PUBLIC_KEY", "MAIL_PUBLIC_KEY"},
		{"MAIL.PRIVATE_KEY", "MAIL_PRIVATE_KEY"},
		{"MAIL.BASE_URL", "MAIL_BASE_URL"},
		{"MAIL.FROM_ADDRESS", "MAIL_FROM_ADDRESS"},
		{"MAIL.FROM_NAME", "MAIL_FROM_NAME"},
		{"CONTACT.RECIPIENT_NAME", "RECIPIENT_NAME"},
		{"CONTACT.RECIPIENT_EMAIL", "RECIPIENT_EMAIL"},
		{"CONTACT.SEND_TIMEOUT", "CONTACT_SEND_TIMEOUT"},
		{"CONTACT.SESSION_TTL", "CONTACT_SESSION_TTL"},
		{"CONTACT.RATE_LIMIT", "CONTACT_RATE_LIMIT"},
		{"CONTACT.RATE_WINDOW", "CONTACT_RATE_WINDOW"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"DATABASE.PATH", "DATABASE_PATH"},
		{"ADMIN.USERNAME", "ADMIN_USERNAME"},
		{"ADMIN.PASSWORD", "ADMIN_PASSWORD"},
	})
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// ALLOWED_ORIGINS arrives as one comma separated string from the env.
	cfg.Server.AllowedOrigins = splitAndTrim(strings.Join(cfg.Server.AllowedOrigins, ","))
	cfg.Mail.Provider = strings.ToLower(strings.TrimSpace(cfg.Mail.Provider))
	if cfg.Mail.Provider == ProviderResend && cfg.Mail.TemplateID == "" {
		cfg.Mail.TemplateID = ResendTemplateID
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"mail_provider", cfg.Mail.Provider,
		"mail_configured", cfg.Mail.Configured(),
		"public_key", logger.MaskKey(cfg.Mail.PublicKey),
		"recipient", logger.MaskEmail(cfg.Contact.RecipientEmail),
		"rate_limit_enabled", cfg.Redis.Address != "")

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.IsProduction() && (cfg.Admin.Username == "" || cfg.Admin.Password == "") {
		return fmt.Errorf("invalid configuration: ADMIN_USERNAME and ADMIN_PASSWORD are required in production")
	}
	return nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
