// Package config holds the runtime configuration. Options are a static set
// loaded once at startup through viper; validation fails fast and lists every
// violated constraint.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig indicates startup configuration validation failed.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full runtime configuration.
type Config struct {
	PollInterval time.Duration `mapstructure:"poll-interval"`
	CallTimeout  time.Duration `mapstructure:"call-timeout"`
	ProfilesFile string        `mapstructure:"profiles-file"`
	StatusAddr   string        `mapstructure:"status-addr"`

	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Mailbox   MailboxConfig   `mapstructure:"mailbox"`
	Storage   StorageConfig   `mapstructure:"storage"`
	WhatsApp  WhatsAppConfig  `mapstructure:"whatsapp"`
	AutoReply AutoReplyConfig `mapstructure:"auto-reply"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
}

type ScoringConfig struct {
	PassingScore int `mapstructure:"passing-score"`
	MaxScore     int `mapstructure:"max-score"`
}

type MailboxConfig struct {
	CredentialsFile string `mapstructure:"credentials-file"`
	TokenFile       string `mapstructure:"token-file"`
	Query           string `mapstructure:"query"`
	WindowDays      int    `mapstructure:"window-days"`
	MaxMessages     int    `mapstructure:"max-messages"`
}

type StorageConfig struct {
	WorkbookPath   string `mapstructure:"workbook-path"`
	SheetName      string `mapstructure:"sheet-name"`
	LedgerPath     string `mapstructure:"ledger-path"`
	QueuePath      string `mapstructure:"queue-path"`
	ResumeCacheDir string `mapstructure:"resume-cache-dir"`
}

type WhatsAppConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	AccountSID string `mapstructure:"account-sid"`
	AuthToken  string `mapstructure:"auth-token"`
	FromNumber string `mapstructure:"from-number"`
	ToNumber   string `mapstructure:"to-number"`
}

type AutoReplyConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	CompanyName   string `mapstructure:"company-name"`
	InterviewDays int    `mapstructure:"interview-days"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// SetDefaults registers the default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("poll-interval", 60*time.Second)
	v.SetDefault("call-timeout", 30*time.Second)
	v.SetDefault("profiles-file", "requirements.yaml")
	v.SetDefault("status-addr", "")

	v.SetDefault("scoring.passing-score", 8)
	v.SetDefault("scoring.max-score", 10)

	v.SetDefault("mailbox.credentials-file", "credentials.json")
	v.SetDefault("mailbox.token-file", "token.json")
	v.SetDefault("mailbox.query", "has:attachment")
	v.SetDefault("mailbox.window-days", 7)
	v.SetDefault("mailbox.max-messages", 100)

	v.SetDefault("storage.workbook-path", "applications.xlsx")
	v.SetDefault("storage.sheet-name", "Applications")
	v.SetDefault("storage.ledger-path", "ledger.db")
	v.SetDefault("storage.queue-path", "overflow.db")
	v.SetDefault("storage.resume-cache-dir", "cv_cache")

	v.SetDefault("auto-reply.enabled", true)
	v.SetDefault("auto-reply.company-name", "Our Company")
	v.SetDefault("auto-reply.interview-days", 3)

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
}

// Load unmarshals and validates the configuration.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate collects every violated constraint before failing; this is a
// startup check, not a hot path.
func (c *Config) Validate() error {
	var violations []string

	if c.PollInterval <= 0 {
		violations = append(violations, "poll-interval must be positive")
	}
	if c.CallTimeout <= 0 {
		violations = append(violations, "call-timeout must be positive")
	}
	if c.ProfilesFile == "" {
		violations = append(violations, "profiles-file is required")
	}

	if c.Scoring.MaxScore <= 0 {
		violations = append(violations, "scoring.max-score must be positive")
	}
	if c.Scoring.PassingScore < 0 || c.Scoring.PassingScore > c.Scoring.MaxScore {
		violations = append(violations,
			fmt.Sprintf("scoring.passing-score must be within 0..%d", c.Scoring.MaxScore))
	}

	if c.Storage.WorkbookPath == "" {
		violations = append(violations, "storage.workbook-path is required")
	}
	if c.Storage.LedgerPath == "" {
		violations = append(violations, "storage.ledger-path is required")
	}
	if c.Storage.QueuePath == "" {
		violations = append(violations, "storage.queue-path is required")
	}

	if c.WhatsApp.Enabled {
		if c.WhatsApp.AccountSID == "" || c.WhatsApp.AuthToken == "" {
			violations = append(violations, "whatsapp.account-sid and whatsapp.auth-token are required when whatsapp is enabled")
		}
		if c.WhatsApp.FromNumber == "" || c.WhatsApp.ToNumber == "" {
			violations = append(violations, "whatsapp.from-number and whatsapp.to-number are required when whatsapp is enabled")
		}
	}

	if c.AutoReply.Enabled {
		if c.SMTP.Host == "" || c.SMTP.Username == "" || c.SMTP.Password == "" {
			violations = append(violations, "smtp.host, smtp.username and smtp.password are required when auto-reply is enabled")
		}
		if c.AutoReply.InterviewDays <= 0 {
			violations = append(violations, "auto-reply.interview-days must be positive")
		}
	}

	if len(violations) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(violations, "; "))
	}
	return nil
}
