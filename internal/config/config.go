// Package config loads mail-agent settings from the environment and .env files.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Transport selects how the automatic delivery channel submits mail.
type Transport string

const (
	// TransportSMTP submits through an SMTP server with an app password.
	TransportSMTP Transport = "smtp"
	// TransportGmail submits through the Gmail API with an OAuth token.
	TransportGmail Transport = "gmail"
)

// Config holds every setting the agent consumes. All network clients and the
// signature block are built from this value; nothing reads the environment
// after Load returns.
type Config struct {
	OpenAIAPIKey string `koanf:"openai_api_key"`
	OpenAIModel  string `koanf:"openai_model"`

	EmailAddress string `koanf:"email_address"`
	SenderName   string `koanf:"sender_name"`
	Signature    string `koanf:"signature"`

	OrgDomain      string `koanf:"org_domain"`
	SearchAPIKey   string `koanf:"search_api_key"`
	SearchEngineID string `koanf:"search_engine_id"`

	EmailAppPassword string `koanf:"email_app_password"`
	SMTPServer       string `koanf:"smtp_server"`
	SMTPPort         int    `koanf:"smtp_port"`
	SMTPUseSSL       bool   `koanf:"smtp_use_ssl"`
	SMTPUseTLS       bool   `koanf:"smtp_use_tls"`

	OAuthClientID     string `koanf:"oauth_google_client_id"`
	OAuthClientSecret string `koanf:"oauth_google_client_secret"`
}

// Load reads configuration from the process environment, optionally loading a
// .env file first. Values already present in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("godotenv.Load failed: %w", err)
		}
	} else {
		// Best effort: a ./.env next to the binary is how the agent is
		// normally configured. Absence is fine.
		_ = godotenv.Load()
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"openai_model": "gpt-4.1-mini",
		"smtp_server":  "smtp.gmail.com",
		"smtp_port":    465,
		"smtp_use_ssl": true,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("defaults load failed: %w", err)
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("env load failed: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	cfg.applyDerived()

	return &cfg, nil
}

func (c *Config) applyDerived() {
	if c.SenderName == "" {
		c.SenderName = senderNameFromAddress(c.EmailAddress)
	}
	if c.Signature == "" && c.SenderName != "" {
		c.Signature = "Best Regards,\n" + c.SenderName
	}
}

func senderNameFromAddress(addr string) string {
	local, _, ok := strings.Cut(addr, "@")
	if !ok || local == "" {
		return ""
	}
	// "jane.doe" -> "Jane Doe"
	parts := strings.FieldsFunc(local, func(r rune) bool { return r == '.' || r == '_' || r == '-' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// SearchConfigured reports whether recipient lookup by description can work.
// Without search credentials the agent still runs, it just asks for addresses
// directly.
func (c *Config) SearchConfigured() bool {
	return c.SearchAPIKey != "" && c.SearchEngineID != "" && c.OrgDomain != ""
}

// ValidateManual checks the settings required by the manual (mailto) entry
// point. Missing required credentials are fatal at startup.
func (c *Config) ValidateManual() error {
	var missing []string
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.EmailAddress == "" {
		missing = append(missing, "EMAIL_ADDRESS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.Signature == "" {
		return errors.New("SIGNATURE or SENDER_NAME must be set")
	}
	return nil
}

// ValidateAuto checks the settings required by the automatic entry point for
// the chosen transport, on top of the manual requirements.
func (c *Config) ValidateAuto(t Transport) error {
	if err := c.ValidateManual(); err != nil {
		return err
	}

	switch t {
	case TransportSMTP:
		if c.EmailAppPassword == "" {
			return errors.New("EMAIL_APP_PASSWORD must be set for SMTP delivery")
		}
		if c.SMTPServer == "" || c.SMTPPort == 0 {
			return errors.New("SMTP_SERVER and SMTP_PORT must be set for SMTP delivery")
		}
	case TransportGmail:
		if c.OAuthClientID == "" || c.OAuthClientSecret == "" {
			return errors.New("OAUTH_GOOGLE_CLIENT_ID and OAUTH_GOOGLE_CLIENT_SECRET must be set for Gmail delivery")
		}
	default:
		return fmt.Errorf("unknown transport: %s", t)
	}
	return nil
}
