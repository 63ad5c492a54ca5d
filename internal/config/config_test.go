package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mail-agent/internal/config"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EMAIL_ADDRESS", "jane.doe@uic.edu")
	t.Setenv("SENDER_NAME", "")
	t.Setenv("SIGNATURE", "")
	t.Setenv("EMAIL_APP_PASSWORD", "")
	t.Setenv("OAUTH_GOOGLE_CLIENT_ID", "")
	t.Setenv("OAUTH_GOOGLE_CLIENT_SECRET", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1-mini", cfg.OpenAIModel)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTPServer)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.True(t, cfg.SMTPUseSSL)
	assert.False(t, cfg.SMTPUseTLS)
}

func TestLoadDerivesSenderNameAndSignature(t *testing.T) {
	setBaseEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", cfg.SenderName)
	assert.Equal(t, "Best Regards,\nJane Doe", cfg.Signature)
}

func TestLoadExplicitValuesWin(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SENDER_NAME", "J. Doe")
	t.Setenv("SIGNATURE", "Thanks,\nJ. Doe")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "J. Doe", cfg.SenderName)
	assert.Equal(t, "Thanks,\nJ. Doe", cfg.Signature)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
}

func TestSearchConfigured(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ORG_DOMAIN", "uic.edu")
	t.Setenv("SEARCH_API_KEY", "key")
	t.Setenv("SEARCH_ENGINE_ID", "")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.False(t, cfg.SearchConfigured(), "all three of domain, key and engine id are required")

	t.Setenv("SEARCH_ENGINE_ID", "cx")
	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.True(t, cfg.SearchConfigured())
}

func TestValidateManual(t *testing.T) {
	setBaseEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.ValidateManual())

	cfg.OpenAIAPIKey = ""
	err = cfg.ValidateManual()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestValidateAuto(t *testing.T) {
	setBaseEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	err = cfg.ValidateAuto(config.TransportSMTP)
	require.Error(t, err, "SMTP needs an app password")
	assert.Contains(t, err.Error(), "EMAIL_APP_PASSWORD")

	cfg.EmailAppPassword = "app-pass"
	require.NoError(t, cfg.ValidateAuto(config.TransportSMTP))

	err = cfg.ValidateAuto(config.TransportGmail)
	require.Error(t, err, "Gmail needs OAuth client credentials")

	cfg.OAuthClientID = "id"
	cfg.OAuthClientSecret = "secret"
	require.NoError(t, cfg.ValidateAuto(config.TransportGmail))

	require.Error(t, cfg.ValidateAuto(config.Transport("carrier-pigeon")))
}
