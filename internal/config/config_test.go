package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	vars := map[string]string{
		"DATABASE_DSN":        "postgres://localhost/test",
		"EMAIL_USER_DOMAIN":   "example.com",
		"EMAIL_SMTP_USERNAME": "noreply@example.com",
		"EMAIL_SMTP_PASSWORD": "secret",
		"EMAIL_SMTP_HOST":     "smtp.example.com",
		"RABBITMQ_DSN":        "amqp://localhost",
		"REDIS_PASSWORD":      "secret",
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.Server.Port)
	require.Equal(t, 10, cfg.Annealer.NoverMultiplier)
	require.Equal(t, 100, cfg.Annealer.NoverBase)
	require.Equal(t, 0.9, cfg.Annealer.DefaultTempSchedule)
	require.Equal(t, 604800, cfg.Redis.CacheTTL)
}

func TestLoadConfigFailsOnMissingRequiredField(t *testing.T) {
	t.Setenv("EMAIL_USER_DOMAIN", "example.com")
	t.Setenv("EMAIL_SMTP_USERNAME", "noreply@example.com")
	t.Setenv("EMAIL_SMTP_PASSWORD", "secret")
	t.Setenv("EMAIL_SMTP_HOST", "smtp.example.com")
	t.Setenv("RABBITMQ_DSN", "amqp://localhost")
	t.Setenv("REDIS_PASSWORD", "secret")

	_, err := LoadConfig()
	require.Error(t, err)
}
