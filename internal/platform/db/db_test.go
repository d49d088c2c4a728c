package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const sampleYAML = `
mode: dev
addr: ":8080"
database:
  host: 127.0.0.1
  port: 3306
  user: mirin
  password: filepass
  dbname: mirin
auth:
  jwt_secret: filesecret
promptpay:
  id: "0812345678"
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Mode)
	assert.Equal(t, "mirin_auth", cfg.Auth.CookieName)
	assert.Equal(t, 7*24, cfg.Auth.TokenTTLHours)
	assert.Equal(t, "./uploads", cfg.Uploads.Dir)
	assert.Equal(t, 10, cfg.Payments.SweepMinutes)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MIRIN_JWT_SECRET", "envsecret")
	t.Setenv("MIRIN_DB_PASSWORD", "envpass")
	t.Setenv("MIRIN_DB_PORT", "3307")
	t.Setenv("PROMPTPAY_ID", "0899999999")

	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "envsecret", cfg.Auth.JWTSecret)
	assert.Equal(t, "envpass", cfg.DB.Password)
	assert.Equal(t, 3307, cfg.DB.Port)
	assert.Equal(t, "0899999999", cfg.PromptPay.ID)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
