package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
http_port = 8090

[database]
host = "db"
dbname = "doctor_booking"
user = "booking"

[auth]
jwt_secret = "from-file"

[booking]
timezone = "Asia/Kolkata"
horizon_days = 14

[payments]
url = "https://payments.local"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileWithDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.HTTPPort)
	assert.Equal(t, 30, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 14, cfg.Booking.HorizonDays)
	assert.Equal(t, "usd", cfg.Payments.Currency)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Contains(t, cfg.Database.DSN(), "dbname=doctor_booking")

	loc, err := cfg.Booking.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_PASSWORD", "s3cret")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "s3cret", cfg.Database.Password)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing secret", content: "[database]\ndbname = \"x\"\n[payments]\nurl = \"http://p\"\n"},
		{name: "success url without session", content: "[database]\ndbname = \"x\"\n[auth]\njwt_secret = \"s\"\n[payments]\nurl = \"http://p\"\nsuccess_url = \"http://app/ok?bookingId={bookingId}\"\n"},
		{name: "bad timezone", content: "[database]\ndbname = \"x\"\n[auth]\njwt_secret = \"s\"\n[payments]\nurl = \"http://p\"\n[booking]\ntimezone = \"Mars/Olympus\"\n"},
		{name: "ai without url", content: sampleConfig + "\n[ai]\nenabled = true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
