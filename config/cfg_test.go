package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
[mysql]
dsn = "user:pass@tcp(localhost:3306)/waitlist?parseTime=true"
automigrate = true
max_open_connections = 10
max_idle_connections = 5

[logger]
level = -4
add_source = true

[http]
port = "8081"
address = "127.0.0.1"
allowed_origins = ["https://example.com"]

[auth]
jwt_secret = "file-secret"
master_password = "file-master"
password_hasher_salt_size = 16
password_hasher_iterations = 100000
jwt_ttl = "60m"

[ratelimit]
ip_signups_per_hour = 30
email_signups_per_hour = 3
`

func writeConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(writeConfigFile(t))
	require.NoError(t, err)

	assert.Equal(t, "user:pass@tcp(localhost:3306)/waitlist?parseTime=true", cfg.DB.DSN)
	assert.True(t, cfg.DB.Automigrate)
	assert.Equal(t, 10, cfg.DB.MaxOpenConnections)
	assert.Equal(t, -4, cfg.Logger.Level)
	assert.Equal(t, "8081", cfg.HTTP.Port)
	assert.Equal(t, []string{"https://example.com"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "60m", cfg.Auth.JWTTTL)
	assert.Equal(t, 30, cfg.RateLimit.IPSignupsPerHour)
	assert.Equal(t, 3, cfg.RateLimit.EmailSignupsPerHour)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("MYSQL_DSN", "env:dsn@tcp(db:3306)/waitlist")
	t.Setenv("AUTH_JWT_SECRET", "env-secret")
	t.Setenv("RATELIMIT_IP_SIGNUPS_PER_HOUR", "7")

	cfg, err := LoadConfig(writeConfigFile(t))
	require.NoError(t, err)

	assert.Equal(t, "env:dsn@tcp(db:3306)/waitlist", cfg.DB.DSN)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 7, cfg.RateLimit.IPSignupsPerHour)
	// File values survive where no env override exists.
	assert.Equal(t, "file-master", cfg.Auth.MasterPassword)
}

func TestLoadConfig_DSNFromDiscreteVars(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_USER", "waitlist")
	t.Setenv("MYSQL_PASSWORD", "s3cret")
	t.Setenv("MYSQL_DATABASE", "waitlist")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t,
		"waitlist:s3cret@tcp(db.internal:3306)/waitlist?charset=utf8&parseTime=true",
		cfg.DB.DSN)
}
