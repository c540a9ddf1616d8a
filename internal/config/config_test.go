package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": 9090},
		"database": {"db_name": "from_file"},
		"storage": {"driver": "memory", "bucket": "docs"}
	}`), 0o600))

	t.Setenv("DATABASE_DBNAME", "from_env")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from_env", cfg.Database.DBName)
	assert.Equal(t, "docs", cfg.Storage.Bucket)
	assert.True(t, cfg.Assistant.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Assistant.Timeout)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestLoadConfig_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server":`), 0o600))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorContains(t, err, "jwt secret is required")
}

func validConfig() *Config {
	cfg := Default()
	cfg.Security.JWTSecret = "test-secret"
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
	assert.Error(t, Default().Validate())

	cfg := validConfig()
	cfg.Storage.Driver = "ftp"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Storage.Driver = "s3"
	cfg.Storage.Bucket = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestDatabaseURL(t *testing.T) {
	db := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", db.GetDatabaseURL())
}
