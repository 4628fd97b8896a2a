package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "foodgram")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "foodgram")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "5433", cfg.DBPort)
	assert.Equal(t, "foodgram", cfg.DBUser)
	assert.Equal(t, "secret", cfg.DBPassword)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 20, cfg.RecipeCreationLimit)
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("pw"), 0o600))

	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-secret", cfg.JWTSecret)
	assert.Equal(t, "pw", cfg.DBPassword)
}

func TestValidateConfig(t *testing.T) {
	t.Setenv("CI", "true")

	cfg := &Config{
		ServerPort:          "8080",
		DBDriver:            "mysql",
		TokenTTL:            time.Hour,
		S3Bucket:            "media",
		RecipeCreationLimit: 1,
	}

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "AWS_REGION")
}

func TestValidateConfigSQLite(t *testing.T) {
	t.Setenv("CI", "true")

	cfg := &Config{
		ServerPort: "8080",
		DBDriver:   "sqlite",
		DBPath:     "test.db",
		JWTSecret:  "secret",
		TokenTTL:   time.Hour,
	}

	assert.NoError(t, ValidateConfig(cfg))
}

func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		ci, env string
		want    Environment
	}{
		{"true", "production", CI},
		{"", "production", Production},
		{"", " Production ", Production},
		{"", "test", Test},
		{"", "staging", Development},
		{"", "", Development},
	}

	for _, tt := range tests {
		t.Setenv("CI", tt.ci)
		t.Setenv("ENV", tt.env)
		assert.Equal(t, tt.want, GetEnvironment(), "CI=%q ENV=%q", tt.ci, tt.env)
	}
}

func TestValidateConfigProduction(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "production")
	require.True(t, IsProduction())

	cfg := &Config{
		ServerPort:  "8080",
		DBDriver:    "sqlite",
		DBPath:      "prod.db",
		JWTSecret:   "short",
		TokenTTL:    time.Hour,
		CORSOrigins: []string{"https://foodgram.example", "*"},
	}

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "CORS_ORIGINS")

	cfg.JWTSecret = strings.Repeat("s", 32)
	cfg.CORSOrigins = []string{"https://foodgram.example"}
	assert.NoError(t, ValidateConfig(cfg))

	t.Setenv("ENV", "development")
	cfg.JWTSecret = "short"
	cfg.CORSOrigins = []string{"*"}
	assert.NoError(t, ValidateConfig(cfg))
}
