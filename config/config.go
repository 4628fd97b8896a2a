package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string   `env:"SERVER_PORT" env-default:"8080"`
	ServerHost  string   `env:"SERVER_HOST" env-default:"0.0.0.0"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`

	// Database configuration
	DBDriver   string `env:"DB_DRIVER" env-default:"postgres"`
	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" env-default:"foodgram"`
	DBSSLMode  string `env:"DB_SSL_MODE" env-default:"disable"`
	// DBPath is the SQLite file used when DBDriver is "sqlite".
	DBPath string `env:"DB_PATH" env-default:"foodgram.db"`

	// Redis configuration
	RedisHost     string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     string `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`
	RedisURL      string `env:"REDIS_URL"`

	// JWT configuration
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" env-default:"24h"`

	// Media storage. Images go to S3 when S3Bucket is set, otherwise to MediaDir.
	S3Bucket     string `env:"S3_BUCKET_NAME"`
	S3Region     string `env:"AWS_REGION"`
	S3PublicURL  string `env:"S3_PUBLIC_URL"`
	MediaDir     string `env:"MEDIA_DIR" env-default:"media"`
	MediaBaseURL string `env:"MEDIA_BASE_URL" env-default:"/media"`

	// RecipeCreationLimit is the number of recipes one user may publish per hour.
	RecipeCreationLimit int `env:"RECIPE_CREATION_LIMIT" env-default:"20"`

	// PDFFontPath points at a TTF font with Cyrillic glyphs for the shopping list PDF.
	PDFFontPath string `env:"PDF_FONT_PATH"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"json"`
}

// secretFields maps Docker secret file names to the config fields they fill.
func (c *Config) secretFields() map[string]*string {
	return map[string]*string{
		"db_user":        &c.DBUser,
		"db_password":    &c.DBPassword,
		"jwt_secret":     &c.JWTSecret,
		"redis_password": &c.RedisPassword,
		"redis_url":      &c.RedisURL,
	}
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	// Load configuration based on environment
	switch env {
	case CI:
		// CI provides everything through environment variables
	case Development, Test, Production:
		loadSecrets(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadSecrets overlays Docker secrets on top of the environment. A secret
// file wins over the variable of the same meaning.
func loadSecrets(cfg *Config) {
	for name, field := range cfg.secretFields() {
		if value := readSecret(name); value != "" {
			*field = value
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// ServerAddr returns the listen address for the HTTP server.
func (c *Config) ServerAddr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
