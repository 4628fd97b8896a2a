package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const minProductionSecretLength = 32

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errors []string

	if cfg.ServerPort == "" {
		errors = append(errors, ValidationError{"SERVER_PORT", "is required"}.Error())
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errors = append(errors, ValidationError{"DB_HOST/DB_NAME", "are required for postgres"}.Error())
		}
		if cfg.DBPassword == "" && env != Development && env != Test {
			errors = append(errors, ValidationError{"DB_PASSWORD", "db_password secret or DB_PASSWORD is required"}.Error())
		}
	case "sqlite":
		if cfg.DBPath == "" {
			errors = append(errors, ValidationError{"DB_PATH", "is required for sqlite"}.Error())
		}
	default:
		errors = append(errors, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}.Error())
	}

	if cfg.JWTSecret == "" {
		errors = append(errors, ValidationError{"JWT_SECRET", "jwt_secret secret or JWT_SECRET is required"}.Error())
	}
	if cfg.TokenTTL <= 0 {
		errors = append(errors, ValidationError{"TOKEN_TTL", "must be positive"}.Error())
	}
	if cfg.RecipeCreationLimit < 0 {
		errors = append(errors, ValidationError{"RECIPE_CREATION_LIMIT", "must not be negative"}.Error())
	}
	if cfg.S3Bucket != "" && cfg.S3Region == "" {
		errors = append(errors, ValidationError{"AWS_REGION", "is required when S3_BUCKET_NAME is set"}.Error())
	}

	if env == Production {
		if len(cfg.JWTSecret) > 0 && len(cfg.JWTSecret) < minProductionSecretLength {
			errors = append(errors, ValidationError{"JWT_SECRET", fmt.Sprintf("must be at least %d bytes in production", minProductionSecretLength)}.Error())
		}
		for _, origin := range cfg.CORSOrigins {
			if origin == "*" {
				errors = append(errors, ValidationError{"CORS_ORIGINS", "wildcard origin is not allowed in production"}.Error())
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
