package config

import (
	"os"
	"strings"
)

// Environment is the deployment the service runs in. It decides where
// secrets come from and how strict validation is.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

var environments = map[string]Environment{
	"development": Development,
	"test":        Test,
	"production":  Production,
}

// GetEnvironment reads ENV. CI=true takes precedence; unknown or empty
// values fall back to development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	if env, ok := environments[strings.ToLower(strings.TrimSpace(os.Getenv("ENV")))]; ok {
		return env
	}
	return Development
}

// IsProduction reports whether ENV selects the production deployment.
func IsProduction() bool {
	return GetEnvironment() == Production
}
