package tests

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/aixblock/rewards-engine/internal/config"
)

// GenerateTestDbName returns a random database name suitable for an
// isolated test database.
func GenerateTestDbName() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("test_%s", hex.EncodeToString(b)), nil
}

// GetDbConfigFromEnv reads database connection parameters from the
// environment, falling back to a local postgres instance.
func GetDbConfigFromEnv() *config.DatabaseConfig {
	host := os.Getenv("TEST_DATABASE_HOST")
	if host == "" {
		host = "localhost"
	}
	port := 5432
	if p := os.Getenv("TEST_DATABASE_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			port = parsed
		}
	}
	user := os.Getenv("TEST_DATABASE_USER")
	if user == "" {
		user = "postgres"
	}

	return &config.DatabaseConfig{
		Host:     host,
		Port:     port,
		User:     user,
		Password: os.Getenv("TEST_DATABASE_PASSWORD"),
		DbName:   os.Getenv("TEST_DATABASE_DB_NAME"),
	}
}

// LargeTestsEnabled reports whether tests that need a real database
// should run.
func LargeTestsEnabled() bool {
	return os.Getenv("TEST_DATABASE_ENABLED") == "true"
}
