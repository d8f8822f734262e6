// Package config loads the application configuration from the environment.
// A .env file in the working directory is honoured when present, matching
// the dotenv convention used by the hosting platform's local workflow.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultPort      = 8080
	DefaultWorksheet = "Todos"
)

// Config holds the deployment-time configuration. Values are read once at
// process start; there is no reload.
type Config struct {
	SpreadsheetID   string // SPREADSHEET_ID - identifier of the backing spreadsheet
	SecretKey       string // SECRET_KEY - session/flash signing key for the web UI
	Port            int    // PORT - listening port, normally assigned by the host
	Worksheet       string // WORKSHEET - worksheet title, defaults to 'Todos'
	CredentialsFile string // GOOGLE_CREDENTIALS - path to a service account key file
	Debug           bool   // DEBUG - enables debug logging
}

// Load reads the configuration from the environment. SPREADSHEET_ID is the
// only unconditionally required value - SECRET_KEY is validated by the web
// server, which is the only component that uses it.
func Load() (*Config, error) {
	// .env is a local development convenience - a missing file is not an error
	_ = godotenv.Load()

	config := Config{
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		SecretKey:       os.Getenv("SECRET_KEY"),
		Port:            getEnvIntOrDefault("PORT", DefaultPort),
		Worksheet:       getEnvOrDefault("WORKSHEET", DefaultWorksheet),
		CredentialsFile: credentialsFile(),
		Debug:           getEnvBoolOrDefault("DEBUG", false),
	}

	if config.SpreadsheetID == "" {
		return nil, fmt.Errorf("SPREADSHEET_ID is required - use the ID from the spreadsheet URL (the value between /d/ and /edit)")
	}

	return &config, nil
}

// credentialsFile returns the configured key file path, falling back to
// ./credentials.json when one exists. A blank path defers to the environment
// variable key sources.
func credentialsFile() string {
	if file := os.Getenv("GOOGLE_CREDENTIALS"); file != "" {
		return file
	}

	if _, err := os.Stat("credentials.json"); err == nil {
		return "credentials.json"
	}

	return ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}

	return defaultValue
}
