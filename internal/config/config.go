package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Port            string
	DBConn          string
	LogLevel        string
	SweepSchedule   string
	ForecastHorizon int
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SenderEmail     string
	NotifyEmail     string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBConn:        getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=bankroll sslmode=disable"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		SweepSchedule: getEnv("SWEEP_SCHEDULE", "0 6 * * *"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SenderEmail:   getEnv("SENDER_EMAIL", ""),
		NotifyEmail:   getEnv("NOTIFY_EMAIL", ""),
	}

	horizon, err := strconv.Atoi(getEnv("FORECAST_HORIZON_DAYS", "365"))
	if err != nil || horizon <= 0 {
		return nil, fmt.Errorf("FORECAST_HORIZON_DAYS must be a positive integer")
	}
	cfg.ForecastHorizon = horizon

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
