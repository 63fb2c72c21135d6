package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Binance  BinanceConfig
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
}

type BinanceConfig struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
}

type DatabaseConfig struct {
	Path string
}

type ServerConfig struct {
	Port int
}

type AppConfig struct {
	LogLevel string
}

func Load() (*Config, error) {
	// A local .env is a convenience for development; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{}

	// Binance configuration
	cfg.Binance.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.Binance.SecretKey = getEnv("BINANCE_SECRET_KEY", "")
	cfg.Binance.UseTestnet = getEnvBool("BINANCE_USE_TESTNET", false)

	// Database configuration
	cfg.Database.Path = getEnv("DATABASE_PATH", "data/clusterflow.db")

	// Server configuration
	cfg.Server.Port = getEnvInt("SERVER_PORT", 8080)

	// App configuration
	cfg.App.LogLevel = getEnv("LOG_LEVEL", "info")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
