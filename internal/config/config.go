package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	AdminDB     DatabaseConfig
	Auth        AuthConfig
	Cache       CacheConfig
	Orders      OrdersConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the connection string understood by lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
}

type CacheConfig struct {
	InvalidationChannel string
}

type OrdersConfig struct {
	BuyerOrdersLimit     int
	SellerOrdersPageSize int
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.AutomaticEnv()

	// .env is optional, env vars win
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	db := DatabaseConfig{
		Host:     getEnvOrViper("DB_HOST", "localhost"),
		Port:     getEnvOrViper("DB_PORT", "5432"),
		User:     getEnvOrViper("DB_USER", "postgres"),
		Password: getEnvOrViper("DB_PASSWORD", "postgres"),
		DBName:   getEnvOrViper("DB_NAME", "marketplace"),
		SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
	}

	admin := db
	admin.User = getEnvOrViper("ADMIN_DB_USER", db.User)
	admin.Password = getEnvOrViper("ADMIN_DB_PASSWORD", db.Password)

	buyerLimit, err := getIntOrViper("BUYER_ORDERS_LIMIT", 200)
	if err != nil {
		return nil, err
	}
	pageSize, err := getIntOrViper("SELLER_ORDERS_PAGE_SIZE", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database:    db,
		AdminDB:     admin,
		Auth: AuthConfig{
			JWTSecret:   getEnvOrViper("AUTH_JWT_SECRET", ""),
			JWTIssuer:   getEnvOrViper("AUTH_JWT_ISSUER", ""),
			JWTAudience: getEnvOrViper("AUTH_JWT_AUDIENCE", "authenticated"),
		},
		Cache: CacheConfig{
			InvalidationChannel: getEnvOrViper("CACHE_INVALIDATION_CHANNEL", "cache_invalidation"),
		},
		Orders: OrdersConfig{
			BuyerOrdersLimit:     buyerLimit,
			SellerOrdersPageSize: pageSize,
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if cfg.Orders.BuyerOrdersLimit < 1 {
		return nil, fmt.Errorf("BUYER_ORDERS_LIMIT must be positive")
	}
	if cfg.Orders.SellerOrdersPageSize < 1 {
		return nil, fmt.Errorf("SELLER_ORDERS_PAGE_SIZE must be positive")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getIntOrViper(key string, defaultValue int) (int, error) {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
