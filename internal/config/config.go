package config

import "os"

type CalculatorServiceConfig struct {
	Port        string
	PostgresCfg PostgresConfig
	RedisCfg    RedisConfig
	AuthCfg     AuthConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret     string
	AdminEmail    string
	AdminPassword string
}

func New() *CalculatorServiceConfig {
	return &CalculatorServiceConfig{
		Port: getEnvOrDefault("LAAS_SERVICE_PORT", "8090"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "laas_calculator"),
			Username: getEnvOrDefault("POSTGRES_USER", "user"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "password"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		AuthCfg: AuthConfig{
			JWTSecret:     getEnvOrDefault("JWT_SECRET", ""),
			AdminEmail:    getEnvOrDefault("ADMIN_EMAIL", "admin@example.com"),
			AdminPassword: getEnvOrDefault("ADMIN_PWD", ""),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
