package config

import "os"

type Config struct {
	MongoURI       string
	Database       string
	RedisAddr      string
	RabbitURI      string
	RabbitExchange string
	Port           string
}

func Load() *Config {
	return &Config{
		MongoURI:       getEnv("MONGO_URI", ""),
		Database:       getEnv("MONGO_DATABASE", "form_service"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RabbitURI:      getEnv("RABBITMQ_URI", ""),
		RabbitExchange: getEnv("RABBITMQ_EXCHANGE", ""),
		Port:           getEnv("PORT", "6677"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
