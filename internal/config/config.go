package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port       int
	DBURL      string
	JWTSecret  string
	CORSOrigin string

	// Empty disables the cross-process fan-out backplane.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SweepIntervalMS int
	SendBuffer      int
	WriteWaitMS     int
	MaxMessageBytes int
}

func Load() Config {
	return Config{
		Port:       getEnvInt("PORT", 3001),
		DBURL:      getEnv("DB_URL", "./livetimer.db"),
		JWTSecret:  getEnv("JWT_SECRET", ""),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SweepIntervalMS: getEnvInt("SWEEP_INTERVAL_MS", 30000),
		SendBuffer:      getEnvInt("SEND_BUFFER", 32),
		WriteWaitMS:     getEnvInt("WRITE_WAIT_MS", 30000),
		MaxMessageBytes: getEnvInt("MAX_MESSAGE_BYTES", 4096),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}
