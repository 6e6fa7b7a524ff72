package main

import (
	"flag"
	"github.com/joho/godotenv"
	"os"
)

var flagRunAddr string
var flagLogLevel string
var flagDatabaseURI string
var flagRedisAddr string
var flagNatsURL string
var flagJWTSecret string

func parseFlags() {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	flag.StringVar(&flagRunAddr, "a", ":8080", "address and port")
	flag.StringVar(&flagLogLevel, "l", "info", "log level")
	flag.StringVar(&flagDatabaseURI, "d", "", "database URI")
	flag.StringVar(&flagRedisAddr, "r", "", "redis address for last-read watermarks")
	flag.StringVar(&flagNatsURL, "n", "", "nats URL for message events")
	flag.StringVar(&flagJWTSecret, "s", "", "secret used to verify access tokens")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDR"); envRunAddr != "" {
		flagRunAddr = envRunAddr
	}

	if envLogLevel := os.Getenv("LOG_LEVEL"); envLogLevel != "" {
		flagLogLevel = envLogLevel
	}

	if envDatabaseUri := os.Getenv("DATABASE_URI"); envDatabaseUri != "" {
		flagDatabaseURI = envDatabaseUri
	}

	if envRedisAddr := os.Getenv("REDIS_ADDR"); envRedisAddr != "" {
		flagRedisAddr = envRedisAddr
	}

	if envNatsURL := os.Getenv("NATS_URL"); envNatsURL != "" {
		flagNatsURL = envNatsURL
	}

	if envJWTSecret := os.Getenv("JWT_SECRET"); envJWTSecret != "" {
		flagJWTSecret = envJWTSecret
	}
}
