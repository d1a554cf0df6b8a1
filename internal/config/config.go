package config

import (
	"log"
	"os"
	"strconv"
)

// Sections is the fixed set of library sections. They are seeded once at
// startup and never removed while books reference them.
var Sections = []string{
	"SCIENCES",
	"ARTS",
	"SOCIALS",
	"ECONOMICS",
	"RELIGION",
	"GENERAL STUDIES",
}

// Rules are the lending business rules.
type Rules struct {
	FinePerDay        float64
	DefaultBorrowDays int
	MaxBorrowDays     int
}

type Config struct {
	Port    string
	DBDSN   string
	LogFile string
	Rules   Rules
}

func DefaultRules() Rules {
	return Rules{FinePerDay: 500, DefaultBorrowDays: 7, MaxBorrowDays: 30}
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "shelfmark.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./shelfmark.log"
	}

	rules := DefaultRules()
	rules.FinePerDay = envFloat("FINE_PER_DAY", rules.FinePerDay)
	rules.DefaultBorrowDays = envInt("DEFAULT_BORROW_DAYS", rules.DefaultBorrowDays)
	rules.MaxBorrowDays = envInt("MAX_BORROW_DAYS", rules.MaxBorrowDays)

	cfg := Config{Port: port, DBDSN: dsn, LogFile: logFile, Rules: rules}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s FINE_PER_DAY=%.0f DEFAULT_BORROW_DAYS=%d MAX_BORROW_DAYS=%d",
		cfg.Port, cfg.DBDSN, cfg.LogFile, rules.FinePerDay, rules.DefaultBorrowDays, rules.MaxBorrowDays)
	return cfg
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
		log.Printf("[config] ignoring invalid %s=%q", key, s)
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
			return f
		}
		log.Printf("[config] ignoring invalid %s=%q", key, s)
	}
	return def
}
