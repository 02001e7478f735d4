// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  It is constructed once in
// main and passed by reference into constructors; business logic never reads
// the environment directly.
type Config struct {
	Env  string // application environment ("dev", "test", "prod")
	Port string // HTTP port to listen on

	DBUser string
	DBPass string // optional
	DBHost string
	DBPort string
	DBName string

	DBMaxOpenConns int           // connection pool ceiling
	DBMaxIdleConns int           // idle connections kept around
	DBConnLifetime time.Duration // recycle connections older than this

	AccessSecret   string // secret used to sign access tokens
	RefreshSecret  string // distinct secret used to sign refresh tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	RabbitURL string // AMQP broker URL; empty disables audit events

	DashboardCacheTTL time.Duration // lifetime of cached dashboard aggregates

	SweepEnabled   bool          // run the expired-token sweep job
	SweepInterval  time.Duration // how often the sweep runs
	SweepRetention time.Duration // keep expired/revoked rows this long past expiry
}

// Load reads configuration from environment variables.  Required variables
// are enforced by must() and missing values cause the program to exit with a
// fatal log message.  Token TTLs fall back to the documented defaults
// (15 minutes access, 7 days refresh).
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: envInt("DB_MAX_IDLE_CONNS", 10),
		DBConnLifetime: envDur("DB_CONN_LIFETIME", 30*time.Minute),
		AccessSecret:   must("ACCESS_TOKEN_SECRET"),
		RefreshSecret:  must("REFRESH_TOKEN_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		RabbitURL:      os.Getenv("RABBITMQ_URL"),

		DashboardCacheTTL: envDur("DASHBOARD_CACHE_TTL", 30*time.Second),

		SweepEnabled:   envBool("TOKEN_SWEEP_ENABLED", false),
		SweepInterval:  envDur("TOKEN_SWEEP_INTERVAL", time.Hour),
		SweepRetention: envDur("TOKEN_SWEEP_RETENTION", 30*24*time.Hour),
	}
}

// IsProd reports whether the app runs in a production environment.  Cookie
// attributes (Secure, SameSite) depend on this.
func (c Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// AccessTTL returns the access token lifetime as a duration.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMin) * time.Minute
}

// RefreshTTL returns the refresh token lifetime as a duration.
func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLDays) * 24 * time.Hour
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
