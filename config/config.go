package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when the corresponding environment variable is unset.
const (
	DefaultPort           = "8080"
	DefaultAPIPort        = "8081"
	DefaultContactsAPIURL = "http://localhost:8081"
	DefaultRequestTimeout = 10 * time.Second
	DefaultRateLimitRPS   = 20
	DefaultRateLimitBurst = 40
)

// Config holds all configuration for both binaries
type Config struct {
	Environment string
	// Port is the web front-end listen port.
	Port string
	// APIPort is the reference contacts API listen port.
	APIPort string
	// DBUrl selects the Postgres store for the API.
	DBUrl string
	// SQLitePath selects a file-backed SQLite store when DBUrl is empty.
	SQLitePath string
	// ContactsAPIURL is the base URL the front-end uses for /api/contacts.
	ContactsAPIURL     string
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// In production we rely on system environment variables only
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment:    env,
		Port:           os.Getenv("PORT"),
		APIPort:        os.Getenv("API_PORT"),
		DBUrl:          os.Getenv("DATABASE_URL"),
		SQLitePath:     os.Getenv("SQLITE_PATH"),
		ContactsAPIURL: strings.TrimSuffix(os.Getenv("CONTACTS_API_URL"), "/"),
		RequestTimeout: DefaultRequestTimeout,
		RateLimitRPS:   DefaultRateLimitRPS,
		RateLimitBurst: DefaultRateLimitBurst,
	}

	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.APIPort == "" {
		cfg.APIPort = DefaultAPIPort
	}
	if cfg.ContactsAPIURL == "" {
		cfg.ContactsAPIURL = DefaultContactsAPIURL
	}

	if s := os.Getenv("REQUEST_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %q", s)
		}
		cfg.RequestTimeout = d
	}
	if s := os.Getenv("RATE_LIMIT_RPS"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q", s)
		}
		cfg.RateLimitRPS = v
	}
	if s := os.Getenv("RATE_LIMIT_BURST"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST %q", s)
		}
		cfg.RateLimitBurst = v
	}

	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, nil
}

// UseInMemoryStore reports whether the API should run without a database.
func (c *Config) UseInMemoryStore() bool {
	return c.DBUrl == "" && c.SQLitePath == ""
}
