package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/lcalzada-xor/trustrecon/internal/core/ports"
)

// Config holds all application configuration.
type Config struct {
	Addr        string
	CachePath   string
	Debug       bool
	HTTPTimeout time.Duration

	// Upstream API keys. All optional; an absent key disables only the
	// adapter that needs it.
	NVDKey        string
	VirusTotalKey string
	GoogleKey     string
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Addr = getEnv("TRUSTRECON_ADDR", ":8080")
	cfg.CachePath = getEnv("TRUSTRECON_CACHE_DB", getDefaultCachePath())
	cfg.Debug = getEnvBool("TRUSTRECON_DEBUG", false)
	cfg.HTTPTimeout = getEnvDuration("TRUSTRECON_HTTP_TIMEOUT", 60*time.Second)
	cfg.NVDKey = getEnv("TRUSTRECON_NVD_KEY", "")
	cfg.VirusTotalKey = getEnv("TRUSTRECON_VT_KEY", "")
	cfg.GoogleKey = getEnv("TRUSTRECON_GOOGLE_KEY", "")

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.CachePath, "cache-db", cfg.CachePath, "Path to SQLite report cache (empty to disable caching)")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	flag.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "Total timeout per upstream provider request")
	flag.StringVar(&cfg.NVDKey, "nvd-key", cfg.NVDKey, "NVD API key (optional, raises rate limits)")
	flag.StringVar(&cfg.VirusTotalKey, "vt-key", cfg.VirusTotalKey, "VirusTotal API key")
	flag.StringVar(&cfg.GoogleKey, "google-key", cfg.GoogleKey, "Google API key (Safe Browsing / Web Risk)")

	flag.Parse()

	return cfg
}

// Credentials exposes the configured API keys as the read-only
// capability the adapters resolve keys from.
func (c *Config) Credentials() ports.Credentials {
	return ports.StaticCredentials{
		ports.CredentialNVD:        c.NVDKey,
		ports.CredentialVirusTotal: c.VirusTotalKey,
		ports.CredentialGoogle:     c.GoogleKey,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "1" || value == "true"
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: Invalid duration in %s, using default %s", key, fallback)
	}
	return fallback
}

// getDefaultCachePath returns the default cache database path in the
// user's home directory. Creates the directory if it doesn't exist.
func getDefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "trustrecon.db"
	}

	dir := filepath.Join(home, ".trustrecon")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .trustrecon directory, using current dir: %v", err)
		return "trustrecon.db"
	}

	return filepath.Join(dir, "cache.db")
}
