package infra

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	LogFile            string
	NanoBananaBaseURL  string
	CallbackURL        string
	UploadEndpoint     string
	PollMaxAttempts    int
	PollInterval       time.Duration
	HTTPClientTimeout  time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	TrustProxyHeaders  bool
	MaxUploadBytes     int64
	CORSAllowedOrigins []string
	DefaultLocale      string
	GeoIPDBPath        string
	DatabaseURL        string
	CredentialsFile    string
	KeyringService     string
	KeyringUser        string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		LogFile:            os.Getenv("LOG_FILE"),
		NanoBananaBaseURL:  getEnv("NANOBANANA_BASE_URL", "https://api.nanobananaapi.ai"),
		CallbackURL:        getEnv("NANOBANANA_CALLBACK_URL", "https://example.com/callback"),
		UploadEndpoint:     getEnv("UPLOAD_ENDPOINT", "https://tmpfiles.org/api/v1/upload"),
		PollMaxAttempts:    getEnvInt("POLL_MAX_ATTEMPTS", 60),
		PollInterval:       time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 2)),
		HTTPClientTimeout:  time.Second * time.Duration(getEnvInt("HTTP_CLIENT_TIMEOUT_SECONDS", 0)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		TrustProxyHeaders:  getEnvBool("TRUST_PROXY_HEADERS", false),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_MB", 20)) << 20,
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "en"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		CredentialsFile:    os.Getenv("CREDENTIALS_FILE"),
		KeyringService:     getEnv("KEYRING_SERVICE", "tryon"),
		KeyringUser:        getEnv("KEYRING_USER", "nanobanana"),
	}

	if cfg.PollMaxAttempts <= 0 {
		return nil, fmt.Errorf("POLL_MAX_ATTEMPTS must be positive, got %d", cfg.PollMaxAttempts)
	}
	if cfg.PollInterval < 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_SECONDS must not be negative")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	for name, raw := range map[string]string{
		"NANOBANANA_BASE_URL": cfg.NanoBananaBaseURL,
		"UPLOAD_ENDPOINT":     cfg.UploadEndpoint,
	} {
		if err := requireAbsoluteURL(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	return cfg, nil
}

func requireAbsoluteURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("absolute url required, got %q", raw)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
