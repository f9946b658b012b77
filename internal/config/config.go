package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr           string        // API bind address, e.g., "127.0.0.1:8080" (local) or ":8080" (Docker)
	LogDir         string        // logs directory; empty disables file logging
	OutputDir      string        // where mirrored sites are written
	HTTPTimeout    time.Duration // per-request timeout for checks
	RetryAttempts  int           // how many times to retry a failed check
	RetryBackoff   time.Duration // backoff between retries
	APIKeys        []string      // accepted API keys; empty leaves the API open
	PublicRPM      int           // per-IP requests per minute on the API
	PublicBurst    int           // per-IP burst on the API
	AllowedOrigins []string      // CORS origins; empty allows all
	WebhookURL     string        // summary notification webhook; empty disables
}

func FromEnv() Config {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	// Empty LOG_DIR means no log files (console-only tools stay quiet).
	logDir := os.Getenv("LOG_DIR")

	outputDir := os.Getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = ".output"
	}

	httpTimeout := 10 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			httpTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	retryAttempts := 2
	if v := os.Getenv("RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			retryAttempts = n
		}
	}

	retryBackoff := 300 * time.Millisecond
	if v := os.Getenv("RETRY_BACKOFF_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			retryBackoff = time.Duration(ms) * time.Millisecond
		}
	}

	publicRPM := 120
	if v := os.Getenv("PUBLIC_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			publicRPM = n
		}
	}

	publicBurst := 60
	if v := os.Getenv("PUBLIC_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			publicBurst = n
		}
	}

	return Config{
		Addr:           addr,
		LogDir:         logDir,
		OutputDir:      outputDir,
		HTTPTimeout:    httpTimeout,
		RetryAttempts:  retryAttempts,
		RetryBackoff:   retryBackoff,
		APIKeys:        splitList(os.Getenv("API_KEYS")),
		PublicRPM:      publicRPM,
		PublicBurst:    publicBurst,
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
		WebhookURL:     os.Getenv("WEBHOOK_URL"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
