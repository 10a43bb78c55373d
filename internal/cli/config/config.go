package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/branchd-dev/starter/internal/cli/userconfig"
)

// DefaultAPIURL is used when nothing else is configured
const DefaultAPIURL = "http://localhost:8080"

// Settings holds the resolved CLI configuration
type Settings struct {
	APIURL     string
	TokenStore string // keyring, file or memory
	LogLevel   string
}

// Load resolves settings. Precedence: flag values, then environment
// (STARTER_API_URL, STARTER_TOKEN_STORE, STARTER_LOG_LEVEL, optionally from
// .env), then ~/.config/starter/config.json, then defaults.
func Load(flagAPIURL, flagTokenStore string) (*Settings, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	apiURL := firstNonEmpty(flagAPIURL, os.Getenv("STARTER_API_URL"))
	if apiURL == "" {
		saved, err := userconfig.GetAPIURL()
		if err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
		apiURL = saved
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if err := ValidateAPIURL(apiURL); err != nil {
		return nil, err
	}

	logLevel := os.Getenv("STARTER_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}

	return &Settings{
		APIURL:     strings.TrimRight(apiURL, "/"),
		TokenStore: firstNonEmpty(flagTokenStore, os.Getenv("STARTER_TOKEN_STORE")),
		LogLevel:   logLevel,
	}, nil
}

// ValidateAPIURL checks that raw is an absolute http(s) URL
func ValidateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid API URL %q: missing host", raw)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
