package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Credentials holds a login/password pair for a platform that requires
// authenticated access. Most platforms do not.
type Credentials struct {
	Login    string `yaml:"login"`
	Password string `yaml:"password"`
}

type Config struct {
	HTTPPort string

	// Rendering service (renderd) reached over local JSON-over-HTTP.
	RenderURL     string
	RenderTimeout time.Duration

	// renderd-side settings.
	RenderdPort    string
	MaxBrowserTabs int
	PageLoadDelay  time.Duration
	TabsPerSecond  float64

	DaDataToken string

	// Platform hostname -> credentials, loaded from CredentialsFile.
	CredentialsFile string
	Credentials     map[string]Credentials
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8082"),
		RenderURL:       getEnv("RENDER_URL", "http://127.0.0.1:8001/api/parsing/parse"),
		RenderTimeout:   getEnvDuration("RENDER_TIMEOUT", 90*time.Second),
		RenderdPort:     getEnv("RENDERD_PORT", "8001"),
		MaxBrowserTabs:  getEnvInt("MAX_BROWSER_TABS", 10),
		PageLoadDelay:   getEnvDuration("PAGE_LOAD_DELAY", 2*time.Second),
		TabsPerSecond:   getEnvFloat("TABS_PER_SECOND", 2),
		DaDataToken:     getEnv("DADATA_TOKEN", ""),
		CredentialsFile: getEnv("PLATFORM_CREDENTIALS_FILE", ""),
	}

	if cfg.CredentialsFile != "" {
		if creds, err := LoadCredentials(cfg.CredentialsFile); err == nil {
			cfg.Credentials = creds
		}
	}

	return cfg
}

// LoadCredentials reads a YAML file mapping platform hostnames to
// login/password pairs.
func LoadCredentials(path string) (map[string]Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	creds := make(map[string]Credentials)
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	return creds, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
