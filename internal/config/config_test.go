package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPPort != "8082" {
		t.Errorf("HTTPPort = %q", cfg.HTTPPort)
	}
	if cfg.RenderURL != "http://127.0.0.1:8001/api/parsing/parse" {
		t.Errorf("RenderURL = %q", cfg.RenderURL)
	}
	if cfg.RenderTimeout != 90*time.Second {
		t.Errorf("RenderTimeout = %v", cfg.RenderTimeout)
	}
	if cfg.MaxBrowserTabs != 10 {
		t.Errorf("MaxBrowserTabs = %d", cfg.MaxBrowserTabs)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("RENDER_TIMEOUT", "2m")
	t.Setenv("MAX_BROWSER_TABS", "3")
	t.Setenv("TABS_PER_SECOND", "0.5")

	cfg := Load()

	if cfg.HTTPPort != "9000" {
		t.Errorf("HTTPPort = %q", cfg.HTTPPort)
	}
	if cfg.RenderTimeout != 2*time.Minute {
		t.Errorf("RenderTimeout = %v", cfg.RenderTimeout)
	}
	if cfg.MaxBrowserTabs != 3 {
		t.Errorf("MaxBrowserTabs = %d", cfg.MaxBrowserTabs)
	}
	if cfg.TabsPerSecond != 0.5 {
		t.Errorf("TabsPerSecond = %v", cfg.TabsPerSecond)
	}
}

func TestLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yml")
	data := `b2b-center.ru:
  login: buyer
  password: secret
tender.pro:
  login: other
  password: pw
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if len(creds) != 2 {
		t.Fatalf("got %d entries", len(creds))
	}
	if creds["b2b-center.ru"].Login != "buyer" || creds["b2b-center.ru"].Password != "secret" {
		t.Errorf("b2b-center entry = %+v", creds["b2b-center.ru"])
	}
}

func TestLoadCredentials_MissingFile(t *testing.T) {
	if _, err := LoadCredentials("/nonexistent/creds.yml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
