package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
monitor:
  target_product: ozempic
  products: [semaglutide, wegovy]
sources:
  openfda_url: https://api.fda.gov/drug/event.json
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Monitor.ZThreshold != 2.0 {
		t.Fatalf("z_threshold %f", cfg.Monitor.ZThreshold)
	}
	if cfg.Monitor.MinAbsoluteIncrease != 10 {
		t.Fatalf("min_absolute_increase %d", cfg.Monitor.MinAbsoluteIncrease)
	}
	if cfg.Monitor.ForecastHorizon != 4 {
		t.Fatalf("forecast_horizon %d", cfg.Monitor.ForecastHorizon)
	}
	if cfg.Monitor.UpdateInterval != 24*time.Hour {
		t.Fatalf("update_interval %v", cfg.Monitor.UpdateInterval)
	}
	if cfg.Forecast.Mode != "builtin" {
		t.Fatalf("forecast mode %q", cfg.Forecast.Mode)
	}
}

func TestLoadRejectsMissingProducts(t *testing.T) {
	body := `
environment: test
sources:
  openfda_url: https://api.fda.gov/drug/event.json
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsHTTPModeWithoutURL(t *testing.T) {
	body := minimalYAML + `
forecast:
  mode: http
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PRODUCTS", "a,b,c")
	t.Setenv("OPENFDA_URL", "http://localhost:9000/event.json")
	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Monitor.Products) != 3 || cfg.Monitor.Products[0] != "a" {
		t.Fatalf("products %v", cfg.Monitor.Products)
	}
	if cfg.Sources.OpenFDAURL != "http://localhost:9000/event.json" {
		t.Fatalf("openfda url %q", cfg.Sources.OpenFDAURL)
	}
}

func TestAllProductsDeduplicates(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML+`
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.Monitor.Products = []string{"ozempic", "wegovy", "", "wegovy"}
	got := cfg.AllProducts()
	if len(got) != 2 || got[0] != "ozempic" || got[1] != "wegovy" {
		t.Fatalf("products %v", got)
	}
}
