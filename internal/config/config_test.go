package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LoadAmount != 20 {
		t.Errorf("LoadAmount = %d, want 20", cfg.LoadAmount)
	}
	if cfg.AttemptCap != 50 {
		t.Errorf("AttemptCap = %d, want 50", cfg.AttemptCap)
	}
	if cfg.RefillThreshold() != 10 {
		t.Errorf("RefillThreshold = %d, want 10", cfg.RefillThreshold())
	}
	if cfg.RecycleBase != 20 || cfg.RecycleMinCatalog != 40 || cfg.RecycleMaxCatalog != 200 {
		t.Errorf("recycle constants = (%d, %d, %d), want (20, 40, 200)",
			cfg.RecycleBase, cfg.RecycleMinCatalog, cfg.RecycleMaxCatalog)
	}
	if cfg.MaxFileSize != 1<<20 {
		t.Errorf("MaxFileSize = %d, want 1MB", cfg.MaxFileSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOAD_AMOUNT", "30")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("PREFETCH_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LoadAmount != 30 {
		t.Errorf("LoadAmount = %d, want 30", cfg.LoadAmount)
	}
	if cfg.RefillThreshold() != 15 {
		t.Errorf("RefillThreshold = %d, want 15", cfg.RefillThreshold())
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
	if cfg.PrefetchEnabled {
		t.Error("PrefetchEnabled = true, want false")
	}
}

func TestLoad_YAMLFileWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("loadAmount: 40\nport: \"9000\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ANIMALCOMPARE_CONFIG", path)
	t.Setenv("PORT", "9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LoadAmount != 40 {
		t.Errorf("LoadAmount = %d, want 40 from file", cfg.LoadAmount)
	}
	// Environment wins over the file.
	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999 from env", cfg.Port)
	}
}

func TestLoad_RejectsBadCombinations(t *testing.T) {
	t.Setenv("ATTEMPT_CAP", "5") // below LoadAmount

	if _, err := Load(); err == nil {
		t.Fatal("expected error for attemptCap below loadAmount")
	}
}
