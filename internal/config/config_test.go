package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerAddr != ":8080" {
		t.Errorf("ServerAddr = %q, want :8080", cfg.ServerAddr)
	}
	if cfg.InferenceBackend != "mock" {
		t.Errorf("InferenceBackend = %q, want mock", cfg.InferenceBackend)
	}
	if cfg.ContextKeepCount != 10 {
		t.Errorf("ContextKeepCount = %d, want 10", cfg.ContextKeepCount)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("CONTEXT_KEEP_COUNT", "25")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerAddr != ":9999" {
		t.Errorf("ServerAddr = %q, want :9999", cfg.ServerAddr)
	}
	if cfg.ContextKeepCount != 25 {
		t.Errorf("ContextKeepCount = %d, want 25", cfg.ContextKeepCount)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadBadKeepCountFallsBack(t *testing.T) {
	t.Setenv("CONTEXT_KEEP_COUNT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ContextKeepCount != 10 {
		t.Errorf("ContextKeepCount = %d, want 10", cfg.ContextKeepCount)
	}
}
