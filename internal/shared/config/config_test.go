package config

import "testing"

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "LLM_MODEL", "META_API_VERSION",
		"LLM_TIMEOUT_SECONDS", "DEDUP_RETENTION_HOURS", "CONVERSATION_RETENTION_DAYS",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q", cfg.Env)
	}
	if cfg.LLMModel != "gpt-4o-mini" {
		t.Errorf("LLMModel = %q", cfg.LLMModel)
	}
	if cfg.MetaAPIVersion != "v18.0" {
		t.Errorf("MetaAPIVersion = %q", cfg.MetaAPIVersion)
	}
	if cfg.LLMTimeoutSeconds != 25 {
		t.Errorf("LLMTimeoutSeconds = %d", cfg.LLMTimeoutSeconds)
	}
	if cfg.DedupRetentionHours != 72 {
		t.Errorf("DedupRetentionHours = %d", cfg.DedupRetentionHours)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("LLM_TIMEOUT_SECONDS", "40")

	cfg := LoadConfig()
	if cfg.Port != "9090" || cfg.LLMModel != "gpt-4o" || cfg.LLMTimeoutSeconds != 40 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadConfig_DedupRetentionFloor(t *testing.T) {
	t.Setenv("DEDUP_RETENTION_HOURS", "12")
	cfg := LoadConfig()
	if cfg.DedupRetentionHours != 48 {
		t.Errorf("DedupRetentionHours = %d, want floor 48", cfg.DedupRetentionHours)
	}
}

func TestLoadConfig_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("LLM_TIMEOUT_SECONDS", "soon")
	cfg := LoadConfig()
	if cfg.LLMTimeoutSeconds != 25 {
		t.Errorf("LLMTimeoutSeconds = %d, want default 25", cfg.LLMTimeoutSeconds)
	}
}
