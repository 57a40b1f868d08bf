package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "8000" {
		t.Errorf("expected port 8000, got %s", cfg.Server.Port)
	}
	if cfg.Storage.MaxUploadBytes != 500*1024*1024 {
		t.Errorf("expected 500MB upload limit, got %d", cfg.Storage.MaxUploadBytes)
	}
	if cfg.Transcriber.DefaultModelTier != "base" {
		t.Errorf("expected default tier base, got %s", cfg.Transcriber.DefaultModelTier)
	}
	if cfg.Jobs.RetentionHours != 24 {
		t.Errorf("expected 24h retention, got %d", cfg.Jobs.RetentionHours)
	}

	want := []string{"mp4", "mov", "avi", "mkv", "webm"}
	if len(cfg.Storage.AllowedExtensions) != len(want) {
		t.Fatalf("expected %d extensions, got %v", len(want), cfg.Storage.AllowedExtensions)
	}
	for i, ext := range want {
		if cfg.Storage.AllowedExtensions[i] != ext {
			t.Errorf("extension %d: expected %s, got %s", i, ext, cfg.Storage.AllowedExtensions[i])
		}
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("DEFAULT_MODEL_TIER", "small")
	t.Setenv("ALLOWED_EXTENSIONS", "MP4, MOV")
	t.Setenv("JOB_RETENTION_HOURS", "6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9100" {
		t.Errorf("expected port 9100, got %s", cfg.Server.Port)
	}
	if cfg.Transcriber.DefaultModelTier != "small" {
		t.Errorf("expected tier small, got %s", cfg.Transcriber.DefaultModelTier)
	}
	if cfg.Jobs.RetentionHours != 6 {
		t.Errorf("expected 6h retention, got %d", cfg.Jobs.RetentionHours)
	}
	if len(cfg.Storage.AllowedExtensions) != 2 || cfg.Storage.AllowedExtensions[0] != "mp4" || cfg.Storage.AllowedExtensions[1] != "mov" {
		t.Errorf("expected [mp4 mov], got %v", cfg.Storage.AllowedExtensions)
	}
}

func TestLoadInvalidDefaultTier(t *testing.T) {
	t.Setenv("DEFAULT_MODEL_TIER", "gigantic")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid default model tier")
	}
}
