package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Recognition.Tolerance != 0.6 {
		t.Errorf("expected default tolerance 0.6, got %v", cfg.Recognition.Tolerance)
	}
	if cfg.Recognition.Dim != 512 {
		t.Errorf("expected default dim 512, got %d", cfg.Recognition.Dim)
	}
	if cfg.Recognition.MaxFaces != 80 {
		t.Errorf("expected default max faces 80, got %d", cfg.Recognition.MaxFaces)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected default max open conns 25, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RECOGNITION_TOLERANCE", "0.45")
	t.Setenv("EMBEDDING_DIM", "128")
	t.Setenv("GALLERY_PATH", "/tmp/custom-gallery.json")

	cfg := Load()

	if cfg.Recognition.Tolerance != 0.45 {
		t.Errorf("expected tolerance 0.45, got %v", cfg.Recognition.Tolerance)
	}
	if cfg.Recognition.Dim != 128 {
		t.Errorf("expected dim 128, got %d", cfg.Recognition.Dim)
	}
	if cfg.Gallery.Path != "/tmp/custom-gallery.json" {
		t.Errorf("unexpected gallery path %q", cfg.Gallery.Path)
	}
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("EMBEDDING_DIM", "not-a-number")

	cfg := Load()
	if cfg.Recognition.Dim != 512 {
		t.Errorf("expected fallback dim 512, got %d", cfg.Recognition.Dim)
	}
}
