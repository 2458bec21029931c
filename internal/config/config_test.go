package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Compression.Format != "bc7" || cfg.Compression.Quality != "ultrafast" {
		t.Errorf("compression defaults: got %+v", cfg.Compression)
	}
	if cfg.Processing.Workers != 1 {
		t.Errorf("workers: got %d, want 1", cfg.Processing.Workers)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ddsconv.yaml")
	cfg := DefaultConfig()
	cfg.Compression.Format = "bc1"
	cfg.Compression.Dither = true
	cfg.Mipmaps.Generate = true
	cfg.Mipmaps.Levels = 4
	cfg.Output.Report = "run.json"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *cfg {
		t.Errorf("got %+v, want %+v", *got, *cfg)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ddsconv.yaml")
	raw := "compression:\n  quality: slow\nmipmaps:\n  generate: true\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Compression.Quality != "slow" || !cfg.Mipmaps.Generate {
		t.Errorf("overrides lost: %+v", cfg)
	}
	if cfg.Compression.Format != "bc7" || cfg.Processing.Workers != 1 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("compression: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}
