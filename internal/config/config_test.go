package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("unexpected default window size: %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.VSync {
		t.Error("vsync should default to on")
	}
	if cfg.Viewer.PlaybackSpeed != 1.0 {
		t.Errorf("playback speed should default to 1.0, got %v", cfg.Viewer.PlaybackSpeed)
	}
	if cfg.Snapshot.Size != 512 || cfg.Snapshot.Supersample != 2 {
		t.Errorf("unexpected snapshot defaults: size %d supersample %d", cfg.Snapshot.Size, cfg.Snapshot.Supersample)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level should default to info, got %q", cfg.Logging.Level)
	}
}

func TestLoadFromFileMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
window:
  width: 1920
viewer:
  playback_speed: 2.5
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("width should come from the file, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("unset height should keep the default, got %d", cfg.Window.Height)
	}
	if cfg.Viewer.PlaybackSpeed != 2.5 {
		t.Errorf("playback speed should come from the file, got %v", cfg.Viewer.PlaybackSpeed)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level should come from the file, got %q", cfg.Logging.Level)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("loading a missing file should fail")
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("window: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err == nil {
		t.Error("invalid YAML should fail to load")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.Window.Width = 800
	cfg.Snapshot.Yaw = 45

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reloading saved config: %v", err)
	}

	if loaded.Window.Width != 800 {
		t.Errorf("saved width lost: got %d", loaded.Window.Width)
	}
	if loaded.Snapshot.Yaw != 45 {
		t.Errorf("saved yaw lost: got %v", loaded.Snapshot.Yaw)
	}
}

func TestConfigDirNotEmpty(t *testing.T) {
	if ConfigDir() == "" {
		t.Error("ConfigDir should always return a path")
	}
}
