// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	VSync  bool `yaml:"vsync"`
}

// ViewerConfig holds interactive viewer settings.
type ViewerConfig struct {
	PlaybackSpeed float32 `yaml:"playback_speed"`
	Wireframe     bool    `yaml:"wireframe"`
	TextureDir    string  `yaml:"texture_dir"` // Empty means the model's directory
	ShowFPS       bool    `yaml:"show_fps"`
}

// SnapshotConfig holds headless render settings.
type SnapshotConfig struct {
	Size        int     `yaml:"size"`
	Supersample int     `yaml:"supersample"`
	Yaw         float32 `yaml:"yaw"`   // Degrees
	Pitch       float32 `yaml:"pitch"` // Degrees
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Viewer: ViewerConfig{
			PlaybackSpeed: 1.0,
		},
		Snapshot: SnapshotConfig{
			Size:        512,
			Supersample: 2,
			Yaw:         30,
			Pitch:       15,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
