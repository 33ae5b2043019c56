package config

// Config holds the application configuration.
type Config struct {
	LibraryPath string    `yaml:"libraryPath" validate:"required"`
	Logger      Logger    `yaml:"logger"`
	Server      Server    `yaml:"server"`
	Database    Database  `yaml:"database"`
	Import      Import    `yaml:"import"`
	Playback    Playback  `yaml:"playback"`
	Slideshow   Slideshow `yaml:"slideshow"`
	Metrics     Metrics   `yaml:"metrics"`
}

// Logger holds the configuration for the app logging.
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // "debug" or "info"
	Format  string `yaml:"format"` // "text", "json" or "logfmt"
}

// Server holds the configuration for the Fiber server.
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Database holds the configuration for the persistence gateway.
type Database struct {
	Path string `yaml:"path" validate:"required"`
}

// Import holds the configuration for file imports.
type Import struct {
	DropPath         string `yaml:"drop_path"`
	AutoStartWatcher bool   `yaml:"auto_start_watcher"`
	ThumbnailWidth   int    `yaml:"thumbnail_width"`
}

// Playback holds the configuration for the audio output.
type Playback struct {
	Silent           bool `yaml:"silent"` // no speaker; playback state machine only
	UpdateIntervalMs int  `yaml:"update_interval_ms"`
}

// Slideshow holds the configuration for the photo rotator.
type Slideshow struct {
	Enabled bool `yaml:"enabled"`
}

// Metrics holds the configuration for the Prometheus listener.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Port    uint32 `yaml:"port"`
}
