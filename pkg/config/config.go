// Package config loads roadmap settings from TOML or YAML files.
//
// The file format is chosen by extension: ".toml" is decoded with
// BurntSushi/toml, ".yaml" and ".yml" with yaml.v3. A missing file is not an
// error; [Default] values are used instead. Every loaded file is merged over
// the defaults and validated.
//
// A [Loader] can watch its file with fsnotify and hot-reload the layout and
// viewport settings of a running server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/matzehuels/roadmap/pkg/roadmap"
)

// AppName is used for data and config directories.
const AppName = "roadmap"

// Storage drivers understood by storage.Open.
const (
	DriverNull     = "null"
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Drivers lists every valid storage driver.
var Drivers = []string{DriverNull, DriverMemory, DriverFile, DriverRedis, DriverMongo, DriverPostgres}

// Config is the complete application configuration.
type Config struct {
	Storage  Storage  `toml:"storage" yaml:"storage"`
	Layout   Layout   `toml:"layout" yaml:"layout"`
	Viewport Viewport `toml:"viewport" yaml:"viewport"`
	Server   Server   `toml:"server" yaml:"server"`
}

// Storage selects and configures the persistence backend.
type Storage struct {
	Driver     string `toml:"driver" yaml:"driver"`
	Key        string `toml:"key" yaml:"key"`               // durable form key
	Dir        string `toml:"dir" yaml:"dir"`               // file driver
	URL        string `toml:"url" yaml:"url"`               // redis, mongo, postgres
	Database   string `toml:"database" yaml:"database"`     // mongo
	Collection string `toml:"collection" yaml:"collection"` // mongo
	Prefix     string `toml:"prefix" yaml:"prefix"`         // redis key prefix
	TTL        string `toml:"ttl" yaml:"ttl"`               // redis expiry, empty means none
	Timeout    string `toml:"timeout" yaml:"timeout"`       // per-operation timeout
}

// Layout holds the auto-layout settings.
type Layout struct {
	Direction string  `toml:"direction" yaml:"direction"`
	NodeSep   float64 `toml:"node_sep" yaml:"node_sep"`
	RankSep   float64 `toml:"rank_sep" yaml:"rank_sep"`
}

// Viewport is the display area used by the fit command and endpoint.
type Viewport struct {
	Width   float64 `toml:"width" yaml:"width"`
	Height  float64 `toml:"height" yaml:"height"`
	Padding float64 `toml:"padding" yaml:"padding"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: Storage{
			Driver:     DriverFile,
			Key:        "roadmap",
			Dir:        DataDir(),
			Database:   AppName,
			Collection: "state",
			Prefix:     AppName + ":",
			Timeout:    "5s",
		},
		Layout: Layout{
			Direction: string(roadmap.TopToBottom),
			NodeSep:   80,
			RankSep:   120,
		},
		Viewport: Viewport{
			Width:   1280,
			Height:  800,
			Padding: 50,
		},
		Server: Server{
			Addr: ":8080",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !slices.Contains(Drivers, c.Storage.Driver) {
		return fmt.Errorf("storage.driver %q must be one of %v", c.Storage.Driver, Drivers)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key must not be empty")
	}
	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for the file driver")
		}
	case DriverRedis, DriverMongo, DriverPostgres:
		if c.Storage.URL == "" {
			return fmt.Errorf("storage.url is required for the %s driver", c.Storage.Driver)
		}
	}
	if _, err := parseDuration(c.Storage.TTL); err != nil {
		return fmt.Errorf("storage.ttl: %w", err)
	}
	if _, err := parseDuration(c.Storage.Timeout); err != nil {
		return fmt.Errorf("storage.timeout: %w", err)
	}
	if _, err := roadmap.ParseDirection(c.Layout.Direction); err != nil {
		return fmt.Errorf("layout.direction: %w", err)
	}
	if c.Layout.NodeSep < 0 || c.Layout.RankSep < 0 {
		return fmt.Errorf("layout spacing must not be negative")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport width and height must be positive")
	}
	if c.Viewport.Padding < 0 {
		return fmt.Errorf("viewport.padding must not be negative")
	}
	return nil
}

// TTLDuration returns the parsed storage TTL. Zero means no expiry.
func (s Storage) TTLDuration() time.Duration {
	d, _ := parseDuration(s.TTL)
	return d
}

// TimeoutDuration returns the parsed per-operation timeout.
func (s Storage) TimeoutDuration() time.Duration {
	d, _ := parseDuration(s.Timeout)
	return d
}

// LayoutDirection returns the configured direction.
func (l Layout) LayoutDirection() roadmap.Direction {
	return roadmap.Direction(l.Direction)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", s)
	}
	return d, nil
}

// DataDir returns the data directory using the XDG standard
// (~/.local/share/roadmap/).
func DataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// DefaultPath returns the default config file location
// (~/.config/roadmap/config.toml).
func DefaultPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName, "config.toml")
}
