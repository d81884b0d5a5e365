// Package config loads the board's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"LocalBoard/internal/store"
)

const appName = "localboard"

// DefaultPort is where the hub listens unless told otherwise.
const DefaultPort = 8888

// Config is the whole configuration file.
type Config struct {
	Server  Server  `toml:"server"`
	Client  Client  `toml:"client"`
	Storage Storage `toml:"storage"`
	Canvas  Canvas  `toml:"canvas"`
}

// Server configures the relay hub.
type Server struct {
	Addr string `toml:"addr"`
	// Advertise announces the hub over mDNS.
	Advertise bool   `toml:"advertise"`
	Instance  string `toml:"instance"`
	// CommandRate limits commands per second per connection; 0 disables it.
	CommandRate  float64 `toml:"command_rate"`
	CommandBurst int     `toml:"command_burst"`
}

// Client configures the desktop board.
type Client struct {
	Name string `toml:"name"`
	// URL is the hub to join. Empty starts offline unless Discover finds one.
	URL          string   `toml:"url"`
	Discover     bool     `toml:"discover"`
	DiscoverWait Duration `toml:"discover_wait"`
}

// Storage selects where history and tool settings are kept.
type Storage struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Redis   Redis  `toml:"redis"`
}

// Redis is the redis backend connection.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// Canvas is the drawing surface size in pixels.
type Canvas struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Duration reads TOML strings such as "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server: Server{
			Addr:         fmt.Sprintf(":%d", DefaultPort),
			Advertise:    true,
			CommandRate:  200,
			CommandBurst: 400,
		},
		Client: Client{
			DiscoverWait: Duration{2 * time.Second},
		},
		Storage: Storage{
			Backend: store.BackendFile,
			Dir:     DataDir(),
			Redis:   Redis{Addr: "localhost:6379", Prefix: store.DefaultRedisPrefix},
		},
		Canvas: Canvas{Width: 1280, Height: 800},
	}
}

// DataDir is the default file store directory (~/.local/share/localboard).
func DataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), fmt.Errorf("parse %s: unknown keys %v", path, undecoded)
	}
	return cfg, cfg.Validate()
}

// Validate checks values a user is likely to get wrong.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case store.BackendMemory, store.BackendFile, store.BackendRedis:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas: size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Server.CommandRate < 0 {
		return errors.New("server.command_rate must not be negative")
	}
	return nil
}

// StoreOptions converts the storage section for store.Open.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Backend:  c.Storage.Backend,
		Dir:      c.Storage.Dir,
		Addr:     c.Storage.Redis.Addr,
		Password: c.Storage.Redis.Password,
		DB:       c.Storage.Redis.DB,
		Prefix:   c.Storage.Redis.Prefix,
	}
}

// Encode writes c as TOML, e.g. for "config init".
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
