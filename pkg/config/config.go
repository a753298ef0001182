// Package config loads nestboard settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/nestboard/config.toml by default and
// every key is optional:
//
//	[viewport]
//	min_scale = 0.1
//	max_scale = 5.0
//	zoom_mode = "exponential"   # or "step"
//	sensitivity = 0.0015
//	step = 0.1
//
//	[gesture]
//	dead_zone = 4.0
//	double_click_ms = 400
//	double_click_distance = 4.0
//
//	[cards]
//	width = 250.0
//	height = 180.0
//	spawn_offset_x = 100.0
//	spawn_offset_y = 75.0
//
//	[store]
//	backend = "file"            # file, memory, redis, mongo
//	dir = ""                    # file backend; default is the XDG data dir
//	redis_url = "redis://localhost:6379/0"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "nestboard"
//	mongo_collection = "workspaces"
//
//	[server]
//	addr = "127.0.0.1:7450"
//	frame_ms = 16
//
// Keys that are not listed fall back to [Default]. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/nestboard/pkg/errors"
	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/gesture"
	"github.com/matzehuels/nestboard/pkg/viewport"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// AppName names the config and data directories.
const AppName = "nestboard"

// Store backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the full settings file.
type Config struct {
	Viewport Viewport `toml:"viewport"`
	Gesture  Gesture  `toml:"gesture"`
	Cards    Cards    `toml:"cards"`
	Store    Store    `toml:"store"`
	Server   Server   `toml:"server"`
}

// Viewport holds the zoom policy.
type Viewport struct {
	MinScale    float64 `toml:"min_scale"`
	MaxScale    float64 `toml:"max_scale"`
	ZoomMode    string  `toml:"zoom_mode"`
	Sensitivity float64 `toml:"sensitivity"`
	Step        float64 `toml:"step"`
}

// Gesture holds the pointer thresholds.
type Gesture struct {
	DeadZone            float64 `toml:"dead_zone"`
	DoubleClickMS       int     `toml:"double_click_ms"`
	DoubleClickDistance float64 `toml:"double_click_distance"`
}

// Cards holds the geometry of new cards.
type Cards struct {
	Width        float64 `toml:"width"`
	Height       float64 `toml:"height"`
	SpawnOffsetX float64 `toml:"spawn_offset_x"`
	SpawnOffsetY float64 `toml:"spawn_offset_y"`
}

// Store selects and configures the workspace storage backend.
type Store struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	RedisURL        string `toml:"redis_url"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures `nestboard serve`.
type Server struct {
	Addr    string `toml:"addr"`
	FrameMS int    `toml:"frame_ms"`
}

// Default returns the built-in settings.
func Default() Config {
	p := viewport.DefaultPolicy()
	g := gesture.DefaultConfig()
	return Config{
		Viewport: Viewport{
			MinScale:    p.MinScale,
			MaxScale:    p.MaxScale,
			ZoomMode:    p.Mode.String(),
			Sensitivity: p.Sensitivity,
			Step:        p.Step,
		},
		Gesture: Gesture{
			DeadZone:            g.DeadZone,
			DoubleClickMS:       int(g.DoubleClickInterval / time.Millisecond),
			DoubleClickDistance: g.DoubleClickDistance,
		},
		Cards: Cards{
			Width:        workspace.DefaultSize.Width,
			Height:       workspace.DefaultSize.Height,
			SpawnOffsetX: 100,
			SpawnOffsetY: 75,
		},
		Store: Store{
			Backend:         BackendFile,
			RedisURL:        "redis://localhost:6379/0",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   AppName,
			MongoCollection: "workspaces",
		},
		Server: Server{
			Addr:    "127.0.0.1:7450",
			FrameMS: 16,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/nestboard/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, AppName, "config.toml"), nil
}

// Load reads path on top of the defaults. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML from r on top of the defaults and validates it.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate reports settings the engine cannot work with.
func (c Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "[viewport]")
	}
	if err := c.GestureConfig().Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "[gesture]")
	}
	if c.Cards.Width < workspace.MinSize.Width || c.Cards.Height < workspace.MinSize.Height {
		return errs.New(errs.ErrCodeInvalidConfig, "[cards] size %vx%v is below the minimum %vx%v",
			c.Cards.Width, c.Cards.Height, workspace.MinSize.Width, workspace.MinSize.Height)
	}
	switch c.Store.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "[store] redis backend needs redis_url")
		}
	case BackendMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" || c.Store.MongoCollection == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "[store] mongo backend needs mongo_uri, mongo_database and mongo_collection")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "[store] unknown backend %q", c.Store.Backend)
	}
	if c.Server.FrameMS < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "[server] frame_ms must be >= 0")
	}
	return nil
}

// Policy converts the [viewport] section.
func (c Config) Policy() (viewport.Policy, error) {
	mode, err := viewport.ParseZoomMode(c.Viewport.ZoomMode)
	if err != nil {
		return viewport.Policy{}, err
	}
	p := viewport.Policy{
		MinScale:    c.Viewport.MinScale,
		MaxScale:    c.Viewport.MaxScale,
		Mode:        mode,
		Sensitivity: c.Viewport.Sensitivity,
		Step:        c.Viewport.Step,
	}
	return p, p.Validate()
}

// GestureConfig converts the [gesture] section.
func (c Config) GestureConfig() gesture.Config {
	return gesture.Config{
		DeadZone:            c.Gesture.DeadZone,
		DoubleClickInterval: time.Duration(c.Gesture.DoubleClickMS) * time.Millisecond,
		DoubleClickDistance: c.Gesture.DoubleClickDistance,
	}
}

// CardSize returns the size of new cards.
func (c Config) CardSize() geom.Size {
	return geom.Size{Width: c.Cards.Width, Height: c.Cards.Height}
}

// SpawnOffset returns the offset subtracted from the view center when
// placing new cards.
func (c Config) SpawnOffset() geom.Point {
	return geom.Point{X: c.Cards.SpawnOffsetX, Y: c.Cards.SpawnOffsetY}
}

// Frame returns the event coalescing interval of the server.
func (c Config) Frame() time.Duration {
	return time.Duration(c.Server.FrameMS) * time.Millisecond
}

// DataDir returns the directory of the file store: [store].dir when set,
// else $XDG_DATA_HOME/nestboard/workspaces.
func (c Config) DataDir() (string, error) {
	if c.Store.Dir != "" {
		return c.Store.Dir, nil
	}
	return DefaultDataDir()
}

// DefaultDataDir returns $XDG_DATA_HOME/nestboard/workspaces, falling back
// to ~/.local/share.
func DefaultDataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, AppName, "workspaces"), nil
}
