// Package config loads application settings from an optional YAML file
// and FLOORPLAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/hittest"
	"expo-floorplan/internal/render"
	"expo-floorplan/internal/store"
	"expo-floorplan/internal/version"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "FLOORPLAN"

// Config holds all application configuration.
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Store  StoreConfig  `mapstructure:"store"`
	Canvas CanvasConfig `mapstructure:"canvas"`
	Stalls StallsConfig `mapstructure:"stalls"`
	AI     AIConfig     `mapstructure:"ai"`
	Log    LogConfig    `mapstructure:"log"`
}

// AppConfig selects what is opened at startup.
type AppConfig struct {
	EventID string `mapstructure:"event_id"`
	Mode    string `mapstructure:"mode"` // organizer, visitor, customer
}

// StoreConfig selects the exhibition adapter.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory, file, sqlite
	Path   string `mapstructure:"path"`
}

// CanvasConfig tunes marker drawing and interaction.
type CanvasConfig struct {
	MarkerStyle   string  `mapstructure:"marker_style"`
	PinSize       float64 `mapstructure:"pin_size"`
	HitMultiplier float64 `mapstructure:"hit_multiplier"`
	MinBoxSize    float64 `mapstructure:"min_box_size"`
	ZoomFactor    float64 `mapstructure:"zoom_factor"`
}

// StallsConfig describes custom stall fields and the hover tooltip. An
// empty field list keeps the built-in stall fields.
type StallsConfig struct {
	Fields        []exhibition.FieldDescriptor `mapstructure:"fields"`
	RequireNumber bool                         `mapstructure:"require_number"`
	Tooltip       []render.TooltipField        `mapstructure:"tooltip"`
}

// AIConfig configures the recommendation backend.
type AIConfig struct {
	Provider string        `mapstructure:"provider"` // none, openai
	BaseURL  string        `mapstructure:"base_url"`
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads floorplan.yaml from the working directory or the user config
// directory when present, then applies environment overrides.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("floorplan")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, version.Name))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return build(v)
}

// LoadWithPath loads configuration from a specific file.
func LoadWithPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func build(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.event_id", store.DemoEventID)
	v.SetDefault("app.mode", string(exhibition.ModeOrganizer))

	v.SetDefault("store.driver", store.DriverMemory)
	v.SetDefault("store.path", "")

	v.SetDefault("canvas.marker_style", string(hittest.StylePoint))
	v.SetDefault("canvas.pin_size", hittest.DefaultPinSize)
	v.SetDefault("canvas.hit_multiplier", hittest.DefaultMultiplier)
	v.SetDefault("canvas.min_box_size", 5.0)
	v.SetDefault("canvas.zoom_factor", 1.2)

	v.SetDefault("ai.provider", "none")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.timeout", "20s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.App.EventID == "" {
		return errors.New("app.event_id is required")
	}
	if _, ok := exhibition.ParseMode(c.App.Mode); !ok {
		return fmt.Errorf("invalid app.mode %q", c.App.Mode)
	}

	switch c.Store.Driver {
	case store.DriverMemory:
	case store.DriverFile, store.DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("invalid store.driver %q", c.Store.Driver)
	}

	if _, err := hittest.ParseStyle(c.Canvas.MarkerStyle); err != nil {
		return err
	}
	if c.Canvas.PinSize <= 0 {
		return fmt.Errorf("canvas.pin_size must be positive, got %v", c.Canvas.PinSize)
	}
	if c.Canvas.HitMultiplier < 1 {
		return fmt.Errorf("canvas.hit_multiplier must be at least 1, got %v", c.Canvas.HitMultiplier)
	}
	if c.Canvas.MinBoxSize < 0 {
		return fmt.Errorf("canvas.min_box_size must not be negative, got %v", c.Canvas.MinBoxSize)
	}
	if c.Canvas.ZoomFactor <= 1 {
		return fmt.Errorf("canvas.zoom_factor must be greater than 1, got %v", c.Canvas.ZoomFactor)
	}

	seen := make(map[string]bool, len(c.Stalls.Fields))
	for i, f := range c.Stalls.Fields {
		if f.Key == "" {
			return fmt.Errorf("stalls.fields[%d].key is required", i)
		}
		if seen[f.Key] {
			return fmt.Errorf("duplicate stall field %q", f.Key)
		}
		seen[f.Key] = true
		switch f.Type {
		case "", exhibition.FieldText, exhibition.FieldNumber, exhibition.FieldTextarea:
		default:
			return fmt.Errorf("invalid type %q for stall field %q", f.Type, f.Key)
		}
	}
	for i, f := range c.Stalls.Tooltip {
		if f.Key == "" {
			return fmt.Errorf("stalls.tooltip[%d].key is required", i)
		}
	}

	switch c.AI.Provider {
	case "none":
	case "openai":
		if c.AI.APIKey == "" {
			return errors.New("ai.api_key is required for the openai provider")
		}
	default:
		return fmt.Errorf("invalid ai.provider %q", c.AI.Provider)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %v", c.AI.Timeout)
	}
	return nil
}

// Mode returns the parsed startup mode.
func (c *Config) Mode() exhibition.Mode {
	m, _ := exhibition.ParseMode(c.App.Mode)
	return m
}

// Geometry returns the marker geometry described by the canvas section.
func (c *Config) Geometry() hittest.Geometry {
	style, _ := hittest.ParseStyle(c.Canvas.MarkerStyle)
	return hittest.Geometry{Style: style, Radius: c.Canvas.PinSize, Multiplier: c.Canvas.HitMultiplier}
}

// Schema returns the stall field schema described by the stalls section.
func (c *Config) Schema() *exhibition.Schema {
	if len(c.Stalls.Fields) == 0 {
		return exhibition.DefaultSchema()
	}
	fields := make([]exhibition.FieldDescriptor, len(c.Stalls.Fields))
	for i, f := range c.Stalls.Fields {
		if f.Label == "" {
			f.Label = f.Key
		}
		if f.Type == "" {
			f.Type = exhibition.FieldText
		}
		fields[i] = f
	}
	s := exhibition.NewSchema(fields...)
	s.RequireNumber = c.Stalls.RequireNumber
	return s
}
