// Package config provides configuration management for the sparky face
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stvenmobile/sparky/internal/face"
	"github.com/stvenmobile/sparky/internal/logging"
	"github.com/stvenmobile/sparky/internal/panel"
)

// EnvPrefix prefixes environment overrides, e.g. SPARKY_ANIMATION_FPS.
const EnvPrefix = "SPARKY"

// Display backends
const (
	BackendTerminal = "terminal"
	BackendHeadless = "headless"
	BackendPanel    = "panel"
)

// Config holds all application configuration
type Config struct {
	Layout    face.Layout     `mapstructure:"layout"`
	Animation AnimationConfig `mapstructure:"animation"`
	Display   DisplayConfig   `mapstructure:"display"`
	Commands  CommandsConfig  `mapstructure:"commands"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   logging.Config  `mapstructure:"logging"`

	// Source is the file the configuration was read from, if any.
	Source string `mapstructure:"-"`
}

// AnimationConfig paces the frame loop
type AnimationConfig struct {
	FPS   int           `mapstructure:"fps"`
	MaxDT time.Duration `mapstructure:"max_dt"` // larger frame gaps are clamped
	Seed  int64         `mapstructure:"seed"`   // 0 seeds from the clock
}

// DisplayConfig selects where frames go
type DisplayConfig struct {
	Backend       string       `mapstructure:"backend"` // terminal, headless or panel
	Width         int          `mapstructure:"width"`
	Height        int          `mapstructure:"height"`
	TerminalScale int          `mapstructure:"terminal_scale"` // surface px per terminal column
	Panel         panel.Config `mapstructure:"panel"`
}

// CommandsConfig configures command ingestion
type CommandsConfig struct {
	WebSocketURL string        `mapstructure:"websocket_url"` // empty disables the client
	Stdin        bool          `mapstructure:"stdin"`
	ReconnectMin time.Duration `mapstructure:"reconnect_min"`
	ReconnectMax time.Duration `mapstructure:"reconnect_max"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Listen string `mapstructure:"listen"` // empty disables the endpoint
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Layout: face.DefaultLayout(),
		Animation: AnimationConfig{
			FPS:   face.FramesPerSecond,
			MaxDT: time.Duration(face.MaxFrameDT * float64(time.Second)),
		},
		Display: DisplayConfig{
			Backend:       BackendTerminal,
			Width:         320,
			Height:        240,
			TerminalScale: 4,
			Panel:         panel.DefaultConfig(),
		},
		Commands: CommandsConfig{
			ReconnectMin: 3 * time.Second,
			ReconnectMax: 60 * time.Second,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Validate rejects configurations the face cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.Animation.FPS < 1 || c.Animation.FPS > 120 {
		errs = append(errs, fmt.Errorf("animation.fps %d outside [1, 120]", c.Animation.FPS))
	}
	if c.Animation.MaxDT <= 0 {
		errs = append(errs, fmt.Errorf("animation.max_dt must be positive"))
	}
	l := c.Layout
	if l.ScleraRadius <= 0 || l.PupilRadius <= 0 {
		errs = append(errs, fmt.Errorf("layout radii must be positive"))
	}
	if l.PupilRadius >= l.ScleraRadius {
		errs = append(errs, fmt.Errorf("layout.pupil_radius %d must be smaller than sclera_radius %d", l.PupilRadius, l.ScleraRadius))
	}
	if l.RightX <= l.LeftX {
		errs = append(errs, fmt.Errorf("layout.right_x must be right of left_x"))
	}
	switch c.Display.Backend {
	case BackendTerminal, BackendHeadless:
	case BackendPanel:
		if err := c.Display.Panel.Validate(); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("unknown display.backend %q", c.Display.Backend))
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size must be positive"))
	}
	if c.Display.TerminalScale < 1 {
		errs = append(errs, fmt.Errorf("display.terminal_scale must be at least 1"))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Load reads configuration from path, or from ~/.sparky/config.yaml and
// ./config.yaml when path is empty, then applies environment overrides.
// A missing file in the search path is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()
	return cfg, nil
}

func settings(cfg *Config) (map[string]any, error) {
	m := map[string]any{}
	if err := mapstructure.Decode(cfg, &m); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return m, nil
}

// Encode writes the configuration as YAML to w, keyed like the config file.
func Encode(cfg *Config, w io.Writer) error {
	m, err := settings(cfg)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}
	return enc.Close()
}

// Save writes the configuration as YAML to path
func Save(cfg *Config, path string) error {
	m, err := settings(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	v := viper.New()
	for k, val := range m {
		v.Set(k, val)
	}
	return v.WriteConfigAs(path)
}

// Dir returns the configuration directory path
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".sparky"), nil
}

// DefaultPath is where config init writes.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// newViper registers every key with its default so environment overrides
// reach nested fields.
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := map[string]any{}
	if err := mapstructure.Decode(cfg, &defaults); err == nil {
		setDefaults(v, "", defaults)
	}
	return v
}

func setDefaults(v *viper.Viper, prefix string, m map[string]any) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}
