package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPortName matches the MIDI Mix ports on every platform seen so far
const DefaultPortName = "MIDI Mix"

// ControllerConfig defines a saved controller configuration
type ControllerConfig struct {
	PortName    string `yaml:"portName"`
	AutoConnect bool   `yaml:"autoConnect"`
}

// MixerConfig sizes the in-process console
type MixerConfig struct {
	Tracks        int  `yaml:"tracks"`
	ExclusiveSolo bool `yaml:"exclusiveSolo"`
}

// SurfaceConfig tunes the control surface
type SurfaceConfig struct {
	DoublePressMS int `yaml:"doublePressMs"`
}

// DoublePress returns the shift double-press window
func (s SurfaceConfig) DoublePress() time.Duration {
	return time.Duration(s.DoublePressMS) * time.Millisecond
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `yaml:"palette,omitempty"` // GIMP .gpl file, built-in when empty
}

// Config is the main configuration structure
type Config struct {
	Controllers []ControllerConfig `yaml:"controllers,omitempty"`
	Mixer       MixerConfig        `yaml:"mixer"`
	Surface     SurfaceConfig      `yaml:"surface"`
	UI          UIConfig           `yaml:"ui,omitempty"`
	Debug       bool               `yaml:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Controllers: []ControllerConfig{
			{
				PortName:    DefaultPortName,
				AutoConnect: true,
			},
		},
		Mixer: MixerConfig{
			Tracks: 16,
		},
		Surface: SurfaceConfig{
			DoublePressMS: 500,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-midimix"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default path, or returns defaults if not
// found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Fields missing from the file keep their
// defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would break the console or the surface
func (c *Config) Validate() error {
	if c.Mixer.Tracks < 1 {
		return fmt.Errorf("mixer.tracks must be at least 1, got %d", c.Mixer.Tracks)
	}
	if c.Surface.DoublePressMS <= 0 {
		return fmt.Errorf("surface.doublePressMs must be positive, got %d", c.Surface.DoublePressMS)
	}
	for _, ctrl := range c.Controllers {
		if ctrl.PortName == "" {
			return errors.New("controller with empty portName")
		}
	}
	return nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// FindController finds a controller config by port name
func (c *Config) FindController(portName string) *ControllerConfig {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == portName {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AutoConnectPorts returns the port names of controllers with autoConnect
// enabled
func (c *Config) AutoConnectPorts() []string {
	var result []string
	for _, ctrl := range c.Controllers {
		if ctrl.AutoConnect {
			result = append(result, ctrl.PortName)
		}
	}
	return result
}
