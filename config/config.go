package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go-pianoroll/music"
)

// ControllerType identifies the kind of controller
type ControllerType string

const (
	ControllerKeyboard ControllerType = "keyboard"
)

// Output engines
const (
	EngineSynth = "synth" // built-in software synth
	EngineMIDI  = "midi"  // external MIDI port
	EngineNone  = "none"
)

// ControllerConfig defines a saved controller configuration
type ControllerConfig struct {
	PortName     string         `json:"portName"`
	Type         ControllerType `json:"type"`
	AutoConnect  bool           `json:"autoConnect"`
	InputChannel int            `json:"inputChannel,omitempty"` // for keyboards
}

// SynthOutputConfig defines where playback goes
type SynthOutputConfig struct {
	Engine   string `json:"engine,omitempty"`
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel,omitempty"` // 1-16
}

// ModelConfig selects the continuation model checkpoint
type ModelConfig struct {
	Source string `json:"source,omitempty"` // "basic", a .json checkpoint, a .mid file or a directory of them
	Queue  int    `json:"queue,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo float64 `json:"lastTempo,omitempty"`
	Temp      float64 `json:"temp,omitempty"`
	Clicks    *bool   `json:"clicks,omitempty"`
	MidiMin   int     `json:"midiMin,omitempty"`
	MidiMax   int     `json:"midiMax,omitempty"`
	Octave    int     `json:"octave,omitempty"`
	Project   string  `json:"project,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Controllers []ControllerConfig `json:"controllers,omitempty"`
	SynthOutput SynthOutputConfig  `json:"synthOutput,omitempty"`
	Model       ModelConfig        `json:"model,omitempty"`
	UI          UIConfig           `json:"ui,omitempty"`
	Palette     string             `json:"palette,omitempty"` // GIMP .gpl file
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	clicks := true
	return &Config{
		SynthOutput: SynthOutputConfig{Engine: EngineSynth, Channel: 1},
		Model:       ModelConfig{Source: "basic", Queue: 8},
		UI: UIConfig{
			LastTempo: 120,
			Temp:      1.0,
			Clicks:    &clicks,
			MidiMin:   music.DefaultMidiMin,
			MidiMax:   music.DefaultMidiMax,
			Project:   "untitled",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pianoroll"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file. Missing fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.SynthOutput.Channel < 1 || c.SynthOutput.Channel > 16 {
		c.SynthOutput.Channel = 1
	}
	if c.UI.LastTempo <= 0 {
		c.UI.LastTempo = 120
	}
	if c.UI.Temp <= 0 {
		c.UI.Temp = 1
	}
	if c.Model.Queue <= 0 {
		c.Model.Queue = 8
	}
}

// Save writes the config to disk
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

	data, err := json.MarshalIndent(c, "", "  ")
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

// IgnoredPorts returns ports that must not be auto-connected: controllers
// saved with autoConnect off, plus the synth output port so its echo is
// not read back as input.
func (c *Config) IgnoredPorts() []string {
	var out []string
	for _, ctrl := range c.Controllers {
		if !ctrl.AutoConnect {
			out = append(out, ctrl.PortName)
		}
	}
	if c.SynthOutput.PortName != "" {
		out = append(out, c.SynthOutput.PortName)
	}
	return out
}

// PlayerConfig builds the initial player settings
func (c *Config) PlayerConfig() music.PlayerConfig {
	pc := music.DefaultPlayerConfig()
	if c.UI.Clicks != nil {
		pc.Clicks = *c.UI.Clicks
	}
	if c.UI.Temp > 0 {
		pc.Temp = c.UI.Temp
	}
	if c.UI.MidiMin > 0 || c.UI.MidiMax > 0 {
		pc.MidiMin, pc.MidiMax = c.UI.MidiMin, c.UI.MidiMax
	}
	return pc
}

// Remember stores the session's settings for next launch
func (c *Config) Remember(seq music.Sequence, pc music.PlayerConfig) {
	clicks := pc.Clicks
	c.UI.LastTempo = seq.QPM
	c.UI.Temp = pc.Temp
	c.UI.Clicks = &clicks
	c.UI.MidiMin = pc.MidiMin
	c.UI.MidiMax = pc.MidiMax
}
