package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// BankConfig selects the sample bank
type BankConfig struct {
	Manifest   string `json:"manifest,omitempty"` // empty uses the built-in loops
	SampleRate int    `json:"sampleRate,omitempty"`
	BPM        int    `json:"bpm,omitempty"`
}

// AudioConfig controls the sound device
type AudioConfig struct {
	Disabled bool `json:"disabled,omitempty"` // render in real time without a device
	BufferMs int  `json:"bufferMs,omitempty"`
}

// MIDIConfig names the ports to connect to
type MIDIConfig struct {
	Input      string `json:"input,omitempty"` // substring of the input port name
	Output     string `json:"output,omitempty"`
	Channel    int    `json:"channel,omitempty"` // note output channel, 0-15
	Monophonic bool   `json:"monophonic"`
	Pads       bool   `json:"pads"` // use a Launchpad as buttons and LEDs
}

// ClockConfig tunes how MIDI clock drives the beat
type ClockConfig struct {
	Multiplier int `json:"multiplier,omitempty"` // beats per quarter note
	ResetEvery int `json:"resetEvery,omitempty"` // quarter notes between hard resets
}

// StoreConfig locates the saved configuration
type StoreConfig struct {
	Dir     string `json:"dir,omitempty"`
	History int    `json:"history,omitempty"` // snapshots kept, 0 keeps none
}

// LoopConfig tunes the polling loop
type LoopConfig struct {
	PeriodUs      int `json:"periodUs,omitempty"`
	ReadEvery     int `json:"readEvery,omitempty"`
	KnobSettle    int `json:"knobSettle,omitempty"`
	SaveDelayMs   int `json:"saveDelayMs,omitempty"`
	SaveHoldoffMs int `json:"saveHoldoffMs,omitempty"`
	TriggerMs     int `json:"triggerMs,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // GIMP .gpl file, empty for the built-in one
	Seed    uint64 `json:"seed,omitempty"`    // 0 seeds from the clock
}

// Config is the main configuration structure
type Config struct {
	Bank  BankConfig  `json:"bank"`
	Audio AudioConfig `json:"audio"`
	MIDI  MIDIConfig  `json:"midi"`
	Clock ClockConfig `json:"clock"`
	Store StoreConfig `json:"store"`
	Loop  LoopConfig  `json:"loop"`
	UI    UIConfig    `json:"ui"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Bank:  BankConfig{SampleRate: 33000, BPM: 165},
		Audio: AudioConfig{BufferMs: 40},
		MIDI:  MIDIConfig{Monophonic: true, Pads: true},
		Clock: ClockConfig{Multiplier: 2, ResetEvery: 8},
		Store: StoreConfig{History: 16},
		Loop: LoopConfig{
			PeriodUs:      1000,
			ReadEvery:     4,
			KnobSettle:    50,
			SaveDelayMs:   8000,
			SaveHoldoffMs: 16000,
			TriggerMs:     10,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pikocore"), nil
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

// LoadFrom reads the config at path. Fields missing from the file keep
// their defaults.
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
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the instrument cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Bank.SampleRate < 1000 || c.Bank.SampleRate > 96000:
		return fmt.Errorf("bank sample rate %d out of range", c.Bank.SampleRate)
	case c.Bank.BPM < 30 || c.Bank.BPM > 360:
		return fmt.Errorf("bank bpm %d out of range", c.Bank.BPM)
	case c.MIDI.Channel < 0 || c.MIDI.Channel > 15:
		return fmt.Errorf("midi channel %d out of range", c.MIDI.Channel)
	case c.Clock.Multiplier < 1 || 24%c.Clock.Multiplier != 0:
		return fmt.Errorf("clock multiplier %d must divide 24", c.Clock.Multiplier)
	case c.Clock.ResetEvery < 1:
		return fmt.Errorf("clock resetEvery %d must be positive", c.Clock.ResetEvery)
	case c.Store.History < 0:
		return fmt.Errorf("store history %d is negative", c.Store.History)
	}
	return nil
}

// StoreDir returns the configured store directory or the default one
// next to config.json.
func (c *Config) StoreDir() (string, error) {
	if c.Store.Dir != "" {
		return c.Store.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "store"), nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
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
