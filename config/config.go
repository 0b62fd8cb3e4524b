package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"go-pianoroll/sequencer"
)

var ErrInvalidConfig = errors.New("invalid config")

// SynthOutputConfig defines the synth MIDI output. An empty port plays
// nothing and only logs.
type SynthOutputConfig struct {
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel,omitempty"`
}

// MusicConfig is the editor's starting musical context
type MusicConfig struct {
	Tempo    float64 `json:"tempo,omitempty"`
	Division int     `json:"division,omitempty"`
	Octave   int     `json:"octave"`
	Scale    string  `json:"scale,omitempty"`
}

// ExportConfig controls where the save prompt starts
type ExportConfig struct {
	Dir string `json:"dir,omitempty"`
}

// ServerConfig is the HTTP API listener
type ServerConfig struct {
	Addr string `json:"addr,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // GIMP .gpl file, built-in when empty
}

// Config is the main configuration structure
type Config struct {
	SynthOutput SynthOutputConfig `json:"synthOutput,omitempty"`
	Music       MusicConfig       `json:"music"`
	Export      ExportConfig      `json:"export,omitempty"`
	Server      ServerConfig      `json:"server,omitempty"`
	UI          UIConfig          `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Music: MusicConfig{
			Tempo:    sequencer.DefaultTempo,
			Division: 4,
			Octave:   4,
			Scale:    "chromatic",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8000",
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

// Load reads the config from disk, or returns defaults if not found.
// Fields missing from the file keep their defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fault.Wrap(err, fmsg.With("read config"))
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("parse config", "Config file "+path+" is not valid JSON"),
			ftag.With(ftag.InvalidArgument),
		)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fault.Wrap(err, fmsg.With("create config dir"))
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks every field against what the sequencer accepts
func (c *Config) Validate() error {
	m := c.Music
	if m.Tempo < sequencer.MinTempo || m.Tempo > sequencer.MaxTempo {
		return invalid(fmt.Sprintf("tempo %g outside %g..%g", m.Tempo, sequencer.MinTempo, sequencer.MaxTempo))
	}
	if err := sequencer.ValidateDivision(m.Division); err != nil {
		return err
	}
	if sequencer.ValidateOctave(m.Octave) != nil {
		return invalid(fmt.Sprintf("octave %d outside %d..%d", m.Octave, sequencer.MinOctave, sequencer.MaxOctave))
	}
	if _, err := sequencer.ScaleByName(m.Scale); err != nil {
		return err
	}
	if c.SynthOutput.Channel < 0 || c.SynthOutput.Channel > 15 {
		return invalid(fmt.Sprintf("synth channel %d outside 0..15", c.SynthOutput.Channel))
	}
	return nil
}

// MusicContext builds the starting context from the music section
func (c *Config) MusicContext() (*sequencer.MusicContext, error) {
	scale, err := sequencer.ScaleByName(c.Music.Scale)
	if err != nil {
		return nil, err
	}
	return sequencer.NewMusicContext(c.Music.Division, scale, c.Music.Octave)
}

// Remember copies the editor's current settings back into the config
func (c *Config) Remember(mc *sequencer.MusicContext, tempo float64) {
	c.Music.Tempo = tempo
	c.Music.Division = mc.Division()
	c.Music.Octave = mc.Octave()
	for _, name := range sequencer.ScaleNames() {
		if s, _ := sequencer.ScaleByName(name); s.Equal(mc.Scale()) {
			c.Music.Scale = name
			break
		}
	}
}

func invalid(msg string) error {
	return fault.Wrap(ErrInvalidConfig,
		fmsg.With(msg),
		ftag.With(ftag.InvalidArgument),
	)
}
