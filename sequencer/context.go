package sequencer

import (
	"fmt"
	"strings"
)

// MusicContext is the global musical configuration of a session. Tempo is not
// here: it belongs to the Transport.
type MusicContext struct {
	division int // grid cells per quarter note
	scale    Scale
	octave   int
	playing  bool // written only by PlaybackController
}

// NewMusicContext validates and creates a context
func NewMusicContext(division int, scale Scale, octave int) (*MusicContext, error) {
	if err := ValidateDivision(division); err != nil {
		return nil, err
	}
	if err := ValidateOctave(octave); err != nil {
		return nil, err
	}
	if len(scale) == 0 {
		return nil, invalid(ErrScaleCardinality, "empty scale")
	}
	return &MusicContext{
		division: division,
		scale:    append(Scale(nil), scale...),
		octave:   octave,
	}, nil
}

// DefaultMusicContext is a chromatic scale at octave 4 with sixteenth-note cells
func DefaultMusicContext() *MusicContext {
	mc, _ := NewMusicContext(4, Chromatic, 4)
	return mc
}

// ValidateDivision accepts positive powers of two.
func ValidateDivision(division int) error {
	if division <= 0 || division&(division-1) != 0 {
		return invalid(ErrInvalidDivision, fmt.Sprintf("division %d is not a positive power of two", division))
	}
	return nil
}

// Octave limits. Every pitch from c-1 (key 0) to b8 (key 119) is a MIDI key,
// so any scale degree in range can be played and exported. Octave 9 stops at
// g9 and is rejected.
const (
	MinOctave = -1
	MaxOctave = 8
)

// ValidateOctave accepts MinOctave..MaxOctave.
func ValidateOctave(octave int) error {
	if octave < MinOctave || octave > MaxOctave {
		return invalid(ErrInvalidOctave, fmt.Sprintf("octave %d outside %d..%d", octave, MinOctave, MaxOctave))
	}
	return nil
}

func (c *MusicContext) Division() int { return c.division }
func (c *MusicContext) Octave() int   { return c.octave }
func (c *MusicContext) Playing() bool { return c.playing }

// Scale returns a copy of the scale
func (c *MusicContext) Scale() Scale {
	return append(Scale(nil), c.scale...)
}

// ScaleSize returns the number of selectable pitches
func (c *MusicContext) ScaleSize() int {
	return len(c.scale)
}

// TicksPerMeasure is the number of grid cells in one 4/4 measure.
func (c *MusicContext) TicksPerMeasure() int {
	return QuartersPerMeasure * c.division
}

func (c *MusicContext) setDivision(division int) error {
	if err := ValidateDivision(division); err != nil {
		return err
	}
	c.division = division
	return nil
}

// setScale keeps the cardinality so existing pitch indices stay valid.
func (c *MusicContext) setScale(s Scale) error {
	if len(s) != len(c.scale) {
		return invalid(ErrScaleCardinality, fmt.Sprintf("scale has %d pitches, want %d", len(s), len(c.scale)))
	}
	c.scale = append(Scale(nil), s...)
	return nil
}

// ToTransportTime converts a grid tick to transport time. Tempo independent.
func (c *MusicContext) ToTransportTime(tick int) TransportTime {
	if tick < 0 {
		tick = 0
	}
	quarters := tick / c.division
	sixteenths := 4 / float64(c.division) * float64(tick%c.division)
	return TransportTime{
		Measures:   quarters / QuartersPerMeasure,
		Quarters:   quarters % QuartersPerMeasure,
		Sixteenths: sixteenths,
	}
}

// PitchName returns the absolute pitch used for playback, e.g. "C#4".
func (c *MusicContext) PitchName(pitch int) (string, error) {
	name, err := c.scale.Name(pitch)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", name, c.octave), nil
}

// MidiPitchName returns the lower-case pitch name used for export, e.g. "c#4".
func (c *MusicContext) MidiPitchName(pitch int) (string, error) {
	name, err := c.scale.Name(pitch)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", strings.ToLower(name), c.octave), nil
}
