package sequencer

import (
	"fmt"
	"strings"
)

// Scale maps a pitch index to a pitch name. Index 0 is the lowest pitch.
type Scale []string

var (
	Chromatic        = Scale{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	CMajor           = Scale{"C", "D", "E", "F", "G", "A", "B"}
	CMinorPentatonic = Scale{"C", "Eb", "F", "G", "Bb"}
)

var scales = map[string]Scale{
	"chromatic":        Chromatic,
	"major":            CMajor,
	"minor-pentatonic": CMinorPentatonic,
}

// ScaleByName returns a copy of a built-in scale.
func ScaleByName(name string) (Scale, error) {
	s, ok := scales[strings.ToLower(name)]
	if !ok {
		return nil, invalid(ErrUnknownScale, fmt.Sprintf("scale %q", name))
	}
	return append(Scale(nil), s...), nil
}

// ScaleNames lists the built-in scale names.
func ScaleNames() []string {
	return []string{"chromatic", "major", "minor-pentatonic"}
}

// Name returns the pitch name at idx.
func (s Scale) Name(idx int) (string, error) {
	if idx < 0 || idx >= len(s) {
		return "", invalid(ErrPitchOutOfRange, fmt.Sprintf("pitch %d not in scale of %d", idx, len(s)))
	}
	return s[idx], nil
}

// Equal reports whether both scales list the same pitch names in order.
func (s Scale) Equal(other Scale) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}
