package midi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

var ErrBadPitch = errors.New("bad pitch name")

var pitchClasses = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// ParsePitch converts a scientific pitch name ("c4", "C#4", "eb-1") to a MIDI
// key number, with c4 = 60.
func ParsePitch(name string) (uint8, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return 0, badPitch(name)
	}

	pc, ok := pitchClasses[s[0]]
	if !ok {
		return 0, badPitch(name)
	}
	s = s[1:]

	for len(s) > 0 && (s[0] == '#' || s[0] == 'b') {
		if s[0] == '#' {
			pc++
		} else {
			pc--
		}
		s = s[1:]
	}

	octave, err := strconv.Atoi(s)
	if err != nil {
		return 0, badPitch(name)
	}

	key := (octave+1)*12 + pc
	if key < 0 || key > 127 {
		return 0, badPitch(name)
	}
	return uint8(key), nil
}

func badPitch(name string) error {
	return fault.Wrap(ErrBadPitch,
		fmsg.With("parse pitch "+strconv.Quote(name)),
		ftag.With(ftag.InvalidArgument),
	)
}
