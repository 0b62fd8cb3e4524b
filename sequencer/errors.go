package sequencer

import (
	"errors"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

var (
	ErrInvalidDivision      = errors.New("invalid division")
	ErrInvalidNote          = errors.New("invalid note")
	ErrPitchOutOfRange      = errors.New("pitch out of range")
	ErrDuplicateNote        = errors.New("note already in track")
	ErrScaleCardinality     = errors.New("scale size mismatch")
	ErrUnknownScale         = errors.New("unknown scale")
	ErrInvalidTransportTime = errors.New("invalid transport time")
	ErrInvalidOctave        = errors.New("invalid octave")
	ErrNoPathChooser        = errors.New("exporter has no path chooser")
)

// invalid wraps a sentinel so callers can match it with errors.Is and outer
// surfaces can map it to a client error via ftag.
func invalid(sentinel error, msg string) error {
	return fault.Wrap(sentinel,
		fmsg.With(msg),
		ftag.With(ftag.InvalidArgument),
	)
}
