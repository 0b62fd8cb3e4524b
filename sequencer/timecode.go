package sequencer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QuartersPerMeasure is fixed; the sequencer only knows 4/4.
const QuartersPerMeasure = 4

// TransportTime is a position in "measures:quarters:sixteenths" notation.
// Sixteenths may be fractional when the grid division is finer than 4.
type TransportTime struct {
	Measures   int
	Quarters   int
	Sixteenths float64
}

// OneMeasure is the loop length used for playback.
var OneMeasure = TransportTime{Measures: 1}

func (t TransportTime) String() string {
	return fmt.Sprintf("%d:%d:%s", t.Measures, t.Quarters, strconv.FormatFloat(t.Sixteenths, 'f', -1, 64))
}

// Beats returns the position in quarter notes.
func (t TransportTime) Beats() float64 {
	return float64(t.Measures*QuartersPerMeasure+t.Quarters) + t.Sixteenths/4
}

// Duration converts the position to wall time at the given tempo.
func (t TransportTime) Duration(bpm float64) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Duration(t.Beats() * 60 / bpm * float64(time.Second))
}

// ParseTransportTime parses "m:q:s". Missing trailing fields are zero, so
// "1" and "1:0" are both one measure.
func ParseTransportTime(label string) (TransportTime, error) {
	var t TransportTime
	parts := strings.Split(strings.TrimSpace(label), ":")
	if len(parts) == 0 || len(parts) > 3 || parts[0] == "" {
		return t, invalid(ErrInvalidTransportTime, fmt.Sprintf("label %q", label))
	}

	var err error
	if t.Measures, err = strconv.Atoi(parts[0]); err != nil || t.Measures < 0 {
		return TransportTime{}, invalid(ErrInvalidTransportTime, fmt.Sprintf("measures in %q", label))
	}
	if len(parts) > 1 {
		if t.Quarters, err = strconv.Atoi(parts[1]); err != nil || t.Quarters < 0 {
			return TransportTime{}, invalid(ErrInvalidTransportTime, fmt.Sprintf("quarters in %q", label))
		}
	}
	if len(parts) > 2 {
		if t.Sixteenths, err = strconv.ParseFloat(parts[2], 64); err != nil || t.Sixteenths < 0 {
			return TransportTime{}, invalid(ErrInvalidTransportTime, fmt.Sprintf("sixteenths in %q", label))
		}
	}
	return t, nil
}
