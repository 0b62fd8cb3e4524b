package sequencer

import (
	"fmt"

	"github.com/google/uuid"
)

// Note is a single note on the grid. Identity is the pointer: two notes with
// equal fields are different notes. ID only addresses a note from outside the
// process (HTTP, TUI status line).
type Note struct {
	ID       uuid.UUID `json:"id"`
	Pitch    int       `json:"pitch"`    // index into the scale
	Start    int       `json:"start"`    // ticks
	Duration int       `json:"duration"` // ticks
	Velocity float64   `json:"velocity"` // 0-1
}

// NewNote creates a note with a fresh ID
func NewNote(pitch, start, duration int, velocity float64) (*Note, error) {
	switch {
	case pitch < 0:
		return nil, invalid(ErrInvalidNote, fmt.Sprintf("negative pitch %d", pitch))
	case start < 0:
		return nil, invalid(ErrInvalidNote, fmt.Sprintf("negative start %d", start))
	case duration <= 0:
		return nil, invalid(ErrInvalidNote, fmt.Sprintf("duration %d must be positive", duration))
	case velocity < 0 || velocity > 1:
		return nil, invalid(ErrInvalidNote, fmt.Sprintf("velocity %g outside [0,1]", velocity))
	}
	return &Note{
		ID:       uuid.New(),
		Pitch:    pitch,
		Start:    start,
		Duration: duration,
		Velocity: velocity,
	}, nil
}

// End returns the first tick after the note.
func (n *Note) End() int {
	return n.Start + n.Duration
}

// Covers reports whether the note sounds at tick.
func (n *Note) Covers(tick int) bool {
	return tick >= n.Start && tick < n.End()
}
