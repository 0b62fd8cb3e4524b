package sequencer

import (
	"github.com/google/uuid"
)

// Track is the ordered set of notes being edited. Order is insertion order; it
// only matters for display and deletion.
type Track struct {
	notes []*Note
}

// NewTrack creates an empty track
func NewTrack() *Track {
	return &Track{}
}

// AddNote appends a note. It does not reschedule playback; go through
// PlaybackController.AddNote for that.
func (t *Track) AddNote(n *Note) error {
	if n == nil {
		return invalid(ErrInvalidNote, "nil note")
	}
	if t.index(n) >= 0 {
		return invalid(ErrDuplicateNote, n.ID.String())
	}
	t.notes = append(t.notes, n)
	return nil
}

// DeleteNote removes exactly this note. Returns false if it was not present.
func (t *Track) DeleteNote(n *Note) bool {
	i := t.index(n)
	if i < 0 {
		return false
	}
	t.notes = append(t.notes[:i], t.notes[i+1:]...)
	return true
}

func (t *Track) index(n *Note) int {
	for i, existing := range t.notes {
		if existing == n {
			return i
		}
	}
	return -1
}

// Notes returns a copy of the note list. The notes themselves are shared.
func (t *Track) Notes() []*Note {
	out := make([]*Note, len(t.notes))
	copy(out, t.notes)
	return out
}

// Len returns the number of notes
func (t *Track) Len() int {
	return len(t.notes)
}

// Find returns the note with the given ID, or nil
func (t *Track) Find(id uuid.UUID) *Note {
	for _, n := range t.notes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// NoteAt returns the last added note covering (pitch, tick), or nil
func (t *Track) NoteAt(pitch, tick int) *Note {
	for i := len(t.notes) - 1; i >= 0; i-- {
		n := t.notes[i]
		if n.Pitch == pitch && n.Covers(tick) {
			return n
		}
	}
	return nil
}

// Clear removes all notes
func (t *Track) Clear() {
	t.notes = nil
}
