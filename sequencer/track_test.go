package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNote(t *testing.T, pitch, start, duration int) *Note {
	t.Helper()
	n, err := NewNote(pitch, start, duration, 0.8)
	require.NoError(t, err)
	return n
}

func TestDeleteThenAddIdenticalNote(t *testing.T) {
	track := NewTrack()
	a := mustNote(t, 0, 0, 2)
	b := mustNote(t, 4, 4, 2)
	require.NoError(t, track.AddNote(a))
	require.NoError(t, track.AddNote(b))

	assert := assert.New(t)
	assert.True(track.DeleteNote(a))

	fresh := mustNote(t, 0, 0, 2)
	require.NoError(t, track.AddNote(fresh))

	assert.Equal(2, track.Len())
	assert.Nil(track.Find(a.ID))
	assert.Equal(fresh, track.Find(fresh.ID))
	assert.False(track.DeleteNote(a), "deleted identity must not come back")
	assert.Equal(2, track.Len())
}

func TestDeleteRemovesOnlyThatIdentity(t *testing.T) {
	track := NewTrack()
	a := mustNote(t, 3, 0, 1)
	twin := mustNote(t, 3, 0, 1)
	require.NoError(t, track.AddNote(a))
	require.NoError(t, track.AddNote(twin))

	assert.True(t, track.DeleteNote(twin))
	assert.Equal(t, []*Note{a}, track.Notes())
}

func TestDeleteIsIdempotent(t *testing.T) {
	track := NewTrack()
	a := mustNote(t, 0, 0, 1)
	require.NoError(t, track.AddNote(a))

	assert.True(t, track.DeleteNote(a))
	assert.False(t, track.DeleteNote(a))
	assert.False(t, track.DeleteNote(nil))
	assert.Equal(t, 0, track.Len())
}

func TestAddRejectsDuplicateIdentity(t *testing.T) {
	track := NewTrack()
	a := mustNote(t, 0, 0, 1)
	require.NoError(t, track.AddNote(a))

	assert.ErrorIs(t, track.AddNote(a), ErrDuplicateNote)
	assert.ErrorIs(t, track.AddNote(nil), ErrInvalidNote)
	assert.Equal(t, 1, track.Len())
}

func TestInsertionOrderPreserved(t *testing.T) {
	track := NewTrack()
	late := mustNote(t, 0, 8, 1)
	early := mustNote(t, 0, 0, 1)
	require.NoError(t, track.AddNote(late))
	require.NoError(t, track.AddNote(early))

	assert.Equal(t, []*Note{late, early}, track.Notes())
}

func TestNoteAt(t *testing.T) {
	track := NewTrack()
	a := mustNote(t, 2, 4, 3)
	require.NoError(t, track.AddNote(a))

	assert := assert.New(t)
	assert.Equal(a, track.NoteAt(2, 4))
	assert.Equal(a, track.NoteAt(2, 6))
	assert.Nil(track.NoteAt(2, 7))
	assert.Nil(track.NoteAt(1, 5))
}

func TestNewNoteValidation(t *testing.T) {
	cases := map[string][4]float64{
		"negative pitch":  {-1, 0, 1, 0.5},
		"negative start":  {0, -1, 1, 0.5},
		"zero duration":   {0, 0, 0, 0.5},
		"loud velocity":   {0, 0, 1, 1.5},
		"negative volume": {0, 0, 1, -0.1},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewNote(int(c[0]), int(c[1]), int(c[2]), c[3])
			assert.ErrorIs(t, err, ErrInvalidNote)
		})
	}
}
