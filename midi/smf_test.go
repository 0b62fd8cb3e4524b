package midi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-pianoroll/sequencer"
)

type decoded struct {
	ons      []uint8
	offs     []uint8
	onTicks  []uint64
	programs []uint8
}

func decode(t *testing.T, data []byte) (*smf.SMF, decoded) {
	t.Helper()
	s, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)

	var d decoded
	for _, tr := range s.Tracks {
		var abs uint64
		for _, ev := range tr {
			abs += uint64(ev.Delta)
			msg := gomidi.Message(ev.Message)
			var ch, key, vel, prog uint8
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				d.ons = append(d.ons, key)
				d.onTicks = append(d.onTicks, abs)
			case msg.GetNoteEnd(&ch, &key):
				d.offs = append(d.offs, key)
			case msg.GetProgramChange(&ch, &prog):
				d.programs = append(d.programs, prog)
			}
		}
	}
	return s, d
}

func TestEncodeEmpty(t *testing.T) {
	data, err := SMFEncoder{}.Encode(120, sequencer.DefaultChannel, nil)
	require.NoError(t, err)

	s, d := decode(t, data)
	assert.Len(t, s.Tracks, 2)
	assert.Empty(t, d.ons)
	assert.Equal(t, []uint8{32}, d.programs)
}

func TestEncodeNotes(t *testing.T) {
	events := []sequencer.MidiEvent{
		{Pitch: "e4", Start: 0.5, Duration: 0.25, Velocity: 1},
		{Pitch: "c4", Start: 0, Duration: 0.5, Velocity: 0.5},
		{Pitch: "c4", Start: 0.5, Duration: 0.5, Velocity: 0.5},
	}
	data, err := SMFEncoder{Name: "piano roll"}.Encode(120, 32, events)
	require.NoError(t, err)

	s, d := decode(t, data)
	assert.Equal(t, []uint8{60, 64, 60}, d.ons, "ordered by start")
	assert.Equal(t, []uint64{0, 960, 960}, d.onTicks)
	assert.Len(t, d.offs, 3)

	tempos := s.TempoChanges()
	require.NotEmpty(t, tempos)
	assert.InDelta(t, 120.0, tempos[0].BPM, 0.01)
}

func TestEncodeRejectsBadPitch(t *testing.T) {
	_, err := SMFEncoder{}.Encode(120, 32, []sequencer.MidiEvent{{Pitch: "x9", Duration: 1}})
	assert.ErrorIs(t, err, ErrBadPitch)
}

func TestNoteEventsReleaseBeforeRetrigger(t *testing.T) {
	evs, err := noteEvents(60, 0, []sequencer.MidiEvent{
		{Pitch: "c4", Start: 0, Duration: 1, Velocity: 1},
		{Pitch: "c4", Start: 1, Duration: 1, Velocity: 1},
	})
	require.NoError(t, err)

	var types []uint8
	for _, e := range evs {
		types = append(types, e.Type)
	}
	assert.Equal(t, []uint8{ProgramChange, NoteOn, NoteOff, NoteOn, NoteOff}, types)
	assert.Equal(t, uint32(TicksPerQuarter), evs[2].Tick)
}
