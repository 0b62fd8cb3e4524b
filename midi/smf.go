package midi

import (
	"bytes"
	"math"
	"sort"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-pianoroll/debug"
	"go-pianoroll/sequencer"
)

// TicksPerQuarter is the SMF time resolution
const TicksPerQuarter = 960

// SMFEncoder writes a format 1 Standard MIDI File: a tempo/meter track and
// one note track. The channel argument selects the General MIDI program;
// notes are written on MIDI channel 0.
type SMFEncoder struct {
	Name string // track name, optional
}

var _ sequencer.MidiEncoder = SMFEncoder{}

func (e SMFEncoder) Encode(tempo float64, channel int, events []sequencer.MidiEvent) ([]byte, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var meta smf.Track
	meta.Add(0, smf.MetaMeter(4, 4))
	meta.Add(0, smf.MetaTempo(tempo))
	meta.Close(0)
	if err := s.Add(meta); err != nil {
		return nil, fault.Wrap(err, fmsg.With("add tempo track"))
	}

	notes, err := noteEvents(tempo, channel, events)
	if err != nil {
		return nil, err
	}

	var track smf.Track
	if e.Name != "" {
		track.Add(0, smf.MetaTrackSequenceName(e.Name))
	}
	var last uint32
	for _, ev := range notes {
		track.Add(ev.Tick-last, ev.Message())
		last = ev.Tick
	}
	track.Close(0)
	if err := s.Add(track); err != nil {
		return nil, fault.Wrap(err, fmsg.With("add note track"))
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fault.Wrap(err, fmsg.With("write smf"))
	}
	debug.Log("export", "encoded %d notes, %d bytes", len(events), buf.Len())
	return buf.Bytes(), nil
}

// noteEvents converts seconds to ticks and orders note on/off pairs by
// absolute tick.
func noteEvents(tempo float64, program int, events []sequencer.MidiEvent) ([]Event, error) {
	out := make([]Event, 0, 2*len(events)+1)
	out = append(out, Event{Type: ProgramChange, Note: uint8(clampInt(program, 0, 127))})

	for _, me := range events {
		key, err := ParsePitch(me.Pitch)
		if err != nil {
			return nil, err
		}
		on := secondsToTicks(me.Start, tempo)
		off := secondsToTicks(me.Start+me.Duration, tempo)
		if off <= on {
			off = on + 1
		}
		out = append(out,
			Event{Tick: on, Type: NoteOn, Note: key, Velocity: Velocity7(me.Velocity)},
			Event{Tick: off, Type: NoteOff, Note: key},
		)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tick != out[j].Tick {
			return out[i].Tick < out[j].Tick
		}
		return out[i].order() < out[j].order()
	})
	return out, nil
}

func secondsToTicks(sec, tempo float64) uint32 {
	if sec <= 0 {
		return 0
	}
	return uint32(math.Round(sec * tempo / 60 * TicksPerQuarter))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
