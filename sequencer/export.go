package sequencer

import (
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"go-pianoroll/debug"
)

// DefaultChannel is the channel every exported note is written to.
// TODO: make the export channel/instrument selectable once the editor has an instrument picker.
const DefaultChannel = 32

// MidiExtension is the file extension offered to the path chooser
const MidiExtension = ".mid"

// MidiEvent is one note in absolute seconds
type MidiEvent struct {
	Pitch    string  `json:"pitch"` // lower case, e.g. "c#4"
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Velocity float64 `json:"velocity"`
}

// MidiEncoder turns events on one channel into a binary MIDI file
type MidiEncoder interface {
	Encode(tempo float64, channel int, events []MidiEvent) ([]byte, error)
}

// PathChooser asks where to save. An empty path means the user cancelled.
type PathChooser interface {
	ChooseSavePath(ext string) (string, error)
}

// FixedPath is a PathChooser that always answers with itself
type FixedPath string

func (p FixedPath) ChooseSavePath(string) (string, error) {
	return string(p), nil
}

// ToMidiTime converts ticks to seconds at the given tempo.
func ToMidiTime(tick, division int, tempo float64) float64 {
	return float64(tick) / float64(division) / (tempo / 60)
}

// MidiEvents converts every note in track order.
func MidiEvents(track *Track, mc *MusicContext, tempo float64) ([]MidiEvent, error) {
	notes := track.Notes()
	events := make([]MidiEvent, 0, len(notes))
	for _, n := range notes {
		pitch, err := mc.MidiPitchName(n.Pitch)
		if err != nil {
			return nil, err
		}
		events = append(events, MidiEvent{
			Pitch:    pitch,
			Start:    ToMidiTime(n.Start, mc.division, tempo),
			Duration: ToMidiTime(n.Duration, mc.division, tempo),
			Velocity: n.Velocity,
		})
	}
	return events, nil
}

// MidiExporter writes the track to a MIDI file
type MidiExporter struct {
	Encoder MidiEncoder
	Chooser PathChooser
}

// NewMidiExporter creates an exporter
func NewMidiExporter(enc MidiEncoder, chooser PathChooser) *MidiExporter {
	return &MidiExporter{Encoder: enc, Chooser: chooser}
}

// Export asks the chooser for a path and writes the file. A cancelled choice
// returns an empty path and no error; an exporter without a chooser returns
// ErrNoPathChooser.
func (e *MidiExporter) Export(track *Track, mc *MusicContext, tempo float64) (string, error) {
	if e.Chooser == nil {
		return "", fault.Wrap(ErrNoPathChooser, fmsg.With("export"))
	}
	path, err := e.Chooser.ChooseSavePath(MidiExtension)
	if err != nil {
		return "", fault.Wrap(err, fmsg.With("choose export path"))
	}
	if path == "" {
		debug.Log("export", "cancelled")
		return "", nil
	}
	path = withExtension(path)
	events, err := MidiEvents(track, mc, tempo)
	if err != nil {
		return "", err
	}
	return path, e.WriteEvents(path, tempo, events)
}

// ExportTo writes the track to path without asking.
func (e *MidiExporter) ExportTo(path string, track *Track, mc *MusicContext, tempo float64) error {
	events, err := MidiEvents(track, mc, tempo)
	if err != nil {
		return err
	}
	return e.WriteEvents(path, tempo, events)
}

// WriteEvents encodes already converted events and writes them to path.
// Callers holding playback state should convert first and call this after
// releasing it.
func (e *MidiExporter) WriteEvents(path string, tempo float64, events []MidiEvent) error {
	path = withExtension(path)
	data, err := e.Encoder.Encode(tempo, DefaultChannel, events)
	if err != nil {
		return fault.Wrap(err, fmsg.With("encode midi"))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("write midi file", "Could not write "+path))
	}
	debug.Log("export", "wrote %d notes to %s", len(events), path)
	return nil
}

func withExtension(path string) string {
	if filepath.Ext(path) == "" {
		return path + MidiExtension
	}
	return path
}
