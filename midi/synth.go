package midi

import (
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-pianoroll/debug"
	"go-pianoroll/sequencer"
)

// Tempo is anything that knows the current tempo (the transport)
type Tempo interface {
	BPM() float64
}

// Synth plays notes on a MIDI output. NoteOff is sent once the note's
// duration has passed at the current tempo.
type Synth struct {
	send    func(msg gomidi.Message) error
	channel uint8
	tempo   Tempo

	mu      sync.Mutex
	pending map[*time.Timer]uint8
	closed  bool
}

var _ sequencer.Synthesizer = (*Synth)(nil)

// NewSynth wraps a send function (from gomidi.SendTo or a test recorder)
func NewSynth(send func(msg gomidi.Message) error, channel uint8, tempo Tempo) *Synth {
	return &Synth{
		send:    send,
		channel: channel & 0x0f,
		tempo:   tempo,
		pending: make(map[*time.Timer]uint8),
	}
}

// OpenOutput connects a Synth to the named output port
func OpenOutput(port string, channel uint8, tempo Tempo) (*Synth, error) {
	out, err := gomidi.FindOutPort(port)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("find output port "+port))
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("open output port "+port))
	}
	debug.Log("midi", "opened output %q channel %d", out.String(), channel)
	return NewSynth(send, channel, tempo), nil
}

func (s *Synth) TriggerAttackRelease(pitch string, duration sequencer.TransportTime, at time.Duration, velocity float64) {
	key, err := ParsePitch(pitch)
	if err != nil {
		debug.Log("midi", "skip note: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if err := s.send(gomidi.NoteOn(s.channel, key, Velocity7(velocity))); err != nil {
		debug.Log("midi", "note on %s: %v", pitch, err)
		return
	}
	debug.LogEvery(32, "midi", "note %s at=%s dur=%s", pitch, at, duration)

	var t *time.Timer
	t = time.AfterFunc(duration.Duration(s.tempo.BPM()), func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.pending[t]; !ok {
			return
		}
		delete(s.pending, t)
		s.send(gomidi.NoteOff(s.channel, key))
	})
	s.pending[t] = key
}

// Close releases every sounding note and stops further output
func (s *Synth) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// closeLocked sends NoteOff for every pending key. A timer that already fired
// but is still waiting on mu finds its key gone and sends nothing. Caller
// holds mu.
func (s *Synth) closeLocked() {
	for t, key := range s.pending {
		t.Stop()
		delete(s.pending, t)
		s.send(gomidi.NoteOff(s.channel, key))
	}
	s.closed = true
}

// Sounding returns how many notes are waiting for their NoteOff
func (s *Synth) Sounding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// NullSynth only logs. Used when no output port is configured.
type NullSynth struct{}

func (NullSynth) TriggerAttackRelease(pitch string, duration sequencer.TransportTime, at time.Duration, velocity float64) {
	debug.Log("synth", "%s dur=%s at=%s vel=%.2f", pitch, duration, at, velocity)
}
