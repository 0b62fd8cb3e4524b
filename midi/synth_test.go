package midi

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-pianoroll/sequencer"
)

type fixedTempo float64

func (f fixedTempo) BPM() float64 { return float64(f) }

type recorder struct {
	mu   sync.Mutex
	msgs []gomidi.Message
}

func (r *recorder) send(msg gomidi.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) snapshot() []gomidi.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gomidi.Message(nil), r.msgs...)
}

func TestSynthNoteOnThenOff(t *testing.T) {
	rec := &recorder{}
	// a sixteenth at 6000 bpm is 2.5ms
	s := NewSynth(rec.send, 1, fixedTempo(6000))

	s.TriggerAttackRelease("a4", sequencer.TransportTime{Sixteenths: 1}, 0, 1)

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	msgs := rec.snapshot()

	var ch, key, vel uint8
	require.True(t, msgs[0].GetNoteStart(&ch, &key, &vel))
	assert.Equal(t, uint8(1), ch)
	assert.Equal(t, uint8(69), key)
	assert.Equal(t, uint8(127), vel)
	require.True(t, msgs[1].GetNoteEnd(&ch, &key))
	assert.Equal(t, uint8(69), key)
	assert.Zero(t, s.Sounding())
}

func TestSynthCloseReleasesNotes(t *testing.T) {
	rec := &recorder{}
	s := NewSynth(rec.send, 0, fixedTempo(20))

	s.TriggerAttackRelease("c4", sequencer.OneMeasure, 0, 0.8)
	s.TriggerAttackRelease("e4", sequencer.OneMeasure, 0, 0.8)
	assert.Equal(t, 2, s.Sounding())

	s.Close()
	assert.Zero(t, s.Sounding())
	assert.Len(t, rec.snapshot(), 4)

	s.TriggerAttackRelease("g4", sequencer.OneMeasure, 0, 0.8)
	assert.Len(t, rec.snapshot(), 4, "closed synth is silent")
}

func TestSynthCloseReleasesFiredTimer(t *testing.T) {
	rec := &recorder{}
	s := NewSynth(rec.send, 0, fixedTempo(6000))
	s.TriggerAttackRelease("c4", sequencer.TransportTime{Sixteenths: 1}, 0, 0.8)

	// the 2.5ms timer fires while the lock is held and blocks on it
	s.mu.Lock()
	time.Sleep(20 * time.Millisecond)
	s.closeLocked()
	s.mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	msgs := rec.snapshot()
	require.Len(t, msgs, 2, "exactly one NoteOff")
	var ch, key uint8
	require.True(t, msgs[1].GetNoteEnd(&ch, &key))
	assert.Equal(t, uint8(60), key)
	assert.Zero(t, s.Sounding())
}

func TestSynthSkipsBadPitch(t *testing.T) {
	rec := &recorder{}
	s := NewSynth(rec.send, 0, fixedTempo(120))
	s.TriggerAttackRelease("zz", sequencer.OneMeasure, 0, 1)
	assert.Empty(t, rec.snapshot())
}
