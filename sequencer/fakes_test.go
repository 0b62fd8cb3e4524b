package sequencer

import (
	"sort"
	"time"
)

type fakeEvent struct {
	fn func(at time.Duration)
	at TransportTime
}

// fakeTransport records every call and fires callbacks on demand.
type fakeTransport struct {
	pending map[int]fakeEvent
	nextID  int
	calls   []string

	running     bool
	loop        bool
	loopEnd     TransportTime
	elapsed     time.Duration
	startOffset time.Duration
	bpm         float64
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{pending: make(map[int]fakeEvent), bpm: DefaultTempo}
}

func (f *fakeTransport) Schedule(fn func(at time.Duration), at TransportTime) int {
	f.calls = append(f.calls, "schedule")
	f.nextID++
	f.pending[f.nextID] = fakeEvent{fn: fn, at: at}
	return f.nextID
}

func (f *fakeTransport) Start(offset time.Duration) {
	f.calls = append(f.calls, "start")
	f.running = true
	f.startOffset = offset
}

func (f *fakeTransport) Stop() {
	f.calls = append(f.calls, "stop")
	f.running = false
}

func (f *fakeTransport) Cancel() {
	f.calls = append(f.calls, "cancel")
	f.pending = make(map[int]fakeEvent)
}

func (f *fakeTransport) Elapsed() time.Duration {
	f.calls = append(f.calls, "elapsed")
	return f.elapsed
}

func (f *fakeTransport) SetLoop(loop bool, end TransportTime) {
	f.calls = append(f.calls, "loop")
	f.loop = loop
	f.loopEnd = end
}

func (f *fakeTransport) SetBPM(bpm float64) { f.bpm = bpm }
func (f *fakeTransport) BPM() float64       { return f.bpm }

// fire runs every pending callback once, in scheduling order.
func (f *fakeTransport) fire() {
	ids := make([]int, 0, len(f.pending))
	for id := range f.pending {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		e := f.pending[id]
		e.fn(e.at.Duration(f.bpm))
	}
}

type trigger struct {
	pitch    string
	duration string
	at       time.Duration
	velocity float64
}

type fakeSynth struct {
	triggers []trigger
}

func (s *fakeSynth) TriggerAttackRelease(pitch string, duration TransportTime, at time.Duration, velocity float64) {
	s.triggers = append(s.triggers, trigger{pitch: pitch, duration: duration.String(), at: at, velocity: velocity})
}
