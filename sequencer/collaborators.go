package sequencer

import "time"

// Transport is the playback clock. Positions are musical (TransportTime) so
// tempo changes on the transport never require rescheduling.
type Transport interface {
	// Schedule registers fn to run each time the transport passes at. fn
	// receives the transport position it was due at.
	Schedule(fn func(at time.Duration), at TransportTime) int
	// Start runs the transport from now, positioned at offset.
	Start(offset time.Duration)
	Stop()
	// Cancel drops every scheduled callback.
	Cancel()
	// Elapsed is the position callbacks have fired up to, wrapped to the loop
	// when looping.
	Elapsed() time.Duration
	SetLoop(loop bool, end TransportTime)
	SetBPM(bpm float64)
	BPM() float64
}

// Synthesizer renders a note. Fire and forget.
type Synthesizer interface {
	TriggerAttackRelease(pitch string, duration TransportTime, at time.Duration, velocity float64)
}
