package sequencer

import (
	"time"

	"go-pianoroll/debug"
)

// Tempo limits, in BPM
const (
	MinTempo     = 20.0
	MaxTempo     = 300.0
	DefaultTempo = 120.0
)

// State of the playback state machine
type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "PLAYING"
	}
	return "STOPPED"
}

// PlaybackController owns every transition of the playing flag. Every edit
// that affects what is heard goes through here so the whole schedule can be
// rebuilt from the track.
type PlaybackController struct {
	track     *Track
	ctx       *MusicContext
	transport Transport
	synth     Synthesizer

	scheduled int
}

// NewPlaybackController wires a track and context to a transport and synth
func NewPlaybackController(track *Track, mc *MusicContext, transport Transport, synth Synthesizer) *PlaybackController {
	return &PlaybackController{
		track:     track,
		ctx:       mc,
		transport: transport,
		synth:     synth,
	}
}

func (p *PlaybackController) Track() *Track          { return p.track }
func (p *PlaybackController) Context() *MusicContext { return p.ctx }

// State returns PLAYING or STOPPED
func (p *PlaybackController) State() State {
	if p.ctx.playing {
		return Playing
	}
	return Stopped
}

// Scheduled returns how many callbacks the last rebuild registered
func (p *PlaybackController) Scheduled() int {
	return p.scheduled
}

// Position returns the transport position, or zero when stopped
func (p *PlaybackController) Position() time.Duration {
	if !p.ctx.playing {
		return 0
	}
	return p.transport.Elapsed()
}

// Tempo returns the transport tempo
func (p *PlaybackController) Tempo() float64 {
	return p.transport.BPM()
}

// SetTempo clamps to the supported range and applies it to the transport.
func (p *PlaybackController) SetTempo(bpm float64) float64 {
	bpm = clamp(bpm, MinTempo, MaxTempo)
	p.transport.SetBPM(bpm)
	return bpm
}

type scheduledNote struct {
	at       TransportTime
	pitch    string
	duration TransportTime
	velocity float64
}

// RebuildSchedule cancels everything on the transport and schedules one
// callback per note. The track is validated first; on error the transport is
// left untouched.
func (p *PlaybackController) RebuildSchedule() (int, error) {
	notes := p.track.Notes()
	entries := make([]scheduledNote, 0, len(notes))
	for _, n := range notes {
		pitch, err := p.ctx.PitchName(n.Pitch)
		if err != nil {
			return 0, err
		}
		entries = append(entries, scheduledNote{
			at:       p.ctx.ToTransportTime(n.Start),
			pitch:    pitch,
			duration: p.ctx.ToTransportTime(n.Duration),
			velocity: n.Velocity,
		})
	}

	p.transport.Cancel()
	for _, e := range entries {
		p.transport.Schedule(func(at time.Duration) {
			p.synth.TriggerAttackRelease(e.pitch, e.duration, at, e.velocity)
		}, e.at)
	}
	p.scheduled = len(entries)
	debug.Log("schedule", "rebuilt %d notes", p.scheduled)
	return p.scheduled, nil
}

// Play schedules the track, loops one measure and starts the transport at
// offset. A playing transport is stopped first so no callback from the old
// schedule can fire after the new one is built.
func (p *PlaybackController) Play(offset time.Duration) error {
	if p.ctx.playing {
		p.Stop()
	}
	if _, err := p.RebuildSchedule(); err != nil {
		return err
	}
	p.transport.SetLoop(true, OneMeasure)
	p.transport.Start(offset)
	p.ctx.playing = true
	debug.Log("transport", "play offset=%s", offset)
	return nil
}

// Stop halts the transport and drops all pending callbacks.
func (p *PlaybackController) Stop() {
	if !p.ctx.playing {
		return
	}
	p.transport.Stop()
	p.transport.Cancel()
	p.scheduled = 0
	p.ctx.playing = false
	debug.Log("transport", "stop")
}

// Restart re-plays from the current position so edits are heard without
// rewinding. No-op when stopped.
func (p *PlaybackController) Restart() error {
	if !p.ctx.playing {
		return nil
	}
	pos := p.transport.Elapsed()
	p.Stop()
	return p.Play(pos)
}

// TogglePlay stops when playing, otherwise plays from the top
func (p *PlaybackController) TogglePlay() error {
	if p.ctx.playing {
		p.Stop()
		return nil
	}
	return p.Play(0)
}

// SetOctave changes the octave and restarts so scheduled pitches follow
func (p *PlaybackController) SetOctave(octave int) error {
	if err := ValidateOctave(octave); err != nil {
		return err
	}
	p.ctx.octave = octave
	return p.Restart()
}

// SetDivision changes the grid resolution. Notes keep their tick values.
func (p *PlaybackController) SetDivision(division int) error {
	if err := p.ctx.setDivision(division); err != nil {
		return err
	}
	return p.Restart()
}

// SetScale swaps the pitch names. The new scale must be the same size.
func (p *PlaybackController) SetScale(s Scale) error {
	if err := p.ctx.setScale(s); err != nil {
		return err
	}
	return p.Restart()
}

// AddNote checks the pitch against the scale, adds the note and restarts.
func (p *PlaybackController) AddNote(n *Note) error {
	if n == nil {
		return invalid(ErrInvalidNote, "nil note")
	}
	if _, err := p.ctx.scale.Name(n.Pitch); err != nil {
		return err
	}
	if err := p.track.AddNote(n); err != nil {
		return err
	}
	return p.Restart()
}

// DeleteNote removes the note and restarts. Deleting a note that is not in
// the track does nothing.
func (p *PlaybackController) DeleteNote(n *Note) error {
	if !p.track.DeleteNote(n) {
		return nil
	}
	return p.Restart()
}

// Clear removes every note and restarts
func (p *PlaybackController) Clear() error {
	p.track.Clear()
	return p.Restart()
}
