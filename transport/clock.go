package transport

import (
	"sort"
	"sync"
	"time"

	"go-pianoroll/debug"
	"go-pianoroll/sequencer"
)

// DefaultResolution is how often the clock checks for due callbacks
const DefaultResolution = 2 * time.Millisecond

type event struct {
	at sequencer.TransportTime
	fn func(at time.Duration)
}

// Clock is a wall-clock sequencer.Transport. Callbacks run on the clock's own
// goroutine, outside its lock.
type Clock struct {
	mu sync.Mutex

	bpm     float64
	loop    bool
	loopEnd sequencer.TransportTime

	events map[int]event
	nextID int

	running   bool
	startedAt time.Time
	offset    time.Duration // position at startedAt
	lastPos   time.Duration // unwrapped position already handled
	stopChan  chan struct{}
	done      chan struct{}

	resolution time.Duration
	now        func() time.Time
}

// NewClock creates a stopped clock at the given tempo
func NewClock(bpm float64) *Clock {
	return &Clock{
		bpm:        bpm,
		events:     make(map[int]event),
		resolution: DefaultResolution,
		now:        time.Now,
	}
}

// Schedule registers fn at a musical position
func (c *Clock) Schedule(fn func(at time.Duration), at sequencer.TransportTime) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.events[c.nextID] = event{at: at, fn: fn}
	return c.nextID
}

// Cancel drops every scheduled callback
func (c *Clock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = make(map[int]event)
}

// Start runs the clock from now, positioned at offset. A running clock is
// restarted.
func (c *Clock) Start(offset time.Duration) {
	c.Stop()

	c.mu.Lock()
	c.running = true
	c.startedAt = c.now()
	c.offset = offset
	c.lastPos = offset
	c.stopChan = make(chan struct{})
	c.done = make(chan struct{})
	stop, done := c.stopChan, c.done
	c.mu.Unlock()

	debug.Log("clock", "start offset=%s bpm=%g", offset, c.BPM())
	go c.run(stop, done)
}

// Stop halts the clock and waits for its goroutine. Any callback already
// running finishes first.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	stop, done := c.stopChan, c.done
	c.mu.Unlock()

	close(stop)
	<-done
	debug.Log("clock", "stop")
}

// Running reports whether the clock is started
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Elapsed returns the position the clock has fired up to, wrapped to the loop
// when looping. Callbacks at or after it have not run yet, so restarting from
// Elapsed never skips one. It trails wall time by at most one resolution.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return 0
	}
	return c.wrap(c.lastPos)
}

// SetLoop turns looping on or off with the given loop end
func (c *Clock) SetLoop(loop bool, end sequencer.TransportTime) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loop = loop
	c.loopEnd = end
}

// SetBPM changes tempo. A running clock keeps its musical position.
func (c *Clock) SetBPM(bpm float64) {
	if bpm <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		now := c.now()
		beats := c.position().Seconds() * c.bpm / 60
		handled := c.lastPos.Seconds() * c.bpm / 60
		c.offset = time.Duration(beats * 60 / bpm * float64(time.Second))
		c.lastPos = time.Duration(handled * 60 / bpm * float64(time.Second))
		c.startedAt = now
	}
	c.bpm = bpm
}

// BPM returns the tempo
func (c *Clock) BPM() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bpm
}

// position is the unwrapped position. Caller holds mu.
func (c *Clock) position() time.Duration {
	return c.offset + c.now().Sub(c.startedAt)
}

func (c *Clock) loopLength() time.Duration {
	if !c.loop {
		return 0
	}
	return c.loopEnd.Duration(c.bpm)
}

func (c *Clock) wrap(pos time.Duration) time.Duration {
	if l := c.loopLength(); l > 0 {
		return pos % l
	}
	return pos
}

func (c *Clock) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.resolution)
	defer ticker.Stop()

	c.tick()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

type firing struct {
	fn  func(at time.Duration)
	at  time.Duration // position within the loop
	abs time.Duration // unwrapped position, for ordering
}

// tick fires everything due in [lastPos, position).
func (c *Clock) tick() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	from := c.lastPos
	to := c.position()
	c.lastPos = to
	due := c.due(from, to)
	c.mu.Unlock()

	for _, f := range due {
		debug.LogEvery(64, "clock", "fire at=%s", f.at)
		f.fn(f.at)
	}
}

// due lists callbacks whose time falls in [from, to), repeating every loop
// length when looping. Caller holds mu.
func (c *Clock) due(from, to time.Duration) []firing {
	if to <= from {
		return nil
	}
	loopLen := c.loopLength()

	ids := make([]int, 0, len(c.events))
	for id := range c.events {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var out []firing
	for _, id := range ids {
		e := c.events[id]
		at := e.at.Duration(c.bpm)
		if loopLen <= 0 {
			if at >= from && at < to {
				out = append(out, firing{fn: e.fn, at: at, abs: at})
			}
			continue
		}
		// callbacks past the loop end never play
		if at >= loopLen {
			continue
		}
		for t := at + (from/loopLen)*loopLen; t < to; t += loopLen {
			if t >= from {
				out = append(out, firing{fn: e.fn, at: at, abs: t})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].abs < out[j].abs })
	return out
}
