package transport

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pianoroll/sequencer"
)

// manualClock returns a clock driven by a fake time source. Call advance then
// tick to move it forward without the goroutine.
func manualClock(bpm float64) (*Clock, func(time.Duration)) {
	c := NewClock(bpm)
	now := time.Unix(0, 0)
	c.now = func() time.Time { return now }
	return c, func(d time.Duration) { now = now.Add(d) }
}

func startManual(c *Clock, offset time.Duration) {
	c.running = true
	c.startedAt = c.now()
	c.offset = offset
	c.lastPos = offset
}

func mustTime(t *testing.T, label string) sequencer.TransportTime {
	t.Helper()
	tt, err := sequencer.ParseTransportTime(label)
	require.NoError(t, err)
	return tt
}

func TestCallbackFiresOnceInWindow(t *testing.T) {
	c, advance := manualClock(120)
	var fired []time.Duration
	c.Schedule(func(at time.Duration) { fired = append(fired, at) }, mustTime(t, "0:1:0"))
	startManual(c, 0)

	advance(400 * time.Millisecond)
	c.tick()
	assert.Empty(t, fired)

	advance(200 * time.Millisecond)
	c.tick()
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, fired)

	advance(time.Second)
	c.tick()
	assert.Len(t, fired, 1, "no loop, no repeat")
}

func TestLoopRepeatsEveryMeasure(t *testing.T) {
	c, advance := manualClock(120)
	c.SetLoop(true, sequencer.OneMeasure)
	var fired []time.Duration
	record := func(at time.Duration) { fired = append(fired, at) }
	c.Schedule(record, mustTime(t, "0:0:0"))
	c.Schedule(record, mustTime(t, "0:2:0"))
	c.Schedule(record, mustTime(t, "1:1:0")) // past the loop end
	startManual(c, 0)

	c.tick()
	for i := 0; i < 45; i++ {
		advance(100 * time.Millisecond)
		c.tick()
	}

	assert.Equal(t, []time.Duration{0, time.Second, 0, time.Second, 0}, fired)
}

func TestStartAtOffset(t *testing.T) {
	c, advance := manualClock(120)
	c.SetLoop(true, sequencer.OneMeasure)
	var fired []time.Duration
	record := func(at time.Duration) { fired = append(fired, at) }
	c.Schedule(record, mustTime(t, "0:0:0"))
	c.Schedule(record, mustTime(t, "0:2:0"))
	startManual(c, time.Second)

	advance(time.Millisecond)
	c.tick()
	assert.Equal(t, []time.Duration{time.Second}, fired, "note at the offset fires on the first tick")

	advance(900 * time.Millisecond)
	c.tick()
	assert.Len(t, fired, 1)

	advance(200 * time.Millisecond)
	c.tick()
	assert.Equal(t, []time.Duration{time.Second, 0}, fired, "wrapped to the loop start")
}

func TestCancelDropsCallbacks(t *testing.T) {
	c, advance := manualClock(120)
	fired := 0
	c.Schedule(func(time.Duration) { fired++ }, mustTime(t, "0:0:1"))
	c.Cancel()
	startManual(c, 0)

	advance(time.Second)
	c.tick()
	assert.Zero(t, fired)
}

func TestElapsedWrapsToLoop(t *testing.T) {
	c, advance := manualClock(120)
	assert.Equal(t, time.Duration(0), c.Elapsed(), "stopped clock sits at zero")

	c.SetLoop(true, sequencer.OneMeasure)
	startManual(c, 0)
	advance(2500 * time.Millisecond)
	assert.Equal(t, time.Duration(0), c.Elapsed(), "nothing handled before the first tick")
	c.tick()
	assert.Equal(t, 500*time.Millisecond, c.Elapsed())

	c.SetLoop(false, sequencer.OneMeasure)
	assert.Equal(t, 2500*time.Millisecond, c.Elapsed())
}

func TestSetBPMKeepsMusicalPosition(t *testing.T) {
	c, advance := manualClock(120)
	startManual(c, 0)
	advance(time.Second) // two beats
	c.tick()

	c.SetBPM(60)
	assert.Equal(t, 2*time.Second, c.Elapsed())
	assert.Equal(t, 60.0, c.BPM())

	c.SetBPM(0)
	assert.Equal(t, 60.0, c.BPM(), "non-positive tempo ignored")
}

func TestRestartFromElapsedFiresPendingCallback(t *testing.T) {
	c, advance := manualClock(120)
	c.SetLoop(true, sequencer.OneMeasure)
	var fired []time.Duration
	c.Schedule(func(at time.Duration) { fired = append(fired, at) }, mustTime(t, "0:0:1"))
	startManual(c, 0)

	advance(100 * time.Millisecond)
	c.tick()
	advance(100 * time.Millisecond) // 0:0:1 is now due but not yet ticked
	require.Empty(t, fired)

	pos := c.Elapsed()
	assert.Equal(t, 100*time.Millisecond, pos)

	startManual(c, pos)
	advance(50 * time.Millisecond)
	c.tick()
	assert.Equal(t, []time.Duration{125 * time.Millisecond}, fired)
}

func TestRunningClockFiresAndStops(t *testing.T) {
	c := NewClock(240)
	c.SetLoop(true, sequencer.OneMeasure)

	var mu sync.Mutex
	count := 0
	hit := make(chan struct{}, 8)
	c.Schedule(func(time.Duration) {
		mu.Lock()
		count++
		mu.Unlock()
		hit <- struct{}{}
	}, sequencer.TransportTime{})

	c.Start(0)
	assert.True(t, c.Running())
	select {
	case <-hit:
	case <-time.After(time.Second):
		t.Fatal("scheduled callback never fired")
	}
	c.Stop()
	assert.False(t, c.Running())

	mu.Lock()
	after := count
	mu.Unlock()
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, after, count, "no callbacks after Stop returns")
	mu.Unlock()

	c.Stop() // second stop is a no-op
}
