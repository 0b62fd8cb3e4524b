package midi

import (
	"errors"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ScanTimeout bounds port enumeration (CoreMIDI can hang)
const ScanTimeout = 3 * time.Second

var ErrScanTimeout = errors.New("midi port scan timed out")

// OutPorts lists output port names
func OutPorts() ([]string, error) {
	ch := make(chan []string, 1)
	go func() {
		outs := gomidi.GetOutPorts()
		names := make([]string, len(outs))
		for i, out := range outs {
			names[i] = out.String()
		}
		ch <- names
	}()

	select {
	case names := <-ch:
		return names, nil
	case <-time.After(ScanTimeout):
		// Fix: sudo killall coreaudiod midiserver
		return nil, ErrScanTimeout
	}
}

// CloseDriver shuts the MIDI driver down. Call once on exit.
func CloseDriver() {
	gomidi.CloseDriver()
}
