package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn        uint8 = 0x90
	NoteOff       uint8 = 0x80
	ProgramChange uint8 = 0xC0
)

// Event is a channel message at an absolute SMF tick
type Event struct {
	Tick     uint32
	Type     uint8 // NoteOn, NoteOff, ProgramChange
	Channel  uint8
	Note     uint8 // program number for ProgramChange
	Velocity uint8
}

// Message builds the wire message for the event
func (e Event) Message() gomidi.Message {
	switch e.Type {
	case NoteOn:
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	case NoteOff:
		return gomidi.NoteOff(e.Channel, e.Note)
	case ProgramChange:
		return gomidi.ProgramChange(e.Channel, e.Note)
	}
	return nil
}

// order sorts events sharing a tick: program changes, then note offs, then
// note ons, so a retriggered key is released before it sounds again.
func (e Event) order() int {
	switch e.Type {
	case ProgramChange:
		return 0
	case NoteOff:
		return 1
	}
	return 2
}

// Velocity7 maps a 0..1 velocity to 1..127. Zero would read as a note off.
func Velocity7(v float64) uint8 {
	n := int(v*127 + 0.5)
	if n < 1 {
		return 1
	}
	if n > 127 {
		return 127
	}
	return uint8(n)
}
