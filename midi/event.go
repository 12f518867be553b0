package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Event is one 3-byte channel message read from a controller. Nothing is
// decoded here; the surface classifies it.
type Event struct {
	Status    uint8
	Data1     uint8
	Data2     uint8
	Timestamp int32 // ms, as reported by the driver
}

// EventFromMessage converts a driver message. Only 3-byte channel messages
// are accepted; clock, sysex and other system messages are rejected.
func EventFromMessage(msg gomidi.Message, timestampms int32) (Event, bool) {
	b := msg.Bytes()
	if len(b) != 3 || b[0] < 0x80 || b[0] >= 0xF0 {
		return Event{}, false
	}
	return Event{Status: b[0], Data1: b[1], Data2: b[2], Timestamp: timestampms}, true
}

// Message returns the event as a driver message
func (e Event) Message() gomidi.Message {
	return gomidi.Message{e.Status, e.Data1, e.Data2}
}
