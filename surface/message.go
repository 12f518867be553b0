package surface

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI status bytes (channel nibble 0)
const (
	StatusNoteOff       uint8 = 0x80
	StatusNoteOn        uint8 = 0x90
	StatusControlChange uint8 = 0xB0

	statusMask uint8 = 0xF0
)

// Kind is the classified type of an incoming message
type Kind int

const (
	KindUnknown Kind = iota
	KindNoteOn
	KindNoteOff
	KindControlChange
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "NoteOn"
	case KindNoteOff:
		return "NoteOff"
	case KindControlChange:
		return "ControlChange"
	default:
		return "Unknown"
	}
}

// Message is a classified 3-byte MIDI event. Status is kept so unknown
// messages can be logged as received.
type Message struct {
	Kind   Kind
	Status uint8
	Number uint8
	Value  uint8
}

// Classify looks only at the status high nibble. The channel is ignored.
func Classify(status, data1, data2 uint8) Message {
	msg := Message{Status: status, Number: data1, Value: data2}
	switch status & statusMask {
	case StatusNoteOn:
		msg.Kind = KindNoteOn
	case StatusNoteOff:
		msg.Kind = KindNoteOff
	case StatusControlChange:
		msg.Kind = KindControlChange
	}
	return msg
}

// ClassifyMIDI classifies a transport message. Anything other than a 3-byte
// message is Unknown.
func ClassifyMIDI(msg gomidi.Message) Message {
	b := msg.Bytes()
	if len(b) != 3 {
		m := Message{Kind: KindUnknown}
		if len(b) > 0 {
			m.Status = b[0]
		}
		return m
	}
	return Classify(b[0], b[1], b[2])
}

func (m Message) String() string {
	if m.Kind == KindUnknown {
		return fmt.Sprintf("Unknown(status=0x%02X, %d, %d)", m.Status, m.Number, m.Value)
	}
	return fmt.Sprintf("%s(%d, %d)", m.Kind, m.Number, m.Value)
}
