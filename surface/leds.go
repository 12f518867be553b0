package surface

import (
	"fmt"

	"github.com/charmbracelet/log"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// ledTypes are the rows with a cache, in resync order
var ledTypes = []ControlType{Solo, Mute, Arm, BankLeft, BankRight}

// LEDState is a copy of the mirror's cache for display
type LEDState map[ControlType][]uint8

// Mirror remembers the last value written to every LED and suppresses
// repeated writes. The cache only tracks what was transmitted, never what
// the host believes.
type Mirror struct {
	layout *Layout
	cache  map[ControlType][]uint8
	send   func(msg gomidi.Message) error
	log    *log.Logger
}

// NewMirror creates a mirror with every LED cached as off
func NewMirror(layout *Layout, logger *log.Logger) *Mirror {
	m := &Mirror{
		layout: layout,
		cache:  make(map[ControlType][]uint8, len(ledTypes)),
		log:    logger,
	}
	for _, t := range ledTypes {
		n := NumChannels
		if t == BankLeft || t == BankRight {
			n = 1
		}
		m.cache[t] = make([]uint8, n)
	}
	return m
}

// SetOutput sets where LED messages go. nil detaches the output; the cache
// keeps updating so a later forced resync restores the hardware.
func (m *Mirror) SetOutput(send func(msg gomidi.Message) error) {
	m.send = send
}

// Value returns the cached value for (t, index), or Off if there is none
func (m *Mirror) Value(t ControlType, index int) uint8 {
	row, ok := m.cache[t]
	if !ok || index < 0 || index >= len(row) {
		return Off
	}
	return row[index]
}

// Set lights or clears one LED. Nothing is sent if the cached value already
// matches, unless force is set.
func (m *Mirror) Set(t ControlType, index int, on bool, force bool) error {
	value := toMIDI(on)

	row, ok := m.cache[t]
	if !ok || index < 0 || index >= len(row) {
		return fmt.Errorf("%w: %s index %d", ErrUnknownLED, t, index)
	}
	if row[index] == value && !force {
		return nil
	}

	led, err := m.layout.LEDs.ID(t, index)
	if err != nil {
		return err
	}

	// Cache before sending: a notification triggered by the send must see
	// the new value.
	row[index] = value
	m.log.Debug("switch led", "type", t, "index", index, "led", led, "value", value)

	if m.send == nil {
		return nil
	}
	if err := m.send(gomidi.NoteOn(0, led, value)); err != nil {
		return fmt.Errorf("send led %d: %w", led, err)
	}
	return nil
}

// State copies the cache
func (m *Mirror) State() LEDState {
	s := make(LEDState, len(m.cache))
	for t, row := range m.cache {
		s[t] = append([]uint8(nil), row...)
	}
	return s
}

func toMIDI(on bool) uint8 {
	if on {
		return On
	}
	return Off
}

func toggle(value uint8) uint8 {
	if value == Off {
		return On
	}
	return Off
}
