package midi

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-midimix/debug"
)

// LED notes on the MIDI Mix: 1-24 are the strip buttons, 25 and 26 the bank
// buttons. Shift has no LED.
const (
	firstLED uint8 = 0x01
	lastLED  uint8 = 0x1A
)

// MidimixController handles an Akai MIDI Mix
type MidimixController struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()

	mu      sync.Mutex
	closed  bool
	sendMu  sync.Mutex // serializes writes to the output; held by Close while clearing
	outDone bool
	events  chan Event
	sent    atomic.Uint64
	dropped atomic.Uint64

	log *log.Logger
}

// NewMidimixController opens the given ports. Either may be nil.
func NewMidimixController(id string, inPort drivers.In, outPort drivers.Out) (*MidimixController, error) {
	mm := &MidimixController{
		id:      id,
		inPort:  inPort,
		outPort: outPort,
		events:  make(chan Event, 64),
		log:     debug.Logger("midi"),
	}

	// Open output
	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		mm.send = send
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			if ev, ok := EventFromMessage(msg, timestampms); ok {
				mm.deliver(ev)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		mm.stopFunc = stop
	}

	mm.log.Info("controller opened", "id", id, "in", inPort != nil, "out", outPort != nil)
	return mm, nil
}

// deliver hands an event to the reader without blocking the driver thread
func (mm *MidimixController) deliver(ev Event) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if mm.closed {
		return
	}
	select {
	case mm.events <- ev:
	default:
		if n := mm.dropped.Add(1); n%100 == 1 {
			mm.log.Warn("input queue full, dropping", "dropped", n)
		}
	}
}

func (mm *MidimixController) ID() string {
	return mm.id
}

func (mm *MidimixController) Events() <-chan Event {
	return mm.events
}

// Send writes one message. Without an output port, or once closed, it does
// nothing.
func (mm *MidimixController) Send(msg gomidi.Message) error {
	mm.sendMu.Lock()
	defer mm.sendMu.Unlock()
	return mm.sendLocked(msg)
}

func (mm *MidimixController) sendLocked(msg gomidi.Message) error {
	if mm.send == nil || mm.outDone {
		return nil
	}
	mm.sent.Add(1)
	return mm.send(msg)
}

// Sent returns how many messages went out
func (mm *MidimixController) Sent() uint64 {
	return mm.sent.Load()
}

// ClearLEDs switches every LED off
func (mm *MidimixController) ClearLEDs() error {
	mm.sendMu.Lock()
	defer mm.sendMu.Unlock()
	return mm.clearLocked()
}

func (mm *MidimixController) clearLocked() error {
	for led := firstLED; led <= lastLED; led++ {
		if err := mm.sendLocked(gomidi.NoteOn(0, led, 0)); err != nil {
			return fmt.Errorf("clear led %d: %w", led, err)
		}
	}
	return nil
}

func (mm *MidimixController) Close() error {
	mm.mu.Lock()
	if mm.closed {
		mm.mu.Unlock()
		return nil
	}
	mm.closed = true
	mm.mu.Unlock()

	// Clear all LEDs on close, then refuse further writes
	mm.sendMu.Lock()
	err := mm.clearLocked()
	mm.outDone = true
	mm.sendMu.Unlock()

	if mm.stopFunc != nil {
		mm.stopFunc()
	}
	close(mm.events)
	mm.log.Info("controller closed", "id", mm.id, "sent", mm.Sent())
	return err
}
