// Package bridge runs the surface, the console and the preference store on
// one goroutine, fed by controller input, hot-plug events and UI tasks.
package bridge

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"go-midimix/midi"
	"go-midimix/mixer"
	"go-midimix/surface"
)

// DeviceSource delivers controller connect/disconnect events
type DeviceSource interface {
	Events() <-chan midi.DeviceEvent
}

// Snapshot is what the UI renders. It is a copy; holding it is safe.
type Snapshot struct {
	Mode      surface.Mode
	Layout    surface.Layout
	LEDs      surface.LEDState
	Console   mixer.Snapshot
	Device    string // connected controller id, "" when none
	Handled   uint64 // input events processed
	LastEvent surface.Message
}

// Bridge owns the single-threaded core
type Bridge struct {
	surface *surface.Surface
	console *mixer.Console
	devices DeviceSource

	tasks chan func()
	done  chan struct{}

	// loop goroutine only
	controller midi.Controller
	standby    []midi.Controller // matching controllers waiting for the active one to go
	input      <-chan midi.Event
	handled    uint64
	last       surface.Message

	mu   sync.RWMutex
	snap Snapshot

	// Notify UI of updates
	UpdateChan chan struct{}

	log *log.Logger
}

// New creates a bridge. devices may be nil when no hardware is wanted.
func New(s *surface.Surface, c *mixer.Console, devices DeviceSource, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	b := &Bridge{
		surface:    s,
		console:    c,
		devices:    devices,
		tasks:      make(chan func(), 32),
		done:       make(chan struct{}),
		UpdateChan: make(chan struct{}, 1),
		log:        logger,
	}
	b.publish()
	return b
}

// Run processes events until ctx is cancelled (blocking - run in goroutine)
func (b *Bridge) Run(ctx context.Context) {
	defer close(b.done)

	var deviceEvents <-chan midi.DeviceEvent
	if b.devices != nil {
		deviceEvents = b.devices.Events()
	}

	for {
		select {
		case <-ctx.Done():
			b.detach()
			b.publish()
			return

		case ev, ok := <-deviceEvents:
			if !ok {
				deviceEvents = nil
				continue
			}
			b.handleDevice(ev)

		case ev, ok := <-b.input:
			if !ok {
				b.log.Debug("controller input closed")
				b.input = nil
				continue
			}
			b.handled++
			b.last = surface.Classify(ev.Status, ev.Data1, ev.Data2)
			b.surface.Handle(b.last)

		case fn := <-b.tasks:
			fn()
		}
		b.publish()
	}
}

// Do runs fn on the bridge goroutine. It returns once fn is queued, or
// immediately if the bridge has stopped.
func (b *Bridge) Do(fn func()) {
	select {
	case b.tasks <- fn:
	case <-b.done:
	}
}

// Resync queues a full LED rewrite
func (b *Bridge) Resync() {
	b.Do(b.surface.ResyncAll)
}

// Snapshot returns the state as of the last processed event
func (b *Bridge) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}

// Done is closed when Run returns
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

func (b *Bridge) handleDevice(ev midi.DeviceEvent) {
	switch ev.Type {
	case midi.DeviceConnected:
		if b.controller != nil {
			b.log.Warn("second controller on standby", "id", ev.ID, "active", b.controller.ID())
			b.standby = append(b.standby, ev.Controller)
			return
		}
		b.attach(ev.Controller)

	case midi.DeviceDisconnected:
		if b.controller == nil || b.controller.ID() != ev.ID {
			b.dropStandby(ev.ID)
			return
		}
		b.log.Info("controller detached", "id", ev.ID)
		b.detach()
		if len(b.standby) > 0 {
			next := b.standby[0]
			b.standby = b.standby[1:]
			b.attach(next)
		}
	}
}

func (b *Bridge) dropStandby(id string) {
	for i, c := range b.standby {
		if c.ID() == id {
			b.standby = append(b.standby[:i], b.standby[i+1:]...)
			return
		}
	}
}

// attach wires a controller in and repaints it from scratch
func (b *Bridge) attach(c midi.Controller) {
	b.log.Info("controller attached", "id", c.ID())
	b.controller = c
	b.input = c.Events()
	b.surface.SetOutput(c.Send)
	b.surface.ResyncAll()
}

func (b *Bridge) detach() {
	if b.controller == nil {
		return
	}
	b.surface.SetOutput(nil)
	b.controller = nil
	b.input = nil
}

func (b *Bridge) publish() {
	snap := Snapshot{
		Mode:      b.surface.Mode(),
		Layout:    b.surface.Layout(),
		LEDs:      b.surface.LEDs(),
		Console:   b.console.Snapshot(),
		Handled:   b.handled,
		LastEvent: b.last,
	}
	if b.controller != nil {
		snap.Device = b.controller.ID()
	}

	b.mu.Lock()
	b.snap = snap
	b.mu.Unlock()

	select {
	case b.UpdateChan <- struct{}{}:
	default:
	}
}
