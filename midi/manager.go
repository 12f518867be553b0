package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-midimix/debug"
)

const (
	defaultPollRate = time.Second
	scanTimeout     = 3 * time.Second
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// portPair is an input port and its matching output, if any
type portPair struct {
	in  drivers.In
	out drivers.Out
}

// OpenFunc opens a controller on a matched port pair
type OpenFunc func(id string, in drivers.In, out drivers.Out) (Controller, error)

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	names       []string
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
	open        OpenFunc
	log         *log.Logger
}

// NewDeviceManager creates a device manager that connects to input ports
// whose names contain any of names, case-insensitively.
func NewDeviceManager(names ...string) *DeviceManager {
	return &DeviceManager{
		names:       names,
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    defaultPollRate,
		open: func(id string, in drivers.In, out drivers.Out) (Controller, error) {
			return NewMidimixController(id, in, out)
		},
		log: debug.Logger("midi"),
	}
}

// SetOpener replaces how controllers are opened
func (dm *DeviceManager) SetOpener(open OpenFunc) {
	dm.open = open
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		inPorts := gomidi.GetInPorts()
		outPorts := gomidi.GetOutPorts()
		ch <- portsResult{inPorts: inPorts, outPorts: outPorts}
	}()

	var result portsResult
	select {
	case result = <-ch:
	case <-time.After(scanTimeout):
		// CoreMIDI is hung - skip this scan
		// User needs to run: sudo killall coreaudiod midiserver
		dm.log.Warn("port scan timed out")
		return
	}

	found := make(map[string]portPair)
	for _, inPort := range result.inPorts {
		id := inPort.String()
		if !MatchPort(id, dm.names) {
			continue
		}
		pair := portPair{in: inPort}
		if j := findOut(id, portNames(result.outPorts)); j >= 0 {
			pair.out = result.outPorts[j]
		}
		found[id] = pair
	}

	dm.reconcile(found)
}

// reconcile opens controllers for new ports and closes the ones whose port
// went away.
func (dm *DeviceManager) reconcile(found map[string]portPair) {
	for id, pair := range found {
		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		// Try to create controller
		c, err := dm.open(id, pair.in, pair.out)
		if err != nil {
			dm.log.Error("open controller failed", "id", id, "err", err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()

		dm.log.Info("device connected", "id", id)
		dm.events <- DeviceEvent{
			Type:       DeviceConnected,
			Controller: c,
			ID:         id,
		}
	}

	// Check for disconnects
	dm.mu.Lock()
	var removed []string
	for id, c := range dm.controllers {
		if _, ok := found[id]; ok {
			continue
		}
		if err := c.Close(); err != nil {
			dm.log.Debug("close after disconnect", "id", id, "err", err)
		}
		delete(dm.controllers, id)
		removed = append(removed, id)
	}
	dm.mu.Unlock()

	for _, id := range removed {
		dm.log.Info("device disconnected", "id", id)
		dm.events <- DeviceEvent{
			Type: DeviceDisconnected,
			ID:   id,
		}
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// MatchPort reports whether a port name contains any of names,
// case-insensitively.
func MatchPort(port string, names []string) bool {
	port = strings.ToLower(port)
	for _, n := range names {
		if n != "" && strings.Contains(port, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// findOut picks the output port for an input. An exact name wins; otherwise
// the first output sharing the device prefix before the port number.
func findOut(in string, outs []string) int {
	lower := strings.ToLower(in)
	for j, name := range outs {
		if strings.ToLower(name) == lower {
			return j
		}
	}
	prefix := devicePrefix(lower)
	for j, name := range outs {
		if devicePrefix(strings.ToLower(name)) == prefix {
			return j
		}
	}
	return -1
}

// devicePrefix strips a trailing port number, as in "midi mix:midi mix midi 1 28:0"
func devicePrefix(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, ' '); i > 0 {
		tail := name[i+1:]
		if strings.Trim(tail, "0123456789:") == "" {
			return name[:i]
		}
	}
	return name
}

func portNames(outs []drivers.Out) []string {
	names := make([]string, len(outs))
	for i, o := range outs {
		names[i] = o.String()
	}
	return names
}
