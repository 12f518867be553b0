// Package mixer is an in-process mixing console. It owns the track list and
// exposes an 8-strip bank over it for the control surface.
package mixer

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"go-midimix/surface"
)

// DefaultTracks is the track count when none is configured
const DefaultTracks = 16

var (
	ErrNoTrack   = errors.New("mixer: no track")
	ErrNoTracks  = errors.New("mixer: console needs at least one track")
	ErrBadSend   = errors.New("mixer: no such send")
	ErrBadVolume = errors.New("mixer: value out of range")
)

// Track is one channel of the console. Levels are normalized: volume and
// sends 0..1, pan 0..1 with 0.5 centre.
type Track struct {
	ID     uuid.UUID
	Name   string
	Volume float64
	Pan    float64
	Sends  [surface.NumSends]float64
	Mute   bool
	Solo   bool
	Arm    bool
}

// flags is what a strip shows on the surface
type flags struct {
	mute, solo, arm bool
}

// Console holds every track and the bank position. It is safe for concurrent
// use; observers run on the goroutine that made the change, after the lock
// is released.
type Console struct {
	mu            sync.Mutex
	tracks        []Track
	master        float64
	pos           int
	exclusiveSolo bool

	strips    [surface.NumChannels]*Strip
	observers [surface.NumChannels][]func(surface.ControlType, bool)
	bank      *Bank

	log *log.Logger
}

// New creates a console with n tracks named "Track 1".."Track n"
func New(n int, logger *log.Logger) (*Console, error) {
	if n < 1 {
		return nil, ErrNoTracks
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Console{
		tracks: make([]Track, n),
		master: 1,
		log:    logger,
	}
	for i := range c.tracks {
		c.tracks[i] = Track{
			ID:     uuid.New(),
			Name:   fmt.Sprintf("Track %d", i+1),
			Volume: 1,
			Pan:    0.5,
		}
	}
	for i := range c.strips {
		c.strips[i] = &Strip{console: c, index: i}
	}
	c.bank = &Bank{console: c}
	return c, nil
}

// Bank returns the 8-strip view used by the surface
func (c *Console) Bank() *Bank {
	return c.bank
}

// Master returns the master bus
func (c *Console) Master() *Master {
	return &Master{console: c}
}

// Len returns the number of tracks
func (c *Console) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tracks)
}

// ExclusiveSolo reports the console's own solo preference, used when the
// surface defers to it.
func (c *Console) ExclusiveSolo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exclusiveSolo
}

func (c *Console) SetExclusiveSolo(on bool) {
	c.mu.Lock()
	c.exclusiveSolo = on
	c.mu.Unlock()
	c.log.Info("console exclusive solo", "on", on)
}

// ToggleMute flips a track's mute from the host side
func (c *Console) ToggleMute(track int) error {
	return c.mutate(func() error {
		t, err := c.trackLocked(track)
		if err != nil {
			return err
		}
		t.Mute = !t.Mute
		return nil
	})
}

// ToggleSolo flips a track's solo, honoring the console preference
func (c *Console) ToggleSolo(track int) error {
	return c.mutate(func() error {
		t, err := c.trackLocked(track)
		if err != nil {
			return err
		}
		c.soloLocked(track, !t.Solo, c.exclusiveSolo)
		return nil
	})
}

func (c *Console) ToggleArm(track int) error {
	return c.mutate(func() error {
		t, err := c.trackLocked(track)
		if err != nil {
			return err
		}
		t.Arm = !t.Arm
		return nil
	})
}

// Snapshot is a copy of the console for rendering
type Snapshot struct {
	Tracks        []Track
	Master        float64
	Position      int
	ExclusiveSolo bool
}

// Visible returns the tracks under the bank, at most 8
func (s Snapshot) Visible() []Track {
	end := s.Position + surface.NumChannels
	if end > len(s.Tracks) {
		end = len(s.Tracks)
	}
	if s.Position >= end {
		return nil
	}
	return s.Tracks[s.Position:end]
}

// AnySolo reports whether any track is soloed
func (s Snapshot) AnySolo() bool {
	for _, t := range s.Tracks {
		if t.Solo {
			return true
		}
	}
	return false
}

func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Tracks:        append([]Track(nil), c.tracks...),
		Master:        c.master,
		Position:      c.pos,
		ExclusiveSolo: c.exclusiveSolo,
	}
}

// mutate runs fn under the lock and then tells strip observers about every
// flag that changed on screen.
func (c *Console) mutate(fn func() error) error {
	c.mu.Lock()
	before := c.flagsLocked()
	err := fn()
	after := c.flagsLocked()
	observers := c.observers
	c.mu.Unlock()

	for i := range after {
		b, a := before[i], after[i]
		if b.mute != a.mute {
			notify(observers[i], surface.Mute, a.mute)
		}
		if b.solo != a.solo {
			notify(observers[i], surface.Solo, a.solo)
		}
		if b.arm != a.arm {
			notify(observers[i], surface.Arm, a.arm)
		}
	}
	return err
}

func notify(fns []func(surface.ControlType, bool), t surface.ControlType, on bool) {
	for _, fn := range fns {
		fn(t, on)
	}
}

func (c *Console) flagsLocked() [surface.NumChannels]flags {
	var f [surface.NumChannels]flags
	for i := range f {
		n := c.pos + i
		if n < len(c.tracks) {
			t := &c.tracks[n]
			f[i] = flags{mute: t.Mute, solo: t.Solo, arm: t.Arm}
		}
	}
	return f
}

func (c *Console) trackLocked(n int) (*Track, error) {
	if n < 0 || n >= len(c.tracks) {
		return nil, fmt.Errorf("%w: %d", ErrNoTrack, n)
	}
	return &c.tracks[n], nil
}

func (c *Console) soloLocked(n int, on, exclusive bool) {
	if on && exclusive {
		for i := range c.tracks {
			if i != n {
				c.tracks[i].Solo = false
			}
		}
	}
	c.tracks[n].Solo = on
}

// maxPosLocked is the last bank position that still shows a track in strip 0
func (c *Console) maxPosLocked() int {
	if m := len(c.tracks) - surface.NumChannels; m > 0 {
		return m
	}
	return 0
}

// Master is the master bus
type Master struct {
	console *Console
}

// SetVolume sets the master level from a 0-127 controller value
func (m *Master) SetVolume(value uint8) error {
	if value > 127 {
		return fmt.Errorf("%w: %d", ErrBadVolume, value)
	}
	c := m.console
	c.mu.Lock()
	c.master = float64(value) / 127
	c.mu.Unlock()
	return nil
}

// Volume returns the master level 0..1
func (m *Master) Volume() float64 {
	m.console.mu.Lock()
	defer m.console.mu.Unlock()
	return m.console.master
}
