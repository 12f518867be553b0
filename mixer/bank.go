package mixer

import (
	"fmt"

	"go-midimix/surface"
)

// Bank is a window of 8 strips over the console's tracks
type Bank struct {
	console *Console
}

// Channel returns strip i. The strip keeps its index across scrolls.
func (b *Bank) Channel(i int) (surface.Channel, error) {
	if i < 0 || i >= surface.NumChannels {
		return nil, fmt.Errorf("%w: %d", surface.ErrNoChannel, i)
	}
	return b.console.strips[i], nil
}

// Position returns the track index under strip 0
func (b *Bank) Position() int {
	b.console.mu.Lock()
	defer b.console.mu.Unlock()
	return b.console.pos
}

func (b *Bank) ScrollBackwards() error     { return b.scroll(-1) }
func (b *Bank) ScrollForwards() error      { return b.scroll(1) }
func (b *Bank) ScrollPageBackwards() error { return b.scroll(-surface.NumChannels) }
func (b *Bank) ScrollPageForwards() error  { return b.scroll(surface.NumChannels) }

// scroll moves the bank by delta, clamped to the track list. Strips whose
// underlying state differs after the move are notified.
func (b *Bank) scroll(delta int) error {
	c := b.console
	return c.mutate(func() error {
		pos := c.pos + delta
		if last := c.maxPosLocked(); pos > last {
			pos = last
		}
		if pos < 0 {
			pos = 0
		}
		if pos != c.pos {
			c.log.Debug("bank scrolled", "from", c.pos, "to", pos)
		}
		c.pos = pos
		return nil
	})
}

// Strip is one bank slot. It addresses track pos+index.
type Strip struct {
	console *Console
	index   int
}

func (s *Strip) Index() int { return s.index }

func (s *Strip) Muted() bool  { return s.flag(func(t *Track) bool { return t.Mute }) }
func (s *Strip) Soloed() bool { return s.flag(func(t *Track) bool { return t.Solo }) }
func (s *Strip) Armed() bool  { return s.flag(func(t *Track) bool { return t.Arm }) }

func (s *Strip) flag(get func(*Track) bool) bool {
	c := s.console
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := s.trackLocked()
	if err != nil {
		return false
	}
	return get(t)
}

func (s *Strip) SetMute(on bool) error {
	return s.console.mutate(func() error {
		t, err := s.trackLocked()
		if err != nil {
			return err
		}
		t.Mute = on
		return nil
	})
}

func (s *Strip) SetArm(on bool) error {
	return s.console.mutate(func() error {
		t, err := s.trackLocked()
		if err != nil {
			return err
		}
		t.Arm = on
		return nil
	})
}

// SetSolo solos or unsolos the strip's track. Exclusive solo clears every
// other track, including ones outside the bank.
func (s *Strip) SetSolo(on bool, mode surface.SoloMode) error {
	c := s.console
	return c.mutate(func() error {
		if _, err := s.trackLocked(); err != nil {
			return err
		}
		exclusive := mode == surface.SoloExclusive ||
			(mode == surface.SoloUsePreference && c.exclusiveSolo)
		c.soloLocked(c.pos+s.index, on, exclusive)
		return nil
	})
}

func (s *Strip) SetVolume(value uint8) error {
	return s.level(value, func(t *Track, v uint8) { t.Volume = float64(v) / 127 })
}

func (s *Strip) SetPan(value uint8) error {
	return s.level(value, func(t *Track, v uint8) { t.Pan = float64(v) / 128 })
}

func (s *Strip) SetSend(send int, value uint8) error {
	if send < 0 || send >= surface.NumSends {
		return fmt.Errorf("%w: %d", ErrBadSend, send)
	}
	return s.level(value, func(t *Track, v uint8) { t.Sends[send] = float64(v) / 128 })
}

// level applies a continuous control. No flag changes, so no notification.
func (s *Strip) level(value uint8, set func(*Track, uint8)) error {
	if value > 127 {
		return fmt.Errorf("%w: %d", ErrBadVolume, value)
	}
	c := s.console
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := s.trackLocked()
	if err != nil {
		return err
	}
	set(t, value)
	return nil
}

// Observe registers fn for mute, solo and arm changes on this strip
func (s *Strip) Observe(fn func(surface.ControlType, bool)) {
	c := s.console
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers[s.index] = append(c.observers[s.index], fn)
}

func (s *Strip) trackLocked() (*Track, error) {
	c := s.console
	n := c.pos + s.index
	if n >= len(c.tracks) {
		return nil, fmt.Errorf("%w: strip %d at bank position %d", ErrNoTrack, s.index+1, c.pos)
	}
	return &c.tracks[n], nil
}
