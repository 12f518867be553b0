// Package surface translates MIDI Mix input into mixer operations and
// mirrors mixer state back onto the surface LEDs.
//
// A Surface is not safe for concurrent use. All calls, including the
// preference and channel notifications it subscribes to, must come from one
// goroutine.
package surface

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-midimix/prefs"
)

// Surface is the control surface state machine
type Surface struct {
	layout Layout
	knobs  Knobs
	leds   *Mirror
	mode   Mode

	bank   Bank
	master Master
	prefs  Preferences

	now func() time.Time
	log *log.Logger
}

// New builds a surface over the host collaborators, seeds the mode from the
// preferences and subscribes to channel and preference changes.
func New(bank Bank, master Master, p Preferences, logger *log.Logger) (*Surface, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Surface{
		layout: DefaultLayout(),
		bank:   bank,
		master: master,
		prefs:  p,
		now:    time.Now,
		log:    logger,
	}
	s.knobs = DefaultKnobs(s.layout.Ranges.Encoder.Low)
	s.leds = NewMirror(&s.layout, logger)
	s.mode = Mode{
		Exclusive: p.ExclusiveSolo(),
		Window:    DefaultDoublePress,
	}
	if p.SwapMuteSolo() {
		s.mode.PersistentSolo = true
		s.layout.SwapMuteSolo()
	}

	for i := 0; i < NumChannels; i++ {
		ch, err := bank.Channel(i)
		if err != nil {
			return nil, fmt.Errorf("surface: channel %d: %w", i, err)
		}
		index := i
		ch.Observe(func(t ControlType, on bool) {
			s.log.Debug("channel changed", "type", t, "channel", index+1, "on", on)
			if err := s.leds.Set(t, index, on, false); err != nil {
				s.log.Error("led update failed", "type", t, "channel", index+1, "err", err)
			}
		})
	}

	p.OnSwapMuteSolo(s.applySwap)
	p.OnExclusiveSolo(func(e prefs.Exclusive) {
		s.log.Info("exclusive solo changed", "policy", e)
		s.mode.Exclusive = e
	})

	return s, nil
}

// SetClock replaces the time source used for double-press detection
func (s *Surface) SetClock(now func() time.Time) {
	s.now = now
}

// SetDoublePressWindow changes the shift double-press window
func (s *Surface) SetDoublePressWindow(d time.Duration) {
	if d > 0 {
		s.mode.Window = d
	}
}

// SetOutput attaches the LED output. nil detaches it.
func (s *Surface) SetOutput(send func(msg gomidi.Message) error) {
	s.leds.SetOutput(send)
}

// Mode returns a copy of the mode state
func (s *Surface) Mode() Mode {
	return s.mode
}

// Layout returns a copy of the current routing layout
func (s *Surface) Layout() Layout {
	return s.layout
}

// LEDs returns a copy of the LED cache
func (s *Surface) LEDs() LEDState {
	return s.leds.State()
}

// HandleMIDI processes one incoming message. Errors and panics raised while
// handling it are logged here and never reach the caller.
func (s *Surface) HandleMIDI(status, data1, data2 uint8) {
	s.Handle(Classify(status, data1, data2))
}

// Handle processes one classified message, see HandleMIDI
func (s *Surface) Handle(msg Message) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("handler panic", "event", msg, "kind", fmt.Sprintf("%T", r), "err", r)
		}
	}()

	if err := s.dispatch(msg); err != nil {
		s.log.Error("handler failed", "event", msg, "kind", fmt.Sprintf("%T", err), "err", err)
	}
}

func (s *Surface) dispatch(msg Message) error {
	switch msg.Kind {
	case KindNoteOn:
		return s.noteOn(msg.Number)
	case KindNoteOff:
		return s.noteOff(msg.Number)
	case KindControlChange:
		return s.route(msg.Number, msg.Value)
	default:
		s.log.Warn("unknown status", "status", fmt.Sprintf("0x%02X", msg.Status), "cc", msg.Number, "value", msg.Value)
		return nil
	}
}

func (s *Surface) noteOn(note uint8) error {
	switch note {
	case NoteBankLeft:
		var err error
		if s.mode.ShiftPressed {
			s.log.Debug("bank left, single step")
			err = s.bank.ScrollBackwards()
		} else {
			s.log.Debug("bank left, page")
			err = s.bank.ScrollPageBackwards()
		}
		if err != nil {
			return fmt.Errorf("scroll backwards: %w", err)
		}
		return s.leds.Set(BankLeft, 0, true, false)

	case NoteBankRight:
		var err error
		if s.mode.ShiftPressed {
			s.log.Debug("bank right, single step")
			err = s.bank.ScrollForwards()
		} else {
			s.log.Debug("bank right, page")
			err = s.bank.ScrollPageForwards()
		}
		if err != nil {
			return fmt.Errorf("scroll forwards: %w", err)
		}
		return s.leds.Set(BankRight, 0, true, false)

	case NoteShift:
		s.mode.ShiftPressed = true
		s.log.Debug("shift", "pressed", true)
	}
	return nil
}

func (s *Surface) noteOff(note uint8) error {
	switch note {
	case NoteBankLeft:
		return s.leds.Set(BankLeft, 0, false, false)

	case NoteBankRight:
		return s.leds.Set(BankRight, 0, false, false)

	case NoteShift:
		double := s.mode.releaseShift(s.now())
		s.log.Debug("shift", "pressed", false, "double", double)
		if double {
			return s.togglePersistentSolo()
		}
	}
	return nil
}

// togglePersistentSolo asks the preference store to flip the swap setting.
// The mode itself changes in applySwap, when the store reports back.
func (s *Surface) togglePersistentSolo() error {
	want := !s.prefs.SwapMuteSolo()
	s.log.Info("toggle swap mute/solo", "swap", want)
	if err := s.prefs.SetSwapMuteSolo(want); err != nil {
		return fmt.Errorf("toggle swap mute/solo: %w", err)
	}
	return nil
}

func (s *Surface) applySwap(on bool) {
	if on == s.mode.PersistentSolo {
		return
	}
	s.mode.PersistentSolo = on
	s.layout.SwapMuteSolo()
	s.log.Info("mute/solo rows swapped", "swap", on)
	s.ResyncAll()
}

// ResyncAll rewrites every LED from the host's current state, bypassing the
// write suppression.
func (s *Surface) ResyncAll() {
	for i := 0; i < NumChannels; i++ {
		ch, err := s.bank.Channel(i)
		if err != nil {
			s.log.Error("resync: no channel", "channel", i+1, "err", err)
			continue
		}
		s.resync(Solo, i, ch.Soloed())
		s.resync(Mute, i, ch.Muted())
		s.resync(Arm, i, ch.Armed())
	}
	s.resync(BankLeft, 0, s.leds.Value(BankLeft, 0) == On)
	s.resync(BankRight, 0, s.leds.Value(BankRight, 0) == On)
}

func (s *Surface) resync(t ControlType, index int, on bool) {
	if err := s.leds.Set(t, index, on, true); err != nil {
		s.log.Error("resync led failed", "type", t, "index", index, "err", err)
	}
}
