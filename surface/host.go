package surface

import (
	"errors"

	"go-midimix/prefs"
)

var (
	// ErrUnknownLED is returned for a (type, index) with no LED
	ErrUnknownLED = errors.New("surface: unknown led")

	// ErrNoChannel is returned by banks for an index outside 0-7
	ErrNoChannel = errors.New("surface: no such channel")
)

// SoloMode tells the host how a solo change treats other channels
type SoloMode int

const (
	SoloUsePreference SoloMode = iota // host's own exclusivity rule
	SoloExclusive                     // un-solo every other channel
	SoloInclusive                     // leave other channels alone
)

func (m SoloMode) String() string {
	switch m {
	case SoloExclusive:
		return "exclusive"
	case SoloInclusive:
		return "inclusive"
	default:
		return "preference"
	}
}

// Channel is one strip of the host's channel bank. Values are passed as raw
// 0-127 controller values; the host owns scaling.
type Channel interface {
	Muted() bool
	Soloed() bool
	Armed() bool

	SetMute(on bool) error
	SetArm(on bool) error
	SetSolo(on bool, mode SoloMode) error

	SetVolume(value uint8) error
	SetPan(value uint8) error
	SetSend(send int, value uint8) error

	// Observe registers fn for Mute, Solo and Arm changes. Hosts may call fn
	// synchronously from inside a Set call.
	Observe(fn func(t ControlType, on bool))
}

// Bank is the 8-channel window onto the host's tracks
type Bank interface {
	Channel(index int) (Channel, error)

	ScrollBackwards() error
	ScrollForwards() error
	ScrollPageBackwards() error
	ScrollPageForwards() error
}

// Master is the host's main output
type Master interface {
	SetVolume(value uint8) error
}

// Preferences is the persisted settings store. Changes arrive only through
// the On* callbacks.
type Preferences interface {
	SwapMuteSolo() bool
	SetSwapMuteSolo(on bool) error
	ExclusiveSolo() prefs.Exclusive

	OnSwapMuteSolo(fn func(on bool))
	OnExclusiveSolo(fn func(e prefs.Exclusive))
}
