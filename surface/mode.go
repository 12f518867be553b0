package surface

import (
	"time"

	"go-midimix/prefs"
)

// DefaultDoublePress is the window for a shift double-press
const DefaultDoublePress = 500 * time.Millisecond

// Mode is the surface's modifier and policy state
type Mode struct {
	ShiftPressed     bool
	PersistentSolo   bool // mute and solo rows swapped
	Exclusive        prefs.Exclusive
	LastShiftRelease time.Time
	Window           time.Duration
}

// releaseShift records a shift release at now and reports whether it
// completes a double-press.
func (m *Mode) releaseShift(now time.Time) bool {
	m.ShiftPressed = false
	since := now.Sub(m.LastShiftRelease)
	double := !m.LastShiftRelease.IsZero() && since >= 0 && since < m.Window
	m.LastShiftRelease = now
	return double
}

// soloMode maps the exclusive policy onto the host's solo call
func (m *Mode) soloMode() SoloMode {
	switch m.Exclusive {
	case prefs.ExclusiveOn:
		return SoloExclusive
	case prefs.ExclusiveOff:
		return SoloInclusive
	default:
		return SoloUsePreference
	}
}
