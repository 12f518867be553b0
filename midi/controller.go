package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Controller is the interface for a connected control surface
type Controller interface {
	ID() string

	// Input events from the controller. Closed by Close.
	Events() <-chan Event

	// Output to the controller
	Send(msg gomidi.Message) error

	// Lifecycle
	Close() error
}
