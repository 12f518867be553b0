// Package prefs persists the two user-facing surface settings and notifies
// subscribers when they change.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Exclusive is the exclusive-solo policy setting
type Exclusive int

const (
	ExclusiveUser Exclusive = iota // follow the host's own preference
	ExclusiveOn
	ExclusiveOff
)

func (e Exclusive) String() string {
	switch e {
	case ExclusiveOn:
		return "On"
	case ExclusiveOff:
		return "Off"
	default:
		return "User"
	}
}

// Next cycles User -> On -> Off -> User
func (e Exclusive) Next() Exclusive {
	return (e + 1) % 3
}

// ParseExclusive accepts "user", "on" or "off" in any case
func ParseExclusive(s string) (Exclusive, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "":
		return ExclusiveUser, nil
	case "on":
		return ExclusiveOn, nil
	case "off":
		return ExclusiveOff, nil
	}
	return ExclusiveUser, fmt.Errorf("unknown exclusive solo setting %q", s)
}

func (e Exclusive) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Exclusive) UnmarshalText(text []byte) error {
	v, err := ParseExclusive(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Settings is the persisted document
type Settings struct {
	SwapMuteSolo  bool      `json:"swap_mute_solo"`
	ExclusiveSolo Exclusive `json:"exclusive_solo"`
}

// Store holds Settings, writes them to disk on change and fans out
// notifications. Observers run synchronously on the goroutine that made the
// change, after the store's lock is released.
type Store struct {
	path string

	mu       sync.Mutex
	settings Settings

	swapObservers      []func(bool)
	exclusiveObservers []func(Exclusive)
}

// DefaultPath returns ~/.config/go-midimix/prefs.json
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-midimix", "prefs.json"), nil
}

// NewMemory returns a store that is never written to disk
func NewMemory(s Settings) *Store {
	return &Store{settings: s}
}

// Open loads the store at path, or returns defaults if the file is missing
func Open(path string) (*Store, error) {
	st := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, fmt.Errorf("read prefs: %w", err)
	}

	if err := json.Unmarshal(data, &st.settings); err != nil {
		return nil, fmt.Errorf("parse prefs %s: %w", path, err)
	}
	return st, nil
}

// Settings returns a copy of the current values
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Store) SwapMuteSolo() bool {
	return s.Settings().SwapMuteSolo
}

func (s *Store) ExclusiveSolo() Exclusive {
	return s.Settings().ExclusiveSolo
}

// OnSwapMuteSolo registers fn for changes of the swap setting
func (s *Store) OnSwapMuteSolo(fn func(on bool)) {
	s.mu.Lock()
	s.swapObservers = append(s.swapObservers, fn)
	s.mu.Unlock()
}

// OnExclusiveSolo registers fn for changes of the exclusive solo setting
func (s *Store) OnExclusiveSolo(fn func(e Exclusive)) {
	s.mu.Lock()
	s.exclusiveObservers = append(s.exclusiveObservers, fn)
	s.mu.Unlock()
}

// SetSwapMuteSolo changes the swap setting. Observers are notified even when
// saving fails; the save error is returned.
func (s *Store) SetSwapMuteSolo(on bool) error {
	s.mu.Lock()
	if s.settings.SwapMuteSolo == on {
		s.mu.Unlock()
		return nil
	}
	s.settings.SwapMuteSolo = on
	err := s.saveLocked()
	observers := append([]func(bool){}, s.swapObservers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(on)
	}
	return err
}

// SetExclusiveSolo changes the exclusive solo setting
func (s *Store) SetExclusiveSolo(e Exclusive) error {
	if e < ExclusiveUser || e > ExclusiveOff {
		return fmt.Errorf("invalid exclusive solo setting %d", int(e))
	}

	s.mu.Lock()
	if s.settings.ExclusiveSolo == e {
		s.mu.Unlock()
		return nil
	}
	s.settings.ExclusiveSolo = e
	err := s.saveLocked()
	observers := append([]func(Exclusive){}, s.exclusiveObservers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(e)
	}
	return err
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}

	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}
