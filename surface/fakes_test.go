package surface

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-midimix/prefs"
)

// fakeChannel records calls and, like a real host, notifies observers
// synchronously from inside the setter.
type fakeChannel struct {
	mute, solo, arm bool
	calls           []string
	observers       []func(ControlType, bool)
	panicOnPan      bool
}

func (c *fakeChannel) Muted() bool  { return c.mute }
func (c *fakeChannel) Soloed() bool { return c.solo }
func (c *fakeChannel) Armed() bool  { return c.arm }

func (c *fakeChannel) SetMute(on bool) error {
	c.calls = append(c.calls, fmt.Sprintf("mute %v", on))
	c.set(Mute, &c.mute, on)
	return nil
}

func (c *fakeChannel) SetArm(on bool) error {
	c.calls = append(c.calls, fmt.Sprintf("arm %v", on))
	c.set(Arm, &c.arm, on)
	return nil
}

func (c *fakeChannel) SetSolo(on bool, mode SoloMode) error {
	c.calls = append(c.calls, fmt.Sprintf("solo %v %s", on, mode))
	c.set(Solo, &c.solo, on)
	return nil
}

func (c *fakeChannel) SetVolume(value uint8) error {
	c.calls = append(c.calls, fmt.Sprintf("volume %d", value))
	return nil
}

func (c *fakeChannel) SetPan(value uint8) error {
	if c.panicOnPan {
		panic("pan exploded")
	}
	c.calls = append(c.calls, fmt.Sprintf("pan %d", value))
	return nil
}

func (c *fakeChannel) SetSend(send int, value uint8) error {
	c.calls = append(c.calls, fmt.Sprintf("send %d %d", send, value))
	return nil
}

func (c *fakeChannel) Observe(fn func(ControlType, bool)) {
	c.observers = append(c.observers, fn)
}

func (c *fakeChannel) set(t ControlType, field *bool, on bool) {
	if *field == on {
		return
	}
	*field = on
	c.notify(t, on)
}

func (c *fakeChannel) notify(t ControlType, on bool) {
	for _, fn := range c.observers {
		fn(t, on)
	}
}

type fakeBank struct {
	channels  [NumChannels]*fakeChannel
	scrolls   []string
	scrollErr error
}

func newFakeBank() *fakeBank {
	b := &fakeBank{}
	for i := range b.channels {
		b.channels[i] = &fakeChannel{}
	}
	return b
}

func (b *fakeBank) Channel(index int) (Channel, error) {
	if index < 0 || index >= NumChannels {
		return nil, ErrNoChannel
	}
	return b.channels[index], nil
}

func (b *fakeBank) scroll(name string) error {
	b.scrolls = append(b.scrolls, name)
	return b.scrollErr
}

func (b *fakeBank) ScrollBackwards() error     { return b.scroll("back") }
func (b *fakeBank) ScrollForwards() error      { return b.scroll("forward") }
func (b *fakeBank) ScrollPageBackwards() error { return b.scroll("page back") }
func (b *fakeBank) ScrollPageForwards() error  { return b.scroll("page forward") }

// touched returns the calls made on each channel that saw any
func (b *fakeBank) touched() map[int][]string {
	out := map[int][]string{}
	for i, ch := range b.channels {
		if len(ch.calls) > 0 {
			out[i] = ch.calls
		}
	}
	return out
}

type fakeMaster struct {
	volumes []uint8
}

func (m *fakeMaster) SetVolume(value uint8) error {
	m.volumes = append(m.volumes, value)
	return nil
}

type harness struct {
	t      *testing.T
	s      *Surface
	bank   *fakeBank
	master *fakeMaster
	prefs  *prefs.Store
	sent   []gomidi.Message
	logs   *bytes.Buffer
	now    time.Time
}

func newHarness(t *testing.T, settings prefs.Settings) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		bank:   newFakeBank(),
		master: &fakeMaster{},
		prefs:  prefs.NewMemory(settings),
		logs:   &bytes.Buffer{},
		now:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	s, err := New(h.bank, h.master, h.prefs, log.New(h.logs))
	require.NoError(t, err)
	s.SetClock(func() time.Time { return h.now })
	s.SetOutput(func(msg gomidi.Message) error {
		h.sent = append(h.sent, msg)
		return nil
	})
	h.s = s
	return h
}

func (h *harness) cc(number, value uint8) {
	h.s.HandleMIDI(StatusControlChange, number, value)
}

func (h *harness) noteOn(note uint8) {
	h.s.HandleMIDI(StatusNoteOn, note, 127)
}

func (h *harness) noteOff(note uint8) {
	h.s.HandleMIDI(StatusNoteOff, note, 0)
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func (h *harness) reset() {
	h.sent = nil
	for _, ch := range h.bank.channels {
		ch.calls = nil
	}
	h.bank.scrolls = nil
}

func led(id, value uint8) gomidi.Message {
	return gomidi.NoteOn(0, id, value)
}
