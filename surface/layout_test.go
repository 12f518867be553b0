package surface

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		status uint8
		want   Kind
	}{
		{0x90, KindNoteOn},
		{0x9F, KindNoteOn},
		{0x80, KindNoteOff},
		{0x83, KindNoteOff},
		{0xB0, KindControlChange},
		{0xB5, KindControlChange},
		{0xA0, KindUnknown},
		{0xE0, KindUnknown},
		{0xF8, KindUnknown},
	}

	for _, tt := range tests {
		msg := Classify(tt.status, 1, 2)
		assert.Equal(t, tt.want, msg.Kind, "status 0x%02X", tt.status)
		assert.Equal(t, tt.status, msg.Status)
	}
}

func TestClassifyMIDI(t *testing.T) {
	assert.Equal(t, Message{Kind: KindControlChange, Status: 0xB0, Number: 12, Value: 127},
		ClassifyMIDI(gomidi.Message{0xB0, 12, 127}))
	assert.Equal(t, KindUnknown, ClassifyMIDI(gomidi.Message{0xF8}).Kind)
	assert.Equal(t, KindUnknown, ClassifyMIDI(nil).Kind)
	assert.Equal(t, "Unknown(status=0xA0, 1, 2)", Classify(0xA0, 1, 2).String())
	assert.Equal(t, "NoteOn(27, 127)", Classify(0x90, 27, 127).String())
}

func TestDefaultLayoutIsValid(t *testing.T) {
	l := DefaultLayout()
	require.NoError(t, l.Validate())

	l.SwapMuteSolo()
	require.NoError(t, l.Validate())
}

func TestValidateRejectsOverlap(t *testing.T) {
	l := DefaultLayout()
	l.Ranges.Arm = Range{8, 13}
	assert.ErrorContains(t, l.Validate(), "mute and arm")

	l = DefaultLayout()
	l.Ranges.MainVolume = 95
	assert.ErrorContains(t, l.Validate(), "chanVolume and mainVolume")

	l = DefaultLayout()
	l.Ranges.Solo = Range{27, 20}
	assert.ErrorContains(t, l.Validate(), "inverted")
}

func TestSwapMuteSoloIsItsOwnInverse(t *testing.T) {
	l := DefaultLayout()

	l.SwapMuteSolo()
	assert.Equal(t, Range{20, 27}, l.Ranges.Mute)
	assert.Equal(t, Range{12, 19}, l.Ranges.Solo)
	assert.Equal(t, DefaultLayout().LEDs.Solo, l.LEDs.Mute)
	assert.Equal(t, DefaultLayout().Ranges.Arm, l.Ranges.Arm)

	l.SwapMuteSolo()
	assert.Equal(t, DefaultLayout(), l)
}

func TestRangeIndex(t *testing.T) {
	r := Range{92, 99}
	assert.True(t, r.Contains(92))
	assert.True(t, r.Contains(99))
	assert.False(t, r.Contains(100))
	assert.Equal(t, 7, r.Index(99))
}

func TestLEDMapID(t *testing.T) {
	m := DefaultLayout().LEDs

	id, err := m.ID(Arm, 7)
	require.NoError(t, err)
	assert.Equal(t, uint8(24), id)

	id, err = m.ID(BankRight, 0)
	require.NoError(t, err)
	assert.Equal(t, NoteBankRight, id)

	_, err = m.ID(Mute, 8)
	assert.ErrorIs(t, err, ErrUnknownLED)
	_, err = m.ID(Encoder, 0)
	assert.ErrorIs(t, err, ErrUnknownLED)
}

func TestDefaultKnobs(t *testing.T) {
	k := DefaultKnobs(30)
	require.Len(t, k, 24)

	assert.Equal(t, Knob{Func: KnobSend, Send: 0, Channel: 0}, k[30])
	assert.Equal(t, Knob{Func: KnobSend, Send: 1, Channel: 0}, k[38])
	assert.Equal(t, Knob{Func: KnobPan, Channel: 7}, k[53])
	_, ok := k[54]
	assert.False(t, ok)
}

func TestMirrorSuppressesRepeats(t *testing.T) {
	layout := DefaultLayout()
	m := NewMirror(&layout, log.New(io.Discard))
	var sent []gomidi.Message
	m.SetOutput(func(msg gomidi.Message) error {
		sent = append(sent, msg)
		return nil
	})

	require.NoError(t, m.Set(Mute, 0, true, false))
	require.NoError(t, m.Set(Mute, 0, true, false))
	assert.Len(t, sent, 1)

	require.NoError(t, m.Set(Mute, 0, true, true))
	assert.Len(t, sent, 2)

	// the initial cache is off, so clearing is suppressed too
	require.NoError(t, m.Set(Solo, 3, false, false))
	assert.Len(t, sent, 2)
}

func TestMirrorWithoutOutputStillCaches(t *testing.T) {
	layout := DefaultLayout()
	m := NewMirror(&layout, log.New(io.Discard))

	require.NoError(t, m.Set(Arm, 2, true, false))
	assert.Equal(t, On, m.Value(Arm, 2))

	state := m.State()
	state[Arm][2] = Off
	assert.Equal(t, On, m.Value(Arm, 2))
}

func TestMirrorUnknownLED(t *testing.T) {
	layout := DefaultLayout()
	m := NewMirror(&layout, log.New(io.Discard))

	assert.ErrorIs(t, m.Set(Encoder, 0, true, false), ErrUnknownLED)
	assert.ErrorIs(t, m.Set(Solo, -1, true, false), ErrUnknownLED)
	assert.ErrorIs(t, m.Set(BankLeft, 1, true, false), ErrUnknownLED)
	assert.Equal(t, Off, m.Value(Encoder, 0))
}
