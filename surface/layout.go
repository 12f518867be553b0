package surface

import (
	"fmt"
)

// NumChannels is the number of strips on the surface
const NumChannels = 8

// NumSends is the number of send knobs per strip
const NumSends = 2

// Button note numbers, right panel
const (
	NoteBankLeft  uint8 = 0x19 // 25
	NoteBankRight uint8 = 0x1A // 26
	NoteShift     uint8 = 0x1B // 27
)

// LED values
const (
	Off uint8 = 0
	On  uint8 = 127
)

// ControlType identifies a logical control group
type ControlType int

const (
	Encoder ControlType = iota
	Mute
	Arm
	Solo
	ChannelVolume
	MainVolume
	BankLeft
	BankRight
)

func (t ControlType) String() string {
	switch t {
	case Encoder:
		return "encoder"
	case Mute:
		return "mute"
	case Arm:
		return "arm"
	case Solo:
		return "solo"
	case ChannelVolume:
		return "chanVolume"
	case MainVolume:
		return "mainVolume"
	case BankLeft:
		return "bankLeft"
	case BankRight:
		return "bankRight"
	default:
		return fmt.Sprintf("control(%d)", int(t))
	}
}

// Range is an inclusive span of controller numbers
type Range struct {
	Low, High uint8
}

func (r Range) Contains(n uint8) bool {
	return n >= r.Low && n <= r.High
}

// Index returns the channel-space offset of n
func (r Range) Index(n uint8) int {
	return int(n) - int(r.Low)
}

func (r Range) overlaps(o Range) bool {
	return r.Low <= o.High && o.Low <= r.High
}

// Ranges is the control range table. MainVolume is a single number.
type Ranges struct {
	Encoder       Range
	Mute          Range
	Arm           Range
	Solo          Range
	ChannelVolume Range
	MainVolume    uint8
}

// LEDMap says which physical LED id lights index i of each row
type LEDMap struct {
	Mute      [NumChannels]uint8
	Solo      [NumChannels]uint8
	Arm       [NumChannels]uint8
	BankLeft  uint8
	BankRight uint8
}

// ID returns the LED id for (t, index)
func (m LEDMap) ID(t ControlType, index int) (uint8, error) {
	var row []uint8
	switch t {
	case Mute:
		row = m.Mute[:]
	case Solo:
		row = m.Solo[:]
	case Arm:
		row = m.Arm[:]
	case BankLeft:
		row = []uint8{m.BankLeft}
	case BankRight:
		row = []uint8{m.BankRight}
	default:
		return 0, fmt.Errorf("%w: %s has no LED", ErrUnknownLED, t)
	}
	if index < 0 || index >= len(row) {
		return 0, fmt.Errorf("%w: %s index %d", ErrUnknownLED, t, index)
	}
	return row[index], nil
}

// Layout is the runtime-swappable routing state: the range table and the LED
// index table. Mute and Solo are only ever exchanged together, in both
// tables at once, through SwapMuteSolo.
type Layout struct {
	Ranges Ranges
	LEDs   LEDMap
}

// DefaultLayout matches the MIDI Mix factory mapping
func DefaultLayout() Layout {
	return Layout{
		Ranges: Ranges{
			Encoder:       Range{30, 53},
			Mute:          Range{12, 19},
			Arm:           Range{2, 9},
			Solo:          Range{20, 27},
			ChannelVolume: Range{92, 99},
			MainVolume:    54,
		},
		LEDs: LEDMap{
			Mute:      [NumChannels]uint8{0x01, 0x04, 0x07, 0x0A, 0x0D, 0x10, 0x13, 0x16},
			Solo:      [NumChannels]uint8{0x02, 0x05, 0x08, 0x0B, 0x0E, 0x11, 0x14, 0x17},
			Arm:       [NumChannels]uint8{0x03, 0x06, 0x09, 0x0C, 0x0F, 0x12, 0x15, 0x18},
			BankLeft:  NoteBankLeft,
			BankRight: NoteBankRight,
		},
	}
}

// SwapMuteSolo exchanges the Mute and Solo ranges and LED rows. It is its
// own inverse.
func (l *Layout) SwapMuteSolo() {
	l.Ranges.Mute, l.Ranges.Solo = l.Ranges.Solo, l.Ranges.Mute
	l.LEDs.Mute, l.LEDs.Solo = l.LEDs.Solo, l.LEDs.Mute
}

// Validate reports overlapping ranges
func (l *Layout) Validate() error {
	r := l.Ranges
	named := []struct {
		name string
		r    Range
	}{
		{"encoder", r.Encoder},
		{"mute", r.Mute},
		{"arm", r.Arm},
		{"solo", r.Solo},
		{"chanVolume", r.ChannelVolume},
		{"mainVolume", Range{r.MainVolume, r.MainVolume}},
	}
	for i := range named {
		if named[i].r.Low > named[i].r.High {
			return fmt.Errorf("layout: %s range %d-%d is inverted", named[i].name, named[i].r.Low, named[i].r.High)
		}
		for j := i + 1; j < len(named); j++ {
			if named[i].r.overlaps(named[j].r) {
				return fmt.Errorf("layout: %s and %s ranges overlap", named[i].name, named[j].name)
			}
		}
	}
	return nil
}

// KnobFunc is what an encoder drives
type KnobFunc int

const (
	KnobSend KnobFunc = iota
	KnobPan
)

// Knob is one entry of the encoder table
type Knob struct {
	Func    KnobFunc
	Send    int // 0 = send A, 1 = send B; unused for pan
	Channel int
}

// Knobs maps encoder numbers to their function. It never changes after
// construction.
type Knobs map[uint8]Knob

// DefaultKnobs lays out the three encoder rows starting at first:
// send A for channels 0-7, then send B, then pan.
func DefaultKnobs(first uint8) Knobs {
	k := make(Knobs, 3*NumChannels)
	for ch := 0; ch < NumChannels; ch++ {
		k[first+uint8(ch)] = Knob{Func: KnobSend, Send: 0, Channel: ch}
		k[first+uint8(NumChannels+ch)] = Knob{Func: KnobSend, Send: 1, Channel: ch}
		k[first+uint8(2*NumChannels+ch)] = Knob{Func: KnobPan, Channel: ch}
	}
	return k
}
