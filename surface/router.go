package surface

import (
	"fmt"
)

// route dispatches a control change through the current range table.
// Numbers outside every range are ignored.
func (s *Surface) route(number, value uint8) error {
	r := &s.layout.Ranges

	switch {
	case number == r.MainVolume:
		s.log.Debug("main fader", "value", value)
		return s.master.SetVolume(value)

	case r.ChannelVolume.Contains(number):
		return s.channelVolume(r.ChannelVolume.Index(number), value)

	case r.Solo.Contains(number):
		return s.button(Solo, r.Solo.Index(number), value)

	case r.Mute.Contains(number):
		return s.button(Mute, r.Mute.Index(number), value)

	case r.Arm.Contains(number):
		return s.button(Arm, r.Arm.Index(number), value)

	case r.Encoder.Contains(number):
		return s.encoder(number, value)
	}
	return nil
}

func (s *Surface) channelVolume(index int, value uint8) error {
	ch, err := s.bank.Channel(index)
	if err != nil {
		return err
	}
	s.log.Debug("channel fader", "channel", index+1, "value", value)
	return ch.SetVolume(value)
}

// button toggles off the LED cache on press. Releases do nothing.
func (s *Surface) button(t ControlType, index int, value uint8) error {
	if value != On {
		return nil
	}

	ch, err := s.bank.Channel(index)
	if err != nil {
		return err
	}

	on := toggle(s.leds.Value(t, index)) == On
	s.log.Debug("button", "type", t, "channel", index+1, "on", on)

	switch t {
	case Arm:
		return ch.SetArm(on)
	case Mute:
		return ch.SetMute(on)
	case Solo:
		return ch.SetSolo(on, s.mode.soloMode())
	}
	return fmt.Errorf("surface: %s is not a button", t)
}

func (s *Surface) encoder(number, value uint8) error {
	knob, ok := s.knobs[number]
	if !ok {
		return nil
	}

	ch, err := s.bank.Channel(knob.Channel)
	if err != nil {
		return err
	}

	switch knob.Func {
	case KnobSend:
		s.log.Debug("send", "send", knob.Send, "channel", knob.Channel+1, "value", value)
		return ch.SetSend(knob.Send, value)
	case KnobPan:
		s.log.Debug("pan", "channel", knob.Channel+1, "value", value)
		return ch.SetPan(value)
	}
	return nil
}
