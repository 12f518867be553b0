package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Strip lamps
	LampOn  rune // ■ LED lit
	LampOff rune // □ LED dark

	// Mode line
	ShiftDown rune // ⇧ shift held
	ShiftUp   rune // · shift released

	// Pan pointer
	PanLeft   rune // ◀ left of centre
	PanCentre rune // ◆ centre
	PanRight  rune // ▶ right of centre
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Plasma
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			LampOn:  '■',
			LampOff: '□',

			ShiftDown: '⇧',
			ShiftUp:   '·',

			PanLeft:   '◀',
			PanCentre: '◆',
			PanRight:  '▶',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleArm     = 0.6 // rose
	RoleMute    = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSolo    = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// Lamp returns the RGB for a lit lamp of the given role
func (t *Theme) Lamp(role float64) RGB {
	return t.Palette.Lookup(role)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// Gradient returns the two hex colors for a progress bar
func (t *Theme) Gradient() (string, string) {
	return t.Palette.Lookup(RoleMuted).Hex(), t.Palette.Lookup(RoleSolo).Hex()
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
