package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderLamp renders one surface LED: lit in color, or a dim outline
func RenderLamp(on bool, color [3]uint8, label string) string {
	if !on {
		return lipgloss.NewStyle().Faint(true).Render("□" + label)
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color))).Bold(true)
	return style.Render("■" + label)
}

// RenderLampRow renders lamps with single-space separation
func RenderLampRow(lamps []string) string {
	return strings.Join(lamps, " ")
}

// RenderPan draws a pan position 0..1 as a pointer in a fixed-width track
func RenderPan(pan float64, width int) string {
	if width < 3 {
		width = 3
	}
	pos := int(pan*float64(width-1) + 0.5)
	if pos < 0 {
		pos = 0
	}
	if pos >= width {
		pos = width - 1
	}
	centre := (width - 1) / 2

	var out strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == pos && pos < centre:
			out.WriteRune('◀')
		case i == pos && pos > centre:
			out.WriteRune('▶')
		case i == pos:
			out.WriteRune('◆')
		case i == centre:
			out.WriteRune('┼')
		default:
			out.WriteRune('─')
		}
	}
	return out.String()
}

// RenderMeter renders a level 0..1 as a block bar of the given width
func RenderMeter(level float64, width int) string {
	n := int(level*float64(width) + 0.5)
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}
	return strings.Repeat("▮", n) + strings.Repeat("▯", width-n)
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderLamp(true, color, ""), name, desc)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
