package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"go-midimix/bridge"
	"go-midimix/mixer"
	"go-midimix/prefs"
	"go-midimix/surface"
	"go-midimix/theme"
	"go-midimix/widgets"
)

const stripWidth = 12

var keyHelp = []widgets.KeySection{
	{Title: "Bank", Keys: []widgets.KeyBinding{
		{Key: "←/h →/l", Desc: "scroll one track"},
		{Key: "pgup pgdn", Desc: "scroll one page"},
	}},
	{Title: "Host", Keys: []widgets.KeyBinding{
		{Key: "1-8", Desc: "toggle mute on strip"},
		{Key: "s", Desc: "swap mute/solo rows"},
		{Key: "e", Desc: "cycle exclusive solo"},
		{Key: "r", Desc: "resync LEDs"},
		{Key: "?", Desc: "toggle help"},
		{Key: "q", Desc: "quit"},
	}},
}

type Model struct {
	Bridge  *bridge.Bridge
	Console *mixer.Console
	Prefs   *prefs.Store
	Theme   *theme.Theme

	volume   progress.Model
	quitting bool
	showHelp bool
	snap     bridge.Snapshot
	log      *log.Logger
}

type UpdateMsg struct{}

func NewModel(b *bridge.Bridge, c *mixer.Console, p *prefs.Store, th *theme.Theme, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	from, to := th.Gradient()
	return Model{
		Bridge:  b,
		Console: c,
		Prefs:   p,
		Theme:   th,
		volume: progress.New(
			progress.WithGradient(from, to),
			progress.WithWidth(stripWidth-2),
			progress.WithoutPercentage(),
		),
		snap: b.Snapshot(),
		log:  logger,
	}
}

func ListenForUpdates(b *bridge.Bridge) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.UpdateChan:
		case <-b.Done():
		}
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Bridge)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "left", "h":
			m.do("scroll", m.Console.Bank().ScrollBackwards)
		case "right", "l":
			m.do("scroll", m.Console.Bank().ScrollForwards)
		case "pgup":
			m.do("scroll", m.Console.Bank().ScrollPageBackwards)
		case "pgdown":
			m.do("scroll", m.Console.Bank().ScrollPageForwards)

		case "s":
			m.do("swap", func() error {
				return m.Prefs.SetSwapMuteSolo(!m.Prefs.SwapMuteSolo())
			})

		case "e":
			m.do("exclusive", func() error {
				return m.Prefs.SetExclusiveSolo(m.Prefs.ExclusiveSolo().Next())
			})

		case "r":
			m.Bridge.Resync()

		case "?":
			m.showHelp = !m.showHelp

		case "1", "2", "3", "4", "5", "6", "7", "8":
			idx := int(msg.String()[0] - '1')
			m.do("mute", func() error {
				return m.Console.ToggleMute(m.Console.Bank().Position() + idx)
			})
		}

	case UpdateMsg:
		m.snap = m.Bridge.Snapshot()
		return m, ListenForUpdates(m.Bridge)
	}

	return m, nil
}

// do runs a host action on the bridge goroutine and logs its failure
func (m Model) do(what string, fn func() error) {
	logger := m.log
	m.Bridge.Do(func() {
		if err := fn(); err != nil {
			logger.Error("ui action failed", "action", what, "err", err)
		}
	})
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.snap

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	device := warnStyle.Render("no device")
	if snap.Device != "" {
		device = snap.Device
	}

	visible := snap.Console.Visible()
	bank := "no tracks"
	if len(visible) > 0 {
		bank = fmt.Sprintf("tracks %d-%d of %d", snap.Console.Position+1, snap.Console.Position+len(visible), len(snap.Console.Tracks))
	}

	header := headerStyle.Render(fmt.Sprintf("go-midimix  %s  %s", device, bank))

	// Strips
	strips := make([]string, 0, surface.NumChannels)
	for i := 0; i < surface.NumChannels; i++ {
		var t *mixer.Track
		if i < len(visible) {
			t = &visible[i]
		}
		strips = append(strips, m.renderStrip(i, t))
	}
	stripView := lipgloss.JoinHorizontal(lipgloss.Top, strips...)

	master := fmt.Sprintf("master %s", m.volume.ViewAs(snap.Console.Master))

	// Mode line
	shift := m.Theme.Symbols.ShiftUp
	if snap.Mode.ShiftPressed {
		shift = m.Theme.Symbols.ShiftDown
	}
	swap := "off"
	if snap.Mode.PersistentSolo {
		swap = "on"
	}
	mode := fmt.Sprintf("shift %c  swap %s  exclusive %s  events %d  last %s",
		shift, swap, snap.Mode.Exclusive, snap.Handled, snap.LastEvent)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(stripView)
	out.WriteString("\n\n")
	out.WriteString(master)
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(mode))
	out.WriteString("\n\n")
	if m.showHelp {
		out.WriteString(widgets.RenderKeyHelp(keyHelp))
	} else {
		out.WriteString(dimStyle.Render("←/→ scroll  1-8 mute  s swap  e exclusive  r resync  ? help  q quit"))
	}

	return out.String()
}

// renderStrip draws one bank slot. Lamps come from the LED cache, so they
// show what the hardware shows.
func (m Model) renderStrip(i int, t *mixer.Track) string {
	col := lipgloss.NewStyle().Width(stripWidth)
	if t == nil {
		return col.Render(lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("%d ---", i+1)))
	}

	lamp := func(ct surface.ControlType, role float64, label string) string {
		on := false
		if row := m.snap.LEDs[ct]; i < len(row) {
			on = row[i] == surface.On
		}
		return widgets.RenderLamp(on, m.Theme.Lamp(role), label)
	}

	name := t.Name
	if len(name) > stripWidth-1 {
		name = name[:stripWidth-1]
	}

	lines := []string{
		name,
		m.volume.ViewAs(t.Volume),
		widgets.RenderPan(t.Pan, stripWidth-3),
		"A " + widgets.RenderMeter(t.Sends[0], stripWidth-4),
		"B " + widgets.RenderMeter(t.Sends[1], stripWidth-4),
		widgets.RenderLampRow([]string{
			lamp(surface.Mute, theme.RoleMute, "M"),
			lamp(surface.Solo, theme.RoleSolo, "S"),
			lamp(surface.Arm, theme.RoleArm, "R"),
		}),
	}
	return col.Render(strings.Join(lines, "\n"))
}
