package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-midimix/bridge"
	"go-midimix/mixer"
	"go-midimix/prefs"
	"go-midimix/surface"
	"go-midimix/theme"
)

func newTestModel(t *testing.T, tracks int) (Model, *bridge.Bridge) {
	t.Helper()
	console, err := mixer.New(tracks, nil)
	require.NoError(t, err)
	store := prefs.NewMemory(prefs.Settings{})
	s, err := surface.New(console.Bank(), console.Master(), store, nil)
	require.NoError(t, err)
	b := bridge.New(s, console, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-b.Done()
	})
	return NewModel(b, console, store, theme.New(nil), nil), b
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeysDriveTheBridge(t *testing.T) {
	m, b := newTestModel(t, mixer.DefaultTracks)

	m.Update(key("s"))
	m.Update(key("e"))
	m.Update(key("3"))
	m.Update(tea.KeyMsg{Type: tea.KeyRight})

	require.Eventually(t, func() bool {
		snap := b.Snapshot()
		return snap.Mode.PersistentSolo &&
			snap.Mode.Exclusive == prefs.ExclusiveOn &&
			snap.Console.Tracks[2].Mute &&
			snap.Console.Position == 1
	}, time.Second, 5*time.Millisecond)
}

func TestMuteKeyFollowsBank(t *testing.T) {
	m, b := newTestModel(t, mixer.DefaultTracks)

	m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	m.Update(key("1"))

	require.Eventually(t, func() bool {
		return b.Snapshot().Console.Tracks[8].Mute
	}, time.Second, 5*time.Millisecond)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, 2)

	next, cmd := m.Update(key("q"))

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.View())
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t, 3)

	view := m.View()
	assert.Contains(t, view, "no device")
	assert.Contains(t, view, "tracks 1-3 of 3")
	assert.Contains(t, view, "Track 3")
	assert.Contains(t, view, "4 ---")
	assert.Contains(t, view, "exclusive User")

	next, _ := m.Update(key("?"))
	assert.Contains(t, next.View(), "toggle mute on strip")
}

func TestUpdateMsgRefreshesSnapshot(t *testing.T) {
	m, b := newTestModel(t, 4)

	b.Do(func() { _ = m.Console.ToggleArm(1) })
	require.Eventually(t, func() bool {
		return b.Snapshot().Console.Tracks[1].Arm
	}, time.Second, 5*time.Millisecond)
	assert.False(t, m.snap.Console.Tracks[1].Arm)

	next, cmd := m.Update(UpdateMsg{})
	assert.NotNil(t, cmd)
	assert.True(t, next.(Model).snap.Console.Tracks[1].Arm)
}
