package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-midimix/bridge"
	"go-midimix/config"
	"go-midimix/debug"
	"go-midimix/midi"
	"go-midimix/mixer"
	"go-midimix/prefs"
	"go-midimix/surface"
	"go-midimix/theme"
	"go-midimix/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-midimix/config.yaml)")
	prefsPath := flag.String("prefs", "", "preferences file (default ~/.config/go-midimix/prefs.json)")
	debugLog := flag.Bool("debug", false, "write a debug log to ~/.config/go-midimix/debug.log")
	flag.Parse()

	if err := run(*configPath, *prefsPath, *debugLog); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, prefsPath string, debugLog bool) error {
	// Load config
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if debugLog || cfg.Debug {
		if err := debug.Enable(""); err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
		defer debug.Disable()
	}
	logger := debug.Logger("main")

	// Load theme
	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		return fmt.Errorf("palette: %w", err)
	}
	th := theme.New(palette)

	// Preferences
	if prefsPath == "" {
		if prefsPath, err = prefs.DefaultPath(); err != nil {
			return err
		}
	}
	store, err := prefs.Open(prefsPath)
	if err != nil {
		return err
	}

	// Host console
	console, err := mixer.New(cfg.Mixer.Tracks, debug.Logger("mixer"))
	if err != nil {
		return err
	}
	console.SetExclusiveSolo(cfg.Mixer.ExclusiveSolo)

	// Control surface
	s, err := surface.New(console.Bank(), console.Master(), store, debug.Logger("surface"))
	if err != nil {
		return err
	}
	s.SetDoublePressWindow(cfg.Surface.DoublePress())

	// Create MIDI device manager (handles hot-plug)
	var devices bridge.DeviceSource
	ports := cfg.AutoConnectPorts()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if len(ports) > 0 {
		deviceMgr := midi.NewDeviceManager(ports...)
		go deviceMgr.Run(ctx)
		devices = deviceMgr
		defer gomidi.CloseDriver()
	}

	b := bridge.New(s, console, devices, debug.Logger("bridge"))
	go b.Run(ctx)

	logger.Info("started", "tracks", cfg.Mixer.Tracks, "ports", ports, "prefs", prefsPath)

	// Create and run TUI
	m := tui.NewModel(b, console, store, th, debug.Logger("tui"))
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err = p.Run()
	cancel()
	<-b.Done()
	return err
}
