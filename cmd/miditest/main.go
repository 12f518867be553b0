package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-midimix/config"
	mmidi "go-midimix/midi"
	"go-midimix/surface"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	name := config.DefaultPortName
	if len(os.Args) > 2 {
		name = strings.Join(os.Args[2:], " ")
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "detect":
		detect(name)
	case "leds":
		testLEDs(name)
	case "monitor":
		monitor(name)
	case "poll":
		pollDevices(name)
	default:
		usage()
	}
	midi.CloseDriver()
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Usage: miditest <command> [port name]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list     - List all MIDI ports")
	fmt.Println("  detect   - Find the MIDI Mix")
	fmt.Println("  leds     - Walk every LED")
	fmt.Println("  monitor  - Print classified input")
	fmt.Println("  poll     - Poll for device changes")
}

type ports struct {
	ins  []drivers.In
	outs []drivers.Out
}

// getPorts lists ports, giving up after 3 seconds (CoreMIDI can hang)
func getPorts() (ports, bool) {
	ch := make(chan ports, 1)
	go func() {
		ch <- ports{ins: midi.GetInPorts(), outs: midi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r, true
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return ports{}, false
	}
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	r, ok := getPorts()
	if !ok {
		return
	}
	for i, p := range r.ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range r.outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func find(name string) (drivers.In, drivers.Out) {
	r, ok := getPorts()
	if !ok {
		return nil, nil
	}
	names := []string{name}

	var in drivers.In
	var out drivers.Out
	for i, p := range r.ins {
		if mmidi.MatchPort(p.String(), names) {
			fmt.Printf("Found input: %d: %s\n", i, p.String())
			in = p
			break
		}
	}
	for i, p := range r.outs {
		if mmidi.MatchPort(p.String(), names) {
			fmt.Printf("Found output: %d: %s\n", i, p.String())
			out = p
			break
		}
	}
	return in, out
}

func detect(name string) {
	fmt.Printf("Looking for %q...\n", name)

	in, out := find(name)
	if in != nil && out != nil {
		fmt.Printf("\n%s detected!\n", name)
	} else {
		fmt.Printf("\n%s not found\n", name)
	}
}

func testLEDs(name string) {
	fmt.Println("Testing LED control...")

	_, outPort := find(name)
	if outPort == nil {
		fmt.Printf("No %s output found\n", name)
		return
	}

	send, err := midi.SendTo(outPort)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	layout := surface.DefaultLayout()
	rows := []struct {
		name string
		t    surface.ControlType
		n    int
	}{
		{"mute", surface.Mute, surface.NumChannels},
		{"solo", surface.Solo, surface.NumChannels},
		{"arm", surface.Arm, surface.NumChannels},
		{"bank left", surface.BankLeft, 1},
		{"bank right", surface.BankRight, 1},
	}

	var lit []uint8
	for _, row := range rows {
		fmt.Printf("Lighting %s row...\n", row.name)
		for i := 0; i < row.n; i++ {
			led, err := layout.LEDs.ID(row.t, i)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			if err := send(midi.NoteOn(0, led, surface.On)); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			lit = append(lit, led)
			time.Sleep(100 * time.Millisecond)
		}
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()

	// Clear all
	for _, led := range lit {
		send(midi.NoteOn(0, led, surface.Off))
	}

	fmt.Println("Done!")
}

func monitor(name string) {
	inPort, _ := find(name)
	if inPort == nil {
		fmt.Printf("No %s input found\n", name)
		return
	}

	stop, err := midi.ListenTo(inPort, func(msg midi.Message, timestampms int32) {
		fmt.Printf("[%8dms] % X  %s\n", timestampms, msg.Bytes(), surface.ClassifyMIDI(msg))
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer stop()

	fmt.Println("Move a control. Press Enter to stop.")
	fmt.Scanln()
}

func pollDevices(name string) {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Printf("Connect/disconnect %s to test. Ctrl+C to exit.\n", name)

	lastIn := ""
	lastOut := ""
	names := []string{name}

	for {
		r, ok := getPorts()
		if !ok {
			time.Sleep(2 * time.Second)
			continue
		}

		// Build current state
		var inNames, outNames []string
		for _, p := range r.ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range r.outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			for _, n := range inNames {
				if mmidi.MatchPort(n, names) {
					fmt.Printf("  -> %s detected!\n", n)
				}
			}

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
