package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-pikocore/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	arg := func(i int, def string) string {
		if len(os.Args) > i {
			return os.Args[i]
		}
		return def
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitor(arg(2, ""))
	case "clock":
		mult, _ := strconv.Atoi(arg(3, "2"))
		watchClock(arg(2, ""), mult)
	case "send":
		bpm, _ := strconv.Atoi(arg(3, "120"))
		sendClock(arg(2, ""), bpm)
	case "pads":
		chasePads()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                - List all MIDI ports")
	fmt.Println("  monitor <in>        - Print decoded events from an input")
	fmt.Println("  clock <in> [mult]   - Show syncs and tempo from MIDI clock")
	fmt.Println("  send <out> [bpm]    - Send start and MIDI clock to an output")
	fmt.Println("  pads                - Run a chase on a Launchpad's bottom row")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s%s\n", i, p.String(), padMark(p.String()))
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s%s\n", i, p.String(), padMark(p.String()))
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! The MIDI service is hung.")
	}
}

func padMark(name string) string {
	if midi.IsLaunchpad(name) {
		return "  (pads)"
	}
	return ""
}

func findIn(name string) drivers.In {
	name = strings.ToLower(name)
	for _, p := range gomidi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), name) {
			return p
		}
	}
	return nil
}

func openInput(name string) *midi.Input {
	port := findIn(name)
	if port == nil {
		fmt.Printf("No input matching %q\n", name)
		return nil
	}
	in, err := midi.NewInput(port.String(), port)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil
	}
	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", port.String())
	return in
}

func interrupted() <-chan os.Signal {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	return sig
}

func monitor(name string) {
	in := openInput(name)
	if in == nil {
		return
	}
	defer in.Close()

	sig := interrupted()
	clocks := 0
	for {
		select {
		case <-sig:
			return
		case ev := <-in.Events():
			if ev.Type == midi.Clock {
				clocks++
				if clocks%midi.PPQN == 0 {
					fmt.Printf("[%s] clock x%d\n", ev.Time.Format("15:04:05.000"), clocks)
				}
				continue
			}
			fmt.Printf("[%s] %-8s ch=%d note=%d vel=%d\n",
				ev.Time.Format("15:04:05.000"), ev.Type, ev.Channel, ev.Note, ev.Velocity)
		}
	}
}

func watchClock(name string, mult int) {
	in := openInput(name)
	if in == nil {
		return
	}
	defer in.Close()

	ct := midi.NewClockTracker(mult, 8)
	sig := interrupted()
	beats := 0
	for {
		select {
		case <-sig:
			return
		case ev := <-in.Events():
			switch ev.Type {
			case midi.Start, midi.Continue, midi.Stop:
				ct.Start()
				fmt.Printf("%s\n", ev.Type)
			case midi.Clock:
				r := ct.Tick(ev.Time)
				if r.HardReset {
					beats = 0
					fmt.Println("hard reset")
				} else if r.SoftSync {
					beats++
					fmt.Printf("  beat %d\n", beats)
				}
				if r.BPMReady {
					fmt.Printf("bpm %d\n", r.BPM)
				}
			}
		}
	}
}

func sendClock(name string, bpm int) {
	out := midi.FindOut(name)
	if out == nil {
		fmt.Printf("No output matching %q\n", name)
		return
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}
	bpm = max(20, min(bpm, 300))
	fmt.Printf("Sending clock at %d bpm to %s. Ctrl+C to stop.\n", bpm, out.String())

	ticker := time.NewTicker(time.Minute / time.Duration(bpm*midi.PPQN))
	defer ticker.Stop()
	sig := interrupted()

	send(gomidi.Start())
	for {
		select {
		case <-sig:
			send(gomidi.Stop())
			return
		case <-ticker.C:
			send(gomidi.TimingClock())
		}
	}
}

func chasePads() {
	var inPort drivers.In
	for _, p := range gomidi.GetInPorts() {
		if midi.IsLaunchpad(p.String()) {
			inPort = p
			break
		}
	}
	if inPort == nil {
		fmt.Println("No Launchpad found")
		return
	}
	var outPort drivers.Out
	for _, p := range gomidi.GetOutPorts() {
		if midi.IsLaunchpad(p.String()) {
			outPort = p
			break
		}
	}
	pads, err := midi.NewPads(inPort.String(), inPort, outPort)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer pads.Close()

	fmt.Println("Chasing the bottom row. Press pads to see events, Ctrl+C to exit.")
	sig := interrupted()
	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()
	step := 0
	for {
		select {
		case <-sig:
			return
		case ev := <-pads.Events():
			fmt.Printf("pad %d %s\n", ev.Note, ev.Type)
		case <-ticker.C:
			var levels [midi.NumPads]uint8
			levels[step%midi.NumPads] = 255
			levels[(step+midi.NumPads-1)%midi.NumPads] = 60
			pads.Show(levels, [3]uint8{255, 40, 0}, [3]uint8{0, 80, 0})
			step++
		}
	}
}
