package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-pikocore/audio"
	"go-pikocore/bank"
	"go-pikocore/config"
	"go-pikocore/control"
	"go-pikocore/debug"
	"go-pikocore/engine"
	"go-pikocore/midi"
	"go-pikocore/sequencer"
	"go-pikocore/store"
	"go-pikocore/theme"
	"go-pikocore/tui"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file (default ~/.config/go-pikocore/config.json)")
		manifest   = flag.String("bank", "", "bank manifest (overrides config)")
		seed       = flag.Uint64("seed", 0, "random seed, 0 for the clock")
		noSound    = flag.Bool("nosound", false, "render without a sound device")
		headless   = flag.Bool("headless", false, "no terminal UI, run until interrupted")
		input      = flag.String("input", "", "MIDI input port name (overrides config)")
		output     = flag.String("output", "", "MIDI output port for beat notes (overrides config)")
		debugLog   = flag.Bool("debug", false, "log to ~/.config/go-pikocore/debug.log")
	)
	flag.Parse()

	if *debugLog {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *manifest != "" {
		cfg.Bank.Manifest = *manifest
	}
	if *input != "" {
		cfg.MIDI.Input = *input
	}
	if *output != "" {
		cfg.MIDI.Output = *output
	}
	if *noSound {
		cfg.Audio.Disabled = true
	}
	if *seed != 0 {
		cfg.UI.Seed = *seed
	}

	if err := run(cfg, *headless); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func loadBank(cfg *config.Config) (bank.Bank, error) {
	if cfg.Bank.Manifest == "" {
		return bank.Synthetic(cfg.Bank.SampleRate, cfg.Bank.BPM), nil
	}
	b, err := bank.LoadManifest(cfg.Bank.Manifest)
	if err != nil {
		return nil, fmt.Errorf("bank: %w", err)
	}
	return b, nil
}

// controlConfig maps the file settings onto the loop settings.
func controlConfig(cfg *config.Config) control.Config {
	cc := control.DefaultConfig()
	l := cfg.Loop
	if l.PeriodUs > 0 {
		cc.Period = time.Duration(l.PeriodUs) * time.Microsecond
	}
	if l.ReadEvery > 0 {
		cc.ReadEvery = l.ReadEvery
	}
	cc.KnobSettle = l.KnobSettle
	cc.SaveDelay = time.Duration(l.SaveDelayMs) * time.Millisecond
	cc.SaveHoldoff = time.Duration(l.SaveHoldoffMs) * time.Millisecond
	if l.TriggerMs > 0 {
		cc.TriggerPulse = time.Duration(l.TriggerMs) * time.Millisecond
	}
	cc.ClockMultiplier = cfg.Clock.Multiplier
	cc.ResetEvery = cfg.Clock.ResetEvery
	return cc
}

func run(cfg *config.Config, headless bool) error {
	b, err := loadBank(cfg)
	if err != nil {
		return err
	}
	seed := cfg.UI.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	c := engine.NewControls(b.SampleRate(), b.BPM())
	track := sequencer.NewTrack()
	eng := engine.NewEngine(b, c, track, seed)
	debug.Log("main", "bank %d samples at %d Hz %d bpm, seed %d", b.NumSamples(), b.SampleRate(), b.BPM(), seed)

	dir, err := cfg.StoreDir()
	if err != nil {
		return err
	}
	st := store.New(dir, cfg.Store.History)
	mgr := control.NewManager(controlConfig(cfg), c, eng, track, b, st)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !cfg.Audio.Disabled {
		p, err := audio.NewPlayer(b.SampleRate(), time.Duration(cfg.Audio.BufferMs)*time.Millisecond, eng)
		if err != nil {
			return fmt.Errorf("audio: %w (try -nosound)", err)
		}
		defer p.Close()
		p.Start()
	} else {
		go audio.RunHeadless(ctx, audio.NewStream(eng), b.SampleRate(), 10*time.Millisecond)
	}

	if cfg.MIDI.Output != "" {
		if out := midi.FindOut(cfg.MIDI.Output); out != nil {
			n, err := midi.NewNoteOut(out, uint8(cfg.MIDI.Channel), cfg.MIDI.Monophonic)
			if err != nil {
				return fmt.Errorf("midi output: %w", err)
			}
			mgr.SetNoteOut(n)
		} else {
			debug.Log("main", "no output port matching %q", cfg.MIDI.Output)
		}
	}

	deviceMgr := midi.NewDeviceManager(cfg.MIDI.Input, cfg.MIDI.Pads)
	go deviceMgr.Run(ctx)

	loopDone := make(chan struct{})
	go func() {
		mgr.Run(ctx)
		close(loopDone)
	}()
	defer func() {
		cancel()
		<-loopDone
	}()

	if headless {
		fmt.Println("pikocore running, ctrl+c to stop")
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-deviceMgr.Events():
				if !ok {
					return nil
				}
				if ev.Type == midi.DeviceConnected {
					mgr.Attach(ev.Device)
				} else {
					mgr.Detach(ev.ID)
				}
			}
		}
	}

	var pal *theme.Palette
	if cfg.UI.Palette != "" {
		if pal, err = theme.LoadGPL(cfg.UI.Palette); err != nil {
			return err
		}
	}
	m := tui.NewModel(mgr, deviceMgr, theme.New(pal))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
