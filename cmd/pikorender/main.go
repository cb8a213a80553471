// Command pikorender renders the engine offline to a WAV file, with the
// knob settings given as flags.
package main

import (
	"bufio"
	"flag"
	"os"

	log "github.com/schollz/logger"

	"go-pikocore/bank"
	"go-pikocore/engine"
	"go-pikocore/sequencer"
)

var (
	flagManifest  = flag.String("bank", "", "bank manifest, empty for the built-in loops")
	flagOut       = flag.String("out", "render.wav", "output WAV")
	flagSeconds   = flag.Float64("seconds", 16, "length to render")
	flagSeed      = flag.Uint64("seed", 1, "random seed")
	flagBPM       = flag.Int("bpm", 0, "playback tempo, 0 for the bank tempo")
	flagSample    = flag.Int("sample", 0, "sample index")
	flagJump      = flag.Int("jump", 0, "jump probability 0-255")
	flagRetrig    = flag.Int("retrig", 0, "retrigger probability 0-255")
	flagDirection = flag.Int("direction", 0, "reverse probability 0-255")
	flagGate      = flag.Int("gate", 0, "gate probability 0-255")
	flagTunnel    = flag.Int("tunnel", 0, "tunnel probability 0-255")
	flagFilter    = flag.Int("filter", engine.FilterOff, "filter cutoff index")
	flagDist      = flag.Int("distortion", 0, "distortion 0-30")
	flagLevel     = flag.String("level", "info", "log level")
)

func main() {
	flag.Parse()
	log.SetLevel(*flagLevel)

	var b bank.Bank = bank.Synthetic(bank.DefaultSampleRate, bank.DefaultBPM)
	if *flagManifest != "" {
		m, err := bank.LoadManifest(*flagManifest)
		if err != nil {
			log.Error(err)
			os.Exit(1)
		}
		b = m
	}
	log.Debugf("bank: %d samples at %d Hz, %d bpm", b.NumSamples(), b.SampleRate(), b.BPM())

	c := engine.NewControls(b.SampleRate(), b.BPM())
	if *flagBPM > 0 && !c.SetBpm(*flagBPM) {
		log.Warnf("tempo %d not supported, using %d", *flagBPM, c.Bpm())
	}
	c.SetSample(min(*flagSample, b.NumSamples()-1))
	c.SetFilter(*flagFilter)
	c.SetDistortion(*flagDist)
	for p, v := range map[engine.Prob]int{
		engine.ProbJump:      *flagJump,
		engine.ProbRetrig:    *flagRetrig,
		engine.ProbDirection: *flagDirection,
		engine.ProbGate:      *flagGate,
		engine.ProbTunnel:    *flagTunnel,
	} {
		c.SetProbability(p, v)
	}

	e := engine.NewEngine(b, c, sequencer.NewTrack(), *flagSeed)
	buf := make([]byte, int(*flagSeconds*float64(b.SampleRate())))
	e.Render(buf)
	tel := e.Telemetry()
	log.Infof("rendered %d samples: %d beats, %d retrigger strikes", len(buf), tel.Onsets, tel.Strikes)

	f, err := os.Create(*flagOut)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	w := bufio.NewWriter(f)
	if err := bank.WriteWAV(w, buf, b.SampleRate()); err != nil {
		log.Error(err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
	log.Infof("wrote %s", *flagOut)
}
