// Command bankgen scans a folder of WAV loops and writes a bank manifest
// for pikocore.
package main

import (
	"flag"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/schollz/logger"

	"go-pikocore/bank"
)

var (
	flagFolder = flag.String("folder-in", "samples", "folder with WAV loops")
	flagOut    = flag.String("out", "bank.yml", "manifest to write")
	flagBPM    = flag.Int("bpm", bank.DefaultBPM, "bank tempo")
	flagSR     = flag.Int("sr", bank.DefaultSampleRate, "bank sample rate")
	flagLimit  = flag.Int("limit", 100, "limit number of samples")
	flagLevel  = flag.String("level", "info", "log level")
)

func main() {
	flag.Parse()
	log.SetLevel(*flagLevel)

	files, err := findWAVs(*flagFolder)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	log.Infof("found %d files", len(files))
	if len(files) > *flagLimit {
		log.Warnf("keeping the first %d of %d files", *flagLimit, len(files))
		files = files[:*flagLimit]
	}

	outDir, err := filepath.Abs(filepath.Dir(*flagOut))
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}

	m := &bank.Manifest{SampleRate: *flagSR, BPM: *flagBPM}
	for _, f := range files {
		e, ok := entry(f)
		if !ok {
			continue
		}
		if rel, err := filepath.Rel(outDir, f); err == nil {
			e.File = rel
		}
		m.Samples = append(m.Samples, e)
	}
	if len(m.Samples) == 0 {
		log.Error("no usable samples")
		os.Exit(1)
	}
	if err := bank.WriteManifest(*flagOut, m); err != nil {
		log.Error(err)
		os.Exit(1)
	}
	log.Infof("wrote %s with %d samples", *flagOut, len(m.Samples))
}

func findWAVs(folder string) ([]string, error) {
	var files []string
	err := filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(path), ".wav") {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			files = append(files, abs)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// entry decodes f to fill in what its name does not say.
func entry(f string) (bank.Entry, bool) {
	bpm, beats := bank.ParseTags(f)
	e := bank.Entry{File: f, BPM: bpm, Beats: beats}

	r, err := os.Open(f)
	if err != nil {
		log.Error(err)
		return e, false
	}
	defer r.Close()
	data, rate, err := bank.DecodeWAV(r)
	if err != nil {
		log.Errorf("%s: %v", filepath.Base(f), err)
		return e, false
	}
	seconds := float64(len(data)) / float64(rate)

	switch {
	case bpm == 0 && beats == 0:
		log.Warnf("%s: no bpm or beats tag, assuming the bank tempo", filepath.Base(f))
	case bpm == 0:
		e.BPM = math.Round(float64(beats)*60/seconds*10) / 10
		log.Debugf("%s: %d beats in %.2fs, bpm %.1f", filepath.Base(f), beats, seconds, e.BPM)
	}
	log.Tracef("%s: rate %d, %d samples, bpm %.1f, beats %d", filepath.Base(f), rate, len(data), e.BPM, e.Beats)
	return e, true
}
