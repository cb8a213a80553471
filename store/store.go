package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	sectorFile   = "sector.bin"
	historyDir   = "history"
	timestampFmt = "2006-01-02_15-04-05"
)

// ErrNoSave is returned by Load before anything has been saved.
var ErrNoSave = errors.New("store: nothing saved")

// SaveInfo describes a history copy (for listing).
type SaveInfo struct {
	Filename  string
	Timestamp time.Time
}

// Store keeps the configuration page in a sector-sized file and a
// timestamped JSON history next to it.
type Store struct {
	dir  string
	keep int
	mu   sync.Mutex
	now  func() time.Time
}

// New returns a store rooted at dir that keeps at most keep history
// copies (0 keeps none).
func New(dir string, keep int) *Store {
	return &Store{dir: dir, keep: keep, now: time.Now}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads and validates the page at the start of the sector file.
func (s *Store) Load() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, sectorFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, ErrNoSave
		}
		return Snapshot{}, err
	}
	var b Block
	if len(data) < PageSize {
		return Snapshot{}, ErrBadTrailer
	}
	copy(b[:], data)
	return Decode(b)
}

// Save erases the sector, programs the page and records a history copy.
func (s *Store) Save(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	sector := bytes.Repeat([]byte{0xFF}, SectorSize)
	b := snap.Encode()
	copy(sector, b[:])

	path := filepath.Join(s.dir, sectorFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, sector, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("program sector: %w", err)
	}

	if s.keep <= 0 {
		return nil
	}
	return s.writeHistory(snap)
}

func (s *Store) writeHistory(snap Snapshot) error {
	dir := filepath.Join(s.dir, historyDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	name := s.now().Format(timestampFmt) + ".json"
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return err
	}
	return s.prune()
}

// prune removes the oldest history copies beyond keep.
func (s *Store) prune() error {
	saves, err := s.listLocked()
	if err != nil {
		return err
	}
	for _, old := range saves[min(len(saves), s.keep):] {
		if err := os.Remove(filepath.Join(s.dir, historyDir, old.Filename)); err != nil {
			return err
		}
	}
	return nil
}

// ListSnapshots returns the history copies, newest first.
func (s *Store) ListSnapshots() ([]SaveInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *Store) listLocked() ([]SaveInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, historyDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ts, err := time.Parse(timestampFmt, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		saves = append(saves, SaveInfo{Filename: entry.Name(), Timestamp: ts})
	}
	sort.Slice(saves, func(i, j int) bool {
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})
	return saves, nil
}

// LoadSnapshot reads a history copy, or the newest one if filename is
// empty.
func (s *Store) LoadSnapshot(filename string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if filename == "" {
		saves, err := s.listLocked()
		if err != nil {
			return Snapshot{}, err
		}
		if len(saves) == 0 {
			return Snapshot{}, ErrNoSave
		}
		filename = saves[0].Filename
	}
	data, err := os.ReadFile(filepath.Join(s.dir, historyDir, filename))
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	return snap, nil
}
