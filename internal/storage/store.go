// Package storage keeps completed runs on disk, one directory per run
// holding metadata.json and a headerless series.csv.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/san-kum/readysim/internal/export"
	"github.com/san-kum/readysim/internal/sim"
)

var ErrRunNotFound = errors.New("run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Overrides map[string]float64 `json:"overrides,omitempty"`
	Steps     int                `json:"solver_steps"`
	Summary   sim.Summary        `json:"summary"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	export.Meta
}

// Save writes the run under a fresh identifier and returns its metadata.
func (s *Store) Save(meta export.Meta, overrides map[string]float64, out *sim.Readout) (*RunMetadata, error) {
	run := &RunMetadata{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Overrides: overrides,
		Steps:     out.Steps,
		Summary:   out.Summary,
		Metrics:   out.Metrics,
		Meta:      meta,
	}

	runDir := filepath.Join(s.baseDir, run.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}
	if err := writeRun(runDir, run, out); err != nil {
		os.RemoveAll(runDir)
		return nil, err
	}

	log.Debug().Str("id", run.ID).Int("samples", out.Len()).Msg("run saved")
	return run, nil
}

// writeRun fills runDir. A failure leaves a partial directory for the
// caller to remove.
func writeRun(runDir string, run *RunMetadata, out *sim.Readout) error {
	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := metaFile.Close(); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	if err := export.WriteSeries(csvFile, out); err != nil {
		return fmt.Errorf("write series: %w", err)
	}
	return csvFile.Close()
}

// List returns stored runs, oldest first. Unreadable entries are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			log.Debug().Err(err).Str("dir", entry.Name()).Msg("skipping run")
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSeries(runID string) (*export.Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	return export.ReadSeries(file)
}
