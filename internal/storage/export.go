package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	RunMetadata
	Times     []float64   `json:"times"`
	Positions [][]float64 `json:"positions"`
}

// ExportJSON writes the metadata and trajectory of a run to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	positions, times, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Times:       times,
		Positions:   positions,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
