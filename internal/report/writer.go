package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// New creates an empty report.
func New(s Settings) *Report {
	return &Report{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Settings:    s,
		Files:       make(map[string]File),
	}
}

// ComputeStats recalculates aggregate statistics from files. Failed is kept.
func (r *Report) ComputeStats() {
	s := Stats{Failed: r.Stats.Failed}
	s.TotalFiles = len(r.Files)
	for _, f := range r.Files {
		s.TotalInputBytes += f.Source.Size
		s.TotalOutputBytes += f.Result.Size
		s.TotalSlices += len(f.Slices)
		for _, sl := range f.Slices {
			if sl.Padded {
				s.PaddedSlices++
			}
		}
	}
	r.Stats = s
}

// WriteJSON serializes the report to a JSON file with stable ordering.
func WriteJSON(r *Report, path string) error {
	r.ComputeStats()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &r, nil
}
