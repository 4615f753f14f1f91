// Package report persists and renders evolution reports.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"evoloop/domain/evolution"
	"evoloop/internal/errors"
)

// JSONStore writes reports as indented JSON files whose names embed the save
// time: evolution_history_YYYYMMDD_HHMMSS.json.
type JSONStore struct {
	dir string
	now func() time.Time
}

// NewJSONStore creates a store rooted at dir. The directory is created on
// first save.
func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{dir: dir, now: time.Now}
}

// Save persists the report and returns the file path.
func (s *JSONStore) Save(_ context.Context, rep evolution.Report) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.ReportIO("failed to create report directory", err)
	}

	name := fmt.Sprintf("evolution_history_%s.json", s.now().Format("20060102_150405"))
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", errors.ReportIO("failed to encode report", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.ReportIO("failed to write report file", err)
	}
	return path, nil
}

// Load reads a previously saved report back.
func Load(path string) (*evolution.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ReportIO("failed to read report file", err)
	}
	var rep evolution.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, errors.ReportIO("failed to decode report file", err)
	}
	return &rep, nil
}
