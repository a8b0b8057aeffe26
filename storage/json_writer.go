package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lease-scraper/models"
	"lease-scraper/utils"
)

// JSONWriter serializes the accepted batch to an indented UTF-8 JSON array.
// Each run writes a freshly named file, so earlier runs are never
// overwritten. An empty batch still produces a valid empty-array document.
type JSONWriter struct {
	path   string
	logger *utils.Logger
}

// NewJSONWriter prepares a writer targeting a timestamped file in dir.
// Intermediate directories are created automatically.
func NewJSONWriter(dir string, logger *utils.Logger) (*JSONWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("json: create output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("lease_offers_%s.json", time.Now().Format("20060102150405")))
	return &JSONWriter{path: path, logger: logger}, nil
}

// Write serializes the batch to the target file in one shot.
func (w *JSONWriter) Write(offers []*models.LeaseOffer) error {
	if offers == nil {
		offers = []*models.LeaseOffer{}
	}

	data, err := json.MarshalIndent(offers, "", "    ")
	if err != nil {
		return fmt.Errorf("json: marshal offers: %w", err)
	}
	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return fmt.Errorf("json: write %q: %w", w.path, err)
	}

	w.logger.Info("[storage] Saved %d valid lease offers to %s", len(offers), w.path)
	return nil
}

// Path returns the output file path for this run.
func (w *JSONWriter) Path() string {
	return w.path
}
