package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lease-scraper/models"
	"lease-scraper/utils"
)

// CSVWriter flattens the accepted batch to a delimited-text file, one row
// per offer. List-valued fields are joined with "; "; the header row comes
// from the field names of the first record. Like the JSON writer it uses a
// fresh timestamped filename per run, but an empty batch writes nothing at
// all — only a warning is logged.
type CSVWriter struct {
	path   string
	logger *utils.Logger
}

// NewCSVWriter prepares a writer targeting a timestamped file in dir.
// Intermediate directories are created automatically; the file itself is
// only created when there is something to write.
func NewCSVWriter(dir string, logger *utils.Logger) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("lease_offers_%s.csv", time.Now().Format("20060102150405")))
	return &CSVWriter{path: path, logger: logger}, nil
}

// Write serializes the batch to the target file in one shot.
func (w *CSVWriter) Write(offers []*models.LeaseOffer) error {
	if len(offers) == 0 {
		w.logger.Warn("[storage] No valid offers to write to CSV")
		return nil
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("csv: create %q: %w", w.path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(offers[0].FieldNames()); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, o := range offers {
		if err := cw.Write(o.Row()); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}

	w.logger.Info("[storage] Saved %d valid lease offers to %s", len(offers), w.path)
	return nil
}

// Path returns the output file path for this run.
func (w *CSVWriter) Path() string {
	return w.path
}
