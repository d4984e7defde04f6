// File: internal/reporting/writer.go

// Package reporting persists extraction results as timestamped JSON files.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/inventa-tools/inventa-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const filenameStamp = "20060102_150405"

// Writer emits one result file per run into a target directory.
type Writer struct {
	dir string
	log *zap.Logger

	// now is swappable for deterministic filenames in tests.
	now func() time.Time
}

// NewWriter creates a Writer targeting dir, creating it on first write.
func NewWriter(dir string, logger *zap.Logger) *Writer {
	return &Writer{
		dir: dir,
		log: logger.Named("reporting"),
		now: time.Now,
	}
}

// Write serializes the result set to product_data_<timestamp>.json and
// returns the path of the written file.
func (w *Writer) Write(results schemas.ResultSet) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := fmt.Sprintf("product_data_%s.json", w.now().Format(filenameStamp))
	path := filepath.Join(w.dir, name)

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write results: %w", err)
	}

	w.log.Info("Results written.", zap.String("path", path), zap.Int("records", len(results)))
	return path, nil
}
