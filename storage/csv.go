package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// utf8BOM is prepended to every snapshot so spreadsheet tools read the
// Malay column names correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SnapshotWriter writes record-family CSV files into the per-developer
// directory layout the publish phase scans.
type SnapshotWriter struct {
	Root    string
	State   string
	DateTag string // YYYYMMDD
}

func NewSnapshotWriter(root, state, dateTag string) *SnapshotWriter {
	return &SnapshotWriter{Root: root, State: state, DateTag: dateTag}
}

// Dir returns the developer's snapshot directory, creating it if needed.
func (w *SnapshotWriter) Dir(developerKey string) (string, error) {
	dir := filepath.Join(w.Root, "data", "pemaju", developerKey)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	return dir, nil
}

// Path builds the snapshot filename for one record family:
// <KEY>_<STATE>_<FAMILY>_<YYYYMMDD>.csv. The state segment is
// uppercased regardless of how the search option is configured.
func (w *SnapshotWriter) Path(dir, developerKey, family string) string {
	name := fmt.Sprintf("%s_%s_%s_%s.csv", developerKey, strings.ToUpper(w.State), family, w.DateTag)
	return filepath.Join(dir, name)
}

// Write emits one snapshot file: BOM, header row, then data rows. A
// snapshot with zero rows is still written so a run that found nothing
// leaves evidence.
func (w *SnapshotWriter) Write(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
