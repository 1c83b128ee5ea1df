package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSnapshotWriter_PathLayout(t *testing.T) {
	root := t.TempDir()
	w := NewSnapshotWriter(root, "Melaka", "20260825")

	dir, err := w.Dir("ASM DEVELOPMENT")
	if err != nil {
		t.Fatalf("dir failed: %v", err)
	}
	want := filepath.Join(root, "data", "pemaju", "ASM DEVELOPMENT")
	if dir != want {
		t.Fatalf("unexpected dir: %s", dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("dir not created: %v", err)
	}

	// The state segment is uppercased even when the configured search
	// option is mixed case.
	path := w.Path(dir, "ASM DEVELOPMENT", "UNIT_DETAILS")
	if filepath.Base(path) != "ASM DEVELOPMENT_MELAKA_UNIT_DETAILS_20260825.csv" {
		t.Fatalf("unexpected filename: %s", filepath.Base(path))
	}
}

func TestSnapshotWriter_Write(t *testing.T) {
	root := t.TempDir()
	w := NewSnapshotWriter(root, "Melaka", "20260825")

	path := filepath.Join(root, "out.csv")
	headers := []string{"Bil", "No Unit", "Status Jualan"}
	rows := [][]string{
		{"1", "A-01", "Telah Dijual"},
		{"2", "A-02", "Belum, Dijual"},
	}
	if err := w.Write(path, headers, rows); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}

	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("expected UTF-8 BOM prefix")
	}

	lines := strings.Split(strings.TrimSpace(string(data[3:])), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Bil,No Unit,Status Jualan" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[2] != `2,A-02,"Belum, Dijual"` {
		t.Fatalf("expected quoted comma field, got %q", lines[2])
	}
}

func TestSnapshotWriter_EmptySnapshotStillWritten(t *testing.T) {
	root := t.TempDir()
	w := NewSnapshotWriter(root, "Melaka", "20260825")

	path := filepath.Join(root, "empty.csv")
	if err := w.Write(path, []string{"Bil", "No Unit"}, nil); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if strings.TrimSpace(string(data[3:])) != "Bil,No Unit" {
		t.Fatalf("expected header-only snapshot, got %q", string(data))
	}
}
