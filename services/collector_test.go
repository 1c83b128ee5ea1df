package services

import (
	"os"
	"path/filepath"
	"testing"

	"teduh_scraper/models"
	"teduh_scraper/storage"
)

func writeSnapshot(t *testing.T, root, developerKey, family, dateTag string, headers []string, rows [][]string) string {
	t.Helper()
	w := storage.NewSnapshotWriter(root, "Melaka", dateTag)
	dir, err := w.Dir(developerKey)
	if err != nil {
		t.Fatalf("snapshot dir: %v", err)
	}
	path := w.Path(dir, developerKey, family)
	if err := w.Write(path, headers, rows); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func TestCollector_Collect(t *testing.T) {
	root := t.TempDir()

	writeSnapshot(t, root, "DEV_A", models.FamilyUnitDetails, "20260825",
		models.UnitDetailHeaders,
		[][]string{
			{"1", "KOD001 TAMAN SATU", "PMJ0001 DEV A", "12345-1", "PT 1", "A-01", "RM 450,000.00", "RM 450,000.00", "Telah Dijual", "Ya", "2026-08-25", "2026-08-25 10:00:00"},
			{"2", "KOD001 TAMAN SATU", "PMJ0001 DEV A", "12345-1", "PT 2", "A-02", "RM 455,000.00", "-", "Belum Dijual", "Tidak", "2026-08-25", "2026-08-25 10:00:00"},
		})

	writeSnapshot(t, root, "DEV_A", models.FamilyProjects, "20260825",
		models.ProjectMasterHeaders,
		[][]string{
			{"1", "KOD001 TAMAN SATU", "PMJ0001 DEV A", "12345-1", "Dalam Pembinaan", "Fasa 2B", "https://maps.google.com/maps?q=2.1,102.2", "Melaka Tengah", "Melaka", "31/12/2026", "2026-08-25", "2026-08-25 10:00:00"},
		})

	writeSnapshot(t, root, "DEV_A", models.FamilyHouseTypes, "20260825",
		models.HouseTypeHeaders,
		[][]string{
			{"KOD001", "TAMAN SATU", "RUMAH TERES", "2", "4", "3", "1,400", "48", "RM 450,000.00", "RM 520,000.00", "85.50", "Dalam Pembinaan", "-", "-", "2026-08-25", "2026-08-25 10:00:00"},
		})

	// A stale snapshot from another day must be ignored.
	writeSnapshot(t, root, "DEV_A", models.FamilyUnitDetails, "20260824",
		models.UnitDetailHeaders,
		[][]string{
			{"1", "KOD999 OLD", "PMJ0001 DEV A", "1-1", "PT 9", "Z-99", "RM 1.00", "-", "Telah Dijual", "Tidak", "2026-08-24", "2026-08-24 10:00:00"},
		})

	c := NewCollector(root)
	got, err := c.Collect("20260825")
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	if got.FilesScanned != 3 {
		t.Fatalf("expected 3 files scanned, got %d", got.FilesScanned)
	}
	if len(got.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(got.Units))
	}
	if len(got.Projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(got.Projects))
	}
	if len(got.HouseTypes) != 1 {
		t.Fatalf("expected 1 house type, got %d", len(got.HouseTypes))
	}

	u := got.Units[0]
	if u.ProjectCode != "KOD001" || u.ProjectName != "TAMAN SATU" {
		t.Fatalf("expected split code/name, got %q / %q", u.ProjectCode, u.ProjectName)
	}
	if u.PemajuName != "PMJ0001 DEV A" {
		t.Fatalf("unexpected pemaju: %q", u.PemajuName)
	}
	if u.PriceSales != "RM 450,000.00" {
		t.Fatalf("unexpected price: %q", u.PriceSales)
	}
	if u.Status != "Telah Dijual" {
		t.Fatalf("unexpected status: %q", u.Status)
	}

	p := got.Projects[0]
	if p.StatusOverall != "Dalam Pembinaan" {
		t.Fatalf("unexpected overall status: %q", p.StatusOverall)
	}
	if p.LocationDistrict != "Melaka Tengah" || p.LocationState != "Melaka" {
		t.Fatalf("unexpected location: %q / %q", p.LocationDistrict, p.LocationState)
	}

	ht := got.HouseTypes[0]
	if ht.ProjectCode != "KOD001" || ht.TotalUnits != "48" {
		t.Fatalf("unexpected house type mapping: %q / %q", ht.ProjectCode, ht.TotalUnits)
	}
}

func TestCollector_BOMHeaderStripped(t *testing.T) {
	root := t.TempDir()

	// The unit snapshot's first header is "Bil"; the BOM the writer
	// prepends must not leak into the header key.
	writeSnapshot(t, root, "DEV_B", models.FamilyUnitDetails, "20260825",
		models.UnitDetailHeaders,
		[][]string{
			{"1", "KOD002 TAMAN DUA", "PMJ0002 DEV B", "2-2", "PT 1", "B-01", "RM 300,000.00", "-", "Belum Dijual", "Tidak", "2026-08-25", "2026-08-25 10:00:00"},
		})

	got, err := NewCollector(root).Collect("20260825")
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(got.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(got.Units))
	}
	if got.Units[0].ProjectCode != "KOD002" {
		t.Fatalf("unexpected code: %q", got.Units[0].ProjectCode)
	}
}

func TestCollector_MissingColumnsDefaultEmpty(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "data", "pemaju", "DEV_C")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	// An older snapshot layout without the permit column.
	content := "Kod Projek & Nama Projek,No Unit,Status Jualan\n" +
		"KOD003 TAMAN TIGA,C-01,Telah Dijual\n"
	path := filepath.Join(dir, "DEV_C_Melaka_UNIT_DETAILS_20260825.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := NewCollector(root).Collect("20260825")
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(got.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(got.Units))
	}
	u := got.Units[0]
	if u.PermitNo != "" || u.PriceSales != "" {
		t.Fatalf("expected missing columns to default empty, got %q / %q", u.PermitNo, u.PriceSales)
	}
	if u.UnitNo != "C-01" {
		t.Fatalf("unexpected unit: %q", u.UnitNo)
	}
}

func TestCollector_MissingTreeYieldsEmptyResult(t *testing.T) {
	got, err := NewCollector(filepath.Join(t.TempDir(), "nope")).Collect("20260825")
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if got.FilesScanned != 0 || len(got.Units) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestReadDeveloperList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pemaju_list.txt")
	content := "# comment\n\nDEV SATU SDN. BHD.\n  DEV DUA SDN. BHD.  \n# trailing comment\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	developers, err := ReadDeveloperList(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(developers) != 2 {
		t.Fatalf("expected 2 developers, got %d", len(developers))
	}
	if developers[0] != "DEV SATU SDN. BHD." || developers[1] != "DEV DUA SDN. BHD." {
		t.Fatalf("unexpected entries: %v", developers)
	}
}
