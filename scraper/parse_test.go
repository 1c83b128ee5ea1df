package scraper

import (
	"os"
	"path/filepath"
	"testing"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

func TestNormalizeSpace(t *testing.T) {
	got := NormalizeSpace("  Dalam \n\t Pembinaan  ")
	if got != "Dalam Pembinaan" {
		t.Fatalf("unexpected normalization: %q", got)
	}
	if NormalizeSpace("   ") != "" {
		t.Fatal("expected empty string for all-whitespace input")
	}
}

func TestExtractAnchored_DevelopmentInfo(t *testing.T) {
	raw := "Status Terkini Projek Maklumat Pembangunan : Fasa 2B, 48 unit rumah teres " +
		"Status Keseluruhan : Dalam Pembinaan Jenis Rumah Bil Tingkat"

	got := ExtractAnchored(raw, "Maklumat Pembangunan", []string{"Status Keseluruhan :"}, "Jenis Rumah")
	if got != "Fasa 2B, 48 unit rumah teres" {
		t.Fatalf("unexpected development info: %q", got)
	}
}

func TestExtractAnchored_OverallStatusCutAtTable(t *testing.T) {
	raw := "Maklumat Pembangunan : Fasa 2B Status Keseluruhan : Dalam Pembinaan Jenis Rumah RUMAH TERES 2 4 3"

	got := ExtractAnchored(raw, "Status Keseluruhan", []string{"Status komponen", "Jenis Rumah"}, "Jenis Rumah")
	if got != "Dalam Pembinaan" {
		t.Fatalf("unexpected overall status: %q", got)
	}
}

func TestExtractAnchored_StopAtEndOfBlock(t *testing.T) {
	raw := "Status Keseluruhan : Siap Sepenuhnya"

	got := ExtractAnchored(raw, "Status Keseluruhan", []string{"Status komponen", "Jenis Rumah"}, "Jenis Rumah")
	if got != "Siap Sepenuhnya" {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestExtractAnchored_WrappedLabel(t *testing.T) {
	raw := "Maklumat\n  Pembangunan  :  Fasa 1 Status Keseluruhan : Siap"

	got := ExtractAnchored(raw, "Maklumat Pembangunan", []string{"Status Keseluruhan :"}, "")
	if got != "Fasa 1" {
		t.Fatalf("expected wrapped label to match, got %q", got)
	}
}

func TestExtractAnchored_MissingLabel(t *testing.T) {
	got := ExtractAnchored("no anchors here", "Maklumat Pembangunan", nil, "")
	if got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
}

func TestCanonicalMapLink_Coordinates(t *testing.T) {
	src := "https://maps.google.com/maps?q=2.1896,102.2501&z=15&output=embed"
	got := CanonicalMapLink(src)
	if got != "https://maps.google.com/maps?q=2.1896,102.2501" {
		t.Fatalf("unexpected link: %q", got)
	}
}

func TestCanonicalMapLink_NoCoordinatePair(t *testing.T) {
	src := "https://www.google.com/maps/embed?pb=!1m18!1m12"
	if got := CanonicalMapLink(src); got != src {
		t.Fatalf("expected raw URL back, got %q", got)
	}

	named := "https://maps.google.com/maps?q=Melaka&output=embed"
	if got := CanonicalMapLink(named); got != named {
		t.Fatalf("expected place-name URL untouched, got %q", got)
	}
}

func TestCanonicalMapLink_Empty(t *testing.T) {
	if got := CanonicalMapLink("   "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestParseStatusTable(t *testing.T) {
	rows, err := ParseStatusTable(loadFixture(t, "status_table.html"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(rows))
	}

	first := rows[0]
	if first.HouseType != "RUMAH TERES 2 TINGKAT" {
		t.Fatalf("unexpected house type: %q", first.HouseType)
	}
	if first.UnitCount != "48" {
		t.Fatalf("unexpected unit count: %q", first.UnitCount)
	}
	if first.PriceMin != "RM 450,000.00" {
		t.Fatalf("unexpected min price: %q", first.PriceMin)
	}
	if first.ComponentStatus != "Dalam Pembinaan" {
		t.Fatalf("expected whitespace-normalized status, got %q", first.ComponentStatus)
	}

	second := rows[1]
	if second.DateCCCCFO != "12/03/2024" || second.DateVP != "20/04/2024" {
		t.Fatalf("unexpected dates: %q / %q", second.DateCCCCFO, second.DateVP)
	}
}

func TestParseUnitTable(t *testing.T) {
	rows, err := ParseUnitTable(loadFixture(t, "unit_table.html"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(rows))
	}

	first := rows[0]
	if first.LotNo != "PT 1201" {
		t.Fatalf("unexpected lot: %q", first.LotNo)
	}
	if first.UnitNo != "A-01-01" {
		t.Fatalf("unexpected unit: %q", first.UnitNo)
	}
	if first.SaleStatus != "Telah Dijual" {
		t.Fatalf("unexpected status: %q", first.SaleStatus)
	}
	if first.BumiQuota != "Ya" {
		t.Fatalf("unexpected quota: %q", first.BumiQuota)
	}

	second := rows[1]
	if second.SaleStatus != "Belum Dijual" {
		t.Fatalf("expected normalized wrapped status, got %q", second.SaleStatus)
	}
	if second.SPJBPrice != "-" {
		t.Fatalf("unexpected SPJB price: %q", second.SPJBPrice)
	}
}

func TestParseUnitTable_Empty(t *testing.T) {
	rows, err := ParseUnitTable("")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
