package services

import (
	"fmt"
	"testing"
	"time"

	"teduh_scraper/scraper"
)

func testResult(codeName string, unitCount int) scraper.ProjectResult {
	res := scraper.ProjectResult{
		Listing: scraper.ListingFields{
			ProjectCodeName:   codeName,
			DeveloperCodeName: "PMJ0001 ASM DEVELOPMENT SDN. BHD.",
			PermitNo:          "12345-1",
			ListedStatus:      "Permit Aktif",
		},
		Info: scraper.InfoFields{
			District:        "Melaka Tengah",
			State:           "Melaka",
			PermitValidDate: "31/12/2026",
		},
		Status: scraper.StatusFields{
			DevelopmentInfo: "Fasa 2B",
			OverallStatus:   "Dalam Pembinaan",
		},
		HouseTypes: []scraper.HouseTypeRow{{HouseType: "RUMAH TERES", UnitCount: "48"}},
	}
	for i := 0; i < unitCount; i++ {
		res.Units = append(res.Units, scraper.UnitRow{UnitNo: fmt.Sprintf("A-%02d", i+1)})
	}
	return res
}

func TestRecordBuilder_SequenceNumbers(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)
	b := NewRecordBuilder("Melaka", now, NewRunCounters())

	m1, _, u1, ok := b.Build(testResult("KOD001 TAMAN SATU", 2))
	if !ok {
		t.Fatal("expected first build to succeed")
	}
	m2, _, u2, ok := b.Build(testResult("KOD002 TAMAN DUA", 3))
	if !ok {
		t.Fatal("expected second build to succeed")
	}

	if m1.SequenceNo != "1" || m2.SequenceNo != "2" {
		t.Fatalf("project sequence should be per run: got %s, %s", m1.SequenceNo, m2.SequenceNo)
	}

	// Unit numbering continues across projects.
	want := []string{"1", "2"}
	for i, u := range u1 {
		if u.SequenceNo != want[i] {
			t.Fatalf("unit %d: expected seq %s, got %s", i, want[i], u.SequenceNo)
		}
	}
	want = []string{"3", "4", "5"}
	for i, u := range u2 {
		if u.SequenceNo != want[i] {
			t.Fatalf("unit %d of second project: expected seq %s, got %s", i, want[i], u.SequenceNo)
		}
	}
}

func TestRecordBuilder_FailedRowContributesNothing(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)
	b := NewRecordBuilder("Melaka", now, NewRunCounters())

	failed := testResult("KOD001 TAMAN SATU", 2)
	failed.Err = fmt.Errorf("open detail: timeout")

	if _, _, _, ok := b.Build(failed); ok {
		t.Fatal("expected failed row to be rejected")
	}

	// Counters untouched: the next project still starts at 1.
	m, _, units, ok := b.Build(testResult("KOD002 TAMAN DUA", 1))
	if !ok {
		t.Fatal("expected build to succeed")
	}
	if m.SequenceNo != "1" {
		t.Fatalf("expected project seq 1 after skipped row, got %s", m.SequenceNo)
	}
	if units[0].SequenceNo != "1" {
		t.Fatalf("expected unit seq 1 after skipped row, got %s", units[0].SequenceNo)
	}
}

func TestRecordBuilder_Fallbacks(t *testing.T) {
	now := time.Now()
	b := NewRecordBuilder("Melaka", now, NewRunCounters())

	res := testResult("KOD001 TAMAN SATU", 0)
	res.Status.OverallStatus = ""
	res.Info.State = ""

	m, _, _, ok := b.Build(res)
	if !ok {
		t.Fatal("expected build to succeed")
	}
	if m.OverallStatus != "Permit Aktif" {
		t.Fatalf("expected listing status fallback, got %q", m.OverallStatus)
	}
	if m.State != "Melaka" {
		t.Fatalf("expected configured state fallback, got %q", m.State)
	}
}

func TestRecordBuilder_Timestamps(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 30, 45, 0, time.UTC)
	b := NewRecordBuilder("Melaka", now, NewRunCounters())

	m, hts, _, _ := b.Build(testResult("KOD001 TAMAN SATU", 0))
	if m.ScrapedDate != "2026-08-25" {
		t.Fatalf("unexpected date: %s", m.ScrapedDate)
	}
	if m.ScrapedTimestamp != "2026-08-25 10:30:45" {
		t.Fatalf("unexpected timestamp: %s", m.ScrapedTimestamp)
	}
	if hts[0].ProjectCode != "KOD001" || hts[0].ProjectName != "TAMAN SATU" {
		t.Fatalf("expected split code/name on house type, got %q / %q", hts[0].ProjectCode, hts[0].ProjectName)
	}
}

func TestSplitCodeName(t *testing.T) {
	tests := []struct {
		in, code, name string
	}{
		{"KOD001 TAMAN SERI MELAKA", "KOD001", "TAMAN SERI MELAKA"},
		{"KOD001   TAMAN  SERI", "KOD001", "TAMAN SERI"},
		{"KOD001", "KOD001", ""},
		{"", "", ""},
		{"  KOD001 TAMAN ", "KOD001", "TAMAN"},
	}
	for _, tt := range tests {
		code, name := SplitCodeName(tt.in)
		if code != tt.code || name != tt.name {
			t.Fatalf("SplitCodeName(%q) = %q, %q; want %q, %q", tt.in, code, name, tt.code, tt.name)
		}
	}
}

func TestDeveloperKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ASM Development (Melaka) Sdn. Bhd.", "ASM DEVELOPMENT (MELAKA) SDN. BHD."},
		{"Syarikat A/B <Holdings>", "SYARIKAT A_B _HOLDINGS_"},
		{"  spaced   out  name ", "SPACED OUT NAME"},
		{"", "UNKNOWN"},
		{"///", "_"},
	}
	for _, tt := range tests {
		if got := DeveloperKey(tt.in); got != tt.want {
			t.Fatalf("DeveloperKey(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeveloperKey_Capped(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "ABCDE"
	}
	got := DeveloperKey(long)
	if len(got) != 80 {
		t.Fatalf("expected 80-char cap, got %d", len(got))
	}
}
