package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var multiSpaceRegex = regexp.MustCompile(`\s+`)

// NormalizeSpace collapses all whitespace runs to single spaces.
func NormalizeSpace(s string) string {
	return strings.TrimSpace(multiSpaceRegex.ReplaceAllString(s, " "))
}

// anchorPattern turns label text into a whitespace-tolerant regex
// fragment, so "Status Keseluruhan :" matches however the portal wraps it.
func anchorPattern(text string) string {
	words := strings.Fields(text)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, `\s*`)
}

// ExtractAnchored captures the value after "<label> :" in a free-text
// block, stopping at the first stop label or end of block, then cutting
// anything from the cut token onward. A failed match yields "" — a
// missing field is not an extraction failure.
func ExtractAnchored(raw, label string, stops []string, cut string) string {
	boundary := "$"
	if len(stops) > 0 {
		alts := make([]string, len(stops))
		for i, s := range stops {
			alts[i] = anchorPattern(s)
		}
		boundary = "(?:" + strings.Join(alts, "|") + "|$)"
	}

	re, err := regexp.Compile(`(?is)` + anchorPattern(label) + `\s*:\s*(.+?)` + boundary)
	if err != nil {
		return ""
	}

	m := re.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}

	val := NormalizeSpace(m[1])
	if cut != "" {
		if idx := strings.Index(val, cut); idx >= 0 {
			val = strings.TrimSpace(val[:idx])
		}
	}
	return val
}

// CanonicalMapLink rewrites a Google Maps embed URL into the canonical
// https://maps.google.com/maps?q=<lat>,<lng> form when the q parameter
// holds a coordinate pair, else keeps the raw iframe URL.
func CanonicalMapLink(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}

	parsed, err := url.Parse(src)
	if err != nil {
		return src
	}

	q := strings.TrimSpace(parsed.Query().Get("q"))
	if q != "" && strings.Contains(q, ",") {
		return fmt.Sprintf("https://maps.google.com/maps?q=%s", q)
	}
	return src
}

// ParseStatusTable reads house-type rows out of captured status-table
// HTML. Rows with fewer than 12 cells are header/footer chrome, not data.
func ParseStatusTable(html string) ([]HouseTypeRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table>" + html + "</table>"))
	if err != nil {
		return nil, fmt.Errorf("parse status table: %w", err)
	}

	var rows []HouseTypeRow
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 12 {
			return
		}

		cell := func(i int) string { return NormalizeSpace(tds.Eq(i).Text()) }
		rows = append(rows, HouseTypeRow{
			HouseType:       cell(0),
			Floors:          cell(1),
			Rooms:           cell(2),
			Bathrooms:       cell(3),
			BuiltUpSize:     cell(4),
			UnitCount:       cell(5),
			PriceMin:        cell(6),
			PriceMax:        cell(7),
			PercentActual:   cell(8),
			ComponentStatus: cell(9),
			DateCCCCFO:      cell(10),
			DateVP:          cell(11),
		})
	})

	return rows, nil
}

// ParseUnitTable reads per-unit rows out of captured unit-table HTML.
// Rows with fewer than 7 cells are dropped. The first cell is the
// portal's own row number and is discarded; the run assigns its own.
func ParseUnitTable(html string) ([]UnitRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table>" + html + "</table>"))
	if err != nil {
		return nil, fmt.Errorf("parse unit table: %w", err)
	}

	var rows []UnitRow
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 7 {
			return
		}

		cell := func(i int) string { return NormalizeSpace(tds.Eq(i).Text()) }
		rows = append(rows, UnitRow{
			LotNo:      cell(1),
			UnitNo:     cell(2),
			SalePrice:  cell(3),
			SPJBPrice:  cell(4),
			SaleStatus: cell(5),
			BumiQuota:  cell(6),
		})
	})

	return rows, nil
}
