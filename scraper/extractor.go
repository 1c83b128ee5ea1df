package scraper

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ListingFields are read straight off a listing row's cells before the
// detail view opens.
type ListingFields struct {
	ProjectCodeName   string
	DeveloperCodeName string
	PermitNo          string
	ListedStatus      string
}

// InfoFields come from the detail view's "Maklumat Projek" tab.
type InfoFields struct {
	District        string
	State           string
	PermitValidDate string
	MapLink         string
}

// StatusFields are cut out of the "Status Terkini Projek" free-text
// block via the configured anchors.
type StatusFields struct {
	DevelopmentInfo string
	OverallStatus   string
}

type HouseTypeRow struct {
	HouseType       string
	Floors          string
	Rooms           string
	Bathrooms       string
	BuiltUpSize     string
	UnitCount       string
	PriceMin        string
	PriceMax        string
	PercentActual   string
	ComponentStatus string
	DateCCCCFO      string
	DateVP          string
}

type UnitRow struct {
	LotNo      string
	UnitNo     string
	SalePrice  string
	SPJBPrice  string
	SaleStatus string
	BumiQuota  string
}

// ProjectResult is everything one listing row yields. Err is set only
// when the detail view never opened; the row then contributes nothing
// and the rest of the page is unaffected. Sub-step failures degrade the
// corresponding fields to empty instead.
type ProjectResult struct {
	Listing    ListingFields
	Info       InfoFields
	Status     StatusFields
	HouseTypes []HouseTypeRow
	Units      []UnitRow
	Err        error
}

// ExtractPage processes every row of the current listing page by index,
// refreshing the row handles on each iteration because they go stale
// after a detail view closes and the listing re-renders. An error here
// means the listing itself is gone (session loss), which ends the
// developer's run; per-row failures are carried inside the results.
func (s *Session) ExtractPage() ([]ProjectResult, error) {
	sel := s.cfg.Portal.Selectors

	count, err := s.page.Locator(sel.ListingRows).Count()
	if err != nil {
		return nil, fmt.Errorf("count listing rows: %w", err)
	}

	var results []ProjectResult
	for idx := 0; idx < count; idx++ {
		rows := s.page.Locator(sel.ListingRows)
		n, err := rows.Count()
		if err != nil {
			return results, fmt.Errorf("refresh listing rows: %w", err)
		}
		if idx >= n {
			continue
		}
		results = append(results, s.extractProject(rows.Nth(idx)))
	}
	return results, nil
}

func (s *Session) extractProject(row playwright.Locator) ProjectResult {
	res := ProjectResult{Listing: s.readListingCells(row)}
	s.logf("open: %s", res.Listing.ProjectCodeName)

	if err := s.openDetail(row); err != nil {
		res.Err = fmt.Errorf("open detail: %w", err)
		s.logf("open detail failed: %v", err)
		return res
	}

	res.Info = s.extractInfoFields()
	res.Status, res.HouseTypes = s.extractStatus()
	res.Units = s.extractUnits()

	s.closeDetail()
	return res
}

func (s *Session) readListingCells(row playwright.Locator) ListingFields {
	cells := row.Locator("td")

	cell := func(i int) string {
		n, err := cells.Count()
		if err != nil || i >= n {
			return ""
		}
		text, err := cells.Nth(i).TextContent()
		if err != nil {
			return ""
		}
		return NormalizeSpace(text)
	}

	return ListingFields{
		ProjectCodeName:   cell(1),
		DeveloperCodeName: cell(2),
		PermitNo:          cell(3),
		ListedStatus:      cell(4),
	}
}

func (s *Session) openDetail(row playwright.Locator) error {
	eye := row.Locator(s.cfg.Portal.Selectors.DetailOpen).First()
	if err := s.safeClick(eye); err != nil {
		return err
	}
	s.sleep(s.cfg.Timing.PageLoadDelay)
	return nil
}

// closeDetail returns control to the listing no matter how many
// sub-steps failed; the pagination loop requires a visible listing
// table as its precondition.
func (s *Session) closeDetail() {
	s.page.Evaluate(`document.dispatchEvent(new KeyboardEvent('keydown', {key: 'Escape'}))`)
	s.sleep(s.cfg.Timing.ClickDelay)

	if s.waitVisible(s.cfg.Portal.Selectors.ListingTable, s.cfg.Timing.MaxWait) {
		s.logf("returned to listing")
	} else {
		s.logf("WARNING: listing table not visible after closing detail")
	}
}

func (s *Session) clickTab(text string) error {
	selector := fmt.Sprintf(s.cfg.Portal.Selectors.SideTab, text)
	tab, err := s.waitClickable(selector, s.cfg.Timing.ButtonWait)
	if err != nil {
		return fmt.Errorf("tab %q: %w", text, err)
	}
	if err := s.safeClick(tab); err != nil {
		return fmt.Errorf("tab %q: %w", text, err)
	}
	s.logf("tab opened: %s", text)
	return nil
}

func (s *Session) extractInfoFields() InfoFields {
	anchors := s.cfg.Portal.Anchors
	info := InfoFields{State: s.cfg.State}

	if err := s.clickTab(s.cfg.Portal.Tabs.Info); err != nil {
		s.logf("info tab failed: %v", err)
		return info
	}

	info.District = s.infoFieldValue(anchors.DistrictLabel)
	if v := s.infoFieldValue(anchors.StateLabel); v != "" {
		info.State = v
	}
	info.PermitValidDate = s.infoFieldValue(anchors.PermitValidLabel)
	info.MapLink = s.mapLink()

	return info
}

// infoFieldValue reads the value block following a labeled heading,
// polling until it is non-empty because the tab renders its fields
// asynchronously. Absence after the wait yields "".
func (s *Session) infoFieldValue(label string) string {
	selector := fmt.Sprintf(s.cfg.Portal.Selectors.InfoFieldValue, label)

	var value string
	PollUntil(s.cfg.Timing.FieldWait, 500*time.Millisecond, func() (bool, error) {
		text, err := s.page.Locator(selector).First().TextContent()
		if err != nil {
			return false, nil
		}
		text = NormalizeSpace(text)
		if text == "" {
			return false, nil
		}
		value = text
		return true, nil
	})

	if value == "" {
		s.logf("field %q not found", label)
	}
	return value
}

func (s *Session) mapLink() string {
	iframe := s.page.Locator(s.cfg.Portal.Selectors.MapIframe).First()
	src, err := iframe.GetAttribute("src")
	if err != nil {
		return ""
	}
	return CanonicalMapLink(src)
}

func (s *Session) extractStatus() (StatusFields, []HouseTypeRow) {
	var status StatusFields

	if err := s.clickTab(s.cfg.Portal.Tabs.Status); err != nil {
		s.logf("status tab failed: %v", err)
		return status, nil
	}

	anchors := s.cfg.Portal.Anchors
	raw, err := s.page.Locator(s.cfg.Portal.Selectors.StatusContainer).First().TextContent()
	if err != nil {
		s.logf("status container not found: %v", err)
	} else {
		raw = NormalizeSpace(raw)
		status.DevelopmentInfo = ExtractAnchored(raw,
			anchors.DevelopmentInfo.Label, anchors.DevelopmentInfo.Stops, anchors.TableCut)
		status.OverallStatus = ExtractAnchored(raw,
			anchors.OverallStatus.Label, anchors.OverallStatus.Stops, anchors.TableCut)
	}

	return status, s.statusTableRows()
}

func (s *Session) statusTableRows() []HouseTypeRow {
	sel := s.cfg.Portal.Selectors

	selector := sel.StatusTable
	if !s.waitVisible(selector, s.cfg.Timing.FieldWait) {
		selector = sel.StatusTableAlt
		if !s.waitVisible(selector, s.cfg.Timing.FieldWait) {
			s.logf("status table not found")
			return nil
		}
	}

	html, err := s.page.Locator(selector).First().InnerHTML()
	if err != nil {
		s.logf("status table read failed: %v", err)
		return nil
	}

	rows, err := ParseStatusTable(html)
	if err != nil {
		s.logf("status table parse failed: %v", err)
		return nil
	}
	s.logf("status table rows = %d", len(rows))
	return rows
}

func (s *Session) extractUnits() []UnitRow {
	sel := s.cfg.Portal.Selectors

	if err := s.clickTab(s.cfg.Portal.Tabs.Info); err != nil {
		s.logf("unit step: %v", err)
		return nil
	}

	btn, err := s.waitClickable(sel.UnitModalButton, s.cfg.Timing.ButtonWait)
	if err != nil {
		s.logf("unit modal button: %v", err)
		return nil
	}
	if err := s.safeClick(btn); err != nil {
		s.logf("unit modal open failed: %v", err)
		return nil
	}
	s.sleep(s.cfg.Timing.PageLoadDelay)
	s.logf("unit modal opened")
	defer s.closeUnitModal()

	s.ensureListView()

	if !s.waitVisible(sel.UnitTable, s.cfg.Timing.FieldWait) {
		s.logf("unit table not visible")
		return nil
	}

	html, err := s.page.Locator(sel.UnitTable).First().InnerHTML()
	if err != nil {
		s.logf("unit table read failed: %v", err)
		return nil
	}

	rows, err := ParseUnitTable(html)
	if err != nil {
		s.logf("unit table parse failed: %v", err)
		return nil
	}
	s.logf("unit rows scraped = %d", len(rows))
	return rows
}

// ensureListView switches the modal to its list rendering unless the
// toggle is already active.
func (s *Session) ensureListView() {
	sel := s.cfg.Portal.Selectors

	if active, _ := s.page.Locator(sel.ListViewActive).First().IsVisible(); active {
		s.logf("list view already active")
		return
	}

	btn, err := s.waitClickable(sel.ListViewButton, s.cfg.Timing.ButtonWait)
	if err != nil {
		s.logf("list view toggle: %v", err)
		return
	}
	if err := s.safeClick(btn); err != nil {
		s.logf("list view click failed: %v", err)
		return
	}
	s.logf("list view selected")
}

// closeUnitModal sends Escape first, then clicks the explicit close
// control when it is still present, as structural confirmation.
func (s *Session) closeUnitModal() {
	s.page.Keyboard().Press("Escape")
	s.sleep(s.cfg.Timing.ClickDelay)

	btn := s.page.Locator(s.cfg.Portal.Selectors.ModalClose).First()
	if visible, _ := btn.IsVisible(); visible {
		if err := s.safeClick(btn); err != nil {
			s.logf("unit modal close failed: %v", err)
			return
		}
	}
	s.logf("unit modal closed")
}
