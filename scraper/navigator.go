package scraper

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// Search submits the portal search form for one developer keyword and
// verifies the rendered result set actually belongs to it. The portal
// re-renders asynchronously and may keep showing the previous search's
// rows, so verification polls the first row within a fixed budget; on
// exhaustion the search is reported Unverified and processing proceeds
// against whatever is rendered.
func (s *Session) Search(keyword string) (SearchOutcome, error) {
	sel := s.cfg.Portal.Selectors

	if _, err := s.page.Goto(s.cfg.BaseURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(60000),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return SearchUnverified, fmt.Errorf("open portal: %w", err)
	}
	s.sleep(s.cfg.Timing.PageLoadDelay)
	s.logf("opened %s", s.cfg.BaseURL)

	if _, err := s.page.Locator(sel.SearchTypeSelect).First().SelectOption(playwright.SelectOptionValues{
		Labels: &[]string{s.cfg.SearchType},
	}); err != nil {
		return SearchUnverified, fmt.Errorf("select search type: %w", err)
	}
	s.sleep(s.cfg.Timing.ClickDelay)
	s.logf("search type = %s", s.cfg.SearchType)

	if _, err := s.page.Locator(sel.StateSelect).First().SelectOption(playwright.SelectOptionValues{
		Labels: &[]string{s.cfg.State},
	}); err != nil {
		return SearchUnverified, fmt.Errorf("select state: %w", err)
	}
	s.sleep(s.cfg.Timing.ClickDelay)
	s.logf("state = %s", s.cfg.State)

	input := s.page.Locator(sel.KeywordInput).First()
	if err := input.Fill(keyword); err != nil {
		return SearchUnverified, fmt.Errorf("fill keyword: %w", err)
	}
	s.sleep(s.cfg.Timing.ClickDelay)
	s.logf("keyword = %s", keyword)

	btn, err := s.waitClickable(sel.SearchButton, s.cfg.Timing.MaxWait)
	if err != nil {
		return SearchUnverified, fmt.Errorf("search button: %w", err)
	}
	if err := s.safeClick(btn); err != nil {
		return SearchUnverified, fmt.Errorf("click search: %w", err)
	}
	s.logf("search submitted, verifying result set")

	outcome := verifySearch(s.firstListingRowText, keyword,
		s.cfg.Timing.VerifyAttempts, s.cfg.Timing.VerifyInterval)
	if outcome.Verified() {
		s.logf("verified: results match %q", keyword)
	} else {
		s.logf("WARNING: results never matched %q, processing rendered rows as-is", keyword)
	}

	if !s.waitVisible(sel.ListingTable, s.cfg.Timing.MaxWait) {
		return outcome, fmt.Errorf("listing table not visible after search")
	}
	return outcome, nil
}

func (s *Session) firstListingRowText() (string, error) {
	row := s.page.Locator(s.cfg.Portal.Selectors.ListingRows).First()
	visible, err := row.IsVisible()
	if err != nil {
		return "", err
	}
	if !visible {
		return "", fmt.Errorf("no result rows rendered")
	}
	return row.InnerText()
}

// HasNextPage reports whether the pagination control can advance: the
// chevron button exists, is not disabled, and its class list does not
// mark it disabled. IsDisabled covers the bare boolean `disabled`
// attribute, which GetAttribute reports as "" just like absence.
func (s *Session) HasNextPage() bool {
	btn := s.page.Locator(s.cfg.Portal.Selectors.NextPage).First()

	count, err := btn.Count()
	if err != nil || count == 0 {
		return false
	}

	disabled, err := btn.IsDisabled()
	if err != nil || disabled {
		return false
	}
	class, _ := btn.GetAttribute("class")
	return !classDisabled(class)
}

// classDisabled reports whether a class list marks a control disabled
// without the disabled attribute (PrimeVue renders p-disabled).
func classDisabled(class string) bool {
	return strings.Contains(strings.ToLower(class), "disabled")
}

// NextPage clicks the pagination control and lets the table settle.
func (s *Session) NextPage() error {
	btn := s.page.Locator(s.cfg.Portal.Selectors.NextPage).First()
	if err := s.safeClick(btn); err != nil {
		return fmt.Errorf("next page: %w", err)
	}
	s.sleep(s.cfg.Timing.PageLoadDelay)
	s.logf("next page clicked")
	return nil
}
