package scraper

import (
	"fmt"
	"log"
	"time"

	"github.com/playwright-community/playwright-go"
	"teduh_scraper/config"
	"teduh_scraper/identity"
)

// Session owns one browser for one developer's run. It is acquired at
// the start of the run and must be released on every exit path.
type Session struct {
	cfg     *config.Config
	profile identity.Profile
	logf    func(format string, args ...interface{})

	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
}

// NewSession launches a browser with the default identity profile. The
// logf sink receives per-step lines; pass nil to use the global logger.
func NewSession(cfg *config.Config, logf func(string, ...interface{})) (*Session, error) {
	if logf == nil {
		logf = log.Printf
	}

	s := &Session{cfg: cfg, profile: identity.Default(), logf: logf}

	var err error
	s.pw, err = playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	s.browser, err = s.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     s.profile.LaunchArgs(),
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	s.bctx, err = s.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(s.profile.UserAgent),
		Viewport: &playwright.Size{
			Width:  s.profile.ViewportWidth,
			Height: s.profile.ViewportHeight,
		},
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("create context: %w", err)
	}

	if err := s.bctx.AddInitScript(playwright.Script{
		Content: playwright.String(identity.StealthScript),
	}); err != nil {
		s.Close()
		return nil, fmt.Errorf("add init script: %w", err)
	}

	s.page, err = s.bctx.NewPage()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	s.logf("browser started (headless=%v)", cfg.Headless)
	return s, nil
}

func (s *Session) Close() {
	if s.page != nil {
		s.page.Close()
		s.page = nil
	}
	if s.bctx != nil {
		s.bctx.Close()
		s.bctx = nil
	}
	if s.browser != nil {
		s.browser.Close()
		s.browser = nil
	}
	if s.pw != nil {
		s.pw.Stop()
		s.pw = nil
	}
}

func (s *Session) sleep(d time.Duration) {
	time.Sleep(d)
}

// safeClick scrolls the element into view and clicks it, falling back
// to a script click when something overlays the target.
func (s *Session) safeClick(loc playwright.Locator) error {
	if err := loc.ScrollIntoViewIfNeeded(); err == nil {
		s.sleep(s.cfg.Timing.ClickDelay / 2)
	}

	err := loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(s.cfg.Timing.ButtonWait.Milliseconds())),
	})
	if err != nil {
		if _, evalErr := loc.Evaluate("el => el.click()", nil); evalErr != nil {
			return fmt.Errorf("click: %w", err)
		}
	}

	s.sleep(s.cfg.Timing.ClickDelay)
	return nil
}

func (s *Session) waitVisible(selector string, timeout time.Duration) bool {
	loc := s.page.Locator(selector).First()
	return PollUntil(timeout, 500*time.Millisecond, func() (bool, error) {
		return loc.IsVisible()
	})
}

func (s *Session) waitClickable(selector string, timeout time.Duration) (playwright.Locator, error) {
	loc := s.page.Locator(selector).First()
	ok := PollUntil(timeout, 500*time.Millisecond, func() (bool, error) {
		visible, err := loc.IsVisible()
		if err != nil || !visible {
			return false, err
		}
		return loc.IsEnabled()
	})
	if !ok {
		return nil, fmt.Errorf("element not clickable: %s", selector)
	}
	return loc, nil
}
