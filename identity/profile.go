package identity

// Profile is the browser identity presented to the portal. The portal
// serves a reduced page to obvious automation, so the session launches
// with a real desktop Chrome fingerprint and the webdriver flag hidden.
type Profile struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

func Default() Profile {
	return Profile{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) " +
			"Chrome/143.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}
}

// LaunchArgs returns the Chromium flags for this profile.
func (p Profile) LaunchArgs() []string {
	return []string{
		"--disable-blink-features=AutomationControlled",
		"--disable-dev-shm-usage",
		"--no-sandbox",
		"--start-maximized",
	}
}

// StealthScript runs on every new document before page scripts.
const StealthScript = "Object.defineProperty(navigator, 'webdriver', {get: () => undefined})"
