package scraper

import (
	"strings"
	"time"
)

// PollUntil calls check every interval until it reports ready or the
// timeout elapses. Check errors count as not-ready; the last state
// before the deadline decides the return value.
func PollUntil(timeout, interval time.Duration, check func() (bool, error)) bool {
	deadline := time.Now().Add(timeout)
	for {
		if ok, err := check(); err == nil && ok {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}

// SearchOutcome says whether the rendered result set was confirmed to
// belong to the searched keyword. An unverified search is a warning,
// not a failure: processing continues against whatever is rendered.
type SearchOutcome int

const (
	SearchUnverified SearchOutcome = iota
	SearchVerified
)

func (o SearchOutcome) Verified() bool {
	return o == SearchVerified
}

func (o SearchOutcome) String() string {
	if o == SearchVerified {
		return "verified"
	}
	return "unverified"
}

// verifySearch polls the first result row until it contains the keyword
// (case-insensitive) or the attempt budget runs out. The portal renders
// stale result sets transiently, so a non-matching row just means "not
// yet" until the budget is spent.
func verifySearch(firstRow func() (string, error), keyword string, attempts int, interval time.Duration) SearchOutcome {
	target := strings.ToUpper(strings.TrimSpace(keyword))

	for attempt := 0; attempt < attempts; attempt++ {
		time.Sleep(interval)

		text, err := firstRow()
		if err != nil {
			continue // table still loading or detached
		}
		if strings.Contains(strings.ToUpper(strings.TrimSpace(text)), target) {
			return SearchVerified
		}
	}
	return SearchUnverified
}
