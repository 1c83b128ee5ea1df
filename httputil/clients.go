package httputil

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type Clients struct {
	Portal *http.Client // reachability checks against the portal
	API    *http.Client // webhook sink and other direct calls
}

func NewClients() *Clients {
	return &Clients{
		Portal: &http.Client{Timeout: 15 * time.Second},
		API:    &http.Client{Timeout: 30 * time.Second},
	}
}

// DoWithRetry retries transient failures (network errors and 5xx) with
// a fixed backoff. The caller owns the final response body.
func DoWithRetry(client *http.Client, req *http.Request, attempts int, backoff time.Duration) (*http.Response, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(backoff)
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr)
}

// CheckPortal does a lightweight GET against the portal before a scrape
// run so an unreachable portal fails fast instead of mid-pagination.
func (c *Clients) CheckPortal(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := DoWithRetry(c.Portal, req, 3, 2*time.Second)
	if err != nil {
		return fmt.Errorf("portal unreachable: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("portal returned status %d", resp.StatusCode)
	}
	return nil
}
