package upgrade

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Checker reports whether the primary service is fully up: installed, out
// of maintenance mode and with no pending migration.
type Checker interface {
	Ready(ctx context.Context) (bool, error)
}

// readyMarkers must all appear in the status payload simultaneously.
var readyMarkers = []string{
	`"installed":true`,
	`"maintenance":false`,
	`"needsDbUpgrade":false`,
}

// HTTPChecker derives readiness from the service's self-reported status
// endpoint.
type HTTPChecker struct {
	url    string
	client *http.Client
}

// NewHTTPChecker creates a checker against the given status URL with a
// fixed per-request timeout.
func NewHTTPChecker(url string, timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// StatusURL builds the conventional status endpoint for a deployment
// exposed on the given HTTP port.
func StatusURL(httpPort string) string {
	return fmt.Sprintf("http://localhost:%s/status.php", httpPort)
}

// Ready implements Checker. A transport failure is returned as an error so
// the caller can keep polling; it is never fatal by itself.
func (c *HTTPChecker) Ready(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}

	payload := string(body)
	for _, marker := range readyMarkers {
		if !strings.Contains(payload, marker) {
			return false, nil
		}
	}
	return true, nil
}
