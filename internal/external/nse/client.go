// Package nse fetches derivatives participant data and index closes from
// the NSE website and archives.
package nse

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/dkrao/fiipulse/pkg/httputil"
	"github.com/dkrao/fiipulse/pkg/logger"
)

// Client handles communication with NSE endpoints.
// All NSE requests go through this client and nowhere else.
type Client struct {
	httpClient  *httputil.Client
	logger      *logger.Logger
	baseURL     string
	archivesURL string

	// Guards bootstrapped; a scheduled job and an API-triggered collect
	// can hit the client at the same time.
	mu           sync.Mutex
	bootstrapped bool
}

// NewClient creates a new NSE client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL, archivesURL string) *Client {
	if baseURL == "" {
		baseURL = "https://www.nseindia.com"
	}
	if archivesURL == "" {
		archivesURL = "https://nsearchives.nseindia.com"
	}
	return &Client{
		httpClient:  httpClient,
		logger:      log,
		baseURL:     baseURL,
		archivesURL: archivesURL,
	}
}

// bootstrap hits the NSE home page once to collect the session cookies the
// data endpoints require. The cookie jar on the HTTP client keeps them.
// Failed bootstraps are retried on the next call.
func (c *Client) bootstrap(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bootstrapped {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("create bootstrap request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bootstrap request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bootstrap status %d", resp.StatusCode)
	}

	c.bootstrapped = true
	c.logger.Debug("NSE session cookies acquired")
	return nil
}

// setBrowserHeaders mimics a browser request; NSE rejects bare clients.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.nseindia.com/")
}
