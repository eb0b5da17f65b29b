package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dkrao/fiipulse/internal/contracts"
)

// indexQuote is one entry of the all-indices API response.
type indexQuote struct {
	Index string  `json:"index"`
	Last  float64 `json:"last"`
}

type allIndicesResponse struct {
	Data      []indexQuote `json:"data"`
	Timestamp string       `json:"timestamp"`
}

// FetchIndexClose fetches the latest close for the named index, e.g.
// "NIFTY 50". The returned date is the exchange's quote timestamp
// truncated to the day.
func (c *Client) FetchIndexClose(ctx context.Context, indexName string) (contracts.IndexClose, error) {
	var zero contracts.IndexClose

	if err := c.bootstrap(ctx); err != nil {
		return zero, err
	}

	reqURL := fmt.Sprintf("%s/api/allIndices", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}
	setBrowserHeaders(req)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return zero, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("read response body: %w", err)
	}

	var indices allIndicesResponse
	if err := json.Unmarshal(body, &indices); err != nil {
		return zero, fmt.Errorf("decode response: %w", err)
	}

	for _, q := range indices.Data {
		if q.Index != indexName {
			continue
		}
		date, err := parseQuoteTimestamp(indices.Timestamp)
		if err != nil {
			return zero, err
		}
		c.logger.WithFields(map[string]interface{}{
			"index": indexName,
			"date":  date.Format("2006-01-02"),
			"close": q.Last,
		}).Debug("Fetched index close")
		return contracts.IndexClose{Date: date, Close: q.Last}, nil
	}

	return zero, fmt.Errorf("index %q not in response", indexName)
}

// eodRecord is one row of the historical indices API response.
type eodRecord struct {
	IndexName string  `json:"EOD_INDEX_NAME"`
	Close     float64 `json:"EOD_CLOSE_INDEX_VAL"`
	Timestamp string  `json:"EOD_TIMESTAMP"`
}

type indicesHistoryResponse struct {
	Data struct {
		Records []eodRecord `json:"indexCloseOnlineRecords"`
	} `json:"data"`
}

// FetchIndexCloseRange fetches day-wise historical closes for the named
// index over [from, to]. Results come back sorted ascending by date.
func (c *Client) FetchIndexCloseRange(ctx context.Context, indexName string, from, to time.Time) ([]contracts.IndexClose, error) {
	if err := c.bootstrap(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("indexType", indexName)
	params.Set("from", from.Format("02-01-2006"))
	params.Set("to", to.Format("02-01-2006"))
	reqURL := fmt.Sprintf("%s/api/historical/indicesHistory?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	setBrowserHeaders(req)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var history indicesHistoryResponse
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	closes, err := indexClosesFromRecords(history.Data.Records, indexName)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"index": indexName,
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
		"count": len(closes),
	}).Debug("Fetched historical index closes")
	return closes, nil
}

// indexClosesFromRecords converts EOD records for the named index into
// closes, deduped by trading date and sorted ascending.
func indexClosesFromRecords(records []eodRecord, indexName string) ([]contracts.IndexClose, error) {
	seen := make(map[time.Time]bool, len(records))
	closes := make([]contracts.IndexClose, 0, len(records))
	for _, rec := range records {
		if !strings.EqualFold(rec.IndexName, indexName) {
			continue
		}
		date, err := parseEODTimestamp(rec.Timestamp)
		if err != nil {
			return nil, err
		}
		if seen[date] {
			continue
		}
		seen[date] = true
		closes = append(closes, contracts.IndexClose{Date: date, Close: rec.Close})
	}
	sort.Slice(closes, func(i, j int) bool { return closes[i].Date.Before(closes[j].Date) })
	return closes, nil
}

// parseEODTimestamp parses dates like "01-AUG-2026". The month comes back
// upper-cased and time.Parse is case-sensitive, so normalize it first.
func parseEODTimestamp(ts string) (time.Time, error) {
	parts := strings.Split(ts, "-")
	if len(parts) == 3 && len(parts[1]) > 1 {
		parts[1] = strings.ToUpper(parts[1][:1]) + strings.ToLower(parts[1][1:])
	}
	t, err := time.Parse("02-Jan-2006", strings.Join(parts, "-"))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse EOD timestamp %q: %w", ts, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// parseQuoteTimestamp parses timestamps like "28-Aug-2026 15:30:00" and
// keeps only the trading date.
func parseQuoteTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse("02-Jan-2006 15:04:05", ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse quote timestamp %q: %w", ts, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
