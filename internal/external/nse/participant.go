package nse

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dkrao/fiipulse/internal/contracts"
)

// ParticipantRow is one client-type row from the daily participant-wise
// open interest archive.
type ParticipantRow struct {
	ClientType       string
	FutureIndexLong  float64
	FutureIndexShort float64
	CallIndexLong    float64
	CallIndexShort   float64
	PutIndexLong     float64
	PutIndexShort    float64
}

// Snapshot is one trading day's participant open interest.
type Snapshot struct {
	Date time.Time
	Rows map[contracts.Institution]ParticipantRow
}

// FetchParticipantOI downloads and parses the participant open interest
// archive for one trading date. A 404 means the date was a holiday or the
// file is not published yet.
func (c *Client) FetchParticipantOI(ctx context.Context, date time.Time) (*Snapshot, error) {
	if err := c.bootstrap(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/content/fo/fao_participant_oi_%s.csv",
		c.archivesURL, date.Format("02012006"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no participant file for %s: %w",
			date.Format("2006-01-02"), ErrNotPublished)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	snapshot, err := parseParticipantCSV(resp.Body, date)
	if err != nil {
		return nil, fmt.Errorf("parse participant file for %s: %w", date.Format("2006-01-02"), err)
	}

	c.logger.WithFields(map[string]interface{}{
		"date": date.Format("2006-01-02"),
		"rows": len(snapshot.Rows),
	}).Debug("Fetched participant open interest")

	return snapshot, nil
}

// ErrNotPublished marks dates without a participant archive file.
var ErrNotPublished = fmt.Errorf("participant file not published")

// parseParticipantCSV parses the archive format: a title line, a header
// line, then one row per client type plus a TOTAL row.
func parseParticipantCSV(r io.Reader, date time.Time) (*Snapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // title line has fewer fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	headerIdx := -1
	for i, rec := range records {
		if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "Client Type") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("header row not found")
	}

	col := make(map[string]int, len(records[headerIdx]))
	for i, name := range records[headerIdx] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(rec []string, name string) (float64, error) {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return 0, fmt.Errorf("column %q missing", name)
		}
		return parseAmount(rec[i])
	}

	snapshot := &Snapshot{Date: date, Rows: make(map[contracts.Institution]ParticipantRow)}
	for _, rec := range records[headerIdx+1:] {
		if len(rec) == 0 {
			continue
		}
		clientType := strings.ToUpper(strings.TrimSpace(rec[0]))
		inst, ok := institutionFor(clientType)
		if !ok {
			continue // TOTAL and anything unrecognized
		}

		row := ParticipantRow{ClientType: clientType}
		var err error
		if row.FutureIndexLong, err = field(rec, "future index long"); err != nil {
			return nil, err
		}
		if row.FutureIndexShort, err = field(rec, "future index short"); err != nil {
			return nil, err
		}
		if row.CallIndexLong, err = field(rec, "option index call long"); err != nil {
			return nil, err
		}
		if row.CallIndexShort, err = field(rec, "option index call short"); err != nil {
			return nil, err
		}
		if row.PutIndexLong, err = field(rec, "option index put long"); err != nil {
			return nil, err
		}
		if row.PutIndexShort, err = field(rec, "option index put short"); err != nil {
			return nil, err
		}
		snapshot.Rows[inst] = row
	}

	if len(snapshot.Rows) == 0 {
		return nil, fmt.Errorf("no client type rows")
	}
	return snapshot, nil
}

// institutionFor maps an archive client type to an institution.
func institutionFor(clientType string) (contracts.Institution, bool) {
	switch clientType {
	case "FII":
		return contracts.InstitutionFII, true
	case "DII":
		return contracts.InstitutionDII, true
	case "PRO":
		return contracts.InstitutionPRO, true
	case "CLIENT":
		return contracts.InstitutionClient, true
	}
	return "", false
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// NetOI returns the net open interest of one segment for the row. Puts are
// reported long minus short like the other segments; the direction
// inversion happens at classification time, not here.
func (r ParticipantRow) NetOI(seg contracts.Segment) float64 {
	switch seg {
	case contracts.SegmentIndexFutures:
		return r.FutureIndexLong - r.FutureIndexShort
	case contracts.SegmentCallOptions:
		return r.CallIndexLong - r.CallIndexShort
	case contracts.SegmentPutOptions:
		return r.PutIndexLong - r.PutIndexShort
	}
	return 0
}

// FlowPoints converts a snapshot to flow points, computing the day-over-day
// change against the previous snapshot. With no previous snapshot the
// change is zero.
func FlowPoints(curr, prev *Snapshot) []contracts.FlowPoint {
	if curr == nil {
		return nil
	}

	var points []contracts.FlowPoint
	for inst, row := range curr.Rows {
		for _, seg := range contracts.ReportedSegments {
			net := row.NetOI(seg)
			change := 0.0
			if prev != nil {
				if prevRow, ok := prev.Rows[inst]; ok {
					change = net - prevRow.NetOI(seg)
				}
			}
			points = append(points, contracts.FlowPoint{
				Date:        curr.Date,
				Institution: inst,
				Segment:     seg,
				NetOI:       net,
				OIChange:    change,
			})
		}
	}
	return points
}
