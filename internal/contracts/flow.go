package contracts

import "time"

// Institution is a participant category in the NSE F&O participant-wise
// open interest reports.
type Institution string

const (
	InstitutionFII    Institution = "FII"
	InstitutionDII    Institution = "DII"
	InstitutionPRO    Institution = "PRO"
	InstitutionClient Institution = "CLIENT"
)

// ScoredInstitutions are the participants included in strength scoring.
// DII is collected upstream but never scored.
var ScoredInstitutions = []Institution{InstitutionFII, InstitutionPRO, InstitutionClient}

// Scored reports whether the institution participates in strength scoring.
func (i Institution) Scored() bool {
	switch i {
	case InstitutionFII, InstitutionPRO, InstitutionClient:
		return true
	}
	return false
}

// Segment is an instrument class within a participant's positioning.
// NetOptions is derived from CallOptions and PutOptions, never reported
// directly by the exchange.
type Segment string

const (
	SegmentIndexFutures Segment = "Index Futures"
	SegmentCallOptions  Segment = "Call Options"
	SegmentPutOptions   Segment = "Put Options"
	SegmentNetOptions   Segment = "Net Options"
)

// ReportedSegments are the segments present in exchange reports.
var ReportedSegments = []Segment{SegmentIndexFutures, SegmentCallOptions, SegmentPutOptions}

// FlowPoint is one observation of a participant's net open interest in one
// segment on one trading day. OIChange is the day-over-day difference within
// the same (institution, segment) series; the first observation's change is 0.
// Immutable once produced by the ETL layer.
type FlowPoint struct {
	Date        time.Time   `json:"date"`
	Institution Institution `json:"institution"`
	Segment     Segment     `json:"segment"`
	NetOI       float64     `json:"net_oi"`
	OIChange    float64     `json:"oi_change"`
}

// IndexClose is one daily closing value of the reference index (NIFTY).
type IndexClose struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}
