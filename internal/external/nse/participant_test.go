package nse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkrao/fiipulse/internal/contracts"
)

const sampleCSV = `Participant wise Open Interest (no. of contracts) as on 28-Aug-2026
Client Type,Future Index Long,Future Index Short,Future Stock Long,Future Stock Short,Option Index Call Long,Option Index Put Long,Option Index Call Short,Option Index Put Short,Total Long Contracts,Total Short Contracts
Client,"217,829","333,628","1,519,064","1,290,859","1,823,402","1,378,929","1,685,661","1,204,509","6,939,224","6,514,657"
DII,"33,418","71,347","310,201","3,96,078",0,"6,302","1,927",0,"349,921","469,352"
FII,"1,83,219","92,219","1,630,449","1,655,040","257,307","238,566","355,764","259,228","2,309,541","2,362,251"
Pro,"60,529","69,801","507,532","625,269","737,323","612,047","776,680","770,107","1,917,431","2,241,857"
TOTAL,"494,995","566,995","3,967,246","3,967,246","2,818,032","2,235,844","2,820,032","2,233,844","11,516,117","11,588,117"
`

func TestParseParticipantCSV(t *testing.T) {
	date := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)

	snap, err := parseParticipantCSV(strings.NewReader(sampleCSV), date)
	require.NoError(t, err)
	assert.Equal(t, date, snap.Date)
	require.Len(t, snap.Rows, 4, "TOTAL row must be dropped")

	fii, ok := snap.Rows[contracts.InstitutionFII]
	require.True(t, ok)
	assert.InDelta(t, 183219, fii.FutureIndexLong, 1e-9)
	assert.InDelta(t, 92219, fii.FutureIndexShort, 1e-9)
	assert.InDelta(t, 183219-92219, fii.NetOI(contracts.SegmentIndexFutures), 1e-9)
	assert.InDelta(t, 257307-355764, fii.NetOI(contracts.SegmentCallOptions), 1e-9)
	assert.InDelta(t, 238566-259228, fii.NetOI(contracts.SegmentPutOptions), 1e-9)

	pro, ok := snap.Rows[contracts.InstitutionPRO]
	require.True(t, ok, "Pro maps to PRO")
	assert.InDelta(t, 60529-69801, pro.NetOI(contracts.SegmentIndexFutures), 1e-9)
}

func TestParseParticipantCSV_NoHeader(t *testing.T) {
	_, err := parseParticipantCSV(strings.NewReader("just,some,noise\n1,2,3\n"), time.Now())
	assert.Error(t, err)
}

func TestFlowPoints(t *testing.T) {
	d1 := time.Date(2026, time.August, 27, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)

	prev := &Snapshot{Date: d1, Rows: map[contracts.Institution]ParticipantRow{
		contracts.InstitutionFII: {
			FutureIndexLong: 1000, FutureIndexShort: 400,
			CallIndexLong: 300, CallIndexShort: 100,
			PutIndexLong: 50, PutIndexShort: 250,
		},
	}}
	curr := &Snapshot{Date: d2, Rows: map[contracts.Institution]ParticipantRow{
		contracts.InstitutionFII: {
			FutureIndexLong: 1200, FutureIndexShort: 400,
			CallIndexLong: 350, CallIndexShort: 100,
			PutIndexLong: 50, PutIndexShort: 300,
		},
	}}

	points := FlowPoints(curr, prev)
	require.Len(t, points, 3)

	bySegment := make(map[contracts.Segment]contracts.FlowPoint)
	for _, p := range points {
		assert.Equal(t, d2, p.Date)
		assert.Equal(t, contracts.InstitutionFII, p.Institution)
		bySegment[p.Segment] = p
	}

	fut := bySegment[contracts.SegmentIndexFutures]
	assert.InDelta(t, 800, fut.NetOI, 1e-9)
	assert.InDelta(t, 200, fut.OIChange, 1e-9) // 800 today vs 600 yesterday

	put := bySegment[contracts.SegmentPutOptions]
	assert.InDelta(t, -250, put.NetOI, 1e-9)
	assert.InDelta(t, -50, put.OIChange, 1e-9) // -250 vs -200

	// Without a previous snapshot the change defaults to zero.
	points = FlowPoints(curr, nil)
	require.Len(t, points, 3)
	for _, p := range points {
		assert.Zero(t, p.OIChange)
	}
}
