package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeTimeframe(t *testing.T) {
	assert.Equal(t, Timeframe1h, NormalizeTimeframe("1h"))
	assert.Equal(t, Timeframe7d, NormalizeTimeframe("7d"))
	assert.Equal(t, Timeframe30d, NormalizeTimeframe("30d"))

	// anything unknown falls back to the default window
	assert.Equal(t, Timeframe24h, NormalizeTimeframe(""))
	assert.Equal(t, Timeframe24h, NormalizeTimeframe("yesterday"))
}

func TestTimeframeWindow(t *testing.T) {
	assert.Equal(t, time.Hour, TimeframeWindow(Timeframe1h))
	assert.Equal(t, 24*time.Hour, TimeframeWindow(Timeframe24h))
	assert.Equal(t, 7*24*time.Hour, TimeframeWindow(Timeframe7d))
	assert.Equal(t, 30*24*time.Hour, TimeframeWindow(Timeframe30d))
}

func TestRecencyWeight(t *testing.T) {
	window := 24 * time.Hour
	now := time.Now()
	cutoff := now.Add(-window)

	// a reaction at the cutoff carries no weight, a fresh one nearly full
	assert.Equal(t, float64(0), recencyWeight(cutoff, cutoff, window))
	assert.InDelta(t, 1.0, recencyWeight(now, cutoff, window), 0.001)
	assert.InDelta(t, 0.5, recencyWeight(cutoff.Add(12*time.Hour), cutoff, window), 0.001)

	// values outside the window clamp
	assert.Equal(t, float64(0), recencyWeight(cutoff.Add(-time.Hour), cutoff, window))
	assert.Equal(t, float64(1), recencyWeight(now.Add(time.Hour), cutoff, window))
}

func TestCandidateScoreDampsSingleHits(t *testing.T) {
	one := candidate{weightedSum: 4, count: 1}
	many := candidate{weightedSum: 35, count: 10}

	assert.InDelta(t, 4.0, one.score(), 0.0001)
	assert.InDelta(t, 3.5, many.score(), 0.0001)

	// a zero count must not divide by zero
	empty := candidate{weightedSum: 0, count: 0}
	assert.Equal(t, float64(0), empty.score())
}

func TestRankCandidatesOrderAndDensity(t *testing.T) {
	computedTS := time.Now()

	candidates := []candidate{
		{trackOID: primitive.NewObjectID(), weightedSum: 10, count: 5}, // 2.0
		{trackOID: primitive.NewObjectID(), weightedSum: 40, count: 10}, // 4.0
		{trackOID: primitive.NewObjectID(), weightedSum: 9, count: 3},  // 3.0
	}

	entries := rankCandidates(candidates, Timeframe24h, computedTS)

	assert.Len(t, entries, 3)
	for i, e := range entries {
		// ranks are dense, starting at 1
		assert.Equal(t, int32(i+1), e.Rank)
		assert.Equal(t, Timeframe24h, e.Timeframe)
		assert.Equal(t, "all", e.Category)
		assert.Equal(t, computedTS, e.ComputedTS)
	}
	assert.InDelta(t, 4.0, entries[0].Score, 0.0001)
	assert.InDelta(t, 3.0, entries[1].Score, 0.0001)
	assert.InDelta(t, 2.0, entries[2].Score, 0.0001)
}

func TestRankCandidatesTieBreaks(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	// same score - the one with more reactions wins
	candidates := []candidate{
		{trackOID: a, weightedSum: 6, count: 2},
		{trackOID: b, weightedSum: 12, count: 4},
	}

	entries := rankCandidates(candidates, Timeframe24h, time.Now())
	assert.Equal(t, b, entries[0].TrackID)
	assert.Equal(t, a, entries[1].TrackID)
}

func TestRankCandidatesDeterministicOnFullTie(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	run := func(first, second primitive.ObjectID) []TrendingEntry {
		return rankCandidates([]candidate{
			{trackOID: first, weightedSum: 3, count: 1},
			{trackOID: second, weightedSum: 3, count: 1},
		}, Timeframe1h, time.Now())
	}

	// input order must not matter
	forward := run(a, b)
	backward := run(b, a)

	assert.Equal(t, forward[0].TrackID, backward[0].TrackID)
	assert.Equal(t, forward[1].TrackID, backward[1].TrackID)
}

func TestRankCandidatesCapsListSize(t *testing.T) {
	var candidates []candidate
	for i := 0; i < trendingListSize+25; i++ {
		candidates = append(candidates, candidate{
			trackOID:    primitive.NewObjectID(),
			weightedSum: float64(i),
			count:       1,
		})
	}

	entries := rankCandidates(candidates, Timeframe7d, time.Now())

	assert.Len(t, entries, trendingListSize)
	assert.Equal(t, int32(1), entries[0].Rank)
	assert.Equal(t, int32(trendingListSize), entries[len(entries)-1].Rank)
}
