package trends

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestSentimentSeries(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC))
	g := NewSeriesGenerator(42, clock)

	points := g.SentimentSeries(7)
	if len(points) != 7 {
		t.Fatalf("len(points) = %d, want 7", len(points))
	}

	for i, p := range points {
		if p.Positive < 5 || p.Positive > 19 {
			t.Errorf("points[%d].Positive = %d, want [5, 19]", i, p.Positive)
		}
		if p.Neutral < 10 || p.Neutral > 29 {
			t.Errorf("points[%d].Neutral = %d, want [10, 29]", i, p.Neutral)
		}
		if p.Negative < 2 || p.Negative > 14 {
			t.Errorf("points[%d].Negative = %d, want [2, 14]", i, p.Negative)
		}
		if p.AverageScore < 2.5 || p.AverageScore > 4.5 {
			t.Errorf("points[%d].AverageScore = %v, want [2.5, 4.5]", i, p.AverageScore)
		}
		if i > 0 && !points[i-1].Date.Before(p.Date) {
			t.Errorf("points not in ascending date order at %d", i)
		}
	}
}

func TestSentimentSeriesSeedReproducible(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC))

	first := NewSeriesGenerator(7, clock).SentimentSeries(30)
	second := NewSeriesGenerator(7, clock).SentimentSeries(30)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("series diverged at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSentimentSeriesEmptyWindow(t *testing.T) {
	g := NewSeriesGenerator(1, nil)
	if points := g.SentimentSeries(0); points != nil {
		t.Errorf("SentimentSeries(0) = %v, want nil", points)
	}
}
