package trends

import (
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
)

// Point is one day of sentiment volume in a trend series.
type Point struct {
	Date         time.Time `json:"date"`
	Positive     int       `json:"positive"`
	Neutral      int       `json:"neutral"`
	Negative     int       `json:"negative"`
	AverageScore float64   `json:"average_score"`
}

// SeriesGenerator produces synthetic daily sentiment series for the analytics
// endpoint. Volumes are sampled from a seeded generator so a fixed seed gives
// a reproducible series.
type SeriesGenerator struct {
	rng   *rand.Rand
	clock clockwork.Clock
}

// NewSeriesGenerator builds a generator from a seed. A nil clock falls back
// to the real clock.
func NewSeriesGenerator(seed int64, clock clockwork.Clock) *SeriesGenerator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SeriesGenerator{
		rng:   rand.New(rand.NewSource(seed)),
		clock: clock,
	}
}

// SentimentSeries returns one point per day for the trailing window, oldest
// first, ending yesterday.
func (g *SeriesGenerator) SentimentSeries(days int) []Point {
	if days <= 0 {
		return nil
	}

	start := g.clock.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)
	points := make([]Point, 0, days)
	for i := 0; i < days; i++ {
		points = append(points, Point{
			Date:         start.AddDate(0, 0, i),
			Positive:     5 + g.rng.Intn(15),
			Neutral:      10 + g.rng.Intn(20),
			Negative:     2 + g.rng.Intn(13),
			AverageScore: 2.5 + g.rng.Float64()*2.0,
		})
	}
	return points
}
