package app_test

import (
	"math"
	"testing"

	"github.com/michaelamann/Pitchfork/internal/app"
	"github.com/michaelamann/Pitchfork/internal/domain"
)

func mkReview(id int64, score float64, genre string, year int) domain.Review {
	return domain.Review{ReviewID: id, Score: score, Author: "a", Genre: genre, PubYear: year}
}

func TestLowScoresByGenre_ExactPercent(t *testing.T) {
	var reviews []domain.Review
	for i := 0; i < 10; i++ {
		score := 7.0
		if i < 3 {
			score = 2.0 // below threshold
		}
		reviews = append(reviews, mkReview(int64(i), score, "rock", 2005))
	}

	svc := app.NewAggregateService(4.0)
	got := svc.LowScoresByGenre(reviews)
	if len(got) != 1 {
		t.Fatalf("rows = %v", got)
	}
	if got[0].N != 10 || got[0].NLow != 3 {
		t.Fatalf("counts = %+v", got[0])
	}
	if got[0].PercentLow != 30.0 {
		t.Fatalf("percent = %v, want exactly 30.0", got[0].PercentLow)
	}
}

func TestLowScoresByYear_ThresholdIsStrict(t *testing.T) {
	reviews := []domain.Review{
		mkReview(1, 4.0, "rock", 2010), // not below threshold
		mkReview(2, 3.9, "rock", 2010),
		mkReview(3, 8.0, "rock", 2011),
	}
	svc := app.NewAggregateService(4.0)
	got := svc.LowScoresByYear(reviews)
	if len(got) != 2 {
		t.Fatalf("rows = %v", got)
	}
	if got[0].Year != 2010 || got[0].NLow != 1 {
		t.Fatalf("2010 row = %+v", got[0])
	}
	if got[1].Year != 2011 || got[1].NLow != 0 {
		t.Fatalf("2011 row = %+v", got[1])
	}
}

func TestGenreMix_SharesSumToOnePerYear(t *testing.T) {
	reviews := []domain.Review{
		mkReview(1, 7, "rock", 2010),
		mkReview(2, 7, "rock", 2010),
		mkReview(3, 7, "pop", 2010),
		mkReview(4, 7, "jazz", 2011),
	}
	svc := app.NewAggregateService(4.0)
	mix := svc.GenreMix(reviews)

	sums := map[int]float64{}
	for _, m := range mix {
		sums[m.Year] += m.Share
	}
	for y, s := range sums {
		if math.Abs(s-1) > 1e-12 {
			t.Fatalf("year %d shares sum to %v", y, s)
		}
	}

	// ordered by year then genre, and counts carried through
	if mix[0].Year != 2010 || mix[0].Genre != "pop" || mix[0].Count != 1 {
		t.Fatalf("first cell = %+v", mix[0])
	}
	if mix[1].Genre != "rock" || mix[1].Count != 2 || mix[1].Share != 2.0/3.0 {
		t.Fatalf("rock cell = %+v", mix[1])
	}
}
