package app

import (
	"sort"

	"github.com/michaelamann/Pitchfork/internal/domain"
)

// AggregateService produces the descriptive tables: genre mix per year and
// very-low-score rates. Runs on the cleaned dataset; the genre screen only
// guards model estimation, not these counts.
type AggregateService struct {
	lowScore float64
}

func NewAggregateService(lowScoreThreshold float64) *AggregateService {
	return &AggregateService{lowScore: lowScoreThreshold}
}

// GenreMix returns each genre's share of reviews per publication year,
// ordered by year then genre.
func (s *AggregateService) GenreMix(reviews []domain.Review) []domain.GenreYearShare {
	type cell struct {
		year  int
		genre string
	}
	counts := map[cell]int{}
	yearTotals := map[int]int{}
	for _, r := range reviews {
		counts[cell{r.PubYear, r.Genre}]++
		yearTotals[r.PubYear]++
	}

	out := make([]domain.GenreYearShare, 0, len(counts))
	for c, n := range counts {
		out = append(out, domain.GenreYearShare{
			Year:  c.year,
			Genre: c.genre,
			Count: n,
			Share: float64(n) / float64(yearTotals[c.year]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Genre < out[j].Genre
	})
	return out
}

// LowScoresByYear returns the rate of scores below the threshold per year.
func (s *AggregateService) LowScoresByYear(reviews []domain.Review) []domain.YearLowScore {
	n := map[int]int{}
	low := map[int]int{}
	for _, r := range reviews {
		n[r.PubYear]++
		if r.Score < s.lowScore {
			low[r.PubYear]++
		}
	}
	out := make([]domain.YearLowScore, 0, len(n))
	for y, total := range n {
		out = append(out, domain.YearLowScore{
			Year:       y,
			N:          total,
			NLow:       low[y],
			PercentLow: percent(low[y], total),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// LowScoresByGenre returns the rate of scores below the threshold per genre.
func (s *AggregateService) LowScoresByGenre(reviews []domain.Review) []domain.GenreLowScore {
	n := map[string]int{}
	low := map[string]int{}
	for _, r := range reviews {
		n[r.Genre]++
		if r.Score < s.lowScore {
			low[r.Genre]++
		}
	}
	out := make([]domain.GenreLowScore, 0, len(n))
	for g, total := range n {
		out = append(out, domain.GenreLowScore{
			Genre:      g,
			N:          total,
			NLow:       low[g],
			PercentLow: percent(low[g], total),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Genre < out[j].Genre })
	return out
}

// percent divides after scaling so that 3 of 10 is exactly 30.0.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}
