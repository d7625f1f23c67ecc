package stats

import (
	"fmt"
	"math"

	"github.com/michaelamann/Pitchfork/internal/domain"
)

// GenreTrends extracts per-genre intercepts and year slopes with Wald
// intervals from a fit containing genre and year terms. For the treatment
// reference the slope is β_year; for other genres it is β_year plus the
// interaction contrast, with covariance-aware standard errors. Fits without
// interaction terms share one slope across genres.
func GenreTrends(f *Fit, levels []string, level float64) ([]domain.GenreTrend, error) {
	idx := make(map[string]int, len(f.Names))
	for i, n := range f.Names {
		idx[n] = i
	}
	yearIdx, ok := idx["year_z"]
	if !ok {
		return nil, fmt.Errorf("fit has no year term")
	}
	if _, ok := idx["(Intercept)"]; !ok {
		return nil, fmt.Errorf("fit has no intercept")
	}

	z := waldQuantile(level)
	out := make([]domain.GenreTrend, 0, len(levels))
	for i, lvl := range levels {
		interceptIdxs := []int{idx["(Intercept)"]}
		slopeIdxs := []int{yearIdx}
		if i > 0 {
			if gi, ok := idx["genre["+lvl+"]"]; ok {
				interceptIdxs = append(interceptIdxs, gi)
			}
			if ii, ok := idx["genre["+lvl+"]:year_z"]; ok {
				slopeIdxs = append(slopeIdxs, ii)
			}
		}
		out = append(out, domain.GenreTrend{
			Genre:     lvl,
			Intercept: f.combine(lvl, interceptIdxs, z),
			Slope:     f.combine(lvl, slopeIdxs, z),
		})
	}
	return out, nil
}

// combine sums the named coefficients and propagates their full covariance.
func (f *Fit) combine(name string, idxs []int, z float64) domain.Coefficient {
	var est, v float64
	for _, i := range idxs {
		est += f.Beta[i]
		for _, j := range idxs {
			v += f.Cov.At(i, j)
		}
	}
	se := math.Sqrt(v)
	return domain.Coefficient{
		Name:     name,
		Estimate: est,
		SE:       se,
		Lower:    est - z*se,
		Upper:    est + z*se,
	}
}
