package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/michaelamann/Pitchfork/internal/domain"
)

// Frame is the modeling frame: aligned columns over the screened dataset.
// GenreLevels[0] is the treatment-coding reference (alphabetically first).
type Frame struct {
	Score []float64
	YearZ []float64
	Genre []int // index into GenreLevels
	Group []int // index into Authors

	GenreLevels []string
	Authors     []string

	YearMean float64
	YearSD   float64
}

// NewFrame builds the frame from cleaned, screened reviews. Publication year
// is standardized once here so every candidate model sees the same column.
func NewFrame(reviews []domain.Review) (*Frame, error) {
	if len(reviews) == 0 {
		return nil, fmt.Errorf("empty dataset: %w", domain.ErrInsufficientData)
	}

	genreSet := map[string]struct{}{}
	authorSet := map[string]struct{}{}
	for _, r := range reviews {
		genreSet[r.Genre] = struct{}{}
		authorSet[r.Author] = struct{}{}
	}
	if len(genreSet) < 2 {
		return nil, fmt.Errorf("need at least 2 genre levels, have %d: %w", len(genreSet), domain.ErrInsufficientData)
	}
	if len(authorSet) < 2 {
		return nil, fmt.Errorf("need at least 2 authors, have %d: %w", len(authorSet), domain.ErrInsufficientData)
	}

	f := &Frame{
		Score:       make([]float64, len(reviews)),
		Genre:       make([]int, len(reviews)),
		Group:       make([]int, len(reviews)),
		GenreLevels: sortedKeys(genreSet),
		Authors:     sortedKeys(authorSet),
	}
	genreIdx := indexOf(f.GenreLevels)
	authorIdx := indexOf(f.Authors)

	years := make([]float64, len(reviews))
	for i, r := range reviews {
		f.Score[i] = r.Score
		years[i] = float64(r.PubYear)
		f.Genre[i] = genreIdx[r.Genre]
		f.Group[i] = authorIdx[r.Author]
	}

	z, mean, sd, err := Standardize(years)
	if err != nil {
		return nil, err
	}
	f.YearZ = z
	f.YearMean = mean
	f.YearSD = sd
	return f, nil
}

func (f *Frame) NObs() int    { return len(f.Score) }
func (f *Frame) NGroups() int { return len(f.Authors) }

// Standardize centers and scales to sample mean 0, sd 1.
func Standardize(xs []float64) (z []float64, mean, sd float64, err error) {
	mean = stat.Mean(xs, nil)
	sd = stat.StdDev(xs, nil)
	if sd == 0 || len(xs) < 2 {
		return nil, 0, 0, fmt.Errorf("column has no variation: %w", domain.ErrInsufficientData)
	}
	z = make([]float64, len(xs))
	for i, x := range xs {
		z[i] = (x - mean) / sd
	}
	return z, mean, sd, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func indexOf(levels []string) map[string]int {
	m := make(map[string]int, len(levels))
	for i, l := range levels {
		m[l] = i
	}
	return m
}
