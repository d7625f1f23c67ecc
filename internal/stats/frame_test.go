package stats_test

import (
	"errors"
	"math"
	"testing"

	"github.com/michaelamann/Pitchfork/internal/domain"
	"github.com/michaelamann/Pitchfork/internal/stats"
)

func review(id int64, score float64, author, genre string, year int) domain.Review {
	return domain.Review{ReviewID: id, Score: score, Author: author, Genre: genre, PubYear: year}
}

func TestStandardize(t *testing.T) {
	years := []float64{2010, 2011, 2012, 2013, 2014}
	z, mean, sd, err := stats.Standardize(years)
	if err != nil {
		t.Fatalf("Standardize: %v", err)
	}
	if mean != 2012 {
		t.Fatalf("mean = %v", mean)
	}
	if sd <= 0 {
		t.Fatalf("sd = %v", sd)
	}

	var zm, zss float64
	for _, v := range z {
		zm += v
	}
	zm /= float64(len(z))
	for _, v := range z {
		zss += (v - zm) * (v - zm)
	}
	zsd := math.Sqrt(zss / float64(len(z)-1))
	if math.Abs(zm) > 1e-9 {
		t.Fatalf("standardized mean = %v, want ~0", zm)
	}
	if math.Abs(zsd-1) > 1e-9 {
		t.Fatalf("standardized sd = %v, want ~1", zsd)
	}
}

func TestStandardize_NoVariation(t *testing.T) {
	_, _, _, err := stats.Standardize([]float64{2016, 2016, 2016})
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestNewFrame(t *testing.T) {
	reviews := []domain.Review{
		review(1, 7.0, "ann", "rock", 2001),
		review(2, 6.0, "ben", "pop", 2002),
		review(3, 8.0, "ann", "pop", 2003),
		review(4, 5.0, "ben", "rock", 2004),
	}
	f, err := stats.NewFrame(reviews)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	if got := f.GenreLevels; len(got) != 2 || got[0] != "pop" || got[1] != "rock" {
		t.Fatalf("genre levels = %v", got)
	}
	if f.NObs() != 4 || f.NGroups() != 2 {
		t.Fatalf("NObs=%d NGroups=%d", f.NObs(), f.NGroups())
	}
	// review 1 is rock -> level index 1, author ann -> group 0
	if f.Genre[0] != 1 || f.Group[0] != 0 {
		t.Fatalf("indices for first review: genre=%d group=%d", f.Genre[0], f.Group[0])
	}
}

func TestNewFrame_SingleGenre(t *testing.T) {
	reviews := []domain.Review{
		review(1, 7.0, "ann", "rock", 2001),
		review(2, 6.0, "ben", "rock", 2002),
	}
	_, err := stats.NewFrame(reviews)
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestDesignColumns(t *testing.T) {
	reviews := []domain.Review{
		review(1, 7.0, "ann", "rock", 2001),
		review(2, 6.0, "ben", "pop", 2002),
		review(3, 8.0, "ann", "pop", 2003),
		review(4, 5.0, "ben", "rock", 2004),
	}
	f, err := stats.NewFrame(reviews)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}

	X, names := f.Design(domain.ModelSpecs[0]) // interaction
	want := []string{"(Intercept)", "genre[rock]", "year_z", "genre[rock]:year_z"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	n, p := X.Dims()
	if n != 4 || p != 4 {
		t.Fatalf("dims = %d×%d", n, p)
	}
	// row 0 is rock: dummy 1, interaction = year_z
	if X.At(0, 1) != 1 {
		t.Fatalf("rock dummy = %v", X.At(0, 1))
	}
	if X.At(0, 3) != X.At(0, 2) {
		t.Fatalf("interaction %v != year_z %v", X.At(0, 3), X.At(0, 2))
	}
	// row 1 is pop (reference): dummy and interaction zero
	if X.At(1, 1) != 0 || X.At(1, 3) != 0 {
		t.Fatalf("reference row has genre columns set: %v %v", X.At(1, 1), X.At(1, 3))
	}
}
