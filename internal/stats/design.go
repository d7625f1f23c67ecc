package stats

import (
	"gonum.org/v1/gonum/mat"

	"github.com/michaelamann/Pitchfork/internal/domain"
)

// Design builds the fixed-effects matrix for one model spec. Genre uses
// treatment coding against GenreLevels[0]; interaction columns pair each
// non-reference dummy with year_z.
func (f *Frame) Design(spec domain.ModelSpec) (*mat.Dense, []string) {
	names := []string{"(Intercept)"}
	if spec.Genre {
		for _, lvl := range f.GenreLevels[1:] {
			names = append(names, "genre["+lvl+"]")
		}
	}
	if spec.Year || spec.Interaction {
		names = append(names, "year_z")
	}
	if spec.Interaction {
		for _, lvl := range f.GenreLevels[1:] {
			names = append(names, "genre["+lvl+"]:year_z")
		}
	}

	n := f.NObs()
	g := len(f.GenreLevels) - 1
	X := mat.NewDense(n, len(names), nil)
	for i := 0; i < n; i++ {
		col := 0
		X.Set(i, col, 1)
		col++
		if spec.Genre {
			if f.Genre[i] > 0 {
				X.Set(i, col+f.Genre[i]-1, 1)
			}
			col += g
		}
		if spec.Year || spec.Interaction {
			X.Set(i, col, f.YearZ[i])
			col++
		}
		if spec.Interaction {
			if f.Genre[i] > 0 {
				X.Set(i, col+f.Genre[i]-1, f.YearZ[i])
			}
		}
	}
	return X, names
}
