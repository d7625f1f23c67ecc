package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/michaelamann/Pitchfork/internal/domain"
)

// Fit is a maximum-likelihood fit of one candidate model. Tau2 is zero for
// the fixed-effects-only fit.
type Fit struct {
	Names []string
	Beta  []float64
	Cov   *mat.SymDense // covariance of Beta

	Sigma2 float64
	Tau2   float64
	LogLik float64

	NObs    int
	NGroups int
	NParams int // fixed effects + variance components

	// FittedVariance is var(X·β̂), the fixed-effects share of the variance
	// decomposition.
	FittedVariance float64
}

func (f *Fit) Deviance() float64 { return -2 * f.LogLik }

// Coefficients renders the estimates with Wald intervals at the given
// confidence level.
func (f *Fit) Coefficients(level float64) []domain.Coefficient {
	z := waldQuantile(level)
	out := make([]domain.Coefficient, len(f.Beta))
	for i, b := range f.Beta {
		se := math.Sqrt(f.Cov.At(i, i))
		out[i] = domain.Coefficient{
			Name:     f.Names[i],
			Estimate: b,
			SE:       se,
			Lower:    b - z*se,
			Upper:    b + z*se,
		}
	}
	return out
}

// fittedVariance computes var(Xβ) without materializing X a second time.
func fittedVariance(X *mat.Dense, beta []float64) float64 {
	n, p := X.Dims()
	fitted := make([]float64, n)
	for i := 0; i < n; i++ {
		var v float64
		for j := 0; j < p; j++ {
			v += X.At(i, j) * beta[j]
		}
		fitted[i] = v
	}
	return stat.Variance(fitted, nil)
}

// crossProducts returns XᵀX (symmetric) and Xᵀy.
func crossProducts(X *mat.Dense, y []float64) (*mat.SymDense, []float64) {
	n, p := X.Dims()
	xtx := mat.NewSymDense(p, nil)
	xty := make([]float64, p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			xij := X.At(i, j)
			xty[j] += xij * y[i]
			for k := j; k < p; k++ {
				xtx.SetSym(j, k, xtx.At(j, k)+xij*X.At(i, k))
			}
		}
	}
	return xtx, xty
}

const sigma2Floor = 1e-12
