package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/michaelamann/Pitchfork/internal/domain"
)

// FitOLS fits y = Xβ + ε by maximum likelihood (σ̂² = RSS/n, matching the
// mixed-model likelihood convention so criteria are comparable).
func FitOLS(X *mat.Dense, y []float64, names []string) (*Fit, error) {
	n, p := X.Dims()
	if n <= p+1 {
		return nil, fmt.Errorf("%d observations for %d parameters: %w", n, p, domain.ErrInsufficientData)
	}

	xtx, xty := crossProducts(X, y)
	var chol mat.Cholesky
	if ok := chol.Factorize(xtx); !ok {
		return nil, fmt.Errorf("singular design matrix: %w", domain.ErrConvergence)
	}

	var betaVec mat.VecDense
	if err := chol.SolveVecTo(&betaVec, mat.NewVecDense(p, xty)); err != nil {
		return nil, fmt.Errorf("normal equations solve: %w", domain.ErrConvergence)
	}
	beta := make([]float64, p)
	for i := range beta {
		beta[i] = betaVec.AtVec(i)
	}

	var rss float64
	for i := 0; i < n; i++ {
		var fit float64
		for j := 0; j < p; j++ {
			fit += X.At(i, j) * beta[j]
		}
		r := y[i] - fit
		rss += r * r
	}
	sigma2 := rss / float64(n)
	if sigma2 < sigma2Floor {
		sigma2 = sigma2Floor
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("covariance inverse: %w", domain.ErrConvergence)
	}
	cov := mat.NewSymDense(p, nil)
	cov.ScaleSym(sigma2, &inv)

	return &Fit{
		Names:          names,
		Beta:           beta,
		Cov:            cov,
		Sigma2:         sigma2,
		Tau2:           0,
		LogLik:         -0.5 * float64(n) * (math.Log(2*math.Pi*sigma2) + 1),
		NObs:           n,
		NGroups:        0,
		NParams:        p + 1, // β plus σ²
		FittedVariance: fittedVariance(X, beta),
	}, nil
}
