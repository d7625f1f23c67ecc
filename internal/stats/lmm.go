package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/michaelamann/Pitchfork/internal/domain"
)

// FitLMM fits the linear mixed model y = Xβ + Zb + ε with a single grouping
// factor and random intercepts only: b ~ N(0, τ²I), ε ~ N(0, σ²I).
//
// Estimation is maximum likelihood on the deviance profiled over β and σ²,
// leaving one free parameter, the variance ratio λ² = τ²/σ². Because each
// group's covariance block is I + λ²·11ᵀ, its inverse and log-determinant
// have Sherman–Morrison closed forms, so every profile evaluation reduces to
// group sums plus one Cholesky solve of the p×p weighted normal equations.
func FitLMM(X *mat.Dense, y []float64, group []int, nGroups int, names []string) (*Fit, error) {
	n, p := X.Dims()
	if n <= p+2 || nGroups < 2 {
		return nil, fmt.Errorf("%d observations in %d groups for %d parameters: %w",
			n, nGroups, p, domain.ErrInsufficientData)
	}

	w := newLMMWork(X, y, group, nGroups)

	problem := optimize.Problem{
		Func: func(v []float64) float64 {
			if v[0] > 40 {
				return math.Inf(1)
			}
			dev, _, err := w.profile(math.Exp(v[0]))
			if err != nil {
				return math.Inf(1)
			}
			return dev
		},
	}
	result, err := optimize.Minimize(problem, []float64{0}, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("profiled deviance optimization: %v: %w", err, domain.ErrConvergence)
	}
	if serr := result.Status.Err(); serr != nil {
		return nil, fmt.Errorf("profiled deviance optimization: %v: %w", serr, domain.ErrConvergence)
	}

	lambda2 := math.Exp(result.X[0])
	dev, sol, err := w.profile(lambda2)
	if err != nil {
		return nil, err
	}
	// τ² lives on a boundary at zero; accept it when the boundary deviance is
	// at least as good as the interior optimum.
	if devZero, solZero, errZero := w.profile(0); errZero == nil && devZero <= dev {
		lambda2, dev, sol = 0, devZero, solZero
	}

	var inv mat.SymDense
	if err := sol.chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("covariance inverse: %w", domain.ErrConvergence)
	}
	cov := mat.NewSymDense(p, nil)
	cov.ScaleSym(sol.sigma2, &inv)

	return &Fit{
		Names:          names,
		Beta:           sol.beta,
		Cov:            cov,
		Sigma2:         sol.sigma2,
		Tau2:           lambda2 * sol.sigma2,
		LogLik:         -0.5 * dev,
		NObs:           n,
		NGroups:        nGroups,
		NParams:        p + 2, // β plus σ² and τ²
		FittedVariance: fittedVariance(X, sol.beta),
	}, nil
}

type lmmWork struct {
	X     *mat.Dense
	y     []float64
	group []int

	xtx  *mat.SymDense // XᵀX
	xty  []float64     // Xᵀy
	gsum [][]float64   // per-group column sums of X
	ysum []float64     // per-group sums of y
	gn   []int         // group sizes
}

type lmmSolution struct {
	beta   []float64
	sigma2 float64
	chol   mat.Cholesky // of XᵀWX
}

func newLMMWork(X *mat.Dense, y []float64, group []int, nGroups int) *lmmWork {
	n, p := X.Dims()
	w := &lmmWork{
		X:     X,
		y:     y,
		group: group,
		ysum:  make([]float64, nGroups),
		gn:    make([]int, nGroups),
		gsum:  make([][]float64, nGroups),
	}
	for g := range w.gsum {
		w.gsum[g] = make([]float64, p)
	}
	for i := 0; i < n; i++ {
		g := group[i]
		w.gn[g]++
		w.ysum[g] += y[i]
		for j := 0; j < p; j++ {
			w.gsum[g][j] += X.At(i, j)
		}
	}
	w.xtx, w.xty = crossProducts(X, y)
	return w
}

// profile evaluates the deviance at a fixed variance ratio λ², solving the
// weighted normal equations (XᵀWX)β = XᵀWy with
// W_g = I − λ²/(1+n_gλ²)·11ᵀ per group.
func (w *lmmWork) profile(lambda2 float64) (float64, *lmmSolution, error) {
	n, p := w.X.Dims()

	a := mat.NewSymDense(p, nil)
	a.CopySym(w.xtx)
	b := make([]float64, p)
	copy(b, w.xty)

	var logdet float64
	shrink := make([]float64, len(w.gn))
	for g, ng := range w.gn {
		if ng == 0 {
			continue
		}
		c := lambda2 / (1 + float64(ng)*lambda2)
		shrink[g] = c
		logdet += math.Log(1 + float64(ng)*lambda2)
		sg := w.gsum[g]
		for i := 0; i < p; i++ {
			b[i] -= c * sg[i] * w.ysum[g]
			for j := i; j < p; j++ {
				a.SetSym(i, j, a.At(i, j)-c*sg[i]*sg[j])
			}
		}
	}

	sol := &lmmSolution{}
	if ok := sol.chol.Factorize(a); !ok {
		return 0, nil, fmt.Errorf("weighted normal equations not positive definite: %w", domain.ErrConvergence)
	}
	var betaVec mat.VecDense
	if err := sol.chol.SolveVecTo(&betaVec, mat.NewVecDense(p, b)); err != nil {
		return 0, nil, fmt.Errorf("weighted normal equations solve: %w", domain.ErrConvergence)
	}
	sol.beta = make([]float64, p)
	for i := range sol.beta {
		sol.beta[i] = betaVec.AtVec(i)
	}

	// rᵀWr from the raw residual sum of squares and per-group residual sums.
	var rr float64
	rsum := make([]float64, len(w.gn))
	for i := 0; i < n; i++ {
		var fit float64
		for j := 0; j < p; j++ {
			fit += w.X.At(i, j) * sol.beta[j]
		}
		r := w.y[i] - fit
		rr += r * r
		rsum[w.group[i]] += r
	}
	for g, c := range shrink {
		rr -= c * rsum[g] * rsum[g]
	}
	if rr < sigma2Floor {
		rr = sigma2Floor
	}
	sol.sigma2 = rr / float64(n)

	dev := float64(n)*(math.Log(2*math.Pi*sol.sigma2)+1) + logdet
	return dev, sol, nil
}
