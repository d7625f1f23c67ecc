package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/michaelamann/Pitchfork/internal/domain"
)

// AICc is the small-sample-corrected Akaike criterion. Lower is better.
// Degenerate n (n ≤ k+1) yields +Inf so the model can never rank first.
func AICc(logLik float64, k, n int) float64 {
	aic := -2*logLik + 2*float64(k)
	denom := float64(n - k - 1)
	if denom <= 0 {
		return math.Inf(1)
	}
	return aic + 2*float64(k)*float64(k+1)/denom
}

// R2 is the Nakagawa–Schielzeth variance decomposition: marginal from fixed
// effects alone, conditional including the random intercept.
func R2(f *Fit) (marginal, conditional float64) {
	total := f.FittedVariance + f.Tau2 + f.Sigma2
	if total <= 0 {
		return 0, 0
	}
	return f.FittedVariance / total, (f.FittedVariance + f.Tau2) / total
}

// RandomInterceptLRT tests whether the random intercept is justified against
// the fixed-effects-only fit. τ² = 0 sits on the parameter boundary, so the
// null distribution is the ½χ²₀ + ½χ²₁ mixture.
func RandomInterceptLRT(mixed, fixed *Fit) domain.LRTResult {
	stat := fixed.Deviance() - mixed.Deviance()
	if stat < 0 {
		stat = 0
	}
	p := 0.5 * distuv.ChiSquared{K: 1}.Survival(stat)
	return domain.LRTResult{Stat: stat, DF: 1, PValue: p}
}

func waldQuantile(level float64) float64 {
	return distuv.UnitNormal.Quantile(0.5 + level/2)
}
