package stats_test

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/michaelamann/Pitchfork/internal/domain"
	"github.com/michaelamann/Pitchfork/internal/stats"
)

func TestFitOLS_SimpleRegression(t *testing.T) {
	// y over x = 0..3 with symmetric residuals; closed-form least squares
	// gives slope 1.96, intercept 1.06.
	X := mat.NewDense(4, 2, []float64{
		1, 0,
		1, 1,
		1, 2,
		1, 3,
	})
	y := []float64{1.1, 2.9, 5.1, 6.9}

	fit, err := stats.FitOLS(X, y, []string{"(Intercept)", "x"})
	if err != nil {
		t.Fatalf("FitOLS: %v", err)
	}
	if math.Abs(fit.Beta[0]-1.06) > 1e-10 {
		t.Fatalf("intercept = %v, want 1.06", fit.Beta[0])
	}
	if math.Abs(fit.Beta[1]-1.96) > 1e-10 {
		t.Fatalf("slope = %v, want 1.96", fit.Beta[1])
	}
	if fit.NParams != 3 {
		t.Fatalf("NParams = %d, want 3 (two betas plus sigma2)", fit.NParams)
	}
	if fit.Tau2 != 0 {
		t.Fatalf("Tau2 = %v, want 0", fit.Tau2)
	}
	if fit.Sigma2 <= 0 {
		t.Fatalf("Sigma2 = %v", fit.Sigma2)
	}
	if math.IsInf(fit.LogLik, 0) || math.IsNaN(fit.LogLik) {
		t.Fatalf("LogLik = %v", fit.LogLik)
	}
}

func TestFitOLS_CollinearDesign(t *testing.T) {
	// duplicated column makes the normal equations singular
	X := mat.NewDense(6, 3, []float64{
		1, 1, 1,
		1, 2, 2,
		1, 3, 3,
		1, 4, 4,
		1, 5, 5,
		1, 6, 6,
	})
	y := []float64{1, 2, 3, 4, 5, 6}

	_, err := stats.FitOLS(X, y, []string{"(Intercept)", "a", "b"})
	if !errors.Is(err, domain.ErrConvergence) {
		t.Fatalf("err = %v, want ErrConvergence", err)
	}
}

func TestFitOLS_TooFewObservations(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 0, 1, 1, 1, 2})
	y := []float64{1, 2, 3}
	_, err := stats.FitOLS(X, y, []string{"(Intercept)", "x"})
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestCoefficients_WaldInterval(t *testing.T) {
	X := mat.NewDense(8, 2, []float64{
		1, 0, 1, 1, 1, 2, 1, 3,
		1, 4, 1, 5, 1, 6, 1, 7,
	})
	y := []float64{0.9, 2.1, 2.9, 4.1, 4.9, 6.1, 6.9, 8.1}
	fit, err := stats.FitOLS(X, y, []string{"(Intercept)", "x"})
	if err != nil {
		t.Fatalf("FitOLS: %v", err)
	}

	coefs := fit.Coefficients(0.95)
	if len(coefs) != 2 {
		t.Fatalf("coefs = %v", coefs)
	}
	for _, c := range coefs {
		if c.SE <= 0 {
			t.Fatalf("%s: SE = %v", c.Name, c.SE)
		}
		if c.Lower >= c.Estimate || c.Upper <= c.Estimate {
			t.Fatalf("%s: interval [%v, %v] does not bracket %v", c.Name, c.Lower, c.Upper, c.Estimate)
		}
		// 95% normal interval is estimate ± 1.959964·SE
		wantHalf := 1.959963984540054 * c.SE
		if math.Abs((c.Upper-c.Estimate)-wantHalf) > 1e-9 {
			t.Fatalf("%s: half-width = %v, want %v", c.Name, c.Upper-c.Estimate, wantHalf)
		}
	}
}
