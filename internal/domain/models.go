package domain

import "strings"

type ModelID string

const (
	ModelInteraction ModelID = "interaction"
	ModelAdditive    ModelID = "additive"
	ModelGenreOnly   ModelID = "genre-only"
	ModelYearOnly    ModelID = "year-only"
	ModelNull        ModelID = "null"
	ModelFixedOnly   ModelID = "fixed-effects"
)

// ModelSpec declares one candidate in the nested model family. Terms are
// flags so the ranking logic iterates over a declared list instead of six
// independently named fits.
type ModelSpec struct {
	ID              ModelID
	Genre           bool // genre fixed effect
	Year            bool // standardized publication-year fixed effect
	Interaction     bool // genre × year
	RandomIntercept bool // per-author (1|author)
}

// ModelSpecs is the fixed candidate family, most to least complex, plus the
// fixed-effects-only reference fit. Every entry must be fitted (or its
// failure reported) on every run.
var ModelSpecs = []ModelSpec{
	{ID: ModelInteraction, Genre: true, Year: true, Interaction: true, RandomIntercept: true},
	{ID: ModelAdditive, Genre: true, Year: true, RandomIntercept: true},
	{ID: ModelGenreOnly, Genre: true, RandomIntercept: true},
	{ID: ModelYearOnly, Year: true, RandomIntercept: true},
	{ID: ModelNull, RandomIntercept: true},
	{ID: ModelFixedOnly, Genre: true, Year: true, Interaction: true},
}

// Formula renders the model in lme4-style notation for logs and reports.
func (m ModelSpec) Formula() string {
	var terms []string
	switch {
	case m.Interaction:
		terms = append(terms, "genre * year_z")
	case m.Genre && m.Year:
		terms = append(terms, "genre", "year_z")
	case m.Genre:
		terms = append(terms, "genre")
	case m.Year:
		terms = append(terms, "year_z")
	default:
		terms = append(terms, "1")
	}
	if m.RandomIntercept {
		terms = append(terms, "(1|author)")
	}
	return "score ~ " + strings.Join(terms, " + ")
}

// Coefficient is a single estimate with its Wald interval.
type Coefficient struct {
	Name     string
	Estimate float64
	SE       float64
	Lower    float64
	Upper    float64
}

// FitResult is one successfully fitted model.
type FitResult struct {
	Spec          ModelSpec
	NObs          int
	NGroups       int // distinct authors; 0 for the fixed-effects fit
	NParams       int // estimated parameters including variance components
	LogLik        float64
	AICc          float64
	Sigma2        float64 // residual variance
	Tau2          float64 // random-intercept variance
	R2Marginal    float64
	R2Conditional float64
	Coefs         []Coefficient
}

// FailedFit records a model excluded from the ranking, by name.
type FailedFit struct {
	Spec ModelSpec
	Err  error
}

// RankedModel is one row of the comparison table.
type RankedModel struct {
	Rank      int
	Fit       FitResult
	DeltaAICc float64
}

// LRTResult is a likelihood-ratio test of the random intercept against the
// fixed-effects-only fit (boundary-corrected).
type LRTResult struct {
	Stat   float64
	DF     int
	PValue float64
}

// GenreTrend carries the per-genre intercept and year slope used for
// genre × year trend plots.
type GenreTrend struct {
	Genre     string
	Intercept Coefficient
	Slope     Coefficient
}

// Comparison is the full output of the model comparison engine.
type Comparison struct {
	Ranking  []RankedModel
	Failures []FailedFit
	Selected FitResult

	// InteractionBeatsNull states explicitly whether the interaction model's
	// criterion improved on the null's; Verdict is the human-readable line.
	InteractionBeatsNull bool
	Verdict              string

	RandomInterceptLRT *LRTResult
	Trends             []GenreTrend
	Excluded           []GenreExclusion

	YearMean float64
	YearSD   float64
}
