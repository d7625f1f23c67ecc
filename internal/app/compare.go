package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/michaelamann/Pitchfork/internal/adapters/observability"
	"github.com/michaelamann/Pitchfork/internal/domain"
	"github.com/michaelamann/Pitchfork/internal/stats"
)

// CompareService is the model comparison engine: it fits the declared
// candidate family over the screened dataset and ranks the successful fits
// by AICc.
type CompareService struct {
	workers    int
	level      float64
	minAuthors int
	minObs     int
}

func NewCompareService(workers int, confidenceLevel float64, minGenreAuthors, minGenreObs int) *CompareService {
	if workers < 1 {
		workers = 1
	}
	return &CompareService{
		workers:    workers,
		level:      confidenceLevel,
		minAuthors: minGenreAuthors,
		minObs:     minGenreObs,
	}
}

// Run screens genres, fits every candidate in domain.ModelSpecs, and builds
// the comparison. Individual fit failures are reported by model name and
// excluded from the ranking; only a missing null model fails the run.
func (s *CompareService) Run(ctx context.Context, reviews []domain.Review) (domain.Comparison, error) {
	screened, excluded := s.screenGenres(reviews)
	for _, ex := range excluded {
		log.Warn().
			Str("genre", ex.Genre).
			Int("authors", ex.Authors).
			Int("obs", ex.Obs).
			Str("reason", ex.Reason).
			Msg("genre excluded from modeling")
	}

	frame, err := stats.NewFrame(screened)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("build modeling frame: %w", err)
	}
	log.Info().
		Int("obs", frame.NObs()).
		Int("authors", frame.NGroups()).
		Int("genres", len(frame.GenreLevels)).
		Float64("year_mean", frame.YearMean).
		Float64("year_sd", frame.YearSD).
		Msg("modeling frame ready")

	// Fits are independent over the read-only frame; bound the parallelism.
	fits := make([]*stats.Fit, len(domain.ModelSpecs))
	errs := make([]error, len(domain.ModelSpecs))
	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup
	for i, spec := range domain.ModelSpecs {
		if err := sem.Acquire(ctx, 1); err != nil {
			return domain.Comparison{}, fmt.Errorf("fit scheduling: %w", err)
		}
		wg.Add(1)
		go func(i int, spec domain.ModelSpec) {
			defer wg.Done()
			defer sem.Release(1)
			fits[i], errs[i] = s.fitOne(frame, spec)
		}(i, spec)
	}
	wg.Wait()

	cmp := domain.Comparison{
		Excluded: excluded,
		YearMean: frame.YearMean,
		YearSD:   frame.YearSD,
	}

	byID := map[domain.ModelID]*stats.Fit{}
	var ranked []domain.RankedModel
	for i, spec := range domain.ModelSpecs {
		if errs[i] != nil {
			cmp.Failures = append(cmp.Failures, domain.FailedFit{
				Spec: spec,
				Err:  fmt.Errorf("%s: %w", spec.ID, errs[i]),
			})
			continue
		}
		f := fits[i]
		byID[spec.ID] = f
		r2m, r2c := stats.R2(f)
		ranked = append(ranked, domain.RankedModel{
			Fit: domain.FitResult{
				Spec:          spec,
				NObs:          f.NObs,
				NGroups:       f.NGroups,
				NParams:       f.NParams,
				LogLik:        f.LogLik,
				AICc:          stats.AICc(f.LogLik, f.NParams, f.NObs),
				Sigma2:        f.Sigma2,
				Tau2:          f.Tau2,
				R2Marginal:    r2m,
				R2Conditional: r2c,
				Coefs:         f.Coefficients(s.level),
			},
		})
	}

	if _, ok := byID[domain.ModelNull]; !ok {
		// The ranking must always include the null baseline.
		return domain.Comparison{}, fmt.Errorf("null model fit failed: %w", errAt(errs, domain.ModelNull))
	}

	rankOrder := specOrder()
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i].Fit, ranked[j].Fit
		if a.AICc != b.AICc {
			return a.AICc < b.AICc
		}
		if a.NParams != b.NParams {
			return a.NParams < b.NParams // tie toward the simpler model
		}
		return rankOrder[a.Spec.ID] > rankOrder[b.Spec.ID]
	})
	best := ranked[0].Fit.AICc
	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].DeltaAICc = ranked[i].Fit.AICc - best
	}
	cmp.Ranking = ranked
	cmp.Selected = ranked[0].Fit

	s.verdict(&cmp)

	if mixed, ok := byID[domain.ModelInteraction]; ok {
		if fixed, ok := byID[domain.ModelFixedOnly]; ok {
			lrt := stats.RandomInterceptLRT(mixed, fixed)
			cmp.RandomInterceptLRT = &lrt
		}
	}

	for _, id := range []domain.ModelID{domain.ModelInteraction, domain.ModelAdditive} {
		if f, ok := byID[id]; ok {
			trends, terr := stats.GenreTrends(f, frame.GenreLevels, s.level)
			if terr != nil {
				log.Warn().Err(terr).Str("model", string(id)).Msg("genre trends unavailable")
				continue
			}
			cmp.Trends = trends
			break
		}
	}

	return cmp, nil
}

func (s *CompareService) fitOne(frame *stats.Frame, spec domain.ModelSpec) (*stats.Fit, error) {
	X, names := frame.Design(spec)
	start := time.Now()
	var fit *stats.Fit
	var err error
	if spec.RandomIntercept {
		fit, err = stats.FitLMM(X, frame.Score, frame.Group, frame.NGroups(), names)
	} else {
		fit, err = stats.FitOLS(X, frame.Score, names)
	}
	dur := time.Since(start)
	observability.ObserveFit(string(spec.ID), err, dur)
	if err != nil {
		log.Warn().Err(err).Str("model", string(spec.ID)).Str("formula", spec.Formula()).Msg("model fit failed")
		return nil, err
	}
	log.Info().
		Str("model", string(spec.ID)).
		Str("formula", spec.Formula()).
		Float64("loglik", fit.LogLik).
		Dur("took", dur).
		Msg("model fitted")
	return fit, nil
}

// verdict states explicitly how the interaction model compares to the null;
// the complex model is never picked silently.
func (s *CompareService) verdict(cmp *domain.Comparison) {
	var interaction, null *domain.RankedModel
	for i := range cmp.Ranking {
		switch cmp.Ranking[i].Fit.Spec.ID {
		case domain.ModelInteraction:
			interaction = &cmp.Ranking[i]
		case domain.ModelNull:
			null = &cmp.Ranking[i]
		}
	}
	if interaction == nil {
		cmp.Verdict = "interaction model failed to fit; null model retained as baseline"
		return
	}
	delta := null.Fit.AICc - interaction.Fit.AICc
	if interaction.Fit.AICc < null.Fit.AICc {
		cmp.InteractionBeatsNull = true
		cmp.Verdict = fmt.Sprintf("genre-by-year interaction improves on the null model (AICc lower by %.2f)", delta)
		return
	}
	cmp.Verdict = fmt.Sprintf("no support for the genre-by-year interaction over the null model (AICc higher by %.2f)", -delta)
}

// screenGenres removes genre levels whose random-intercept variance cannot
// be estimated and reports them by name.
func (s *CompareService) screenGenres(reviews []domain.Review) ([]domain.Review, []domain.GenreExclusion) {
	obs := map[string]int{}
	authors := map[string]map[string]struct{}{}
	for _, r := range reviews {
		obs[r.Genre]++
		if authors[r.Genre] == nil {
			authors[r.Genre] = map[string]struct{}{}
		}
		authors[r.Genre][r.Author] = struct{}{}
	}

	drop := map[string]domain.GenreExclusion{}
	for g, n := range obs {
		na := len(authors[g])
		switch {
		case na < s.minAuthors:
			drop[g] = domain.GenreExclusion{
				Genre: g, Authors: na, Obs: n,
				Reason: fmt.Sprintf("fewer than %d distinct authors", s.minAuthors),
			}
		case n < s.minObs:
			drop[g] = domain.GenreExclusion{
				Genre: g, Authors: na, Obs: n,
				Reason: fmt.Sprintf("fewer than %d observations", s.minObs),
			}
		}
	}
	if len(drop) == 0 {
		return reviews, nil
	}

	kept := make([]domain.Review, 0, len(reviews))
	dropped := 0
	for _, r := range reviews {
		if _, ok := drop[r.Genre]; ok {
			dropped++
			continue
		}
		kept = append(kept, r)
	}
	observability.ObserveDropped("genre_screen", dropped)

	excluded := make([]domain.GenreExclusion, 0, len(drop))
	for _, ex := range drop {
		excluded = append(excluded, ex)
	}
	sort.Slice(excluded, func(i, j int) bool { return excluded[i].Genre < excluded[j].Genre })
	return kept, excluded
}

func specOrder() map[domain.ModelID]int {
	m := make(map[domain.ModelID]int, len(domain.ModelSpecs))
	for i, s := range domain.ModelSpecs {
		m[s.ID] = i
	}
	return m
}

func errAt(errs []error, id domain.ModelID) error {
	for i, s := range domain.ModelSpecs {
		if s.ID == id {
			return errs[i]
		}
	}
	return nil
}
