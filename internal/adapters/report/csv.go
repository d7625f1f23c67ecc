package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/michaelamann/Pitchfork/internal/domain"
)

// CSVSink writes the result tables as CSV files for downstream plotting.
type CSVSink struct{ dir string }

func NewCSVSink(dir string) *CSVSink { return &CSVSink{dir: dir} }

func (s *CSVSink) WriteAll(c domain.Comparison, mix []domain.GenreYearShare, byYear []domain.YearLowScore, byGenre []domain.GenreLowScore) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ranking := [][]string{{"rank", "model", "formula", "k", "loglik", "aicc", "delta_aicc", "r2_marginal", "r2_conditional"}}
	for _, rm := range c.Ranking {
		ranking = append(ranking, []string{
			strconv.Itoa(rm.Rank),
			string(rm.Fit.Spec.ID),
			rm.Fit.Spec.Formula(),
			strconv.Itoa(rm.Fit.NParams),
			g(rm.Fit.LogLik),
			g(rm.Fit.AICc),
			g(rm.DeltaAICc),
			g(rm.Fit.R2Marginal),
			g(rm.Fit.R2Conditional),
		})
	}
	if err := s.write("model_ranking.csv", ranking); err != nil {
		return err
	}

	coefs := [][]string{{"genre", "intercept", "intercept_lower", "intercept_upper", "year_slope", "slope_lower", "slope_upper"}}
	for _, tr := range c.Trends {
		coefs = append(coefs, []string{
			tr.Genre,
			g(tr.Intercept.Estimate), g(tr.Intercept.Lower), g(tr.Intercept.Upper),
			g(tr.Slope.Estimate), g(tr.Slope.Lower), g(tr.Slope.Upper),
		})
	}
	if err := s.write("genre_coefficients.csv", coefs); err != nil {
		return err
	}

	mixRows := [][]string{{"year", "genre", "count", "share"}}
	for _, m := range mix {
		mixRows = append(mixRows, []string{strconv.Itoa(m.Year), m.Genre, strconv.Itoa(m.Count), g(m.Share)})
	}
	if err := s.write("genre_mix.csv", mixRows); err != nil {
		return err
	}

	lowRows := [][]string{{"kind", "key", "n", "n_low", "percent_low"}}
	for _, y := range byYear {
		lowRows = append(lowRows, []string{"year", strconv.Itoa(y.Year), strconv.Itoa(y.N), strconv.Itoa(y.NLow), g(y.PercentLow)})
	}
	for _, gg := range byGenre {
		lowRows = append(lowRows, []string{"genre", gg.Genre, strconv.Itoa(gg.N), strconv.Itoa(gg.NLow), g(gg.PercentLow)})
	}
	return s.write("low_scores.csv", lowRows)
}

func (s *CSVSink) write(name string, rows [][]string) error {
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

// g keeps full float precision in the CSVs; the rendered tables round instead.
func g(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
