package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/michaelamann/Pitchfork/internal/domain"
)

// Renderer writes the human-readable result tables.
type Renderer struct{ w io.Writer }

func NewRenderer(w io.Writer) *Renderer { return &Renderer{w: w} }

func (r *Renderer) CleanReport(rep domain.CleanReport) {
	fmt.Fprintln(r.w, "Cleaning summary")
	t := tablewriter.NewWriter(r.w)
	t.SetHeader([]string{"Stage", "Count"})
	t.Append([]string{"joined rows", strconv.Itoa(rep.RowsIn)})
	t.Append([]string{"distinct reviews", strconv.Itoa(rep.ReviewsIn)})
	t.Append([]string{"dropped: missing genre", strconv.Itoa(rep.MissingGenre)})
	t.Append([]string{"dropped: multiple genres", strconv.Itoa(rep.MultipleGenres)})
	t.Append([]string{"dropped: missing score", strconv.Itoa(rep.MissingScore)})
	t.Append([]string{"dropped: missing author", strconv.Itoa(rep.MissingAuthor)})
	t.Append([]string{"dropped: missing year", strconv.Itoa(rep.MissingYear)})
	t.Append([]string{"dropped: past cutoff", strconv.Itoa(rep.PastCutoff)})
	t.Append([]string{"kept", strconv.Itoa(rep.Kept)})
	t.Render()
}

func (r *Renderer) Comparison(c domain.Comparison) {
	if len(c.Excluded) > 0 {
		fmt.Fprintln(r.w, "Genres excluded from modeling")
		t := tablewriter.NewWriter(r.w)
		t.SetHeader([]string{"Genre", "Authors", "Obs", "Reason"})
		for _, ex := range c.Excluded {
			t.Append([]string{ex.Genre, strconv.Itoa(ex.Authors), strconv.Itoa(ex.Obs), ex.Reason})
		}
		t.Render()
	}

	fmt.Fprintln(r.w, "Model ranking (lower AICc is better)")
	t := tablewriter.NewWriter(r.w)
	t.SetAutoWrapText(false)
	t.SetHeader([]string{"Rank", "Model", "Formula", "K", "LogLik", "AICc", "dAICc", "R2m", "R2c"})
	for _, rm := range c.Ranking {
		t.Append([]string{
			strconv.Itoa(rm.Rank),
			string(rm.Fit.Spec.ID),
			rm.Fit.Spec.Formula(),
			strconv.Itoa(rm.Fit.NParams),
			f2(rm.Fit.LogLik),
			f2(rm.Fit.AICc),
			f2(rm.DeltaAICc),
			f3(rm.Fit.R2Marginal),
			f3(rm.Fit.R2Conditional),
		})
	}
	t.Render()

	for _, ff := range c.Failures {
		fmt.Fprintf(r.w, "excluded from ranking: %v\n", ff.Err)
	}
	fmt.Fprintln(r.w, c.Verdict)

	if c.RandomInterceptLRT != nil {
		lrt := c.RandomInterceptLRT
		fmt.Fprintf(r.w, "random intercept LRT: chi2(%d) = %.3f, p = %.4g (boundary-corrected)\n",
			lrt.DF, lrt.Stat, lrt.PValue)
	}

	if len(c.Trends) > 0 {
		fmt.Fprintf(r.w, "Per-genre trends (year_z standardized: mean %.1f, sd %.2f)\n", c.YearMean, c.YearSD)
		tt := tablewriter.NewWriter(r.w)
		tt.SetHeader([]string{"Genre", "Intercept", "CI", "Year slope", "CI"})
		for _, tr := range c.Trends {
			tt.Append([]string{
				tr.Genre,
				f3(tr.Intercept.Estimate),
				ci(tr.Intercept),
				f3(tr.Slope.Estimate),
				ci(tr.Slope),
			})
		}
		tt.Render()
	}
}

func (r *Renderer) GenreMix(mix []domain.GenreYearShare) {
	fmt.Fprintln(r.w, "Genre mix by year")
	t := tablewriter.NewWriter(r.w)
	t.SetHeader([]string{"Year", "Genre", "Count", "Share"})
	for _, m := range mix {
		t.Append([]string{strconv.Itoa(m.Year), m.Genre, strconv.Itoa(m.Count), f3(m.Share)})
	}
	t.Render()
}

func (r *Renderer) LowScores(byYear []domain.YearLowScore, byGenre []domain.GenreLowScore, threshold float64) {
	fmt.Fprintf(r.w, "Reviews scoring below %.1f\n", threshold)
	t := tablewriter.NewWriter(r.w)
	t.SetHeader([]string{"Year", "N", "Low", "% Low"})
	for _, y := range byYear {
		t.Append([]string{strconv.Itoa(y.Year), strconv.Itoa(y.N), strconv.Itoa(y.NLow), f1(y.PercentLow)})
	}
	t.Render()

	t = tablewriter.NewWriter(r.w)
	t.SetHeader([]string{"Genre", "N", "Low", "% Low"})
	for _, g := range byGenre {
		t.Append([]string{g.Genre, strconv.Itoa(g.N), strconv.Itoa(g.NLow), f1(g.PercentLow)})
	}
	t.Render()
}

func ci(c domain.Coefficient) string {
	return fmt.Sprintf("[%s, %s]", f3(c.Lower), f3(c.Upper))
}

func f1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func f3(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }
