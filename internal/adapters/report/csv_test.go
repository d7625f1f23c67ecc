package report_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/michaelamann/Pitchfork/internal/adapters/report"
	"github.com/michaelamann/Pitchfork/internal/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestCSVSink_WriteAll(t *testing.T) {
	dir := t.TempDir()
	sink := report.NewCSVSink(dir)

	mix := []domain.GenreYearShare{
		{Year: 2010, Genre: "rock", Count: 2, Share: 0.5},
		{Year: 2010, Genre: "pop", Count: 2, Share: 0.5},
	}
	byYear := []domain.YearLowScore{{Year: 2010, N: 10, NLow: 3, PercentLow: 30}}
	byGenre := []domain.GenreLowScore{{Genre: "rock", N: 10, NLow: 3, PercentLow: 30}}

	if err := sink.WriteAll(sampleComparison(), mix, byYear, byGenre); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	ranking := readCSV(t, filepath.Join(dir, "model_ranking.csv"))
	if len(ranking) != 3 { // header + two models
		t.Fatalf("ranking rows = %d", len(ranking))
	}
	if ranking[0][0] != "rank" || ranking[0][5] != "aicc" {
		t.Fatalf("ranking header = %v", ranking[0])
	}
	if ranking[1][1] != "interaction" {
		t.Fatalf("best model = %v", ranking[1])
	}

	coefs := readCSV(t, filepath.Join(dir, "genre_coefficients.csv"))
	if len(coefs) != 2 || coefs[1][0] != "rock" {
		t.Fatalf("coefficient rows = %v", coefs)
	}
	if coefs[1][4] != "0.4" {
		t.Fatalf("rock slope cell = %q", coefs[1][4])
	}

	low := readCSV(t, filepath.Join(dir, "low_scores.csv"))
	if len(low) != 3 {
		t.Fatalf("low score rows = %v", low)
	}
	if low[1][0] != "year" || low[1][4] != "30" {
		t.Fatalf("year low row = %v", low[1])
	}
	if low[2][0] != "genre" || low[2][1] != "rock" {
		t.Fatalf("genre low row = %v", low[2])
	}

	mixRows := readCSV(t, filepath.Join(dir, "genre_mix.csv"))
	if len(mixRows) != 3 || mixRows[1][3] != "0.5" {
		t.Fatalf("mix rows = %v", mixRows)
	}
}
