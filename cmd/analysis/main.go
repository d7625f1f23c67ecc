package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/michaelamann/Pitchfork/internal/adapters/observability"
	"github.com/michaelamann/Pitchfork/internal/adapters/report"
	"github.com/michaelamann/Pitchfork/internal/app"
	"github.com/michaelamann/Pitchfork/internal/shared"
	sqliterepo "github.com/michaelamann/Pitchfork/internal/storage/sqlite"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	log.Info().
		Str("dataset", cfg.DatasetPath).
		Int("max_pub_year", cfg.MaxPubYear).
		Float64("low_score_threshold", cfg.LowScoreThreshold).
		Int("fit_workers", cfg.FitWorkers).
		Msg("analysis starting")

	db, err := sql.Open("sqlite", cfg.DatasetPath)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("dataset opened")

	repo := sqliterepo.New(db)
	cleaner := app.NewCleanService(repo, app.CleanOptions{MaxPubYear: cfg.MaxPubYear})
	aggregator := app.NewAggregateService(cfg.LowScoreThreshold)
	comparer := app.NewCompareService(cfg.FitWorkers, cfg.ConfidenceLevel, cfg.MinGenreAuthors, cfg.MinGenreObs)

	reviews, cleanRep, err := cleaner.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("cleaning failed")
	}

	mix := aggregator.GenreMix(reviews)
	lowByYear := aggregator.LowScoresByYear(reviews)
	lowByGenre := aggregator.LowScoresByGenre(reviews)

	cmp, err := comparer.Run(ctx, reviews)
	if err != nil {
		log.Fatal().Err(err).Msg("model comparison failed")
	}

	r := report.NewRenderer(os.Stdout)
	r.CleanReport(cleanRep)
	r.GenreMix(mix)
	r.LowScores(lowByYear, lowByGenre, cfg.LowScoreThreshold)
	r.Comparison(cmp)

	if err := report.NewCSVSink(cfg.OutputDir).WriteAll(cmp, mix, lowByYear, lowByGenre); err != nil {
		log.Fatal().Err(err).Msg("write output tables failed")
	}
	log.Info().Str("dir", cfg.OutputDir).Msg("analysis completed")
}
