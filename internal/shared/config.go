package shared

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv            string
	DatasetPath       string
	OutputDir         string
	MetricsAddr       string
	LowScoreThreshold float64
	MaxPubYear        int
	MinGenreAuthors   int
	MinGenreObs       int
	FitWorkers        int
	ConfidenceLevel   float64
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		DatasetPath:       env("DATASET_PATH", "pitchfork.sqlite"),
		OutputDir:         env("OUTPUT_DIR", "out"),
		MetricsAddr:       env("METRICS_ADDR", ""),
		LowScoreThreshold: atof("LOW_SCORE_THRESHOLD", 4.0),
		MaxPubYear:        atoi("MAX_PUB_YEAR", 2017),
		MinGenreAuthors:   atoi("MIN_GENRE_AUTHORS", 2),
		MinGenreObs:       atoi("MIN_GENRE_OBS", 2),
		FitWorkers:        atoi("FIT_WORKERS", 4),
		ConfidenceLevel:   atof("CONFIDENCE_LEVEL", 0.95),
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		log.Warn().Float64("level", c.ConfidenceLevel).Msg("CONFIDENCE_LEVEL out of (0,1); using 0.95")
		c.ConfidenceLevel = 0.95
	}
	if c.FitWorkers < 1 {
		c.FitWorkers = 1
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
