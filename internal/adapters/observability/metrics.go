package observability

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	RowsLoaded = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "pitchfork", Name: "rows_loaded_total", Help: "Joined dataset rows loaded."},
	)
	RecordsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pitchfork", Name: "records_dropped_total", Help: "Records dropped during cleaning."},
		[]string{"reason"}, // reason: missing_genre|multiple_genres|missing_score|missing_author|missing_year|past_cutoff|genre_screen
	)
	ModelFits = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pitchfork", Name: "model_fits_total", Help: "Model fit attempts."},
		[]string{"model", "status"}, // status: ok|failed
	)
	FitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pitchfork", Name: "model_fit_duration_seconds",
			Help:    "Model fit duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
)

// Serve exposes /metrics while the analysis runs. METRICS_ADDR empty
// disables it, which is the default for a one-shot run.
func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(InitRegistry()))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(RowsLoaded, RecordsDropped, ModelFits, FitDuration)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveDropped(reason string, n int) {
	if n <= 0 {
		return
	}
	RecordsDropped.WithLabelValues(reason).Add(float64(n))
}

func ObserveFit(model string, err error, dur time.Duration) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	ModelFits.WithLabelValues(model, status).Inc()
	FitDuration.WithLabelValues(model).Observe(dur.Seconds())
}
