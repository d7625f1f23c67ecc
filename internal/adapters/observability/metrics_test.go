package observability_test

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/michaelamann/Pitchfork/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so counters are non-zero
	observability.ObserveDropped("multiple_genres", 3)
	observability.ObserveFit("interaction", nil, 12*time.Millisecond)
	observability.ObserveFit("additive", errors.New("boom"), time.Millisecond)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	if !strings.Contains(out, "pitchfork_records_dropped_total") {
		t.Fatalf("expected pitchfork_records_dropped_total in output")
	}
	if !strings.Contains(out, `pitchfork_model_fits_total{model="additive",status="failed"} 1`) {
		t.Fatalf("expected failed fit counter in output:\n%s", out)
	}
}

func TestServeExposesCollectors(t *testing.T) {
	// grab a free port for the listener
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	t.Setenv("METRICS_ADDR", addr)

	observability.ObserveDropped("missing_score", 2)
	observability.Serve()

	url := fmt.Sprintf("http://%s/metrics", addr)
	var out string
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			out = string(body)
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("metrics endpoint never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !strings.Contains(out, "pitchfork_records_dropped_total") {
		t.Fatalf("expected pitchfork_records_dropped_total in served output:\n%s", out)
	}
}
