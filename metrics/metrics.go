// Package metrics exposes Prometheus metrics for the attester on a
// dedicated listen address, separate from the report API.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NillionNetwork/nilcc-attester/common"
)

var registry = prometheus.NewRegistry()

var (
	// ReportsGenerated counts hardware reports generated, labeled by outcome.
	ReportsGenerated = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Name:      "reports_generated_total",
		Help:      "Hardware attestation reports generated.",
	}, []string{"result"})

	// GPUAttestations counts gpu-attester invocations, labeled by outcome.
	GPUAttestations = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Name:      "gpu_attestations_total",
		Help:      "GPU attestation token requests.",
	}, []string{"result"})
)

func init() {
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// MetricsServer serves the Prometheus registry over HTTP.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server listening on addr.
func New(addr string) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &MetricsServer{
		srv: &http.Server{Addr: addr, Handler: mux},
	}, nil
}

func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
