// Package metrics instruments the server with prometheus collectors. Every
// Recorder owns its registry; a nil *Recorder records nothing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironsheep/histopath-mcp/internal/logging"
)

const namespace = "histopath"

// Tool call outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Recorder holds the server's collectors.
type Recorder struct {
	registry *prometheus.Registry

	toolCalls   *prometheus.CounterVec
	edits       *prometheus.CounterVec
	annotations *prometheus.GaugeVec
	analysis    *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with a fresh registry. withRuntime adds the
// Go and process collectors.
func NewRecorder(withRuntime bool) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "MCP tool calls by tool and status.",
		}, []string{"tool", "status"}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edits_total",
			Help:      "Annotation edits by kind.",
		}, []string{"kind"}),
		annotations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "annotations",
			Help:      "Current annotation count by class.",
		}, []string{"class"}),
		analysis: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent computing spatial analyses.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"analysis"}),
	}
	r.registry.MustRegister(r.toolCalls, r.edits, r.annotations, r.analysis)
	if withRuntime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		)
	}
	return r
}

// ToolCall counts one tool invocation.
func (r *Recorder) ToolCall(tool string, err error) {
	if r == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.toolCalls.WithLabelValues(tool, status).Inc()
}

// Edit counts one annotation edit ("add", "erase", "undo", "redo", "clear", "autocount").
func (r *Recorder) Edit(kind string) {
	if r == nil {
		return
	}
	r.edits.WithLabelValues(kind).Inc()
}

// SetAnnotations publishes the current count of class.
func (r *Recorder) SetAnnotations(class string, n int) {
	if r == nil {
		return
	}
	r.annotations.WithLabelValues(class).Set(float64(n))
}

// ObserveAnalysis records how long an analysis took.
func (r *Recorder) ObserveAnalysis(analysis string, d time.Duration) {
	if r == nil {
		return
	}
	r.analysis.WithLabelValues(analysis).Observe(d.Seconds())
}

// Time returns a func that records the elapsed time under analysis when called.
func (r *Recorder) Time(analysis string) func() {
	start := time.Now()
	return func() { r.ObserveAnalysis(analysis, time.Since(start)) }
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Serve exposes the metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr, path string, log logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(path, r.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics endpoint listening", logging.String("addr", addr), logging.String("path", path))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
