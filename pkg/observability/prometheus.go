package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface on top of a Prometheus
// registry.
type Prometheus struct {
	Mutations         *prometheus.CounterVec
	TopologyNodes     prometheus.Gauge
	TopologyLinks     prometheus.Gauge
	LinkTransitions   *prometheus.CounterVec
	Generations       *prometheus.CounterVec
	GenerateDuration  prometheus.Histogram
	Validations       *prometheus.CounterVec
	Submissions       *prometheus.CounterVec
	SubmitDuration    prometheus.Histogram
	SubmitsInFlight   prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
	HTTPErrors        *prometheus.CounterVec
	HTTPRequestLength *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewPrometheus creates and registers all metrics on reg. A nil reg gets a
// fresh registry.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Prometheus{
		registry: reg,
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slicetopo_mutations_total",
			Help: "Graph mutations by operation",
		}, []string{"op"}),
		TopologyNodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "slicetopo_topology_nodes",
			Help: "Nodes in the topology after the last mutation",
		}),
		TopologyLinks: f.NewGauge(prometheus.GaugeOpts{
			Name: "slicetopo_topology_connections",
			Help: "Connections in the topology after the last mutation",
		}),
		LinkTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slicetopo_link_mode_transitions_total",
			Help: "Link-mode state transitions",
		}, []string{"from", "to"}),
		Generations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slicetopo_generations_total",
			Help: "Preset generations by preset and outcome",
		}, []string{"preset", "status"}),
		GenerateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "slicetopo_generation_duration_seconds",
			Help:    "Preset generation latency in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		Validations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slicetopo_validations_total",
			Help: "Validation passes by result",
		}, []string{"result"}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slicetopo_submissions_total",
			Help: "Slice Manager submissions by HTTP status",
		}, []string{"status"}),
		SubmitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "slicetopo_submission_duration_seconds",
			Help:    "Slice Manager submission latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		SubmitsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "slicetopo_submissions_in_flight",
			Help: "Submissions currently waiting for the Slice Manager",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slicetopo_http_client_requests_total",
			Help: "Outgoing HTTP requests by host and status",
		}, []string{"method", "host", "status"}),
		HTTPErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slicetopo_http_client_errors_total",
			Help: "Outgoing HTTP requests that failed without a response",
		}, []string{"method", "host"}),
		HTTPRequestLength: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slicetopo_http_client_request_duration_seconds",
			Help:    "Outgoing HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "host"}),
	}
}

// Registry returns the underlying Prometheus registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

func (p *Prometheus) OnMutation(_ context.Context, op string, nodes, connections int) {
	p.Mutations.WithLabelValues(op).Inc()
	p.TopologyNodes.Set(float64(nodes))
	p.TopologyLinks.Set(float64(connections))
}

func (p *Prometheus) OnLinkStateChange(_ context.Context, from, to string) {
	p.LinkTransitions.WithLabelValues(from, to).Inc()
}

func (p *Prometheus) OnGenerate(_ context.Context, preset string, _, _ int, d time.Duration, err error) {
	p.Generations.WithLabelValues(preset, outcome(err)).Inc()
	p.GenerateDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnValidate(_ context.Context, valid bool, _ int) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	p.Validations.WithLabelValues(result).Inc()
}

func (p *Prometheus) OnSubmitStart(context.Context, int, int) {
	p.SubmitsInFlight.Inc()
}

func (p *Prometheus) OnSubmitComplete(_ context.Context, status int, d time.Duration, _ error) {
	p.SubmitsInFlight.Dec()
	p.Submissions.WithLabelValues(statusLabel(status)).Inc()
	p.SubmitDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	p.HTTPRequests.WithLabelValues(method, host, statusLabel(status)).Inc()
	p.HTTPRequestLength.WithLabelValues(method, host).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, method, host, _ string, _ error) {
	p.HTTPErrors.WithLabelValues(method, host).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func statusLabel(code int) string {
	if code == 0 {
		return "none"
	}
	return strconv.Itoa(code)
}

// Install registers p as the editor, submission and HTTP hooks.
func (p *Prometheus) Install() {
	SetEditorHooks(p)
	SetSubmissionHooks(p)
	SetHTTPHooks(p)
}
