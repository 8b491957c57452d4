package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/everline-data/internal/api"
	"github.com/rickgao/everline-data/internal/model"
)

// Poll results used as the "result" label.
const (
	ResultOK        = "ok"
	ResultTransport = "transport"
	ResultStatus    = "status"
	ResultParse     = "parse"
	ResultOther     = "other"
)

// Metrics owns a private registry and the tracker's collectors.
type Metrics struct {
	registry *prometheus.Registry

	polls         *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	trains        *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge
	requests      *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "everline_polls_total",
			Help: "Upstream fetch attempts by result.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "everline_fetch_duration_seconds",
			Help:    "Time spent fetching and decoding the upstream train list.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 3, 5},
		}),
		trains: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "everline_snapshot_trains",
			Help: "Trains in the latest snapshot by direction.",
		}, []string{"direction"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "everline_last_success_timestamp_seconds",
			Help: "Unix time of the latest successful fetch.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "everline_http_requests_total",
			Help: "HTTP API requests by route and status code.",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		m.polls,
		m.fetchDuration,
		m.trains,
		m.lastSuccess,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveFetch records one poll attempt.
func (m *Metrics) ObserveFetch(d time.Duration, snap *model.Snapshot, err error) {
	m.fetchDuration.Observe(d.Seconds())
	m.polls.WithLabelValues(Classify(err)).Inc()
	if err != nil || snap == nil {
		return
	}

	var up, down int
	for _, r := range snap.Records {
		if r.Direction == model.Up {
			up++
		} else {
			down++
		}
	}
	m.trains.WithLabelValues(model.Up.String()).Set(float64(up))
	m.trains.WithLabelValues(model.Down.String()).Set(float64(down))
	m.lastSuccess.Set(float64(snap.FetchedAt.UnixNano()) / 1e9)
}

// ObserveRequest counts one HTTP API response.
func (m *Metrics) ObserveRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler returns the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Classify maps a fetch error to a result label.
func Classify(err error) string {
	if err == nil {
		return ResultOK
	}
	var (
		transportErr *api.TransportError
		statusErr    *api.StatusError
		parseErr     *api.ParseError
	)
	switch {
	case errors.As(err, &transportErr):
		return ResultTransport
	case errors.As(err, &statusErr):
		return ResultStatus
	case errors.As(err, &parseErr):
		return ResultParse
	default:
		return ResultOther
	}
}
