package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/yungbote/coursekit-backend/internal/platform/envutil"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/realtime"
)

// Metrics holds the process-wide counters exposed at /metrics. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests   *CounterVec
	apiLatency    *HistogramVec
	apiInflight   *Gauge
	events        *CounterVec
	bannerFlushes *CounterVec
	bannerFlushed *CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the metrics registry when METRICS_ENABLED is set.
func Init(log *logger.Logger) *Metrics {
	if !envutil.Bool("METRICS_ENABLED", false, log) {
		return nil
	}
	initOnce.Do(func() { instance = newMetrics() })
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("ck_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"ck_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight:   NewGauge("ck_api_inflight_requests", "In-flight API requests."),
		events:        NewCounterVec("ck_events_published_total", "Domain events published by name/result.", []string{"event", "result"}),
		bannerFlushes: NewCounterVec("ck_banner_flush_runs_total", "Banner stat flush runs by result.", []string{"result"}),
		bannerFlushed: NewCounterVec("ck_banner_flush_banners_total", "Banners updated by stat flushes.", nil),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, s := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight, m.events, m.bannerFlushes, m.bannerFlushed,
	} {
		if err := s.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveBannerFlush(banners int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.bannerFlushes.Inc(result)
	m.bannerFlushed.Add(float64(banners))
}

type countingPublisher struct {
	next realtime.Publisher
	m    *Metrics
}

// CountingPublisher counts every event passed to next by name and result.
func CountingPublisher(next realtime.Publisher, m *Metrics) realtime.Publisher {
	if m == nil {
		return next
	}
	return &countingPublisher{next: next, m: m}
}

func (p *countingPublisher) Publish(ctx context.Context, ev realtime.Event) error {
	err := p.next.Publish(ctx, ev)
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.m.events.Inc(ev.Event, result)
	return err
}
