package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/realtime"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key=abc , bad, x= ,team=core")
	if len(got) != 2 || got["api-key"] != "abc" || got["team"] != "core" {
		t.Fatalf("unexpected headers: %v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty input should give nil")
	}
}

func TestClampRatio(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0.25: 0.25, 3: 1} {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): want=%v got=%v", in, want, got)
		}
	}
}

func TestInitOTelDisabledIsNoop(t *testing.T) {
	shutdown := InitOTel(context.Background(), logger.Nop(), OtelConfig{})
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestWritePrometheus(t *testing.T) {
	m := newMetrics()
	m.ObserveAPI("GET", "/api/courses", 200, 30*time.Millisecond)
	m.ObserveAPI("GET", "/api/courses", 200, 2*time.Second)
	m.ObserveBannerFlush(3, nil)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`ck_api_requests_total{method="GET",route="/api/courses",status="200"} 2`,
		`ck_api_request_duration_seconds_bucket{method="GET",route="/api/courses",le="0.05"} 1`,
		`ck_api_request_duration_seconds_count{method="GET",route="/api/courses"} 2`,
		`ck_banner_flush_runs_total{result="ok"} 1`,
		`ck_banner_flush_banners_total 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, realtime.Event) error { return errors.New("down") }

func TestCountingPublisher(t *testing.T) {
	m := newMetrics()
	pub := CountingPublisher(failingPublisher{}, m)
	if err := pub.Publish(context.Background(), realtime.Event{Event: realtime.EventQuizPassed}); err == nil {
		t.Fatalf("error must propagate")
	}
	if got := m.events.Value(realtime.EventQuizPassed, "error"); got != 1 {
		t.Fatalf("counter: want=1 got=%v", got)
	}
	if CountingPublisher(failingPublisher{}, nil) == nil {
		t.Fatalf("nil metrics must return the wrapped publisher")
	}
}
