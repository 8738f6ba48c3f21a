package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursekit-backend/internal/platform/ctxutil"
)

func TestAttachRequestContextEchoesAndMintsIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var seen *ctxutil.TraceData
	r := gin.New()
	r.Use(AttachRequestContext())
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if seen == nil || seen.RequestID != "req-1" {
		t.Fatalf("request id not echoed: %+v", seen)
	}
	if seen.TraceID == "" || rec.Header().Get(HeaderTraceID) != seen.TraceID {
		t.Fatalf("trace id not minted: ctx=%q header=%q", seen.TraceID, rec.Header().Get(HeaderTraceID))
	}
	if rec.Header().Get(HeaderRequestID) != "req-1" {
		t.Fatalf("request id header: %q", rec.Header().Get(HeaderRequestID))
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderTraceID, "trace-9")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if seen.TraceID != "trace-9" || seen.RequestID == "" {
		t.Fatalf("second request: %+v", seen)
	}
}
