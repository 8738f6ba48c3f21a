package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func preflight(r *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/courses", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		origins []string
		origin  string
		allowed bool
	}{
		{"default dev origin", nil, "http://localhost:5173", true},
		{"configured origin", []string{"https://learn.example.com"}, "https://learn.example.com", true},
		{"default dropped when configured", []string{"https://learn.example.com"}, "http://localhost:5173", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(tt.origins))
			r.OPTIONS("/api/courses", func(c *gin.Context) { c.Status(http.StatusNoContent) })

			rec := preflight(r, tt.origin)
			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tt.allowed && got != tt.origin {
				t.Fatalf("allow-origin: got=%q want=%q", got, tt.origin)
			}
			if !tt.allowed && got != "" {
				t.Fatalf("origin %q should be refused, got allow-origin=%q", tt.origin, got)
			}
		})
	}
}
