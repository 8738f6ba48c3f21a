package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
)

func TestRespondAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", apierr.NotFound("course x"), http.StatusNotFound, "not_found", "not found: course x"},
		{"invalid", apierr.Invalid("bad level"), http.StatusBadRequest, "invalid_argument", "invalid argument: bad level"},
		{"internal hidden", errors.New("dial tcp: refused"), http.StatusInternalServerError, "internal", "unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondAPIError(c, tt.err)

			if rec.Code != tt.status {
				t.Fatalf("status: want=%d got=%d", tt.status, rec.Code)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tt.code || env.Error.Message != tt.message {
				t.Fatalf("envelope: %+v", env.Error)
			}
		})
	}
}
