package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", NotFound("course %s", "x"), http.StatusNotFound, "not_found"},
		{"invalid", Invalid("bad order"), http.StatusBadRequest, "invalid_argument"},
		{"forbidden", Forbidden("nope"), http.StatusForbidden, "forbidden"},
		{"unauthorized", fmt.Errorf("wrap: %w", ErrUnauthorized), http.StatusUnauthorized, "unauthorized"},
		{"conflict", ErrConflict, http.StatusConflict, "conflict"},
		{"explicit", New(http.StatusTeapot, "teapot", errors.New("short and stout")), http.StatusTeapot, "teapot"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code := HTTPStatus(tc.err)
			if status != tc.status || code != tc.code {
				t.Fatalf("want=(%d,%s) got=(%d,%s)", tc.status, tc.code, status, code)
			}
		})
	}
}

func TestMapDB(t *testing.T) {
	if MapDB("op", nil) != nil {
		t.Fatalf("nil should stay nil")
	}
	if err := MapDB("get", gorm.ErrRecordNotFound); !errors.Is(err, ErrNotFound) {
		t.Fatalf("record not found: got %v", err)
	}
	if err := MapDB("create", &pgconn.PgError{Code: "23505", ConstraintName: "idx_x"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("unique violation: got %v", err)
	}
	if err := MapDB("create", &pgconn.PgError{Code: "23503"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("fk violation: got %v", err)
	}
	if err := MapDB("create", errors.New("UNIQUE constraint failed: course.slug")); !errors.Is(err, ErrConflict) {
		t.Fatalf("sqlite unique: got %v", err)
	}
	orig := Invalid("x")
	if err := MapDB("op", orig); err != orig {
		t.Fatalf("tagged errors pass through unchanged")
	}
}
