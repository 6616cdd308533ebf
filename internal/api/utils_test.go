package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMakeHTTPHandleFuncMapsHTTPError(t *testing.T) {
	s := &APIServer{}
	h := s.MakeHTTPHandleFunc(func(w http.ResponseWriter, r *http.Request) error {
		return &HTTPError{StatusCode: http.StatusUnauthorized, Message: "unauthorized", ErrorLog: errors.New("bad feed token")}
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/ws/feed", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unauthorized") {
		t.Fatalf("body should carry the public message, got %q", rec.Body.String())
	}
}

func TestMakeHTTPHandleFuncHidesPlainErrors(t *testing.T) {
	s := &APIServer{}
	h := s.MakeHTTPHandleFunc(func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("table scan failed")
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "table scan") {
		t.Fatalf("raw error leaked to the client: %q", rec.Body.String())
	}
}
