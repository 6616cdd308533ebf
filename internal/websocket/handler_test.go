package websocket

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"support-bot-backend/internal/jwt"
)

func TestServeFeedRejectsBadToken(t *testing.T) {
	h := NewHandler(NewHub(), "secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/feed?token=garbage", nil)

	if err := h.ServeFeed(rec, req); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("rejection should not write a body, got %q", rec.Body.String())
	}
}

func TestServeFeedRejectsForeignSecret(t *testing.T) {
	h := NewHandler(NewHub(), "secret")

	token, err := jwt.CreateToken(7, jwt.RoleOps, "other-secret", time.Now().Add(jwt.AccessTokenTTL).Unix())
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/feed?token="+token, nil)

	if err := h.ServeFeed(rec, req); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestServeFeedFailedUpgradeIsNotFatal(t *testing.T) {
	h := NewHandler(NewHub(), "secret")

	token, err := jwt.CreateToken(7, jwt.RoleOps, "secret", time.Now().Add(jwt.AccessTokenTTL).Unix())
	if err != nil {
		t.Fatal(err)
	}

	// A plain GET passes auth but is not a websocket handshake. The
	// upgrader replies on its own, so no error surfaces to the route.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/feed?token="+token, nil)

	if err := h.ServeFeed(rec, req); err != nil {
		t.Fatalf("upgrade failure should be handled in place, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("upgrader should have replied 400, got %d", rec.Code)
	}
}
