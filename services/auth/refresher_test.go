package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"streamglass/models"
	"streamglass/services/auth"
)

func TestRefreshReturnsNewTokenPair(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/refresh" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(models.Tokens{AccessToken: "a2", RefreshToken: "r2"})
	}))
	defer server.Close()

	refresher := auth.NewAPIRefresher(server.URL, nil)
	tokens, err := refresher.Refresh(context.Background(), "r1")
	if err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	if tokens.AccessToken != "a2" || tokens.RefreshToken != "r2" {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}
	if gotBody["refreshToken"] != "r1" {
		t.Fatalf("expected refresh token in request body, got %v", gotBody)
	}
}

func TestRefreshClassifiesRejectionMessages(t *testing.T) {
	cases := []struct {
		message  string
		rejected bool
	}{
		{"Refresh token is expired", true},
		{"refresh token does not exist", true},
		{"Missing or invalid parameter: refreshToken", true},
		{"internal server error", false},
		{"upstream timeout", false},
	}

	for _, tc := range cases {
		message := tc.message
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
		}))

		refresher := auth.NewAPIRefresher(server.URL, nil)
		_, err := refresher.Refresh(context.Background(), "r1")
		server.Close()

		if err == nil {
			t.Fatalf("%q: expected error", tc.message)
		}
		if got := errors.Is(err, auth.ErrRefreshTokenRejected); got != tc.rejected {
			t.Errorf("%q: rejected = %v, want %v (err: %v)", tc.message, got, tc.rejected, err)
		}
	}
}

func TestRefreshRejectsIncompleteResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Tokens{AccessToken: "a2"})
	}))
	defer server.Close()

	refresher := auth.NewAPIRefresher(server.URL, nil)
	if _, err := refresher.Refresh(context.Background(), "r1"); err == nil {
		t.Fatal("expected error for response missing refresh token")
	}
}

func TestRefreshPlainTextErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "refresh token does not exist", http.StatusForbidden)
	}))
	defer server.Close()

	refresher := auth.NewAPIRefresher(server.URL, nil)
	_, err := refresher.Refresh(context.Background(), "r1")
	if !errors.Is(err, auth.ErrRefreshTokenRejected) {
		t.Fatalf("expected rejection for plain-text body, got %v", err)
	}
}
