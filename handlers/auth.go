package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"streamglass/models"
	"streamglass/services/auth"
)

// AuthHandler exposes the session token lifecycle over HTTP.
type AuthHandler struct {
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// GetToken returns a fresh access token, refreshing it first when expired.
// A missing session yields 401 so clients can route to login.
func (h *AuthHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.service.GetAccessTokenOrErr(r.Context())
	if err != nil {
		http.Error(w, "no active session", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(accessTokenResponse{AccessToken: token}); err != nil {
		log.Printf("[auth] failed to encode token response: %v", err)
	}
}

// PutTokens installs a token pair obtained out of band, typically from a
// login or registration flow handled elsewhere.
func (h *AuthHandler) PutTokens(w http.ResponseWriter, r *http.Request) {
	var tokens models.Tokens
	if err := json.NewDecoder(r.Body).Decode(&tokens); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		http.Error(w, "accessToken and refreshToken are required", http.StatusBadRequest)
		return
	}

	h.service.SetTokens(tokens)
	w.WriteHeader(http.StatusNoContent)
}

// Logout clears the session from memory and storage.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.ClearSession()
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
