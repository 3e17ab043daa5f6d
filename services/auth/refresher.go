package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"streamglass/models"
)

const (
	refreshTimeout     = 15 * time.Second
	maxErrorBodyLength = 4 * 1024
)

// ErrRefreshTokenRejected marks an authoritative server rejection: the
// refresh token itself is expired, unknown, or malformed. Only this class of
// failure forces a logout; transient network errors never do.
var ErrRefreshTokenRejected = errors.New("refresh token rejected")

// rejectionPhrases are the server error message substrings that identify an
// authoritative rejection rather than a passing outage.
var rejectionPhrases = []string{
	"refresh token is expired",
	"refresh token does not exist",
	"missing or invalid parameter",
}

// Refresher exchanges a refresh token for a fresh token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (models.Tokens, error)
}

// APIRefresher calls the account backend's token refresh endpoint.
type APIRefresher struct {
	baseURL string
	client  *http.Client
}

// NewAPIRefresher creates a refresher against the given auth base URL. The
// client may be nil, in which case one with a default timeout is used.
func NewAPIRefresher(baseURL string, client *http.Client) *APIRefresher {
	if client == nil {
		client = &http.Client{Timeout: refreshTimeout}
	}
	return &APIRefresher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type refreshErrorBody struct {
	Message string `json:"message"`
}

// Refresh posts the refresh token and returns the new pair. A non-2xx
// response whose message matches a rejection phrase is wrapped with
// ErrRefreshTokenRejected so callers can distinguish it from transient
// failures.
func (r *APIRefresher) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return models.Tokens{}, fmt.Errorf("encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/refresh", bytes.NewReader(body))
	if err != nil {
		return models.Tokens{}, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return models.Tokens{}, fmt.Errorf("token refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		message := strings.TrimSpace(string(raw))

		var parsed refreshErrorBody
		if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Message != "" {
			message = parsed.Message
		}

		if isRejectionMessage(message) {
			return models.Tokens{}, fmt.Errorf("%w: %s", ErrRefreshTokenRejected, message)
		}
		return models.Tokens{}, fmt.Errorf("token refresh returned status %d: %s", resp.StatusCode, message)
	}

	var tokens models.Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return models.Tokens{}, fmt.Errorf("decode refresh response: %w", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return models.Tokens{}, errors.New("refresh response missing tokens")
	}
	return tokens, nil
}

func isRejectionMessage(message string) bool {
	lowered := strings.ToLower(message)
	for _, phrase := range rejectionPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
