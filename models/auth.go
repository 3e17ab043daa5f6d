package models

// Tokens is the access/refresh token pair owned by the auth token service.
// Other components read the access token through the service accessor and
// never mutate the pair directly.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Broadcast actions exchanged between instances while a token refresh is in
// flight.
const (
	TokenActionRefreshing = "refreshing"
	TokenActionResolved   = "resolved"
	TokenActionRejected   = "rejected"
)

// TokenMessage is the ephemeral payload sent over the broadcast bus so only
// one instance performs the network refresh at a time.
type TokenMessage struct {
	Action string  `json:"action"`
	Tokens *Tokens `json:"tokens,omitempty"`
}
