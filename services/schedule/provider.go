// Package schedule turns raw per-channel schedule feeds into validated
// program lists. Feeds come in provider-specific JSON dialects; a registry
// maps each playlist item's schedule-type discriminator to the provider that
// understands its field names.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"streamglass/models"
)

const (
	defaultHTTPTimeout  = 20 * time.Second
	maxScheduleFeedSize = 10 * 1024 * 1024 // 10 MB max
)

// Known schedule-type discriminators. An item with an empty discriminator
// uses the feed provider.
const (
	TypeFeed    = "feed"
	TypePartner = "partner"
)

var (
	ErrProviderNotFound = errors.New("no schedule provider for type")
	ErrScheduleURL      = errors.New("playlist item has no schedule url")
)

// Provider fetches one channel's raw schedule feed and maps its entries into
// the canonical Program shape.
type Provider interface {
	// FetchSchedule issues the read request for the item's schedule resource.
	// It may fail; the EPG client is responsible for containing errors.
	FetchSchedule(ctx context.Context, item models.PlaylistItem) ([]json.RawMessage, error)

	// TransformProgram maps one provider-shaped entry into a Program. It
	// fails when mandatory fields are absent or malformed.
	TransformProgram(raw json.RawMessage) (models.Program, error)
}

// Registry resolves a Provider per playlist item.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry with the built-in providers. The client may
// be nil, in which case one with a default timeout is used.
func NewRegistry(client *http.Client) *Registry {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}

	r := &Registry{providers: make(map[string]Provider)}
	r.Register(TypeFeed, &FeedProvider{client: client})
	r.Register(TypePartner, &PartnerProvider{client: client})
	return r
}

// Register adds or replaces the provider for a schedule type.
func (r *Registry) Register(scheduleType string, p Provider) {
	r.providers[scheduleType] = p
}

// Lookup returns the provider for the item's schedule type. An empty type
// resolves to the feed provider.
func (r *Registry) Lookup(scheduleType string) (Provider, error) {
	if scheduleType == "" {
		scheduleType = TypeFeed
	}
	p, ok := r.providers[scheduleType]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrProviderNotFound, scheduleType)
	}
	return p, nil
}

// fetchFeed performs the shared HTTP GET both built-in providers use. A
// per-channel schedule token, when present, is attached as a bearer header.
func fetchFeed(ctx context.Context, client *http.Client, item models.PlaylistItem) ([]json.RawMessage, error) {
	if item.ScheduleURL == "" {
		return nil, ErrScheduleURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.ScheduleURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create schedule request: %w", err)
	}
	if item.ScheduleToken != "" {
		req.Header.Set("Authorization", "Bearer "+item.ScheduleToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schedule fetch returned status %d", resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, maxScheduleFeedSize)

	var entries []json.RawMessage
	if err := json.NewDecoder(limited).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode schedule feed: %w", err)
	}
	return entries, nil
}
