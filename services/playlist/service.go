// Package playlist loads the remote JSON feed describing the live channel
// line-up. The feed is the hand-off point from the out-of-scope content
// management side: the guide consumes its items read-only.
package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"streamglass/models"
)

const (
	fetchTimeout    = 15 * time.Second
	maxFeedSize     = 5 * 1024 * 1024 // 5 MB
	fetchAttempts   = 3
	fetchRetryDelay = 500 * time.Millisecond
)

var ErrFeedURLRequired = errors.New("playlist feed url not configured")

// Service fetches and validates the playlist feed.
type Service struct {
	url    string
	client *http.Client
}

// NewService creates a playlist loader for the given feed URL. The client
// may be nil, in which case one with a default timeout is used.
func NewService(url string, client *http.Client) *Service {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Service{url: url, client: client}
}

// Load fetches the feed, retrying transient failures, and drops items
// missing an id or title so downstream consumers can rely on both.
func (s *Service) Load(ctx context.Context) (models.Playlist, error) {
	if s.url == "" {
		return models.Playlist{}, ErrFeedURLRequired
	}

	var feed models.Playlist
	err := retry.Do(
		func() error {
			fetched, err := s.fetch(ctx)
			if err != nil {
				return err
			}
			feed = fetched
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(fetchAttempts),
		retry.Delay(fetchRetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return models.Playlist{}, err
	}

	items := make([]models.PlaylistItem, 0, len(feed.Playlist))
	for _, item := range feed.Playlist {
		if item.ID == "" || item.Title == "" {
			log.Printf("[playlist] dropping item without id or title")
			continue
		}
		items = append(items, item)
	}
	feed.Playlist = items

	return feed, nil
}

func (s *Service) fetch(ctx context.Context) (models.Playlist, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("create playlist request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("fetch playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Playlist{}, fmt.Errorf("playlist fetch returned status %d", resp.StatusCode)
	}

	var feed models.Playlist
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedSize)).Decode(&feed); err != nil {
		return models.Playlist{}, fmt.Errorf("decode playlist: %w", err)
	}
	return feed, nil
}
