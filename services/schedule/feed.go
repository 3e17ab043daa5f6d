package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"streamglass/models"
)

// FeedProvider reads the standard schedule feed dialect: a JSON array of
// entries with id/title/startTime/endTime fields and RFC 3339 timestamps.
type FeedProvider struct {
	client *http.Client
}

type feedEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

func (p *FeedProvider) FetchSchedule(ctx context.Context, item models.PlaylistItem) ([]json.RawMessage, error) {
	return fetchFeed(ctx, p.client, item)
}

func (p *FeedProvider) TransformProgram(raw json.RawMessage) (models.Program, error) {
	var entry feedEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return models.Program{}, fmt.Errorf("decode feed entry: %w", err)
	}

	start, end, err := parseWindow(entry.StartTime, entry.EndTime)
	if err != nil {
		return models.Program{}, err
	}

	program := models.Program{
		ID:          strings.TrimSpace(entry.ID),
		Title:       strings.TrimSpace(entry.Title),
		Description: entry.Description,
		Image:       entry.Image,
		Start:       start,
		End:         end,
	}
	if program.ID == "" || program.Title == "" {
		return models.Program{}, errors.New("feed entry missing id or title")
	}
	return program, nil
}

// parseWindow parses the program window shared by both feed dialects.
func parseWindow(startRaw, endRaw string) (time.Time, time.Time, error) {
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, errors.New("entry missing start or end time")
	}
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start time %q: %w", startRaw, err)
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse end time %q: %w", endRaw, err)
	}
	return start, end, nil
}
