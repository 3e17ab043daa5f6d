package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"streamglass/models"
)

// PartnerProvider reads the partner feed dialect, which names its fields
// guid/name/start/stop instead of the standard shape.
type PartnerProvider struct {
	client *http.Client
}

type partnerEntry struct {
	GUID      string `json:"guid"`
	Name      string `json:"name"`
	Summary   string `json:"summary"`
	Thumbnail string `json:"thumbnail"`
	Start     string `json:"start"`
	Stop      string `json:"stop"`
}

func (p *PartnerProvider) FetchSchedule(ctx context.Context, item models.PlaylistItem) ([]json.RawMessage, error) {
	return fetchFeed(ctx, p.client, item)
}

func (p *PartnerProvider) TransformProgram(raw json.RawMessage) (models.Program, error) {
	var entry partnerEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return models.Program{}, fmt.Errorf("decode partner entry: %w", err)
	}

	start, end, err := parseWindow(entry.Start, entry.Stop)
	if err != nil {
		return models.Program{}, err
	}

	program := models.Program{
		ID:          strings.TrimSpace(entry.GUID),
		Title:       strings.TrimSpace(entry.Name),
		Description: entry.Summary,
		Image:       entry.Thumbnail,
		Start:       start,
		End:         end,
	}
	if program.ID == "" || program.Title == "" {
		return models.Program{}, errors.New("partner entry missing guid or name")
	}
	return program, nil
}
