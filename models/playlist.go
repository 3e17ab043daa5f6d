package models

import (
	"strconv"
	"strings"
)

// Playlist is the remote JSON feed the frontend loads at startup: a titled
// list of channel items.
type Playlist struct {
	Title    string         `json:"title"`
	Playlist []PlaylistItem `json:"playlist"`
}

// PlaylistItem identifies one live channel as delivered by the playlist feed.
// The schedule-related fields arrive as custom string params, so numeric and
// boolean values are kept as strings and parsed leniently.
type PlaylistItem struct {
	ID              string `json:"mediaid"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Image           string `json:"image,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
	ScheduleURL     string `json:"scheduleUrl,omitempty"`
	ScheduleToken   string `json:"scheduleToken,omitempty"`
	ScheduleType    string `json:"scheduleType,omitempty"`
	ScheduleDemo    string `json:"scheduleDemo,omitempty"`
	CatchupHours    string `json:"catchupHours,omitempty"`
}

// DemoEnabled reports whether the item opts into demo schedule rebasing.
func (i PlaylistItem) DemoEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(i.ScheduleDemo)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// CatchupWindowHours returns the item's catch-up window, falling back to
// DefaultCatchupHours when the value is absent or not a positive integer.
func (i PlaylistItem) CatchupWindowHours() int {
	hours, err := strconv.Atoi(strings.TrimSpace(i.CatchupHours))
	if err != nil || hours <= 0 {
		return DefaultCatchupHours
	}
	return hours
}
