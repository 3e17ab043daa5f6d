// Package epg assembles per-channel schedules across a whole playlist. A
// broken schedule source degrades to a channel with no programs; callers
// never observe an error from this package.
package epg

import (
	"context"
	"log"
	"time"

	"github.com/sourcegraph/conc/iter"

	"streamglass/models"
	"streamglass/services/schedule"
)

// Client orchestrates schedule providers across many channels.
type Client struct {
	registry *schedule.Registry

	// now is swappable in tests; demo rebasing depends on it.
	now func() time.Time
}

// NewClient creates an EPG client over the given provider registry.
func NewClient(registry *schedule.Registry) *Client {
	return &Client{
		registry: registry,
		now:      time.Now,
	}
}

// GetSchedule produces the Channel for one playlist item. Fetch, decode, and
// provider-lookup failures are contained here: the returned channel simply
// has an empty program list, so a single broken source cannot break the
// whole guide.
func (c *Client) GetSchedule(ctx context.Context, item models.PlaylistItem) models.Channel {
	channel := models.Channel{
		ID:               item.ID,
		Title:            item.Title,
		Description:      item.Description,
		CatchupHours:     item.CatchupWindowHours(),
		ChannelLogoImage: item.Image,
		BackgroundImage:  item.BackgroundImage,
		Programs:         []models.Program{},
	}

	provider, err := c.registry.Lookup(item.ScheduleType)
	if err != nil {
		log.Printf("[epg] channel %s: %v", item.ID, err)
		return channel
	}

	raw, err := provider.FetchSchedule(ctx, item)
	if err != nil {
		log.Printf("[epg] channel %s: schedule unavailable: %v", item.ID, err)
		return channel
	}

	channel.Programs = schedule.Parse(provider, raw, item.DemoEnabled(), c.now())
	return channel
}

// GetSchedules fetches every item's schedule concurrently and returns the
// channels in input order regardless of completion order.
func (c *Client) GetSchedules(ctx context.Context, items []models.PlaylistItem) []models.Channel {
	return iter.Map(items, func(item *models.PlaylistItem) models.Channel {
		return c.GetSchedule(ctx, *item)
	})
}
