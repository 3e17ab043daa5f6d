package models

import (
	"time"
)

// DefaultCatchupHours is used when a playlist item does not carry a parseable
// positive catch-up window.
const DefaultCatchupHours = 8

// Program represents a single program in a channel's schedule.
type Program struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Start       time.Time `json:"startTime"`
	End         time.Time `json:"endTime"`
}

// Contains reports whether t falls inside the program's window. The window is
// half-open: start inclusive, end exclusive, so an instant exactly at End
// belongs to the next adjacent program.
func (p Program) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Channel is one live channel with its schedule, rebuilt wholesale on every
// guide refresh.
type Channel struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	CatchupHours     int       `json:"catchupHours"`
	ChannelLogoImage string    `json:"channelLogoImage,omitempty"`
	BackgroundImage  string    `json:"backgroundImage,omitempty"`
	Programs         []Program `json:"programs"`
}

// ProgramByID returns the program with the given id, if present.
func (c Channel) ProgramByID(id string) (Program, bool) {
	for _, p := range c.Programs {
		if p.ID == id {
			return p, true
		}
	}
	return Program{}, false
}

// LiveProgramAt returns the program whose window contains t. At most one
// program should match; the first match wins.
func (c Channel) LiveProgramAt(t time.Time) (Program, bool) {
	for _, p := range c.Programs {
		if p.Contains(t) {
			return p, true
		}
	}
	return Program{}, false
}

// LiveSelection is the read model exposed to the UI layer: the full channel
// list plus the currently active channel and program. Channel and Program are
// nil when nothing is selected or nothing is live.
type LiveSelection struct {
	Channels []Channel `json:"channels"`
	Channel  *Channel  `json:"channel,omitempty"`
	Program  *Program  `json:"program,omitempty"`
}
