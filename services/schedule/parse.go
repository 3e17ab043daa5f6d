package schedule

import (
	"encoding/json"
	"log"
	"sort"
	"time"

	"streamglass/models"
)

// Parse maps TransformProgram over every raw entry and returns the surviving
// programs sorted by start time. Entries that fail transformation or lack a
// mandatory field are dropped and logged, never propagated: a malformed entry
// must not abort the rest of the channel's schedule.
//
// When demo is enabled the whole schedule is rebased so the fixture appears
// to be happening today regardless of when it is loaded.
func Parse(p Provider, raw []json.RawMessage, demo bool, now time.Time) []models.Program {
	programs := make([]models.Program, 0, len(raw))
	for _, entry := range raw {
		program, err := p.TransformProgram(entry)
		if err != nil {
			log.Printf("[schedule] dropping entry: %v", err)
			continue
		}
		if program.ID == "" || program.Title == "" || program.Start.IsZero() || program.End.IsZero() {
			log.Printf("[schedule] dropping entry with missing mandatory fields")
			continue
		}
		programs = append(programs, program)
	}

	sort.Slice(programs, func(i, j int) bool {
		return programs[i].Start.Before(programs[j].Start)
	})

	if demo && len(programs) > 0 {
		rebaseToToday(programs, now)
	}

	return programs
}

// rebaseToToday shifts every program forward by the whole number of days
// between today and the first program's start-of-day. Both sides are
// normalized to UTC midnight first, so the shift is an exact multiple of 24h
// and each program keeps its original time of day and relative ordering.
func rebaseToToday(programs []models.Program, now time.Time) {
	first := programs[0].Start.UTC()
	firstDay := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)

	nowUTC := now.UTC()
	today := time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), 0, 0, 0, 0, time.UTC)

	offset := today.Sub(firstDay)
	if offset == 0 {
		return
	}

	for i := range programs {
		programs[i].Start = programs[i].Start.Add(offset)
		programs[i].End = programs[i].End.Add(offset)
	}
}
