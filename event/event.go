// Package event generates named time windows, such as holidays, that a forecast models with
// their own coefficient.
package event

import (
	"errors"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrStartAfterEnd = errors.New("event start time is after end time")
	ErrUnsetTime     = errors.New("unset event start or end time")
	ErrNoEventName   = errors.New("no event name")
)

// Event represents a time span to model separately. Events sharing a name share a
// coefficient, so a recurring holiday is one name with a window per year.
type Event struct {
	Name  string
	Start time.Time
	End   time.Time
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: start,
		End:   end,
	}
}

func (e *Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

// USHolidays are the federal holidays modelled when holiday events are enabled
var USHolidays = []*cal.Holiday{
	us.NewYear,
	us.MemorialDay,
	us.IndependenceDay,
	us.LaborDay,
	us.ThanksgivingDay,
	us.ChristmasDay,
}

// Holiday returns a day long window for every observed occurrence of the holiday between start
// and end inclusive. Windows are widened by durBefore and durAfter and are anchored to
// midnight in the location of start.
func Holiday(hol *cal.Holiday, start, end time.Time, durBefore, durAfter time.Duration) []Event {
	loc := start.Location()
	name := strings.ReplaceAll(hol.Name, " ", "_")

	events := []Event{}
	for i := start.Year(); i <= end.Year(); i++ {
		_, observed := hol.Calc(i)
		y, m, d := observed.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)

		if (day.After(start) || day.Equal(start)) && (day.Before(end) || day.Equal(end)) {
			events = append(events, Event{
				Name:  name,
				Start: day.Add(-durBefore),
				End:   day.Add(24 * time.Hour).Add(durAfter),
			})
		}
	}
	return events
}

// Holidays returns the windows of every given holiday between start and end
func Holidays(hols []*cal.Holiday, start, end time.Time) []Event {
	var events []Event
	for _, hol := range hols {
		events = append(events, Holiday(hol, start, end, 0, 0)...)
	}
	return events
}

// Windows groups event windows by event name
func Windows(events []Event) map[string][][2]time.Time {
	out := make(map[string][][2]time.Time)
	for _, e := range events {
		out[e.Name] = append(out[e.Name], [2]time.Time{e.Start, e.End})
	}
	return out
}
