package options

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-houseprice/event"
	"github.com/aouyang1/go-houseprice/feature"
	"github.com/aouyang1/go-houseprice/forecast/util"
)

// EventOptions lists explicit events and whether to model US federal holidays. Each distinct
// event name gets its own coefficient.
type EventOptions struct {
	USHolidays bool          `json:"us_holidays"`
	Events     []event.Event `json:"events"`
}

// windows returns all event windows keyed by name for the time range of t
func (e EventOptions) windows(t []time.Time) map[string][][2]time.Time {
	events := make([]event.Event, 0, len(e.Events))
	for _, ev := range e.Events {
		if err := ev.Valid(); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if e.USHolidays && len(t) > 0 {
		start, end := t[0], t[0]
		for _, tPnt := range t {
			if tPnt.Before(start) {
				start = tPnt
			}
			if tPnt.After(end) {
				end = tPnt
			}
		}
		// widen to whole days so holidays on the boundary days are kept
		y, m, d := start.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, start.Location())
		events = append(events, event.Holidays(event.USHolidays, start, end)...)
	}
	return event.Windows(events)
}

// GenerateFeatures computes an indicator per event name. Events that do not overlap any of the
// input times produce no feature.
func (e EventOptions) GenerateFeatures(t []time.Time) *feature.Set {
	feat := feature.NewSet()
	windows := e.windows(t)

	names := make([]string, 0, len(windows))
	for name := range windows {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		eFeat := feature.NewEvent(name)
		mask := eFeat.Generate(t, windows[name])
		hit := false
		for _, v := range mask {
			if v != 0 {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		feat.Set(eFeat, mask)
	}
	return feat
}

func (e EventOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	holidays := "off"
	if e.USHolidays {
		holidays = "on"
	}
	if _, err := fmt.Fprintf(w, "%s%sUS Holidays: %s\n", prefix, util.IndentExpand(indent, indentGrowth), holidays); err != nil {
		return err
	}

	noCfg := " None"
	if len(e.Events) > 0 {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sEvents:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	if len(e.Events) == 0 {
		return nil
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%sName\tStart\tEnd\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	for _, ev := range e.Events {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			ev.Name, ev.Start.Format(time.RFC3339), ev.End.Format(time.RFC3339))
	}
	return tbl.Flush()
}
