package options

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-houseprice/feature"
	"github.com/aouyang1/go-houseprice/forecast/util"
)

const (
	DefaultAutoNumChangepoints = 25
	DefaultChangepointRange    = 0.8
)

// Changepoint describes a point in time that will change the slope of the ongoing trend
type Changepoint struct {
	T    time.Time `json:"time"`
	Name string    `json:"name"`
}

func NewChangepoint(name string, t time.Time) Changepoint {
	return Changepoint{t, name}
}

// ChangepointOptions configures the changepoint fit to either use auto-detection by placing
// N changepoints evenly across the first Range fraction of the training observations, or to
// use the explicitly listed changepoints. Auto placement relies on regularization to remove
// changepoints that would otherwise overfit.
type ChangepointOptions struct {
	Changepoints        []Changepoint `json:"changepoints"`
	Auto                bool          `json:"auto"`
	AutoNumChangepoints int           `json:"auto_num_changepoints"`
	Range               float64       `json:"range"`
}

// NewDefaultChangepointOptions generates a set of default changepoint options
func NewDefaultChangepointOptions() ChangepointOptions {
	return ChangepointOptions{
		Auto:                true,
		AutoNumChangepoints: DefaultAutoNumChangepoints,
		Range:               DefaultChangepointRange,
	}
}

// GenerateAutoChangepoints places changepoints on evenly spaced observation indexes within the
// first Range of the sorted training times, skipping the very first observation. The result
// replaces any existing changepoints.
func (c *ChangepointOptions) GenerateAutoChangepoints(t []time.Time) []Changepoint {
	if c.AutoNumChangepoints <= 0 {
		c.AutoNumChangepoints = DefaultAutoNumChangepoints
	}
	if c.Range <= 0 || c.Range > 1 {
		c.Range = DefaultChangepointRange
	}

	histSize := int(math.Floor(float64(len(t)) * c.Range))
	n := min(c.AutoNumChangepoints, histSize-1)
	if n <= 0 {
		c.Changepoints = nil
		return nil
	}

	chpts := make([]Changepoint, 0, n)
	var last time.Time
	for i := 1; i <= n; i++ {
		idx := int(math.Round(float64(i) * float64(histSize-1) / float64(n)))
		chptTime := t[idx]
		// repeated observation times collapse onto a single changepoint
		if len(chpts) > 0 && !chptTime.After(last) {
			continue
		}
		chpts = append(chpts, NewChangepoint("auto_"+strconv.Itoa(len(chpts)), chptTime))
		last = chptTime
	}

	c.Changepoints = chpts
	return chpts
}

// GenerateFeatures computes a slope hinge per changepoint. Changepoints outside of the training
// window are skipped since they could not have been fit.
func (c ChangepointOptions) GenerateFeatures(t []time.Time, trainStartTime, trainEndTime time.Time) *feature.Set {
	feat := feature.NewSet()
	if !trainEndTime.After(trainStartTime) {
		return feat
	}

	tScaled := feature.ScaleTime(t, trainStartTime, trainEndTime)
	for i, chpt := range c.Changepoints {
		if !chpt.T.After(trainStartTime) || !chpt.T.Before(trainEndTime) {
			continue
		}
		name := chpt.Name
		if name == "" {
			name = strconv.Itoa(i)
		}
		chptScaled := feature.ScaleTime([]time.Time{chpt.T}, trainStartTime, trainEndTime)[0]
		chptFeat := feature.NewChangepoint(name)
		feat.Set(chptFeat, chptFeat.Generate(tScaled, chptScaled))
	}
	return feat
}

func (c ChangepointOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	noCfg := " None"
	if len(c.Changepoints) > 0 {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sChangepoints:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	if len(c.Changepoints) == 0 {
		return nil
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%sName\tDatetime\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	for _, chpt := range c.Changepoints {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			chpt.Name, chpt.T.Format(time.RFC3339))
	}
	return tbl.Flush()
}
