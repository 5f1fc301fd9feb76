package options

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-houseprice/feature"
	"github.com/aouyang1/go-houseprice/forecast/util"
	"github.com/aouyang1/go-houseprice/timedataset"
)

const (
	LabelSeasDaily  = "daily"
	LabelSeasWeekly = "weekly"
	LabelSeasYearly = "yearly"

	Day  = 24 * time.Hour
	Week = 7 * Day
	Year = 36525 * Day / 100

	DefaultYearlyOrders = 10
	DefaultWeeklyOrders = 3
	DefaultDailyOrders  = 4
)

// SeasonalityConfig represents a seasonality fit using Fourier components up to the
// specified number of orders for the period.
type SeasonalityConfig struct {
	Name   string        `json:"name"`
	Orders int           `json:"orders"`
	Period time.Duration `json:"period"`
}

func NewYearlySeasonalityConfig(orders int) SeasonalityConfig {
	return SeasonalityConfig{LabelSeasYearly, orders, Year}
}

func NewWeeklySeasonalityConfig(orders int) SeasonalityConfig {
	return SeasonalityConfig{LabelSeasWeekly, orders, Week}
}

func NewDailySeasonalityConfig(orders int) SeasonalityConfig {
	return SeasonalityConfig{LabelSeasDaily, orders, Day}
}

// SeasonalityOptions lists the seasonalities to fit. When Auto is set the configs are derived
// from the span and sampling frequency of the training data.
type SeasonalityOptions struct {
	Auto               bool                `json:"auto"`
	SeasonalityConfigs []SeasonalityConfig `json:"seasonality_configs"`
}

// NewDefaultSeasonalityOptions returns automatic seasonality detection
func NewDefaultSeasonalityOptions() SeasonalityOptions {
	return SeasonalityOptions{Auto: true}
}

// GenerateAutoSeasonality picks yearly seasonality with two or more years of history, weekly
// with two or more weeks of sub-weekly samples, and daily with two or more days of sub-daily
// samples. The result replaces any existing configs.
func (s *SeasonalityOptions) GenerateAutoSeasonality(t []time.Time) []SeasonalityConfig {
	tSlice := timedataset.TimeSlice(t)
	span := tSlice.EndTime().Sub(tSlice.StartTime())
	freq, err := tSlice.EstimateFreq()
	if err != nil {
		s.SeasonalityConfigs = nil
		return nil
	}

	var cfgs []SeasonalityConfig
	if span >= 730*Day {
		cfgs = append(cfgs, NewYearlySeasonalityConfig(DefaultYearlyOrders))
	}
	if span >= 2*Week && freq < Week {
		cfgs = append(cfgs, NewWeeklySeasonalityConfig(DefaultWeeklyOrders))
	}
	if span >= 2*Day && freq < Day {
		cfgs = append(cfgs, NewDailySeasonalityConfig(DefaultDailyOrders))
	}
	s.SeasonalityConfigs = cfgs
	return cfgs
}

// GenerateFeatures computes a sin and cos feature per order of every seasonality
func (s SeasonalityOptions) GenerateFeatures(t []time.Time) *feature.Set {
	feat := feature.NewSet()
	for _, cfg := range s.SeasonalityConfigs {
		for order := 1; order <= cfg.Orders; order++ {
			sinFeat := feature.NewSeasonality(cfg.Name, feature.FourierCompSin, order)
			cosFeat := feature.NewSeasonality(cfg.Name, feature.FourierCompCos, order)
			feat.Set(sinFeat, sinFeat.Generate(t, cfg.Period))
			feat.Set(cosFeat, cosFeat.Generate(t, cfg.Period))
		}
	}
	return feat
}

func (s SeasonalityOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	noCfg := " None"
	if len(s.SeasonalityConfigs) > 0 {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sSeasonality:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	if len(s.SeasonalityConfigs) == 0 {
		return nil
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%sName\tOrders\tPeriod\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	for _, cfg := range s.SeasonalityConfigs {
		fmt.Fprintf(tbl, "%s%s%s\t%d\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			cfg.Name, cfg.Orders, cfg.Period)
	}
	return tbl.Flush()
}
