package timedataset

import (
	"time"
)

type TimeSlice []time.Time

// StartTime is the first time or the zero time when empty
func (t TimeSlice) StartTime() time.Time {
	if len(t) == 0 {
		return time.Time{}
	}
	return t[0]
}

// EndTime is the last time or the zero time when empty
func (t TimeSlice) EndTime() time.Time {
	if len(t) == 0 {
		return time.Time{}
	}
	return t[len(t)-1]
}

// EstimateFreq returns the most common positive spacing between consecutive points. Ties go
// to the smaller spacing.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	counts := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		if delta := t[i].Sub(t[i-1]); delta > 0 {
			counts[delta]++
		}
	}

	var best time.Duration
	var bestCnt int
	for delta, cnt := range counts {
		if cnt > bestCnt || (cnt == bestCnt && delta < best) {
			best, bestCnt = delta, cnt
		}
	}
	if bestCnt == 0 {
		return 0, ErrCannotInferFreq
	}
	return best, nil
}

// DailyHorizon returns the n calendar days after last, each at midnight UTC.
func DailyHorizon(last time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	day := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	t := make([]time.Time, n)
	for i := range t {
		t[i] = day.AddDate(0, 0, i+1)
	}
	return t
}
