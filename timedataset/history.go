package timedataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
)

var (
	ErrMissingColumn = errors.New("missing history column")
	ErrInvalidDate   = errors.New("invalid history date")
	ErrInvalidPrice  = errors.New("invalid history price")
)

// dateLayouts are the accepted history date formats, tried in order
var dateLayouts = []string{
	"20060102T150405",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

type historyRow struct {
	Date  string `csv:"date"`
	Price string `csv:"price"`
}

// ParseDate parses a history date in any accepted layout. Dates without a zone are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q, %w", s, ErrInvalidDate)
}

// ReadHistory decodes a csv with a header containing at least date and price columns into a
// dataset sorted by date. Rows with an empty date or an empty or NaN price are skipped. Any
// other unparseable row fails the read.
func ReadHistory(r io.Reader) (*TimeDataset, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoTrainingData
		}
		return nil, fmt.Errorf("unable to read history header, %w", err)
	}
	for _, col := range []string{"date", "price"} {
		if !hasColumn(dec.Header(), col) {
			return nil, fmt.Errorf("%s, %w", col, ErrMissingColumn)
		}
	}

	var t []time.Time
	var y []float64
	for line := 2; ; line++ {
		var row historyRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("line %d, %w", line, err)
		}

		priceStr := strings.TrimSpace(row.Price)
		if priceStr == "" || strings.TrimSpace(row.Date) == "" {
			continue
		}
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d, %q, %w", line, priceStr, ErrInvalidPrice)
		}
		if math.IsNaN(price) {
			continue
		}
		ts, err := ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("line %d, %w", line, err)
		}
		t = append(t, ts)
		y = append(y, price)
	}

	idx := make([]int, len(t))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return t[idx[i]].Before(t[idx[j]])
	})
	tSorted := make([]time.Time, len(t))
	ySorted := make([]float64, len(y))
	for i, k := range idx {
		tSorted[i] = t[k]
		ySorted[i] = y[k]
	}
	return NewUnivariateDataset(tSorted, ySorted)
}

// ReadHistoryFile opens the csv file at path and reads it with ReadHistory
func ReadHistoryFile(path string) (*TimeDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	td, err := ReadHistory(f)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", path, err)
	}
	return td, nil
}

func hasColumn(header []string, col string) bool {
	for _, h := range header {
		if strings.TrimSpace(h) == col {
			return true
		}
	}
	return false
}
