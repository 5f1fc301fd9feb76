package timedataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected time.Time
		err      error
	}{
		"compact": {
			input:    "20141013T000000",
			expected: time.Date(2014, 10, 13, 0, 0, 0, 0, time.UTC),
		},
		"iso date": {
			input:    "2015-05-15",
			expected: time.Date(2015, 5, 15, 0, 0, 0, 0, time.UTC),
		},
		"iso datetime": {
			input:    " 2015-05-15T10:00:00 ",
			expected: time.Date(2015, 5, 15, 10, 0, 0, 0, time.UTC),
		},
		"garbage": {
			input: "yesterday",
			err:   ErrInvalidDate,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := ParseDate(td.input)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestReadHistory(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected *TimeDataset
		err      error
	}{
		"kc house style": {
			input: `id,date,price,bedrooms
"7129300520","20141013T000000",221900,3
"6414100192","20141209T000000",538000,3
"5631500400","20150225T000000",180000,2
"2487200875","20141209T000000",604000,4
`,
			expected: &TimeDataset{
				T: []time.Time{
					time.Date(2014, 10, 13, 0, 0, 0, 0, time.UTC),
					time.Date(2014, 12, 9, 0, 0, 0, 0, time.UTC),
					time.Date(2014, 12, 9, 0, 0, 0, 0, time.UTC),
					time.Date(2015, 2, 25, 0, 0, 0, 0, time.UTC),
				},
				Y: []float64{221900, 538000, 604000, 180000},
			},
		},
		"drops empty and nan prices": {
			input: `date,price
2015-05-14,
2015-05-15,221900
2015-05-16,NaN
`,
			expected: &TimeDataset{
				T: []time.Time{time.Date(2015, 5, 15, 0, 0, 0, 0, time.UTC)},
				Y: []float64{221900},
			},
		},
		"drops empty dates": {
			input: `date,price
,540000
2015-05-15,221900
  ,180000
`,
			expected: &TimeDataset{
				T: []time.Time{time.Date(2015, 5, 15, 0, 0, 0, 0, time.UTC)},
				Y: []float64{221900},
			},
		},
		"only empty dates": {
			input: `date,price
,1
,2
`,
			err: ErrNoTrainingData,
		},
		"empty file": {
			input: "",
			err:   ErrNoTrainingData,
		},
		"header only": {
			input: "date,price\n",
			err:   ErrNoTrainingData,
		},
		"missing price column": {
			input: "date,cost\n2015-05-15,1\n",
			err:   ErrMissingColumn,
		},
		"bad price": {
			input: "date,price\n2015-05-15,abc\n",
			err:   ErrInvalidPrice,
		},
		"bad date": {
			input: "date,price\nnope,1\n",
			err:   ErrInvalidDate,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := ReadHistory(strings.NewReader(td.input))
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestReadHistoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.Nil(t, os.WriteFile(path, []byte("date,price\n20150515T000000,221900\n"), 0o644))

	res, err := ReadHistoryFile(path)
	require.Nil(t, err)
	assert.Equal(t, time.Date(2015, 5, 15, 0, 0, 0, 0, time.UTC), TimeSlice(res.T).EndTime())

	_, err = ReadHistoryFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.NotNil(t, err)
}
