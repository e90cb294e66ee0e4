package frame

import (
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"

	apperrors "healthplots/internal/errors"
)

// Count is the number of rows holding Label.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ValueCounts counts the non-missing values of column, most frequent
// first; ties are broken by label.
func ValueCounts(df dataframe.DataFrame, column string) ([]Count, error) {
	vals, err := Values(df, column)
	if err != nil {
		return nil, err
	}

	tally := make(map[string]int)
	for _, v := range vals {
		tally[v]++
	}

	out := make([]Count, 0, len(tally))
	for label, n := range tally {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

// CrossTab holds row counts for every (X, Hue) pair.
type CrossTab struct {
	XColumn   string
	HueColumn string
	X         []string
	Hue       []string
	// Counts[i][j] counts rows with X[i] and Hue[j]
	Counts [][]int
}

// Get returns the count for the pair, 0 when either label is unknown.
func (c *CrossTab) Get(x, hue string) int {
	for i, xv := range c.X {
		if xv != x {
			continue
		}
		for j, hv := range c.Hue {
			if hv == hue {
				return c.Counts[i][j]
			}
		}
	}
	return 0
}

// Max returns the largest cell count.
func (c *CrossTab) Max() int {
	m := 0
	for _, row := range c.Counts {
		for _, v := range row {
			if v > m {
				m = v
			}
		}
	}
	return m
}

// CrossCounts counts rows per (x, hue) pair. Rows missing either value are
// skipped.
func CrossCounts(df dataframe.DataFrame, x, hue string) (*CrossTab, error) {
	xs, err := Column(df, x)
	if err != nil {
		return nil, err
	}
	hs, err := Column(df, hue)
	if err != nil {
		return nil, err
	}

	xRec, xNaN := xs.Records(), xs.IsNaN()
	hRec, hNaN := hs.Records(), hs.IsNaN()

	type pair struct{ x, h string }
	tally := make(map[pair]int)
	xPresent := make(map[string]bool)
	hPresent := make(map[string]bool)
	for i := range xRec {
		if xNaN[i] || hNaN[i] || xRec[i] == "" || hRec[i] == "" {
			continue
		}
		tally[pair{xRec[i], hRec[i]}]++
		xPresent[xRec[i]] = true
		hPresent[hRec[i]] = true
	}

	tab := &CrossTab{
		XColumn:   x,
		HueColumn: hue,
		X:         Levels(x, xPresent),
		Hue:       Levels(hue, hPresent),
	}
	tab.Counts = make([][]int, len(tab.X))
	for i, xv := range tab.X {
		tab.Counts[i] = make([]int, len(tab.Hue))
		for j, hv := range tab.Hue {
			tab.Counts[i][j] = tally[pair{xv, hv}]
		}
	}
	return tab, nil
}

// GroupMean is the mean of a numeric column within one group.
type GroupMean struct {
	Group string  `json:"group"`
	Mean  float64 `json:"mean"`
	N     int     `json:"n"`
}

// MeanBy averages the numeric column value per distinct group label.
// Rows whose value is missing or not numeric are ignored; groups are
// returned in label order.
func MeanBy(df dataframe.DataFrame, group, value string) ([]GroupMean, error) {
	gs, err := Column(df, group)
	if err != nil {
		return nil, err
	}
	vs, err := Column(df, value)
	if err != nil {
		return nil, err
	}

	gRec, gNaN := gs.Records(), gs.IsNaN()
	vRec, vNaN := vs.Records(), vs.IsNaN()

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range gRec {
		if gNaN[i] || vNaN[i] || gRec[i] == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(vRec[i]), 64)
		if err != nil {
			continue
		}
		sums[gRec[i]] += f
		counts[gRec[i]]++
	}

	if len(counts) == 0 {
		return nil, apperrors.NewAppValidationError("no numeric " + value + " values to average")
	}

	out := make([]GroupMean, 0, len(counts))
	for g, n := range counts {
		out = append(out, GroupMean{Group: g, Mean: sums[g] / float64(n), N: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out, nil
}
