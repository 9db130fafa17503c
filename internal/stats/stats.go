// Package stats computes aggregate views over a journal entry list. All
// functions are pure: they take the entries as a value and perform no I/O.
package stats

import (
	"sort"
	"time"

	"github.com/mkowalczyk/allerlog/internal/client/models"
)

// DefaultTopN bounds result sizes when the caller does not ask otherwise.
const DefaultTopN = 10

// Options tunes the aggregators that rank exposures.
type Options struct {
	// TopN limits how many exposures are returned. Zero or negative
	// means DefaultTopN.
	TopN int
}

func (o Options) topN() int {
	if o.TopN <= 0 {
		return DefaultTopN
	}
	return o.TopN
}

// ExposureFrequencyRow is one ranked exposure with the number of distinct
// calendar days it appeared on.
type ExposureFrequencyRow struct {
	Name string
	Days int
}

// day truncates an occurrence timestamp to its UTC calendar date.
func day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// TopExposures counts, per exposure name, the distinct days the exposure was
// logged on. An exposure appearing twice on the same day counts once for that
// day. Rows are ordered by day count descending; ties keep the order in which
// the exposure was first seen in the input. The result is truncated to
// opts.TopN rows. Entries without exposures contribute nothing.
func TopExposures(entries []models.Entry, opts Options) []ExposureFrequencyRow {
	daysByExposure := make(map[string]map[string]struct{})
	var order []string

	for _, e := range entries {
		d := day(e.OccurredOn)
		for _, name := range e.Exposures {
			set, ok := daysByExposure[name]
			if !ok {
				set = make(map[string]struct{})
				daysByExposure[name] = set
				order = append(order, name)
			}
			set[d] = struct{}{}
		}
	}

	rows := make([]ExposureFrequencyRow, 0, len(order))
	for _, name := range order {
		rows = append(rows, ExposureFrequencyRow{Name: name, Days: len(daysByExposure[name])})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Days > rows[j].Days })

	if n := opts.topN(); len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// SymptomKey identifies one of the four severity categories.
type SymptomKey string

const (
	SymptomUpperRespiratory SymptomKey = "upperRespiratory"
	SymptomLowerRespiratory SymptomKey = "lowerRespiratory"
	SymptomSkin             SymptomKey = "skin"
	SymptomEyes             SymptomKey = "eyes"
)

// symptomGroups is the fixed category order used by SymptomsShare and the
// heatmap's x axis.
var symptomGroups = []struct {
	Key   SymptomKey
	Label string
}{
	{SymptomUpperRespiratory, "Upper respiratory"},
	{SymptomLowerRespiratory, "Lower respiratory"},
	{SymptomSkin, "Skin"},
	{SymptomEyes, "Eyes"},
}

func severity(e models.Entry, key SymptomKey) int {
	switch key {
	case SymptomUpperRespiratory:
		return e.UpperRespiratory
	case SymptomLowerRespiratory:
		return e.LowerRespiratory
	case SymptomSkin:
		return e.Skin
	default:
		return e.Eyes
	}
}

// SymptomShareDatum is one category's summed severity across all entries.
// Value is the raw sum, not a percentage.
type SymptomShareDatum struct {
	ID    int
	Key   SymptomKey
	Label string
	Value int
}

// SymptomsShare sums each severity category across the entries. When the
// summed total field is zero the result is empty, guarding divide-by-zero in
// chart renderers and avoiding an all-zero chart. Zero-valued categories are
// omitted; the rest keep the fixed category order.
func SymptomsShare(entries []models.Entry) []SymptomShareDatum {
	if len(entries) == 0 {
		return nil
	}

	sums := make([]int, len(symptomGroups))
	total := 0
	for _, e := range entries {
		for i, g := range symptomGroups {
			sums[i] += severity(e, g.Key)
		}
		total += e.Total
	}
	if total == 0 {
		return nil
	}

	var out []SymptomShareDatum
	for i, g := range symptomGroups {
		if sums[i] == 0 {
			continue
		}
		out = append(out, SymptomShareDatum{ID: i, Key: g.Key, Label: g.Label, Value: sums[i]})
	}
	return out
}

// Heatmap is the exposure/symptom correlation matrix: one row per selected
// exposure (YLabels), one column per severity category (XLabels). Cells are
// integer percentages; every non-zero row sums to exactly 100.
type Heatmap struct {
	XLabels []string
	YLabels []string
	Matrix  [][]int
}

// ExposureSymptoms selects the topN exposures by raw occurrence count (ties
// keep first-seen order) and computes, for each, the mean share each symptom
// category contributed to the entries mentioning that exposure. Only entries
// with a positive total participate. Each row is scaled to percentages and
// re-normalized so it sums to exactly 100 regardless of per-cell rounding;
// an exposure with no severity data yields an all-zero row.
func ExposureSymptoms(entries []models.Entry, opts Options) Heatmap {
	xLabels := make([]string, len(symptomGroups))
	for i, g := range symptomGroups {
		xLabels[i] = g.Label
	}
	if len(entries) == 0 {
		return Heatmap{XLabels: xLabels, YLabels: []string{}, Matrix: [][]int{}}
	}

	freq := make(map[string]int)
	var order []string
	for _, e := range entries {
		for _, name := range e.Exposures {
			if _, ok := freq[name]; !ok {
				order = append(order, name)
			}
			freq[name]++
		}
	}

	top := make([]string, 0, len(order))
	for _, name := range order {
		if freq[name] > 0 {
			top = append(top, name)
		}
	}
	sort.SliceStable(top, func(i, j int) bool { return freq[top[i]] > freq[top[j]] })
	if n := opts.topN(); len(top) > n {
		top = top[:n]
	}

	index := make(map[string]int, len(top))
	for i, name := range top {
		index[name] = i
	}

	sums := make([][]float64, len(top))
	counts := make([]int, len(top))
	for i := range sums {
		sums[i] = make([]float64, len(symptomGroups))
	}

	for _, e := range entries {
		if e.Total <= 0 {
			continue
		}
		for _, name := range e.Exposures {
			row, ok := index[name]
			if !ok {
				continue
			}
			for col, g := range symptomGroups {
				sums[row][col] += float64(severity(e, g.Key)) / float64(e.Total)
			}
			counts[row]++
		}
	}

	matrix := make([][]int, len(top))
	for i := range top {
		means := make([]float64, len(symptomGroups))
		c := counts[i]
		if c == 0 {
			c = 1
		}
		for col := range symptomGroups {
			means[col] = sums[i][col] / float64(c) * 100
		}
		matrix[i] = normalizeRow(means)
	}

	return Heatmap{XLabels: xLabels, YLabels: top, Matrix: matrix}
}

// normalizeRow converts a row of non-negative weights into integer
// percentages summing to exactly 100, distributing rounding slack to the
// cells with the largest remainders. An all-zero row stays all-zero (the
// row total is treated as 1 to avoid dividing by zero).
func normalizeRow(row []float64) []int {
	total := 0.0
	for _, v := range row {
		total += v
	}
	if total == 0 {
		total = 1
	}

	out := make([]int, len(row))
	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, len(row))
	floored := 0
	for i, v := range row {
		scaled := v / total * 100
		out[i] = int(scaled)
		rems[i] = rem{idx: i, frac: scaled - float64(out[i])}
		floored += out[i]
	}

	// Nothing to distribute on an all-zero row.
	if floored == 0 && total == 1 {
		allZero := true
		for _, v := range row {
			if v != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			return out
		}
	}

	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for i := 0; i < 100-floored && i < len(rems); i++ {
		out[rems[i].idx]++
	}
	return out
}
