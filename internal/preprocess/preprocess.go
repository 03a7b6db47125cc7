// Package preprocess converts heterogeneous employee records into the
// fixed-width numeric representation the classifier consumes.
//
// Fit computes all statistics from the train partition only and returns an
// immutable FittedTransform; Apply reuses those statistics unchanged for
// evaluation and inference, never recomputing them from a new batch.
package preprocess

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"hr-attrition/internal/dataset"
	"hr-attrition/internal/schema"
)

// NumericStats holds the fitted fill and scale parameters of one numeric
// column. Missing values are filled with Median, then the value is
// standardized with Mean and Std.
type NumericStats struct {
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
}

// CategoricalStats holds the fitted fill value and the categories seen in
// train for one categorical column. Categories are sorted, and that order
// fixes the column's indicator layout for the life of the transform.
type CategoricalStats struct {
	Fill       string   `json:"fill"`
	Categories []string `json:"categories"`
}

// FittedTransform is the frozen per-column state produced by Fit. The
// output layout is all numeric features in feature-set order followed by
// one indicator block per categorical feature, each block in fitted
// category order.
type FittedTransform struct {
	Features    schema.FeatureSet           `json:"features"`
	Numeric     map[string]NumericStats     `json:"numeric"`
	Categorical map[string]CategoricalStats `json:"categorical"`
}

// Fit computes the transform statistics from the given train records.
func Fit(records []dataset.Record, features schema.FeatureSet) (*FittedTransform, error) {
	t := &FittedTransform{
		Features:    features,
		Numeric:     make(map[string]NumericStats),
		Categorical: make(map[string]CategoricalStats),
	}

	for _, f := range features {
		switch f.Kind {
		case schema.Numeric:
			stats, err := fitNumeric(records, f.Name)
			if err != nil {
				return nil, err
			}
			t.Numeric[f.Name] = stats
		case schema.Categorical:
			stats, err := fitCategorical(records, f.Name)
			if err != nil {
				return nil, err
			}
			t.Categorical[f.Name] = stats
		}
	}
	return t, nil
}

func fitNumeric(records []dataset.Record, col string) (NumericStats, error) {
	var values []float64
	for _, r := range records {
		if v, ok := parseNumeric(r[col]); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return NumericStats{}, &dataset.DataError{
			Source: "train partition",
			Column: col,
			Reason: "no parseable numeric values to fit on",
		}
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	std := math.Sqrt(variance)
	if std == 0 {
		std = 1 // constant column, avoid dividing by zero
	}

	return NumericStats{Median: median(values), Mean: mean, Std: std}, nil
}

func fitCategorical(records []dataset.Record, col string) (CategoricalStats, error) {
	counts := map[string]int{}
	for _, r := range records {
		if v := strings.TrimSpace(r[col]); v != "" {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return CategoricalStats{}, &dataset.DataError{
			Source: "train partition",
			Column: col,
			Reason: "no non-missing categorical values to fit on",
		}
	}

	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	// Most frequent value; sorted iteration makes ties deterministic.
	fill, best := "", -1
	for _, c := range categories {
		if counts[c] > best {
			fill, best = c, counts[c]
		}
	}

	return CategoricalStats{Fill: fill, Categories: categories}, nil
}

// Width returns the output dimensionality of the transform.
func (t *FittedTransform) Width() int {
	w := 0
	for _, f := range t.Features {
		switch f.Kind {
		case schema.Numeric:
			w++
		case schema.Categorical:
			w += len(t.Categorical[f.Name].Categories)
		}
	}
	return w
}

// Apply encodes the records into fixed-width rows using the fitted
// statistics. Categories never seen at fit time produce an all-zero
// indicator block; this is a defined fallback, not an error.
func (t *FittedTransform) Apply(records []dataset.Record) [][]float64 {
	width := t.Width()
	out := make([][]float64, len(records))
	for i, r := range records {
		row := make([]float64, 0, width)
		for _, f := range t.Features {
			switch f.Kind {
			case schema.Numeric:
				stats := t.Numeric[f.Name]
				v, ok := parseNumeric(r[f.Name])
				if !ok {
					v = stats.Median
				}
				row = append(row, (v-stats.Mean)/stats.Std)
			case schema.Categorical:
				stats := t.Categorical[f.Name]
				v := strings.TrimSpace(r[f.Name])
				if v == "" {
					v = stats.Fill
				}
				block := make([]float64, len(stats.Categories))
				if j := sort.SearchStrings(stats.Categories, v); j < len(stats.Categories) && stats.Categories[j] == v {
					block[j] = 1
				}
				row = append(row, block...)
			}
		}
		out[i] = row
	}
	return out
}

func parseNumeric(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
