// Package dataset holds the in-memory representation of employee rows and
// the stratified train/holdout partitioner.
package dataset

import (
	"fmt"
	"math/rand"

	"hr-attrition/internal/schema"
)

// Record is one employee row, column name to raw value. Empty string means
// missing. Records are treated as immutable once loaded.
type Record map[string]string

// DataError is a fatal data condition: unreadable source, unmappable label,
// too few examples to stratify. It carries the source and column so the
// failure can be diagnosed from the log line alone.
type DataError struct {
	Source string
	Column string
	Reason string
}

func (e *DataError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("data error in %s, column %s: %s", e.Source, e.Column, e.Reason)
	}
	return fmt.Sprintf("data error in %s: %s", e.Source, e.Reason)
}

// Labeled pairs records with binary labels. Rows whose label could not be
// mapped are excluded at construction time.
type Labeled struct {
	Records []Record
	Labels  []int
	// Excluded counts rows dropped for an unmappable or missing label.
	Excluded int
}

// Label constructs a Labeled set from raw records, mapping the attrition
// flag "Yes" to 1 and "No" to 0. Rows with any other label value are
// excluded before any split or fit.
func Label(records []Record, source string) (*Labeled, error) {
	out := &Labeled{
		Records: make([]Record, 0, len(records)),
		Labels:  make([]int, 0, len(records)),
	}
	for _, r := range records {
		switch r[schema.LabelColumn] {
		case "Yes":
			out.Records = append(out.Records, r)
			out.Labels = append(out.Labels, 1)
		case "No":
			out.Records = append(out.Records, r)
			out.Labels = append(out.Labels, 0)
		default:
			out.Excluded++
		}
	}
	if len(out.Records) == 0 {
		return nil, &DataError{
			Source: source,
			Column: schema.LabelColumn,
			Reason: "no rows with a mappable Yes/No label",
		}
	}
	return out, nil
}

// PositiveRate returns the fraction of rows labeled 1.
func (l *Labeled) PositiveRate() float64 {
	if len(l.Labels) == 0 {
		return 0
	}
	pos := 0
	for _, y := range l.Labels {
		pos += y
	}
	return float64(pos) / float64(len(l.Labels))
}

// Split is a disjoint train/holdout partition of a labeled set.
type Split struct {
	TrainRecords []Record
	TrainLabels  []int
	TestRecords  []Record
	TestLabels   []int
}

// Partition splits the set class by class so the holdout label balance
// matches the overall balance. The same input and seed always produce the
// same membership. Returns a DataError when either class has fewer than
// two examples, since a stratified partition then cannot place at least
// one example on each side.
func Partition(l *Labeled, holdout float64, seed int64) (*Split, error) {
	if holdout <= 0 || holdout >= 1 {
		return nil, fmt.Errorf("holdout fraction must be in (0, 1), got %g", holdout)
	}

	byClass := map[int][]int{}
	for i, y := range l.Labels {
		byClass[y] = append(byClass[y], i)
	}
	for _, class := range []int{0, 1} {
		if len(byClass[class]) < 2 {
			return nil, &DataError{
				Source: "labeled dataset",
				Column: schema.LabelColumn,
				Reason: fmt.Sprintf("class %d has %d examples, need at least 2 to stratify", class, len(byClass[class])),
			}
		}
	}

	rng := rand.New(rand.NewSource(seed))
	s := &Split{}
	// Class order is fixed so the rng consumption is reproducible.
	for _, class := range []int{0, 1} {
		idx := byClass[class]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(float64(len(idx))*holdout + 0.5)
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= len(idx) {
			nTest = len(idx) - 1
		}

		for i, row := range idx {
			if i < nTest {
				s.TestRecords = append(s.TestRecords, l.Records[row])
				s.TestLabels = append(s.TestLabels, class)
			} else {
				s.TrainRecords = append(s.TrainRecords, l.Records[row])
				s.TrainLabels = append(s.TrainLabels, class)
			}
		}
	}
	return s, nil
}

func positiveRate(labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	pos := 0
	for _, y := range labels {
		pos += y
	}
	return float64(pos) / float64(len(labels))
}

// TrainPositiveRate reports the positive fraction of the train partition.
func (s *Split) TrainPositiveRate() float64 { return positiveRate(s.TrainLabels) }

// TestPositiveRate reports the positive fraction of the holdout partition.
func (s *Split) TestPositiveRate() float64 { return positiveRate(s.TestLabels) }
