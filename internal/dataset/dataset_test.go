package dataset

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func syntheticRecords(n int, positiveRate float64) []Record {
	records := make([]Record, n)
	for i := 0; i < n; i++ {
		label := "No"
		if float64(i%100) < positiveRate*100 {
			label = "Yes"
		}
		records[i] = Record{
			"EmployeeNumber": fmt.Sprintf("%d", i+1),
			"Age":            fmt.Sprintf("%d", 25+i%30),
			"Department":     []string{"Sales", "Human Resources"}[i%2],
			"Attrition":      label,
		}
	}
	return records
}

func TestLabelMapping(t *testing.T) {
	t.Parallel()

	records := []Record{
		{"Attrition": "Yes"},
		{"Attrition": "No"},
		{"Attrition": "Maybe"},
		{"Attrition": ""},
		{"Attrition": "No"},
	}

	l, err := Label(records, "test")
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	if len(l.Records) != 3 {
		t.Fatalf("expected 3 labeled rows, got %d", len(l.Records))
	}
	if l.Excluded != 2 {
		t.Errorf("expected 2 excluded rows, got %d", l.Excluded)
	}
	want := []int{1, 0, 0}
	for i, y := range want {
		if l.Labels[i] != y {
			t.Errorf("row %d: expected label %d, got %d", i, y, l.Labels[i])
		}
	}
}

func TestLabelAllUnmappable(t *testing.T) {
	t.Parallel()

	_, err := Label([]Record{{"Attrition": "?"}, {}}, "employees")
	var de *DataError
	if !errors.As(err, &de) {
		t.Fatalf("expected DataError, got %v", err)
	}
	if de.Column != "Attrition" {
		t.Errorf("expected error to name the Attrition column, got %q", de.Column)
	}
}

func TestPartitionDeterminism(t *testing.T) {
	t.Parallel()

	l, err := Label(syntheticRecords(200, 0.2), "test")
	if err != nil {
		t.Fatal(err)
	}

	a, err := Partition(l, 0.2, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Partition(l, 0.2, 42)
	if err != nil {
		t.Fatal(err)
	}

	if len(a.TestRecords) != len(b.TestRecords) {
		t.Fatalf("holdout sizes differ: %d vs %d", len(a.TestRecords), len(b.TestRecords))
	}
	for i := range a.TestRecords {
		if a.TestRecords[i]["EmployeeNumber"] != b.TestRecords[i]["EmployeeNumber"] {
			t.Fatalf("holdout membership differs at %d", i)
		}
	}
	for i := range a.TrainRecords {
		if a.TrainRecords[i]["EmployeeNumber"] != b.TrainRecords[i]["EmployeeNumber"] {
			t.Fatalf("train membership differs at %d", i)
		}
	}
}

func TestPartitionStratification(t *testing.T) {
	t.Parallel()

	// Mirrors the production dataset shape: 1470 rows, ~16% positive.
	l, err := Label(syntheticRecords(1470, 0.16), "test")
	if err != nil {
		t.Fatal(err)
	}
	overall := l.PositiveRate()

	s, err := Partition(l, 0.2, 42)
	if err != nil {
		t.Fatal(err)
	}

	if got := len(s.TestRecords); got < 280 || got > 310 {
		t.Errorf("expected holdout of ~294 rows, got %d", got)
	}
	if diff := math.Abs(s.TestPositiveRate() - overall); diff > 0.05 {
		t.Errorf("holdout positive rate %f deviates from %f by %f", s.TestPositiveRate(), overall, diff)
	}
	if diff := math.Abs(s.TrainPositiveRate() - overall); diff > 0.05 {
		t.Errorf("train positive rate %f deviates from %f by %f", s.TrainPositiveRate(), overall, diff)
	}
	if len(s.TrainRecords)+len(s.TestRecords) != len(l.Records) {
		t.Error("partitions should cover the full dataset")
	}
}

func TestPartitionInsufficientMinorityClass(t *testing.T) {
	t.Parallel()

	records := []Record{
		{"EmployeeNumber": "1", "Attrition": "No"},
		{"EmployeeNumber": "2", "Attrition": "No"},
		{"EmployeeNumber": "3", "Attrition": "No"},
		{"EmployeeNumber": "4", "Attrition": "Yes"},
	}
	l, err := Label(records, "test")
	if err != nil {
		t.Fatal(err)
	}

	_, err = Partition(l, 0.2, 42)
	var de *DataError
	if !errors.As(err, &de) {
		t.Fatalf("expected DataError for single-example minority class, got %v", err)
	}
}

func TestPartitionInvalidHoldout(t *testing.T) {
	t.Parallel()

	l, err := Label(syntheticRecords(50, 0.3), "test")
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range []float64{0, 1, -0.5, 1.5} {
		if _, err := Partition(l, h, 42); err == nil {
			t.Errorf("holdout %g should be rejected", h)
		}
	}
}
