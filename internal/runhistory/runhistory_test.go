package runhistory

import (
	"path/filepath"
	"testing"
	"time"

	"hr-attrition/internal/eval"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open run history: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestAppendAndRecentRoundTrip(t *testing.T) {
	t.Parallel()

	l := openTestLog(t)
	run := Run{
		Timestamp:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		TrainRows:    1176,
		TestRows:     294,
		PositiveRate: 0.161,
		Metrics: eval.Result{
			Accuracy:     0.84,
			AUC:          0.79,
			AUCAvailable: true,
		},
		Converged:    true,
		Iterations:   1480,
		ArtifactPath: "models/attrition_model.json",
	}
	if err := l.Append(run); err != nil {
		t.Fatal(err)
	}

	runs, err := l.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if !got.Timestamp.Equal(run.Timestamp) || got.TrainRows != run.TrainRows {
		t.Errorf("run record changed across round trip: %+v", got)
	}
	if got.Metrics.AUC != run.Metrics.AUC || !got.Metrics.AUCAvailable {
		t.Errorf("metrics changed across round trip: %+v", got.Metrics)
	}
}

func TestRecentNewestFirstAndLimited(t *testing.T) {
	t.Parallel()

	l := openTestLog(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := Run{Timestamp: base.Add(time.Duration(i) * time.Hour), TrainRows: i}
		if err := l.Append(run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := l.Recent(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, want := range []int{4, 3, 2} {
		if runs[i].TrainRows != want {
			t.Errorf("run %d: expected marker %d, got %d", i, want, runs[i].TrainRows)
		}
	}
}

func TestRecentEmptyLog(t *testing.T) {
	t.Parallel()

	runs, err := openTestLog(t).Recent(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
