package store

import (
	"errors"
	"path/filepath"
	"testing"

	"hr-attrition/internal/dataset"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:", "employees")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	_, err = s.DB().Exec(`CREATE TABLE employees (
		EmployeeNumber INTEGER PRIMARY KEY,
		Age INTEGER,
		Department TEXT,
		MonthlyIncome INTEGER,
		Attrition TEXT
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	seed := [][]any{
		{1, 34, "Sales", 5200, "No"},
		{2, 27, "Research & Development", 3100, "Yes"},
		{3, 41, "Human Resources", nil, "No"},
	}
	for _, row := range seed {
		if _, err := s.DB().Exec(
			`INSERT INTO employees (EmployeeNumber, Age, Department, MonthlyIncome, Attrition) VALUES (?, ?, ?, ?, ?)`,
			row...,
		); err != nil {
			t.Fatalf("seed row: %v", err)
		}
	}
	return s
}

func TestOpenMissingDatabase(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "nope.db"), "employees")
	var de *dataset.DataError
	if !errors.As(err, &de) {
		t.Fatalf("expected DataError for a missing store, got %v", err)
	}
}

func TestColumns(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	cols, err := s.Columns()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"EmployeeNumber", "Age", "Department", "MonthlyIncome", "Attrition"}
	if len(cols) != len(want) {
		t.Fatalf("expected %d columns, got %v", len(want), cols)
	}
	for i, c := range want {
		if cols[i] != c {
			t.Errorf("column %d: expected %s, got %s", i, c, cols[i])
		}
	}
}

func TestColumnsMissingTable(t *testing.T) {
	t.Parallel()

	s, err := Open(":memory:", "employees")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, err = s.Columns()
	var de *dataset.DataError
	if !errors.As(err, &de) {
		t.Fatalf("expected DataError for a missing table, got %v", err)
	}
}

func TestLoadEmployees(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	records, err := s.LoadEmployees()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0]["Department"] != "Sales" || records[0]["Age"] != "34" {
		t.Errorf("unexpected first record: %v", records[0])
	}
	// NULL maps to a missing (empty) field.
	if records[2]["MonthlyIncome"] != "" {
		t.Errorf("NULL income should load as empty, got %q", records[2]["MonthlyIncome"])
	}
}

func TestSnapshotCachesUntilInvalidated(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	first, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(first))
	}

	// Write behind the cache's back; the snapshot keeps serving the old
	// view until explicitly invalidated.
	if _, err := s.DB().Exec(
		`INSERT INTO employees (EmployeeNumber, Age, Department, MonthlyIncome, Attrition) VALUES (4, 30, 'Sales', 4000, 'No')`,
	); err != nil {
		t.Fatal(err)
	}
	cached, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 3 {
		t.Fatalf("expected the cached view of 3 rows, got %d", len(cached))
	}

	s.Invalidate()
	fresh, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 4 {
		t.Fatalf("expected 4 rows after invalidation, got %d", len(fresh))
	}
}

func TestInsertEmployeeInvalidatesCache(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if _, err := s.Snapshot(); err != nil {
		t.Fatal(err)
	}

	err := s.InsertEmployee(dataset.Record{
		"EmployeeNumber": "10",
		"Age":            "29",
		"Department":     "Sales",
		"MonthlyIncome":  "4500",
		"Attrition":      "No",
	})
	if err != nil {
		t.Fatal(err)
	}

	records, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("expected the insert to be visible after invalidation, got %d rows", len(records))
	}
}

func TestUpdateEmployeeInvalidatesCache(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if _, err := s.Snapshot(); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateEmployee("2", map[string]string{"Department": "Sales", "MonthlyIncome": "3300"}); err != nil {
		t.Fatal(err)
	}

	records, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	var updated dataset.Record
	for _, r := range records {
		if r["EmployeeNumber"] == "2" {
			updated = r
		}
	}
	if updated == nil {
		t.Fatal("employee 2 vanished")
	}
	if updated["Department"] != "Sales" || updated["MonthlyIncome"] != "3300" {
		t.Errorf("update not applied: %v", updated)
	}
}

func TestInsertEmptyRecordRejected(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if err := s.InsertEmployee(dataset.Record{}); err == nil {
		t.Error("expected an error inserting an empty record")
	}
}
