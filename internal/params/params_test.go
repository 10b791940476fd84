package params

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTable(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTable(t, t.TempDir(), "reaction_parameters.csv",
		"reaction_id,num_measurements,frequency,duration_s,volume_ul\n"+
			"1,300,10,3000,50\n"+
			"2,150,5,750,25\n")

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("Expected 2 reactions, got %d", table.Len())
	}

	r, found := table.Lookup(1)
	if !found {
		t.Fatal("Reaction 1 not found")
	}
	want := Reaction{ID: 1, NumMeasurements: 300, Frequency: 10}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("Reaction mismatch (-want +got):\n%s", diff)
	}

	if _, found := table.Lookup(99); found {
		t.Error("Lookup of absent id should fail")
	}
}

func TestLoadRejectsBadTables(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"missing_column", "reaction_id,num_measurements\n1,300\n"},
		{"duplicate_id", "reaction_id,num_measurements,frequency\n1,300,10\n1,200,5\n"},
		{"zero_frequency", "reaction_id,num_measurements,frequency\n1,300,0\n"},
		{"negative_measurements", "reaction_id,num_measurements,frequency\n1,-5,10\n"},
		{"non_numeric_id", "reaction_id,num_measurements,frequency\nabc,300,10\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTable(t, t.TempDir(), "reaction_parameters.csv", tc.content)
			if _, err := Load(path); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	if _, err := Find(dir); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	want := writeTable(t, dir, "reaction_parameters_2026-08-12.csv", "reaction_id,num_measurements,frequency\n")
	got, err := Find(dir)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestParseReactionID(t *testing.T) {
	testCases := []struct {
		name      string
		folder    string
		expected  int
		expectErr bool
	}{
		{"simple", "01_Ratio-10", 1, false},
		{"multi_digit", "42_test_run", 42, false},
		{"no_underscore", "7", 7, false},
		{"no_digits", "calibration", 0, true},
		{"trailing_text", "3a_run", 0, true},
		{"empty", "", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseReactionID(tc.folder)
			if tc.expectErr {
				if err == nil {
					t.Errorf("Expected error for %q, got nil", tc.folder)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if id != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, id)
			}
		})
	}
}

func TestTimeAxis(t *testing.T) {
	r := Reaction{ID: 1, NumMeasurements: 4, Frequency: 10}
	got := r.TimeAxis()
	want := []float64{0, 10, 20, 30}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Time axis mismatch (-want +got):\n%s", diff)
	}

	empty := Reaction{ID: 2, NumMeasurements: 0, Frequency: 5}
	if len(empty.TimeAxis()) != 0 {
		t.Error("Expected empty axis for zero measurements")
	}
}
