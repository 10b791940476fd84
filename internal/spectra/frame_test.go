package spectra

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func testFrame() *Frame {
	f := New([]float64{900, 910, 920, 930, 940}, []float64{0, 10, 20})
	for i := range f.Data {
		for j := range f.Data[i] {
			f.Data[i][j] = float64(100*i + j)
		}
	}
	return f
}

func TestReadWriteRoundTrip(t *testing.T) {
	f := testFrame()
	path := filepath.Join(t.TempDir(), "frame.csv")
	if err := f.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if diff := cmp.Diff(f, got); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRejectsMalformed(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"header_only", ",0,10\n"},
		{"bad_time_label", ",zero,10\n900,1,2\n"},
		{"bad_wavelength", ",0,10\nnine,1,2\n"},
		{"bad_value", ",0,10\n900,1,x\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.csv")
			if err := writeFile(path, tc.content); err != nil {
				t.Fatal(err)
			}
			if _, err := Read(path); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestCutBelow(t *testing.T) {
	f := testFrame()
	got := f.CutBelow(920)
	want := []float64{920, 930, 940}
	if diff := cmp.Diff(want, got.Wavelengths); diff != "" {
		t.Errorf("Wavelength mismatch (-want +got):\n%s", diff)
	}
	if got.Data[0][0] != 200 {
		t.Errorf("First kept row should be the 920 row, got value %f", got.Data[0][0])
	}
	if f.Rows() != 5 {
		t.Error("CutBelow must not modify the receiver")
	}
}

func TestTruncateColumns(t *testing.T) {
	testCases := []struct {
		name     string
		n        int
		wantCols int
	}{
		{"shorter", 2, 2},
		{"equal", 3, 3},
		{"longer_is_noop", 5, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := testFrame()
			f.TruncateColumns(tc.n)
			if f.Cols() != tc.wantCols {
				t.Errorf("Expected %d columns, got %d", tc.wantCols, f.Cols())
			}
			for i := range f.Data {
				if len(f.Data[i]) != tc.wantCols {
					t.Errorf("Row %d has %d cells, want %d", i, len(f.Data[i]), tc.wantCols)
				}
			}
			// Earliest-acquired columns are kept.
			if f.Times[0] != 0 {
				t.Errorf("First time label should be 0, got %f", f.Times[0])
			}
		})
	}
}

func TestSelectColumnsAndSharedTimes(t *testing.T) {
	a := testFrame()
	b := New([]float64{900, 910}, []float64{10, 20, 30})

	shared := SharedTimes(a, b)
	if diff := cmp.Diff([]float64{10, 20}, shared); diff != "" {
		t.Errorf("SharedTimes mismatch (-want +got):\n%s", diff)
	}

	got := a.SelectColumns(shared)
	if diff := cmp.Diff(shared, got.Times); diff != "" {
		t.Errorf("SelectColumns times mismatch (-want +got):\n%s", diff)
	}
	if got.Data[0][0] != 1 || got.Data[0][1] != 2 {
		t.Errorf("SelectColumns picked wrong columns: %v", got.Data[0])
	}
}

func TestWindowMean(t *testing.T) {
	f := testFrame()
	// Rows 910, 920, 930 at column 0 hold 100, 200, 300.
	got := f.WindowMean(910, 930, 0)
	if math.Abs(got-200) > 1e-12 {
		t.Errorf("Expected mean 200, got %f", got)
	}

	if !math.IsNaN(f.WindowMean(100, 200, 0)) {
		t.Error("Expected NaN for empty window")
	}
}

func TestScaleColumn(t *testing.T) {
	f := testFrame()
	f.ScaleColumn(1, 2)
	if f.Data[2][1] != 402 {
		t.Errorf("Expected 402, got %f", f.Data[2][1])
	}
	if f.Data[2][0] != 200 {
		t.Error("Other columns must be unchanged")
	}
}

func TestStitch(t *testing.T) {
	low := New([]float64{500, 910, 925, 935}, []float64{0, 10})
	high := New([]float64{920, 930, 940}, []float64{0, 10})
	for i := range low.Data {
		low.Data[i][0] = 1
	}
	for i := range high.Data {
		high.Data[i][0] = 2
	}

	got := Stitch(low, high, 930)

	// The low frame's 935 row and the high frame's 920 row both fall on the
	// wrong side of the cut and are dropped.
	want := []float64{500, 910, 925, 930, 940}
	if diff := cmp.Diff(want, got.Wavelengths); diff != "" {
		t.Errorf("Stitched wavelengths mismatch (-want +got):\n%s", diff)
	}
	for i, w := range got.Wavelengths {
		if w < 930 && got.Data[i][0] != 1 {
			t.Errorf("Row %f below cut should come from low frame", w)
		}
		if w >= 930 && got.Data[i][0] != 2 {
			t.Errorf("Row %f at/above cut should come from high frame", w)
		}
	}
	// Sorted ascending.
	for i := 1; i < len(got.Wavelengths); i++ {
		if got.Wavelengths[i] <= got.Wavelengths[i-1] {
			t.Errorf("Wavelengths not strictly ascending at index %d", i)
		}
	}
}

func TestRounding(t *testing.T) {
	f := New([]float64{900.04, 910.06}, []float64{0})
	f.Data[0][0] = 1.234
	f.Data[1][0] = 5.678
	f.RoundWavelengths(1)
	f.RoundValues(2)

	if diff := cmp.Diff([]float64{900.0, 910.1}, f.Wavelengths); diff != "" {
		t.Errorf("Rounded wavelengths mismatch (-want +got):\n%s", diff)
	}
	if f.Data[0][0] != 1.23 || f.Data[1][0] != 5.68 {
		t.Errorf("Rounded values mismatch: %f, %f", f.Data[0][0], f.Data[1][0])
	}
}
