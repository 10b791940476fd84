package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spectra-data/kinetics.report/internal/params"
	"github.com/spectra-data/kinetics.report/internal/spectra"
)

func ptrInt(v int) *int             { return &v }
func ptrFloat64(v float64) *float64 { return &v }

// rampFrame builds a frame with the given labels and deterministic values.
func rampFrame(wavelengths, times []float64, fill func(i, j int) float64) *spectra.Frame {
	f := spectra.New(wavelengths, times)
	for i := range f.Data {
		for j := range f.Data[i] {
			f.Data[i][j] = fill(i, j)
		}
	}
	return f
}

// seq returns n evenly spaced values starting at start.
func seq(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func writeFrame(t *testing.T, path string, f *spectra.Frame) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := f.Write(path); err != nil {
		t.Fatal(err)
	}
}

// loadParams writes a parameters table into dataDir and loads it.
func loadParams(t *testing.T, dataDir, content string) *params.Table {
	t.Helper()
	path := filepath.Join(dataDir, "reaction_parameters.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	table, err := params.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func findOutcome(t *testing.T, outcomes []Outcome, stage, band string) Outcome {
	t.Helper()
	for _, o := range outcomes {
		if o.Stage == stage && o.Band == band {
			return o
		}
	}
	t.Fatalf("No outcome for stage=%s band=%s in %+v", stage, band, outcomes)
	return Outcome{}
}
