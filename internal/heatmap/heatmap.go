// Package heatmap renders per-run QA views of the processed spectra: one
// PNG heatmap per frame (wavelength vs. time, colour-coded intensity) and a
// single HTML overview page with interactive charts.
package heatmap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spectra-data/kinetics.report/internal/spectra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Result reports the fate of one rendered artifact.
type Result struct {
	Label   string
	Path    string
	Skipped bool
	Err     error
}

// input maps a processed file within a run folder to its display label.
type input struct {
	relPath string
	label   string
}

var runInputs = []input{
	{filepath.Join("smoothed_data", "Emission_vis_smoothed.csv"), "VIS"},
	{filepath.Join("smoothed_data", "Emission_nir_smoothed.csv"), "NIR"},
	{filepath.Join("merged_data", "Emission_merged.csv"), "Merged"},
}

// RenderRun renders heatmaps for every processed frame present in runDir.
// Missing inputs are skipped, and a failure on one artifact does not stop
// the others. Output lands in <runDir>/plots/.
func RenderRun(runDir, title string) []Result {
	plotsDir := filepath.Join(runDir, "plots")
	var results []Result

	type loaded struct {
		label string
		frame *spectra.Frame
	}
	var frames []loaded

	for _, in := range runInputs {
		path := filepath.Join(runDir, in.relPath)
		if _, err := os.Stat(path); err != nil {
			results = append(results, Result{Label: in.label, Skipped: true})
			continue
		}
		frame, err := spectra.Read(path)
		if err != nil {
			results = append(results, Result{Label: in.label, Err: err})
			continue
		}
		if err := os.MkdirAll(plotsDir, 0755); err != nil {
			results = append(results, Result{Label: in.label, Err: err})
			continue
		}
		out := filepath.Join(plotsDir, "Heatmap_"+in.label+".png")
		if err := RenderPNG(frame, fmt.Sprintf("%s (%s)", title, in.label), out); err != nil {
			results = append(results, Result{Label: in.label, Err: err})
			continue
		}
		results = append(results, Result{Label: in.label, Path: out})
		frames = append(frames, loaded{label: in.label, frame: frame})
	}

	if len(frames) > 0 {
		out := filepath.Join(plotsDir, "heatmaps.html")
		labels := make([]string, len(frames))
		fs := make([]*spectra.Frame, len(frames))
		for i, l := range frames {
			labels[i] = l.label
			fs[i] = l.frame
		}
		if err := RenderHTML(fs, labels, title, out); err != nil {
			results = append(results, Result{Label: "html", Err: err})
		} else {
			results = append(results, Result{Label: "html", Path: out})
		}
	}
	return results
}

// frameGrid adapts a spectral frame to the plotter grid interface:
// X = wavelength, Y = time, Z = intensity.
type frameGrid struct {
	f *spectra.Frame
}

func (g frameGrid) Dims() (c, r int)   { return g.f.Rows(), g.f.Cols() }
func (g frameGrid) Z(c, r int) float64 { return g.f.Data[c][r] }
func (g frameGrid) X(c int) float64    { return g.f.Wavelengths[c] }
func (g frameGrid) Y(r int) float64    { return g.f.Times[r] }

// RenderPNG saves a wavelength-by-time intensity heatmap as a PNG file.
func RenderPNG(frame *spectra.Frame, title, path string) error {
	if frame.Rows() == 0 || frame.Cols() == 0 {
		return fmt.Errorf("empty frame for %s", title)
	}

	hm := plotter.NewHeatMap(frameGrid{frame}, palette.Heat(16, 1))

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Wavelength (nm)"
	p.Y.Label.Text = "Time (s)"
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 10*vg.Inch, path); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}
