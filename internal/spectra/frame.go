// Package spectra provides the wavelength-by-time intensity frame that all
// pipeline stages operate on, together with its CSV codec. A frame is read
// from and written to the same layout the spectrometer export uses: the
// first column holds wavelengths (row labels), the header row holds the
// acquisition time labels, and every remaining cell is an intensity.
package spectra

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
)

// Frame is a dense spectral table. Wavelengths label the rows and are
// strictly increasing; Times label the columns. Data is indexed
// [row][column].
type Frame struct {
	Wavelengths []float64
	Times       []float64
	Data        [][]float64
}

// New allocates a zeroed frame with the given labels.
func New(wavelengths, times []float64) *Frame {
	data := make([][]float64, len(wavelengths))
	for i := range data {
		data[i] = make([]float64, len(times))
	}
	return &Frame{Wavelengths: wavelengths, Times: times, Data: data}
}

// Rows returns the number of wavelength rows.
func (f *Frame) Rows() int { return len(f.Wavelengths) }

// Cols returns the number of time columns.
func (f *Frame) Cols() int { return len(f.Times) }

// Column returns a copy of column j.
func (f *Frame) Column(j int) []float64 {
	out := make([]float64, f.Rows())
	for i := range f.Data {
		out[i] = f.Data[i][j]
	}
	return out
}

// SetColumn replaces column j with vals. Length must match the row count.
func (f *Frame) SetColumn(j int, vals []float64) {
	for i := range f.Data {
		f.Data[i][j] = vals[i]
	}
}

// CutBelow returns a new frame keeping only rows with wavelength >= min.
func (f *Frame) CutBelow(min float64) *Frame {
	out := &Frame{Times: append([]float64(nil), f.Times...)}
	for i, w := range f.Wavelengths {
		if w >= min {
			out.Wavelengths = append(out.Wavelengths, w)
			out.Data = append(out.Data, append([]float64(nil), f.Data[i]...))
		}
	}
	return out
}

// TruncateColumns drops all columns past n, keeping the earliest-acquired
// ones. A no-op when the frame already has n or fewer columns.
func (f *Frame) TruncateColumns(n int) {
	if n >= f.Cols() {
		return
	}
	f.Times = f.Times[:n]
	for i := range f.Data {
		f.Data[i] = f.Data[i][:n]
	}
}

// RoundWavelengths rounds the row labels to the given number of decimals.
func (f *Frame) RoundWavelengths(decimals int) {
	p := math.Pow(10, float64(decimals))
	for i, w := range f.Wavelengths {
		f.Wavelengths[i] = math.Round(w*p) / p
	}
}

// RoundValues rounds every intensity to the given number of decimals.
func (f *Frame) RoundValues(decimals int) {
	p := math.Pow(10, float64(decimals))
	for i := range f.Data {
		for j, v := range f.Data[i] {
			f.Data[i][j] = math.Round(v*p) / p
		}
	}
}

// SelectColumns returns a new frame restricted to the given time labels, in
// the given order. Labels not present in the frame are ignored.
func (f *Frame) SelectColumns(times []float64) *Frame {
	idx := make(map[float64]int, f.Cols())
	for j, t := range f.Times {
		idx[t] = j
	}
	var cols []int
	var kept []float64
	for _, t := range times {
		if j, ok := idx[t]; ok {
			cols = append(cols, j)
			kept = append(kept, t)
		}
	}
	out := &Frame{
		Wavelengths: append([]float64(nil), f.Wavelengths...),
		Times:       kept,
	}
	out.Data = make([][]float64, f.Rows())
	for i := range out.Data {
		row := make([]float64, len(cols))
		for k, j := range cols {
			row[k] = f.Data[i][j]
		}
		out.Data[i] = row
	}
	return out
}

// SharedTimes returns the time labels present in both frames, in a's order.
func SharedTimes(a, b *Frame) []float64 {
	inB := make(map[float64]bool, b.Cols())
	for _, t := range b.Times {
		inB[t] = true
	}
	var out []float64
	for _, t := range a.Times {
		if inB[t] {
			out = append(out, t)
		}
	}
	return out
}

// WindowMean returns the mean intensity of column j over all rows whose
// wavelength lies in [lo, hi]. Returns NaN when no row falls in the window.
func (f *Frame) WindowMean(lo, hi float64, j int) float64 {
	var sum float64
	var n int
	for i, w := range f.Wavelengths {
		if w >= lo && w <= hi {
			sum += f.Data[i][j]
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// ScaleColumn multiplies every value in column j by factor.
func (f *Frame) ScaleColumn(j int, factor float64) {
	for i := range f.Data {
		f.Data[i][j] *= factor
	}
}

// Stitch combines two frames with identical time labels into one spectrum:
// rows of low with wavelength < cut, rows of high with wavelength >= cut,
// sorted ascending by wavelength.
func Stitch(low, high *Frame, cut float64) *Frame {
	out := &Frame{Times: append([]float64(nil), low.Times...)}
	for i, w := range low.Wavelengths {
		if w < cut {
			out.Wavelengths = append(out.Wavelengths, w)
			out.Data = append(out.Data, append([]float64(nil), low.Data[i]...))
		}
	}
	for i, w := range high.Wavelengths {
		if w >= cut {
			out.Wavelengths = append(out.Wavelengths, w)
			out.Data = append(out.Data, append([]float64(nil), high.Data[i]...))
		}
	}
	sort.Sort(byWavelength{out})
	return out
}

type byWavelength struct{ f *Frame }

func (s byWavelength) Len() int { return s.f.Rows() }
func (s byWavelength) Less(i, j int) bool {
	return s.f.Wavelengths[i] < s.f.Wavelengths[j]
}
func (s byWavelength) Swap(i, j int) {
	s.f.Wavelengths[i], s.f.Wavelengths[j] = s.f.Wavelengths[j], s.f.Wavelengths[i]
	s.f.Data[i], s.f.Data[j] = s.f.Data[j], s.f.Data[i]
}

// Read loads a frame from a CSV file. The first header cell (the index
// label) is ignored; remaining header cells and the first column must parse
// as numbers.
func Read(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, fmt.Errorf("read %s: not a spectral table", path)
	}

	f := &Frame{}
	for _, label := range records[0][1:] {
		t, err := strconv.ParseFloat(label, 64)
		if err != nil {
			return nil, fmt.Errorf("read %s: bad time label %q: %w", path, label, err)
		}
		f.Times = append(f.Times, t)
	}
	for n, rec := range records[1:] {
		if len(rec) != len(records[0]) {
			return nil, fmt.Errorf("read %s: row %d has %d cells, want %d", path, n+2, len(rec), len(records[0]))
		}
		w, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("read %s: bad wavelength %q: %w", path, rec[0], err)
		}
		row := make([]float64, len(rec)-1)
		for j, cell := range rec[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("read %s: bad value %q at row %d: %w", path, cell, n+2, err)
			}
			row[j] = v
		}
		f.Wavelengths = append(f.Wavelengths, w)
		f.Data = append(f.Data, row)
	}
	return f, nil
}

// Write stores the frame as CSV in the same layout Read expects.
func (f *Frame) Write(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := make([]string, 0, f.Cols()+1)
	header = append(header, "")
	for _, t := range f.Times {
		header = append(header, formatNumber(t))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, f.Cols()+1)
	for i := range f.Data {
		row[0] = formatNumber(f.Wavelengths[i])
		for j, v := range f.Data[i] {
			row[j+1] = formatNumber(v)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
