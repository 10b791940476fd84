package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spectra-data/kinetics.report/internal/monitoring"
	"github.com/spectra-data/kinetics.report/internal/spectra"
)

// HCConst is Planck's constant times the speed of light in eV*nm, used to
// convert wavelength to photon energy: E = HCConst / lambda.
const HCConst = 1239.84193

// FeatureRecord holds the extracted kinetic features for one timestamp of
// one run. PeakWavelength and FWHMeV are NaN when the noise gate fired or
// the half-maximum geometry was undetermined.
type FeatureRecord struct {
	Timestamp      float64
	MaxIntensity   float64
	PeakWavelength float64
	FWHMeV         float64
}

// ExtractFeatures reduces the smoothed near-infrared spectrum of one run to
// a kinetic trace: per timestamp, the peak intensity, peak position and the
// energy-space FWHM after the Jacobian correction. Absence of the smoothed
// file produces no output and is not an error.
func ExtractFeatures(dataDir, folder string, cfg *Config) Outcome {
	runDir := filepath.Join(dataDir, folder)
	in := smoothedPath(runDir, BandNIR)
	if !fileExists(in) {
		return skipped(folder, StageFeatures, "", "no smoothed nir file")
	}

	frame, err := spectra.Read(in)
	if err != nil {
		monitoring.Errorf("features %s: %v", folder, err)
		return failed(folder, StageFeatures, "", err.Error())
	}

	records := make([]FeatureRecord, 0, frame.Cols())
	for j, timestamp := range frame.Times {
		records = append(records, extractColumn(frame, j, timestamp, cfg))
	}

	if err := writeFeatures(featuresPath(runDir), records); err != nil {
		monitoring.Errorf("features %s: %v", folder, err)
		return failed(folder, StageFeatures, "", err.Error())
	}
	return ok(folder, StageFeatures, "", fmt.Sprintf("%d timestamps", len(records)))
}

func extractColumn(frame *spectra.Frame, j int, timestamp float64, cfg *Config) FeatureRecord {
	intensity := frame.Column(j)
	peakIdx := argmax(intensity)
	peakInt := intensity[peakIdx]
	peakWl := frame.Wavelengths[peakIdx]

	// Noise gate: past the initial transient, a weak peak is assumed to be
	// noise and only the raw intensity is reported.
	if peakInt < cfg.GetIntensityThreshold() && timestamp > cfg.GetTimeThreshold() {
		return FeatureRecord{
			Timestamp:      timestamp,
			MaxIntensity:   peakInt,
			PeakWavelength: math.NaN(),
			FWHMeV:         math.NaN(),
		}
	}

	// Jacobian for the change of variable to energy space:
	// I(E) = I(lambda) * lambda^2 / hc. The reweighting can move the peak
	// index relative to wavelength space.
	energies := make([]float64, len(intensity))
	intensityEV := make([]float64, len(intensity))
	for i, w := range frame.Wavelengths {
		energies[i] = HCConst / w
		intensityEV[i] = intensity[i] * w * w / HCConst
	}

	fwhm, found := fwhmEnergy(energies, intensityEV)
	if !found {
		fwhm = math.NaN()
	}
	return FeatureRecord{
		Timestamp:      timestamp,
		MaxIntensity:   peakInt,
		PeakWavelength: peakWl,
		FWHMeV:         fwhm,
	}
}

// fwhmEnergy computes the full width at half maximum in energy space by
// linearly interpolating the half-maximum crossings on either side of the
// energy-space peak. Returns false when either side has no sample below
// half maximum (monotonic tail, edge effects) or the crossing bracket is
// degenerate.
func fwhmEnergy(energies, intensityEV []float64) (float64, bool) {
	peakIdx := argmax(intensityEV)
	halfMax := intensityEV[peakIdx] / 2.0

	leftIdx := -1
	for i := 0; i < peakIdx; i++ {
		if intensityEV[i] < halfMax {
			leftIdx = i
		}
	}
	rightIdx := -1
	for i := peakIdx + 1; i < len(intensityEV); i++ {
		if intensityEV[i] < halfMax {
			rightIdx = i
			break
		}
	}
	if leftIdx < 0 || rightIdx < 0 {
		return 0, false
	}

	eLeft, okLeft := interpolateCrossing(halfMax,
		intensityEV[leftIdx], intensityEV[leftIdx+1], energies[leftIdx], energies[leftIdx+1])
	eRight, okRight := interpolateCrossing(halfMax,
		intensityEV[rightIdx-1], intensityEV[rightIdx], energies[rightIdx-1], energies[rightIdx])
	if !okLeft || !okRight {
		return 0, false
	}
	return math.Abs(eLeft - eRight), true
}

// interpolateCrossing returns the energy at which the intensity crosses the
// target between two adjacent samples.
func interpolateCrossing(target, i1, i2, e1, e2 float64) (float64, bool) {
	if i1 == i2 {
		return 0, false
	}
	e := e1 + (target-i1)*(e2-e1)/(i2-i1)
	if math.IsNaN(e) || math.IsInf(e, 0) {
		return 0, false
	}
	return e, true
}

// argmax returns the index of the maximum value, first occurrence on ties.
func argmax(xs []float64) int {
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}

var featureHeader = []string{"timestamp", "max_intensity", "peak_wavelength", "fwhm_ev"}

func writeFeatures(path string, records []FeatureRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(featureHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			formatFloat(r.Timestamp),
			formatFloat(r.MaxIntensity),
			formatFloat(r.PeakWavelength),
			formatFloat(r.FWHMeV),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadFeatures loads a per-run feature table. Empty cells become NaN.
func ReadFeatures(path string) ([]FeatureRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var records []FeatureRecord
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(rec) != len(featureHeader) {
			return nil, fmt.Errorf("read %s: row has %d cells, want %d", path, len(rec), len(featureHeader))
		}
		records = append(records, FeatureRecord{
			Timestamp:      parseFloat(rec[0]),
			MaxIntensity:   parseFloat(rec[1]),
			PeakWavelength: parseFloat(rec[2]),
			FWHMeV:         parseFloat(rec[3]),
		})
	}
	return records, nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
