package pipeline

import (
	"os"
	"path/filepath"

	"github.com/spectra-data/kinetics.report/internal/monitoring"
	"github.com/spectra-data/kinetics.report/internal/savgol"
	"github.com/spectra-data/kinetics.report/internal/spectra"
)

// SmoothSpectra applies the Savitzky-Golay filter along the wavelength axis
// of each cleaned band file present, independently per timestamp column.
// Wavelength labels are rounded to 1 decimal and values to 2 before writing
// so that the merge stage can join the two bands on exact labels.
func SmoothSpectra(dataDir, folder string, cfg *Config) []Outcome {
	runDir := filepath.Join(dataDir, folder)
	if err := os.MkdirAll(filepath.Join(runDir, smoothedDirName), 0755); err != nil {
		monitoring.Errorf("smooth %s: %v", folder, err)
		return []Outcome{failed(folder, StageSmooth, "", err.Error())}
	}

	var outcomes []Outcome
	for _, band := range Bands {
		outcomes = append(outcomes, smoothBand(runDir, folder, band, cfg))
	}
	return outcomes
}

func smoothBand(runDir, folder string, band Band, cfg *Config) Outcome {
	in := cleanedPath(runDir, band)
	if _, err := os.Stat(in); err != nil {
		return skipped(folder, StageSmooth, string(band), "no cleaned file")
	}

	frame, err := spectra.Read(in)
	if err != nil {
		monitoring.Errorf("smooth %s/%s: %v", folder, band, err)
		return failed(folder, StageSmooth, string(band), err.Error())
	}

	frame.RoundWavelengths(1)

	window := cfg.GetSmoothWindow()
	order := cfg.GetSmoothPolyOrder()
	if err := savgol.Validate(window, order, frame.Rows()); err != nil {
		monitoring.Errorf("smooth %s/%s: %v", folder, band, err)
		return failed(folder, StageSmooth, string(band), err.Error())
	}
	for j := 0; j < frame.Cols(); j++ {
		smoothed, err := savgol.Filter(frame.Column(j), window, order)
		if err != nil {
			monitoring.Errorf("smooth %s/%s: %v", folder, band, err)
			return failed(folder, StageSmooth, string(band), err.Error())
		}
		frame.SetColumn(j, smoothed)
	}
	frame.RoundValues(2)

	if err := frame.Write(smoothedPath(runDir, band)); err != nil {
		monitoring.Errorf("smooth %s/%s: %v", folder, band, err)
		return failed(folder, StageSmooth, string(band), err.Error())
	}
	return ok(folder, StageSmooth, string(band), "")
}
