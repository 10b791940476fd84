package pipeline

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spectra-data/kinetics.report/internal/monitoring"
	"github.com/spectra-data/kinetics.report/internal/params"
	"github.com/spectra-data/kinetics.report/internal/spectra"
)

// StandardizeTimeAxis maps the raw per-band spectra of one run onto the
// theoretical elapsed-time axis derived from the run's reaction parameters.
// Visible-band rows below the excitation cutoff are dropped. When the raw
// column count disagrees with the axis length (manually stopped acquisition)
// both are right-truncated to the shorter length instead of failing.
func StandardizeTimeAxis(dataDir, folder string, table *params.Table, cfg *Config) []Outcome {
	id, err := params.ParseReactionID(folder)
	if err != nil {
		monitoring.Warnf("skipping %s: %v", folder, err)
		return []Outcome{skipped(folder, StageStandardize, "", "unparseable reaction id")}
	}
	reaction, found := table.Lookup(id)
	if !found {
		monitoring.Warnf("skipping %s: reaction %d not in parameters table", folder, id)
		return []Outcome{skipped(folder, StageStandardize, "", "reaction id not in parameters table")}
	}

	runDir := filepath.Join(dataDir, folder)
	rawDir := filepath.Join(runDir, rawDirName)
	if err := os.MkdirAll(filepath.Join(runDir, cleanedDirName), 0755); err != nil {
		monitoring.Errorf("standardize %s: %v", folder, err)
		return []Outcome{failed(folder, StageStandardize, "", err.Error())}
	}
	axis := reaction.TimeAxis()

	var outcomes []Outcome
	for _, band := range Bands {
		outcomes = append(outcomes, standardizeBand(rawDir, runDir, folder, band, axis, cfg))
	}
	return outcomes
}

func standardizeBand(rawDir, runDir, folder string, band Band, axis []float64, cfg *Config) Outcome {
	path, err := findByPrefix(rawDir, bandPrefix(band)+"_corrected")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			monitoring.Warnf("file missing for %s/%s", folder, band)
			return skipped(folder, StageStandardize, string(band), "no corrected file")
		}
		monitoring.Errorf("standardize %s/%s: %v", folder, band, err)
		return failed(folder, StageStandardize, string(band), err.Error())
	}

	frame, err := spectra.Read(path)
	if err != nil {
		monitoring.Errorf("standardize %s/%s: %v", folder, band, err)
		return failed(folder, StageStandardize, string(band), err.Error())
	}

	if band == BandVIS {
		frame = frame.CutBelow(cfg.GetVisCutoffNm())
	}

	// Acquisitions stopped early leave fewer columns than the theoretical
	// axis; keep the earliest-acquired columns on both sides.
	times := axis
	if frame.Cols() != len(axis) {
		n := min(frame.Cols(), len(axis))
		frame.TruncateColumns(n)
		times = axis[:n]
	}
	frame.Times = append([]float64(nil), times...)

	if err := frame.Write(cleanedPath(runDir, band)); err != nil {
		monitoring.Errorf("standardize %s/%s: %v", folder, band, err)
		return failed(folder, StageStandardize, string(band), err.Error())
	}
	return ok(folder, StageStandardize, string(band), "")
}
