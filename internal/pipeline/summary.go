package pipeline

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/spectra-data/kinetics.report/internal/monitoring"
	"github.com/spectra-data/kinetics.report/internal/savgol"
)

// SummaryChannels are the feature channels aggregated across runs, in
// output order.
var SummaryChannels = []string{"max_intensity", "peak_wavelength", "fwhm_ev"}

// CompileSummaries collects the per-run kinetic traces into one table per
// feature channel, one column per run, aligned on timestamp with outer-join
// semantics. Gated-out values are filled by linear interpolation (then
// boundary back/forward fill) and each trace is smoothed with the same
// Savitzky-Golay settings as the spectral smoother to suppress extraction
// outliers. Tables are written once, after every run has been visited.
func CompileSummaries(dataDir string, folders []string, cfg *Config) []Outcome {
	tables := make(map[string][]summaryColumn, len(SummaryChannels))

	var outcomes []Outcome
	for _, folder := range folders {
		path := featuresPath(filepath.Join(dataDir, folder))
		if !fileExists(path) {
			outcomes = append(outcomes, skipped(folder, StageSummary, "", "no feature file"))
			continue
		}
		records, err := ReadFeatures(path)
		if err != nil {
			monitoring.Errorf("summary %s: %v", folder, err)
			outcomes = append(outcomes, failed(folder, StageSummary, "", err.Error()))
			continue
		}
		if len(records) == 0 {
			outcomes = append(outcomes, skipped(folder, StageSummary, "", "empty feature file"))
			continue
		}

		timestamps := make([]float64, len(records))
		for i, r := range records {
			timestamps[i] = r.Timestamp
		}

		folderOK := true
		for _, channel := range SummaryChannels {
			values := channelValues(records, channel)
			fillGaps(timestamps, values)
			smoothed, err := savgol.Filter(values, cfg.GetSmoothWindow(), cfg.GetSmoothPolyOrder())
			if err != nil {
				monitoring.Errorf("summary %s/%s: %v", folder, channel, err)
				outcomes = append(outcomes, failed(folder, StageSummary, channel, err.Error()))
				folderOK = false
				continue
			}
			byTime := make(map[float64]float64, len(records))
			for i, t := range timestamps {
				byTime[t] = smoothed[i]
			}
			tables[channel] = append(tables[channel], summaryColumn{folder: folder, values: byTime})
		}
		if folderOK {
			outcomes = append(outcomes, ok(folder, StageSummary, "", ""))
		}
	}

	for _, channel := range SummaryChannels {
		columns := tables[channel]
		if len(columns) == 0 {
			outcomes = append(outcomes, skipped("", StageSummary, channel, "no contributing runs"))
			continue
		}

		union := make(map[float64]bool)
		for _, col := range columns {
			for t := range col.values {
				union[t] = true
			}
		}
		timestamps := make([]float64, 0, len(union))
		for t := range union {
			timestamps = append(timestamps, t)
		}
		sort.Float64s(timestamps)

		path := SummaryPath(dataDir, channel)
		if err := writeSummary(path, timestamps, columns); err != nil {
			monitoring.Errorf("summary %s: %v", channel, err)
			outcomes = append(outcomes, failed("", StageSummary, channel, err.Error()))
			continue
		}
		monitoring.Infof("summary %s: %d runs, %d timestamps", channel, len(columns), len(timestamps))
		outcomes = append(outcomes, ok("", StageSummary, channel, fmt.Sprintf("%d runs", len(columns))))
	}
	return outcomes
}

func channelValues(records []FeatureRecord, channel string) []float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		switch channel {
		case "max_intensity":
			values[i] = r.MaxIntensity
		case "peak_wavelength":
			values[i] = r.PeakWavelength
		case "fwhm_ev":
			values[i] = r.FWHMeV
		}
	}
	return values
}

// fillGaps replaces NaN values in place: interior gaps by linear
// interpolation over the timestamp axis, boundary gaps by back/forward
// fill. A series with no finite value at all is left untouched.
func fillGaps(timestamps, values []float64) {
	n := len(values)
	prev := -1
	for i := 0; i < n; i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			t0, t1 := timestamps[prev], timestamps[i]
			v0, v1 := values[prev], values[i]
			for k := prev + 1; k < i; k++ {
				if t1 == t0 {
					values[k] = v0
					continue
				}
				values[k] = v0 + (v1-v0)*(timestamps[k]-t0)/(t1-t0)
			}
		}
		prev = i
	}

	first, last := -1, -1
	for i := 0; i < n; i++ {
		if !math.IsNaN(values[i]) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return
	}
	for i := 0; i < first; i++ {
		values[i] = values[first]
	}
	for i := last + 1; i < n; i++ {
		values[i] = values[last]
	}
}

// summaryColumn is one run's smoothed trace for a single channel, keyed by
// timestamp.
type summaryColumn struct {
	folder string
	values map[float64]float64
}

func writeSummary(path string, timestamps []float64, columns []summaryColumn) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := make([]string, 0, len(columns)+1)
	header = append(header, "timestamp")
	for _, col := range columns {
		header = append(header, col.folder)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(columns)+1)
	for _, t := range timestamps {
		row[0] = formatFloat(t)
		for i, col := range columns {
			if v, present := col.values[t]; present {
				row[i+1] = formatFloat(v)
			} else {
				row[i+1] = ""
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
