package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

// Band identifies a detector acquisition channel. The near-infrared and
// visible spectrometers each write their own file per run.
type Band string

const (
	BandNIR Band = "nir"
	BandVIS Band = "vis"
)

// Bands lists the detector bands in processing order.
var Bands = []Band{BandNIR, BandVIS}

// Directory and file naming conventions shared with the acquisition layer.
const (
	rawDirName      = "corrected_data"
	cleanedDirName  = "cleaned_data"
	smoothedDirName = "smoothed_data"
	mergedDirName   = "merged_data"
	plotsDirName    = "plots"

	mergedFileName   = "Emission_merged.csv"
	featuresFileName = "Emission_features_nir.csv"
)

// ErrNotFound reports that an expected input file does not exist.
var ErrNotFound = errors.New("not found")

func bandPrefix(band Band) string {
	return "Emission_" + string(band)
}

func cleanedPath(runDir string, band Band) string {
	return filepath.Join(runDir, cleanedDirName, bandPrefix(band)+"_cleaned.csv")
}

func smoothedPath(runDir string, band Band) string {
	return filepath.Join(runDir, smoothedDirName, bandPrefix(band)+"_smoothed.csv")
}

func mergedPath(runDir string) string {
	return filepath.Join(runDir, mergedDirName, mergedFileName)
}

func featuresPath(runDir string) string {
	return filepath.Join(runDir, featuresFileName)
}

// SummaryPath returns the experiment-root summary file for a feature channel.
func SummaryPath(dataDir, channel string) string {
	return filepath.Join(dataDir, fmt.Sprintf("summary_%s_nir.csv", channel))
}

// findByPrefix locates the single file in dir whose name starts with prefix.
// Matches are sorted so the selection is deterministic when the acquisition
// layer leaves more than one candidate behind.
func findByPrefix(dir, prefix string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*.csv"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%s*.csv in %s: %w", prefix, dir, ErrNotFound)
	}
	sort.Strings(matches)
	return matches[0], nil
}
