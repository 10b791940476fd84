package pipeline

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/spectra-data/kinetics.report/internal/monitoring"
	"github.com/spectra-data/kinetics.report/internal/spectra"
)

// MergeBands stitches the two smoothed detector bands of one run into a
// single continuous spectrum per timestamp. The visible band is scaled to
// match the near-infrared band in the overlap window around the stitch
// centre; below-threshold or degenerate scaling factors fall back to 1.0 so
// weak signal is never amplified into noise.
func MergeBands(dataDir, folder string, cfg *Config) Outcome {
	runDir := filepath.Join(dataDir, folder)
	nirPath := smoothedPath(runDir, BandNIR)
	visPath := smoothedPath(runDir, BandVIS)

	nirExists := fileExists(nirPath)
	visExists := fileExists(visPath)
	if !nirExists && !visExists {
		return skipped(folder, StageMerge, "", "no smoothed band files")
	}

	if err := os.MkdirAll(filepath.Join(runDir, mergedDirName), 0755); err != nil {
		monitoring.Errorf("merge %s: %v", folder, err)
		return failed(folder, StageMerge, "", err.Error())
	}

	// Single-band mode: pass the surviving band through unchanged.
	if nirExists != visExists {
		path := nirPath
		if visExists {
			path = visPath
		}
		if err := copyFrame(path, mergedPath(runDir)); err != nil {
			monitoring.Errorf("merge %s: %v", folder, err)
			return failed(folder, StageMerge, "", err.Error())
		}
		monitoring.Infof("merge %s: single-band mode (%s only)", folder, filepath.Base(path))
		return ok(folder, StageMerge, "", "single-band mode")
	}

	nir, err := spectra.Read(nirPath)
	if err != nil {
		monitoring.Errorf("merge %s: %v", folder, err)
		return failed(folder, StageMerge, "", err.Error())
	}
	vis, err := spectra.Read(visPath)
	if err != nil {
		monitoring.Errorf("merge %s: %v", folder, err)
		return failed(folder, StageMerge, "", err.Error())
	}

	// Bands are aligned on exact timestamp labels; columns present in only
	// one band are silently dropped.
	shared := spectra.SharedTimes(nir, vis)
	nir = nir.SelectColumns(shared)
	vis = vis.SelectColumns(shared)

	centre := cfg.GetStitchWavelengthNm()
	window := cfg.GetStitchWindowNm()
	for j := range shared {
		visMean := vis.WindowMean(centre-window, centre+window, j)
		nirMean := nir.WindowMean(centre-window, centre+window, j)
		vis.ScaleColumn(j, scalingFactor(nirMean, visMean, cfg.GetMinSignal()))
	}

	merged := spectra.Stitch(vis, nir, centre)
	if err := merged.Write(mergedPath(runDir)); err != nil {
		monitoring.Errorf("merge %s: %v", folder, err)
		return failed(folder, StageMerge, "", err.Error())
	}
	return ok(folder, StageMerge, "", fmt.Sprintf("%d shared columns", len(shared)))
}

// scalingFactor returns the visible-band scale factor for one timestamp.
// Scaling only applies when the visible signal in the overlap window is
// strong enough to calibrate against; everything degenerate maps to 1.0.
func scalingFactor(nirMean, visMean, minSignal float64) float64 {
	if !(visMean > minSignal) {
		return 1.0
	}
	factor := nirMean / visMean
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return 1.0
	}
	return factor
}

func copyFrame(src, dst string) error {
	frame, err := spectra.Read(src)
	if err != nil {
		return err
	}
	return frame.Write(dst)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
