package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spectra-data/kinetics.report/internal/heatmap"
	"github.com/spectra-data/kinetics.report/internal/monitoring"
	"github.com/spectra-data/kinetics.report/internal/params"
)

// Report accumulates the tagged outcomes of one pipeline execution. The
// runner never aborts on data errors; the report is the record of what was
// produced, skipped and failed.
type Report struct {
	ExecutionID string
	DataDir     string
	StartedAt   time.Time
	FinishedAt  time.Time
	Folders     []string
	Outcomes    []Outcome
}

// Add appends outcomes to the report.
func (r *Report) Add(outcomes ...Outcome) {
	r.Outcomes = append(r.Outcomes, outcomes...)
}

// Counts returns the number of ok, skipped and failed outcomes.
func (r *Report) Counts() (okCount, skippedCount, failedCount int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusOK:
			okCount++
		case StatusSkipped:
			skippedCount++
		case StatusFailed:
			failedCount++
		}
	}
	return okCount, skippedCount, failedCount
}

// Runner executes the full pipeline over one experiment directory: per run,
// standardize, smooth, merge, render heatmaps and extract features, then
// compile the cross-run summaries once every run has finished.
type Runner struct {
	DataDir   string
	Config    *Config
	Params    *params.Table
	SkipPlots bool
}

// DiscoverRuns lists the run folders under dataDir: directories whose name
// begins with a decimal digit, sorted by name.
func DiscoverRuns(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, err
	}
	var folders []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() && len(name) > 0 && name[0] >= '0' && name[0] <= '9' {
			folders = append(folders, name)
		}
	}
	sort.Strings(folders)
	return folders, nil
}

// Run processes every run folder sequentially and compiles the summaries.
// It fails outright only when there is nothing to process: a nil parameters
// table or an unreadable data directory.
func (r *Runner) Run() (*Report, error) {
	if r.Params == nil {
		return nil, fmt.Errorf("no reaction parameters table")
	}
	cfg := r.Config
	if cfg == nil {
		cfg = EmptyConfig()
	}

	folders, err := DiscoverRuns(r.DataDir)
	if err != nil {
		return nil, fmt.Errorf("discover runs in %s: %w", r.DataDir, err)
	}

	report := &Report{
		ExecutionID: uuid.NewString(),
		DataDir:     r.DataDir,
		StartedAt:   time.Now(),
		Folders:     folders,
	}
	monitoring.Infof("found %d run folders in %s", len(folders), r.DataDir)

	for _, folder := range folders {
		report.Add(StandardizeTimeAxis(r.DataDir, folder, r.Params, cfg)...)
		report.Add(SmoothSpectra(r.DataDir, folder, cfg)...)
		report.Add(MergeBands(r.DataDir, folder, cfg))
		if !r.SkipPlots {
			report.Add(renderHeatmaps(r.DataDir, folder)...)
		}
		report.Add(ExtractFeatures(r.DataDir, folder, cfg))
	}

	// Summary compilation only starts once every run's features are final.
	report.Add(CompileSummaries(r.DataDir, folders, cfg)...)

	report.FinishedAt = time.Now()
	okCount, skippedCount, failedCount := report.Counts()
	monitoring.Infof("pipeline %s finished: %d ok, %d skipped, %d failed",
		report.ExecutionID, okCount, skippedCount, failedCount)
	return report, nil
}

// renderHeatmaps adapts the heatmap renderer's results into outcomes.
func renderHeatmaps(dataDir, folder string) []Outcome {
	results := heatmap.RenderRun(filepath.Join(dataDir, folder), folder)
	outcomes := make([]Outcome, 0, len(results))
	for _, res := range results {
		switch {
		case res.Err != nil:
			monitoring.Errorf("heatmap %s/%s: %v", folder, res.Label, res.Err)
			outcomes = append(outcomes, failed(folder, StageHeatmaps, res.Label, res.Err.Error()))
		case res.Skipped:
			outcomes = append(outcomes, skipped(folder, StageHeatmaps, res.Label, "no input file"))
		default:
			outcomes = append(outcomes, ok(folder, StageHeatmaps, res.Label, ""))
		}
	}
	return outcomes
}
