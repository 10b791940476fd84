package pipeline

// Status tags the result of one unit of pipeline work (one run, or one band
// within a run). Failures never abort the pipeline; the runner records them
// and moves on.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Stage names as recorded in outcomes and the report store.
const (
	StageStandardize = "standardize"
	StageSmooth      = "smooth"
	StageMerge       = "merge"
	StageFeatures    = "features"
	StageHeatmaps    = "heatmaps"
	StageSummary     = "summary"
)

// Outcome is the per-unit result of a stage. Band is the detector band for
// per-band stages, the feature channel for summary outcomes, and empty for
// run-level stages (merge, features).
type Outcome struct {
	Folder string
	Stage  string
	Band   string
	Status Status
	Reason string
}

func ok(folder, stage, band, reason string) Outcome {
	return Outcome{Folder: folder, Stage: stage, Band: band, Status: StatusOK, Reason: reason}
}

func skipped(folder, stage, band, reason string) Outcome {
	return Outcome{Folder: folder, Stage: stage, Band: band, Status: StatusSkipped, Reason: reason}
}

func failed(folder, stage, band, reason string) Outcome {
	return Outcome{Folder: folder, Stage: stage, Band: band, Status: StatusFailed, Reason: reason}
}
