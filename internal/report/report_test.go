package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectra-data/kinetics.report/internal/pipeline"
)

func testReport() *pipeline.Report {
	started := time.Date(2026, 8, 12, 9, 30, 0, 0, time.UTC)
	return &pipeline.Report{
		ExecutionID: "exec-0001",
		DataDir:     "/data/experiment",
		StartedAt:   started,
		FinishedAt:  started.Add(90 * time.Second),
		Folders:     []string{"01_run", "02_run"},
		Outcomes: []pipeline.Outcome{
			{Folder: "01_run", Stage: pipeline.StageStandardize, Band: "nir", Status: pipeline.StatusOK},
			{Folder: "01_run", Stage: pipeline.StageStandardize, Band: "vis", Status: pipeline.StatusSkipped, Reason: "no corrected file"},
			{Folder: "02_run", Stage: pipeline.StageMerge, Status: pipeline.StatusFailed, Reason: "truncated csv"},
		},
	}
}

func TestRecordReport(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "pipeline_report.db"))
	require.NoError(t, err)
	defer store.Close()

	rep := testReport()
	require.NoError(t, store.RecordReport(rep))

	n, err := store.OutcomeCount(rep.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, len(rep.Outcomes), n)

	var dataDir string
	var folderCount, okCount, skippedCount, failedCount int
	err = store.QueryRow(
		`SELECT data_dir, folder_count, ok_count, skipped_count, failed_count
		 FROM pipeline_runs WHERE execution_id = ?`, rep.ExecutionID,
	).Scan(&dataDir, &folderCount, &okCount, &skippedCount, &failedCount)
	require.NoError(t, err)
	assert.Equal(t, rep.DataDir, dataDir)
	assert.Equal(t, 2, folderCount)
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, skippedCount)
	assert.Equal(t, 1, failedCount)

	var status, reason string
	err = store.QueryRow(
		`SELECT status, reason FROM stage_outcomes
		 WHERE execution_id = ? AND folder = ? AND stage = ?`,
		rep.ExecutionID, "02_run", pipeline.StageMerge,
	).Scan(&status, &reason)
	require.NoError(t, err)
	assert.Equal(t, "failed", status)
	assert.Equal(t, "truncated csv", reason)
}

func TestRecordReportDuplicateExecution(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "pipeline_report.db"))
	require.NoError(t, err)
	defer store.Close()

	rep := testReport()
	require.NoError(t, store.RecordReport(rep))

	// A second insert under the same execution id violates the primary key
	// and must leave no orphan outcomes behind.
	require.Error(t, store.RecordReport(rep))
	n, err := store.OutcomeCount(rep.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, len(rep.Outcomes), n)
}

func TestOutcomeCountUnknownExecution(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "pipeline_report.db"))
	require.NoError(t, err)
	defer store.Close()

	n, err := store.OutcomeCount("no-such-execution")
	require.NoError(t, err)
	assert.Zero(t, n)
}
