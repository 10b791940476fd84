// Package report persists pipeline execution reports to a SQLite database
// at the experiment root, so processing campaigns can be audited after the
// fact: which runs were produced, which bands were skipped and why.
package report

import (
	"database/sql"
	"time"

	"github.com/spectra-data/kinetics.report/internal/pipeline"
	_ "modernc.org/sqlite"
)

// Store wraps the report database.
type Store struct {
	*sql.DB
}

// Open opens (creating if necessary) the report database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS pipeline_runs (
			execution_id      TEXT PRIMARY KEY,
			data_dir          TEXT,
			started_at        TIMESTAMP,
			finished_at       TIMESTAMP,
			folder_count      BIGINT,
			ok_count          BIGINT,
			skipped_count     BIGINT,
			failed_count      BIGINT
		);
		CREATE TABLE IF NOT EXISTS stage_outcomes (
			execution_id      TEXT,
			folder            TEXT,
			stage             TEXT,
			band              TEXT,
			status            TEXT,
			reason            TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(execution_id) REFERENCES pipeline_runs(execution_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db}, nil
}

// RecordReport stores one pipeline execution and all its stage outcomes in
// a single transaction.
func (s *Store) RecordReport(rep *pipeline.Report) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	okCount, skippedCount, failedCount := rep.Counts()
	_, err = tx.Exec(
		`INSERT INTO pipeline_runs (
			execution_id, data_dir, started_at, finished_at,
			folder_count, ok_count, skipped_count, failed_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ExecutionID, rep.DataDir,
		rep.StartedAt.UTC().Format(time.RFC3339Nano),
		rep.FinishedAt.UTC().Format(time.RFC3339Nano),
		len(rep.Folders), okCount, skippedCount, failedCount,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO stage_outcomes (execution_id, folder, stage, band, status, reason)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, o := range rep.Outcomes {
		if _, err := stmt.Exec(rep.ExecutionID, o.Folder, o.Stage, o.Band, string(o.Status), o.Reason); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// OutcomeCount returns the number of stage outcomes recorded for an
// execution.
func (s *Store) OutcomeCount(executionID string) (int, error) {
	var n int
	err := s.QueryRow(
		`SELECT COUNT(*) FROM stage_outcomes WHERE execution_id = ?`, executionID,
	).Scan(&n)
	return n, err
}
