// Command analyse runs the spectral kinetics processing pipeline over one
// experiment directory: it standardizes, smooths, merges and feature-extracts
// every reaction run folder, renders QA heatmaps, compiles the cross-run
// summary tables and records an execution report.
package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/spectra-data/kinetics.report/internal/params"
	"github.com/spectra-data/kinetics.report/internal/pipeline"
	"github.com/spectra-data/kinetics.report/internal/report"
)

func main() {
	dataDir := flag.String("data-dir", "", "path to the date-specific experiment folder (required)")
	configPath := flag.String("config", "", "path to a JSON tuning config (optional; defaults apply)")
	reportDB := flag.String("report-db", "", "path to the report database (default <data-dir>/pipeline_report.db)")
	skipPlots := flag.Bool("skip-plots", false, "skip heatmap rendering")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(2)
	}
	if info, err := os.Stat(*dataDir); err != nil || !info.IsDir() {
		log.Fatalf("data directory not found: %s", *dataDir)
	}

	cfg := pipeline.EmptyConfig()
	if *configPath != "" {
		var err error
		cfg, err = pipeline.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	// A missing parameters table is the only run-stopping condition: there
	// is nothing to process without it.
	paramsPath, err := params.Find(*dataDir)
	if err != nil {
		if errors.Is(err, params.ErrNotFound) {
			log.Fatalf("no %s*.csv found in %s", params.FilePrefix, *dataDir)
		}
		log.Fatalf("failed to locate parameters table: %v", err)
	}
	table, err := params.Load(paramsPath)
	if err != nil {
		log.Fatalf("failed to load parameters table: %v", err)
	}
	log.Printf("loaded %d reactions from %s", table.Len(), paramsPath)

	runner := &pipeline.Runner{
		DataDir:   *dataDir,
		Config:    cfg,
		Params:    table,
		SkipPlots: *skipPlots,
	}
	rep, err := runner.Run()
	if err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}

	dbPath := *reportDB
	if dbPath == "" {
		dbPath = filepath.Join(*dataDir, "pipeline_report.db")
	}
	store, err := report.Open(dbPath)
	if err != nil {
		log.Printf("failed to open report database: %v", err)
		return
	}
	defer store.Close()
	if err := store.RecordReport(rep); err != nil {
		log.Printf("failed to record report: %v", err)
	}
}
