// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package importer wires the pipeline stages together in their required
// order: clean → parse → allocation → decomposition → technosphere
// matching → biosphere matching → pruning → formula snapshot → persist.
// Every stage must fully complete before the next starts; a fatal stage
// error aborts the run, everything recoverable ends up in the returned
// diagnostics.
package importer

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/CIRAIG/bw-Simporter/internal/clean"
	"github.com/CIRAIG/bw-Simporter/internal/match"
	"github.com/CIRAIG/bw-Simporter/internal/persist"
	"github.com/CIRAIG/bw-Simporter/internal/refdb"
	"github.com/CIRAIG/bw-Simporter/internal/simacsv"
	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

// Result carries everything an import run produced besides the project
// database itself.
type Result struct {
	// Processes is the number of processes after decomposition.
	Processes int `json:"processes" yaml:"processes"`

	// Diagnostics holds the four buckets needing manual reconnection.
	Diagnostics types.Diagnostics `json:"diagnostics" yaml:"diagnostics"`

	// PruneWarnings lists exchanges that survived the pruning budget.
	PruneWarnings []string `json:"prune_warnings,omitempty" yaml:"prune_warnings,omitempty"`

	// Write summarizes what reached the project database.
	Write persist.WriteResult `json:"write" yaml:"write"`

	// DatabaseParameters and ActivityParameters count written parameters.
	DatabaseParameters int `json:"database_parameters" yaml:"database_parameters"`
	ActivityParameters int `json:"activity_parameters" yaml:"activity_parameters"`
}

// Run executes a full import.
func Run(ctx context.Context, cfg types.ImportConfig, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	res := &Result{}

	log.Info("cleaning the csv file", zap.String("file", cfg.Clean.CSVFile))
	text, err := clean.File(cfg.Clean.CSVFile, cfg.Clean.TreatedDir, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("cleaning export: %w", err)
	}

	log.Info("parsing the export")
	project, err := simacsv.Parse(text, cfg.Clean.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}
	log.Info("export parsed",
		zap.Int("processes", len(project.Processes)),
		zap.Int("global_parameters", len(project.GlobalParameters)))

	log.Info("calculating allocations based on parameters")
	if err := match.ResolveAllocations(project.Processes, project.GlobalParameters); err != nil {
		return nil, err
	}

	log.Info("decomposing multi-output processes")
	procs := match.Decompose(project.Processes)
	res.Processes = len(procs)

	tables, err := match.LoadTables()
	if err != nil {
		return nil, fmt.Errorf("loading reference tables: %w", err)
	}

	ref, err := refdb.Open(cfg.RefDB)
	if err != nil {
		return nil, err
	}
	defer ref.Close()

	matcher := match.NewMatcher(ref, tables,
		cfg.RefDB.EcoinventName, cfg.RefDB.BiosphereName, cfg.DBName, log)

	log.Info("matching to ecoinvent", zap.String("database", cfg.RefDB.EcoinventName))
	if err := matcher.MatchEcoinvent(ctx, procs, &res.Diagnostics); err != nil {
		return nil, err
	}

	log.Info("matching to biosphere", zap.String("database", cfg.RefDB.BiosphereName))
	if err := matcher.MatchBiosphere(ctx, procs, &res.Diagnostics); err != nil {
		return nil, err
	}

	log.Info("removing unlinked exchanges")
	pruned := match.PruneUnlinked(procs, log)
	res.PruneWarnings = pruned.Warnings
	log.Info("pruning done", zap.Int("removed", pruned.Removed))

	match.SnapshotFormulaAmounts(procs)

	log.Info("writing the database", zap.String("path", cfg.OutputPath))
	store, err := persist.Open(cfg.OutputPath, cfg.DBName)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	res.Write, err = store.WriteProcesses(ctx, procs)
	if err != nil {
		return nil, err
	}

	log.Info("importing the parameters")
	res.DatabaseParameters, err = store.WriteDatabaseParameters(ctx, project.GlobalParameters)
	if err != nil {
		return nil, err
	}
	res.ActivityParameters, err = store.WriteActivityParameters(ctx, procs)
	if err != nil {
		return nil, err
	}

	if cfg.ReportPath != "" {
		if err := writeReport(cfg.ReportPath, res); err != nil {
			return nil, err
		}
	}

	if !res.Diagnostics.Empty() {
		log.Info("manual follow-up required",
			zap.Int("obsolete_processes", len(res.Diagnostics.ObsoleteProcesses)),
			zap.Int("system_processes", len(res.Diagnostics.SystemProcesses)),
			zap.Int("only_in_simapro", len(res.Diagnostics.OnlyInSimapro)),
			zap.Int("created_biosphere_flows", len(res.Diagnostics.CreatedBiosphereFlows)))
	}

	return res, nil
}

// writeReport dumps the run result to a YAML file for manual follow-up.
func writeReport(path string, res *Result) error {
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
