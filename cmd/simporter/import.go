// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CIRAIG/bw-Simporter/internal/importer"
	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

var importCmd = &cobra.Command{
	Use:   "import <export.csv>",
	Short: "Run the full import pipeline on a SimaPro export",
	Long: `Import cleans the export, parses it, resolves parameter-defined
allocations, splits multi-output processes, matches every exchange
against ecoinvent and the biosphere flow list, prunes whatever stayed
unlinked, and writes the project database with its parameters.

The four diagnostic buckets (obsolete processes, system processes,
SimaPro-only processes, created biosphere flows) are printed at the end
and written to the report file; their entries must be reconnected
manually inside brightway.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("db-name", "", "name for the imported database (required)")
	importCmd.Flags().String("refdb", "", "path to the ecoinvent reference SQLite database (required)")
	importCmd.Flags().String("ecoinvent-name", "", "name of the ecoinvent database to link against, e.g. \"ecoinvent3.6 cut-off\"")
	importCmd.Flags().String("biosphere-name", "biosphere3", "name of the biosphere database to link against")
	importCmd.Flags().String("output", "", "path of the project database to write (default: <db-name>.db)")
	importCmd.Flags().String("report", "", "path of the YAML diagnostics report (default: <db-name>-unlinked.yaml)")
	importCmd.Flags().String("treated-dir", "treated", "directory receiving the cleaned export copy")
	importCmd.Flags().String("delimiter", ";", "field delimiter used in the export")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := importConfig(cmd, args[0])
	if err != nil {
		return err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	res, err := importer.Run(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	fmt.Printf("\nImported %d processes (%d exchanges written, %d skipped)\n",
		res.Processes, res.Write.Exchanges, res.Write.SkippedExchanges)
	printBucket("obsolete processes", len(res.Diagnostics.ObsoleteProcesses))
	printBucket("system processes", len(res.Diagnostics.SystemProcesses))
	printBucket("only in SimaPro", len(res.Diagnostics.OnlyInSimapro))
	printBucket("created biosphere flows", len(res.Diagnostics.CreatedBiosphereFlows))
	for _, w := range res.PruneWarnings {
		fmt.Println("warning:", w)
	}
	if res.Diagnostics.Empty() && len(res.PruneWarnings) == 0 {
		fmt.Println("Every exchange was linked; no manual follow-up needed.")
	} else if cfg.ReportPath != "" {
		fmt.Println("Manual follow-up list written to", cfg.ReportPath)
	}
	return nil
}

func printBucket(label string, n int) {
	if n > 0 {
		fmt.Printf("  %-24s %d\n", label+":", n)
	}
}

// importConfig assembles the run configuration from flags with config
// file fallbacks.
func importConfig(cmd *cobra.Command, csvFile string) (types.ImportConfig, error) {
	stringOpt := func(flag, key string) string {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			return v
		}
		return viper.GetString(key)
	}

	cfg := types.ImportConfig{
		Clean: types.CleanConfig{
			CSVFile:    csvFile,
			TreatedDir: stringOpt("treated-dir", "clean.treated_dir"),
			Delimiter:  stringOpt("delimiter", "clean.delimiter"),
		},
		RefDB: types.RefDBConfig{
			Path:             stringOpt("refdb", "refdb.path"),
			EcoinventName:    stringOpt("ecoinvent-name", "refdb.ecoinvent_name"),
			BiosphereName:    stringOpt("biosphere-name", "refdb.biosphere_name"),
			MaxSearchResults: viper.GetInt("refdb.max_search_results"),
		},
		DBName:     stringOpt("db-name", "db_name"),
		OutputPath: stringOpt("output", "output_path"),
		ReportPath: stringOpt("report", "report_path"),
	}

	if cfg.DBName == "" {
		return cfg, fmt.Errorf("--db-name is required")
	}
	if cfg.RefDB.Path == "" {
		return cfg, fmt.Errorf("--refdb is required")
	}
	if cfg.RefDB.EcoinventName == "" {
		return cfg, fmt.Errorf("--ecoinvent-name is required")
	}
	if cfg.RefDB.BiosphereName == "" {
		cfg.RefDB.BiosphereName = "biosphere3"
	}
	if cfg.Clean.TreatedDir == "" {
		cfg.Clean.TreatedDir = "treated"
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = cfg.DBName + ".db"
	}
	if cfg.ReportPath == "" {
		cfg.ReportPath = cfg.DBName + "-unlinked.yaml"
	}
	return cfg, nil
}
