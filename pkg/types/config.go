// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CleanConfig holds settings for the export cleanup stage.
type CleanConfig struct {
	// CSVFile is the path to the raw SimaPro CSV export.
	CSVFile string `json:"csv_file" yaml:"csv_file"`

	// TreatedDir is the directory receiving the cleaned copy.
	TreatedDir string `json:"treated_dir" yaml:"treated_dir"`

	// Delimiter is the field delimiter used in the export (default ";").
	Delimiter string `json:"delimiter" yaml:"delimiter"`
}

// RefDBConfig holds settings for the reference database the project is
// linked against.
type RefDBConfig struct {
	// Path is the SQLite file holding the reference data.
	Path string `json:"path" yaml:"path"`

	// EcoinventName is the database name resolved technosphere links carry
	// (e.g. "ecoinvent3.6 cut-off").
	EcoinventName string `json:"ecoinvent_name" yaml:"ecoinvent_name"`

	// BiosphereName is the database name resolved elementary-flow links
	// carry (normally "biosphere3").
	BiosphereName string `json:"biosphere_name" yaml:"biosphere_name"`

	// MaxSearchResults bounds filtered name searches (default 25).
	MaxSearchResults int `json:"max_search_results" yaml:"max_search_results"`
}

// ImportConfig groups all settings for one import run.
type ImportConfig struct {
	Clean CleanConfig `json:"clean" yaml:"clean"`
	RefDB RefDBConfig `json:"refdb" yaml:"refdb"`

	// DBName is the name the imported project database will have.
	DBName string `json:"db_name" yaml:"db_name"`

	// OutputPath is the SQLite file the resolved project is written to.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// ReportPath receives the YAML diagnostics report. Empty disables it.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}
