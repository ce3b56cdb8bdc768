// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// UnlinkedProcess records a technosphere exchange that was routed to a
// side bucket instead of being matched: the composite exchange name, the
// process that used it, and the exchanged amount.
type UnlinkedProcess struct {
	Name   string  `json:"name" yaml:"name"`
	Origin string  `json:"origin" yaml:"origin"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// CreatedBiosphereFlow records an elementary flow that could not be
// resolved against the reference flow list under any rename.
type CreatedBiosphereFlow struct {
	Name       string   `json:"name" yaml:"name"`
	Categories []string `json:"categories" yaml:"categories"`
	Process    string   `json:"process" yaml:"process"`
	Amount     float64  `json:"amount" yaml:"amount"`
}

// Diagnostics gathers the side buckets an import run produces. Everything
// here needs manual reconnection inside brightway after the import.
type Diagnostics struct {
	// ObsoleteProcesses used a name from the obsolete-processes list.
	ObsoleteProcesses []UnlinkedProcess `json:"obsolete_processes" yaml:"obsolete_processes"`

	// SystemProcesses referenced a system-aggregated ("Cut-off, S") record.
	SystemProcesses []UnlinkedProcess `json:"system_processes" yaml:"system_processes"`

	// OnlyInSimapro referenced a process that exists only in the source tool.
	OnlyInSimapro []UnlinkedProcess `json:"only_in_simapro" yaml:"only_in_simapro"`

	// CreatedBiosphereFlows lists elementary flows with no reference match.
	CreatedBiosphereFlows []CreatedBiosphereFlow `json:"created_biosphere_flows" yaml:"created_biosphere_flows"`
}

// Empty reports whether every bucket is empty.
func (d *Diagnostics) Empty() bool {
	return len(d.ObsoleteProcesses) == 0 &&
		len(d.SystemProcesses) == 0 &&
		len(d.OnlyInSimapro) == 0 &&
		len(d.CreatedBiosphereFlows) == 0
}

// Total returns the number of records across all buckets.
func (d *Diagnostics) Total() int {
	return len(d.ObsoleteProcesses) + len(d.SystemProcesses) +
		len(d.OnlyInSimapro) + len(d.CreatedBiosphereFlows)
}
