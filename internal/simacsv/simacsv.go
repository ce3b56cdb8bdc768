// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package simacsv parses a cleaned SimaPro CSV export into Process
// records. The format is not tabular: it is a sequence of blocks
// ("Process" ... "End") whose sections ("Products", "Materials/fuels",
// "Emissions to air", ...) each carry semicolon-delimited lines with a
// section-specific field layout, so the file is scanned line by line
// rather than fed to a CSV reader.
package simacsv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

// Project is the decoded content of one export: the processes in file
// order plus the project-global parameters.
type Project struct {
	Processes        []*types.Process
	GlobalParameters types.ParameterSet
}

// ProcessNames returns the display names of all processes, in order.
func (p *Project) ProcessNames() []string {
	names := make([]string, len(p.Processes))
	for i, proc := range p.Processes {
		names[i] = proc.Name
	}
	return names
}

// section identifiers as they appear in the export.
const (
	secProducts        = "Products"
	secAvoided         = "Avoided products"
	secMaterials       = "Materials/fuels"
	secElectricity     = "Electricity/heat"
	secWaste           = "Waste to treatment"
	secResources       = "Resources"
	secEmissionsAir    = "Emissions to air"
	secEmissionsWater  = "Emissions to water"
	secEmissionsSoil   = "Emissions to soil"
	secInputParams     = "Input parameters"
	secCalcParams      = "Calculated parameters"
	secProcessName     = "Process name"
)

// technosphereSections map section headers to the technosphere kind.
var technosphereSections = map[string]bool{
	secAvoided:     true,
	secMaterials:   true,
	secElectricity: true,
	secWaste:       true,
}

// biosphereSections map section headers to the top-level compartment the
// flows in that section belong to.
var biosphereSections = map[string]string{
	secResources:      "Resources",
	secEmissionsAir:   "Air",
	secEmissionsWater: "Water",
	secEmissionsSoil:  "Soil",
}

// global parameter block headers. SimaPro distinguishes database- and
// project-level parameters; both end up in the same project-global scope
// here.
var globalParamBlocks = map[string]bool{
	"Database Input parameters":      true,
	"Database Calculated parameters": true,
	"Project Input parameters":       true,
	"Project Calculated parameters":  true,
}

// Parse decodes a cleaned export. delimiter is the field separator used
// when the project was exported (";" unless configured otherwise).
func Parse(text, delimiter string) (*Project, error) {
	if delimiter == "" {
		delimiter = ";"
	}

	project := &Project{}
	lines := strings.Split(text, "\n")

	var (
		proc       *types.Process
		section    string
		calcParams bool // current global block holds calculated parameters
		globalSec  string
	)

	for n, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "{"):
			// Header/metadata braces emitted by SimaPro, not project data.
			continue
		case trimmed == "Process":
			proc = &types.Process{}
			section = ""
			continue
		case trimmed == "End":
			if proc != nil {
				project.Processes = append(project.Processes, proc)
				proc = nil
			}
			section = ""
			globalSec = ""
			continue
		}

		if proc == nil {
			if globalParamBlocks[trimmed] {
				globalSec = trimmed
				calcParams = strings.Contains(trimmed, "Calculated")
				continue
			}
			if globalSec != "" {
				param, err := parseParameter(line, delimiter, calcParams)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", n+1, err)
				}
				project.GlobalParameters = append(project.GlobalParameters, param)
			}
			continue
		}

		if isSectionHeader(trimmed) {
			section = trimmed
			continue
		}

		if err := parseProcessLine(proc, section, line, delimiter); err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
	}

	if proc != nil {
		return nil, fmt.Errorf("unterminated process block (missing End)")
	}

	return project, nil
}

func isSectionHeader(s string) bool {
	switch s {
	case secProducts, secAvoided, secMaterials, secElectricity, secWaste,
		secResources, secEmissionsAir, secEmissionsWater, secEmissionsSoil,
		secInputParams, secCalcParams, secProcessName:
		return true
	}
	return false
}

func parseProcessLine(proc *types.Process, section, line, delimiter string) error {
	fields := strings.Split(line, delimiter)

	switch section {
	case secProcessName:
		proc.Name = strings.TrimSpace(line)

	case secProducts:
		// name;unit;amount;allocation;waste type;category;comment
		if len(fields) < 3 {
			return fmt.Errorf("product line needs name, unit and amount: %q", line)
		}
		exc := &types.Exchange{
			Name: strings.TrimSpace(fields[0]),
			Unit: strings.TrimSpace(fields[1]),
			Kind: types.Production,
		}
		setAmount(exc, fields[2])
		if len(fields) > 3 && strings.TrimSpace(fields[3]) != "" {
			exc.Allocation = parseAllocation(fields[3])
		}
		proc.Exchanges = append(proc.Exchanges, exc)
		if proc.ReferenceProduct == "" {
			proc.ReferenceProduct = exc.Name
			proc.Unit = exc.Unit
			proc.ProductionAmount = exc.Amount
			if proc.Name == "" {
				proc.Name = exc.Name
			}
		}

	case secInputParams:
		param, err := parseParameter(line, delimiter, false)
		if err != nil {
			return err
		}
		proc.Parameters = append(proc.Parameters, param)

	case secCalcParams:
		param, err := parseParameter(line, delimiter, true)
		if err != nil {
			return err
		}
		proc.Parameters = append(proc.Parameters, param)

	default:
		if technosphereSections[section] {
			// name;unit;amount;...
			if len(fields) < 3 {
				return fmt.Errorf("technosphere line needs name, unit and amount: %q", line)
			}
			exc := &types.Exchange{
				Name: strings.TrimSpace(fields[0]),
				Unit: strings.TrimSpace(fields[1]),
				Kind: types.Technosphere,
			}
			setAmount(exc, fields[2])
			proc.Exchanges = append(proc.Exchanges, exc)
			return nil
		}
		if comp, ok := biosphereSections[section]; ok {
			// name;subcompartment;unit;amount;...
			if len(fields) < 4 {
				return fmt.Errorf("elementary-flow line needs name, subcompartment, unit and amount: %q", line)
			}
			exc := &types.Exchange{
				Name:       strings.TrimSpace(fields[0]),
				Unit:       strings.TrimSpace(fields[2]),
				Kind:       types.Biosphere,
				Categories: []string{comp, strings.TrimSpace(fields[1])},
			}
			setAmount(exc, fields[3])
			proc.Exchanges = append(proc.Exchanges, exc)
			return nil
		}
		// Metadata sections (comments, literature references, ...) that
		// the importer does not consume.
	}
	return nil
}

// setAmount fills the exchange's amount, treating a non-numeric field as
// a parameter formula.
func setAmount(exc *types.Exchange, field string) {
	v, err := parseNumber(field)
	if err != nil {
		exc.Formula = strings.TrimSpace(field)
		return
	}
	exc.Amount = v
}

// parseAllocation reads a production exchange's allocation field, which
// is either a literal percentage or a parameter name.
func parseAllocation(field string) types.Allocation {
	if v, err := parseNumber(field); err == nil {
		return types.Allocation{Percent: v, Defined: true}
	}
	return types.Allocation{ParamRef: strings.TrimSpace(field), Defined: true}
}

// parseParameter reads one parameter line. Input parameters carry a
// numeric value in the second field, calculated parameters a formula.
func parseParameter(line, delimiter string, calculated bool) (types.Parameter, error) {
	fields := strings.Split(line, delimiter)
	if len(fields) < 2 {
		return types.Parameter{}, fmt.Errorf("parameter line needs a name and a value: %q", line)
	}
	p := types.Parameter{Name: strings.TrimSpace(fields[0])}
	if calculated {
		p.Formula = strings.TrimSpace(fields[1])
	} else {
		v, err := parseNumber(fields[1])
		if err != nil {
			return types.Parameter{}, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		p.Amount = v
	}
	if len(fields) > 2 {
		p.Comment = strings.TrimSpace(fields[len(fields)-1])
	}
	return p, nil
}

// parseNumber accepts both dot and comma decimal separators; SimaPro
// exports follow the machine locale.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing number %q: %w", s, err)
	}
	return v, nil
}
