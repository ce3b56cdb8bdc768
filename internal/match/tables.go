// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed data/*.json
var dataFS embed.FS

// BioRename is one entry of the elementary-flow rename concordance:
// within Compartment, SimaPro calls the flow OldName where the reference
// list calls it NewName. Based on the concordance work of the
// IMPACT World+ team.
type BioRename struct {
	Compartment string
	OldName     string
	NewName     string
}

// Tables holds the fixed reference data the matching stages consult.
type Tables struct {
	// Obsolete is the set of composite names of obsolete processes.
	Obsolete map[string]bool

	// BioRenames maps historical flow names to their current ones.
	BioRenames []BioRename

	// Comps translates SimaPro top-level compartments to reference
	// compartment codes.
	Comps map[string]string

	// Subcomps translates SimaPro subcompartments to reference
	// subcompartment codes.
	Subcomps map[string]string

	// Countries is the set of location codes SimaPro uses to
	// regionalize elementary flows.
	Countries map[string]bool
}

// LoadTables decodes the embedded data tables.
func LoadTables() (*Tables, error) {
	t := &Tables{
		Obsolete:  make(map[string]bool),
		Countries: make(map[string]bool),
	}

	var obsolete []string
	if err := loadJSON("data/obsolete_processes.json", &obsolete); err != nil {
		return nil, err
	}
	for _, name := range obsolete {
		t.Obsolete[name] = true
	}

	var triples [][3]string
	if err := loadJSON("data/simapro-biosphere.json", &triples); err != nil {
		return nil, err
	}
	for _, tr := range triples {
		t.BioRenames = append(t.BioRenames, BioRename{
			Compartment: tr[0],
			OldName:     tr[1],
			NewName:     tr[2],
		})
	}

	if err := loadJSON("data/comps.json", &t.Comps); err != nil {
		return nil, err
	}
	if err := loadJSON("data/subcomps.json", &t.Subcomps); err != nil {
		return nil, err
	}

	var countries []string
	if err := loadJSON("data/list_of_countries.json", &countries); err != nil {
		return nil, err
	}
	for _, c := range countries {
		t.Countries[c] = true
	}

	return t, nil
}

// Rename returns the current name for (oldName, compartment) when the
// concordance knows it.
func (t *Tables) Rename(oldName, compartment string) (string, bool) {
	for _, r := range t.BioRenames {
		if r.OldName == oldName && r.Compartment == compartment {
			return r.NewName, true
		}
	}
	return "", false
}

func loadJSON(path string, v any) error {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
