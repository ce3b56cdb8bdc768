// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// ExchangeKind tags an exchange as a product link, an elementary flow, or
// a production output.
type ExchangeKind string

const (
	Technosphere ExchangeKind = "technosphere"
	Biosphere    ExchangeKind = "biosphere"
	Production   ExchangeKind = "production"
)

// Link identifies one coded record inside a named database. Exchanges carry
// two links once resolved: Input (the record the flow comes from) and
// Output (the process the flow belongs to).
type Link struct {
	Database string `json:"database" yaml:"database"`
	Code     string `json:"code" yaml:"code"`
}

// Allocation holds the share of a joint-production output. SimaPro lets a
// project define the percentage either as a literal or as the name of a
// parameter; ParamRef is non-empty until the resolver substitutes the
// parameter's numeric value.
type Allocation struct {
	// Percent is the allocation percentage (0-100) once resolved.
	Percent float64 `json:"percent" yaml:"percent"`

	// ParamRef names the parameter defining the percentage, empty when
	// the value is literal or already resolved.
	ParamRef string `json:"param_ref,omitempty" yaml:"param_ref,omitempty"`

	// Defined reports whether the export specified an allocation at all.
	Defined bool `json:"defined" yaml:"defined"`
}

// Resolved reports whether the allocation is usable as a number.
func (a Allocation) Resolved() bool {
	return a.Defined && a.ParamRef == ""
}

// Exchange is one flow line item within a Process.
type Exchange struct {
	// Name is the flow label. For technosphere exchanges this is the
	// composite "<product> {<location>}| <process>" form.
	Name   string       `json:"name" yaml:"name"`
	Amount float64      `json:"amount" yaml:"amount"`
	Kind   ExchangeKind `json:"kind" yaml:"kind"`
	Unit   string       `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Categories is the (compartment, subcompartment) pair of a biosphere
	// exchange. The subcompartment may be empty.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// Formula is the amount expression when the exchange is parametrized.
	Formula string `json:"formula,omitempty" yaml:"formula,omitempty"`

	// OriginalAmount snapshots Amount before parameter evaluation can
	// rewrite it; only set for exchanges carrying a formula.
	OriginalAmount float64 `json:"original_amount,omitempty" yaml:"original_amount,omitempty"`

	// Allocation applies to production exchanges of multi-output processes.
	Allocation Allocation `json:"allocation,omitempty" yaml:"allocation,omitempty"`

	// Input and Output are nil until the matching stages resolve them.
	Input  *Link `json:"input,omitempty" yaml:"input,omitempty"`
	Output *Link `json:"output,omitempty" yaml:"output,omitempty"`
}

// Linked reports whether the exchange's input side has been resolved.
// Exchanges still unlinked at the end of the pipeline are pruned.
func (e *Exchange) Linked() bool {
	return e.Input != nil
}

// Parameter is one named numeric value, optionally defined by a formula.
type Parameter struct {
	Name    string  `json:"name" yaml:"name"`
	Amount  float64 `json:"amount" yaml:"amount"`
	Formula string  `json:"formula,omitempty" yaml:"formula,omitempty"`
	Comment string  `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// ParameterSet holds parameters addressable by case-insensitive name.
type ParameterSet []Parameter

// Lookup returns the parameter with the given name, ignoring case.
func (ps ParameterSet) Lookup(name string) (Parameter, bool) {
	for _, p := range ps {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Parameter{}, false
}

// Process is one activity record: metadata, its exchanges in declaration
// order, and any activity-scoped parameters. Before decomposition a process
// may carry several production exchanges; afterwards exactly one, and Code
// is assigned.
type Process struct {
	Name             string       `json:"name" yaml:"name"`
	ReferenceProduct string       `json:"reference_product" yaml:"reference_product"`
	Unit             string       `json:"unit,omitempty" yaml:"unit,omitempty"`
	ProductionAmount float64      `json:"production_amount" yaml:"production_amount"`
	Code             string       `json:"code,omitempty" yaml:"code,omitempty"`
	Exchanges        []*Exchange  `json:"exchanges" yaml:"exchanges"`
	Parameters       ParameterSet `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// ProductionExchanges returns the production-kind exchanges in order.
func (p *Process) ProductionExchanges() []*Exchange {
	var out []*Exchange
	for _, exc := range p.Exchanges {
		if exc.Kind == Production {
			out = append(out, exc)
		}
	}
	return out
}
