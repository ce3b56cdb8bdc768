// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"errors"
	"fmt"

	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

// ErrUnresolvedAllocation reports an allocation defined through a
// parameter that exists in neither the process nor the project scope.
// This is fatal: carrying the textual value forward would make the
// decomposer silently compute wrong amounts.
var ErrUnresolvedAllocation = errors.New("allocation refers to an undefined parameter")

// ResolveAllocations substitutes numeric values for every allocation
// that was specified as a parameter name. Activity-level parameters take
// precedence over project-global ones; lookups ignore case. After the
// substitution pass the set is re-scanned: a surviving textual allocation
// indicates a resolver defect and is returned as an error rather than a
// bucket entry.
func ResolveAllocations(procs []*types.Process, global types.ParameterSet) error {
	for _, proc := range procs {
		for _, exc := range proc.Exchanges {
			if exc.Kind != types.Technosphere && exc.Kind != types.Production {
				continue
			}
			ref := exc.Allocation.ParamRef
			if !exc.Allocation.Defined || ref == "" {
				continue
			}
			if param, ok := proc.Parameters.Lookup(ref); ok {
				exc.Allocation = types.Allocation{Percent: param.Amount, Defined: true}
				continue
			}
			if param, ok := global.Lookup(ref); ok {
				exc.Allocation = types.Allocation{Percent: param.Amount, Defined: true}
				continue
			}
			return fmt.Errorf("process %q, parameter %q: %w", proc.Name, ref, ErrUnresolvedAllocation)
		}
	}

	for _, proc := range procs {
		for _, exc := range proc.Exchanges {
			if exc.Allocation.Defined && exc.Allocation.ParamRef != "" {
				return fmt.Errorf("internal: textual allocation %q survived resolution in process %q",
					exc.Allocation.ParamRef, proc.Name)
			}
		}
	}
	return nil
}
