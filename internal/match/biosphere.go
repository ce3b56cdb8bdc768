// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/CIRAIG/bw-Simporter/internal/refdb"
	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

// MatchBiosphere resolves every unlinked biosphere exchange against the
// reference elementary-flow list. Flow names are normalized first
// (water regionalization, country suffixes), the category pair is
// translated through the compartment tables, then the lookup runs:
// direct, rename-concordance retry, category-only. Total misses land in
// the created-biosphere-flows bucket.
func (m *Matcher) MatchBiosphere(ctx context.Context, procs []*types.Process, diag *types.Diagnostics) error {
	for _, proc := range procs {
		for _, exc := range proc.Exchanges {
			if exc.Linked() || exc.Kind != types.Biosphere {
				continue
			}
			if len(exc.Categories) == 0 {
				return fmt.Errorf("process %q: biosphere exchange %q has no categories", proc.Name, exc.Name)
			}

			comp := exc.Categories[0]
			sub := ""
			if len(exc.Categories) > 1 {
				sub = exc.Categories[1]
			}

			name := exc.Name
			switch {
			case strings.HasPrefix(name, "Water, "):
				// The reference list does not regionalize water flows:
				// collapse to the two canonical names.
				if comp != "Resources" {
					name = "Water"
				} else {
					name = "Water, unspecified natural origin"
				}
			default:
				// Older exports regionalize flows as "<name>, <country>".
				if i := strings.LastIndex(name, ", "); i >= 0 && m.tables.Countries[name[i+2:]] {
					name = name[:i]
				}
			}

			refComp, ok := m.tables.Comps[comp]
			if !ok {
				return fmt.Errorf("process %q: unknown compartment %q", proc.Name, comp)
			}
			target := []string{refComp}
			if sub != "" {
				refSub, ok := m.tables.Subcomps[sub]
				if !ok {
					return fmt.Errorf("process %q: unknown subcompartment %q", proc.Name, sub)
				}
				target = append(target, refSub)
			}

			flow, found, err := m.resolveFlow(ctx, name, refComp, target)
			if err != nil {
				return fmt.Errorf("process %q, flow %q: %w", proc.Name, exc.Name, err)
			}
			if !found {
				diag.CreatedBiosphereFlows = append(diag.CreatedBiosphereFlows, types.CreatedBiosphereFlow{
					Name:       name,
					Categories: append([]string(nil), exc.Categories...),
					Process:    proc.Name,
					Amount:     exc.Amount,
				})
				continue
			}

			exc.Input = &types.Link{Database: m.biosphere, Code: flow.Code}
			exc.Output = &types.Link{Database: m.ecoinvent, Code: proc.Code}
		}
	}
	return nil
}

// resolveFlow looks a flow up by (name, translated categories). On a
// miss it consults the rename concordance and retries with the current
// name: first fuzzy-narrowed, then by full equality, and finally by
// category alone with the original name.
func (m *Matcher) resolveFlow(ctx context.Context, name, refComp string, target []string) (refdb.Flow, bool, error) {
	flows, err := m.ref.FindFlows(ctx, name, target)
	if err != nil {
		return refdb.Flow{}, false, err
	}
	if len(flows) > 0 {
		return flows[0], true, nil
	}

	renamed, known := m.tables.Rename(name, refComp)
	if !known {
		return refdb.Flow{}, false, nil
	}

	candidates, err := m.ref.SearchFlows(ctx, renamed)
	if err != nil {
		return refdb.Flow{}, false, err
	}
	for _, f := range candidates {
		if f.Name == renamed && slices.Equal(f.Categories, target) {
			return f, true, nil
		}
	}

	flows, err = m.ref.FindFlows(ctx, renamed, target)
	if err != nil {
		return refdb.Flow{}, false, err
	}
	if len(flows) > 0 {
		return flows[0], true, nil
	}

	candidates, err = m.ref.SearchFlows(ctx, name)
	if err != nil {
		return refdb.Flow{}, false, err
	}
	for _, f := range candidates {
		if slices.Equal(f.Categories, target) {
			return f, true, nil
		}
	}

	return refdb.Flow{}, false, nil
}
