// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/CIRAIG/bw-Simporter/internal/refdb"
	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

// Matcher resolves exchanges against the reference database. It is
// read-only towards the database; all mutation happens on the exchanges.
type Matcher struct {
	ref       *refdb.DB
	tables    *Tables
	ecoinvent string
	biosphere string
	project   string
	log       *zap.Logger
}

// NewMatcher builds a Matcher. ecoinventName and biosphereName are the
// database names resolved links carry; projectName is the name of the
// database being imported, used for links between the project's own
// processes.
func NewMatcher(ref *refdb.DB, tables *Tables, ecoinventName, biosphereName, projectName string, log *zap.Logger) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Matcher{
		ref:       ref,
		tables:    tables,
		ecoinvent: ecoinventName,
		biosphere: biosphereName,
		project:   projectName,
		log:       log,
	}
}

// MatchEcoinvent resolves every unlinked technosphere and production
// exchange. Exchanges naming one of the project's own processes link
// directly to that sibling; everything else goes through the cascade.
// Exchanges a routing rule recognizes land in diag; exchanges no rule
// matches are reported with their coordinates and left unlinked for the
// pruner. A rule whose rewritten name finds nothing aborts the run.
func (m *Matcher) MatchEcoinvent(ctx context.Context, procs []*types.Process, diag *types.Diagnostics) error {
	codes := make(map[string]string, len(procs))
	for _, proc := range procs {
		if _, ok := codes[proc.Name]; !ok {
			codes[proc.Name] = proc.Code
		}
	}

	for i, proc := range procs {
		for j, exc := range proc.Exchanges {
			if exc.Linked() {
				continue
			}
			if exc.Kind != types.Technosphere && exc.Kind != types.Production {
				continue
			}

			// The process's own output links to itself.
			if exc.Kind == types.Production &&
				(exc.Name == proc.Name || exc.Name == proc.ReferenceProduct) {
				exc.Output = &types.Link{Database: m.ecoinvent, Code: proc.Code}
				exc.Input = &types.Link{Database: m.project, Code: proc.Code}
				continue
			}

			// A reference to a sibling process of the same project.
			if code, ok := codes[exc.Name]; ok {
				exc.Output = &types.Link{Database: m.ecoinvent, Code: proc.Code}
				exc.Input = &types.Link{Database: m.project, Code: code}
				continue
			}

			if !Parseable(exc.Name) {
				continue
			}
			parts, err := ParseCompositeName(exc.Name)
			if err != nil {
				return fmt.Errorf("process %q: %w", proc.Name, err)
			}

			matched := false
			for _, r := range cascade {
				if !r.match(parts, exc.Name, m.tables) {
					continue
				}
				matched = true

				if r.bucket != bucketNone {
					m.route(r.bucket, exc, proc, diag)
					break
				}

				act, err := r.search(ctx, m, parts)
				if err != nil {
					return fmt.Errorf("rule %s: process %q, exchange %q: %w",
						r.label, proc.Name, exc.Name, err)
				}
				exc.Output = &types.Link{Database: m.ecoinvent, Code: proc.Code}
				exc.Input = &types.Link{Database: m.ecoinvent, Code: act.Code}
				break
			}

			if !matched {
				m.log.Warn("no matching rule for exchange",
					zap.String("name", parts.ProcessName),
					zap.String("product", parts.ReferenceProduct),
					zap.String("location", parts.Location),
					zap.Int("process", i),
					zap.Int("exchange", j))
			}
		}
	}
	return nil
}

func (m *Matcher) route(b bucketID, exc *types.Exchange, proc *types.Process, diag *types.Diagnostics) {
	entry := types.UnlinkedProcess{
		Name:   exc.Name,
		Origin: proc.Name,
		Amount: exc.Amount,
	}
	switch b {
	case bucketObsolete:
		diag.ObsoleteProcesses = append(diag.ObsoleteProcesses, entry)
	case bucketSystem:
		diag.SystemProcesses = append(diag.SystemProcesses, entry)
	case bucketOnlyInSimapro:
		diag.OnlyInSimapro = append(diag.OnlyInSimapro, entry)
	}
}
