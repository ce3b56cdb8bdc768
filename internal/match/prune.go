// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

// maxPrunePasses bounds the removal loop. A single copy-down pass
// removes everything, but the pass budget and the verification scan are
// kept: survivors are a known possibility of the design and must be
// warned about, not assumed away.
const maxPrunePasses = 10

// PruneResult summarizes a pruning run.
type PruneResult struct {
	// Removed counts the exchanges dropped across all passes.
	Removed int

	// Warnings lists the coordinates of exchanges still unlinked after
	// the pass budget. Non-empty means the written database is
	// known-incomplete.
	Warnings []string
}

// PruneUnlinked removes every exchange still lacking a resolved input
// link. Those are the obsolete and system processes, the processes that
// only exist in the source tool, and the created biosphere flows; left
// in place they block writing the database. After the passes a
// verification scan reports anything that survived.
func PruneUnlinked(procs []*types.Process, log *zap.Logger) PruneResult {
	if log == nil {
		log = zap.NewNop()
	}
	var res PruneResult

	for pass := 0; pass < maxPrunePasses; pass++ {
		removed := 0
		for _, proc := range procs {
			kept := proc.Exchanges[:0]
			for _, exc := range proc.Exchanges {
				if exc.Linked() {
					kept = append(kept, exc)
					continue
				}
				removed++
			}
			proc.Exchanges = kept
		}
		res.Removed += removed
		if removed == 0 {
			break
		}
	}

	for i, proc := range procs {
		for j, exc := range proc.Exchanges {
			if exc.Linked() {
				continue
			}
			w := fmt.Sprintf("process %d (%s), exchange %d (%s) still unlinked",
				i, proc.Name, j, exc.Name)
			res.Warnings = append(res.Warnings, w)
			log.Warn("unlinked exchange survived pruning",
				zap.Int("process", i),
				zap.Int("exchange", j),
				zap.String("process_name", proc.Name),
				zap.String("exchange_name", exc.Name))
		}
	}

	return res
}

// SnapshotFormulaAmounts records the current amount of every exchange
// that carries a formula, so the value survives later parameter
// re-evaluation in the target system.
func SnapshotFormulaAmounts(procs []*types.Process) {
	for _, proc := range procs {
		for _, exc := range proc.Exchanges {
			if exc.Formula != "" {
				exc.OriginalAmount = exc.Amount
			}
		}
	}
}
