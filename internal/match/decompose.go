// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strings"

	"github.com/google/uuid"

	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

// Decompose splits every joint-production process (two or more
// production exchanges) into one single-output process per output. Each
// new process receives a deep copy of the original's non-production
// exchanges scaled by that output's allocation share, the original's
// parameters unscaled, and a fresh production exchange. The original
// multi-output process does not appear in the returned set.
//
// Afterwards every process is repaired and coded: a process whose sole
// output was only declared through its metadata gets a synthesized
// production exchange, and every process receives a newly generated
// unique code. Codes are assigned here, after splitting, so that split
// siblings never share an identity.
func Decompose(procs []*types.Process) []*types.Process {
	out := make([]*types.Process, 0, len(procs))

	for _, proc := range procs {
		prods := proc.ProductionExchanges()
		if len(prods) < 2 {
			out = append(out, proc)
			continue
		}
		for _, prod := range prods {
			out = append(out, splitOff(proc, prod))
		}
	}

	for _, proc := range out {
		if proc.Name == "" {
			backfillMetadata(proc)
		}
		if len(proc.ProductionExchanges()) == 0 {
			proc.Exchanges = append(proc.Exchanges, &types.Exchange{
				Name:   proc.Name,
				Amount: proc.ProductionAmount,
				Kind:   types.Production,
				Unit:   proc.Unit,
			})
		}
		proc.Code = newCode()
	}

	return out
}

// splitOff builds the single-output process for one production exchange
// of a multi-output original.
func splitOff(proc *types.Process, prod *types.Exchange) *types.Process {
	share := prod.Allocation.Percent / 100

	split := &types.Process{
		Name:             prod.Name,
		ReferenceProduct: prod.Name,
		Unit:             prod.Unit,
		ProductionAmount: prod.Amount,
		Parameters:       append(types.ParameterSet(nil), proc.Parameters...),
	}

	for _, exc := range proc.Exchanges {
		if exc.Kind == types.Production {
			continue
		}
		c := cloneExchange(exc)
		c.Amount *= share
		split.Exchanges = append(split.Exchanges, c)
	}

	split.Exchanges = append(split.Exchanges, &types.Exchange{
		Name:    prod.Name,
		Amount:  prod.Amount,
		Kind:    types.Production,
		Unit:    prod.Unit,
		Formula: prod.Formula,
	})

	return split
}

func cloneExchange(exc *types.Exchange) *types.Exchange {
	c := *exc
	c.Categories = append([]string(nil), exc.Categories...)
	return &c
}

// backfillMetadata fills a process's display metadata from its single
// production exchange.
func backfillMetadata(proc *types.Process) {
	prods := proc.ProductionExchanges()
	if len(prods) != 1 {
		return
	}
	prod := prods[0]
	proc.Name = prod.Name
	proc.ReferenceProduct = prod.Name
	proc.ProductionAmount = prod.Amount
	proc.Unit = prod.Unit
}

// newCode generates a 32-character hex process code.
func newCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
