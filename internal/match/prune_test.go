// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

func linkedExchange(name string) *types.Exchange {
	return &types.Exchange{
		Name: name, Amount: 1, Kind: types.Technosphere,
		Input:  &types.Link{Database: "ecoinvent-3.8", Code: "in"},
		Output: &types.Link{Database: "ecoinvent-3.8", Code: "out"},
	}
}

func TestPruneUnlinkedRemovesOnlyUnlinked(t *testing.T) {
	procs := []*types.Process{
		{
			Name: "widget", Code: "c1",
			Exchanges: []*types.Exchange{
				linkedExchange("keep one"),
				{Name: "drop one", Amount: 2, Kind: types.Technosphere},
				linkedExchange("keep two"),
				{Name: "drop two", Amount: 3, Kind: types.Biosphere},
			},
		},
		{
			Name: "gadget", Code: "c2",
			Exchanges: []*types.Exchange{
				{Name: "drop three", Amount: 4, Kind: types.Technosphere},
			},
		},
	}

	res := PruneUnlinked(procs, nil)

	assert.Equal(t, 3, res.Removed)
	assert.Empty(t, res.Warnings)

	require.Len(t, procs[0].Exchanges, 2)
	assert.Equal(t, "keep one", procs[0].Exchanges[0].Name)
	assert.Equal(t, "keep two", procs[0].Exchanges[1].Name)
	assert.Empty(t, procs[1].Exchanges)
}

func TestPruneUnlinkedIdempotent(t *testing.T) {
	procs := []*types.Process{
		{Name: "widget", Exchanges: []*types.Exchange{
			linkedExchange("keep"),
			{Name: "drop", Kind: types.Technosphere},
		}},
	}

	first := PruneUnlinked(procs, nil)
	assert.Equal(t, 1, first.Removed)

	second := PruneUnlinked(procs, nil)
	assert.Equal(t, 0, second.Removed)
	assert.Empty(t, second.Warnings)
	require.Len(t, procs[0].Exchanges, 1)
}

func TestPruneUnlinkedAllLinked(t *testing.T) {
	procs := []*types.Process{
		{Name: "widget", Exchanges: []*types.Exchange{
			linkedExchange("a"), linkedExchange("b"),
		}},
	}

	res := PruneUnlinked(procs, nil)
	assert.Equal(t, 0, res.Removed)
	assert.Empty(t, res.Warnings)
	assert.Len(t, procs[0].Exchanges, 2)
}

func TestSnapshotFormulaAmounts(t *testing.T) {
	withFormula := &types.Exchange{Name: "a", Amount: 12.5, Formula: "alloc * 2"}
	plain := &types.Exchange{Name: "b", Amount: 3}
	procs := []*types.Process{
		{Name: "widget", Exchanges: []*types.Exchange{withFormula, plain}},
	}

	SnapshotFormulaAmounts(procs)

	assert.Equal(t, 12.5, withFormula.OriginalAmount)
	assert.Zero(t, plain.OriginalAmount)
}
