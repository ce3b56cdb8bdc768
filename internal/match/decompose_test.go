// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

func jointProduction(t *testing.T) *types.Process {
	t.Helper()
	return &types.Process{
		Name:             "sawmill operation",
		ReferenceProduct: "sawnwood",
		Unit:             "m3",
		ProductionAmount: 1,
		Parameters:       types.ParameterSet{{Name: "density", Amount: 450}},
		Exchanges: []*types.Exchange{
			{Name: "sawnwood", Amount: 1, Kind: types.Production, Unit: "m3",
				Allocation: types.Allocation{Percent: 60, Defined: true}},
			{Name: "bark", Amount: 0.3, Kind: types.Production, Unit: "m3",
				Allocation: types.Allocation{Percent: 40, Defined: true}},
			{Name: "Electricity, medium voltage {CH}| market for", Amount: 10,
				Kind: types.Technosphere, Unit: "kWh"},
			{Name: "Carbon dioxide, fossil", Amount: 2.5, Kind: types.Biosphere, Unit: "kg",
				Categories: []string{"Air", ""}},
		},
	}
}

func TestDecomposeSplitsJointProduction(t *testing.T) {
	procs := Decompose([]*types.Process{jointProduction(t)})

	require.Len(t, procs, 2, "two outputs give two processes")
	for _, proc := range procs {
		assert.Len(t, proc.ProductionExchanges(), 1)
		assert.NotEmpty(t, proc.Code)
	}

	sawn, bark := procs[0], procs[1]
	assert.Equal(t, "sawnwood", sawn.Name)
	assert.Equal(t, "bark", bark.Name)

	// Inputs are scaled by allocation/100.
	assert.InDelta(t, 6.0, sawn.Exchanges[0].Amount, 1e-12)
	assert.InDelta(t, 1.5, sawn.Exchanges[1].Amount, 1e-12)
	assert.InDelta(t, 4.0, bark.Exchanges[0].Amount, 1e-12)
	assert.InDelta(t, 1.0, bark.Exchanges[1].Amount, 1e-12)

	// Production amounts come from the split-off output, unscaled.
	assert.Equal(t, 1.0, sawn.ProductionAmount)
	assert.Equal(t, 0.3, bark.ProductionAmount)

	// Parameters are inherited unmodified.
	assert.Equal(t, jointProduction(t).Parameters, sawn.Parameters)
	assert.Equal(t, jointProduction(t).Parameters, bark.Parameters)
}

func TestDecomposeDeepCopiesExchanges(t *testing.T) {
	procs := Decompose([]*types.Process{jointProduction(t)})
	require.Len(t, procs, 2)

	procs[0].Exchanges[1].Categories[0] = "Water"
	assert.Equal(t, "Air", procs[1].Exchanges[1].Categories[0],
		"siblings must not share category slices")
}

func TestDecomposeCodesAreUnique(t *testing.T) {
	input := []*types.Process{
		jointProduction(t),
		{
			Name: "single output",
			Exchanges: []*types.Exchange{
				{Name: "widget", Amount: 1, Kind: types.Production},
			},
		},
	}
	procs := Decompose(input)
	require.Len(t, procs, 3)

	seen := make(map[string]bool)
	for _, proc := range procs {
		assert.Len(t, proc.Code, 32)
		assert.False(t, seen[proc.Code], "code %s assigned twice", proc.Code)
		seen[proc.Code] = true
	}
}

func TestDecomposeRepairsMissingProduction(t *testing.T) {
	proc := &types.Process{
		Name:             "implicit output",
		ProductionAmount: 2.5,
		Unit:             "kg",
		Exchanges: []*types.Exchange{
			{Name: "Steel, low-alloyed {RER}| steel production, converter, low-alloyed",
				Amount: 1, Kind: types.Technosphere},
		},
	}
	procs := Decompose([]*types.Process{proc})

	require.Len(t, procs, 1)
	prods := procs[0].ProductionExchanges()
	require.Len(t, prods, 1)
	assert.Equal(t, "implicit output", prods[0].Name)
	assert.Equal(t, 2.5, prods[0].Amount)
}
