// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package persist

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

func openTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.db")
	store, err := Open(path, "myproject")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return store, raw
}

func linkedProcess() *types.Process {
	return &types.Process{
		Name: "aluminium frame", ReferenceProduct: "aluminium frame",
		Code: "code-frame", Unit: "kg", ProductionAmount: 1,
		Exchanges: []*types.Exchange{
			{
				Name: "aluminium frame", Amount: 1, Kind: types.Production, Unit: "kg",
				Input:  &types.Link{Database: "myproject", Code: "code-frame"},
				Output: &types.Link{Database: "ecoinvent-3.8", Code: "code-frame"},
			},
			{
				Name: "Electricity, medium voltage {CH}| market for",
				Amount: 3.5, Kind: types.Technosphere, Unit: "kWh",
				Formula: "2*rate", OriginalAmount: 3.5,
				Input:  &types.Link{Database: "ecoinvent-3.8", Code: "act-elec"},
				Output: &types.Link{Database: "ecoinvent-3.8", Code: "code-frame"},
			},
			{
				Name: "Left unlinked", Amount: 9, Kind: types.Technosphere,
			},
		},
	}
}

func TestWriteProcesses(t *testing.T) {
	store, raw := openTestStore(t)
	ctx := context.Background()

	res, err := store.WriteProcesses(ctx, []*types.Process{linkedProcess()})
	require.NoError(t, err)
	assert.Equal(t, WriteResult{Processes: 1, Exchanges: 2, SkippedExchanges: 1}, res)

	var name, database string
	var amount float64
	require.NoError(t, raw.QueryRow(
		`SELECT name, database, production_amount FROM processes WHERE code = ?`,
		"code-frame").Scan(&name, &database, &amount))
	assert.Equal(t, "aluminium frame", name)
	assert.Equal(t, "myproject", database)
	assert.Equal(t, 1.0, amount)

	var inputCode, outputCode, formula string
	require.NoError(t, raw.QueryRow(
		`SELECT input_code, output_code, formula FROM exchanges WHERE name LIKE 'Electricity%'`).
		Scan(&inputCode, &outputCode, &formula))
	assert.Equal(t, "act-elec", inputCode)
	assert.Equal(t, "code-frame", outputCode)
	assert.Equal(t, "2*rate", formula)
}

func TestWriteProcessesRequiresCode(t *testing.T) {
	store, _ := openTestStore(t)

	_, err := store.WriteProcesses(context.Background(),
		[]*types.Process{{Name: "uncoded"}})
	require.ErrorContains(t, err, "has no code")
}

func TestWriteProcessesIsIdempotentPerCode(t *testing.T) {
	store, raw := openTestStore(t)
	ctx := context.Background()

	proc := linkedProcess()
	_, err := store.WriteProcesses(ctx, []*types.Process{proc})
	require.NoError(t, err)
	_, err = store.WriteProcesses(ctx, []*types.Process{proc})
	require.NoError(t, err)

	var count int
	require.NoError(t, raw.QueryRow(`SELECT COUNT(*) FROM processes`).Scan(&count))
	assert.Equal(t, 1, count, "re-running replaces, not duplicates")
}

func TestWriteDatabaseParametersReplaces(t *testing.T) {
	store, raw := openTestStore(t)
	ctx := context.Background()

	n, err := store.WriteDatabaseParameters(ctx, types.ParameterSet{
		{Name: "rate", Amount: 0.75, Comment: "database wide"},
		{Name: "doubled", Formula: "rate*2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.WriteDatabaseParameters(ctx, types.ParameterSet{
		{Name: "rate", Amount: 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var count int
	require.NoError(t, raw.QueryRow(`SELECT COUNT(*) FROM database_parameters`).Scan(&count))
	assert.Equal(t, 1, count)

	var amount float64
	require.NoError(t, raw.QueryRow(
		`SELECT amount FROM database_parameters WHERE name = 'rate'`).Scan(&amount))
	assert.Equal(t, 0.5, amount)
}

func TestWriteActivityParameters(t *testing.T) {
	store, raw := openTestStore(t)
	ctx := context.Background()

	proc := linkedProcess()
	proc.Name = "frame line 2"
	proc.Parameters = types.ParameterSet{
		{Name: "alloc_a", Amount: 60},
		{Name: "double_a", Formula: "alloc_a*2"},
	}
	noParams := &types.Process{Name: "plain", Code: "code-plain"}

	n, err := store.WriteActivityParameters(ctx, []*types.Process{proc, noParams})
	require.NoError(t, err)
	assert.Equal(t, 3, n, "anchor plus two parameters")

	rows, err := raw.Query(
		`SELECT param_group, name, amount, formula FROM activity_parameters ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		group, name, formula string
		amount               float64
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.group, &r.name, &r.amount, &r.formula))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 3)

	// Group identifier: digits stripped, words joined with underscores.
	assert.True(t, strings.HasPrefix(got[0].group, "frame_line_"), got[0].group)
	assert.Equal(t, "frame_line_1", got[0].name)
	assert.Equal(t, 1.0, got[0].amount)

	assert.Equal(t, "alloc_a", got[1].name)
	assert.Equal(t, 60.0, got[1].amount)
	assert.Equal(t, "double_a", got[2].name)
	assert.Equal(t, "alloc_a*2", got[2].formula)

	for _, r := range got[1:] {
		assert.Equal(t, got[0].group, r.group, "all rows share the process group")
	}
}

func TestWriteActivityParametersReusesGroup(t *testing.T) {
	store, raw := openTestStore(t)
	ctx := context.Background()

	proc := linkedProcess()
	proc.Parameters = types.ParameterSet{{Name: "alloc_a", Amount: 60}}

	_, err := store.WriteActivityParameters(ctx, []*types.Process{proc})
	require.NoError(t, err)
	_, err = store.WriteActivityParameters(ctx, []*types.Process{proc})
	require.NoError(t, err)

	var groups int
	require.NoError(t, raw.QueryRow(
		`SELECT COUNT(DISTINCT param_group) FROM activity_parameters`).Scan(&groups))
	assert.Equal(t, 1, groups, "second run reuses the existing group")
}

func TestParamGroupBase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"aluminium frame", "aluminium_frame"},
		{"frame line 2", "frame_line"},
		{"a-b-c", "a_b_c"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, paramGroupBase(tc.in))
	}
}
