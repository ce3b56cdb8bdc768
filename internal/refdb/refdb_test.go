// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

func openTestDB(t *testing.T, maxResults int) *DB {
	t.Helper()
	db, err := Open(types.RefDBConfig{
		Path:             filepath.Join(t.TempDir(), "ref.db"),
		MaxSearchResults: maxResults,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.CreateSchema())
	return db
}

func seedActivities(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	acts := []Activity{
		{Code: "a1", Name: "market for electricity, medium voltage",
			ReferenceProduct: "electricity, medium voltage", Location: "CH", Unit: "kWh"},
		{Code: "a2", Name: "market for electricity, medium voltage",
			ReferenceProduct: "electricity, medium voltage", Location: "FR", Unit: "kWh"},
		{Code: "a3", Name: "steel production, converter, low-alloyed",
			ReferenceProduct: "steel, low-alloyed", Location: "RER", Unit: "kg"},
	}
	for _, a := range acts {
		require.NoError(t, db.AddActivity(ctx, a))
	}
}

func TestSearchActivitiesLocationFilter(t *testing.T) {
	db := openTestDB(t, 0)
	seedActivities(t, db)
	ctx := context.Background()

	acts, err := db.SearchActivities(ctx, "electricity, medium voltage", "CH")
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "a1", acts[0].Code)
	assert.Equal(t, "kWh", acts[0].Unit)

	acts, err = db.SearchActivities(ctx, "electricity, medium voltage", "")
	require.NoError(t, err)
	assert.Len(t, acts, 2, "no location filter returns both regions")
}

func TestSearchActivitiesQuotesPunctuation(t *testing.T) {
	db := openTestDB(t, 0)
	seedActivities(t, db)

	// Commas and hyphens are FTS5 operators unless the term is quoted.
	acts, err := db.SearchActivities(context.Background(), "steel, low-alloyed", "RER")
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "a3", acts[0].Code)
}

func TestSearchActivitiesRespectsLimit(t *testing.T) {
	db := openTestDB(t, 1)
	seedActivities(t, db)

	acts, err := db.SearchActivities(context.Background(), "electricity, medium voltage", "")
	require.NoError(t, err)
	assert.Len(t, acts, 1)
}

func TestFindActivitiesCaseInsensitive(t *testing.T) {
	db := openTestDB(t, 0)
	seedActivities(t, db)
	ctx := context.Background()

	acts, err := db.FindActivities(ctx,
		"Market For Electricity, Medium Voltage", "Electricity, Medium Voltage", "CH")
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "a1", acts[0].Code)

	// Location is matched exactly.
	acts, err = db.FindActivities(ctx,
		"market for electricity, medium voltage", "electricity, medium voltage", "ch")
	require.NoError(t, err)
	assert.Empty(t, acts)
}

func TestEachActivityStreamsAll(t *testing.T) {
	db := openTestDB(t, 0)
	seedActivities(t, db)

	var codes []string
	err := db.EachActivity(context.Background(), func(a Activity) error {
		codes = append(codes, a.Code)
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "a2", "a3"}, codes)
}

func TestEachActivityStopsOnError(t *testing.T) {
	db := openTestDB(t, 0)
	seedActivities(t, db)

	stop := assert.AnError
	count := 0
	err := db.EachActivity(context.Background(), func(Activity) error {
		count++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, count)
}

func TestFlowLookups(t *testing.T) {
	db := openTestDB(t, 0)
	ctx := context.Background()

	flows := []Flow{
		{Code: "f1", Name: "Water", Categories: []string{"water"}},
		{Code: "f2", Name: "Water", Categories: []string{"air"}},
		{Code: "f3", Name: "Carbon dioxide, non-fossil", Categories: []string{"air"}},
	}
	for _, f := range flows {
		require.NoError(t, db.AddFlow(ctx, f))
	}

	got, err := db.FindFlows(ctx, "Water", []string{"water"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "f1", got[0].Code)
	assert.Equal(t, []string{"water"}, got[0].Categories)

	got, err = db.SearchFlows(ctx, "Carbon dioxide, non-fossil")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "f3", got[0].Code)
}
