// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clean

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReservedNames(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"int definition", "Int;4;Undefined", "switch_int;4;Undefined"},
		{"int multiplier", "steel;2*int;kg", "steel;2*switch_int;kg"},
		{"int divisor", "steel;2*int/3;kg", "steel;2*switch_int/3;kg"},
		{"as definition lower", "as;0.4;Undefined", "as_;0.4;Undefined"},
		{"as definition upper", "AS;0.4;Undefined", "as_;0.4;Undefined"},
		{"as multiplier", "scrap;2*AS;kg", "scrap;2*as_;kg"},
		{"as bare multiplier", "scrap;2*as;kg", "scrap;2*as_;kg"},
		{"as_alu untouched", "scrap;2*as_alu;kg", "scrap;2*as_alu;kg"},
		{"one minus as", "rest;1-as;kg", "rest;1-as_;kg"},
		{"one minus as_alu untouched", "rest;1-as_alu;kg", "rest;1-as_alu;kg"},
		{"pi multiplier", "pipe;d*pi;m", "pipe;d*3.14;m"},
		{"pi closing paren", "pipe;(d*pi);m", "pipe;(d*3.14);m"},
		{"add definition", "add;1;Undefined", "added;1;Undefined"},
		{"add multiplier", "x;add*2;kg", "x;added*2;kg"},
		{"poly definition", "poly;1;Undefined", "polyy;1;Undefined"},
		{"poly sum", "x;1+poly+2;kg", "x;1+polyy+2;kg"},
		{"prod definition", "prod;1;Undefined", "prodd;1;Undefined"},
		{"prod divisor", "x;prod/2;kg", "x;prodd/2;kg"},
		{"empty definition", "empty;1;Undefined", "empty_factor;1;Undefined"},
		{"empty divisor", "x;3*empty/2;kg", "x;3*empty_factor/2;kg"},
		{"plain line untouched", "Steel, low-alloyed;2;kg", "Steel, low-alloyed;2;kg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Line(tc.in))
		})
	}
}

func TestLineIffNeutralized(t *testing.T) {
	got := Line("switch;Iff(x>0, 1, 0);Undefined")
	assert.Equal(t, "switch;0;Undefined", got)
}

func TestTextHandlesAllLines(t *testing.T) {
	in := "Input parameters\nas;0.4;Undefined\nInt;4;Undefined\nEnd\n"
	want := "Input parameters\nas_;0.4;Undefined\nswitch_int;4;Undefined\nEnd\n"
	assert.Equal(t, want, Text(in))
}

func TestFileDecodesAndWritesTreatedCopy(t *testing.T) {
	dir := t.TempDir()
	// "Caf\xe9" is Latin-1 for "Café".
	raw := []byte("Process\nCaf\xe9;1;kg\nas;0.4;Undefined\nEnd\n")
	src := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(src, raw, 0o644))

	treated := filepath.Join(dir, "treated")
	cleaned, err := File(src, treated, "mydb")
	require.NoError(t, err)

	assert.Contains(t, cleaned, "Café;1;kg")
	assert.Contains(t, cleaned, "as_;0.4;Undefined")

	written, err := os.ReadFile(filepath.Join(treated, "mydb.csv"))
	require.NoError(t, err)
	assert.Equal(t, cleaned, string(written))
}

func TestFileMissingSource(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "nope.csv"), t.TempDir(), "db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading export")
}
