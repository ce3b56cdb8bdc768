// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clean prepares a raw SimaPro CSV export for parsing. SimaPro
// projects may use parameter names that are reserved words in the
// expression engine of the target system (int, as, pi, add, poly, prod,
// empty, iff); those are renamed wherever they appear in parameter
// definitions and formulas. The export is Latin-1 encoded and is decoded
// here once, so every later stage works on UTF-8.
package clean

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// rewrite replaces every match of re in a line with repl.
type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// reservedRewrites is applied in order to every line of the export.
// The patterns mirror the contexts a parameter name can appear in:
// start-of-line definitions ("int;"), multiplications ("*int"),
// divisions and closing parens.
var reservedRewrites = []rewrite{
	{regexp.MustCompile(`^Int;`), "switch_int;"},
	{regexp.MustCompile(`\*int;`), "*switch_int;"},
	{regexp.MustCompile(`\*int/`), "*switch_int/"},
	{regexp.MustCompile(`\*int\*`), "*switch_int*"},
	{regexp.MustCompile(`\*Int`), "*switch_int"},
	{regexp.MustCompile(`^as;`), "as_;"},
	{regexp.MustCompile(`^AS;`), "as_;"},
	{regexp.MustCompile(`\*AS;`), "*as_;"},
	{regexp.MustCompile(`\*pi;`), "*3.14;"},
	{regexp.MustCompile(`\*Pi\*`), "*3.14*"},
	{regexp.MustCompile(`\*pi\)`), "*3.14)"},
	{regexp.MustCompile(`\*Pi\)`), "*3.14)"},
	{regexp.MustCompile(`^add;`), "added;"},
	{regexp.MustCompile(`add\*`), "added*"},
	{regexp.MustCompile(`^poly;`), "polyy;"},
	{regexp.MustCompile(`\+poly\+`), "+polyy+"},
	{regexp.MustCompile(`^prod;`), "prodd;"},
	{regexp.MustCompile(`;prod/`), ";prodd/"},
	{regexp.MustCompile(`empty;`), "empty_factor;"},
	{regexp.MustCompile(`empty/`), "empty_factor/"},
}

// "as" used as a multiplier needs a guard: parameter names such as
// "as_alu" must stay untouched.
var (
	reStarAs     = regexp.MustCompile(`\*as`)
	reStarAsOK   = regexp.MustCompile(`\*as_`)
	reOneMinusAs = regexp.MustCompile(`1-as`)
	reOneMinusOK = regexp.MustCompile(`1-as_`)
	reOneMinusUp = regexp.MustCompile(`1-AS`)
	reOneMinusUW = regexp.MustCompile(`1-AS_`)
	reIff        = regexp.MustCompile(`;[iI]ff`)
)

// Line applies the reserved-name rewrites to a single line.
func Line(line string) string {
	// Conditional parameters ("iff") cannot be renamed portably, the
	// whole definition is neutralized to 0 instead.
	if reIff.MatchString(line) {
		fields := strings.Split(line, ";")
		if len(fields) > 1 && fields[1] != "" {
			return strings.ReplaceAll(line, fields[1], "0")
		}
	}

	for _, rw := range reservedRewrites {
		line = rw.re.ReplaceAllString(line, rw.repl)
	}
	if reStarAs.MatchString(line) && !reStarAsOK.MatchString(line) {
		line = reStarAs.ReplaceAllString(line, "*as_")
	}
	if reOneMinusAs.MatchString(line) && !reOneMinusOK.MatchString(line) {
		line = reOneMinusAs.ReplaceAllString(line, "1-as_")
	}
	if reOneMinusUp.MatchString(line) && !reOneMinusUW.MatchString(line) {
		line = reOneMinusUp.ReplaceAllString(line, "1-as_")
	}
	return line
}

// Text applies the reserved-name rewrites to a whole export.
func Text(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = Line(line)
	}
	return strings.Join(lines, "\n")
}

// File reads a Latin-1 SimaPro export, rewrites reserved parameter names,
// writes the treated copy under treatedDir, and returns the cleaned text.
func File(csvPath, treatedDir, dbName string) (string, error) {
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		return "", fmt.Errorf("reading export: %w", err)
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding export as Latin-1: %w", err)
	}

	cleaned := Text(string(decoded))

	if err := os.MkdirAll(treatedDir, 0o755); err != nil {
		return "", fmt.Errorf("creating treated directory: %w", err)
	}
	outPath := filepath.Join(treatedDir, dbName+".csv")
	if err := os.WriteFile(outPath, []byte(cleaned), 0o644); err != nil {
		return "", fmt.Errorf("writing treated export: %w", err)
	}

	return cleaned, nil
}
