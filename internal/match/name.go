// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match implements the record-resolution core of the importer:
// allocation resolution, multi-output decomposition, the ecoinvent
// matching cascade, biosphere flow matching, and unlinked-exchange
// pruning. Processes move through these stages in order and are mutated
// in place; everything that cannot be resolved lands in a diagnostic
// bucket instead of being dropped silently.
package match

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoDelimiter reports a composite exchange name without the "|"
// separator. Callers are expected to test Parseable before invoking
// ParseCompositeName.
var ErrNoDelimiter = errors.New("composite name has no delimiter")

// NameParts is the decomposition of a composite SimaPro exchange label
// "<reference product> {<location>}| <process name>".
type NameParts struct {
	ReferenceProduct string
	ProcessName      string
	Location         string
}

// Parseable reports whether s follows the composite name grammar.
func Parseable(s string) bool {
	return strings.Contains(s, "|")
}

// ParseCompositeName splits a composite exchange label into its parts.
// The location alias "WECC, US only" is canonicalized to "WECC".
func ParseCompositeName(s string) (NameParts, error) {
	head, tail, ok := strings.Cut(s, "|")
	if !ok {
		return NameParts{}, fmt.Errorf("%q: %w", s, ErrNoDelimiter)
	}

	product, braces, _ := strings.Cut(head, " {")
	location, _, _ := strings.Cut(braces, "}")

	if location == "WECC, US only" {
		location = "WECC"
	}

	return NameParts{
		ReferenceProduct: strings.TrimSpace(product),
		ProcessName:      strings.TrimSpace(tail),
		Location:         strings.TrimSpace(location),
	}, nil
}
