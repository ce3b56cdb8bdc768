// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/CIRAIG/bw-Simporter/internal/refdb"
)

// ErrNoReferenceMatch reports that a cascade rule recognized a name but
// its rewritten form matched nothing in the reference database. This is
// not a normal outcome: every rule's rewrite is supposed to exist, so an
// empty result signals a gap in the rule table that needs human
// attention and aborts the run.
var ErrNoReferenceMatch = errors.New("no reference record matches rewritten name")

// bucketID routes a recognized-but-unmatchable exchange to one of the
// diagnostic buckets instead of the reference search.
type bucketID int

const (
	bucketNone bucketID = iota
	bucketObsolete
	bucketSystem
	bucketOnlyInSimapro
)

// searchFn locates the unique reference activity for an exchange whose
// rule already matched.
type searchFn func(ctx context.Context, m *Matcher, p NameParts) (refdb.Activity, error)

// rule is one entry of the matching cascade: a predicate over the parsed
// name, and either a diagnostic bucket or a search strategy. The cascade
// is evaluated in declaration order, first match wins.
type rule struct {
	label  string
	match  func(p NameParts, composite string, t *Tables) bool
	bucket bucketID
	search searchFn
}

// systemMarker tags names of system-aggregated ("S") records, which have
// no unit-process equivalent in the reference database.
const systemMarker = "Cut-off, S"

// unsupportedProducts are reference products that exist only in the
// source tool's own libraries.
var unsupportedProducts = map[string]bool{
	"Diesel, burned in diesel-electric generating set": true,
	"Sulfidic tailing, off-site":                       true,
}

// connectorNames are process names that are nothing but a linking word;
// the real activity name is "<connector> <reference product>".
var connectorNames = map[string]bool{
	"market for":       true,
	"market group for": true,
	"treatment of":     true,
}

var reToGenericMarket = regexp.MustCompile(`to generic market for$`)

func identity(p NameParts) string { return p.ProcessName }

// cascade is the ordered rule table. See the search helpers below for
// the two-step filtered-then-scan strategy most rules share.
var cascade = []rule{
	{
		label: "obsolete",
		match: func(p NameParts, composite string, t *Tables) bool {
			return t.Obsolete[composite]
		},
		bucket: bucketObsolete,
	},
	{
		label: "system-process",
		match: func(p NameParts, composite string, t *Tables) bool {
			return strings.Contains(composite, systemMarker)
		},
		bucket: bucketSystem,
	},
	{
		label: "only-in-simapro",
		match: func(p NameParts, composite string, t *Tables) bool {
			return unsupportedProducts[p.ReferenceProduct] ||
				strings.Contains(p.ProcessName, "recycling of")
		},
		bucket: bucketOnlyInSimapro,
	},
	{
		label: "bare-connector",
		match: func(p NameParts, composite string, t *Tables) bool {
			return connectorNames[p.ProcessName] ||
				reToGenericMarket.MatchString(p.ProcessName)
		},
		search: equalsSearch(func(p NameParts) string {
			return p.ProcessName + " " + p.ReferenceProduct
		}),
	},
	{
		label: "treatment-of-comma",
		match: func(p NameParts, composite string, t *Tables) bool {
			return strings.Contains(p.ProcessName, "treatment of,")
		},
		search: equalsSearch(func(p NameParts) string {
			// Only the segment between the first and second comma carries
			// over; anything after a second comma is dropped.
			head, tail, _ := strings.Cut(p.ProcessName, ",")
			seg, _, _ := strings.Cut(tail, ",")
			return head + " " + p.ReferenceProduct + "," + seg
		}),
	},
	{
		label: "diesel-transport",
		match: func(p NameParts, composite string, t *Tables) bool {
			// matches "Transport"/"transport" reference products
			return p.ProcessName == "diesel" && strings.Contains(p.ReferenceProduct, "ransport")
		},
		search: equalsSearch(func(p NameParts) string {
			return p.ReferenceProduct + ", " + p.ProcessName
		}),
	},
	{
		label: "construction",
		match: func(p NameParts, composite string, t *Tables) bool {
			return p.ProcessName == "construction"
		},
		search: constructionSearch,
	},
	{
		label: "quarry-operation",
		match: func(p NameParts, composite string, t *Tables) bool {
			return p.ProcessName == "quarry operation"
		},
		search: equalsSearch(func(p NameParts) string {
			return p.ReferenceProduct + " " + p.ProcessName
		}),
	},
	{
		label: "processing",
		match: func(p NameParts, composite string, t *Tables) bool {
			return p.ProcessName == "processing"
		},
		search: scanSearch(func(p NameParts) string {
			return p.ReferenceProduct
		}),
	},
	{
		label: "gravel-and-quarry",
		match: func(p NameParts, composite string, t *Tables) bool {
			// spelling drift between the two nomenclatures; the reference
			// record is "gravel and sand quarry operation"
			return p.ProcessName == "gravel and quarry operation"
		},
		search: gravelSearch,
	},
	{
		label: "ambiguous-tokens",
		match: func(p NameParts, composite string, t *Tables) bool {
			return strings.Contains(p.ProcessName, " in ") ||
				strings.Contains(p.ProcessName, " as ") ||
				strings.Contains(p.ReferenceProduct, " or ") ||
				strings.Contains(p.ReferenceProduct, " from ")
		},
		search: scanSearch(identity),
	},
	{
		label: "no-production-token",
		match: func(p NameParts, composite string, t *Tables) bool {
			return !strings.Contains(p.ProcessName, "production")
		},
		search: equalsSearch(identity),
	},
	{
		label: "production-exact",
		match: func(p NameParts, composite string, t *Tables) bool {
			return p.ProcessName == "production"
		},
		search: productionExactSearch,
	},
	{
		label: "production-prefix",
		match: func(p NameParts, composite string, t *Tables) bool {
			// "production" alone is handled by production-exact above
			return strings.HasPrefix(p.ProcessName, "production")
		},
		search: equalsSearch(func(p NameParts) string {
			return p.ReferenceProduct + " " + p.ProcessName
		}),
	},
	{
		label: "production-substring",
		match: func(p NameParts, composite string, t *Tables) bool {
			return strings.Contains(p.ProcessName, "production")
		},
		search: equalsSearch(identity),
	},
}

// equalsSearch is the standard two-step strategy: search the reference
// database by reference product within the exchange's location and pick
// the candidate whose name equals the rewritten name case-insensitively;
// when the filtered search misses, fall back to the full equality scan
// over (name, reference product, location).
func equalsSearch(rewrite func(NameParts) string) searchFn {
	return func(ctx context.Context, m *Matcher, p NameParts) (refdb.Activity, error) {
		want := rewrite(p)
		acts, err := m.ref.SearchActivities(ctx, p.ReferenceProduct, p.Location)
		if err != nil {
			return refdb.Activity{}, err
		}
		for _, a := range acts {
			if strings.EqualFold(a.Name, want) {
				return a, nil
			}
		}
		return m.equalityScan(ctx, want, p.ReferenceProduct, p.Location)
	}
}

// scanSearch skips the filtered search entirely; used for names too
// ambiguous for product-filtered search to be reliable.
func scanSearch(rewrite func(NameParts) string) searchFn {
	return func(ctx context.Context, m *Matcher, p NameParts) (refdb.Activity, error) {
		return m.equalityScan(ctx, rewrite(p), p.ReferenceProduct, p.Location)
	}
}

// constructionSearch picks any filtered candidate whose name contains
// "construction". There is no fallback scan: a miss here is fatal.
func constructionSearch(ctx context.Context, m *Matcher, p NameParts) (refdb.Activity, error) {
	acts, err := m.ref.SearchActivities(ctx, p.ReferenceProduct, p.Location)
	if err != nil {
		return refdb.Activity{}, err
	}
	for _, a := range acts {
		if strings.Contains(a.Name, p.ProcessName) {
			return a, nil
		}
	}
	return refdb.Activity{}, noMatch(p.ProcessName, p)
}

// gravelSearch corrects the "gravel and quarry operation" spelling to
// the reference record "gravel and sand quarry operation".
func gravelSearch(ctx context.Context, m *Matcher, p NameParts) (refdb.Activity, error) {
	acts, err := m.ref.SearchActivities(ctx, p.ReferenceProduct, p.Location)
	if err != nil {
		return refdb.Activity{}, err
	}
	for _, a := range acts {
		if strings.EqualFold(a.Name, "gravel and sand quarry operation") &&
			strings.EqualFold(a.ReferenceProduct, p.ReferenceProduct) {
			return a, nil
		}
	}
	return refdb.Activity{}, noMatch("gravel and sand quarry operation", p)
}

// productionExactSearch handles a process name that is exactly
// "production": the activity name in the reference database is some
// permutation of the reference product around the word "production", so
// candidates are compared with the word and all spaces squashed away.
func productionExactSearch(ctx context.Context, m *Matcher, p NameParts) (refdb.Activity, error) {
	if !strings.Contains(p.ReferenceProduct, "production") {
		acts, err := m.ref.SearchActivities(ctx, p.ReferenceProduct, p.Location)
		if err != nil {
			return refdb.Activity{}, err
		}
		for _, a := range acts {
			if squashProduction(a.Name) == squashProduction(p.ReferenceProduct) {
				return a, nil
			}
		}
		return m.findOne(ctx, p, func(a refdb.Activity) bool {
			return squashProduction(a.Name) == squashProduction(p.ReferenceProduct) &&
				strings.Contains(strings.ToLower(a.Name), "production") &&
				a.Location == p.Location
		})
	}

	// The product itself contains "production"; compare both sides with
	// the word removed.
	return m.findOne(ctx, p, func(a refdb.Activity) bool {
		return strings.EqualFold(a.ReferenceProduct, p.ReferenceProduct) &&
			a.Location == p.Location &&
			squashProduction(a.Name) == squashProduction(p.ReferenceProduct)
	})
}

// equalityScan is the unfiltered case-insensitive equality scan over
// (name, reference product, location).
func (m *Matcher) equalityScan(ctx context.Context, name, product, location string) (refdb.Activity, error) {
	acts, err := m.ref.FindActivities(ctx, name, product, location)
	if err != nil {
		return refdb.Activity{}, err
	}
	if len(acts) == 0 {
		return refdb.Activity{}, fmt.Errorf("name %q, product %q, location %q: %w",
			name, product, location, ErrNoReferenceMatch)
	}
	return acts[0], nil
}

// findOne streams the whole activity table through pred and returns the
// first hit.
func (m *Matcher) findOne(ctx context.Context, p NameParts, pred func(refdb.Activity) bool) (refdb.Activity, error) {
	var (
		found    refdb.Activity
		errFound = errors.New("found")
	)
	err := m.ref.EachActivity(ctx, func(a refdb.Activity) error {
		if pred(a) {
			found = a
			return errFound
		}
		return nil
	})
	if errors.Is(err, errFound) {
		return found, nil
	}
	if err != nil {
		return refdb.Activity{}, err
	}
	return refdb.Activity{}, noMatch(p.ProcessName, p)
}

func noMatch(name string, p NameParts) error {
	return fmt.Errorf("name %q, product %q, location %q: %w",
		name, p.ReferenceProduct, p.Location, ErrNoReferenceMatch)
}

// squashProduction lower-cases s and removes every "production" token
// and all spaces, so word-order permutations compare equal.
func squashProduction(s string) string {
	s = strings.ReplaceAll(s, "production", "")
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, " ", "")
}
