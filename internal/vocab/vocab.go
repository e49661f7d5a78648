// Package vocab holds the closed vocabularies of the case-intake form.
//
// Every categorical field of a case record is checked against these tables.
// They are built once at package init and never mutated; accessors hand out
// copies so callers cannot alter the shared tables.
package vocab

import (
	"strings"
)

const Unknown = "Unknown"

// Set is an immutable vocabulary with case-insensitive lookup.
type Set struct {
	values []string
	exact  map[string]struct{}
	folded map[string]string
}

func newSet(values ...string) Set {
	s := Set{
		values: values,
		exact:  make(map[string]struct{}, len(values)),
		folded: make(map[string]string, len(values)),
	}
	for _, v := range values {
		s.exact[v] = struct{}{}
		s.folded[strings.ToLower(v)] = v
	}
	return s
}

// Contains reports exact membership.
func (s Set) Contains(v string) bool {
	_, ok := s.exact[v]
	return ok
}

// Canonical returns the member equal to v, first exactly and then ignoring
// case and surrounding whitespace.
func (s Set) Canonical(v string) (string, bool) {
	if s.Contains(v) {
		return v, true
	}
	c, ok := s.folded[strings.ToLower(strings.TrimSpace(v))]
	return c, ok
}

// Values returns the members in declaration order.
func (s Set) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

func (s Set) Len() int {
	return len(s.values)
}

const (
	GenderBoy       = "Boy"
	GenderGirl      = "Girl"
	GenderNonBinary = "Non-binary"
)

var Genders = newSet(GenderBoy, GenderGirl, GenderNonBinary, Unknown)

var genderSynonyms = map[string]string{
	"male":       GenderBoy,
	"m":          GenderBoy,
	"man":        GenderBoy,
	"son":        GenderBoy,
	"female":     GenderGirl,
	"f":          GenderGirl,
	"woman":      GenderGirl,
	"daughter":   GenderGirl,
	"nonbinary":  GenderNonBinary,
	"non binary": GenderNonBinary,
	"enby":       GenderNonBinary,
}

// MapGender resolves v to a gender member via exact, case-insensitive and
// synonym lookup.
func MapGender(v string) (string, bool) {
	if c, ok := Genders.Canonical(v); ok {
		return c, true
	}
	c, ok := genderSynonyms[strings.ToLower(strings.TrimSpace(v))]
	return c, ok
}

const (
	RegionCities = "Cities"
	RegionRural  = "Rural areas"
	RegionTown   = "Town & semi-dense areas"
)

var Regions = newSet(RegionCities, RegionRural, RegionTown, Unknown)

var YesNo = newSet("Yes", "No", Unknown)

var VulnerableGroups = newSet(
	"Child in conflict with the law",
	"Child living in conflict zone",
	"Child living in poverty",
	"Child member of an ethnic, racial or religious minority",
	"Child on the move (involuntarily)",
	"Child on the move (voluntarily)",
	"Child with disability",
	"LGBTQI+/SOGIESC child",
	"Out-of-school child",
	"Other",
)
