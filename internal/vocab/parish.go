package vocab

import "strings"

const (
	ParishKingston     = "Kingston"
	ParishStAndrew     = "St. Andrew"
	ParishStThomas     = "St. Thomas"
	ParishPortland     = "Portland"
	ParishStMary       = "St. Mary"
	ParishStAnn        = "St. Ann"
	ParishTrelawny     = "Trelawny"
	ParishStJames      = "St. James"
	ParishHanover      = "Hanover"
	ParishWestmoreland = "Westmoreland"
	ParishStElizabeth  = "St. Elizabeth"
	ParishManchester   = "Manchester"
	ParishClarendon    = "Clarendon"
	ParishStCatherine  = "St. Catherine"
)

var Parishes = newSet(
	ParishKingston,
	ParishStAndrew,
	ParishStThomas,
	ParishPortland,
	ParishStMary,
	ParishStAnn,
	ParishTrelawny,
	ParishStJames,
	ParishHanover,
	ParishWestmoreland,
	ParishStElizabeth,
	ParishManchester,
	ParishClarendon,
	ParishStCatherine,
	Unknown,
)

// DefaultNationality is the nationality implied by living in a known parish.
const DefaultNationality = "Jamaican"

var capitalParishes = map[string]struct{}{
	ParishKingston: {},
	ParishStAndrew: {},
}

var ruralParishes = map[string]struct{}{
	ParishStThomas:     {},
	ParishPortland:     {},
	ParishStMary:       {},
	ParishTrelawny:     {},
	ParishHanover:      {},
	ParishWestmoreland: {},
	ParishStElizabeth:  {},
}

// MapParish resolves free spellings such as "saint andrew" or "St.James
// parish" to the canonical parish name.
func MapParish(v string) (string, bool) {
	if c, ok := Parishes.Canonical(v); ok {
		return c, true
	}
	return Parishes.Canonical(respellParish(v))
}

func respellParish(v string) string {
	s := strings.Join(strings.Fields(strings.ToLower(v)), " ")
	s = strings.TrimSuffix(s, " parish")
	switch {
	case strings.HasPrefix(s, "saint "):
		s = "st. " + strings.TrimPrefix(s, "saint ")
	case strings.HasPrefix(s, "st "):
		s = "st. " + strings.TrimPrefix(s, "st ")
	case strings.HasPrefix(s, "st.") && !strings.HasPrefix(s, "st. "):
		s = "st. " + strings.TrimPrefix(s, "st.")
	}
	return s
}

// IsKnownParish reports whether p names an actual parish, as opposed to the
// Unknown placeholder or a value outside the vocabulary.
func IsKnownParish(p string) bool {
	return p != Unknown && Parishes.Contains(p)
}

// RegionForParish partitions the known parishes into regions.
func RegionForParish(p string) (string, bool) {
	if !IsKnownParish(p) {
		return "", false
	}
	if _, ok := capitalParishes[p]; ok {
		return RegionCities, true
	}
	if _, ok := ruralParishes[p]; ok {
		return RegionRural, true
	}
	return RegionTown, true
}
