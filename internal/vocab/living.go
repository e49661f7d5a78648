package vocab

import (
	"regexp"
	"strings"
)

const (
	LivingAlternativeCare = "Alternative care settings"
	LivingHomeless        = "Homeless or marginally housed"
	LivingDetention       = "In detention"
	LivingIndependently   = "Living independently"
	LivingWithParents     = "With parent(s)"
	LivingWithRelatives   = "With relatives"
	LivingWithFriends     = "With friends"
	LivingOther           = "Other"
)

var LivingSituations = newSet(
	LivingAlternativeCare,
	LivingHomeless,
	LivingDetention,
	LivingIndependently,
	LivingWithParents,
	LivingWithRelatives,
	LivingWithFriends,
	LivingOther,
	Unknown,
)

type phraseRule struct {
	phrases []string
	label   string
	re      *regexp.Regexp
}

// Order matters: relatives before parents ("grandmother" contains "mother"),
// care settings before relatives ("foster mother").
var livingRules = []phraseRule{
	{phrases: []string{"foster", "children's home", "childrens home", "orphanage", "group home", "place of safety", "care home", "institution"}, label: LivingAlternativeCare},
	{phrases: []string{"homeless", "on the street", "streets", "shelter", "no home", "nowhere to live"}, label: LivingHomeless},
	{phrases: []string{"detention", "juvenile", "correctional", "remand", "prison", "jail", "lock-up", "lockup"}, label: LivingDetention},
	{phrases: []string{"grandmother", "grandfather", "grandparent", "grandma", "granny", "grandpa", "aunt", "auntie", "uncle", "cousin", "relative", "sister", "brother", "sibling", "godmother", "godfather", "stepmother", "stepfather", "step-mother", "step-father"}, label: LivingWithRelatives},
	{phrases: []string{"parent", "mother", "father", "mom", "mum", "mommy", "dad", "daddy", "family home"}, label: LivingWithParents},
	{phrases: []string{"friend", "boyfriend", "girlfriend"}, label: LivingWithFriends},
	{phrases: []string{"alone", "on my own", "on his own", "on her own", "by myself", "by himself", "by herself", "independent", "independently"}, label: LivingIndependently},
}

func init() {
	for i := range livingRules {
		livingRules[i].re = wholeWords(livingRules[i].phrases)
	}
}

// wholeWords matches any of phrases as whole words, allowing a plural "s",
// so "mom" matches "moms" but not "moment".
func wholeWords(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)s?\b`)
}

// MapLivingSituation resolves v via exact, case-insensitive and phrase
// lookup. It does not apply the Other catch-all; that is a caller policy.
func MapLivingSituation(v string) (string, bool) {
	if c, ok := LivingSituations.Canonical(v); ok {
		return c, true
	}
	s := strings.ToLower(strings.TrimSpace(v))
	if s == "" {
		return "", false
	}
	for _, rule := range livingRules {
		if rule.re.MatchString(s) {
			return rule.label, true
		}
	}
	return "", false
}
