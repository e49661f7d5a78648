package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/aselo_helpline/backend/internal/models"
	"github.com/aselo_helpline/backend/internal/vocab"
)

// The normalizers below take values as decoded from the model reply (with
// json.Decoder.UseNumber) and return a canonical value or nil. They never
// fail; an unusable value is simply absent.

// absentMarkers are placeholders models write instead of leaving a field out.
var absentMarkers = map[string]struct{}{
	"null": {}, "none": {}, "nil": {}, "n/a": {}, "n.a.": {}, "-": {},
	"not mentioned": {}, "not stated": {}, "not specified": {}, "unspecified": {},
	"not provided": {}, "not given": {}, "not applicable": {}, "not available": {},
	"no information": {}, "not disclosed": {},
}

func isAbsent(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := absentMarkers[s]; ok {
		return true
	}
	_, ok := absentMarkers[strings.TrimRight(s, ".")]
	return ok
}

func normalizeText(v any) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	default:
		return nil
	}
	if s == "" || isAbsent(s) {
		return nil
	}
	return &s
}

func normalizeGender(v any) *string {
	return mapped(v, vocab.MapGender)
}

func normalizeParish(v any) *string {
	return mapped(v, vocab.MapParish)
}

func normalizeRegion(v any) *string {
	return mapped(v, vocab.Regions.Canonical)
}

// normalizeLivingSituation is the one enum with a catch-all: free text that
// matches no phrase becomes Other.
func normalizeLivingSituation(v any) *string {
	s := normalizeText(v)
	if s == nil {
		return nil
	}
	if c, ok := vocab.MapLivingSituation(*s); ok {
		return &c
	}
	other := vocab.LivingOther
	return &other
}

func mapped(v any, lookup func(string) (string, bool)) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	c, ok := lookup(s)
	if !ok {
		return nil
	}
	return &c
}

const (
	AgeUnborn  = "Unborn"
	AgeOver25  = ">25"
	AgeUnknown = vocab.Unknown
	maxAge     = 25
)

var ageSentinels = map[string]string{
	"unborn":  AgeUnborn,
	">25":     AgeOver25,
	"unknown": AgeUnknown,
}

var ageText = regexp.MustCompile(`^(\d{1,2})(?:\s*(?:years?|yrs?)(?:\s*old)?|\s*(?:y/?o|old))?$`)

// normalizeAge accepts whole numbers 0-25, rendered as two digits, and the
// literal sentinels. Everything else is absent.
func normalizeAge(v any) *string {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return ageFromInt(n)
		}
		if f, err := t.Float64(); err == nil {
			return ageFromFloat(f)
		}
		return nil
	case float64:
		return ageFromFloat(t)
	case int:
		return ageFromInt(int64(t))
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if c, ok := ageSentinels[s]; ok {
			return &c
		}
		m := ageText.FindStringSubmatch(s)
		if m == nil {
			return nil
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil
		}
		return ageFromInt(n)
	default:
		return nil
	}
}

func ageFromFloat(f float64) *string {
	if f != math.Trunc(f) {
		return nil
	}
	return ageFromInt(int64(f))
}

func ageFromInt(n int64) *string {
	if n < 0 || n > maxAge {
		return nil
	}
	s := fmt.Sprintf("%02d", n)
	return &s
}

// normalizeVulnerableGroups keeps exact vocabulary members in order. An empty
// result is nil: nothing was stated.
func normalizeVulnerableGroups(v any) []string {
	out := filterMembers(v, vocab.VulnerableGroups)
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeIssues keeps the taxonomy members of one category. An empty result
// is an empty list: the category was considered and nothing applies.
func normalizeIssues(category string, v any) []string {
	labels, ok := vocab.IssueLabels(category)
	if !ok {
		return []string{}
	}
	return filterMembers(v, labels)
}

func normalizeCategories(v any) map[string][]string {
	section, _ := v.(map[string]any)
	out := vocab.EmptyCategories()
	for key := range out {
		out[key] = normalizeIssues(key, section[key])
	}
	return out
}

func filterMembers(v any, set vocab.Set) []string {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case string:
		items = []any{t}
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || !set.Contains(s) {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// normalizeFlag maps booleans and yes/no style answers onto Yes, No or Unknown.
func normalizeFlag(v any) *string {
	var c string
	switch t := v.(type) {
	case bool:
		c = "No"
		if t {
			c = "Yes"
		}
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		switch s {
		case "true", "y":
			c = "Yes"
		case "false", "n":
			c = "No"
		default:
			var ok bool
			if c, ok = vocab.YesNo.Canonical(s); !ok {
				return nil
			}
		}
	default:
		return nil
	}
	return &c
}

func normalizeBool(v any, def bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	}
	return def
}

func normalizeChild(section map[string]any) models.Child {
	return models.Child{
		FirstName:        normalizeText(section["firstName"]),
		LastName:         normalizeText(section["lastName"]),
		Gender:           normalizeGender(section["gender"]),
		Age:              normalizeAge(section["age"]),
		StreetAddress:    normalizeText(section["streetAddress"]),
		Parish:           normalizeParish(section["parish"]),
		Phone1:           normalizeText(section["phone1"]),
		Phone2:           normalizeText(section["phone2"]),
		Nationality:      normalizeText(section["nationality"]),
		SchoolName:       normalizeText(section["schoolName"]),
		GradeLevel:       normalizeText(section["gradeLevel"]),
		LivingSituation:  normalizeLivingSituation(section["livingSituation"]),
		VulnerableGroups: normalizeVulnerableGroups(section["vulnerableGroups"]),
		Region:           normalizeRegion(section["region"]),
	}
}

func normalizeMetadata(section map[string]any) models.CallMetadata {
	return models.CallMetadata{
		LocationOfIssue:                     normalizeText(section["locationOfIssue"]),
		ActionTaken:                         normalizeText(section["actionTaken"]),
		OutcomeOfContact:                    normalizeText(section["outcomeOfContact"]),
		HowDidYouKnowAboutOurLine:           normalizeText(section["howDidYouKnowAboutOurLine"]),
		OkForCaseWorkerToCall:               normalizeFlag(section["okForCaseWorkerToCall"]),
		DidTheChildFeelWeSolvedTheirProblem: normalizeFlag(section["didTheChildFeelWeSolvedTheirProblem"]),
		WouldTheChildRecommendUsToAFriend:   normalizeFlag(section["wouldTheChildRecommendUsToAFriend"]),
		DidYouDiscussRightsWithTheChild:     normalizeFlag(section["didYouDiscussRightsWithTheChild"]),
	}
}

// normalizeSummary never copies the counselor-only fields or repeatCaller.
func normalizeSummary(section map[string]any) models.CallSummary {
	summary := models.CallSummary{
		CallSummary:      FallbackCallSummary,
		CallMetadata:     normalizeMetadata(section),
		KeepConfidential: normalizeBool(section["keepConfidential"], true),
	}
	if s := normalizeText(section["callSummary"]); s != nil {
		summary.CallSummary = *s
	}
	return summary
}
