package vocab

// Category keys of the case record. Every key is always present in an
// extracted record.
const (
	CategoryMissingChildren     = "missingChildren"
	CategoryViolence            = "violence"
	CategoryMentalHealth        = "mentalHealth"
	CategoryPhysicalHealth      = "physicalHealth"
	CategoryEducation           = "education"
	CategoryFamilyRelationships = "familyRelationships"
	CategoryPeerRelationships   = "peerRelationships"
	CategorySexuality           = "sexuality"
	CategoryDiscrimination      = "discrimination"
	CategoryLegalStatus         = "legalStatus"
	CategoryTrafficking         = "trafficking"
	CategorySubstanceUse        = "substanceUse"
	CategoryNutrition           = "nutrition"
)

var categoryKeys = []string{
	CategoryMissingChildren,
	CategoryViolence,
	CategoryMentalHealth,
	CategoryPhysicalHealth,
	CategoryEducation,
	CategoryFamilyRelationships,
	CategoryPeerRelationships,
	CategorySexuality,
	CategoryDiscrimination,
	CategoryLegalStatus,
	CategoryTrafficking,
	CategorySubstanceUse,
	CategoryNutrition,
}

var categoryIssues = map[string]Set{
	CategoryMissingChildren: newSet(
		"Child abduction",
		"Lost, unaccompanied or separated child",
		"Runaway",
		"Unspecified/Other",
	),
	CategoryViolence: newSet(
		"Bullying in school",
		"Bullying out of school",
		"Child marriage",
		"Corporal punishment",
		"Cyberbullying",
		"Emotional abuse",
		"Gang violence",
		"Gender-based violence",
		"Neglect",
		"Online sexual abuse",
		"Physical abuse",
		"Sexual abuse",
		"Unspecified/Other",
	),
	CategoryMentalHealth: newSet(
		"Addictive behaviours",
		"Anxiety",
		"Depression",
		"Eating disorder",
		"Grief",
		"Loneliness",
		"Self-harm",
		"Stress",
		"Suicidal thoughts",
		"Trauma",
		"Unspecified/Other",
	),
	CategoryPhysicalHealth: newSet(
		"Child disability",
		"General medical or lifestyle",
		"HIV/AIDS",
		"Pregnancy and maternal care",
		"Sexual and reproductive health",
		"Unspecified/Other",
	),
	CategoryEducation: newSet(
		"Academic issues",
		"Exam pressure",
		"Learning difficulties",
		"Out of school",
		"School fees",
		"Teacher and school problems",
		"Unspecified/Other",
	),
	CategoryFamilyRelationships: newSet(
		"Divorce or separation",
		"Family conflict",
		"Family health issues",
		"Parental abandonment",
		"Parenting",
		"Unspecified/Other",
	),
	CategoryPeerRelationships: newSet(
		"Classmates",
		"Friends",
		"Partner or romantic relationship",
		"Peer pressure",
		"Unspecified/Other",
	),
	CategorySexuality: newSet(
		"Gender identity",
		"Sexual behaviours",
		"Sexual orientation",
		"Unspecified/Other",
	),
	CategoryDiscrimination: newSet(
		"Discrimination based on disability",
		"Discrimination based on gender",
		"Discrimination based on race or ethnicity",
		"Discrimination based on sexual orientation",
		"Unspecified/Other",
	),
	CategoryLegalStatus: newSet(
		"Birth registration",
		"Child in conflict with the law",
		"Custody",
		"Immigration",
		"Unspecified/Other",
	),
	CategoryTrafficking: newSet(
		"Labour exploitation",
		"Sexual exploitation",
		"Trafficking for other purposes",
		"Unspecified/Other",
	),
	CategorySubstanceUse: newSet(
		"Alcohol",
		"Drugs",
		"Tobacco or vaping",
		"Unspecified/Other",
	),
	CategoryNutrition: newSet(
		"Food insecurity",
		"Malnutrition",
		"Obesity",
		"Unspecified/Other",
	),
}

// CategoryKeys returns the fixed category keys in form order.
func CategoryKeys() []string {
	out := make([]string, len(categoryKeys))
	copy(out, categoryKeys)
	return out
}

// IssueLabels returns the taxonomy for one category key.
func IssueLabels(category string) (Set, bool) {
	s, ok := categoryIssues[category]
	return s, ok
}

// EmptyCategories returns a mapping with every category key set to an empty,
// non-nil list.
func EmptyCategories() map[string][]string {
	out := make(map[string][]string, len(categoryKeys))
	for _, k := range categoryKeys {
		out[k] = []string{}
	}
	return out
}
