package extract

import (
	"github.com/aselo_helpline/backend/internal/models"
	"github.com/aselo_helpline/backend/internal/vocab"
)

// InferredNationality is marked so readers can tell it from a stated value.
const InferredNationality = vocab.DefaultNationality + " (assumed)"

const (
	ruleRegionFromParish      = "region_from_parish"
	ruleNationalityFromParish = "nationality_from_parish"
)

// inferSubject fills region and nationality from a known parish when they are
// nil or Unknown. Stated values are never replaced. It returns the rules that
// fired.
func inferSubject(c *models.Child) []string {
	if c.Parish == nil || !vocab.IsKnownParish(*c.Parish) {
		return nil
	}

	var applied []string
	if unstated(c.Region) {
		if region, ok := vocab.RegionForParish(*c.Parish); ok {
			c.Region = &region
			applied = append(applied, ruleRegionFromParish)
		}
	}
	if unstated(c.Nationality) {
		nationality := InferredNationality
		c.Nationality = &nationality
		applied = append(applied, ruleNationalityFromParish)
	}
	return applied
}

func unstated(v *string) bool {
	return v == nil || *v == vocab.Unknown
}
