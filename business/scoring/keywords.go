package scoring

import "strings"

// intentKeywords expands a stated intent into the effect vocabulary
// used for keyword overlap. The table is fixed domain knowledge.
var intentKeywords = map[string][]string{
	"relax":      {"relaxing", "calming", "peaceful", "mellow"},
	"sleep":      {"sleepy", "sedating", "relaxing", "calming"},
	"energize":   {"energetic", "uplifting", "invigorating", "active"},
	"focus":      {"focused", "clear", "alert", "creative"},
	"creative":   {"creative", "euphoric", "uplifting", "inspired"},
	"social":     {"talkative", "giggly", "euphoric", "uplifting"},
	"pain_relief": {"relaxing", "soothing", "numbing", "calming"},
	"appetite":   {"hungry", "relaxing", "giggly"},
}

// expandIntent returns the lowercase keyword set for an intent, empty
// for unknown intents.
func expandIntent(intent string) []string {
	kws, ok := intentKeywords[strings.ToLower(strings.TrimSpace(intent))]
	if !ok {
		return nil
	}
	return kws
}

// potencyBand is the acceptable THC range for a tolerance tier.
type potencyBand struct {
	min float64
	max float64
}

var toleranceBands = map[string]potencyBand{
	"low":    {min: 0, max: 10},
	"medium": {min: 10, max: 20},
	"high":   {min: 18, max: 30},
}

var defaultBand = toleranceBands["medium"]

func bandFor(tolerance string) potencyBand {
	if band, ok := toleranceBands[strings.ToLower(tolerance)]; ok {
		return band
	}
	return defaultBand
}

// formRiskRank orders form factors by inherent risk. Unlisted forms
// rank with flower.
var formRiskRank = map[string]int{
	"topical":     0,
	"tincture":    0,
	"flower":      1,
	"preroll":     1,
	"vape":        2,
	"edible":      2,
	"concentrate": 3,
	"dab":         3,
}

var toleranceRank = map[string]int{
	"low":    1,
	"medium": 2,
	"high":   3,
}

func formRisk(form string) int {
	if r, ok := formRiskRank[strings.ToLower(form)]; ok {
		return r
	}
	return 1
}

func riskCapacity(tolerance string) int {
	if r, ok := toleranceRank[strings.ToLower(tolerance)]; ok {
		return r
	}
	return toleranceRank["medium"]
}
