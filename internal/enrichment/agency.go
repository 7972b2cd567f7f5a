package enrichment

import (
	"math"
	"regexp"
	"strings"
)

const (
	AggregatorThreshold = 0.5

	knownAgencyWeight = 0.6
	namePatternWeight = 0.4
	phraseWeight      = 0.15
	maxPhraseWeight   = 0.45
)

var knownAgencies = []string{
	"robert half", "teksystems", "randstad", "adecco", "kforce", "insight global", "aerotek",
	"manpower", "manpowergroup", "kelly services", "hays", "michael page", "apex systems",
	"cybercoders", "dice", "jobot", "motion recruitment", "modis", "akkodis", "experis",
	"allegis", "collabera", "hire with jarvis", "jobs via dice", "talentify", "lensa",
	"actalent", "beacon hill", "vaco", "addison group", "harnham", "mondo", "revature",
}

var agencyName = regexp.MustCompile(`(?i)\b(?:staffing|recruit(?:ing|ment|ers?)?|talent\s+(?:solutions|acquisition|partners|group)|search\s+(?:group|partners)|consulting\s+group|placement|headhunt(?:ers?|ing)?|workforce\s+solutions)\b`)

var agencyPhrases = []string{
	"our client",
	"on behalf of our client",
	"my client",
	"a leading client",
	"confidential client",
	"client is seeking",
	"client of ours",
	"contract to hire",
	"contract-to-hire",
	"c2c",
	"corp to corp",
	"w2 only",
	"staffing agency",
	"recruiting firm",
	"direct hire opportunity",
}

type AgencyResult struct {
	IsAggregator bool
	Confidence   float64
	Signals      []string
}

// DetectAgency estimates whether a posting comes from a staffing agency or
// job aggregator rather than the hiring company.
func DetectAgency(company, description string) AgencyResult {

	name := strings.ToLower(strings.TrimSpace(company))
	text := strings.ToLower(description)

	var result AgencyResult
	score := 0.0

	if agency, ok := knownAgency(name); ok {
		score += knownAgencyWeight
		result.Signals = append(result.Signals, "known agency: "+agency)
	}

	if m := agencyName.FindString(name); m != "" {
		score += namePatternWeight
		result.Signals = append(result.Signals, "company name: "+strings.ToLower(m))
	}

	phrases := 0.0
	for _, phrase := range agencyPhrases {
		if containsTerm(text, nil, phrase) {
			phrases += phraseWeight
			result.Signals = append(result.Signals, "phrase: "+phrase)
		}
	}
	score += math.Min(phrases, maxPhraseWeight)

	result.Confidence = math.Round(math.Min(score, 1)*100) / 100
	result.IsAggregator = result.Confidence >= AggregatorThreshold
	return result
}

func knownAgency(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, agency := range knownAgencies {
		if containsTerm(name, nil, agency) {
			return agency, true
		}
	}
	return "", false
}
