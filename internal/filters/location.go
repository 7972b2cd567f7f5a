package filters

import (
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"strings"
	"unicode"
)

const (
	ConfidenceHigh   = 0.9
	ConfidenceMedium = 0.6
	ConfidenceLow    = 0.3
)

const (
	MatchTypePrimary   = "primary"
	MatchTypeSecondary = "secondary"
	MatchTypeExcluded  = "excluded"
	MatchTypeRemote    = "remote"
	MatchTypeNone      = "none"
)

var (
	locationSeparators = strings.NewReplacer("(", ",", ")", ",", "/", ",", "|", ",", ";", ",", "·", ",",
		"•", ",", " - ", ",", " – ", ",", " — ", ",", "\n", ",")
	locationStopWords = map[string]struct{}{
		"in": {}, "based": {}, "within": {}, "only": {}, "or": {}, "and": {}, "from": {}, "the": {},
		"location": {}, "locations": {}, "multiple": {}, "area": {}, "metro": {}, "greater": {},
	}
	cityStates = map[string]struct{}{"new york": {}, "washington": {}}
)

type ParsedLocation struct {
	City    string
	State   string
	Country string
	Remote  bool
	Hybrid  bool
	Onsite  bool
}

func (p ParsedLocation) HasPlace() bool {
	return p.City != "" || p.State != "" || p.Country != ""
}

type LocationResult struct {
	Status     models.MatchStatus
	MatchType  string
	ScoreBonus int
	Confidence float64
	Reason     string
	Parsed     ParsedLocation
}

// MatchLocation classifies a posting location against the preference tiers.
// Excluded entries are checked first and short-circuit to a mismatch.
func MatchLocation(location string, prefs models.LocationPreferences) LocationResult {

	normalized := normalizeLocation(location)
	if normalized == "" {
		return LocationResult{Status: models.MatchStatusUnknown, MatchType: MatchTypeNone,
			Confidence: ConfidenceLow, Reason: "no location given"}
	}

	parsed := parseNormalizedLocation(normalized)

	if entry, ok := firstMatch(prefs.Excluded, normalized, parsed); ok {
		return LocationResult{Status: models.MatchStatusMismatch, MatchType: MatchTypeExcluded,
			Confidence: ConfidenceHigh, Parsed: parsed, Reason: "excluded " + describe(entry)}
	}

	if entry, ok := firstMatch(prefs.Primary, normalized, parsed); ok {
		return LocationResult{Status: models.MatchStatusMatch, MatchType: MatchTypePrimary, ScoreBonus: entry.ScoreBonus,
			Confidence: ConfidenceHigh, Parsed: parsed, Reason: "primary " + describe(entry)}
	}

	if entry, ok := firstMatch(prefs.Secondary, normalized, parsed); ok {
		return LocationResult{Status: models.MatchStatusMatch, MatchType: MatchTypeSecondary, ScoreBonus: entry.ScoreBonus,
			Confidence: ConfidenceMedium, Parsed: parsed, Reason: "secondary " + describe(entry)}
	}

	switch {
	case parsed.Remote:
		return LocationResult{Status: models.MatchStatusUnknown, MatchType: MatchTypeRemote, Confidence: ConfidenceMedium,
			Parsed: parsed, Reason: "remote but outside configured locations"}
	case parsed.HasPlace():
		return LocationResult{Status: models.MatchStatusMismatch, MatchType: MatchTypeNone, Confidence: ConfidenceMedium,
			Parsed: parsed, Reason: fmt.Sprintf("%q is not a preferred location", location)}
	default:
		return LocationResult{Status: models.MatchStatusUnknown, MatchType: MatchTypeNone, Confidence: ConfidenceLow,
			Parsed: parsed, Reason: fmt.Sprintf("could not parse location %q", location)}
	}
}

// ParseLocation splits a free-text location into city, state and country
// parts and work-arrangement flags.
func ParseLocation(location string) ParsedLocation {
	return parseNormalizedLocation(normalizeLocation(location))
}

func normalizeLocation(location string) string {
	s := strings.ToLower(strings.TrimSpace(location))
	s = locationSeparators.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func parseNormalizedLocation(normalized string) ParsedLocation {

	parsed := ParsedLocation{
		Remote: containsAnyPhrase(normalized, remoteKeywords),
		Hybrid: containsAnyPhrase(normalized, hybridKeywords),
		Onsite: containsAnyPhrase(normalized, onsiteKeywords),
	}

	var parts []string
	for _, part := range strings.Split(normalized, ",") {
		if part = cleanLocationPart(part); part != "" {
			parts = append(parts, part)
		}
	}

	for i, part := range parts {
		if _, ambiguous := cityStates[part]; ambiguous && parsed.City == "" && (i < len(parts)-1 || len(parts) == 1) {
			parsed.City = part
			if len(parts) == 1 {
				parsed.State, _ = stateCode(part)
			}
			continue
		}
		if country, ok := countryName(part); ok && (len(part) > 2 || i > 0 || len(parts) == 1) {
			if parsed.Country == "" {
				parsed.Country = country
			}
			continue
		}
		if code, ok := stateCode(part); ok && (len(part) > 2 || parsed.City != "" || len(parts) == 1) {
			if parsed.State == "" {
				parsed.State = code
			}
			continue
		}
		if parsed.City == "" {
			parsed.City = part
		}
	}

	return parsed
}

func cleanLocationPart(part string) string {

	for _, keyword := range [][]string{remoteKeywords, hybridKeywords, onsiteKeywords} {
		for _, phrase := range keyword {
			part = replacePhrase(part, phrase, " ")
		}
	}

	var words []string
	for _, word := range strings.Fields(part) {
		if strings.IndexFunc(word, unicode.IsLetter) < 0 {
			continue
		}
		if _, stop := locationStopWords[word]; !stop {
			words = append(words, word)
		}
	}
	return strings.Join(words, " ")
}

func firstMatch(entries []models.LocationEntry, normalized string, parsed ParsedLocation) (models.LocationEntry, bool) {
	for _, entry := range entries {
		if entryMatches(entry, normalized, parsed) {
			return entry, true
		}
	}
	return models.LocationEntry{}, false
}

func entryMatches(entry models.LocationEntry, normalized string, parsed ParsedLocation) bool {

	value := normalizeLocation(entry.Value)

	switch entry.Type {
	case models.LocationRemote:
		if !parsed.Remote {
			return false
		}
		if value == "" || parsed.Country == "" {
			return true
		}
		country, _ := countryName(value)
		return country == parsed.Country || containsPhrase(normalized, value)

	case models.LocationCity:
		if value == "" || parsed.City != value {
			return false
		}
		state, _ := stateCode(normalizeLocation(entry.State))
		return state == "" || parsed.State == "" || parsed.State == state

	case models.LocationState:
		state, ok := stateCode(value)
		return ok && parsed.State == state

	case models.LocationStateRemote:
		state, ok := stateCode(value)
		return ok && parsed.Remote && parsed.State == state

	case models.LocationCountry:
		country, ok := countryName(value)
		return ok && parsed.Country == country

	case models.LocationHybrid:
		if !parsed.Hybrid {
			return false
		}
		if value == "" {
			return true
		}
		state, _ := stateCode(value)
		return parsed.City == value || (state != "" && parsed.State == state)

	case models.LocationKeyword:
		return value != "" && containsPhrase(normalized, value)
	}

	return false
}

func describe(entry models.LocationEntry) string {
	if entry.Value == "" {
		return string(entry.Type)
	}
	return fmt.Sprintf("%s %q", entry.Type, entry.Value)
}

func containsAnyPhrase(s string, phrases []string) bool {
	for _, phrase := range phrases {
		if containsPhrase(s, phrase) {
			return true
		}
	}
	return false
}

// containsPhrase matches whole words only, ignoring commas.
func containsPhrase(s, phrase string) bool {
	padded := " " + strings.ReplaceAll(s, ",", " ") + " "
	padded = strings.Join(strings.Fields(padded), " ")
	return strings.Contains(" "+padded+" ", " "+strings.TrimSpace(phrase)+" ")
}

func replacePhrase(s, phrase, replacement string) string {
	padded := " " + s + " "
	padded = strings.ReplaceAll(padded, " "+phrase+" ", " "+replacement+" ")
	return strings.TrimSpace(padded)
}
