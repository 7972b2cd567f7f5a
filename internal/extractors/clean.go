package extractors

import (
	"github.com/maxaizer/jobscout/internal/domain/models"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxTitleLength    = 200
	maxCompanyLength  = 120
	maxLocationLength = 120
	maxURLLength      = 2048
	maxBodyLength     = 20000
)

// chromePhrases never show up inside a real title or company name.
var chromePhrases = []string{
	"unsubscribe", "view all", "see all", "see more jobs", "show more", "manage alerts",
	"manage job alerts", "manage your", "your job alert", "privacy policy", "terms of service", "user agreement",
	"help center", "email preferences", "notification settings", "download the app", "get the app",
	"update your preferences", "you are receiving", "received this", "this email was",
	"all rights reserved", "be an early applicant",
}

var (
	// badgePattern matches job card badges standing alone or ahead of a separator,
	// so "Promoted" is noise and "Promoted Content Manager" is not.
	badgePattern = regexp.MustCompile(`(?i)^\(?(?:over\s+)?(?:[\d.,]+\+?\s*)?` +
		`(?:reviews?|applicants?|promoted|easy apply|actively recruiting|apply now|view job|learn more|sign in|job alert)` +
		`\b\s*(?:$|[·•|:,)-])`)
	ratingPattern   = regexp.MustCompile(`(?i)^\s*\d(?:[.,]\d)?\s*(?:stars?\b|/\s*5\b|out of 5|rating)`)
	legalSuffix     = regexp.MustCompile(`(?i),\s*(?:inc|llc|ltd|corp|co|plc|gmbh|l\.l\.c)\.?$`)
	placeKeywords   = regexp.MustCompile(`(?i)\b(?:remote|hybrid|on-?site|anywhere|united states|worldwide)\b`)
	commaSeparated  = regexp.MustCompile(`^[\p{L} .'-]+,\s*[\p{L} .'()-]+$`)
	whitespaceChars = regexp.MustCompile(`\s+`)
)

// IsNoise reports whether a text fragment is email or page chrome rather than job content.
func IsNoise(text string) bool {

	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" || strings.ContainsAny(t, "★☆©") || ratingPattern.MatchString(t) || badgePattern.MatchString(t) {
		return true
	}
	if strings.IndexFunc(t, unicode.IsLetter) < 0 {
		return true
	}
	for _, phrase := range chromePhrases {
		if strings.Contains(t, phrase) {
			return true
		}
	}
	return false
}

func looksLikeLocation(text string) bool {
	if placeKeywords.MatchString(text) {
		return true
	}
	return commaSeparated.MatchString(text) && !legalSuffix.MatchString(text)
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceChars.ReplaceAllString(s, " "))
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:maxRunes]))
}

func finalize(source string, postings []models.Posting) []models.Posting {

	result := make([]models.Posting, 0, len(postings))
	seen := make(map[string]struct{}, len(postings))

	for _, p := range postings {
		p.Source = source
		p.Title = truncate(collapse(p.Title), maxTitleLength)
		p.Company = truncate(collapse(p.Company), maxCompanyLength)
		p.Location = truncate(collapse(p.Location), maxLocationLength)
		p.URL = truncate(strings.TrimSpace(p.URL), maxURLLength)
		p.Body = truncate(strings.TrimSpace(p.Body), maxBodyLength)

		if p.Title == "" || IsNoise(p.Title) {
			continue
		}
		if p.Company == "" || IsNoise(p.Company) {
			p.Company = UnknownCompany
		}
		if p.Location != "" && IsNoise(p.Location) {
			p.Location = ""
		}

		key := strings.ToLower(p.URL + "|" + p.Title + "|" + p.Company)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, p)
	}

	return result
}
