package extractors

import (
	"regexp"
	"strings"
	"unicode"
)

const UnknownCompany = "Unknown"

var explicitDelimiters = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s+at\s+`),
	regexp.MustCompile(`\s+[-–—]\s+`),
	regexp.MustCompile(`\s+\|\s+`),
}

var titleWords = map[string]struct{}{
	"engineer": {}, "developer": {}, "programmer": {}, "architect": {}, "scientist": {}, "analyst": {},
	"manager": {}, "director": {}, "lead": {}, "head": {}, "designer": {}, "administrator": {},
	"specialist": {}, "consultant": {}, "coordinator": {}, "associate": {}, "intern": {}, "technician": {},
	"officer": {}, "representative": {}, "executive": {}, "recruiter": {}, "writer": {}, "editor": {},
	"accountant": {}, "assistant": {}, "nurse": {}, "teacher": {}, "researcher": {}, "strategist": {},
	"owner": {}, "partner": {}, "producer": {}, "advisor": {}, "agent": {}, "operator": {}, "planner": {},
	"supervisor": {}, "tester": {}, "sre": {}, "devops": {}, "qa": {}, "president": {}, "vp": {},
	"principal": {}, "staff": {}, "senior": {}, "junior": {}, "sr": {}, "jr": {}, "ii": {}, "iii": {},
	"iv": {}, "contractor": {}, "trainee": {}, "apprentice": {}, "instructor": {}, "clerk": {},
	"auditor": {}, "controller": {}, "counsel": {}, "attorney": {}, "paralegal": {}, "mechanic": {},
	"electrician": {}, "driver": {}, "marketer": {}, "expert": {}, "generalist": {}, "member": {},
}

// SplitTitleCompany splits a concatenated "Title + Company" string. Explicit
// delimiters win; otherwise a lower-to-upper case boundary is accepted when
// the part before it ends in a known job-title word. When nothing fits the
// whole string is the title and the company is Unknown.
func SplitTitleCompany(s string) (title, company string) {

	s = collapse(s)
	if s == "" {
		return "", UnknownCompany
	}

	if title, company, ok := splitExplicit(s); ok {
		return title, company
	}

	if title, company, ok := splitAtCaseTransition(s); ok {
		return title, company
	}

	return s, UnknownCompany
}

func splitExplicit(s string) (string, string, bool) {

	for _, delimiter := range explicitDelimiters {
		loc := delimiter.FindStringIndex(s)
		if loc == nil {
			continue
		}
		title, company := strings.TrimSpace(s[:loc[0]]), strings.TrimSpace(s[loc[1]:])
		if title != "" && company != "" {
			return title, company, true
		}
	}
	return "", "", false
}

func splitAtCaseTransition(s string) (string, string, bool) {

	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if !unicode.IsLower(runes[i-1]) || !unicode.IsUpper(runes[i]) {
			continue
		}
		title := strings.TrimSpace(string(runes[:i]))
		company := strings.TrimSpace(string(runes[i:]))
		if company != "" && endsWithTitleWord(title) {
			return title, company, true
		}
	}
	return "", "", false
}

func endsWithTitleWord(title string) bool {

	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return false
	}

	last := words[len(words)-1]
	if _, ok := titleWords[last]; ok {
		return true
	}
	_, ok := titleWords[strings.TrimSuffix(last, "s")]
	return ok
}
