package enrichment

import (
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/samber/lo"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const maxYears = 40

const (
	ClearancePublicTrust = "public_trust"
	ClearanceSecret      = "secret"
	ClearanceTopSecret   = "top_secret"
	ClearanceTSSCI       = "ts_sci"
)

var (
	yearsRange = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:-|–|to)\s*(\d{1,2})\+?\s*(?:years?|yrs?)\b`)
	yearsPlus  = regexp.MustCompile(`(?i)\b(\d{1,2})\+\s*(?:years?|yrs?)\b`)
	yearsMin   = regexp.MustCompile(`(?i)\b(?:at\s+least|minimum(?:\s+of)?|min\.?)\s+(\d{1,2})\s*(?:years?|yrs?)\b`)
	yearsPlain = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:years?|yrs?)\s+(?:of\s+)?(?:\w+\s+){0,3}?experience\b`)

	preferredHeader = regexp.MustCompile(`(?i)\b(?:preferred|nice[\s-]to[\s-]have|bonus(?:\s+points)?|plus(?:ses)?|desired)\b`)
	goLanguage      = regexp.MustCompile(`\bGo\b`)
	requiredHeader  = regexp.MustCompile(`(?i)\b(?:requirements|required|qualifications|must[\s-]have|what\s+you(?:'|’)?ll\s+need|you\s+have)\b`)
)

// Education levels ordered from lowest to highest.
var educationLevels = []struct {
	level   string
	phrases []string
}{
	{"high_school", []string{"high school", "ged"}},
	{"associate", []string{"associate's degree", "associate degree", "associates degree"}},
	{"bachelor", []string{"bachelor", "bs degree", "b.s.", "ba degree", "b.a.", "undergraduate degree"}},
	{"master", []string{"master's", "masters degree", "master degree", "ms degree", "m.s.", "mba"}},
	{"phd", []string{"phd", "ph.d", "doctorate", "doctoral"}},
}

var certifications = map[string]string{
	"aws certified":    "AWS Certified",
	"azure certified":  "Azure Certified",
	"gcp professional": "GCP Professional",
	"cka":              "CKA",
	"ckad":             "CKAD",
	"cissp":            "CISSP",
	"security+":        "Security+",
	"comptia":          "CompTIA",
	"pmp":              "PMP",
	"ccna":             "CCNA",
	"ccnp":             "CCNP",
	"cpa":              "CPA",
	"scrum master":     "Scrum Master",
	"oscp":             "OSCP",
}

var clearances = []struct {
	level   string
	phrases []string
}{
	{ClearanceTSSCI, []string{"ts/sci", "ts sci", "ts-sci"}},
	{ClearanceTopSecret, []string{"top secret"}},
	{ClearanceSecret, []string{"secret clearance", "secret security clearance", "active secret"}},
	{ClearancePublicTrust, []string{"public trust"}},
}

var skills = map[string]string{
	"golang": "Go", "python": "Python", "java": "Java", "kotlin": "Kotlin",
	"javascript": "JavaScript", "typescript": "TypeScript", "rust": "Rust", "ruby": "Ruby",
	"c++": "C++", "c#": "C#", "scala": "Scala", "php": "PHP", "swift": "Swift", "sql": "SQL",
	"postgresql": "PostgreSQL", "postgres": "PostgreSQL", "mysql": "MySQL", "mongodb": "MongoDB",
	"redis": "Redis", "kafka": "Kafka", "rabbitmq": "RabbitMQ", "elasticsearch": "Elasticsearch",
	"docker": "Docker", "kubernetes": "Kubernetes", "k8s": "Kubernetes", "terraform": "Terraform",
	"aws": "AWS", "gcp": "GCP", "azure": "Azure", "linux": "Linux", "grpc": "gRPC",
	"graphql": "GraphQL", "react": "React", "node.js": "Node.js", "nodejs": "Node.js",
	"spark": "Spark", "airflow": "Airflow", "pytorch": "PyTorch", "tensorflow": "TensorFlow",
	"prometheus": "Prometheus", "grafana": "Grafana", "ci/cd": "CI/CD", "git": "Git",
}

// ExtractRequirements pulls experience, education, certification, clearance
// and skill requirements out of a job description.
func ExtractRequirements(text string) models.Requirements {

	lower := strings.ToLower(text)
	var req models.Requirements

	req.YearsMin, req.YearsMax = extractYears(text)
	req.Education = extractEducation(lower)
	req.Clearance = extractClearance(lower)

	tokens := tokenize(lower)
	for phrase, name := range certifications {
		if containsTerm(lower, tokens, phrase) {
			req.Certifications = append(req.Certifications, name)
		}
	}
	req.Certifications = sortedUnique(req.Certifications)

	req.RequiredSkills, req.PreferredSkills = extractSkills(text)
	return req
}

func extractYears(text string) (int, int) {

	if m := yearsRange.FindStringSubmatch(text); m != nil {
		low, high := atoi(m[1]), atoi(m[2])
		if low <= high && high <= maxYears {
			return low, high
		}
	}

	for _, pattern := range []*regexp.Regexp{yearsPlus, yearsMin, yearsPlain} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if years := atoi(m[1]); years > 0 && years <= maxYears {
				return years, 0
			}
		}
	}
	return 0, 0
}

// extractEducation reports the lowest level mentioned, which is the bar to clear.
func extractEducation(lower string) string {
	for _, entry := range educationLevels {
		for _, phrase := range entry.phrases {
			if containsTerm(lower, nil, phrase) {
				return entry.level
			}
		}
	}
	return ""
}

func extractClearance(lower string) string {
	for _, entry := range clearances {
		for _, phrase := range entry.phrases {
			if strings.Contains(lower, phrase) {
				return entry.level
			}
		}
	}
	return ""
}

// extractSkills assigns each skill to the section it first appears in. Lines
// after a "preferred"/"nice to have" header count as preferred until a
// "requirements" header switches back.
func extractSkills(text string) ([]string, []string) {

	required := map[string]struct{}{}
	preferred := map[string]struct{}{}
	inPreferred := false

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)

		linePreferred := inPreferred
		if preferredHeader.MatchString(lower) {
			linePreferred = true
			if isHeader(line) {
				inPreferred = true
			}
		} else if requiredHeader.MatchString(lower) && isHeader(line) {
			inPreferred = false
			linePreferred = false
		}

		tokens := tokenize(lower)
		var found []string
		for term, name := range skills {
			if containsTerm(lower, tokens, term) {
				found = append(found, name)
			}
		}
		if goLanguage.MatchString(line) {
			found = append(found, "Go")
		}

		for _, name := range found {
			if _, ok := required[name]; ok {
				continue
			}
			if linePreferred {
				preferred[name] = struct{}{}
			} else {
				delete(preferred, name)
				required[name] = struct{}{}
			}
		}
	}

	return sortedUnique(lo.Keys(required)), sortedUnique(lo.Keys(preferred))
}

func isHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) < 60 && (strings.HasSuffix(trimmed, ":") || !strings.ContainsAny(trimmed, ".,;"))
}

// tokenize keeps characters used in tech names so "c++", "c#" and "node.js"
// survive as single tokens.
func tokenize(lower string) map[string]struct{} {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || strings.ContainsRune("+#./-", r))
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		tokens[strings.Trim(field, ".-/")] = struct{}{}
		tokens[field] = struct{}{}
	}
	return tokens
}

// containsTerm matches single words against tokens and phrases by word boundary.
func containsTerm(lower string, tokens map[string]struct{}, term string) bool {

	if tokens != nil && !strings.Contains(term, " ") {
		_, ok := tokens[term]
		return ok
	}

	for start := 0; ; {
		i := strings.Index(lower[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		if (i == 0 || !isWordByte(lower[i-1])) && (end == len(lower) || !isWordByte(lower[end])) {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func sortedUnique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	values = lo.Uniq(values)
	slices.Sort(values)
	return values
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
