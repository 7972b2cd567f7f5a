package filters

import (
	"github.com/maxaizer/jobscout/internal/domain/models"
	"regexp"
	"strconv"
	"strings"
)

const (
	HoursPerYear = 2080

	minAnnualSalary = 10_000
	maxAnnualSalary = 2_000_000
	maxHourlyRate   = 1_000
)

type SalaryPeriod string

const (
	PeriodAnnual SalaryPeriod = "annual"
	PeriodHourly SalaryPeriod = "hourly"
)

// SalaryRange holds annualized bounds; Period records how the source stated it.
type SalaryRange struct {
	Min        int
	Max        int
	Period     SalaryPeriod
	Confidence float64
	Text       string
}

type SalaryResult struct {
	Status     models.SalaryStatus
	Range      SalaryRange
	Confidence float64
}

type salaryPattern struct {
	re         *regexp.Regexp
	isRange    bool
	hourly     bool
	confidence float64
}

const number = `(\d{1,3}(?:,\d{3})+|\d+)(?:\.(\d+))?`

// Checked in order; the first pattern producing a plausible value wins.
var salaryPatterns = []salaryPattern{
	{re: regexp.MustCompile(`(?i)\$\s*` + number + `\s*(k\b)?\s*(?:-|–|—|to)\s*\$?\s*` + number + `\s*(k\b)?`), isRange: true, confidence: 0.9},
	{re: regexp.MustCompile(`(?i)\b` + number + `\s*(k)\s*(?:-|–|—|to)\s*` + number + `\s*(k)\b`), isRange: true, confidence: 0.8},
	{re: regexp.MustCompile(`(?i)\$\s*` + number + `\s*(k\b)?`), confidence: 0.7},
	{re: regexp.MustCompile(`(?i)\b` + number + `(?:\s*(?:-|–|to)\s*` + number + `)?\s*(?:/\s*h(?:ou)?r\b|per\s+hour|an\s+hour|hourly)`), hourly: true, confidence: 0.6},
}

var (
	hourlyMarker    = regexp.MustCompile(`(?i)^\s*(?:/\s*h(?:ou)?r\b|per\s+hour|an\s+hour|hourly|/\s*h\b)`)
	largeUnitMarker = regexp.MustCompile(`(?i)^\s*(?:m\b|mm\b|b\b|bn\b|million|billion)`)
	exclusionAfter  = regexp.MustCompile(`(?i)^\s*\+?\s*(?:years?|yrs?|employees|people|staff|users|customers|members|engineers|clients|headcount|%|percent|in\s+(?:funding|revenue|arr)|funding|raised|revenue|valuation|sign-?on)`)
	exclusionBefore = regexp.MustCompile(`(?i)(?:401\s*\(?k\)?|team of|headcount|raised|funding|revenue|series [a-e])\s*$`)
)

const exclusionWindow = 24

// ParseSalary finds the first plausible salary statement in text and annualizes it.
func ParseSalary(text string) (SalaryRange, bool) {

	for _, pattern := range salaryPatterns {
		for _, loc := range pattern.re.FindAllStringSubmatchIndex(text, -1) {
			if salary, ok := pattern.parse(text, loc); ok {
				return salary, true
			}
		}
	}
	return SalaryRange{}, false
}

// FindSalaryText returns the salary statement ParseSalary would use, verbatim.
func FindSalaryText(text string) string {
	salary, ok := ParseSalary(text)
	if !ok {
		return ""
	}
	return salary.Text
}

// ClassifySalary compares the upper bound of the parsed range against the
// minimum and target thresholds.
func ClassifySalary(text string, prefs models.SalaryPreferences) SalaryResult {

	salary, ok := ParseSalary(text)
	if !ok {
		return SalaryResult{Status: models.SalaryUnknown}
	}

	result := SalaryResult{Range: salary, Confidence: salary.Confidence}
	switch {
	case prefs.Minimum > 0 && salary.Max < prefs.Minimum:
		result.Status = models.SalaryBelowMinimum
	case prefs.Target > 0 && salary.Max >= prefs.Target:
		result.Status = models.SalaryAboveTarget
	default:
		result.Status = models.SalaryMatch
	}
	return result
}

func (p salaryPattern) parse(text string, loc []int) (SalaryRange, bool) {

	start, end := loc[0], loc[1]
	before := text[max(0, start-exclusionWindow):start]
	after := text[end:min(len(text), end+exclusionWindow)]

	if exclusionBefore.MatchString(before) || exclusionAfter.MatchString(after) || largeUnitMarker.MatchString(after) {
		return SalaryRange{}, false
	}

	group := func(i int) string {
		if loc[2*i] < 0 {
			return ""
		}
		return text[loc[2*i]:loc[2*i+1]]
	}

	var low, high float64
	var lowK, highK bool
	var ok bool

	switch {
	case p.hourly:
		low, ok = parseAmount(group(1), group(2))
		high = low
		if group(3) != "" {
			high, ok = parseAmount(group(3), group(4))
		}
	case p.isRange:
		low, ok = parseAmount(group(1), group(2))
		lowK = group(3) != ""
		if !ok {
			return SalaryRange{}, false
		}
		high, ok = parseAmount(group(4), group(5))
		highK = group(6) != ""
	default:
		low, ok = parseAmount(group(1), group(2))
		lowK = group(3) != ""
		high, highK = low, lowK
	}
	if !ok {
		return SalaryRange{}, false
	}

	// "$90-110k" shares the suffix.
	if highK && !lowK && low < 1000 {
		lowK = true
	}
	if lowK {
		low *= 1000
	}
	if highK {
		high *= 1000
	}
	if low > high {
		low, high = high, low
	}

	period := PeriodAnnual
	if p.hourly || hourlyMarker.MatchString(after) {
		period = PeriodHourly
	}

	if period == PeriodHourly {
		if high > maxHourlyRate {
			return SalaryRange{}, false
		}
		low *= HoursPerYear
		high *= HoursPerYear
	}

	if low < minAnnualSalary || high > maxAnnualSalary {
		return SalaryRange{}, false
	}

	return SalaryRange{
		Min:        int(low),
		Max:        int(high),
		Period:     period,
		Confidence: p.confidence,
		Text:       strings.TrimSpace(text[start:end]),
	}, true
}

func parseAmount(whole, fraction string) (float64, bool) {
	if whole == "" {
		return 0, false
	}
	s := strings.ReplaceAll(whole, ",", "")
	if fraction != "" {
		s += "." + fraction
	}
	value, err := strconv.ParseFloat(s, 64)
	return value, err == nil
}
