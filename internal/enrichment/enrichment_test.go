package enrichment

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

const description = `Senior Backend Engineer

We build payment infrastructure in Go (golang) on Kubernetes.

Requirements:
- 5+ years of professional experience
- Bachelor's degree in Computer Science or equivalent
- Strong PostgreSQL and Kafka skills
- Active Secret clearance

Nice to have:
- Terraform
- AWS Certified Solutions Architect
- Kafka Streams experience
`

func Test_ExtractRequirements(t *testing.T) {

	assert := assert.New(t)
	req := ExtractRequirements(description)

	assert.Equal(5, req.YearsMin)
	assert.Equal(0, req.YearsMax)
	assert.Equal("bachelor", req.Education)
	assert.Equal(ClearanceSecret, req.Clearance)
	assert.Equal([]string{"AWS Certified"}, req.Certifications)
	assert.Equal([]string{"Go", "Kafka", "Kubernetes", "PostgreSQL"}, req.RequiredSkills)
	assert.Equal([]string{"AWS", "Terraform"}, req.PreferredSkills)
}

func Test_ExtractRequirements_YearsRange(t *testing.T) {

	req := ExtractRequirements("Looking for 3-5 years of experience with Python.")
	assert.Equal(t, 3, req.YearsMin)
	assert.Equal(t, 5, req.YearsMax)

	req = ExtractRequirements("Minimum of 7 years in distributed systems.")
	assert.Equal(t, 7, req.YearsMin)
}

func Test_ExtractRequirements_IgnoresImplausibleYears(t *testing.T) {

	req := ExtractRequirements("Founded 75 years ago, we have 50 years of experience in retail.")
	assert.Equal(t, 0, req.YearsMin)
	assert.Equal(t, 0, req.YearsMax)
}

func Test_ExtractRequirements_LowestEducationAndClearance(t *testing.T) {

	req := ExtractRequirements("Master's degree preferred; high school diploma required. TS/SCI with polygraph.")
	assert.Equal(t, "high_school", req.Education)
	assert.Equal(t, ClearanceTSSCI, req.Clearance)
}

func Test_ExtractRequirements_EmptyText(t *testing.T) {
	assert.True(t, ExtractRequirements("").IsEmpty())
}

func Test_DetectAgency_KnownAgency(t *testing.T) {

	assert := assert.New(t)
	result := DetectAgency("Robert Half", "Our client is seeking a contract to hire engineer.")

	assert.True(result.IsAggregator)
	assert.Equal(1.0, result.Confidence)
	assert.Contains(result.Signals, "known agency: robert half")
}

func Test_DetectAgency_NamePatternAlone(t *testing.T) {

	result := DetectAgency("Apex Recruiting Partners", "Build APIs.")

	assert.False(t, result.IsAggregator)
	assert.Equal(t, 0.4, result.Confidence)
}

func Test_DetectAgency_NamePatternAndPhrase(t *testing.T) {

	result := DetectAgency("Summit Staffing", "On behalf of our client, a fintech startup.")

	assert.True(t, result.IsAggregator)
	assert.Equal(t, 0.7, result.Confidence)
}

func Test_DetectAgency_PhrasesAreCapped(t *testing.T) {

	text := "Our client, a confidential client, my client. C2C and corp to corp welcome, W2 only otherwise."
	result := DetectAgency("Acme", text)

	assert.Equal(t, 0.45, result.Confidence)
	assert.False(t, result.IsAggregator)
}

func Test_DetectAgency_DirectEmployer(t *testing.T) {

	result := DetectAgency("Stripe", "Join our payments team.")

	assert.False(t, result.IsAggregator)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.Signals)
}

func Test_LogoResolver(t *testing.T) {

	resolver := NewLogoResolver("")

	assert.Equal(t, "https://logo.clearbit.com/stripe.com", resolver.Resolve("Stripe", "https://jobs.stripe.com/listing/123"))
	assert.Equal(t, "https://logo.clearbit.com/acmerobotics.com", resolver.Resolve("Acme Robotics, Inc.", "https://www.linkedin.com/jobs/view/1"))
	assert.Equal(t, "https://logo.clearbit.com/example.co.uk", resolver.Resolve("Example", "https://careers.example.co.uk/jobs"))
	assert.Equal(t, "", resolver.Resolve("Unknown", ""))
}
