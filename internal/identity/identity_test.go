package identity

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_Canonicalize_StripsTrackingParams(t *testing.T) {

	assert := assert.New(t)

	clean := Canonicalize("https://careers.acme.com/jobs/123?dept=eng")
	tracked := Canonicalize("http://careers.acme.com/jobs/123/?utm_source=mail&dept=eng&gclid=abc#apply")

	assert.Equal("https://careers.acme.com/jobs/123?dept=eng", clean)
	assert.Equal(clean, tracked)
}

func Test_Canonicalize_SortsRemainingParams(t *testing.T) {
	assert.Equal(t,
		Canonicalize("https://jobs.example.org/listing?b=2&a=1"),
		Canonicalize("https://jobs.example.org/listing?a=1&b=2&utm_campaign=x"))
}

func Test_Canonicalize_LinkedInShapes(t *testing.T) {

	assert := assert.New(t)
	expected := "https://www.linkedin.com/jobs/view/3912345678"

	for _, raw := range []string{
		"https://www.linkedin.com/jobs/view/3912345678/?trackingId=abc%3D%3D&refId=xyz",
		"https://www.linkedin.com/comm/jobs/view/3912345678?trk=eml-email_job_alert_digest_01&lipi=urn",
		"https://linkedin.com/jobs/view/senior-go-engineer-at-acme-3912345678",
		"https://www.linkedin.com/jobs/search/?currentJobId=3912345678&geoId=103644278",
		"http://m.linkedin.com/jobs/view/3912345678",
	} {
		assert.Equal(expected, Canonicalize(raw), raw)
	}
}

func Test_Canonicalize_IndeedShapes(t *testing.T) {

	assert := assert.New(t)
	expected := "https://www.indeed.com/viewjob?jk=a1b2c3d4e5f6"

	assert.Equal(expected, Canonicalize("https://www.indeed.com/viewjob?jk=a1b2c3d4e5f6&from=serp&vjs=3"))
	assert.Equal(expected, Canonicalize("https://www.indeed.com/rc/clk?jk=a1b2c3d4e5f6&fccid=123&tk=1h"))
	assert.Equal(expected, Canonicalize("https://indeed.com/pagead/clk?jk=a1b2c3d4e5f6"))
}

func Test_Canonicalize_GlassdoorAndAts(t *testing.T) {

	assert := assert.New(t)

	assert.Equal("https://www.glassdoor.com/job-listing/index.htm?jl=1009123456",
		Canonicalize("https://www.glassdoor.com/job-listing/go-dev-acme-JV_IC1147401_KO0,6.htm?jl=1009123456&cs=1"))
	assert.Equal("https://boards.greenhouse.io/acme/jobs/4012345",
		Canonicalize("https://boards.greenhouse.io/acme/jobs/4012345?gh_jid=4012345&gh_src=mail"))
}

func Test_Canonicalize_InvalidInputIsReturnedTrimmed(t *testing.T) {

	assert := assert.New(t)

	assert.Equal("not a url", Canonicalize("  not a url  "))
	assert.Equal("", Canonicalize(""))
	assert.Equal("/relative/path", Canonicalize("/relative/path"))
}

func Test_GenerateID_IsDeterministic(t *testing.T) {

	assert := assert.New(t)

	first := GenerateID("https://www.linkedin.com/jobs/view/1", "Go Engineer", "Acme")
	second := GenerateID("https://www.linkedin.com/jobs/view/1", "Go Engineer", "Acme")

	assert.Equal(first, second)
	assert.Len(first, 32)
	assert.Equal(first, GenerateID("https://www.linkedin.com/jobs/view/1", "  go  ENGINEER ", "ACME"))
	assert.NotEqual(first, GenerateID("https://www.linkedin.com/jobs/view/2", "Go Engineer", "Acme"))
	assert.NotEqual(first, GenerateID("https://www.linkedin.com/jobs/view/1", "Go Engineer", "Acme Labs"))
}

func Test_ForPosting_TrackingLinksShareId(t *testing.T) {

	url1, id1 := ForPosting("https://www.linkedin.com/comm/jobs/view/42?trk=alert", "Data Analyst", "Initech")
	url2, id2 := ForPosting("https://www.linkedin.com/jobs/view/42/?refId=abc", "Data Analyst", "Initech")

	assert.Equal(t, url1, url2)
	assert.Equal(t, id1, id2)
}
