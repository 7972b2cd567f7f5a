package identity

import (
	"net/url"
	"regexp"
	"strings"
)

var trackingParams = map[string]struct{}{
	"trk": {}, "trkinfo": {}, "trackingid": {}, "refid": {}, "lipi": {}, "midtoken": {}, "midsig": {},
	"eid": {}, "otptoken": {}, "ssid": {}, "fbclid": {}, "gclid": {}, "msclkid": {}, "dclid": {},
	"mc_cid": {}, "mc_eid": {}, "_hsenc": {}, "_hsmi": {}, "mkt_tok": {}, "ref": {}, "referrer": {},
	"src": {}, "source": {}, "from": {}, "alid": {}, "sid": {}, "tk": {}, "vjs": {}, "advn": {},
	"ad": {}, "pub": {}, "xkcb": {}, "camk": {}, "jsa": {}, "sjdu": {}, "acatk": {}, "gh_src": {},
	"lever-origin": {}, "lever-source": {}, "originalsubdomain": {}, "ebp": {}, "recommendedflavor": {},
}

var (
	linkedInViewPath = regexp.MustCompile(`/(?:comm/)?jobs/view/(?:[^/]*-)?(\d+)`)
	digitsOnly       = regexp.MustCompile(`^\d+$`)
)

// Canonicalize removes session and tracking noise from a job URL and collapses
// known job boards to their minimal listing URL. Input that cannot be parsed
// as an absolute URL is returned trimmed.
func Canonicalize(rawURL string) string {

	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return trimmed
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme == "http" {
		u.Scheme = "https"
	}
	host := normalizeHost(u.Host)
	query := u.Query()

	if canonical, ok := canonicalBoardURL(host, u.Path, query); ok {
		return canonical
	}

	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil

	if keepsNoQuery(host) {
		query = url.Values{}
	}
	for key := range query {
		if isTrackingParam(key) {
			query.Del(key)
		}
	}
	// Encode sorts by key.
	u.RawQuery = query.Encode()
	u.ForceQuery = false

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	return u.String()
}

func normalizeHost(host string) string {

	host = strings.ToLower(host)
	host = strings.TrimSuffix(host, ":443")
	host = strings.TrimSuffix(host, ":80")
	host = strings.TrimSuffix(host, ".")
	for _, prefix := range []string{"www.", "m."} {
		host = strings.TrimPrefix(host, prefix)
	}
	return host
}

func canonicalBoardURL(host, path string, query url.Values) (string, bool) {

	switch {
	case host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com"):
		if match := linkedInViewPath.FindStringSubmatch(path); match != nil {
			return "https://www.linkedin.com/jobs/view/" + match[1], true
		}
		if id := query.Get("currentJobId"); digitsOnly.MatchString(id) {
			return "https://www.linkedin.com/jobs/view/" + id, true
		}

	case host == "indeed.com" || strings.HasSuffix(host, ".indeed.com"):
		jobKey := query.Get("jk")
		if jobKey == "" {
			jobKey = query.Get("vjk")
		}
		if jobKey != "" {
			if host == "indeed.com" {
				host = "www.indeed.com"
			}
			return "https://" + host + "/viewjob?jk=" + url.QueryEscape(jobKey), true
		}

	case host == "glassdoor.com" || strings.HasPrefix(host, "glassdoor."):
		if listingID := query.Get("jl"); digitsOnly.MatchString(listingID) {
			return "https://www.glassdoor.com/job-listing/index.htm?jl=" + listingID, true
		}
	}

	return "", false
}

// keepsNoQuery is true for applicant tracking systems whose listing URL is fully
// identified by its path.
func keepsNoQuery(host string) bool {
	for _, suffix := range []string{"greenhouse.io", "lever.co", "ashbyhq.com", "myworkdayjobs.com", "smartrecruiters.com", "workable.com"} {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

func isTrackingParam(key string) bool {
	key = strings.ToLower(key)
	if strings.HasPrefix(key, "utm_") || strings.HasPrefix(key, "trk") {
		return true
	}
	_, found := trackingParams[key]
	return found
}
