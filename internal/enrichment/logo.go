package enrichment

import (
	"fmt"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/net/publicsuffix"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const DefaultLogoTemplate = "https://logo.clearbit.com/%s"

var jobBoardDomains = []string{
	"linkedin.com", "indeed.com", "glassdoor.com", "ziprecruiter.com", "monster.com", "dice.com",
	"greenhouse.io", "lever.co", "ashbyhq.com", "myworkdayjobs.com", "smartrecruiters.com",
	"workable.com", "simplyhired.com", "builtin.com", "wellfound.com", "google.com", "bing.com",
}

var (
	companySuffix = regexp.MustCompile(`(?i)[\s,]+(?:inc|llc|ltd|corp|corporation|co|company|gmbh|plc|limited|group|holdings|technologies)\.?$`)
	nonSlug       = regexp.MustCompile(`[^a-z0-9]+`)
)

// LogoResolver guesses a logo URL for a company from the company's own domain
// when the source URL reveals it, otherwise from the company name.
type LogoResolver struct {
	template string
	cache    *gocache.Cache
}

func NewLogoResolver(template string) *LogoResolver {
	if template == "" {
		template = DefaultLogoTemplate
	}
	return &LogoResolver{template: template, cache: gocache.New(time.Hour, 2*time.Hour)}
}

func (r *LogoResolver) Resolve(company, sourceURL string) string {

	cacheID := strings.ToLower(company) + "|" + sourceURL
	if value, found := r.cache.Get(cacheID); found {
		return value.(string)
	}

	domain := companyDomain(sourceURL)
	if domain == "" {
		if slug := companySlug(company); slug != "" {
			domain = slug + ".com"
		}
	}

	logo := ""
	if domain != "" {
		logo = fmt.Sprintf(r.template, domain)
	}
	r.cache.Set(cacheID, logo, gocache.DefaultExpiration)
	return logo
}

func companyDomain(sourceURL string) string {

	u, err := url.Parse(strings.TrimSpace(sourceURL))
	if err != nil || u.Hostname() == "" {
		return ""
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(u.Hostname()))
	if err != nil {
		return ""
	}
	for _, board := range jobBoardDomains {
		if domain == board {
			return ""
		}
	}
	return domain
}

func companySlug(company string) string {

	name := strings.TrimSpace(company)
	if name == "" || strings.EqualFold(name, "unknown") {
		return ""
	}
	for {
		stripped := companySuffix.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = stripped
	}
	return nonSlug.ReplaceAllString(strings.ToLower(name), "")
}
