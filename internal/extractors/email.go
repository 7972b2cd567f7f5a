package extractors

import (
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/identity"
	"github.com/samber/lo"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"regexp"
	"strings"
)

var (
	jobLinkPattern = regexp.MustCompile(`(?i)(/jobs/view/|/viewjob|/rc/clk|/pagead/clk|/job-listing/|` +
		`greenhouse\.io/.+/jobs/|jobs\.lever\.co/|myworkdayjobs\.com/|ashbyhq\.com/|/careers?/.+|/jobs?/[^/?#]+)`)
	nonJobLinkPattern = regexp.MustCompile(`(?i)(unsubscribe|/jobs/search|/jobs/collections|/jobs/alerts|` +
		`/psettings|/settings|/preferences|/help|/legal|/privacy|/jobs/?(?:[?#]|$))`)
)

const maxContainerDepth = 8

// EmailAlertExtractor reads job-alert emails: every anchor pointing at a job
// listing starts a posting, and the text that follows it inside the same job
// card supplies company and location.
type EmailAlertExtractor struct{}

func NewEmailAlertExtractor() EmailAlertExtractor {
	return EmailAlertExtractor{}
}

func (e EmailAlertExtractor) Source() string {
	return SourceEmailAlert
}

func (e EmailAlertExtractor) Extract(content string) []models.Posting {
	return safely(e.Source(), func() []models.Posting { return e.extract(content) })
}

func (e EmailAlertExtractor) extract(content string) []models.Posting {

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var postings []models.Posting
	seen := make(map[string]struct{})

	for _, anchor := range findAll(doc, atom.A) {
		href := strings.TrimSpace(attr(anchor, "href"))
		if !isJobLink(href) {
			continue
		}

		text := nodeText(anchor)
		if IsNoise(text) {
			continue
		}

		key := identity.Canonicalize(href)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		postings = append(postings, postingFromAnchor(anchor, text, href))
	}

	return postings
}

func postingFromAnchor(anchor *html.Node, text, href string) models.Posting {

	following := lo.Filter(segmentsAfter(jobContainer(anchor), anchor), func(s string, _ int) bool {
		return !IsNoise(s)
	})
	posting := models.Posting{URL: href}

	switch {
	case len(following) == 0:
		posting.Title, posting.Company = SplitTitleCompany(text)

	case strings.Contains(following[0], " · "):
		posting.Title = text
		posting.Company, posting.Location, _ = strings.Cut(following[0], " · ")
		following = following[1:]

	case looksLikeLocation(following[0]):
		posting.Title, posting.Company = SplitTitleCompany(text)
		posting.Location = following[0]
		following = following[1:]

	default:
		posting.Title = text
		posting.Company = following[0]
		following = following[1:]
		if len(following) > 0 && looksLikeLocation(following[0]) {
			posting.Location = following[0]
			following = following[1:]
		}
	}

	posting.Body = strings.Join(following, " ")
	return posting
}

// jobContainer climbs from the anchor to the largest enclosing element that
// still refers to a single job listing.
func jobContainer(anchor *html.Node) *html.Node {

	container := anchor
	for depth := 0; depth < maxContainerDepth && container.Parent != nil; depth++ {
		parent := container.Parent
		if parent.Type != html.ElementNode || parent.DataAtom == atom.Body || parent.DataAtom == atom.Html {
			break
		}
		if countJobLinks(parent) > 1 {
			break
		}
		container = parent
	}
	return container
}

func countJobLinks(root *html.Node) int {
	links := make(map[string]struct{})
	for _, a := range findAll(root, atom.A) {
		if href := attr(a, "href"); isJobLink(href) {
			links[identity.Canonicalize(href)] = struct{}{}
		}
	}
	return len(links)
}

func segmentsAfter(container, anchor *html.Node) []string {

	var segments []string
	passed := false

	walk(container, func(n *html.Node) bool {
		if n == anchor {
			passed = true
			return false
		}
		if isInvisible(n) {
			return false
		}
		if passed && n.Type == html.TextNode {
			if text := collapse(n.Data); text != "" {
				segments = append(segments, text)
			}
		}
		return true
	})
	return segments
}

func isJobLink(href string) bool {
	lower := strings.ToLower(href)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	return jobLinkPattern.MatchString(lower) && !nonJobLinkPattern.MatchString(lower)
}
