package extractors

import (
	"encoding/json"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"regexp"
	"strings"
	"time"
)

var (
	siteSuffix    = regexp.MustCompile(`(?i)\s*[|\-–]\s*(?:linkedin|indeed(?:\.com)?|glassdoor|ziprecruiter|monster|dice|wellfound|built ?in)\s*$`)
	hiringPattern = regexp.MustCompile(`^(.+?)\s+hiring\s+(.+?)(?:\s+in\s+(.+))?$`)
)

type capturedPage struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	HTML        string     `json:"html"`
	CapturedAt  *time.Time `json:"captured_at"`
}

// CaptureExtractor reads pages captured by the browser extension: one JSON
// object or an array of them. Fields the extension could not fill are recovered
// from the captured HTML.
type CaptureExtractor struct{}

func NewCaptureExtractor() CaptureExtractor {
	return CaptureExtractor{}
}

func (e CaptureExtractor) Source() string {
	return SourceBrowserCapture
}

func (e CaptureExtractor) Extract(content string) []models.Posting {
	return safely(e.Source(), func() []models.Posting { return e.extract(content) })
}

func (e CaptureExtractor) extract(content string) []models.Posting {

	var pages []capturedPage
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &pages); err != nil {
			return nil
		}
	} else {
		var page capturedPage
		if err := json.Unmarshal([]byte(trimmed), &page); err != nil {
			return nil
		}
		pages = append(pages, page)
	}

	postings := make([]models.Posting, 0, len(pages))
	for _, page := range pages {
		postings = append(postings, postingFromPage(page))
	}
	return postings
}

func postingFromPage(page capturedPage) models.Posting {

	var doc *html.Node
	if page.HTML != "" {
		doc, _ = html.Parse(strings.NewReader(page.HTML))
	}

	posting := models.Posting{
		Title:    page.Title,
		Company:  page.Company,
		Location: page.Location,
		URL:      page.URL,
		Body:     page.Description,
		PostedAt: page.CapturedAt,
	}

	if posting.Title == "" && doc != nil {
		posting.Title = pageTitle(doc)
	}
	posting.Title = siteSuffix.ReplaceAllString(collapse(posting.Title), "")

	if posting.Company == "" {
		if match := hiringPattern.FindStringSubmatch(posting.Title); match != nil {
			posting.Company, posting.Title = match[1], match[2]
			if posting.Location == "" {
				posting.Location = match[3]
			}
		} else {
			posting.Title, posting.Company = SplitTitleCompany(posting.Title)
		}
	}

	if posting.Body == "" && doc != nil {
		if body := findFirst(doc, atom.Body); body != nil {
			posting.Body = nodeText(body)
		}
	}

	return posting
}

func pageTitle(doc *html.Node) string {

	for _, meta := range findAll(doc, atom.Meta) {
		if strings.EqualFold(attr(meta, "property"), "og:title") {
			if content := collapse(attr(meta, "content")); content != "" {
				return content
			}
		}
	}
	if title := findFirst(doc, atom.Title); title != nil {
		if text := nodeText(title); text != "" {
			return text
		}
	}
	if h1 := findFirst(doc, atom.H1); h1 != nil {
		return nodeText(h1)
	}
	return ""
}
