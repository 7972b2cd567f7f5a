package extractors

import (
	"github.com/maxaizer/jobscout/internal/domain/models"
	"regexp"
	"strings"
)

var (
	blockSeparator = regexp.MustCompile(`\n\s*\n`)
	urlPattern     = regexp.MustCompile(`https?://[^\s<>"']+`)
)

// PlainTextExtractor reads plain-text alerts: blank-line separated blocks, each
// starting with a "Title + Company" line and carrying the listing URL somewhere inside.
type PlainTextExtractor struct{}

func NewPlainTextExtractor() PlainTextExtractor {
	return PlainTextExtractor{}
}

func (e PlainTextExtractor) Source() string {
	return SourcePlainText
}

func (e PlainTextExtractor) Extract(content string) []models.Posting {
	return safely(e.Source(), func() []models.Posting { return e.extract(content) })
}

func (e PlainTextExtractor) extract(content string) []models.Posting {

	var postings []models.Posting
	content = strings.ReplaceAll(content, "\r\n", "\n")

	for _, block := range blockSeparator.Split(content, -1) {
		link := urlPattern.FindString(block)
		if link == "" {
			continue
		}

		var lines []string
		for _, line := range strings.Split(block, "\n") {
			line = collapse(urlPattern.ReplaceAllString(line, ""))
			if line != "" && !IsNoise(line) {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}

		posting := models.Posting{URL: strings.TrimRight(link, ".,;)")}
		posting.Title, posting.Company = SplitTitleCompany(lines[0])
		lines = lines[1:]
		if len(lines) > 0 && looksLikeLocation(lines[0]) {
			posting.Location = lines[0]
			lines = lines[1:]
		}
		posting.Body = strings.Join(lines, "\n")

		postings = append(postings, posting)
	}

	return postings
}
