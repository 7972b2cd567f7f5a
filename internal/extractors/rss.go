package extractors

import (
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/mmcdole/gofeed"
	"strings"
)

// RSSExtractor reads RSS and Atom job feeds. Item titles carry "Title at
// Company" or "Title - Company - Location"; descriptions are HTML.
type RSSExtractor struct{}

func NewRSSExtractor() RSSExtractor {
	return RSSExtractor{}
}

func (e RSSExtractor) Source() string {
	return SourceRSS
}

func (e RSSExtractor) Extract(content string) []models.Posting {
	return safely(e.Source(), func() []models.Posting { return e.extract(content) })
}

func (e RSSExtractor) extract(content string) []models.Posting {

	feed, err := gofeed.NewParser().ParseString(content)
	if err != nil {
		return nil
	}

	postings := make([]models.Posting, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		title, company := SplitTitleCompany(htmlText(item.Title))
		location := item.Custom["location"]
		if company != UnknownCompany && location == "" {
			if rest, place, found := strings.Cut(company, " - "); found && looksLikeLocation(place) {
				company, location = rest, place
			}
		}
		if company == UnknownCompany && item.Author != nil && item.Author.Name != "" {
			company = item.Author.Name
		}

		body := item.Description
		if item.Content != "" {
			body = item.Content
		}

		posted := item.PublishedParsed
		if posted == nil {
			posted = item.UpdatedParsed
		}

		postings = append(postings, models.Posting{
			Title:    title,
			Company:  company,
			Location: location,
			URL:      item.Link,
			Body:     htmlText(body),
			PostedAt: posted,
		})
	}

	return postings
}
