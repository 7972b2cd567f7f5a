package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/filters"
	"github.com/maxaizer/jobscout/internal/resilience"
	"github.com/pkg/errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	DefaultURL        = "https://api.tavily.com/search"
	maxResults        = 5
	maxRequirements   = 15
	maxDescriptionLen = 20000
)

var ErrNotFound = errors.New("no matching search result")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type searchRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content"`
	Score      float64 `json:"score"`
}

type statusError struct {
	code int
	body string
}

func (e statusError) Error() string {
	return fmt.Sprintf("request failed with status %v, body: %v", e.code, e.body)
}

// Client looks postings up through a web-search API and condenses the best hit
// into a SearchResult.
type Client struct {
	url        string
	apiKey     string
	httpClient HTTPClient
	guard      *resilience.Guard
}

func NewClient(url, apiKey string) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{url: url, apiKey: apiKey, httpClient: &http.Client{}}
	c.SetGuard(resilience.NewGuard("websearch", resilience.DefaultPolicy()))
	return c
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetGuard(guard *resilience.Guard) {
	guard.SetRetryable(isRetryable)
	c.guard = guard
}

func (c *Client) Search(ctx context.Context, company, title string) (models.SearchResult, error) {

	result, err := c.search(ctx, company, title)
	if errors.Is(err, ErrNotFound) {
		return models.SearchResult{Found: false}, nil
	}
	return result, err
}

func (c *Client) search(ctx context.Context, company, title string) (models.SearchResult, error) {

	payload, err := json.Marshal(searchRequest{
		Query:             fmt.Sprintf("%q %q job posting", title, company),
		SearchDepth:       "basic",
		MaxResults:        maxResults,
		IncludeRawContent: true,
	})
	if err != nil {
		return models.SearchResult{}, fmt.Errorf("error encoding request: %w", err)
	}

	body, err := resilience.Call(ctx, c.guard, func(ctx context.Context) ([]byte, error) {
		return c.sendRequest(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	})
	if err != nil {
		return models.SearchResult{}, err
	}

	var response searchResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&response); err != nil {
		return models.SearchResult{}, fmt.Errorf("error decoding JSON response: %w", err)
	}

	hit, ok := bestResult(response.Results, company)
	if !ok {
		return models.SearchResult{}, ErrNotFound
	}
	return toSearchResult(hit), nil
}

func (c *Client) sendRequest(ctx context.Context, method string, url string, body io.ReadSeeker) ([]byte, error) {

	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError{code: resp.StatusCode, body: string(body)}
	}

	return body, nil
}

// bestResult picks the highest ranked hit that mentions the company.
func bestResult(results []searchResult, company string) (searchResult, bool) {

	name := strings.ToLower(strings.TrimSpace(company))
	if name == "" || name == "unknown" {
		return searchResult{}, false
	}

	var best searchResult
	found := false
	for _, r := range results {
		text := strings.ToLower(r.Title + " " + r.URL + " " + r.Content)
		if !strings.Contains(text, name) && !strings.Contains(text, strings.ReplaceAll(name, " ", "")) {
			continue
		}
		if !found || r.Score > best.Score {
			best, found = r, true
		}
	}
	return best, found
}

func toSearchResult(hit searchResult) models.SearchResult {

	description := strings.TrimSpace(hit.RawContent)
	if description == "" {
		description = strings.TrimSpace(hit.Content)
	}
	description = truncate(description, maxDescriptionLen)

	return models.SearchResult{
		Found:        true,
		Description:  description,
		SalaryRange:  filters.FindSalaryText(description),
		SourceURL:    hit.URL,
		Requirements: bulletLines(description),
	}
}

func bulletLines(text string) []string {

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, bullet := range []string{"- ", "* ", "• ", "· "} {
			if strings.HasPrefix(line, bullet) {
				if item := strings.TrimSpace(strings.TrimPrefix(line, bullet)); item != "" {
					lines = append(lines, item)
				}
				break
			}
		}
		if len(lines) == maxRequirements {
			break
		}
	}
	return lines
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return string([]rune(s)[:maxRunes])
}

func isRetryable(err error) bool {

	var status statusError
	if errors.As(err, &status) {
		return status.code == http.StatusTooManyRequests || status.code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
