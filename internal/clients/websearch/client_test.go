package websearch

import (
	"bytes"
	"context"
	"github.com/alicebob/miniredis/v2"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/resilience"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func searchResponseMock(t *testing.T) *http.Response {
	file, err := os.ReadFile("testdata/search_response.json")
	require.NoError(t, err)

	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewBuffer(file)),
	}
}

func statusResponse(code int) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(bytes.NewBufferString(`{"detail":"error"}`)),
	}
}

func fastGuard() *resilience.Guard {
	return resilience.NewGuard("websearch-test", resilience.Policy{
		MaxAttempts:      3,
		InitialBackoff:   time.Millisecond,
		MaxBackoff:       time.Millisecond,
		Multiplier:       1,
		FailureThreshold: 10,
		Cooldown:         time.Minute,
	})
}

func newTestClient(httpClient HTTPClient) *Client {
	client := NewClient("https://search.test/search", "secret")
	client.SetHTTPClient(httpClient)
	client.SetGuard(fastGuard())
	return client
}

func Test_Search_ShouldPickResultMentioningCompany(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodPost && req.URL.String() == "https://search.test/search" &&
			req.Header.Get("Authorization") == "Bearer secret"
	})).Return(searchResponseMock(t), nil)

	result, err := newTestClient(mockClient).Search(context.Background(), "Acme", "Senior Go Engineer")

	assert.NoError(err)
	assert.True(result.Found)
	assert.Equal("https://careers.acme.com/jobs/4521", result.SourceURL)
	assert.Contains(result.Description, "build payment rails")
	assert.Contains(result.SalaryRange, "$150,000")
	assert.Equal([]string{
		"5+ years of experience with Go",
		"Experience with Kubernetes and PostgreSQL",
		"Strong communication skills",
	}, result.Requirements)
}

func Test_Search_WhenNoResultMentionsCompany_ShouldReportNotFound(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(searchResponseMock(t), nil)

	result, err := newTestClient(mockClient).Search(context.Background(), "Globex", "Senior Go Engineer")

	assert.NoError(t, err)
	assert.False(t, result.Found)
}

func Test_Search_WhenRateLimited_ShouldRetry(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(statusResponse(http.StatusTooManyRequests), nil).Once()
	mockClient.On("Do", mock.Anything).Return(searchResponseMock(t), nil).Once()

	result, err := newTestClient(mockClient).Search(context.Background(), "Acme", "Senior Go Engineer")

	assert.NoError(t, err)
	assert.True(t, result.Found)
	mockClient.AssertNumberOfCalls(t, "Do", 2)
}

func Test_Search_WhenClientError_ShouldNotRetry(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(statusResponse(http.StatusUnauthorized), nil)

	_, err := newTestClient(mockClient).Search(context.Background(), "Acme", "Senior Go Engineer")

	assert.ErrorContains(t, err, "status 401")
	mockClient.AssertNumberOfCalls(t, "Do", 1)
}

type countingSearcher struct {
	calls  int
	result models.SearchResult
}

func (s *countingSearcher) Search(context.Context, string, string) (models.SearchResult, error) {
	s.calls++
	return s.result, nil
}

func Test_Cached_ShouldReuseResultForSameQuery(t *testing.T) {

	next := &countingSearcher{result: models.SearchResult{Found: true, SourceURL: "https://acme.com/jobs/1"}}
	cached := NewCached(next, time.Minute)

	first, err := cached.Search(context.Background(), "Acme", "Go Engineer")
	require.NoError(t, err)
	second, err := cached.Search(context.Background(), " acme ", "go  engineer")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
}

func Test_RedisCached_ShouldStoreResultsInRedis(t *testing.T) {

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	next := &countingSearcher{result: models.SearchResult{Found: true, Description: "Build things", SalaryRange: "$100k"}}
	cached := NewRedisCached(next, client, time.Hour)

	_, err := cached.Search(context.Background(), "Acme", "Go Engineer")
	require.NoError(t, err)
	result, err := cached.Search(context.Background(), "Acme", "Go Engineer")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, "Build things", result.Description)
	assert.True(t, server.Exists(cacheKey("Acme", "Go Engineer")))

	server.FastForward(2 * time.Hour)
	_, err = cached.Search(context.Background(), "Acme", "Go Engineer")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func Test_NewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
