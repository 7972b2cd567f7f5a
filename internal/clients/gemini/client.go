package gemini

import (
	"context"
	"fmt"
	"github.com/google/generative-ai-go/genai"
	"github.com/maxaizer/jobscout/internal/resilience"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"strings"
)

type Model string

const (
	//Model15Flash is fastest multimodal model with great performance for diverse, repetitive tasks
	Model15Flash Model = "gemini-1.5-flash"
	//Model15Flash8b is the smallest model for lower intelligence use cases
	Model15Flash8b Model = "gemini-1.5-flash-8b"
	//Model15Pro is next-generation model with a breakthrough 2 million context window
	Model15Pro Model = "gemini-1.5-pro"
	//Model20Flash is the second-generation workhorse model
	Model20Flash Model = "gemini-2.0-flash"
)

type Client struct {
	client            *genai.Client
	model             *genai.GenerativeModel
	minuteRateLimiter *rate.Limiter
	dayRateLimiter    *rate.Limiter
	guard             *resilience.Guard
}

func NewClient(ctx context.Context, apiKey string, model Model) (*Client, error) {

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	genModel := client.GenerativeModel(string(model))
	genModel.ResponseMIMEType = "application/json"

	service := Client{
		client: client,
		model:  genModel,
	}
	service.SetGuard(resilience.NewGuard("gemini", resilience.DefaultPolicy()))

	return &service, nil
}

func (c *Client) SetMinuteRateLimit(maxRequestsPerMinute float32) {
	c.minuteRateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerMinute/60), 1)
}

func (c *Client) SetDayRateLimit(maxRequestsPerDay float32) {
	c.dayRateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerDay/86400), int(maxRequestsPerDay))
}

// SetGuard replaces the retry and circuit breaker policy. Only server-side and
// quota errors are retried.
func (c *Client) SetGuard(guard *resilience.Guard) {
	guard.SetRetryable(isRetryable)
	c.guard = guard
}

func (c *Client) GenerateResponse(ctx context.Context, text string) (string, error) {
	return resilience.Call(ctx, c.guard, func(ctx context.Context) (string, error) {
		return c.waitAndGenerateResponse(ctx, text)
	})
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) waitAndGenerateResponse(ctx context.Context, text string) (string, error) {

	limiters := []*rate.Limiter{c.minuteRateLimiter, c.dayRateLimiter}
	for _, limiter := range limiters {
		if limiter != nil {
			err := limiter.Wait(ctx)
			if err != nil {
				return "", err
			}
		}
	}

	return c.tryGenerateResponse(ctx, text)
}

func (c *Client) tryGenerateResponse(ctx context.Context, text string) (string, error) {

	response, err := c.model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", err
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil ||
		len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	part := response.Candidates[0].Content.Parts[0]

	if textPart, ok := part.(genai.Text); ok {
		return string(textPart), nil
	}

	return "", fmt.Errorf("response part is not text")
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	for _, code := range []string{"Error 500", "Error 503", "Error 429"} {
		if strings.Contains(message, code) {
			return true
		}
	}
	return false
}
