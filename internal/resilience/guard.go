package resilience

import (
	"context"
	"fmt"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type Policy struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
	Multiplier        float64       `mapstructure:"multiplier"`
	Jitter            float64       `mapstructure:"jitter"`
	FailureThreshold  int           `mapstructure:"failure_threshold"`
	Cooldown          time.Duration `mapstructure:"cooldown"`
}

func DefaultPolicy() Policy {
	return Policy{
		RequestsPerSecond: 1,
		Burst:             1,
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		Multiplier:        2,
		Jitter:            0.3,
		FailureThreshold:  5,
		Cooldown:          time.Minute,
	}
}

// Guard wraps calls to one external collaborator with a rate limiter,
// bounded retries and a circuit breaker.
type Guard struct {
	name      string
	policy    Policy
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	retryable func(error) bool
}

func NewGuard(name string, policy Policy) *Guard {

	limit := rate.Inf
	if policy.RequestsPerSecond > 0 {
		limit = rate.Limit(policy.RequestsPerSecond)
	}
	burst := max(policy.Burst, 1)

	g := &Guard{
		name:      name,
		policy:    policy,
		limiter:   rate.NewLimiter(limit, burst),
		retryable: defaultRetryable,
	}

	threshold := uint32(max(policy.FailureThreshold, 1))
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     policy.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !g.retryable(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return g
}

// SetRetryable replaces the classifier deciding which errors are transient.
// Errors it rejects are returned immediately and don't count against the breaker.
func (g *Guard) SetRetryable(retryable func(error) bool) {
	g.retryable = retryable
}

func (g *Guard) Name() string {
	return g.name
}

func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {

	attempt := 0
	operation := func() error {
		attempt++

		if err := g.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		_, err := g.breaker.Execute(func() (interface{}, error) {
			return nil, fn(ctx)
		})

		switch {
		case err == nil:
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(fmt.Errorf("%s: %w", g.name, ErrCircuitOpen))
		case ctx.Err() != nil, !g.retryable(err):
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		log.WithError(err).Debugf("%s attempt %d failed, retrying in %s", g.name, attempt, wait)
	}

	return backoff.RetryNotify(operation, backoff.WithContext(g.newBackOff(), ctx), notify)
}

// Call runs fn through the guard and returns its value.
func Call[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {

	var result T
	err := g.Do(ctx, func(ctx context.Context) error {
		value, err := fn(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	return result, err
}

func (g *Guard) newBackOff() backoff.BackOff {

	b := backoff.NewExponentialBackOff()
	if g.policy.InitialBackoff > 0 {
		b.InitialInterval = g.policy.InitialBackoff
	}
	if g.policy.MaxBackoff > 0 {
		b.MaxInterval = g.policy.MaxBackoff
	}
	if g.policy.Multiplier >= 1 {
		b.Multiplier = g.policy.Multiplier
	}
	b.RandomizationFactor = g.policy.Jitter
	b.MaxElapsedTime = 0
	b.Reset()

	retries := max(g.policy.MaxAttempts-1, 0)
	return backoff.WithMaxRetries(b, uint64(retries))
}

func defaultRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
