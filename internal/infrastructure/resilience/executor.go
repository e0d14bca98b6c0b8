package resilience

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// ErrorClassification tells the executor what a failed call means.
type ErrorClassification struct {
	Retryable bool
	// RecordFailure counts the error against the circuit breaker. Caller
	// mistakes and remote throttling leave it false.
	RecordFailure bool
	// RetryAfter is the pause the remote side asked for, such as an HTTP 429
	// Retry-After. It replaces the computed backoff, capped by RetryAfterMax.
	RetryAfter time.Duration
}

type ErrorClassifier func(err error) ErrorClassification

// Executor wraps calls to one remote dependency with retries and a circuit
// breaker per operation name. It is safe for concurrent use.
type Executor struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewExecutor(cfg Config) *Executor {
	return &Executor{
		cfg:      cfg.normalize(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

// Execute runs fn until it succeeds, fails permanently, runs out of attempts
// or ctx ends. A call refused by an open breaker returns an error matching
// IsCircuitOpen.
func (e *Executor) Execute(ctx context.Context, operation string, fn func(context.Context) error, classifier ErrorClassifier) error {
	if fn == nil {
		return errors.New("resilience: operation callback is nil")
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	if classifier == nil {
		classifier = alwaysPermanent
	}

	if !e.cfg.BreakerEnabled {
		return e.retry(ctx, op, fn, classifier)
	}
	_, err := e.breaker(op, classifier).Execute(func() (struct{}, error) {
		return struct{}{}, e.retry(ctx, op, fn, classifier)
	})
	if IsCircuitOpen(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return err
}

func (e *Executor) retry(ctx context.Context, op string, fn func(context.Context) error, classifier ErrorClassifier) error {
	schedule := e.newBackoff()
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		class := classifier(err)
		if !class.Retryable || attempt >= e.cfg.RetryMaxAttempts {
			return err
		}

		wait := schedule.next(class.RetryAfter)
		log.Warn().
			Err(err).
			Str("operation", op).
			Int("attempt", attempt).
			Int("max_attempts", e.cfg.RetryMaxAttempts).
			Bool("server_hint", class.RetryAfter > 0).
			Dur("wait", wait).
			Msg("retry_scheduled")

		if !sleep(ctx, wait) {
			return err
		}
	}
}

// backoff grows geometrically up to its ceiling. A server hint overrides the
// current step without advancing it.
type backoff struct {
	current    time.Duration
	ceiling    time.Duration
	multiplier float64
	hintCap    time.Duration
}

func (e *Executor) newBackoff() *backoff {
	return &backoff{
		current:    e.cfg.RetryInitialBackoff,
		ceiling:    e.cfg.RetryMaxBackoff,
		multiplier: e.cfg.RetryMultiplier,
		hintCap:    e.cfg.RetryAfterMax,
	}
}

func (b *backoff) next(hint time.Duration) time.Duration {
	if hint > 0 {
		return min(hint, b.hintCap)
	}
	wait := min(b.current, b.ceiling)
	b.current = min(time.Duration(float64(b.current)*b.multiplier), b.ceiling)
	return wait
}

// sleep reports false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (e *Executor) breaker(op string, classifier ErrorClassifier) *gobreaker.CircuitBreaker[struct{}] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[op]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        op,
		MaxRequests: e.cfg.BreakerHalfOpenMaxCalls,
		Timeout:     e.cfg.BreakerOpenTimeout,
		ReadyToTrip: e.tripWhen,
		IsSuccessful: func(err error) bool {
			return err == nil || !classifier(err).RecordFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("operation", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit_breaker_state_change")
		},
	})
	e.breakers[op] = cb
	return cb
}

func (e *Executor) tripWhen(counts gobreaker.Counts) bool {
	if counts.Requests < e.cfg.BreakerMinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= e.cfg.BreakerFailureRatio
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func alwaysPermanent(error) ErrorClassification {
	return ErrorClassification{RecordFailure: true}
}
