package resilience

import "time"

// Config tunes retries and the circuit breaker around one remote dependency.
// Zero fields fall back to DefaultConfig.
type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64
	RetryAfterMax       time.Duration

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

// DefaultConfig suits short calls to infrastructure we run ourselves, such
// as queue publishes.
func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,
		RetryMultiplier:     2.0,
		RetryAfterMax:       30 * time.Second,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// ReviewAPIConfig is for the review platform. It throttles with 429 and
// Retry-After, so backoff starts slower and the breaker needs more evidence.
func ReviewAPIConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryMaxAttempts = 4
	cfg.RetryInitialBackoff = 500 * time.Millisecond
	cfg.RetryMaxBackoff = 5 * time.Second
	cfg.RetryAfterMax = time.Minute
	cfg.BreakerMinRequests = 20
	cfg.BreakerOpenTimeout = time.Minute
	return cfg
}

func (c Config) normalize() Config {
	def := DefaultConfig()

	c.RetryMaxAttempts = positiveOr(c.RetryMaxAttempts, def.RetryMaxAttempts)
	c.RetryInitialBackoff = positiveOr(c.RetryInitialBackoff, def.RetryInitialBackoff)
	c.RetryMaxBackoff = max(positiveOr(c.RetryMaxBackoff, def.RetryMaxBackoff), c.RetryInitialBackoff)
	if c.RetryMultiplier < 1.0 {
		c.RetryMultiplier = def.RetryMultiplier
	}
	c.RetryAfterMax = positiveOr(c.RetryAfterMax, def.RetryAfterMax)

	c.BreakerMinRequests = positiveOr(c.BreakerMinRequests, def.BreakerMinRequests)
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		c.BreakerFailureRatio = def.BreakerFailureRatio
	}
	c.BreakerOpenTimeout = positiveOr(c.BreakerOpenTimeout, def.BreakerOpenTimeout)
	c.BreakerHalfOpenMaxCalls = positiveOr(c.BreakerHalfOpenMaxCalls, def.BreakerHalfOpenMaxCalls)

	return c
}

func positiveOr[T int | uint32 | time.Duration](v, fallback T) T {
	if v > 0 {
		return v
	}
	return fallback
}
