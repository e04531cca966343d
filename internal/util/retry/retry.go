package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/juju/clock"
)

// Config holds retry configuration.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	log   logr.Logger
	clock clock.Clock
}

// Option is a functional option for retry configuration.
type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		MaxRetries:   5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		log:          logr.Discard(),
		clock:        clock.WallClock,
	}
}

// backoff yields the delay before each retry.
type backoff struct {
	next time.Duration
	max  time.Duration
	mult float64
}

func (b *backoff) delay() time.Duration {
	d := b.next
	b.next = min(time.Duration(float64(b.next)*b.mult), b.max)
	return d
}

// WithExponentialBackoff runs operation until it succeeds, returns an error
// marked with Fatal, or has been retried MaxRetries times. Waiting between
// attempts ends early when ctx is done.
func WithExponentialBackoff(ctx context.Context, operation func(context.Context) error, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	b := &backoff{next: cfg.InitialDelay, max: cfg.MaxDelay, mult: cfg.Multiplier}

	attempts := cfg.MaxRetries + 1
	var err error
	for attempt := 1; ; attempt++ {
		if err = operation(ctx); err == nil {
			return nil
		}
		if IsFatal(err) {
			return fmt.Errorf("fatal error (not retrying): %w", err)
		}
		if attempt == attempts {
			break
		}

		wait := b.delay()
		cfg.log.V(1).Info("Retrying after error", "attempt", attempt, "delay", wait.String(), "error", err.Error())
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled after %d attempts: %w", attempt, ctx.Err())
		case <-cfg.clock.After(wait):
		}
	}
	return fmt.Errorf("operation failed after %d attempts: %w", attempts, err)
}

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = max(n, 0)
	}
}

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		c.InitialDelay = d
	}
}

// WithMaxDelay caps the delay between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		c.MaxDelay = d
	}
}

// WithMultiplier sets the backoff multiplier.
func WithMultiplier(m float64) Option {
	return func(c *Config) {
		c.Multiplier = m
	}
}

// WithLogger logs every retry at V(1).
func WithLogger(log logr.Logger) Option {
	return func(c *Config) {
		c.log = log
	}
}

// WithClock replaces the wall clock used for delays.
func WithClock(clk clock.Clock) Option {
	return func(c *Config) {
		c.clock = clk
	}
}

// FatalError marks an error that must not be retried.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps err so that WithExponentialBackoff returns it at once.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether err, or any error it wraps, was marked with Fatal.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
