package stream

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

type Config struct {
	Endpoint    string
	Reconnect   bool
	MaxAttempts int
	Delay       time.Duration
	Backoff     string
	MaxDelay    time.Duration
}

func DefaultConfig() Config {
	return Config{
		Reconnect:   true,
		MaxAttempts: 5,
		Delay:       time.Second,
		Backoff:     BackoffFixed,
		MaxDelay:    30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.Delay <= 0 {
		c.Delay = d.Delay
	}
	if c.MaxDelay < c.Delay {
		c.MaxDelay = c.Delay
	}
	if c.Backoff == "" {
		c.Backoff = d.Backoff
	}
	return c
}

func (c Config) newBackOff() backoff.BackOff {
	if c.Backoff == BackoffExponential {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = c.Delay
		b.MaxInterval = c.MaxDelay
		b.Reset()
		return b
	}
	return backoff.NewConstantBackOff(c.Delay)
}
