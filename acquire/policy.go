package acquire

import (
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/playstate/playstate/key"
	"github.com/spf13/viper"
)

// Policy bounds an acquisition.
type Policy struct {
	// Attempts is how many sessions are opened at most.
	Attempts int
	// ReadyWindow is how long each attempt waits for readiness.
	ReadyWindow time.Duration
	// InitialBackoff is the delay after the first failed attempt.
	InitialBackoff time.Duration
	// Multiplier grows the delay after each failed attempt.
	Multiplier float64
}

// DefaultPolicy is 3 attempts, a 2s window and delays of 1s, 2s and 4s.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:       3,
		ReadyWindow:    2 * time.Second,
		InitialBackoff: time.Second,
		Multiplier:     2,
	}
}

// PolicyFromConfig reads the policy from the acquire.* keys, falling back
// to DefaultPolicy for unusable values.
func PolicyFromConfig() Policy {
	p := Policy{
		Attempts:       viper.GetInt(key.AcquireAttempts),
		ReadyWindow:    viper.GetDuration(key.AcquireReadyWindow),
		InitialBackoff: viper.GetDuration(key.AcquireInitialBackoff),
		Multiplier:     viper.GetFloat64(key.AcquireMultiplier),
	}
	return p.normalized()
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.Attempts < 1 {
		p.Attempts = def.Attempts
	}
	if p.ReadyWindow <= 0 {
		p.ReadyWindow = def.ReadyWindow
	}
	if p.InitialBackoff < 0 {
		p.InitialBackoff = def.InitialBackoff
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	return p
}

// schedule returns the delay generator for one acquisition.
func (p Policy) schedule() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialBackoff
	b.RandomizationFactor = 0
	b.Multiplier = p.Multiplier
	b.MaxInterval = time.Duration(float64(p.InitialBackoff) * pow(p.Multiplier, p.Attempts))
	b.Reset()
	return b
}

// Delays lists the delay after each failed attempt.
func (p Policy) Delays() []time.Duration {
	b := p.schedule()
	delays := make([]time.Duration, p.Attempts)
	for i := range delays {
		delays[i] = b.NextBackOff()
	}
	return delays
}

func pow(x float64, n int) float64 {
	r := 1.0
	for range n {
		r *= x
	}
	return r
}
