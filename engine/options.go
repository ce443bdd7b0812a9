package engine

type options struct {
	rate  float64
	muted bool
}

// Option configures an engine at construction.
type Option func(*options)

// WithPreferredRate sets the rate Play starts at. Negative rates become 0.
func WithPreferredRate(rate float64) Option {
	return func(o *options) {
		o.rate = rate
	}
}

// WithMuted starts the engine muted.
func WithMuted(muted bool) Option {
	return func(o *options) {
		o.muted = muted
	}
}
