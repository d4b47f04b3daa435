package scoring

import "github.com/okian/proofscore/pkg/logger"

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithMinFollowers sets the follower count below which the follower-count
// check scores 0.
func WithMinFollowers(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.minFollowers = n
		}
	}
}

// WithTargetFollowers sets the follower count that saturates the
// follower-count check.
func WithTargetFollowers(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.targetFollowers = n
		}
	}
}

// WithMaxHandleLength bounds the handle length criterion.
func WithMaxHandleLength(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxHandleLength = n
		}
	}
}

// WithMaxDescriptionLength bounds the description length criterion.
func WithMaxDescriptionLength(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxDescriptionLength = n
		}
	}
}

// WithWeights replaces the check weights. Invalid weight sets are ignored.
func WithWeights(w Weights) Option {
	return func(v *Validator) {
		if w.Validate() == nil {
			v.weights = w
		}
	}
}

// WithLogger sets the logger receiving the per-check trace.
func WithLogger(l logger.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}
