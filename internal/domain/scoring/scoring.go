// Package scoring computes the quality score of a submitted social-profile
// record: five weighted checks, presence bonuses, a clamp and an acceptance
// gate.
//
// A Validator is immutable after construction and safe for concurrent use;
// every call is independent of every other.
package scoring

import (
	"context"

	"github.com/okian/proofscore/internal/domain/record"
	"github.com/okian/proofscore/pkg/logger"
)

// Default scoring configuration constants.
const (
	defaultMinFollowers         = 5
	defaultTargetFollowers      = 500
	defaultMaxHandleLength      = 50
	defaultMaxDescriptionLength = 280

	rankingBonus = 0.1
	tweetsBonus  = 0.1
	maxScore     = 1.0

	// AcceptThreshold is the inclusive lower bound of an accepted score.
	AcceptThreshold = 0.15
)

// Evaluator produces a Report for one record.
type Evaluator interface {
	Evaluate(ctx context.Context, rec record.Record) Report
}

// Report is the full trace of one evaluation.
type Report struct {
	// Checks holds one result per check in weighting order; empty when the
	// record was empty and no check ran.
	Checks []CheckResult
	// Base is the weighted sum of the checks.
	Base float64
	// Bonus is the sum of the presence bonuses.
	Bonus float64
	// Final is min(Base+Bonus, 1), before the gate.
	Final float64
	// FollowerCount is the length of the followers sequence.
	FollowerCount int
	Outcome       Outcome
}

// Check returns the value of the named check.
func (r Report) Check(name CheckName) (float64, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c.Value, true
		}
	}
	return 0, false
}

// Validator scores records.
type Validator struct {
	minFollowers         int
	targetFollowers      int
	maxHandleLength      int
	maxDescriptionLength int
	weights              Weights
	logger               logger.Logger
}

var _ Evaluator = (*Validator)(nil)

// NewValidator creates a validator with configuration options.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		minFollowers:         defaultMinFollowers,
		targetFollowers:      defaultTargetFollowers,
		maxHandleLength:      defaultMaxHandleLength,
		maxDescriptionLength: defaultMaxDescriptionLength,
		weights:              DefaultWeights(),
		logger:               logger.Nop(),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate returns the score of rec as a single float: 0 for an empty record,
// InvalidScore (-1) when the record is rejected, the accepted score otherwise.
func (v *Validator) Validate(ctx context.Context, rec record.Record) float64 {
	return v.Evaluate(ctx, rec).Outcome.Score()
}

// Evaluate runs every check on rec and gates the aggregate.
func (v *Validator) Evaluate(ctx context.Context, rec record.Record) Report {
	if rec.Empty() {
		v.logger.Debug(ctx, "no data provided")
		return Report{Outcome: Accepted(0)}
	}

	followers := rec.Followers()
	checks := []CheckResult{
		{Name: NameStructure, Value: CheckStructure(rec)},
		{Name: NameHandleFormat, Value: v.CheckHandleFormat(rec.Text(record.FieldHandle))},
		{Name: NameDescription, Value: v.CheckDescription(rec.Text(record.FieldDescription))},
		{Name: NameFollowerCount, Value: v.FollowerCountScore(followers)},
		{Name: NameFollowerHandles, Value: v.CheckFollowerHandles(followers)},
	}

	weights := v.weights.asList()
	var base float64
	for i, c := range checks {
		base += c.Value * weights[i]
		v.logger.Debug(ctx, "check result", logger.String("check", string(c.Name)), logger.Float64("value", c.Value))
	}

	// Bonuses are added onto the running score one at a time, in order.
	final := base
	var bonus float64
	if record.Truthy(rec[record.FieldRanking]) {
		final += rankingBonus
		bonus += rankingBonus
	}
	if record.Truthy(rec[record.FieldTweets]) {
		final += tweetsBonus
		bonus += tweetsBonus
	}
	final = min(final, maxScore)

	report := Report{
		Checks:        checks,
		Base:          base,
		Bonus:         bonus,
		Final:         final,
		FollowerCount: len(followers),
		Outcome:       Gate(final),
	}

	v.logger.Debug(ctx, "final weighted score", logger.Float64("score", final))
	if !report.Outcome.IsAccepted() {
		v.logger.Info(ctx, "record rejected", logger.Float64("score", final), logger.Float64("threshold", AcceptThreshold))
	}
	return report
}

// Gate rejects scores below AcceptThreshold and accepts the rest unchanged.
func Gate(final float64) Outcome {
	if final < AcceptThreshold {
		return Rejected()
	}
	return Accepted(final)
}
