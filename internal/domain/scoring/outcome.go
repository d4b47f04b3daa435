package scoring

import "strconv"

// InvalidScore is the legacy float signal for a rejected record. Callers that
// hold an Outcome should branch on IsAccepted instead of the sign of a float.
const InvalidScore = -1.0

// Outcome is the result of the acceptance gate: either Accepted with a score
// in [0,1] or Rejected. The zero value is Rejected.
type Outcome struct {
	accepted bool
	score    float64
}

// Accepted returns an accepting outcome carrying score.
func Accepted(score float64) Outcome {
	return Outcome{accepted: true, score: score}
}

// Rejected returns the rejecting outcome.
func Rejected() Outcome {
	return Outcome{}
}

// IsAccepted reports whether the record passed the gate.
func (o Outcome) IsAccepted() bool { return o.accepted }

// Value returns the accepted score and true, or 0 and false when rejected.
func (o Outcome) Value() (float64, bool) {
	if !o.accepted {
		return 0, false
	}
	return o.score, true
}

// Score flattens the outcome to the legacy float: the score when accepted,
// InvalidScore when rejected.
func (o Outcome) Score() float64 {
	if !o.accepted {
		return InvalidScore
	}
	return o.score
}

func (o Outcome) String() string {
	if !o.accepted {
		return "rejected"
	}
	return "accepted(" + strconv.FormatFloat(o.score, 'f', 3, 64) + ")"
}
