package proof

import (
	"github.com/okian/proofscore/internal/domain/scoring"
)

// Fixed dimensions; nothing compares records against each other.
const (
	authenticity = 1.0
	uniqueness   = 1.0
)

// Response is the proof envelope written to results.json.
type Response struct {
	DLPID        int        `json:"dlp_id"`
	Valid        bool       `json:"valid"`
	Score        float64    `json:"score"`
	Authenticity float64    `json:"authenticity"`
	Ownership    float64    `json:"ownership"`
	Uniqueness   float64    `json:"uniqueness"`
	Quality      float64    `json:"quality"`
	Attributes   Attributes `json:"attributes"`
	Metadata     Metadata   `json:"metadata"`
}

// Attributes exposes how the score was reached.
type Attributes struct {
	Source        string                `json:"source,omitempty"`
	Checks        []scoring.CheckResult `json:"checks"`
	RawScore      float64               `json:"raw_score"`
	FollowerCount int                   `json:"follower_count"`
}

// Metadata identifies the data liquidity pool the proof is for.
type Metadata struct {
	DLPID int `json:"dlp_id"`
}

// newResponse maps a report onto the envelope. A rejected record becomes
// valid=false with a zero score.
func newResponse(dlpID int, source string, report scoring.Report) Response { //nolint:gocritic // hugeParam
	score, ok := report.Outcome.Value()
	if !ok {
		score = 0
	}

	checks := report.Checks
	if checks == nil {
		checks = []scoring.CheckResult{}
	}

	return Response{
		DLPID:        dlpID,
		Valid:        ok,
		Score:        score,
		Authenticity: authenticity,
		Uniqueness:   uniqueness,
		Quality:      score,
		Attributes: Attributes{
			Source:        source,
			Checks:        checks,
			RawScore:      report.Final,
			FollowerCount: report.FollowerCount,
		},
		Metadata: Metadata{DLPID: dlpID},
	}
}
