// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/proofscore/internal/domain/record"
	"github.com/okian/proofscore/internal/domain/scoring"
)

// Submission is one record handed in for scoring.
type Submission struct {
	ID         string        // unique id; generated when the caller has none
	Record     record.Record // decoded record, possibly empty
	ReceivedAt time.Time
}

// NewSubmission wraps rec with a fresh random ID.
func NewSubmission(rec record.Record) Submission {
	return Submission{
		ID:         uuid.NewString(),
		Record:     rec,
		ReceivedAt: time.Now().UTC(),
	}
}

// Job is a queued submission plus where to deliver its evaluation.
type Job struct {
	Submission Submission
	Index      int               // position in the originating batch
	Reply      chan<- Evaluation // buffered by the producer; never nil
}

// Evaluation is the outcome of one Job.
type Evaluation struct {
	Index        int
	SubmissionID string
	Report       scoring.Report
}
