package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	service "github.com/okian/proofscore/internal/app"
	"github.com/okian/proofscore/internal/domain/model"
	"github.com/okian/proofscore/internal/domain/record"
	"github.com/okian/proofscore/internal/domain/scoring"
)

// maxBodyBytes caps the size of a /validate request body.
const maxBodyBytes = 4 << 20

// ValidateHandler scores posted records.
type ValidateHandler struct {
	evaluator Evaluator
}

// NewValidateHandler creates a new validate handler.
func NewValidateHandler(evaluator Evaluator) *ValidateHandler {
	return &ValidateHandler{evaluator: evaluator}
}

// validateResponse is the per-record result of POST /validate.
type validateResponse struct {
	SubmissionID string                `json:"submission_id"`
	Valid        bool                  `json:"valid"`
	Score        float64               `json:"score"`
	RawScore     float64               `json:"raw_score"`
	Checks       []scoring.CheckResult `json:"checks"`
}

func newValidateResponse(ev model.Evaluation) validateResponse { //nolint:gocritic // hugeParam
	checks := ev.Report.Checks
	if checks == nil {
		checks = []scoring.CheckResult{}
	}
	// A rejected record is reported as invalid with score 0.
	score, valid := ev.Report.Outcome.Value()
	return validateResponse{
		SubmissionID: ev.SubmissionID,
		Valid:        valid,
		Score:        score,
		RawScore:     ev.Report.Final,
		Checks:       checks,
	}
}

// HandleValidate handles POST /validate requests. The body is a single record
// or an array of records; the response mirrors that shape.
func (h *ValidateHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.validate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	recs, err := record.DecodeMany(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	evals, err := h.evaluator.EvaluateBatch(r.Context(), recs)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	default:
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}

	out := make([]validateResponse, len(evals))
	for i, ev := range evals {
		out[i] = newValidateResponse(ev)
	}

	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		writeJSON(w, http.StatusOK, out)
		return
	}
	writeJSON(w, http.StatusOK, out[0])
}
