package question

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/cryptotrivia/trivia-service/pkg/http/errors"
)

// HTTPHandler exposes the sourcing pipeline as POST /v1/questions.
type HTTPHandler struct {
	pipeline *Pipeline
	logger   zerolog.Logger
}

func NewHTTPHandler(pipeline *Pipeline, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		pipeline: pipeline,
		logger:   logger.With().Str("component", "question_http").Logger(),
	}
}

type batchRequestPayload struct {
	Count      *int   `json:"count"`
	Difficulty string `json:"difficulty"`
}

// HandleSource validates the request envelope and delegates to the pipeline.
// Only the envelope can fail here; the pipeline itself never does.
func (h *HTTPHandler) HandleSource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w)
		return
	}
	defer r.Body.Close()

	var payload batchRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid json payload")
		return
	}

	req := BatchRequest{Count: defaultCount, Difficulty: DifficultyMedium}
	if payload.Count != nil {
		if *payload.Count < 1 {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "count must be >= 1", "count")
			return
		}
		req.Count = *payload.Count
	}
	if payload.Difficulty != "" {
		if !ValidDifficulty(payload.Difficulty) {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "difficulty must be easy, medium or hard", "difficulty")
			return
		}
		req.Difficulty = payload.Difficulty
	}

	res := h.pipeline.SourceQuestions(r.Context(), req)

	h.logger.Info().
		Int("requested", req.Count).
		Int("served", len(res.Questions)).
		Str("difficulty", req.Difficulty).
		Str("source", res.Source).
		Msg("batch served")

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		h.logger.Error().Err(err).Msg("encode response failed")
	}
}
