package httpapi

import (
	"net/http"

	"github.com/lexloop/lexloop/internal/usecase"
)

type startAssessmentRequest struct {
	BookID        int64 `json:"book_id"`
	QuestionCount int   `json:"question_count"`
}

func (h *Handler) startAssessment(w http.ResponseWriter, r *http.Request) {
	var req startAssessmentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	assessment, err := h.assessments.Start(r.Context(), userID(r.Context()), req.BookID, req.QuestionCount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssessmentDTO(assessment))
}

type assessmentAnswerRequest struct {
	QuestionID int64  `json:"question_id"`
	Answer     string `json:"answer"`
}

func (h *Handler) submitAssessmentAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req assessmentAnswerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	correct, err := h.assessments.SubmitAnswer(r.Context(), userID(r.Context()), id, req.QuestionID, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_correct": correct})
}

type assessmentBatchRequest struct {
	Answers []assessmentAnswerRequest `json:"answers"`
}

// submitAssessmentBatch submits a full answer sheet and completes the
// assessment in one call.
func (h *Handler) submitAssessmentBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req assessmentBatchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	batch := make([]usecase.AnswerSubmission, 0, len(req.Answers))
	for _, a := range req.Answers {
		batch = append(batch, usecase.AnswerSubmission{QuestionID: a.QuestionID, Answer: a.Answer})
	}
	assessment, err := h.assessments.SubmitAnswers(r.Context(), userID(r.Context()), id, batch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssessmentDTO(assessment))
}

func (h *Handler) completeAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	assessment, err := h.assessments.Complete(r.Context(), userID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssessmentDTO(assessment))
}

func (h *Handler) assessmentHistory(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.assessments.History(r.Context(), userID(r.Context()), pagination(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, toAssessmentDTOs(items), total)
}

func (h *Handler) analyzeAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	analysis, err := h.assessments.Analyze(r.Context(), userID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnalysisDTO(analysis))
}
