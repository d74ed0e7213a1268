package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
	"github.com/lexloop/lexloop/internal/usecase"
)

type createRecordRequest struct {
	BookID int64  `json:"book_id"`
	WordID int64  `json:"word_id"`
	Status string `json:"status"`
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	record, err := h.learning.CreateRecord(r.Context(), userID(r.Context()),
		req.BookID, req.WordID, entity.RecordStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(*record))
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	query := &repository.ListRecordQuery{
		Pagination: pagination(r),
		UserID:     userID(r.Context()),
		BookID:     queryInt64(r, "book_id"),
		Status:     entity.RecordStatus(r.URL.Query().Get("status")),
	}
	records, total, err := h.learning.ListRecords(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, toRecordDTOs(records), total)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := h.learning.GetRecord(r.Context(), userID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(*record))
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	h.sessionOp(w, r, h.learning.StartSession)
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	h.sessionOp(w, r, h.learning.EndSession)
}

func (h *Handler) sessionOp(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, userID, recordID int64) (*entity.LearningRecord, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := op(r.Context(), userID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(*record))
}

type reviewRequest struct {
	BookID  int64  `json:"book_id"`
	WordID  int64  `json:"word_id"`
	Outcome string `json:"outcome"`
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	outcome, err := entity.ParseReviewOutcome(req.Outcome)
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := h.learning.SubmitReview(r.Context(), userID(r.Context()), req.BookID, req.WordID, outcome)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(*record))
}

type reviewBatchRequest struct {
	BookID  int64 `json:"book_id"`
	Results []struct {
		WordID  int64  `json:"word_id"`
		Outcome string `json:"outcome"`
	} `json:"results"`
}

func (h *Handler) submitReviewBatch(w http.ResponseWriter, r *http.Request) {
	var req reviewBatchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	results := make([]usecase.ReviewResult, 0, len(req.Results))
	for _, item := range req.Results {
		outcome, err := entity.ParseReviewOutcome(item.Outcome)
		if err != nil {
			writeError(w, err)
			return
		}
		results = append(results, usecase.ReviewResult{WordID: item.WordID, Outcome: outcome})
	}
	records, err := h.learning.SubmitReviewBatch(r.Context(), userID(r.Context()), req.BookID, results)
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, toRecordDTOs(records), int64(len(records)))
}

func (h *Handler) reviewDue(w http.ResponseWriter, r *http.Request) {
	records, err := h.progress.ReviewDueWords(r.Context(), userID(r.Context()), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, toRecordDTOs(records), int64(len(records)))
}

func (h *Handler) rateConfidence(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Level int `json:"level"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	record, err := h.learning.RateConfidence(r.Context(), userID(r.Context()), id, req.Level)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(*record))
}

func (h *Handler) generatePlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.learning.GeneratePlans(r.Context(), userID(r.Context()), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, toPlanDTOs(plans), int64(len(plans)))
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	query := &repository.ListPlanQuery{
		Pagination: pagination(r),
		UserID:     userID(r.Context()),
		Status:     entity.PlanStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, entity.ErrInvalidArgument)
			return
		}
		query.Date = &date
	}
	plans, total, err := h.learning.ListPlans(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, toPlanDTOs(plans), total)
}

func (h *Handler) completePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	plan, err := h.learning.CompletePlan(r.Context(), userID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(*plan))
}

func (h *Handler) skipPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	plan, err := h.learning.SkipPlan(r.Context(), userID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(*plan))
}

func (h *Handler) learningStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.learning.Statistics(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statisticsDTO{
		Total:          stats.Total,
		Learning:       stats.Learning,
		Reviewing:      stats.Reviewing,
		Mastered:       stats.Mastered,
		AverageMastery: stats.AverageMastery,
	})
}
