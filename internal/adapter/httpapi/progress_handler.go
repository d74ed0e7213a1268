package httpapi

import (
	"net/http"
	"time"

	"github.com/lexloop/lexloop/internal/entity"
)

func (h *Handler) recommendWords(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	words, err := h.progress.RecommendWords(r.Context(), userID(r.Context()), bookID, queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, toWordDTOs(words), int64(len(words)))
}

func (h *Handler) dailySchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.progress.DailySchedule(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleDTO{
		ReviewDue:    schedule.ReviewDue,
		LearnedToday: schedule.LearnedToday,
		DailyTarget:  schedule.DailyTarget,
		Remaining:    schedule.Remaining,
	})
}

func (h *Handler) bookProgress(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	progress, err := h.progress.BookProgress(r.Context(), userID(r.Context()), bookID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookProgressDTO{
		BookID:          progress.BookID,
		TotalWords:      progress.TotalWords,
		NewWords:        progress.NewWords,
		LearningWords:   progress.LearningWords,
		ReviewingWords:  progress.ReviewingWords,
		MasteredWords:   progress.MasteredWords,
		StudyTime:       progress.StudyTime,
		LearnedToday:    progress.LearnedToday,
		ConsecutiveDays: progress.ConsecutiveDays,
		Completion:      progress.Completion,
	})
}

func (h *Handler) streak(w http.ResponseWriter, r *http.Request) {
	days, err := h.progress.ConsecutiveDays(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"consecutive_days": days})
}

type goalRequest struct {
	DailyWords int    `json:"daily_words"`
	TargetDate string `json:"target_date"`
}

func (h *Handler) createGoal(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req goalRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var target time.Time
	if req.TargetDate != "" {
		target, err = time.Parse("2006-01-02", req.TargetDate)
		if err != nil {
			writeError(w, entity.ErrInvalidArgument)
			return
		}
	}
	goal, err := h.progress.CreateGoal(r.Context(), userID(r.Context()), bookID, req.DailyWords, target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalDTO(goal))
}

func (h *Handler) getGoal(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	goal, err := h.progress.GetGoal(r.Context(), userID(r.Context()), bookID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDTO(goal))
}

type learningPlanRequest struct {
	EndDate string `json:"end_date"`
}

func (req learningPlanRequest) parse() (time.Time, error) {
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return time.Time{}, entity.ErrInvalidArgument
	}
	return end, nil
}

func (h *Handler) createLearningPlan(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req learningPlanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	end, err := req.parse()
	if err != nil {
		writeError(w, err)
		return
	}
	plan, err := h.progress.CreatePlan(r.Context(), userID(r.Context()), bookID, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLearningPlanDTO(plan))
}

func (h *Handler) updateLearningPlan(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req learningPlanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	end, err := req.parse()
	if err != nil {
		writeError(w, err)
		return
	}
	plan, err := h.progress.UpdatePlan(r.Context(), userID(r.Context()), bookID, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLearningPlanDTO(plan))
}

func (h *Handler) getLearningPlan(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	plan, err := h.progress.GetPlan(r.Context(), userID(r.Context()), bookID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLearningPlanDTO(plan))
}
