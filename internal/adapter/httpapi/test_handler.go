package httpapi

import (
	"net/http"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
	"github.com/lexloop/lexloop/internal/usecase"
)

type generateTestRequest struct {
	BookID        int64  `json:"book_id"`
	QuestionCount int    `json:"question_count"`
	Type          string `json:"type"`
}

func (h *Handler) generateTest(w http.ResponseWriter, r *http.Request) {
	var req generateTestRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	test, err := h.tests.Generate(r.Context(), userID(r.Context()),
		req.BookID, req.QuestionCount, entity.TestType(req.Type))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTestDTO(test, false))
}

type testRequest struct {
	BookID         int64   `json:"book_id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Duration       int     `json:"duration"`
	TotalQuestions int     `json:"total_questions"`
	PassScore      float64 `json:"pass_score"`
}

func (h *Handler) createTest(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	test, err := h.tests.Create(r.Context(), &entity.Test{
		UserID:         userID(r.Context()),
		BookID:         req.BookID,
		Name:           req.Name,
		Type:           entity.TestType(req.Type),
		Duration:       req.Duration,
		TotalQuestions: req.TotalQuestions,
		PassScore:      req.PassScore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTestDTO(test, true))
}

func (h *Handler) listTests(w http.ResponseWriter, r *http.Request) {
	query := &repository.ListTestQuery{
		Pagination: pagination(r),
		UserID:     userID(r.Context()),
		BookID:     queryInt64(r, "book_id"),
	}
	tests, total, err := h.tests.List(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]testDTO, 0, len(tests))
	for i := range tests {
		items = append(items, toTestDTO(&tests[i], false))
	}
	writeList(w, items, total)
}

func (h *Handler) getTest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	test, err := h.tests.Get(r.Context(), userID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTestDTO(test, true))
}

// updateTestRequest uses pointers so that omitted fields stay untouched while
// explicit zero values still apply.
type updateTestRequest struct {
	Name           *string  `json:"name"`
	Type           *string  `json:"type"`
	Duration       *int     `json:"duration"`
	TotalQuestions *int     `json:"total_questions"`
	PassScore      *float64 `json:"pass_score"`
}

func (h *Handler) updateTest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateTestRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	upd := usecase.TestUpdate{
		Name:           req.Name,
		Duration:       req.Duration,
		TotalQuestions: req.TotalQuestions,
		PassScore:      req.PassScore,
	}
	if req.Type != nil {
		testType := entity.TestType(*req.Type)
		upd.Type = &testType
	}
	test, err := h.tests.Update(r.Context(), userID(r.Context()), id, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTestDTO(test, true))
}

func (h *Handler) deleteTest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.tests.Delete(r.Context(), userID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type testQuestionRequest struct {
	WordID  int64    `json:"word_id"`
	Type    string   `json:"type"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Correct string   `json:"correct"`
}

func (h *Handler) addTestQuestion(w http.ResponseWriter, r *http.Request) {
	testID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req testQuestionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	question, err := h.tests.AddQuestion(r.Context(), userID(r.Context()), &entity.TestQuestion{
		TestID:  testID,
		WordID:  req.WordID,
		Type:    entity.TestType(req.Type),
		Prompt:  req.Prompt,
		Options: req.Options,
		Correct: req.Correct,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTestQuestionDTO(*question, true))
}

func (h *Handler) updateTestQuestion(w http.ResponseWriter, r *http.Request) {
	testID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	questionID, err := pathID(r, "questionID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req testQuestionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	question, err := h.tests.UpdateQuestion(r.Context(), userID(r.Context()), &entity.TestQuestion{
		ID:      questionID,
		TestID:  testID,
		WordID:  req.WordID,
		Type:    entity.TestType(req.Type),
		Prompt:  req.Prompt,
		Options: req.Options,
		Correct: req.Correct,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTestQuestionDTO(*question, true))
}

func (h *Handler) deleteTestQuestion(w http.ResponseWriter, r *http.Request) {
	testID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	questionID, err := pathID(r, "questionID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.tests.DeleteQuestion(r.Context(), userID(r.Context()), testID, questionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// startTest stamps the start time and returns the questions without their
// answers.
func (h *Handler) startTest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	test, err := h.tests.Start(r.Context(), userID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTestDTO(test, false))
}

type submitTestRequest struct {
	Answers []struct {
		QuestionID int64  `json:"question_id"`
		Answer     string `json:"answer"`
	} `json:"answers"`
}

func (h *Handler) submitTest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req submitTestRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	answers := make([]entity.TestAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, entity.TestAnswer{QuestionID: a.QuestionID, Answer: a.Answer})
	}
	record, err := h.tests.Submit(r.Context(), userID(r.Context()), id, answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTestRecordDTO(*record))
}

func (h *Handler) testRecords(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	records, total, err := h.tests.Records(r.Context(), userID(r.Context()), id, pagination(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, toTestRecordDTOs(records), total)
}

func (h *Handler) allTestRecords(w http.ResponseWriter, r *http.Request) {
	records, total, err := h.tests.Records(r.Context(), userID(r.Context()), 0, pagination(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, toTestRecordDTOs(records), total)
}

func (h *Handler) testStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tests.Statistics(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, testStatisticsDTO{
		TotalTests:    stats.TotalTests,
		TotalAttempts: stats.TotalAttempts,
		AverageScore:  stats.AverageScore,
		PassRate:      stats.PassRate,
		CorrectRate:   stats.CorrectRate,
	})
}
