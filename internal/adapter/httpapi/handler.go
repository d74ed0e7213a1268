package httpapi

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/lexloop/lexloop/internal/usecase"
)

// Handler bundles the usecases behind the REST routes.
type Handler struct {
	users       usecase.UserUsecase
	vocabulary  usecase.VocabularyUsecase
	learning    usecase.LearningUsecase
	assessments usecase.AssessmentUsecase
	tests       usecase.TestUsecase
	progress    usecase.ProgressUsecase
	tokens      *TokenManager
	log         *logrus.Logger
}

func NewHandler(
	users usecase.UserUsecase,
	vocabulary usecase.VocabularyUsecase,
	learning usecase.LearningUsecase,
	assessments usecase.AssessmentUsecase,
	tests usecase.TestUsecase,
	progress usecase.ProgressUsecase,
	tokens *TokenManager,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		users:       users,
		vocabulary:  vocabulary,
		learning:    learning,
		assessments: assessments,
		tests:       tests,
		progress:    progress,
		tokens:      tokens,
		log:         log,
	}
}

// Routes builds the API mux. Everything except registration, login and
// refresh sits behind the bearer-token middleware.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/v1/auth/register", h.register)
	mux.HandleFunc("POST /api/v1/auth/login", h.login)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.refresh)

	mux.HandleFunc("GET /api/v1/users/me", h.requireAuth(h.profile))
	mux.HandleFunc("PUT /api/v1/users/me", h.requireAuth(h.updateProfile))
	mux.HandleFunc("PUT /api/v1/users/me/password", h.requireAuth(h.changePassword))

	mux.HandleFunc("POST /api/v1/words", h.requireAuth(h.createWord))
	mux.HandleFunc("GET /api/v1/words", h.requireAuth(h.listWords))
	mux.HandleFunc("GET /api/v1/words/{id}", h.requireAuth(h.getWord))
	mux.HandleFunc("PUT /api/v1/words/{id}", h.requireAuth(h.updateWord))
	mux.HandleFunc("DELETE /api/v1/words/{id}", h.requireAuth(h.deleteWord))

	mux.HandleFunc("POST /api/v1/books", h.requireAuth(h.createBook))
	mux.HandleFunc("GET /api/v1/books", h.requireAuth(h.listBooks))
	mux.HandleFunc("GET /api/v1/books/{id}", h.requireAuth(h.getBook))
	mux.HandleFunc("PUT /api/v1/books/{id}", h.requireAuth(h.updateBook))
	mux.HandleFunc("DELETE /api/v1/books/{id}", h.requireAuth(h.deleteBook))
	mux.HandleFunc("POST /api/v1/books/{id}/words", h.requireAuth(h.addBookWords))
	mux.HandleFunc("GET /api/v1/books/{id}/words", h.requireAuth(h.listBookWords))
	mux.HandleFunc("DELETE /api/v1/books/{id}/words/{wordID}", h.requireAuth(h.removeBookWord))
	mux.HandleFunc("PUT /api/v1/books/{id}/words/{wordID}/position", h.requireAuth(h.reorderBookWord))
	mux.HandleFunc("GET /api/v1/books/{id}/progress", h.requireAuth(h.bookProgress))
	mux.HandleFunc("GET /api/v1/books/{id}/recommend", h.requireAuth(h.recommendWords))
	mux.HandleFunc("POST /api/v1/books/{id}/goal", h.requireAuth(h.createGoal))
	mux.HandleFunc("GET /api/v1/books/{id}/goal", h.requireAuth(h.getGoal))
	mux.HandleFunc("POST /api/v1/books/{id}/plan", h.requireAuth(h.createLearningPlan))
	mux.HandleFunc("PUT /api/v1/books/{id}/plan", h.requireAuth(h.updateLearningPlan))
	mux.HandleFunc("GET /api/v1/books/{id}/plan", h.requireAuth(h.getLearningPlan))

	mux.HandleFunc("POST /api/v1/records", h.requireAuth(h.createRecord))
	mux.HandleFunc("GET /api/v1/records", h.requireAuth(h.listRecords))
	mux.HandleFunc("GET /api/v1/records/{id}", h.requireAuth(h.getRecord))
	mux.HandleFunc("POST /api/v1/records/{id}/session/start", h.requireAuth(h.startSession))
	mux.HandleFunc("POST /api/v1/records/{id}/session/end", h.requireAuth(h.endSession))
	mux.HandleFunc("POST /api/v1/records/{id}/confidence", h.requireAuth(h.rateConfidence))

	mux.HandleFunc("POST /api/v1/reviews", h.requireAuth(h.submitReview))
	mux.HandleFunc("POST /api/v1/reviews/batch", h.requireAuth(h.submitReviewBatch))
	mux.HandleFunc("GET /api/v1/reviews/due", h.requireAuth(h.reviewDue))

	mux.HandleFunc("POST /api/v1/review-plans/generate", h.requireAuth(h.generatePlans))
	mux.HandleFunc("GET /api/v1/review-plans", h.requireAuth(h.listPlans))
	mux.HandleFunc("POST /api/v1/review-plans/{id}/complete", h.requireAuth(h.completePlan))
	mux.HandleFunc("POST /api/v1/review-plans/{id}/skip", h.requireAuth(h.skipPlan))

	mux.HandleFunc("GET /api/v1/statistics/learning", h.requireAuth(h.learningStatistics))
	mux.HandleFunc("GET /api/v1/statistics/tests", h.requireAuth(h.testStatistics))
	mux.HandleFunc("GET /api/v1/schedule/today", h.requireAuth(h.dailySchedule))
	mux.HandleFunc("GET /api/v1/streak", h.requireAuth(h.streak))

	mux.HandleFunc("POST /api/v1/assessments", h.requireAuth(h.startAssessment))
	mux.HandleFunc("GET /api/v1/assessments", h.requireAuth(h.assessmentHistory))
	mux.HandleFunc("POST /api/v1/assessments/{id}/answers", h.requireAuth(h.submitAssessmentAnswer))
	mux.HandleFunc("POST /api/v1/assessments/{id}/submit", h.requireAuth(h.submitAssessmentBatch))
	mux.HandleFunc("POST /api/v1/assessments/{id}/complete", h.requireAuth(h.completeAssessment))
	mux.HandleFunc("GET /api/v1/assessments/{id}/analysis", h.requireAuth(h.analyzeAssessment))

	mux.HandleFunc("POST /api/v1/tests/generate", h.requireAuth(h.generateTest))
	mux.HandleFunc("POST /api/v1/tests", h.requireAuth(h.createTest))
	mux.HandleFunc("GET /api/v1/tests", h.requireAuth(h.listTests))
	mux.HandleFunc("GET /api/v1/tests/{id}", h.requireAuth(h.getTest))
	mux.HandleFunc("PUT /api/v1/tests/{id}", h.requireAuth(h.updateTest))
	mux.HandleFunc("DELETE /api/v1/tests/{id}", h.requireAuth(h.deleteTest))
	mux.HandleFunc("POST /api/v1/tests/{id}/questions", h.requireAuth(h.addTestQuestion))
	mux.HandleFunc("PUT /api/v1/tests/{id}/questions/{questionID}", h.requireAuth(h.updateTestQuestion))
	mux.HandleFunc("DELETE /api/v1/tests/{id}/questions/{questionID}", h.requireAuth(h.deleteTestQuestion))
	mux.HandleFunc("POST /api/v1/tests/{id}/start", h.requireAuth(h.startTest))
	mux.HandleFunc("POST /api/v1/tests/{id}/submit", h.requireAuth(h.submitTest))
	mux.HandleFunc("GET /api/v1/tests/{id}/records", h.requireAuth(h.testRecords))
	mux.HandleFunc("GET /api/v1/test-records", h.requireAuth(h.allTestRecords))

	return mux
}
