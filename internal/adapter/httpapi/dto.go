package httpapi

import (
	"time"

	"github.com/samber/lo"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/usecase"
)

type userDTO struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	AvatarURL string     `json:"avatar_url"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toUserDTO(u *entity.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		AvatarURL: u.AvatarURL,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

type wordDTO struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	Phonetic   string    `json:"phonetic"`
	AudioURL   string    `json:"audio_url"`
	Definition string    `json:"definition"`
	Example    string    `json:"example"`
	Difficulty float64   `json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toWordDTO(w entity.Word) wordDTO {
	return wordDTO{
		ID:         w.ID,
		Text:       w.Text,
		Phonetic:   w.Phonetic,
		AudioURL:   w.AudioURL,
		Definition: w.Definition,
		Example:    w.Example,
		Difficulty: w.Difficulty,
		CreatedAt:  w.CreatedAt,
	}
}

func toWordDTOs(words []entity.Word) []wordDTO {
	return lo.Map(words, func(w entity.Word, _ int) wordDTO { return toWordDTO(w) })
}

type bookDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Level       string    `json:"level"`
	Tags        []string  `json:"tags"`
	TotalWords  int       `json:"total_words"`
	CreatedAt   time.Time `json:"created_at"`
}

func toBookDTO(b entity.VocabularyBook) bookDTO {
	return bookDTO{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Level:       string(b.Level),
		Tags:        b.Tags,
		TotalWords:  b.TotalWords,
		CreatedAt:   b.CreatedAt,
	}
}

type recordDTO struct {
	ID             int64      `json:"id"`
	BookID         int64      `json:"book_id"`
	WordID         int64      `json:"word_id"`
	Status         string     `json:"status"`
	ReviewCount    int        `json:"review_count"`
	MasteryLevel   float64    `json:"mastery_level"`
	StudyTime      float64    `json:"study_time"`
	LastReviewTime *time.Time `json:"last_review_time,omitempty"`
	NextReviewTime *time.Time `json:"next_review_time,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toRecordDTO(r entity.LearningRecord) recordDTO {
	return recordDTO{
		ID:             r.ID,
		BookID:         r.BookID,
		WordID:         r.WordID,
		Status:         string(r.Status),
		ReviewCount:    r.ReviewCount,
		MasteryLevel:   r.MasteryLevel,
		StudyTime:      r.StudyTime,
		LastReviewTime: r.LastReviewTime,
		NextReviewTime: r.NextReviewTime,
		UpdatedAt:      r.UpdatedAt,
	}
}

func toRecordDTOs(records []entity.LearningRecord) []recordDTO {
	return lo.Map(records, func(r entity.LearningRecord, _ int) recordDTO { return toRecordDTO(r) })
}

type planDTO struct {
	ID            int64      `json:"id"`
	BookID        int64      `json:"book_id"`
	WordID        int64      `json:"word_id"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Status        string     `json:"status"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func toPlanDTO(p entity.ReviewPlan) planDTO {
	return planDTO{
		ID:            p.ID,
		BookID:        p.BookID,
		WordID:        p.WordID,
		ScheduledTime: p.ScheduledTime,
		Status:        string(p.Status),
		CompletedAt:   p.CompletedAt,
	}
}

func toPlanDTOs(plans []entity.ReviewPlan) []planDTO {
	return lo.Map(plans, func(p entity.ReviewPlan, _ int) planDTO { return toPlanDTO(p) })
}

type goalDTO struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"book_id"`
	DailyWords int       `json:"daily_words"`
	TargetDate time.Time `json:"target_date"`
	Status     string    `json:"status"`
}

func toGoalDTO(g *entity.LearningGoal) goalDTO {
	return goalDTO{
		ID:         g.ID,
		BookID:     g.BookID,
		DailyWords: g.DailyWords,
		TargetDate: g.TargetDate,
		Status:     string(g.Status),
	}
}

type learningPlanDTO struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"book_id"`
	DailyWords int       `json:"daily_words"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Status     string    `json:"status"`
}

func toLearningPlanDTO(p *entity.LearningPlan) learningPlanDTO {
	return learningPlanDTO{
		ID:         p.ID,
		BookID:     p.BookID,
		DailyWords: p.DailyWords,
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
		Status:     string(p.Status),
	}
}

// assessmentQuestionDTO never carries the correct answer; grading happens
// server side only.
type assessmentQuestionDTO struct {
	ID        int64    `json:"id"`
	WordID    int64    `json:"word_id"`
	WordText  string   `json:"word_text"`
	Options   []string `json:"options"`
	Answered  bool     `json:"answered"`
	IsCorrect *bool    `json:"is_correct,omitempty"`
}

type assessmentDTO struct {
	ID          int64                   `json:"id"`
	BookID      int64                   `json:"book_id"`
	Status      string                  `json:"status"`
	Score       float64                 `json:"score"`
	Questions   []assessmentQuestionDTO `json:"questions,omitempty"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

func toAssessmentDTO(a *entity.Assessment) assessmentDTO {
	dto := assessmentDTO{
		ID:          a.ID,
		BookID:      a.BookID,
		Status:      string(a.Status),
		Score:       a.Score,
		CompletedAt: a.CompletedAt,
		CreatedAt:   a.CreatedAt,
	}
	for _, q := range a.Questions {
		item := assessmentQuestionDTO{
			ID:       q.ID,
			WordID:   q.WordID,
			WordText: q.WordText,
			Options:  q.Options,
			Answered: q.UserAnswer != nil,
		}
		if a.Status == entity.AssessmentCompleted {
			item.IsCorrect = q.IsCorrect
		}
		dto.Questions = append(dto.Questions, item)
	}
	return dto
}

func toAssessmentDTOs(items []entity.Assessment) []assessmentDTO {
	return lo.Map(items, func(a entity.Assessment, _ int) assessmentDTO { return toAssessmentDTO(&a) })
}

type analysisDTO struct {
	AssessmentID int64               `json:"assessment_id"`
	Score        float64             `json:"score"`
	Accuracy     float64             `json:"accuracy"`
	WeakWords    []string            `json:"weak_words"`
	Questions    []questionResultDTO `json:"questions"`
	Suggestion   string              `json:"suggestion"`
}

type questionResultDTO struct {
	QuestionID int64  `json:"question_id"`
	WordText   string `json:"word_text"`
	UserAnswer string `json:"user_answer"`
	Correct    string `json:"correct"`
	IsCorrect  bool   `json:"is_correct"`
}

func toAnalysisDTO(a *usecase.AssessmentAnalysis) analysisDTO {
	dto := analysisDTO{
		AssessmentID: a.AssessmentID,
		Score:        a.Score,
		Accuracy:     a.Accuracy,
		WeakWords:    a.WeakWords,
		Suggestion:   a.Suggestion,
	}
	for _, q := range a.Questions {
		dto.Questions = append(dto.Questions, questionResultDTO{
			QuestionID: q.QuestionID,
			WordText:   q.WordText,
			UserAnswer: q.UserAnswer,
			Correct:    q.Correct,
			IsCorrect:  q.IsCorrect,
		})
	}
	return dto
}

type testQuestionDTO struct {
	ID      int64    `json:"id"`
	WordID  int64    `json:"word_id"`
	Type    string   `json:"type"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Correct string   `json:"correct,omitempty"`
}

func toTestQuestionDTO(q entity.TestQuestion, withAnswer bool) testQuestionDTO {
	dto := testQuestionDTO{
		ID:      q.ID,
		WordID:  q.WordID,
		Type:    string(q.Type),
		Prompt:  q.Prompt,
		Options: q.Options,
	}
	if withAnswer {
		dto.Correct = q.Correct
	}
	return dto
}

type testDTO struct {
	ID             int64             `json:"id"`
	BookID         int64             `json:"book_id,omitempty"`
	Name           string            `json:"name"`
	Type           string            `json:"type"`
	Duration       int               `json:"duration"`
	TotalQuestions int               `json:"total_questions"`
	PassScore      float64           `json:"pass_score"`
	StartTime      *time.Time        `json:"start_time,omitempty"`
	Questions      []testQuestionDTO `json:"questions,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// toTestDTO serializes a test; withAnswers is set only on owner-facing
// management responses, never when a test is being taken.
func toTestDTO(t *entity.Test, withAnswers bool) testDTO {
	dto := testDTO{
		ID:             t.ID,
		BookID:         t.BookID,
		Name:           t.Name,
		Type:           string(t.Type),
		Duration:       t.Duration,
		TotalQuestions: t.TotalQuestions,
		PassScore:      t.PassScore,
		StartTime:      t.StartTime,
		CreatedAt:      t.CreatedAt,
	}
	for _, q := range t.Questions {
		dto.Questions = append(dto.Questions, toTestQuestionDTO(q, withAnswers))
	}
	return dto
}

type testAnswerDTO struct {
	QuestionID int64  `json:"question_id"`
	Answer     string `json:"answer"`
	IsCorrect  bool   `json:"is_correct"`
}

type testRecordDTO struct {
	ID           int64           `json:"id"`
	TestID       int64           `json:"test_id"`
	Score        float64         `json:"score"`
	CorrectCount int             `json:"correct_count"`
	TotalCount   int             `json:"total_count"`
	IsPassed     bool            `json:"is_passed"`
	TimeSpent    int             `json:"time_spent"`
	Answers      []testAnswerDTO `json:"answers,omitempty"`
	CompletedAt  time.Time       `json:"completed_at"`
}

func toTestRecordDTO(r entity.TestRecord) testRecordDTO {
	dto := testRecordDTO{
		ID:           r.ID,
		TestID:       r.TestID,
		Score:        r.Score,
		CorrectCount: r.CorrectCount,
		TotalCount:   r.TotalCount,
		IsPassed:     r.IsPassed,
		TimeSpent:    r.TimeSpent,
		CompletedAt:  r.CompletedAt,
	}
	for _, a := range r.Answers {
		dto.Answers = append(dto.Answers, testAnswerDTO{
			QuestionID: a.QuestionID,
			Answer:     a.Answer,
			IsCorrect:  a.IsCorrect,
		})
	}
	return dto
}

func toTestRecordDTOs(records []entity.TestRecord) []testRecordDTO {
	return lo.Map(records, func(r entity.TestRecord, _ int) testRecordDTO { return toTestRecordDTO(r) })
}

type statisticsDTO struct {
	Total          int     `json:"total"`
	Learning       int     `json:"learning"`
	Reviewing      int     `json:"reviewing"`
	Mastered       int     `json:"mastered"`
	AverageMastery float64 `json:"average_mastery"`
}

type scheduleDTO struct {
	ReviewDue    int `json:"review_due"`
	LearnedToday int `json:"learned_today"`
	DailyTarget  int `json:"daily_target"`
	Remaining    int `json:"remaining"`
}

type bookProgressDTO struct {
	BookID          int64   `json:"book_id"`
	TotalWords      int     `json:"total_words"`
	NewWords        int     `json:"new_words"`
	LearningWords   int     `json:"learning_words"`
	ReviewingWords  int     `json:"reviewing_words"`
	MasteredWords   int     `json:"mastered_words"`
	StudyTime       float64 `json:"study_time"`
	LearnedToday    int     `json:"learned_today"`
	ConsecutiveDays int     `json:"consecutive_days"`
	Completion      float64 `json:"completion"`
}

type testStatisticsDTO struct {
	TotalTests    int     `json:"total_tests"`
	TotalAttempts int     `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
	PassRate      float64 `json:"pass_rate"`
	CorrectRate   float64 `json:"correct_rate"`
}
