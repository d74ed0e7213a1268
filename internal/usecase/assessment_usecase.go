package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/samber/lo"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

// DefaultAssessmentSize is the question count used when the caller does not
// ask for a specific one.
const DefaultAssessmentSize = 20

// AnswerSubmission is one entry of a batch answer payload.
type AnswerSubmission struct {
	QuestionID int64
	Answer     string
}

// QuestionBreakdown is the per-question slice of an assessment analysis.
type QuestionBreakdown struct {
	QuestionID int64
	WordText   string
	UserAnswer string
	Correct    string
	IsCorrect  bool
}

// AssessmentAnalysis summarizes a completed assessment.
type AssessmentAnalysis struct {
	AssessmentID int64
	Score        float64
	Accuracy     float64
	WeakWords    []string
	Questions    []QuestionBreakdown
	Suggestion   string
}

// AssessmentUsecase runs placement assessments over a book's words.
type AssessmentUsecase interface {
	Start(ctx context.Context, userID, bookID int64, questionCount int) (*entity.Assessment, error)
	SubmitAnswer(ctx context.Context, userID, assessmentID, questionID int64, answer string) (bool, error)
	SubmitAnswers(ctx context.Context, userID, assessmentID int64, batch []AnswerSubmission) (*entity.Assessment, error)
	Complete(ctx context.Context, userID, assessmentID int64) (*entity.Assessment, error)
	History(ctx context.Context, userID int64, page repository.Pagination) ([]entity.Assessment, int64, error)
	Analyze(ctx context.Context, userID, assessmentID int64) (*AssessmentAnalysis, error)
}

// NewAssessmentUsecase wires the repositories with default behaviour.
func NewAssessmentUsecase(assessments repository.AssessmentRepository, records repository.RecordRepository, words repository.WordRepository, books repository.BookRepository) AssessmentUsecase {
	return &assessmentUsecase{
		assessments: assessments,
		records:     records,
		words:       words,
		books:       books,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:       time.Now,
	}
}

type assessmentUsecase struct {
	assessments repository.AssessmentRepository
	records     repository.RecordRepository
	words       repository.WordRepository
	books       repository.BookRepository
	rng         *rand.Rand
	clock       func() time.Time
}

func (u *assessmentUsecase) Start(ctx context.Context, userID, bookID int64, questionCount int) (*entity.Assessment, error) {
	book, err := u.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, entity.ErrBookNotOwned
	}

	ids, err := u.books.ListWordIDs(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, entity.ErrEmptyBook
	}

	if questionCount <= 0 {
		questionCount = DefaultAssessmentSize
	}
	n := min(questionCount, len(ids))

	words, err := u.words.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := lo.SliceToMap(words, func(w entity.Word) (int64, entity.Word) { return w.ID, w })

	now := u.clock()
	assessment := &entity.Assessment{
		UserID:    userID,
		BookID:    bookID,
		Status:    entity.AssessmentInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	perm := u.rng.Perm(len(ids))
	for _, idx := range perm[:n] {
		word, ok := byID[ids[idx]]
		if !ok {
			continue
		}
		assessment.Questions = append(assessment.Questions, entity.AssessmentQuestion{
			WordID:    word.ID,
			WordText:  word.Text,
			Options:   u.buildOptions(word, words),
			Correct:   word.Definition,
			CreatedAt: now,
		})
	}
	return u.assessments.Create(ctx, assessment)
}

// buildOptions returns the correct definition plus up to three distinct
// distractors drawn from the rest of the book, shuffled.
func (u *assessmentUsecase) buildOptions(target entity.Word, pool []entity.Word) []string {
	options := []string{target.Definition}
	seen := map[string]bool{target.Definition: true}
	for _, idx := range u.rng.Perm(len(pool)) {
		if len(options) == 4 {
			break
		}
		def := pool[idx].Definition
		if pool[idx].ID == target.ID || def == "" || seen[def] {
			continue
		}
		options = append(options, def)
		seen[def] = true
	}
	u.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

func (u *assessmentUsecase) SubmitAnswer(ctx context.Context, userID, assessmentID, questionID int64, answer string) (bool, error) {
	assessment, err := u.owned(ctx, userID, assessmentID)
	if err != nil {
		return false, err
	}
	correct, err := assessment.SubmitAnswer(questionID, answer, u.clock())
	if err != nil {
		return false, err
	}
	if _, err := u.assessments.Update(ctx, assessment); err != nil {
		return false, err
	}
	return correct, nil
}

// SubmitAnswers validates the whole batch against the assessment before
// recording anything, then answers every question and completes the run.
func (u *assessmentUsecase) SubmitAnswers(ctx context.Context, userID, assessmentID int64, batch []AnswerSubmission) (*entity.Assessment, error) {
	assessment, err := u.owned(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment.Status == entity.AssessmentCompleted {
		return nil, entity.ErrAssessmentCompleted
	}

	known := lo.SliceToMap(assessment.Questions, func(q entity.AssessmentQuestion) (int64, bool) { return q.ID, true })
	for _, item := range batch {
		if item.QuestionID <= 0 {
			return nil, entity.ErrMalformedAnswers
		}
		if !known[item.QuestionID] {
			return nil, entity.ErrQuestionMismatch
		}
	}

	now := u.clock()
	for _, item := range batch {
		if _, err := assessment.SubmitAnswer(item.QuestionID, item.Answer, now); err != nil {
			return nil, err
		}
	}
	return u.complete(ctx, assessment)
}

func (u *assessmentUsecase) Complete(ctx context.Context, userID, assessmentID int64) (*entity.Assessment, error) {
	assessment, err := u.owned(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	return u.complete(ctx, assessment)
}

func (u *assessmentUsecase) complete(ctx context.Context, assessment *entity.Assessment) (*entity.Assessment, error) {
	now := u.clock()
	wrong, err := assessment.Complete(now)
	if err != nil {
		return nil, err
	}

	// Wrong answers feed back into the learning queue: mastered words fall
	// back to learning, unknown words get a fresh record.
	for _, wordID := range wrong {
		record, err := u.records.Find(ctx, assessment.UserID, assessment.BookID, wordID)
		switch {
		case err == nil:
			if record.Status == entity.StatusMastered {
				record.Demote(now)
				if _, err := u.records.Update(ctx, record); err != nil {
					return nil, err
				}
			}
		case errors.Is(err, entity.ErrNotFound):
			fresh, err := entity.NewLearningRecord(assessment.UserID, assessment.BookID, wordID, entity.StatusLearning, now)
			if err != nil {
				return nil, err
			}
			if _, err := u.records.Create(ctx, fresh); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	}
	return u.assessments.Update(ctx, assessment)
}

func (u *assessmentUsecase) History(ctx context.Context, userID int64, page repository.Pagination) ([]entity.Assessment, int64, error) {
	page.Normalize()
	return u.assessments.ListCompleted(ctx, userID, page)
}

func (u *assessmentUsecase) Analyze(ctx context.Context, userID, assessmentID int64) (*AssessmentAnalysis, error) {
	assessment, err := u.owned(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if len(assessment.Questions) == 0 {
		return nil, entity.ErrAssessmentEmpty
	}

	analysis := &AssessmentAnalysis{
		AssessmentID: assessment.ID,
		Score:        assessment.Score,
	}
	var correct int
	for _, q := range assessment.Questions {
		isCorrect := q.IsCorrect != nil && *q.IsCorrect
		if isCorrect {
			correct++
		} else {
			analysis.WeakWords = append(analysis.WeakWords, q.WordText)
		}
		var answer string
		if q.UserAnswer != nil {
			answer = *q.UserAnswer
		}
		analysis.Questions = append(analysis.Questions, QuestionBreakdown{
			QuestionID: q.ID,
			WordText:   q.WordText,
			UserAnswer: answer,
			Correct:    q.Correct,
			IsCorrect:  isCorrect,
		})
	}
	analysis.Accuracy = float64(correct) / float64(len(assessment.Questions))

	switch {
	case analysis.Accuracy < 0.6:
		analysis.Suggestion = "Revisit the basics of this book before moving on; schedule the weak words for daily review."
	case analysis.Accuracy < 0.8:
		analysis.Suggestion = "Solid progress; drill the weak words and retake the assessment in a few days."
	default:
		analysis.Suggestion = "Strong command of this book; consider moving to a harder level."
	}
	return analysis, nil
}

func (u *assessmentUsecase) owned(ctx context.Context, userID, id int64) (*entity.Assessment, error) {
	if id <= 0 {
		return nil, entity.ErrAssessmentNotFound
	}
	assessment, err := u.assessments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if assessment.UserID != userID {
		return nil, entity.ErrAssessmentNotOwned
	}
	return assessment, nil
}
