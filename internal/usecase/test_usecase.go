package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/samber/lo"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

// TestStatistics aggregates a user's attempts across all tests.
type TestStatistics struct {
	TotalTests    int
	TotalAttempts int
	AverageScore  float64
	PassRate      float64
	CorrectRate   float64
}

// TestUpdate carries a partial update of a test's settings. Nil fields are
// left unchanged, so zero values like a passing score of 0 stay expressible.
type TestUpdate struct {
	Name           *string
	Type           *entity.TestType
	Duration       *int
	TotalQuestions *int
	PassScore      *float64
}

// TestUsecase manages quizzes: generation from a book, manual authoring,
// taking and grading.
type TestUsecase interface {
	Generate(ctx context.Context, userID, bookID int64, questionCount int, testType entity.TestType) (*entity.Test, error)
	Create(ctx context.Context, test *entity.Test) (*entity.Test, error)
	Update(ctx context.Context, userID, testID int64, upd TestUpdate) (*entity.Test, error)
	Get(ctx context.Context, userID, testID int64) (*entity.Test, error)
	List(ctx context.Context, query *repository.ListTestQuery) ([]entity.Test, int64, error)
	Delete(ctx context.Context, userID, testID int64) error

	AddQuestion(ctx context.Context, userID int64, question *entity.TestQuestion) (*entity.TestQuestion, error)
	UpdateQuestion(ctx context.Context, userID int64, question *entity.TestQuestion) (*entity.TestQuestion, error)
	DeleteQuestion(ctx context.Context, userID, testID, questionID int64) error

	Start(ctx context.Context, userID, testID int64) (*entity.Test, error)
	Submit(ctx context.Context, userID, testID int64, answers []entity.TestAnswer) (*entity.TestRecord, error)
	Records(ctx context.Context, userID, testID int64, page repository.Pagination) ([]entity.TestRecord, int64, error)
	Statistics(ctx context.Context, userID int64) (*TestStatistics, error)
}

// NewTestUsecase wires the repositories with default behaviour.
func NewTestUsecase(tests repository.TestRepository, records repository.RecordRepository, words repository.WordRepository, books repository.BookRepository) TestUsecase {
	return &testUsecase{
		tests:   tests,
		records: records,
		words:   words,
		books:   books,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:   time.Now,
	}
}

type testUsecase struct {
	tests   repository.TestRepository
	records repository.RecordRepository
	words   repository.WordRepository
	books   repository.BookRepository
	rng     *rand.Rand
	clock   func() time.Time
}

func (u *testUsecase) Generate(ctx context.Context, userID, bookID int64, questionCount int, testType entity.TestType) (*entity.Test, error) {
	if !entity.ValidTestType(testType) {
		return nil, entity.ErrInvalidTestType
	}
	if questionCount <= 0 {
		return nil, entity.ErrInvalidArgument
	}
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
	if len(ids) < questionCount {
		return nil, entity.ErrNotEnoughWords
	}

	words, err := u.words.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := lo.SliceToMap(words, func(w entity.Word) (int64, entity.Word) { return w.ID, w })

	now := u.clock()
	test := &entity.Test{
		UserID:         userID,
		BookID:         bookID,
		Name:           fmt.Sprintf("%s quiz %s", book.Name, now.Format("2006-01-02")),
		Type:           testType,
		TotalQuestions: questionCount,
		PassScore:      60,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	perm := u.rng.Perm(len(ids))
	for _, idx := range perm[:questionCount] {
		word, ok := byID[ids[idx]]
		if !ok {
			continue
		}
		test.Questions = append(test.Questions, u.buildQuestion(word, words, testType, now))
	}
	return u.tests.Create(ctx, test)
}

func (u *testUsecase) buildQuestion(word entity.Word, pool []entity.Word, testType entity.TestType, now time.Time) entity.TestQuestion {
	q := entity.TestQuestion{
		WordID:    word.ID,
		Type:      testType,
		CreatedAt: now,
	}
	switch testType {
	case entity.TestMultipleChoice:
		q.Prompt = word.Text
		q.Options = []string{word.Definition}
		seen := map[string]bool{word.Definition: true}
		for _, idx := range u.rng.Perm(len(pool)) {
			if len(q.Options) == 4 {
				break
			}
			def := pool[idx].Definition
			if pool[idx].ID == word.ID || def == "" || seen[def] {
				continue
			}
			q.Options = append(q.Options, def)
			seen[def] = true
		}
		u.rng.Shuffle(len(q.Options), func(i, j int) {
			q.Options[i], q.Options[j] = q.Options[j], q.Options[i]
		})
		q.Correct = word.Definition
	case entity.TestTrueFalse:
		// Half the time show a wrong definition borrowed from another word.
		shown := word.Definition
		q.Correct = "true"
		if u.rng.Intn(2) == 0 {
			for _, idx := range u.rng.Perm(len(pool)) {
				if pool[idx].ID != word.ID && pool[idx].Definition != "" && pool[idx].Definition != word.Definition {
					shown = pool[idx].Definition
					q.Correct = "false"
					break
				}
			}
		}
		q.Prompt = fmt.Sprintf("%s: %s", word.Text, shown)
		q.Options = []string{"true", "false"}
	case entity.TestFillBlank:
		q.Prompt = word.Definition
		q.Correct = word.Text
	}
	return q
}

func (u *testUsecase) Create(ctx context.Context, test *entity.Test) (*entity.Test, error) {
	if test == nil {
		return nil, entity.ErrInvalidArgument
	}
	now := u.clock()
	test.CreatedAt = now
	test.UpdatedAt = now
	if test.PassScore == 0 {
		test.PassScore = 60
	}
	if err := test.Validate(); err != nil {
		return nil, err
	}
	if test.BookID > 0 {
		book, err := u.books.GetByID(ctx, test.BookID)
		if err != nil {
			return nil, err
		}
		if book.UserID != test.UserID {
			return nil, entity.ErrBookNotOwned
		}
	}
	return u.tests.Create(ctx, test)
}

func (u *testUsecase) Update(ctx context.Context, userID, testID int64, upd TestUpdate) (*entity.Test, error) {
	existing, err := u.owned(ctx, userID, testID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		existing.Name = *upd.Name
	}
	if upd.Type != nil {
		existing.Type = *upd.Type
	}
	if upd.Duration != nil {
		existing.Duration = *upd.Duration
	}
	if upd.TotalQuestions != nil {
		existing.TotalQuestions = *upd.TotalQuestions
	}
	if upd.PassScore != nil {
		existing.PassScore = *upd.PassScore
	}
	existing.UpdatedAt = u.clock()
	if err := existing.Validate(); err != nil {
		return nil, err
	}
	return u.tests.Update(ctx, existing)
}

func (u *testUsecase) Get(ctx context.Context, userID, testID int64) (*entity.Test, error) {
	return u.owned(ctx, userID, testID)
}

func (u *testUsecase) List(ctx context.Context, query *repository.ListTestQuery) ([]entity.Test, int64, error) {
	query.Normalize()
	return u.tests.List(ctx, query)
}

func (u *testUsecase) Delete(ctx context.Context, userID, testID int64) error {
	if _, err := u.owned(ctx, userID, testID); err != nil {
		return err
	}
	return u.tests.Delete(ctx, testID)
}

func (u *testUsecase) AddQuestion(ctx context.Context, userID int64, question *entity.TestQuestion) (*entity.TestQuestion, error) {
	if question == nil || question.Prompt == "" || question.Correct == "" {
		return nil, entity.ErrInvalidArgument
	}
	if _, err := u.owned(ctx, userID, question.TestID); err != nil {
		return nil, err
	}
	question.CreatedAt = u.clock()
	return u.tests.AddQuestion(ctx, question)
}

func (u *testUsecase) UpdateQuestion(ctx context.Context, userID int64, question *entity.TestQuestion) (*entity.TestQuestion, error) {
	if question == nil || question.ID <= 0 {
		return nil, entity.ErrQuestionNotFound
	}
	test, err := u.owned(ctx, userID, question.TestID)
	if err != nil {
		return nil, err
	}
	if !lo.ContainsBy(test.Questions, func(q entity.TestQuestion) bool { return q.ID == question.ID }) {
		return nil, entity.ErrTestQuestionOrphan
	}
	return u.tests.UpdateQuestion(ctx, question)
}

func (u *testUsecase) DeleteQuestion(ctx context.Context, userID, testID, questionID int64) error {
	test, err := u.owned(ctx, userID, testID)
	if err != nil {
		return err
	}
	if !lo.ContainsBy(test.Questions, func(q entity.TestQuestion) bool { return q.ID == questionID }) {
		return entity.ErrTestQuestionOrphan
	}
	return u.tests.DeleteQuestion(ctx, testID, questionID)
}

func (u *testUsecase) Start(ctx context.Context, userID, testID int64) (*entity.Test, error) {
	test, err := u.owned(ctx, userID, testID)
	if err != nil {
		return nil, err
	}
	if err := test.Start(u.clock()); err != nil {
		return nil, err
	}
	return u.tests.Update(ctx, test)
}

func (u *testUsecase) Submit(ctx context.Context, userID, testID int64, answers []entity.TestAnswer) (*entity.TestRecord, error) {
	test, err := u.owned(ctx, userID, testID)
	if err != nil {
		return nil, err
	}
	for _, a := range answers {
		if a.QuestionID <= 0 {
			return nil, entity.ErrMalformedAnswers
		}
	}

	now := u.clock()
	record, wrong, err := test.Grade(userID, answers, now)
	if err != nil {
		return nil, err
	}

	// Wrong answers feed back into the learning queue: mastered words fall
	// back to learning, unknown words get a fresh record. Manually authored
	// tests without a book have no queue to feed.
	if test.BookID != 0 {
		for _, wordID := range wrong {
			lr, err := u.records.Find(ctx, userID, test.BookID, wordID)
			switch {
			case err == nil:
				if lr.Status == entity.StatusMastered {
					lr.Demote(now)
					if _, err := u.records.Update(ctx, lr); err != nil {
						return nil, err
					}
				}
			case errors.Is(err, entity.ErrNotFound):
				fresh, err := entity.NewLearningRecord(userID, test.BookID, wordID, entity.StatusLearning, now)
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
	}
	return u.tests.CreateRecord(ctx, record)
}

func (u *testUsecase) Records(ctx context.Context, userID, testID int64, page repository.Pagination) ([]entity.TestRecord, int64, error) {
	if testID > 0 {
		if _, err := u.owned(ctx, userID, testID); err != nil {
			return nil, 0, err
		}
	}
	page.Normalize()
	return u.tests.ListRecords(ctx, userID, testID, page)
}

func (u *testUsecase) Statistics(ctx context.Context, userID int64) (*TestStatistics, error) {
	_, total, err := u.tests.List(ctx, &repository.ListTestQuery{
		Pagination: repository.Pagination{PageNo: 1, PageSize: 1},
		UserID:     userID,
	})
	if err != nil {
		return nil, err
	}

	agg, err := u.tests.RecordAggregate(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &TestStatistics{
		TotalTests:    int(total),
		TotalAttempts: agg.Attempts,
	}
	if agg.Attempts == 0 {
		return stats, nil
	}
	stats.AverageScore = agg.ScoreTotal / float64(agg.Attempts)
	stats.PassRate = float64(agg.Passed) / float64(agg.Attempts)
	if agg.Answered > 0 {
		stats.CorrectRate = float64(agg.Correct) / float64(agg.Answered)
	}
	return stats, nil
}

func (u *testUsecase) owned(ctx context.Context, userID, id int64) (*entity.Test, error) {
	if id <= 0 {
		return nil, entity.ErrTestNotFound
	}
	test, err := u.tests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if test.UserID != userID {
		return nil, entity.ErrTestNotOwned
	}
	return test, nil
}
