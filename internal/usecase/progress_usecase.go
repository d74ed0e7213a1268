package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

// DefaultDailyTarget is the words-per-day goal assumed when the user has not
// set one.
const DefaultDailyTarget = 20

// DailySchedule is today's workload summary.
type DailySchedule struct {
	ReviewDue    int
	LearnedToday int
	DailyTarget  int
	Remaining    int
}

// BookProgress is the per-book progress rollup.
type BookProgress struct {
	BookID          int64
	TotalWords      int
	NewWords        int
	LearningWords   int
	ReviewingWords  int
	MasteredWords   int
	StudyTime       float64
	LearnedToday    int
	ConsecutiveDays int
	Completion      float64
}

// ProgressUsecase answers what to study next and how far along a user is,
// and manages learning goals and deadline plans.
type ProgressUsecase interface {
	RecommendWords(ctx context.Context, userID, bookID int64, limit int) ([]entity.Word, error)
	ReviewDueWords(ctx context.Context, userID int64, limit int) ([]entity.LearningRecord, error)
	DailySchedule(ctx context.Context, userID int64) (*DailySchedule, error)
	BookProgress(ctx context.Context, userID, bookID int64) (*BookProgress, error)
	ConsecutiveDays(ctx context.Context, userID int64) (int, error)

	CreateGoal(ctx context.Context, userID, bookID int64, dailyWords int, targetDate time.Time) (*entity.LearningGoal, error)
	GetGoal(ctx context.Context, userID, bookID int64) (*entity.LearningGoal, error)
	CreatePlan(ctx context.Context, userID, bookID int64, endDate time.Time) (*entity.LearningPlan, error)
	UpdatePlan(ctx context.Context, userID, bookID int64, endDate time.Time) (*entity.LearningPlan, error)
	GetPlan(ctx context.Context, userID, bookID int64) (*entity.LearningPlan, error)
}

// NewProgressUsecase wires the repositories with default behaviour.
func NewProgressUsecase(records repository.RecordRepository, books repository.BookRepository, words repository.WordRepository, goals repository.GoalRepository, plans repository.LearningPlanRepository) ProgressUsecase {
	return &progressUsecase{
		records: records,
		books:   books,
		words:   words,
		goals:   goals,
		plans:   plans,
		clock:   time.Now,
	}
}

type progressUsecase struct {
	records repository.RecordRepository
	books   repository.BookRepository
	words   repository.WordRepository
	goals   repository.GoalRepository
	plans   repository.LearningPlanRepository
	clock   func() time.Time
}

// RecommendWords returns book words the user has never touched, in book
// order, capped at limit.
func (u *progressUsecase) RecommendWords(ctx context.Context, userID, bookID int64, limit int) ([]entity.Word, error) {
	if limit <= 0 {
		limit = 10
	}
	if _, err := u.ownedBook(ctx, userID, bookID); err != nil {
		return nil, err
	}

	ids, err := u.books.ListWordIDs(ctx, bookID)
	if err != nil {
		return nil, err
	}
	learned, err := u.records.LearnedWordIDs(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	seen := lo.SliceToMap(learned, func(id int64) (int64, bool) { return id, true })

	fresh := lo.Filter(ids, func(id int64, _ int) bool { return !seen[id] })
	if len(fresh) > limit {
		fresh = fresh[:limit]
	}
	if len(fresh) == 0 {
		return nil, nil
	}
	return u.words.GetByIDs(ctx, fresh)
}

func (u *progressUsecase) ReviewDueWords(ctx context.Context, userID int64, limit int) ([]entity.LearningRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return u.records.ListDue(ctx, userID, u.clock(), limit)
}

func (u *progressUsecase) DailySchedule(ctx context.Context, userID int64) (*DailySchedule, error) {
	now := u.clock()
	due, err := u.records.ListDue(ctx, userID, now, 500)
	if err != nil {
		return nil, err
	}

	learnedToday, err := u.learnedOn(ctx, userID, 0, now)
	if err != nil {
		return nil, err
	}

	target := DefaultDailyTarget
	if goals, err := u.goals.ListActive(ctx, userID); err == nil && len(goals) > 0 {
		target = lo.SumBy(goals, func(g entity.LearningGoal) int { return g.DailyWords })
	}

	return &DailySchedule{
		ReviewDue:    len(due),
		LearnedToday: learnedToday,
		DailyTarget:  target,
		Remaining:    max(target-learnedToday, 0),
	}, nil
}

func (u *progressUsecase) BookProgress(ctx context.Context, userID, bookID int64) (*BookProgress, error) {
	if _, err := u.ownedBook(ctx, userID, bookID); err != nil {
		return nil, err
	}

	total, err := u.books.CountWords(ctx, bookID)
	if err != nil {
		return nil, err
	}
	counts, err := u.records.CountByStatus(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	learnedToday, err := u.learnedOn(ctx, userID, bookID, now)
	if err != nil {
		return nil, err
	}
	streak, err := u.ConsecutiveDays(ctx, userID)
	if err != nil {
		return nil, err
	}

	studyTime, err := u.records.SumStudyTime(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	learning := counts[entity.StatusLearning]
	reviewing := counts[entity.StatusReviewing]
	mastered := counts[entity.StatusMastered]
	progress := &BookProgress{
		BookID:          bookID,
		TotalWords:      total,
		NewWords:        max(total-learning-reviewing-mastered, 0),
		LearningWords:   learning,
		ReviewingWords:  reviewing,
		MasteredWords:   mastered,
		StudyTime:       studyTime,
		LearnedToday:    learnedToday,
		ConsecutiveDays: streak,
	}
	if total > 0 {
		progress.Completion = float64(mastered) / float64(total)
	}
	return progress, nil
}

// ConsecutiveDays counts the study streak ending today: starting at today's
// date it walks backwards one day at a time and stops at the first day on
// which no record was created.
func (u *progressUsecase) ConsecutiveDays(ctx context.Context, userID int64) (int, error) {
	now := u.clock()
	days, err := u.records.StudyDays(ctx, userID, now.Location())
	if err != nil {
		return 0, err
	}
	active := make(map[string]bool, len(days))
	for _, d := range days {
		active[d.Format("2006-01-02")] = true
	}

	streak := 0
	for d := now; active[d.Format("2006-01-02")]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak, nil
}

func (u *progressUsecase) CreateGoal(ctx context.Context, userID, bookID int64, dailyWords int, targetDate time.Time) (*entity.LearningGoal, error) {
	if _, err := u.ownedBook(ctx, userID, bookID); err != nil {
		return nil, err
	}
	if _, err := u.goals.FindActive(ctx, userID, bookID); err == nil {
		return nil, entity.ErrGoalExists
	} else if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	now := u.clock()
	remaining, err := u.remainingWords(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	// Either side of the goal can be derived from the other.
	switch {
	case dailyWords > 0 && targetDate.IsZero():
		if targetDate, err = entity.FinishDate(remaining, dailyWords, now); err != nil {
			return nil, err
		}
	case dailyWords <= 0 && !targetDate.IsZero():
		if dailyWords, err = entity.DailyTarget(remaining, targetDate, now); err != nil {
			return nil, err
		}
		if dailyWords == 0 {
			dailyWords = 1
		}
	case dailyWords <= 0:
		return nil, entity.ErrInvalidArgument
	}

	goal := &entity.LearningGoal{
		UserID:     userID,
		BookID:     bookID,
		DailyWords: dailyWords,
		TargetDate: targetDate,
		Status:     entity.GoalActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	return u.goals.Create(ctx, goal)
}

func (u *progressUsecase) GetGoal(ctx context.Context, userID, bookID int64) (*entity.LearningGoal, error) {
	return u.goals.FindActive(ctx, userID, bookID)
}

func (u *progressUsecase) CreatePlan(ctx context.Context, userID, bookID int64, endDate time.Time) (*entity.LearningPlan, error) {
	if _, err := u.ownedBook(ctx, userID, bookID); err != nil {
		return nil, err
	}
	if _, err := u.plans.FindActive(ctx, userID, bookID); err == nil {
		return nil, entity.ErrLearningPlanExists
	} else if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	plan, err := u.buildPlan(ctx, userID, bookID, endDate)
	if err != nil {
		return nil, err
	}
	return u.plans.Create(ctx, plan)
}

func (u *progressUsecase) UpdatePlan(ctx context.Context, userID, bookID int64, endDate time.Time) (*entity.LearningPlan, error) {
	existing, err := u.plans.FindActive(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	rebuilt, err := u.buildPlan(ctx, userID, bookID, endDate)
	if err != nil {
		return nil, err
	}
	existing.DailyWords = rebuilt.DailyWords
	existing.EndDate = rebuilt.EndDate
	existing.UpdatedAt = u.clock()
	return u.plans.Update(ctx, existing)
}

func (u *progressUsecase) GetPlan(ctx context.Context, userID, bookID int64) (*entity.LearningPlan, error) {
	return u.plans.FindActive(ctx, userID, bookID)
}

func (u *progressUsecase) buildPlan(ctx context.Context, userID, bookID int64, endDate time.Time) (*entity.LearningPlan, error) {
	now := u.clock()
	remaining, err := u.remainingWords(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	daily, err := entity.DailyTarget(remaining, endDate, now)
	if err != nil {
		return nil, err
	}
	if daily == 0 {
		daily = 1
	}
	return &entity.LearningPlan{
		UserID:     userID,
		BookID:     bookID,
		DailyWords: daily,
		StartDate:  now,
		EndDate:    endDate,
		Status:     entity.GoalActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// remainingWords is the book total minus words already mastered.
func (u *progressUsecase) remainingWords(ctx context.Context, userID, bookID int64) (int, error) {
	total, err := u.books.CountWords(ctx, bookID)
	if err != nil {
		return 0, err
	}
	counts, err := u.records.CountByStatus(ctx, userID, bookID)
	if err != nil {
		return 0, err
	}
	return max(total-counts[entity.StatusMastered], 0), nil
}

// learnedOn counts records created on the given day. bookID 0 means all
// books.
func (u *progressUsecase) learnedOn(ctx context.Context, userID, bookID int64, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return u.records.CountCreated(ctx, userID, bookID, start, start.AddDate(0, 0, 1))
}

func (u *progressUsecase) ownedBook(ctx context.Context, userID, bookID int64) (*entity.VocabularyBook, error) {
	if bookID <= 0 {
		return nil, entity.ErrBookNotFound
	}
	book, err := u.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, entity.ErrBookNotOwned
	}
	return book, nil
}
