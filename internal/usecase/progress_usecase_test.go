package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lexloop/lexloop/internal/entity"
)

func newProgressFixture(t *testing.T, now time.Time) (*progressUsecase, *fakeRecordRepo, *fakeWordRepo, *fakeBookRepo) {
	t.Helper()
	records := newFakeRecordRepo()
	books := newFakeBookRepo()
	words := newFakeWordRepo()
	goals := newFakeGoalRepo()
	plans := newFakeLearningPlanRepo()
	uc := NewProgressUsecase(records, books, words, goals, plans).(*progressUsecase)
	uc.clock = func() time.Time { return now }
	return uc, records, words, books
}

func TestRecommendWordsSkipsLearnedAndCaps(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, records, words, books := newProgressFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 8)

	ids, _ := books.ListWordIDs(context.Background(), bookID)
	for _, wordID := range ids[:3] {
		rec, _ := entity.NewLearningRecord(1, bookID, wordID, entity.StatusLearning, now)
		if _, err := records.Create(context.Background(), rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	recommended, err := uc.RecommendWords(context.Background(), 1, bookID, 3)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(recommended) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(recommended))
	}
	learned := map[int64]bool{ids[0]: true, ids[1]: true, ids[2]: true}
	for _, w := range recommended {
		if learned[w.ID] {
			t.Fatalf("word %d already has a record", w.ID)
		}
	}
}

func TestDailyScheduleRemaining(t *testing.T) {
	now := time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC)
	uc, records, words, books := newProgressFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 30)

	ids, _ := books.ListWordIDs(context.Background(), bookID)
	// 4 records created today, 2 of them due for review.
	for i, wordID := range ids[:4] {
		rec, _ := entity.NewLearningRecord(1, bookID, wordID, entity.StatusLearning, now.Add(-time.Hour))
		if i < 2 {
			due := now.Add(-time.Minute)
			rec.NextReviewTime = &due
		}
		if _, err := records.Create(context.Background(), rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	schedule, err := uc.DailySchedule(context.Background(), 1)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if schedule.ReviewDue != 2 {
		t.Fatalf("expected 2 due, got %d", schedule.ReviewDue)
	}
	if schedule.LearnedToday != 4 {
		t.Fatalf("expected 4 learned today, got %d", schedule.LearnedToday)
	}
	if schedule.DailyTarget != DefaultDailyTarget {
		t.Fatalf("expected default target %d, got %d", DefaultDailyTarget, schedule.DailyTarget)
	}
	if schedule.Remaining != DefaultDailyTarget-4 {
		t.Fatalf("expected remaining %d, got %d", DefaultDailyTarget-4, schedule.Remaining)
	}
}

func TestDailyScheduleCountsAllRecords(t *testing.T) {
	now := time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC)
	uc, records, words, books := newProgressFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 120)

	// More records than a single listing page holds.
	ids, _ := books.ListWordIDs(context.Background(), bookID)
	for _, wordID := range ids {
		rec, _ := entity.NewLearningRecord(1, bookID, wordID, entity.StatusLearning, now)
		if _, err := records.Create(context.Background(), rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	schedule, err := uc.DailySchedule(context.Background(), 1)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if schedule.LearnedToday != 120 {
		t.Fatalf("expected 120 learned today, got %d", schedule.LearnedToday)
	}
}

func TestConsecutiveDaysStopsAtGap(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	uc, records, words, books := newProgressFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 6)

	ids, _ := books.ListWordIDs(context.Background(), bookID)
	// Records created today, yesterday and two days ago, then a gap, then
	// one more.
	offsets := []int{0, 1, 2, 4}
	for i, off := range offsets {
		rec, _ := entity.NewLearningRecord(1, bookID, ids[i], entity.StatusLearning, now.AddDate(0, 0, -off))
		if _, err := records.Create(context.Background(), rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	streak, err := uc.ConsecutiveDays(context.Background(), 1)
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if streak != 3 {
		t.Fatalf("expected streak 3, got %d", streak)
	}
}

func TestConsecutiveDaysCountsUnreviewedRecords(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	uc, records, words, books := newProgressFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 2)

	ids, _ := books.ListWordIDs(context.Background(), bookID)
	// Studying means creating records; a review is not required for the day
	// to count toward the streak.
	for i, off := range []int{0, 1} {
		rec, _ := entity.NewLearningRecord(1, bookID, ids[i], entity.StatusLearning, now.AddDate(0, 0, -off))
		if _, err := records.Create(context.Background(), rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	streak, err := uc.ConsecutiveDays(context.Background(), 1)
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if streak != 2 {
		t.Fatalf("records created today and yesterday should give streak 2, got %d", streak)
	}
}

func TestConsecutiveDaysZeroWithoutToday(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	uc, records, words, books := newProgressFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 1)

	ids, _ := books.ListWordIDs(context.Background(), bookID)
	rec, _ := entity.NewLearningRecord(1, bookID, ids[0], entity.StatusLearning, now.AddDate(0, 0, -1))
	if _, err := records.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	streak, err := uc.ConsecutiveDays(context.Background(), 1)
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if streak != 0 {
		t.Fatalf("streak without studying today should be 0, got %d", streak)
	}
}

func TestBookProgressPartition(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, records, words, books := newProgressFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 10)

	ids, _ := books.ListWordIDs(context.Background(), bookID)
	statuses := []entity.RecordStatus{
		entity.StatusLearning, entity.StatusLearning,
		entity.StatusReviewing,
		entity.StatusMastered, entity.StatusMastered, entity.StatusMastered,
	}
	for i, status := range statuses {
		rec, _ := entity.NewLearningRecord(1, bookID, ids[i], status, now)
		rec.StudyTime = 60
		if _, err := records.Create(context.Background(), rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	progress, err := uc.BookProgress(context.Background(), 1, bookID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.TotalWords != 10 || progress.NewWords != 4 {
		t.Fatalf("expected 10 total / 4 new, got %d/%d", progress.TotalWords, progress.NewWords)
	}
	if progress.LearningWords != 2 || progress.ReviewingWords != 1 || progress.MasteredWords != 3 {
		t.Fatalf("bad partition: %+v", progress)
	}
	if progress.StudyTime != 360 {
		t.Fatalf("expected 360s study time, got %v", progress.StudyTime)
	}
	if progress.Completion != 0.3 {
		t.Fatalf("expected completion 0.3, got %v", progress.Completion)
	}
}

func TestCreateGoalDerivesEitherSide(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	uc, _, words, books := newProgressFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 30)

	goal, err := uc.CreateGoal(context.Background(), 1, bookID, 0, now.AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if goal.DailyWords != 3 {
		t.Fatalf("expected ceil(30/10)=3 daily words, got %d", goal.DailyWords)
	}

	if _, err := uc.CreateGoal(context.Background(), 1, bookID, 5, time.Time{}); !errors.Is(err, entity.ErrConflict) {
		t.Fatalf("expected one active goal per book, got %v", err)
	}
}

func TestCreateGoalDerivesTargetDate(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	uc, _, words, books := newProgressFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 30)

	goal, err := uc.CreateGoal(context.Background(), 1, bookID, 7, time.Time{})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	want := now.AddDate(0, 0, 5) // ceil(30/7) = 5 days
	if !goal.TargetDate.Equal(want) {
		t.Fatalf("expected target %v, got %v", want, goal.TargetDate)
	}
}

func TestCreatePlanCeilMathAndPastDate(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	uc, records, words, books := newProgressFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 25)

	// 5 mastered words shrink the remaining count.
	ids, _ := books.ListWordIDs(context.Background(), bookID)
	for _, wordID := range ids[:5] {
		rec, _ := entity.NewLearningRecord(1, bookID, wordID, entity.StatusMastered, now)
		if _, err := records.Create(context.Background(), rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	if _, err := uc.CreatePlan(context.Background(), 1, bookID, now.AddDate(0, 0, -1)); !errors.Is(err, entity.ErrInvalidArgument) {
		t.Fatalf("expected past date error, got %v", err)
	}

	plan, err := uc.CreatePlan(context.Background(), 1, bookID, now.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if plan.DailyWords != 3 {
		t.Fatalf("expected ceil(20/7)=3, got %d", plan.DailyWords)
	}

	if _, err := uc.CreatePlan(context.Background(), 1, bookID, now.AddDate(0, 0, 9)); !errors.Is(err, entity.ErrConflict) {
		t.Fatalf("expected duplicate plan conflict, got %v", err)
	}

	updated, err := uc.UpdatePlan(context.Background(), 1, bookID, now.AddDate(0, 0, 20))
	if err != nil {
		t.Fatalf("update plan: %v", err)
	}
	if updated.DailyWords != 1 {
		t.Fatalf("expected ceil(20/20)=1, got %d", updated.DailyWords)
	}
}
