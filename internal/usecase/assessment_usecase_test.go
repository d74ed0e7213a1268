package usecase

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

func newAssessmentFixture(t *testing.T, now time.Time) (*assessmentUsecase, *fakeRecordRepo, *fakeWordRepo, *fakeBookRepo) {
	t.Helper()
	assessments := newFakeAssessmentRepo()
	records := newFakeRecordRepo()
	words := newFakeWordRepo()
	books := newFakeBookRepo()
	uc := NewAssessmentUsecase(assessments, records, words, books).(*assessmentUsecase)
	uc.clock = func() time.Time { return now }
	uc.rng = rand.New(rand.NewSource(1))
	return uc, records, words, books
}

func seedVocabulary(t *testing.T, words *fakeWordRepo, books *fakeBookRepo, userID int64, count int) int64 {
	t.Helper()
	book, err := books.Create(context.Background(), &entity.VocabularyBook{UserID: userID, Name: "IELTS core"})
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	var ids []int64
	for i := 0; i < count; i++ {
		w, err := words.Create(context.Background(), &entity.Word{
			Text:       string(rune('a'+i%26)) + "-word",
			Definition: "definition " + string(rune('A'+i)),
		})
		if err != nil {
			t.Fatalf("create word: %v", err)
		}
		ids = append(ids, w.ID)
	}
	if _, err := books.AddWords(context.Background(), book.ID, ids); err != nil {
		t.Fatalf("add words: %v", err)
	}
	return book.ID
}

func TestStartAssessmentEmptyBook(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, _, _, books := newAssessmentFixture(t, now)
	book, _ := books.Create(context.Background(), &entity.VocabularyBook{UserID: 1, Name: "empty"})

	if _, err := uc.Start(context.Background(), 1, book.ID, 10); !errors.Is(err, entity.ErrEmptyBook) {
		t.Fatalf("expected empty book error, got %v", err)
	}
}

func TestStartAssessmentSamplesAtMostBookSize(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, _, words, books := newAssessmentFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 5)

	assessment, err := uc.Start(context.Background(), 1, bookID, 20)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(assessment.Questions) != 5 {
		t.Fatalf("expected 5 questions for a 5-word book, got %d", len(assessment.Questions))
	}

	seen := make(map[int64]bool)
	for _, q := range assessment.Questions {
		if seen[q.WordID] {
			t.Fatalf("word %d sampled twice", q.WordID)
		}
		seen[q.WordID] = true
		if len(q.Options) < 2 || len(q.Options) > 4 {
			t.Fatalf("expected 2-4 options, got %d", len(q.Options))
		}
		var hasCorrect bool
		for _, opt := range q.Options {
			if opt == q.Correct {
				hasCorrect = true
			}
		}
		if !hasCorrect {
			t.Fatalf("options for word %d miss the correct answer", q.WordID)
		}
	}
}

func TestSubmitAnswerExactMatch(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, _, words, books := newAssessmentFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 4)

	assessment, err := uc.Start(context.Background(), 1, bookID, 4)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	q := assessment.Questions[0]

	correct, err := uc.SubmitAnswer(context.Background(), 1, assessment.ID, q.ID, q.Correct)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !correct {
		t.Fatalf("exact answer should be correct")
	}
	correct, err = uc.SubmitAnswer(context.Background(), 1, assessment.ID, q.ID, q.Correct+" ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if correct {
		t.Fatalf("answers compare by exact string equality")
	}

	if _, err := uc.SubmitAnswer(context.Background(), 1, assessment.ID, 9999, "x"); !errors.Is(err, entity.ErrInvalidArgument) {
		t.Fatalf("expected question mismatch error, got %v", err)
	}
}

func TestCompleteAssessmentScoreAndDemotion(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, records, words, books := newAssessmentFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 4)

	assessment, err := uc.Start(context.Background(), 1, bookID, 4)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// One word already mastered, to be demoted by its wrong answer.
	masteredWordID := assessment.Questions[0].WordID
	rec, _ := entity.NewLearningRecord(1, bookID, masteredWordID, entity.StatusMastered, now.Add(-time.Hour))
	if _, err := records.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	// Answer 3 of 4 correctly; leave the mastered word wrong.
	for _, q := range assessment.Questions[1:] {
		if _, err := uc.SubmitAnswer(context.Background(), 1, assessment.ID, q.ID, q.Correct); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	done, err := uc.Complete(context.Background(), 1, assessment.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Score != 75 {
		t.Fatalf("expected score 75, got %v", done.Score)
	}
	if done.Status != entity.AssessmentCompleted {
		t.Fatalf("expected completed status, got %s", done.Status)
	}

	demoted, err := records.Find(context.Background(), 1, bookID, masteredWordID)
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if demoted.Status != entity.StatusLearning {
		t.Fatalf("mastered word answered wrong should demote to learning, got %s", demoted.Status)
	}
	if !demoted.NextReviewTime.Equal(now) {
		t.Fatalf("demoted word should be due now, got %v", demoted.NextReviewTime)
	}
}

func TestCompleteAssessmentCreatesRecordsForNewWrongWords(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, records, words, books := newAssessmentFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 3)

	assessment, err := uc.Start(context.Background(), 1, bookID, 3)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.Complete(context.Background(), 1, assessment.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	for _, q := range assessment.Questions {
		rec, err := records.Find(context.Background(), 1, bookID, q.WordID)
		if err != nil {
			t.Fatalf("expected learning record for wrong word %d: %v", q.WordID, err)
		}
		if rec.Status != entity.StatusLearning {
			t.Fatalf("expected learning status, got %s", rec.Status)
		}
	}
}

func TestCompleteAssessmentTwiceConflicts(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, _, words, books := newAssessmentFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 2)

	assessment, err := uc.Start(context.Background(), 1, bookID, 2)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.Complete(context.Background(), 1, assessment.ID); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if _, err := uc.Complete(context.Background(), 1, assessment.ID); !errors.Is(err, entity.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSubmitAnswersValidatesBatchBeforeWriting(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, _, words, books := newAssessmentFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 3)

	assessment, err := uc.Start(context.Background(), 1, bookID, 3)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	batch := []AnswerSubmission{
		{QuestionID: assessment.Questions[0].ID, Answer: assessment.Questions[0].Correct},
		{QuestionID: 9999, Answer: "x"},
	}
	if _, err := uc.SubmitAnswers(context.Background(), 1, assessment.ID, batch); !errors.Is(err, entity.ErrInvalidArgument) {
		t.Fatalf("expected mismatch error, got %v", err)
	}

	// Nothing was recorded and the assessment is still open.
	current, err := uc.owned(context.Background(), 1, assessment.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if current.Status != entity.AssessmentInProgress {
		t.Fatalf("failed batch must not complete the assessment")
	}
	if current.Questions[0].UserAnswer != nil {
		t.Fatalf("failed batch must not record answers")
	}

	full := make([]AnswerSubmission, 0, len(assessment.Questions))
	for _, q := range assessment.Questions {
		full = append(full, AnswerSubmission{QuestionID: q.ID, Answer: q.Correct})
	}
	done, err := uc.SubmitAnswers(context.Background(), 1, assessment.ID, full)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if done.Score != 100 {
		t.Fatalf("expected perfect score, got %v", done.Score)
	}
}

func TestAssessmentHistoryNewestFirst(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, _, words, books := newAssessmentFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 2)

	var ids []int64
	for i := 0; i < 3; i++ {
		finish := now.Add(time.Duration(i) * time.Hour)
		uc.clock = func() time.Time { return finish }
		a, err := uc.Start(context.Background(), 1, bookID, 2)
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := uc.Complete(context.Background(), 1, a.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}
		ids = append(ids, a.ID)
	}

	history, total, err := uc.History(context.Background(), 1, repository.Pagination{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 completed assessments, got %d", total)
	}
	if history[0].ID != ids[2] || history[2].ID != ids[0] {
		t.Fatalf("history not newest first: %v", []int64{history[0].ID, history[1].ID, history[2].ID})
	}
}

func TestAnalyzeSuggestionTiers(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, _, words, books := newAssessmentFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 5)

	assessment, err := uc.Start(context.Background(), 1, bookID, 5)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// 3/5 correct lands in the middle tier.
	for _, q := range assessment.Questions[:3] {
		if _, err := uc.SubmitAnswer(context.Background(), 1, assessment.ID, q.ID, q.Correct); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if _, err := uc.Complete(context.Background(), 1, assessment.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	analysis, err := uc.Analyze(context.Background(), 1, assessment.ID)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Accuracy != 0.6 {
		t.Fatalf("expected accuracy 0.6, got %v", analysis.Accuracy)
	}
	if len(analysis.WeakWords) != 2 {
		t.Fatalf("expected 2 weak words, got %d", len(analysis.WeakWords))
	}
	if len(analysis.Questions) != 5 {
		t.Fatalf("expected per-question breakdown, got %d", len(analysis.Questions))
	}
	if analysis.Suggestion == "" {
		t.Fatalf("expected a suggestion")
	}
}

func TestAssessmentOwnership(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	uc, _, words, books := newAssessmentFixture(t, now)
	bookID := seedVocabulary(t, words, books, 1, 2)

	assessment, err := uc.Start(context.Background(), 1, bookID, 2)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.Complete(context.Background(), 2, assessment.ID); !errors.Is(err, entity.ErrPermissionDenied) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if _, err := uc.Start(context.Background(), 2, bookID, 2); !errors.Is(err, entity.ErrPermissionDenied) {
		t.Fatalf("expected book ownership error, got %v", err)
	}
}
