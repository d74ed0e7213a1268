package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
	"github.com/lexloop/lexloop/internal/srs"
)

// ReviewResult is one word outcome inside a batch review submission.
type ReviewResult struct {
	WordID  int64
	Outcome entity.ReviewOutcome
}

// LearningUsecase drives the learning record lifecycle: creating records,
// applying review outcomes and draining scheduled review plans.
type LearningUsecase interface {
	CreateRecord(ctx context.Context, userID, bookID, wordID int64, status entity.RecordStatus) (*entity.LearningRecord, error)
	GetRecord(ctx context.Context, userID, id int64) (*entity.LearningRecord, error)
	ListRecords(ctx context.Context, query *repository.ListRecordQuery) ([]entity.LearningRecord, int64, error)
	SubmitReview(ctx context.Context, userID, bookID, wordID int64, outcome entity.ReviewOutcome) (*entity.LearningRecord, error)
	SubmitReviewBatch(ctx context.Context, userID, bookID int64, results []ReviewResult) ([]entity.LearningRecord, error)
	Statistics(ctx context.Context, userID int64) (*entity.RecordStatistics, error)

	StartSession(ctx context.Context, userID, recordID int64) (*entity.LearningRecord, error)
	EndSession(ctx context.Context, userID, recordID int64) (*entity.LearningRecord, error)
	RateConfidence(ctx context.Context, userID, recordID int64, level int) (*entity.LearningRecord, error)

	GeneratePlans(ctx context.Context, userID int64, limit int) ([]entity.ReviewPlan, error)
	ListPlans(ctx context.Context, query *repository.ListPlanQuery) ([]entity.ReviewPlan, int64, error)
	CompletePlan(ctx context.Context, userID, planID int64) (*entity.ReviewPlan, error)
	SkipPlan(ctx context.Context, userID, planID int64) (*entity.ReviewPlan, error)
}

// NewLearningUsecase wires the repositories with the default interval
// policies.
func NewLearningUsecase(records repository.RecordRepository, plans repository.PlanRepository, books repository.BookRepository) LearningUsecase {
	return &learningUsecase{
		records:      records,
		plans:        plans,
		books:        books,
		reviewPolicy: srs.EbbinghausA,
		planPolicy:   srs.EbbinghausB,
		clock:        time.Now,
	}
}

type learningUsecase struct {
	records      repository.RecordRepository
	plans        repository.PlanRepository
	books        repository.BookRepository
	reviewPolicy srs.Policy
	planPolicy   srs.Policy
	clock        func() time.Time
}

func (u *learningUsecase) CreateRecord(ctx context.Context, userID, bookID, wordID int64, status entity.RecordStatus) (*entity.LearningRecord, error) {
	if err := u.checkBookWord(ctx, userID, bookID, wordID); err != nil {
		return nil, err
	}

	existing, err := u.records.Find(ctx, userID, bookID, wordID)
	if err == nil {
		// One record per (user, book, word); repeated creates upsert status.
		if status != "" && status != existing.Status {
			if !entity.ValidRecordStatus(status) {
				return nil, entity.ErrInvalidRecordStatus
			}
			existing.Status = status
			existing.UpdatedAt = u.clock()
			return u.records.Update(ctx, existing)
		}
		return existing, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	record, err := entity.NewLearningRecord(userID, bookID, wordID, status, u.clock())
	if err != nil {
		return nil, err
	}
	return u.records.Create(ctx, record)
}

func (u *learningUsecase) GetRecord(ctx context.Context, userID, id int64) (*entity.LearningRecord, error) {
	return u.ownedRecord(ctx, userID, id)
}

func (u *learningUsecase) ListRecords(ctx context.Context, query *repository.ListRecordQuery) ([]entity.LearningRecord, int64, error) {
	if query.Status != "" && !entity.ValidRecordStatus(query.Status) {
		return nil, 0, entity.ErrInvalidRecordStatus
	}
	query.Normalize()
	return u.records.List(ctx, query)
}

func (u *learningUsecase) SubmitReview(ctx context.Context, userID, bookID, wordID int64, outcome entity.ReviewOutcome) (*entity.LearningRecord, error) {
	record, err := u.records.Find(ctx, userID, bookID, wordID)
	if errors.Is(err, entity.ErrNotFound) {
		// First review of an uncollected word creates its record on the fly.
		record, err = u.CreateRecord(ctx, userID, bookID, wordID, entity.StatusLearning)
	}
	if err != nil {
		return nil, err
	}
	if err := record.ApplyReview(outcome, u.reviewPolicy, u.clock()); err != nil {
		return nil, err
	}
	return u.records.Update(ctx, record)
}

func (u *learningUsecase) SubmitReviewBatch(ctx context.Context, userID, bookID int64, results []ReviewResult) ([]entity.LearningRecord, error) {
	if len(results) == 0 {
		return nil, entity.ErrInvalidArgument
	}
	// Validate the whole batch before touching any record.
	for _, r := range results {
		if r.WordID <= 0 {
			return nil, entity.ErrInvalidArgument
		}
		if r.Outcome != entity.OutcomeRemembered && r.Outcome != entity.OutcomeForgotten {
			return nil, entity.ErrInvalidOutcome
		}
	}

	updated := make([]entity.LearningRecord, 0, len(results))
	for _, r := range results {
		record, err := u.SubmitReview(ctx, userID, bookID, r.WordID, r.Outcome)
		if err != nil {
			return nil, err
		}
		updated = append(updated, *record)
	}
	return updated, nil
}

func (u *learningUsecase) Statistics(ctx context.Context, userID int64) (*entity.RecordStatistics, error) {
	return u.records.Statistics(ctx, userID)
}

func (u *learningUsecase) StartSession(ctx context.Context, userID, recordID int64) (*entity.LearningRecord, error) {
	record, err := u.ownedRecord(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}
	record.StartSession(u.clock())
	return u.records.Update(ctx, record)
}

func (u *learningUsecase) EndSession(ctx context.Context, userID, recordID int64) (*entity.LearningRecord, error) {
	record, err := u.ownedRecord(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}
	record.EndSession(u.clock())
	return u.records.Update(ctx, record)
}

func (u *learningUsecase) RateConfidence(ctx context.Context, userID, recordID int64, level int) (*entity.LearningRecord, error) {
	record, err := u.ownedRecord(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}
	if err := record.ApplyConfidence(level, u.clock()); err != nil {
		return nil, err
	}
	return u.records.Update(ctx, record)
}

// GeneratePlans turns currently due learning records into pending review
// plans, skipping words that already have one.
func (u *learningUsecase) GeneratePlans(ctx context.Context, userID int64, limit int) ([]entity.ReviewPlan, error) {
	if limit <= 0 {
		limit = 50
	}
	now := u.clock()
	due, err := u.records.ListDue(ctx, userID, now, limit)
	if err != nil {
		return nil, err
	}

	var fresh []entity.ReviewPlan
	for _, rec := range due {
		exists, err := u.plans.ExistsPending(ctx, userID, rec.WordID, now)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		scheduled := now
		if rec.NextReviewTime != nil {
			scheduled = *rec.NextReviewTime
		}
		fresh = append(fresh, entity.ReviewPlan{
			UserID:        userID,
			BookID:        rec.BookID,
			WordID:        rec.WordID,
			ScheduledTime: scheduled,
			Status:        entity.PlanPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	if len(fresh) == 0 {
		return nil, nil
	}
	return u.plans.CreateBatch(ctx, fresh)
}

func (u *learningUsecase) ListPlans(ctx context.Context, query *repository.ListPlanQuery) ([]entity.ReviewPlan, int64, error) {
	query.Normalize()
	return u.plans.List(ctx, query)
}

// CompletePlan marks a plan done and bumps the linked record on the plan
// policy's intervals. Status follows the review count thresholds rather than
// the policy step count, and unless the word reached mastered the next
// pending plan is created immediately.
func (u *learningUsecase) CompletePlan(ctx context.Context, userID, planID int64) (*entity.ReviewPlan, error) {
	plan, err := u.ownedPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	now := u.clock()
	if err := plan.Complete(now); err != nil {
		return nil, err
	}

	record, err := u.records.Find(ctx, userID, plan.BookID, plan.WordID)
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	var next time.Time
	if record != nil {
		countBefore := record.ReviewCount
		record.ReviewCount++
		record.LastReviewTime = &now

		next = now.Add(u.planPolicy.Interval(countBefore))
		if record.NextReviewTime != nil && record.NextReviewTime.After(next) {
			next = *record.NextReviewTime
		}
		record.NextReviewTime = &next
		record.MasteryLevel = min(1.0, record.MasteryLevel+0.2)
		switch {
		case record.ReviewCount >= 5:
			record.Status = entity.StatusMastered
		case record.ReviewCount >= 2:
			record.Status = entity.StatusLearning
		}
		record.UpdatedAt = now
		if record, err = u.records.Update(ctx, record); err != nil {
			return nil, err
		}
	}

	plan, err = u.plans.Update(ctx, plan)
	if err != nil {
		return nil, err
	}

	if record != nil && record.Status != entity.StatusMastered {
		_, err = u.plans.CreateBatch(ctx, []entity.ReviewPlan{{
			UserID:        userID,
			BookID:        plan.BookID,
			WordID:        plan.WordID,
			ScheduledTime: next,
			Status:        entity.PlanPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}})
		if err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func (u *learningUsecase) SkipPlan(ctx context.Context, userID, planID int64) (*entity.ReviewPlan, error) {
	plan, err := u.ownedPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	plan.Skip(u.clock())
	return u.plans.Update(ctx, plan)
}

func (u *learningUsecase) ownedRecord(ctx context.Context, userID, id int64) (*entity.LearningRecord, error) {
	if id <= 0 {
		return nil, entity.ErrRecordNotFound
	}
	record, err := u.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, entity.ErrRecordNotOwned
	}
	return record, nil
}

func (u *learningUsecase) ownedPlan(ctx context.Context, userID, id int64) (*entity.ReviewPlan, error) {
	if id <= 0 {
		return nil, entity.ErrPlanNotFound
	}
	plan, err := u.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.UserID != userID {
		return nil, entity.ErrPermissionDenied
	}
	return plan, nil
}

// checkBookWord verifies book ownership and that the word is part of the
// book.
func (u *learningUsecase) checkBookWord(ctx context.Context, userID, bookID, wordID int64) error {
	book, err := u.books.GetByID(ctx, bookID)
	if err != nil {
		return err
	}
	if book.UserID != userID {
		return entity.ErrBookNotOwned
	}
	ok, err := u.books.HasWord(ctx, bookID, wordID)
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrWordNotInBook
	}
	return nil
}
