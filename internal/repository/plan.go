package repository

import (
	"context"
	"time"

	"github.com/lexloop/lexloop/internal/entity"
)

// ListPlanQuery holds parameters for listing review plans.
type ListPlanQuery struct {
	Pagination

	UserID int64
	Status entity.PlanStatus
	Date   *time.Time // restrict to one calendar day
}

// PlanRepository abstracts persistence for review plans.
type PlanRepository interface {
	CreateBatch(ctx context.Context, plans []entity.ReviewPlan) ([]entity.ReviewPlan, error)
	Update(ctx context.Context, plan *entity.ReviewPlan) (*entity.ReviewPlan, error)
	GetByID(ctx context.Context, id int64) (*entity.ReviewPlan, error)
	List(ctx context.Context, query *ListPlanQuery) ([]entity.ReviewPlan, int64, error)
	// ExistsPending reports whether a pending plan already covers the word on
	// the given day.
	ExistsPending(ctx context.Context, userID, wordID int64, day time.Time) (bool, error)
}

// GoalRepository abstracts persistence for daily learning goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *entity.LearningGoal) (*entity.LearningGoal, error)
	Update(ctx context.Context, goal *entity.LearningGoal) (*entity.LearningGoal, error)
	// FindActive returns the active goal for a (user, book) pair, or
	// entity.ErrGoalNotFound.
	FindActive(ctx context.Context, userID, bookID int64) (*entity.LearningGoal, error)
	ListActive(ctx context.Context, userID int64) ([]entity.LearningGoal, error)
}

// LearningPlanRepository abstracts persistence for deadline-driven plans.
type LearningPlanRepository interface {
	Create(ctx context.Context, plan *entity.LearningPlan) (*entity.LearningPlan, error)
	Update(ctx context.Context, plan *entity.LearningPlan) (*entity.LearningPlan, error)
	// FindActive returns the active plan for a (user, book) pair, or
	// entity.ErrLearningPlanMissing.
	FindActive(ctx context.Context, userID, bookID int64) (*entity.LearningPlan, error)
}
