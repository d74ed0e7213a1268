package entity

import (
	"math"
	"time"
)

// PlanStatus is the lifecycle of a scheduled review plan entry.
type PlanStatus string

const (
	PlanPending   PlanStatus = "pending"
	PlanCompleted PlanStatus = "completed"
	PlanSkipped   PlanStatus = "skipped"
)

// ReviewPlan is one scheduled review of one word. At most one pending plan
// exists per (user, word); completing it spawns the next one until the word
// is mastered.
type ReviewPlan struct {
	ID            int64
	UserID        int64
	BookID        int64
	WordID        int64
	ScheduledTime time.Time
	Status        PlanStatus
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Complete marks the plan done. Completing an already completed plan is a
// conflict; skipped plans may still be completed later.
func (p *ReviewPlan) Complete(now time.Time) error {
	if p.Status == PlanCompleted {
		return ErrConflict
	}
	p.Status = PlanCompleted
	p.CompletedAt = &now
	p.UpdatedAt = now
	return nil
}

// Skip defers the plan without counting it as reviewed.
func (p *ReviewPlan) Skip(now time.Time) {
	if p.Status == PlanPending {
		p.Status = PlanSkipped
		p.UpdatedAt = now
	}
}

// GoalStatus is the lifecycle of a learning goal or plan.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
)

// LearningGoal is a per-book daily word target with an implied finish date.
// At most one active goal per (user, book) pair exists.
type LearningGoal struct {
	ID         int64
	UserID     int64
	BookID     int64
	DailyWords int
	TargetDate time.Time
	Status     GoalStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the goal's target.
func (g *LearningGoal) Validate() error {
	if g.DailyWords <= 0 {
		return ErrInvalidArgument
	}
	switch g.Status {
	case "", GoalActive, GoalCompleted, GoalPaused:
		return nil
	default:
		return ErrInvalidArgument
	}
}

// LearningPlan is a deadline-driven plan for finishing a book: given an end
// date it derives how many new words per day the user must cover.
type LearningPlan struct {
	ID         int64
	UserID     int64
	BookID     int64
	DailyWords int
	StartDate  time.Time
	EndDate    time.Time
	Status     GoalStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DailyTarget computes the words-per-day needed to cover remaining words by
// the target date. Days are counted by calendar distance rounded up, with a
// floor of one day. A fully covered book yields zero.
func DailyTarget(remaining int, target, now time.Time) (int, error) {
	if !target.After(now) {
		return 0, ErrTargetDatePast
	}
	if remaining <= 0 {
		return 0, nil
	}
	days := int(math.Ceil(target.Sub(now).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return int(math.Ceil(float64(remaining) / float64(days))), nil
}

// FinishDate is the inverse of DailyTarget: the date by which remaining
// words are covered at the given daily rate.
func FinishDate(remaining, dailyWords int, now time.Time) (time.Time, error) {
	if dailyWords <= 0 {
		return time.Time{}, ErrInvalidArgument
	}
	days := int(math.Ceil(float64(remaining) / float64(dailyWords)))
	if days < 1 {
		days = 1
	}
	return now.AddDate(0, 0, days), nil
}
